package billing

import (
	"github.com/FresyMetal/isr-crm/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(service.New),
)
