package planchange

import (
	"github.com/FresyMetal/isr-crm/internal/planchange/repository"
	"github.com/FresyMetal/isr-crm/internal/planchange/service"
	"go.uber.org/fx"
)

var Module = fx.Module("planchange.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
