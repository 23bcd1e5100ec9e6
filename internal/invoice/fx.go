package invoice

import (
	"github.com/FresyMetal/isr-crm/internal/invoice/repository"
	"github.com/FresyMetal/isr-crm/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
