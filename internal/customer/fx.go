package customer

import (
	"github.com/FresyMetal/isr-crm/internal/customer/repository"
	"github.com/FresyMetal/isr-crm/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
