package plan

import (
	"github.com/FresyMetal/isr-crm/internal/plan/repository"
	"github.com/FresyMetal/isr-crm/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
