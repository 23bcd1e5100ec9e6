package activity

import (
	"github.com/FresyMetal/isr-crm/internal/activity/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("activity",
	fx.Provide(repository.Provide),
)
