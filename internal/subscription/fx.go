package subscription

import (
	"github.com/FresyMetal/isr-crm/internal/subscription/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(repository.Provide),
)
