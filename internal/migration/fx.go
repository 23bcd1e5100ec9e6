package migration

import (
	activitydomain "github.com/FresyMetal/isr-crm/internal/activity/domain"
	"github.com/FresyMetal/isr-crm/internal/config"
	customerdomain "github.com/FresyMetal/isr-crm/internal/customer/domain"
	invoicedomain "github.com/FresyMetal/isr-crm/internal/invoice/domain"
	plandomain "github.com/FresyMetal/isr-crm/internal/plan/domain"
	planchangedomain "github.com/FresyMetal/isr-crm/internal/planchange/domain"
	subscriptiondomain "github.com/FresyMetal/isr-crm/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations are written for postgres. mysql and
		// sqlite deployments schema-sync from the models instead.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&customerdomain.Customer{},
				&plandomain.Plan{},
				&subscriptiondomain.Subscription{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceLine{},
				&planchangedomain.PlanChangeRecord{},
				&activitydomain.CustomerActivity{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
