// Package server exposes the CRM over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/FresyMetal/isr-crm/internal/activity"
	activitydomain "github.com/FresyMetal/isr-crm/internal/activity/domain"
	"github.com/FresyMetal/isr-crm/internal/billing"
	billingdomain "github.com/FresyMetal/isr-crm/internal/billing/domain"
	"github.com/FresyMetal/isr-crm/internal/config"
	"github.com/FresyMetal/isr-crm/internal/customer"
	customerdomain "github.com/FresyMetal/isr-crm/internal/customer/domain"
	"github.com/FresyMetal/isr-crm/internal/invoice"
	invoicedomain "github.com/FresyMetal/isr-crm/internal/invoice/domain"
	"github.com/FresyMetal/isr-crm/internal/notify"
	obsmiddleware "github.com/FresyMetal/isr-crm/internal/observability/logger"
	obsmetrics "github.com/FresyMetal/isr-crm/internal/observability/metrics"
	"github.com/FresyMetal/isr-crm/internal/plan"
	plandomain "github.com/FresyMetal/isr-crm/internal/plan/domain"
	"github.com/FresyMetal/isr-crm/internal/planchange"
	planchangedomain "github.com/FresyMetal/isr-crm/internal/planchange/domain"
	"github.com/FresyMetal/isr-crm/internal/providers/email"
	"github.com/FresyMetal/isr-crm/internal/provisioning"
	"github.com/FresyMetal/isr-crm/internal/subscription"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	customer.Module,
	plan.Module,
	subscription.Module,
	invoice.Module,
	billing.Module,
	planchange.Module,
	activity.Module,
	email.Module,
	notify.Module,
	provisioning.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	customerSvc   customerdomain.Service
	planSvc       plandomain.Service
	invoiceSvc    invoicedomain.Service
	billingSvc    billingdomain.Service
	planChangeSvc planchangedomain.Service
	activities    activitydomain.Repository
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	CustomerSvc   customerdomain.Service
	PlanSvc       plandomain.Service
	InvoiceSvc    invoicedomain.Service
	BillingSvc    billingdomain.Service
	PlanChangeSvc planchangedomain.Service
	Activities    activitydomain.Repository
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		customerSvc:   p.CustomerSvc,
		planSvc:       p.PlanSvc,
		invoiceSvc:    p.InvoiceSvc,
		billingSvc:    p.BillingSvc,
		planChangeSvc: p.PlanChangeSvc,
		activities:    p.Activities,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/:id", s.GetCustomer)
	api.GET("/customers/:id/invoices", s.ListCustomerInvoices)
	api.GET("/customers/:id/activities", s.ListCustomerActivities)
	api.GET("/customers/:id/plan-changes", s.ListCustomerPlanChanges)
	api.POST("/customers/:id/plan-change/preview", s.PreviewPlanChange)
	api.POST("/customers/:id/plan-change", s.ChangePlan)

	api.POST("/plans", s.CreatePlan)
	api.GET("/plans", s.ListPlans)
	api.GET("/plans/stats", s.PlanStats)
	api.GET("/plans/:id", s.GetPlan)
	api.PATCH("/plans/:id", s.UpdatePlan)
	api.DELETE("/plans/:id", s.DeletePlan)

	api.GET("/invoices/:id", s.GetInvoice)
	api.POST("/invoices/:id/pay", s.PayInvoice)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)

	api.POST("/billing/runs", s.RunBilling)
	api.GET("/billing/next-period", s.NextBillingPeriod)
}
