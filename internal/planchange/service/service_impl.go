package service

import (
	"context"
	"fmt"
	"time"

	activitydomain "github.com/FresyMetal/isr-crm/internal/activity/domain"
	"github.com/FresyMetal/isr-crm/internal/billing/proration"
	"github.com/FresyMetal/isr-crm/internal/clock"
	customerdomain "github.com/FresyMetal/isr-crm/internal/customer/domain"
	invoicedomain "github.com/FresyMetal/isr-crm/internal/invoice/domain"
	plandomain "github.com/FresyMetal/isr-crm/internal/plan/domain"
	"github.com/FresyMetal/isr-crm/internal/planchange/domain"
	"github.com/FresyMetal/isr-crm/internal/provisioning"
	subscriptiondomain "github.com/FresyMetal/isr-crm/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	PSO           provisioning.Provider
	Customers     customerdomain.Repository
	Plans         plandomain.Repository
	Subscriptions subscriptiondomain.Repository
	Invoices      invoicedomain.Repository
	History       domain.Repository
	Activities    activitydomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	pso           provisioning.Provider
	customers     customerdomain.Repository
	plans         plandomain.Repository
	subscriptions subscriptiondomain.Repository
	invoices      invoicedomain.Repository
	history       domain.Repository
	activities    activitydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("planchange.service"),
		clock:         p.Clock,
		pso:           p.PSO,
		customers:     p.Customers,
		plans:         p.Plans,
		subscriptions: p.Subscriptions,
		invoices:      p.Invoices,
		history:       p.History,
		activities:    p.Activities,
	}
}

func (s *Service) Preview(ctx context.Context, req domain.PreviewRequest) (*domain.Preview, error) {
	customer, newPlan, anchor, changeAt, err := s.resolve(ctx, req.CustomerID, req.NewPlanID, req.ChangeAt)
	if err != nil {
		return nil, err
	}

	result := proration.Calculate(customer.MonthlyPrice, newPlan.Price, anchor, changeAt)

	return &domain.Preview{
		Anchor:          anchor,
		ChangeAt:        changeAt,
		NextBillingDate: proration.NextBillingDate(anchor),
		OldPrice:        customer.MonthlyPrice,
		NewPrice:        newPlan.Price,
		Proration:       result,
	}, nil
}

// Execute changes a customer's plan. The customer row, subscription swap,
// history record and activity entry commit in one transaction; the PSO
// profile push happens after commit and never rolls the change back.
func (s *Service) Execute(ctx context.Context, req domain.ChangeRequest) (*domain.ChangeResult, error) {
	customer, newPlan, anchor, changeAt, err := s.resolve(ctx, req.CustomerID, req.NewPlanID, req.ChangeAt)
	if err != nil {
		return nil, err
	}

	var oldPlan *plandomain.Plan
	if customer.PlanID != nil {
		oldPlan, err = s.plans.FindByID(ctx, s.db, *customer.PlanID)
		if err != nil {
			return nil, err
		}
	}

	oldPlanName := "Sin plan"
	var oldPlanID *int64
	if oldPlan != nil {
		oldPlanName = oldPlan.Name
		id := oldPlan.ID
		oldPlanID = &id
	}

	result := proration.Calculate(customer.MonthlyPrice, newPlan.Price, anchor, changeAt)
	now := s.clock.Now()

	record := domain.PlanChangeRecord{
		CustomerID:    customer.ID,
		OldPlanID:     oldPlanID,
		OldPlanName:   oldPlanName,
		OldPrice:      customer.MonthlyPrice.Round(2),
		NewPlanID:     newPlan.ID,
		NewPlanName:   newPlan.Name,
		NewPrice:      newPlan.Price.Round(2),
		Adjustment:    result.Adjustment,
		ElapsedDays:   result.ElapsedDays,
		RemainingDays: result.RemainingDays,
		TotalDays:     result.TotalDays,
		ChangeAt:      changeAt,
		AppliedAt:     now,
		Reason:        req.Reason,
		Notes:         req.Notes,
		Actor:         req.Actor,
		CreatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.customers.UpdateContractedPlan(ctx, tx, customer.ID, newPlan.ID, newPlan.Price); err != nil {
			return err
		}
		if err := s.subscriptions.DeactivateByCustomer(ctx, tx, customer.ID, changeAt); err != nil {
			return err
		}
		sub := subscriptiondomain.Subscription{
			CustomerID: customer.ID,
			PlanID:     newPlan.ID,
			Price:      newPlan.Price.Round(2),
			Active:     true,
			StartAt:    changeAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.subscriptions.Insert(ctx, tx, &sub); err != nil {
			return err
		}
		if err := s.history.Insert(ctx, tx, &record); err != nil {
			return err
		}
		return s.activities.Insert(ctx, tx, &activitydomain.CustomerActivity{
			CustomerID: customer.ID,
			Kind:       activitydomain.ActivityPlanChange,
			Actor:      req.Actor,
			Description: fmt.Sprintf("Cambio de plan: %s → %s. Ajuste: €%s",
				oldPlanName, newPlan.Name, result.Adjustment.StringFixed(2)),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("plan changed",
		zap.Int64("customer_id", customer.ID),
		zap.String("old_plan", oldPlanName),
		zap.String("new_plan", newPlan.Name),
		zap.String("adjustment", result.Adjustment.StringFixed(2)),
	)

	s.pushProfile(ctx, customer, newPlan, req.Actor)

	return &domain.ChangeResult{
		Record:    record,
		Proration: result,
		Message:   result.Description,
	}, nil
}

func (s *Service) History(ctx context.Context, customerID int64) ([]domain.PlanChangeRecord, error) {
	return s.history.ListByCustomer(ctx, s.db, customerID)
}

// resolve loads the customer and target plan and fixes the proration anchor:
// the last invoice's issue date, falling back to the signup date for
// customers never billed.
func (s *Service) resolve(ctx context.Context, customerID, newPlanID int64, changeAt *time.Time) (*customerdomain.Customer, *plandomain.Plan, time.Time, time.Time, error) {
	var zero time.Time

	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return nil, nil, zero, zero, err
	}
	if customer == nil {
		return nil, nil, zero, zero, customerdomain.ErrCustomerNotFound
	}

	newPlan, err := s.plans.FindByID(ctx, s.db, newPlanID)
	if err != nil {
		return nil, nil, zero, zero, err
	}
	if newPlan == nil {
		return nil, nil, zero, zero, plandomain.ErrPlanNotFound
	}

	anchor := customer.SignupAt
	last, err := s.invoices.FindLastByCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, nil, zero, zero, err
	}
	if last != nil {
		anchor = last.IssueDate
	}

	change := s.clock.Now()
	if changeAt != nil {
		change = *changeAt
	}

	if err := proration.ValidateChangeDate(anchor, change); err != nil {
		return nil, nil, zero, zero, err
	}

	return customer, newPlan, anchor, change, nil
}

// pushProfile updates the ONT profile on the PSO. Failures are logged to the
// activity trail but never surface to the caller.
func (s *Service) pushProfile(ctx context.Context, customer *customerdomain.Customer, newPlan *plandomain.Plan, actor string) {
	if customer.ONTSerialNumber == nil || *customer.ONTSerialNumber == "" {
		return
	}
	if customer.State != customerdomain.CustomerStateActive {
		return
	}
	if newPlan.PSOSpeedProfile == nil || *newPlan.PSOSpeedProfile == "" {
		return
	}

	update := provisioning.ProfileUpdate{
		ONTSerialNumber: *customer.ONTSerialNumber,
		SpeedProfile:    *newPlan.PSOSpeedProfile,
	}
	if newPlan.PSOUserProfile != nil {
		update.UserProfile = *newPlan.PSOUserProfile
	}

	if err := s.pso.UpdateServiceProfile(ctx, update); err != nil {
		s.log.Error("pso profile update failed",
			zap.Int64("customer_id", customer.ID),
			zap.String("ont_serial_number", update.ONTSerialNumber),
			zap.Error(err),
		)
		s.logActivity(ctx, customer.ID, activitydomain.ActivityPSOError, actor,
			fmt.Sprintf("Error al actualizar perfil en PSO: %s", err.Error()))
		return
	}

	s.logActivity(ctx, customer.ID, activitydomain.ActivityPSOUpdate, actor,
		fmt.Sprintf("Perfil de velocidad actualizado en PSO: %s", *newPlan.PSOSpeedProfile))
}

func (s *Service) logActivity(ctx context.Context, customerID int64, kind activitydomain.ActivityKind, actor, description string) {
	err := s.activities.Insert(ctx, s.db, &activitydomain.CustomerActivity{
		CustomerID:  customerID,
		Kind:        kind,
		Actor:       actor,
		Description: description,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		s.log.Warn("activity log write failed",
			zap.Int64("customer_id", customerID),
			zap.Error(err),
		)
	}
}
