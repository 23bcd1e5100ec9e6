package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LineItemPricing selects which price is used for monthly invoice line items.
type LineItemPricing string

const (
	// PricingPlanList re-reads the plan's current list price on every run.
	// Retroactive plan price changes affect future invoices.
	PricingPlanList LineItemPricing = "plan_list"
	// PricingSubscriptionLocked uses the price captured when the
	// subscription was created.
	PricingSubscriptionLocked LineItemPricing = "subscription_locked"
)

// BillingPolicy holds the operator-tunable billing rules.
type BillingPolicy struct {
	// TaxRate is a flat percentage applied to the invoice subtotal.
	TaxRate float64 `mapstructure:"taxRate"`
	// DueDayOfNextMonth is the day of the following month invoices fall due.
	DueDayOfNextMonth int `mapstructure:"dueDayOfNextMonth"`
	// CutoverDay: runs on or before this day bill the current month,
	// later runs roll to the next month.
	CutoverDay int `mapstructure:"cutoverDay"`
	// BillingDay is the day of month the scheduler fires the monthly sweep.
	BillingDay int `mapstructure:"billingDay"`
	// LineItemPricing selects list-price vs locked-in subscription price.
	LineItemPricing LineItemPricing `mapstructure:"lineItemPricing"`
}

func DefaultBillingPolicy() BillingPolicy {
	return BillingPolicy{
		TaxRate:           0,
		DueDayOfNextMonth: 15,
		CutoverDay:        15,
		BillingDay:        1,
		LineItemPricing:   PricingPlanList,
	}
}

// BillingPolicyHolder exposes the current policy with hot reload.
type BillingPolicyHolder struct {
	current atomic.Value // holds BillingPolicy
}

func NewBillingPolicyHolder() (*BillingPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/isrcrm/config")
	v.AddConfigPath("/etc/isrcrm")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ISRCRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingPolicy()
	v.SetDefault("billing.taxRate", defaults.TaxRate)
	v.SetDefault("billing.dueDayOfNextMonth", defaults.DueDayOfNextMonth)
	v.SetDefault("billing.cutoverDay", defaults.CutoverDay)
	v.SetDefault("billing.billingDay", defaults.BillingDay)
	v.SetDefault("billing.lineItemPricing", string(defaults.LineItemPricing))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var policy BillingPolicy
	if err := v.UnmarshalKey("billing", &policy); err != nil {
		return nil, err
	}
	if err := validateBillingPolicy(policy); err != nil {
		return nil, err
	}

	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingPolicy
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-policy] reload failed: %v", err)
			return
		}
		if err := validateBillingPolicy(updated); err != nil {
			log.Printf("[billing-policy] invalid policy ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingPolicyHolder) Get() BillingPolicy {
	return h.current.Load().(BillingPolicy)
}

// NewStaticBillingPolicyHolder wraps a fixed policy, for tests.
func NewStaticBillingPolicyHolder(policy BillingPolicy) *BillingPolicyHolder {
	holder := &BillingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func validateBillingPolicy(policy BillingPolicy) error {
	if policy.TaxRate < 0 || policy.TaxRate >= 100 {
		return errors.New("billing.taxRate must be in [0, 100)")
	}
	if policy.DueDayOfNextMonth < 1 || policy.DueDayOfNextMonth > 28 {
		return errors.New("billing.dueDayOfNextMonth must be in [1, 28]")
	}
	if policy.CutoverDay < 1 || policy.CutoverDay > 28 {
		return errors.New("billing.cutoverDay must be in [1, 28]")
	}
	if policy.BillingDay < 1 || policy.BillingDay > 28 {
		return errors.New("billing.billingDay must be in [1, 28]")
	}
	switch policy.LineItemPricing {
	case PricingPlanList, PricingSubscriptionLocked:
	default:
		return errors.New("billing.lineItemPricing must be plan_list or subscription_locked")
	}
	return nil
}
