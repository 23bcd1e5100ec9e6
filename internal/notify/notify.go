// Package notify delivers operational notifications to the operator.
package notify

import (
	"context"
	"fmt"

	"github.com/FresyMetal/isr-crm/internal/config"
	"github.com/FresyMetal/isr-crm/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Provider sends a one-way notification to the operator. Delivery is best
// effort; callers log failures and move on.
type Provider interface {
	NotifyOperator(ctx context.Context, title, content string) error
}

type NoOp struct{}

func (NoOp) NotifyOperator(ctx context.Context, title, content string) error { return nil }

type emailNotifier struct {
	email email.Provider
	to    string
	log   *zap.Logger
}

func (n *emailNotifier) NotifyOperator(ctx context.Context, title, content string) error {
	body := fmt.Sprintf("<h3>%s</h3><p>%s</p>", title, content)
	if err := n.email.Send(ctx, []string{n.to}, title, body); err != nil {
		n.log.Warn("operator notification failed",
			zap.String("title", title),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func New(cfg config.Config, provider email.Provider, log *zap.Logger) Provider {
	if cfg.OperatorEmail == "" {
		return NoOp{}
	}
	return &emailNotifier{
		email: provider,
		to:    cfg.OperatorEmail,
		log:   log.Named("notify"),
	}
}

var Module = fx.Module("notify",
	fx.Provide(New),
)
