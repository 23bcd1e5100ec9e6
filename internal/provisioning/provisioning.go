// Package provisioning abstracts the external PSO platform that manages ONT
// service profiles on the fiber network.
package provisioning

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProfileUpdate asks the PSO to reconfigure an ONT identified by its serial
// number.
type ProfileUpdate struct {
	ONTSerialNumber string
	SpeedProfile    string
	UserProfile     string
}

// Provider is implemented by PSO client integrations. Calls may be slow and
// may fail; callers must treat failures as non-fatal.
type Provider interface {
	UpdateServiceProfile(ctx context.Context, update ProfileUpdate) error
}

// NoOp logs the requested update and succeeds. Used when no PSO endpoint is
// configured.
type NoOp struct {
	Log *zap.Logger
}

func (p *NoOp) UpdateServiceProfile(ctx context.Context, update ProfileUpdate) error {
	if p.Log != nil {
		p.Log.Info("pso update skipped, no provider configured",
			zap.String("ont_serial_number", update.ONTSerialNumber),
			zap.String("speed_profile", update.SpeedProfile),
		)
	}
	return nil
}

func New(log *zap.Logger) Provider {
	return &NoOp{Log: log.Named("provisioning")}
}

var Module = fx.Module("provisioning",
	fx.Provide(New),
)
