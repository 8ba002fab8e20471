package app

import (
	"context"

	"github.com/olusolaa/infra-reconciler/internal/config"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

// AccountIdentity names the account and region a run acts on.
type AccountIdentity interface {
	AccountID(ctx context.Context) (string, error)
	Region() string
}

// Application runs the reconcile engine once.
type Application struct {
	Engine   ports.ReconcileEngine
	Identity AccountIdentity
	Logger   ports.Logger
	Config   *config.Config
}

func NewApplication(engine ports.ReconcileEngine, identity AccountIdentity, logger ports.Logger, cfg *config.Config) *Application {
	return &Application{
		Engine:   engine,
		Identity: identity,
		Logger:   logger,
		Config:   cfg,
	}
}

func (a *Application) Run(ctx context.Context) ([]domain.Result, error) {
	if a.Identity != nil {
		if account, err := a.Identity.AccountID(ctx); err != nil {
			a.Logger.Warnf(ctx, "Could not resolve AWS account: %v", err)
		} else {
			a.Logger.Infof(ctx, "Reconciling in AWS account %s (region %s)", account, a.Identity.Region())
		}
	}

	results, err := a.Engine.Run(ctx)
	if err != nil {
		a.Logger.Errorf(ctx, err, "Reconciliation failed")
		return results, err
	}

	a.Logger.Infof(ctx, "Reconciliation completed successfully")
	return results, nil
}
