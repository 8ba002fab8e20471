package ports

import (
	"context"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
)

//go:generate mockery --name ReconcileEngine --output ./mocks --outpkg mocks --case underscore
type ReconcileEngine interface {
	Run(ctx context.Context) ([]domain.Result, error)
}
