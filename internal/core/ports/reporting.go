package ports

import (
	"context"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
)

type Reporter interface {
	Report(ctx context.Context, results []domain.Result) error
}
