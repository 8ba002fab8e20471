package ports

import (
	"context"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
)

//go:generate mockery --name ManifestSource --output ./mocks --outpkg mocks --case underscore
type ManifestSource interface {
	Type() string
	Load(ctx context.Context) ([]domain.ResourceRequest, error)
}
