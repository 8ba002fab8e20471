package ports

import (
	"context"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
)

// ResourceAdapter binds one reconcilable kind to its service API. Describe
// returns (nil, nil) when nothing matches and an AMBIGUOUS_RESOURCE error when
// the natural key resolves to more than one resource.
//
//go:generate mockery --name ResourceAdapter --output ./mocks --outpkg mocks --case underscore
type ResourceAdapter interface {
	Kind() domain.ResourceKind
	Noun() string
	Decode(params map[string]any) (domain.DesiredState, error)
	Rules() []domain.FieldRule
	Describe(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error)
	Create(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error)
	Update(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) (*domain.ObservedState, error)
	Delete(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState) error
}

// Previewer is implemented by adapters that can render what a dry-run
// mutation would have produced.
type Previewer interface {
	Preview(desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) map[string]any
}

// QueryAdapter serves read-only kinds. Per-item recoverable failures are
// routed through the FailureHandler instead of being returned.
//
//go:generate mockery --name QueryAdapter --output ./mocks --outpkg mocks --case underscore
type QueryAdapter interface {
	Kind() domain.ResourceKind
	Noun() string
	Query(ctx context.Context, params map[string]any, failures FailureHandler) ([]any, error)
}

// FailureHandler applies error|skip|warn to a failure concerning subject.
// A nil return means the item is dropped and processing continues.
type FailureHandler interface {
	Handle(ctx context.Context, subject string, err error, policies domain.FailurePolicies) error
}
