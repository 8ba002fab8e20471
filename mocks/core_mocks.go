package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

type MockResourceAdapter struct {
	mock.Mock
	KindValue domain.ResourceKind
	RuleSet   []domain.FieldRule
}

func (m *MockResourceAdapter) Kind() domain.ResourceKind { return m.KindValue }
func (m *MockResourceAdapter) Noun() string              { return string(m.KindValue) }
func (m *MockResourceAdapter) Rules() []domain.FieldRule { return m.RuleSet }

func (m *MockResourceAdapter) Decode(params map[string]any) (domain.DesiredState, error) {
	args := m.Called(params)
	return args.Get(0).(domain.DesiredState), args.Error(1)
}

func (m *MockResourceAdapter) Describe(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	args := m.Called(ctx, desired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ObservedState), args.Error(1)
}

func (m *MockResourceAdapter) Create(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	args := m.Called(ctx, desired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ObservedState), args.Error(1)
}

func (m *MockResourceAdapter) Update(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) (*domain.ObservedState, error) {
	args := m.Called(ctx, desired, observed, diff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ObservedState), args.Error(1)
}

func (m *MockResourceAdapter) Delete(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState) error {
	args := m.Called(ctx, desired, observed)
	return args.Error(0)
}

type MockQueryAdapter struct {
	mock.Mock
	KindValue domain.ResourceKind
}

func (m *MockQueryAdapter) Kind() domain.ResourceKind { return m.KindValue }
func (m *MockQueryAdapter) Noun() string              { return string(m.KindValue) }

func (m *MockQueryAdapter) Query(ctx context.Context, params map[string]any, failures ports.FailureHandler) ([]any, error) {
	args := m.Called(ctx, params, failures)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]any), args.Error(1)
}

type MockManifestSource struct {
	mock.Mock
}

func (m *MockManifestSource) Type() string { return "mock" }

func (m *MockManifestSource) Load(ctx context.Context) ([]domain.ResourceRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResourceRequest), args.Error(1)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, results []domain.Result) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

// MockCaller runs fn once and translates its error, without pacing or retries.
type MockCaller struct{}

func (MockCaller) Call(ctx context.Context, service, operation string, fn func(ctx context.Context) error) error {
	return awserrors.Translate(service, operation, fn(ctx), ctx)
}

type MockReconcileEngine struct {
	mock.Mock
}

func (m *MockReconcileEngine) Run(ctx context.Context) ([]domain.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Result), args.Error(1)
}
