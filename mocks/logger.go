package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

// MockLogger records log calls. Variadic arguments are passed to Called as a
// single []any so expectations always take three (or four for Errorf) args.
type MockLogger struct {
	mock.Mock
}

// NewMockLogger returns a logger that accepts any call.
func NewMockLogger() *MockLogger {
	m := new(MockLogger)
	m.On("Debugf", mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	m.On("Infof", mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	m.On("Warnf", mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	m.On("Errorf", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe().Return()
	m.On("WithFields", mock.Anything).Maybe().Return(m)
	return m
}

func (m *MockLogger) Debugf(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *MockLogger) Infof(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *MockLogger) Warnf(ctx context.Context, format string, args ...any) {
	m.Called(ctx, format, args)
}

func (m *MockLogger) Errorf(ctx context.Context, err error, format string, args ...any) {
	m.Called(ctx, err, format, args)
}

func (m *MockLogger) WithFields(fields map[string]any) ports.Logger {
	args := m.Called(fields)
	return args.Get(0).(ports.Logger)
}
