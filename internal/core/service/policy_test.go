package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

func TestPolicyEnforcerMatrix(t *testing.T) {
	missing := apperrors.Wrap(fmt.Errorf("ResourceNotFoundException"), apperrors.CodeResourceNotFound, "not found")
	denied := apperrors.Wrap(fmt.Errorf("AccessDeniedException"), apperrors.CodePlatformAuthError, "denied")

	tests := []struct {
		name        string
		err         error
		policies    domain.FailurePolicies
		wantErr     bool
		wantCode    apperrors.Code
		wantMessage string
		wantWarning string
	}{
		{
			name:        "missing with error",
			err:         missing,
			policies:    domain.FailurePolicies{OnMissing: domain.PolicyError},
			wantErr:     true,
			wantCode:    apperrors.CodeResourceNotFound,
			wantMessage: "failed to find secret db/pass",
		},
		{
			name:     "missing with skip",
			err:      missing,
			policies: domain.FailurePolicies{OnMissing: domain.PolicySkip},
		},
		{
			name:        "missing with warn",
			err:         missing,
			policies:    domain.FailurePolicies{OnMissing: domain.PolicyWarn},
			wantWarning: "skipping, did not find secret db/pass",
		},
		{
			name:        "denied with error",
			err:         denied,
			policies:    domain.FailurePolicies{OnDenied: domain.PolicyError},
			wantErr:     true,
			wantCode:    apperrors.CodePlatformAuthError,
			wantMessage: "failed to access secret db/pass (access denied)",
		},
		{
			name:     "denied with skip",
			err:      denied,
			policies: domain.FailurePolicies{OnDenied: domain.PolicySkip},
		},
		{
			name:        "denied with warn",
			err:         denied,
			policies:    domain.FailurePolicies{OnDenied: domain.PolicyWarn},
			wantWarning: "skipping, access denied for secret db/pass",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enforcer := NewPolicyEnforcer(mocks.NewMockLogger(), domain.FailurePolicies{})
			err := enforcer.Handle(context.Background(), "secret db/pass", tt.err, tt.policies)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
				assert.Contains(t, err.Error(), tt.wantMessage)
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}

			if tt.wantWarning != "" {
				assert.Equal(t, []string{tt.wantWarning}, enforcer.Warnings())
			} else {
				assert.Empty(t, enforcer.Warnings())
			}
		})
	}
}

func TestPolicyEnforcerNeverDowngradesOtherErrors(t *testing.T) {
	enforcer := NewPolicyEnforcer(mocks.NewMockLogger(), domain.FailurePolicies{OnMissing: domain.PolicySkip, OnDenied: domain.PolicySkip})
	transient := apperrors.New(apperrors.CodeTransient, "throttled")

	err := enforcer.Handle(context.Background(), "secret x", transient, domain.FailurePolicies{})
	assert.Same(t, transient, err)
}

func TestPolicyEnforcerFallsBackToDefaults(t *testing.T) {
	enforcer := NewPolicyEnforcer(mocks.NewMockLogger(), domain.FailurePolicies{OnMissing: domain.PolicyWarn})
	err := enforcer.Handle(context.Background(), "vpc vpc-1", apperrors.New(apperrors.CodeResourceNotFound, "gone"), domain.FailurePolicies{})
	assert.NoError(t, err)
	assert.Len(t, enforcer.Warnings(), 1)

	err = enforcer.Handle(context.Background(), "vpc vpc-2", apperrors.New(apperrors.CodePlatformAuthError, "denied"), domain.FailurePolicies{})
	assert.Error(t, err)
}
