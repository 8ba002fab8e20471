package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

// PolicyEnforcer applies error|skip|warn to recoverable failures and collects
// the warnings it emits. One enforcer serves one invocation.
type PolicyEnforcer struct {
	logger   ports.Logger
	defaults domain.FailurePolicies

	mu       sync.Mutex
	warnings []string
}

var _ ports.FailureHandler = (*PolicyEnforcer)(nil)

func NewPolicyEnforcer(logger ports.Logger, defaults domain.FailurePolicies) *PolicyEnforcer {
	return &PolicyEnforcer{
		logger:   logger,
		defaults: defaults.Or(domain.DefaultFailurePolicies()),
	}
}

func (p *PolicyEnforcer) Handle(ctx context.Context, subject string, err error, policies domain.FailurePolicies) error {
	if err == nil {
		return nil
	}
	code := apperrors.GetCode(err)
	if !code.Recoverable() {
		return err
	}

	policies = policies.Or(p.defaults)

	var policy domain.FailurePolicy
	var failMsg, warnMsg string
	switch code {
	case apperrors.CodeResourceNotFound:
		policy = policies.OnMissing
		failMsg = fmt.Sprintf("failed to find %s", subject)
		warnMsg = fmt.Sprintf("skipping, did not find %s", subject)
	default:
		policy = policies.OnDenied
		failMsg = fmt.Sprintf("failed to access %s (access denied)", subject)
		warnMsg = fmt.Sprintf("skipping, access denied for %s", subject)
	}

	switch policy {
	case domain.PolicySkip:
		p.logger.Debugf(ctx, "%s", warnMsg)
		return nil
	case domain.PolicyWarn:
		p.logger.Warnf(ctx, "%s", warnMsg)
		p.mu.Lock()
		p.warnings = append(p.warnings, warnMsg)
		p.mu.Unlock()
		return nil
	default:
		return apperrors.Reclassify(err, code, failMsg)
	}
}

func (p *PolicyEnforcer) Warnings() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.warnings) == 0 {
		return nil
	}
	out := make([]string, len(p.warnings))
	copy(out, p.warnings)
	return out
}
