package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

// Reconciler drives a single resource through describe, diff and apply. It
// holds no per-resource state between calls.
type Reconciler struct {
	logger   ports.Logger
	defaults domain.FailurePolicies
}

func NewReconciler(logger ports.Logger, defaults domain.FailurePolicies) *Reconciler {
	return &Reconciler{logger: logger, defaults: defaults}
}

// Reconcile decodes params and converges the resource they describe.
func (r *Reconciler) Reconcile(ctx context.Context, adapter ports.ResourceAdapter, params map[string]any, dryRun bool) (domain.Result, error) {
	result := domain.Result{Kind: adapter.Kind(), Noun: adapter.Noun(), DryRun: dryRun}

	desired, err := adapter.Decode(params)
	if err != nil {
		return result, apperrors.Wrap(err, apperrors.CodeValidation, fmt.Sprintf("invalid parameters for %s", adapter.Kind()))
	}
	result.Identity = desired.Identity

	observed, err := r.Describe(ctx, adapter, desired)
	if err != nil {
		return result, err
	}

	diff := r.Diff(adapter, desired, observed)
	return r.Apply(ctx, adapter, desired, observed, diff, dryRun)
}

func (r *Reconciler) Describe(ctx context.Context, adapter ports.ResourceAdapter, desired domain.DesiredState) (*domain.ObservedState, error) {
	log := r.logger.WithFields(map[string]any{
		"resource_kind": adapter.Kind(),
		"identity":      desired.Identity,
	})

	observed, err := adapter.Describe(ctx, desired)
	if err != nil {
		wrapped := apperrors.Wrap(err, apperrors.CodePlatformAPIError, fmt.Sprintf("describe %s %q", adapter.Kind(), desired.Identity))
		log.Errorf(ctx, wrapped, "Describe failed")
		return nil, wrapped
	}
	if observed == nil {
		log.Debugf(ctx, "Resource not found")
	} else {
		log.Debugf(ctx, "Resource found: %s", observed.Identity)
	}
	return observed, nil
}

func (r *Reconciler) Diff(adapter ports.ResourceAdapter, desired domain.DesiredState, observed *domain.ObservedState) domain.Diff {
	return ComputeDiff(adapter.Rules(), desired, observed)
}

// Apply issues at most one adapter mutation. Under dryRun no mutation is
// issued but Changed is reported exactly as it would have been.
func (r *Reconciler) Apply(
	ctx context.Context,
	adapter ports.ResourceAdapter,
	desired domain.DesiredState,
	observed *domain.ObservedState,
	diff domain.Diff,
	dryRun bool,
) (domain.Result, error) {
	result := domain.Result{
		Kind:        adapter.Kind(),
		Identity:    desired.Identity,
		Noun:        adapter.Noun(),
		Action:      diff.Action,
		DryRun:      dryRun,
		Differences: diff.Differences,
	}
	if observed != nil {
		result.Resource = observed.Attributes
	}

	log := r.logger.WithFields(map[string]any{
		"resource_kind": adapter.Kind(),
		"identity":      desired.Identity,
		"action":        diff.Action,
	})

	switch diff.Action {
	case domain.ActionNoop:
		log.Debugf(ctx, "Already converged")
		return result, nil
	case domain.ActionUpdateIncapable:
		return result, immutableConflict(adapter.Kind(), desired.Identity, diff)
	}

	result.Changed = true
	if dryRun {
		if p, ok := adapter.(ports.Previewer); ok {
			result.Resource = p.Preview(desired, observed, diff)
		} else if diff.Action == domain.ActionDelete {
			result.Resource = nil
		}
		log.Infof(ctx, "Dry run: would %s", diff.Action)
		return result, nil
	}

	var after *domain.ObservedState
	var err error
	switch diff.Action {
	case domain.ActionCreate:
		after, err = adapter.Create(ctx, desired)
	case domain.ActionUpdate:
		after, err = adapter.Update(ctx, desired, observed, diff)
	case domain.ActionDelete:
		err = adapter.Delete(ctx, desired, observed)
		result.Resource = nil
	default:
		err = apperrors.Newf(apperrors.CodeInternal, "unknown diff action %q", diff.Action)
	}
	if err != nil {
		result.Changed = false
		wrapped := apperrors.Wrap(err, apperrors.CodePlatformAPIError, fmt.Sprintf("%s %s %q", diff.Action, adapter.Kind(), desired.Identity))
		log.Errorf(ctx, wrapped, "Apply failed")
		return result, wrapped
	}

	if after != nil {
		result.Resource = after.Attributes
		if after.Identity != "" {
			result.Identity = after.Identity
		}
	}
	log.Infof(ctx, "Applied %s", diff.Action)
	return result, nil
}

// Query runs a read-only adapter, applying failure policies per item.
func (r *Reconciler) Query(ctx context.Context, adapter ports.QueryAdapter, params map[string]any) (domain.Result, error) {
	enforcer := NewPolicyEnforcer(r.logger.WithFields(map[string]any{"resource_kind": adapter.Kind()}), r.defaults)
	result := domain.Result{Kind: adapter.Kind(), Noun: adapter.Noun(), Listing: true, Action: domain.ActionNoop}

	items, err := adapter.Query(ctx, params, enforcer)
	result.Warnings = enforcer.Warnings()
	// Items resolved before a failure are still reported.
	result.Items = items
	if err != nil {
		return result, apperrors.Wrap(err, apperrors.CodePlatformAPIError, fmt.Sprintf("query %s", adapter.Kind()))
	}
	return result, nil
}

func immutableConflict(kind domain.ResourceKind, identity string, diff domain.Diff) error {
	var parts []string
	for _, ad := range diff.Immutable() {
		parts = append(parts, fmt.Sprintf("%s from '%v' to '%v'", ad.AttributeName, ad.Observed, ad.Desired))
	}
	sort.Strings(parts)
	return apperrors.NewUserFacing(
		apperrors.CodeImmutableField,
		fmt.Sprintf("%s '%s' exists, can't change %s", kind, identity, strings.Join(parts, ", ")),
		"Delete the resource with state=absent and recreate it with the new settings.",
	)
}
