package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/internal/errors"
)

type EngineOptions struct {
	DryRun   bool
	FailFast bool
}

// ReconcileEngine walks a manifest in order, one resource at a time. A
// failure is recorded on that resource's result and the walk continues unless
// FailFast is set.
type ReconcileEngine struct {
	registry   *ComponentRegistry
	reconciler *Reconciler
	source     ports.ManifestSource
	reporter   ports.Reporter
	logger     ports.Logger
	opts       EngineOptions
}

var _ ports.ReconcileEngine = (*ReconcileEngine)(nil)

func NewReconcileEngine(
	registry *ComponentRegistry,
	reconciler *Reconciler,
	source ports.ManifestSource,
	reporter ports.Reporter,
	logger ports.Logger,
	opts EngineOptions,
) (*ReconcileEngine, error) {
	if registry == nil || reconciler == nil {
		return nil, errors.New(errors.CodeInternal, "registry and reconciler are required")
	}
	if source == nil {
		return nil, errors.New(errors.CodeConfigValidation, "manifest source cannot be nil")
	}
	if reporter == nil {
		return nil, errors.New(errors.CodeConfigValidation, "reporter cannot be nil")
	}
	return &ReconcileEngine{
		registry:   registry,
		reconciler: reconciler,
		source:     source,
		reporter:   reporter,
		logger:     logger,
		opts:       opts,
	}, nil
}

func (e *ReconcileEngine) Run(ctx context.Context) ([]domain.Result, error) {
	e.logger.Infof(ctx, "Loading desired state from %s source", e.source.Type())
	requests, err := e.source.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeManifestReadError, "failed loading desired state")
	}
	if len(requests) == 0 {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "no resources to reconcile", "Add resources to the manifest or pass --kind with --param values.")
	}

	results := make([]domain.Result, 0, len(requests))
	var firstErr error
	failed := 0

	for _, req := range requests {
		if ctx.Err() != nil {
			firstErr = ctx.Err()
			break
		}

		res, runErr := e.runOne(ctx, req)
		res.Source = req.Source
		if runErr != nil {
			res.Error = runErr
			failed++
			if firstErr == nil {
				firstErr = runErr
			}
		}
		results = append(results, res)

		if runErr != nil && e.opts.FailFast {
			e.logger.Warnf(ctx, "Stopping after failure on %s (fail_fast)", req.Source)
			break
		}
	}

	if reportErr := e.reporter.Report(ctx, results); reportErr != nil {
		return results, errors.Wrap(reportErr, errors.CodeInternal, "failed to generate report")
	}

	if firstErr != nil {
		if ctx.Err() != nil {
			return results, firstErr
		}
		return results, errors.Reclassify(firstErr, errors.GetCode(firstErr),
			fmt.Sprintf("%d of %d resources failed", failed, len(requests)))
	}

	e.logger.Infof(ctx, "Reconciled %d resources", len(results))
	return results, nil
}

func (e *ReconcileEngine) runOne(ctx context.Context, req domain.ResourceRequest) (domain.Result, error) {
	log := e.logger.WithFields(map[string]any{
		"resource_kind": req.Kind,
		"source":        req.Source,
	})

	if adapter, ok := e.registry.GetAdapter(req.Kind); ok {
		log.Debugf(ctx, "Reconciling")
		return e.reconciler.Reconcile(ctx, adapter, req.Params, e.opts.DryRun)
	}
	if query, ok := e.registry.GetQuery(req.Kind); ok {
		log.Debugf(ctx, "Querying")
		return e.reconciler.Query(ctx, query, req.Params)
	}

	err := errors.NewUserFacing(errors.CodeNotImplemented,
		fmt.Sprintf("resource kind '%s' is not supported", req.Kind),
		fmt.Sprintf("Use one of: %v", e.registry.Kinds()))
	log.Errorf(ctx, err, "Unsupported kind")
	return domain.Result{Kind: req.Kind}, err
}
