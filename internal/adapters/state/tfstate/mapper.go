package tfstate

import (
	"context"
	"fmt"

	tfjson "github.com/hashicorp/terraform-json"

	"github.com/olusolaa/infra-reconciler/internal/adapters/state/mapping"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/internal/errors"
)

// mapDocument turns managed resources of a mapped type into requests. A
// plan also yields an absent request for every resource it deletes.
func mapDocument(ctx context.Context, doc *document, logger ports.Logger) ([]domain.ResourceRequest, error) {
	var requests []domain.ResourceRequest
	if doc.values != nil && doc.values.RootModule != nil {
		var err error
		requests, err = mapModule(ctx, doc.values.RootModule, requests, logger)
		if err != nil {
			return nil, err
		}
	}

	for _, change := range doc.changes {
		if change.Mode != tfjson.ManagedResourceMode || change.Change == nil || !change.Change.Actions.Delete() {
			continue
		}
		before, _ := change.Change.Before.(map[string]any)
		req, ok, err := toRequest(ctx, change.Address, change.Type, before, logger)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		req.Params["state"] = string(domain.StateAbsent)
		requests = append(requests, req)
	}
	return requests, nil
}

func mapModule(ctx context.Context, module *tfjson.StateModule, requests []domain.ResourceRequest, logger ports.Logger) ([]domain.ResourceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, res := range module.Resources {
		if res.Mode != tfjson.ManagedResourceMode {
			continue
		}
		req, ok, err := toRequest(ctx, res.Address, res.Type, res.AttributeValues, logger)
		if err != nil {
			return nil, err
		}
		if ok {
			requests = append(requests, req)
		}
	}
	for _, child := range module.ChildModules {
		var err error
		if requests, err = mapModule(ctx, child, requests, logger); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func toRequest(ctx context.Context, address, tfType string, attrs map[string]any, logger ports.Logger) (domain.ResourceRequest, bool, error) {
	if _, err := mapping.MapTfTypeToDomainKind(tfType); err != nil {
		logger.Debugf(ctx, "Skipping %s: %v", address, err)
		return domain.ResourceRequest{}, false, nil
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	kind, params, err := mapping.ToParams(tfType, attrs)
	if err != nil {
		return domain.ResourceRequest{}, false, errors.Wrap(err, errors.CodeMappingError, fmt.Sprintf("mapping %s", address))
	}
	return domain.ResourceRequest{Kind: kind, Source: address, Params: params}, true, nil
}
