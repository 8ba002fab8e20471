package ec2

import (
	"context"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

type placementGroupInfoSpec struct {
	Names []string `mapstructure:"names"`
}

// PlacementGroupInfo lists placement groups, optionally restricted to names.
type PlacementGroupInfo struct {
	client EC2ClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewPlacementGroupInfo(client EC2ClientInterface, caller shared.Caller, logger ports.Logger) *PlacementGroupInfo {
	return &PlacementGroupInfo{client: client, caller: caller, logger: logger}
}

func (q *PlacementGroupInfo) Kind() domain.ResourceKind { return domain.KindPlacementGroupInfo }
func (q *PlacementGroupInfo) Noun() string              { return "placement_groups" }

func (q *PlacementGroupInfo) Query(ctx context.Context, params map[string]any, _ ports.FailureHandler) ([]any, error) {
	var spec placementGroupInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}

	groups, err := describePlacementGroups(ctx, q.client, q.caller, spec.Names)
	if err != nil {
		return nil, err
	}
	q.logger.Debugf(ctx, "Found %d placement groups", len(groups))

	items := make([]any, 0, len(groups))
	for _, g := range groups {
		items = append(items, normalizePlacementGroup(g))
	}
	return items, nil
}
