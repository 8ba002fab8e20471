package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

type placementGroupSpec struct {
	Name           string            `mapstructure:"name" validate:"required"`
	State          domain.State      `mapstructure:"state" validate:"omitempty,oneof=present absent"`
	Strategy       string            `mapstructure:"strategy" validate:"omitempty,oneof=cluster spread partition"`
	PartitionCount int32             `mapstructure:"partition_count" validate:"omitempty,min=1,max=7"`
	Tags           map[string]string `mapstructure:"tags"`
	PurgeTags      *bool             `mapstructure:"purge_tags"`
}

// PlacementGroupAdapter reconciles EC2 placement groups. Strategy and
// partition count can only be set at creation.
type PlacementGroupAdapter struct {
	client EC2ClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewPlacementGroupAdapter(client EC2ClientInterface, caller shared.Caller, logger ports.Logger) *PlacementGroupAdapter {
	return &PlacementGroupAdapter{client: client, caller: caller, logger: logger}
}

func (a *PlacementGroupAdapter) Kind() domain.ResourceKind { return domain.KindPlacementGroup }
func (a *PlacementGroupAdapter) Noun() string              { return "placement_group" }

func (a *PlacementGroupAdapter) Decode(params map[string]any) (domain.DesiredState, error) {
	var spec placementGroupSpec
	if err := shared.DecodeParams(a.Kind(), params, &spec); err != nil {
		return domain.DesiredState{}, err
	}
	if spec.Strategy == "" {
		spec.Strategy = string(types.PlacementStrategyCluster)
	}
	if spec.PartitionCount > 0 && spec.Strategy != string(types.PlacementStrategyPartition) {
		return domain.DesiredState{}, shared.Invalid("'partition_count' can only be set when strategy is set to 'partition'.")
	}

	attrs := map[string]any{
		domain.PlacementGroupStrategyKey: spec.Strategy,
		domain.KeyTags:                   desiredTags(spec.Tags),
	}
	if spec.PartitionCount > 0 {
		attrs[domain.PlacementGroupPartitionCountKey] = spec.PartitionCount
	}

	return domain.DesiredState{
		Kind:       a.Kind(),
		State:      shared.StateOrDefault(spec.State),
		Identity:   spec.Name,
		Attributes: attrs,
		PurgeTags:  shared.BoolOr(spec.PurgeTags, true),
		Spec:       spec,
	}, nil
}

func (a *PlacementGroupAdapter) Rules() []domain.FieldRule {
	return []domain.FieldRule{
		domain.Exact(domain.PlacementGroupStrategyKey).Frozen(),
		domain.Exact(domain.PlacementGroupPartitionCountKey).Frozen(),
		domain.Tags(),
	}
}

func (a *PlacementGroupAdapter) Describe(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	groups, err := describePlacementGroups(ctx, a.client, a.caller, []string{desired.Identity})
	if err != nil {
		return nil, err
	}
	switch len(groups) {
	case 0:
		return nil, nil
	case 1:
		return observedPlacementGroup(groups[0]), nil
	default:
		return nil, shared.Ambiguous(a.Kind(), desired.Identity, len(groups))
	}
}

func (a *PlacementGroupAdapter) Create(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(placementGroupSpec)
	input := &ec2.CreatePlacementGroupInput{
		GroupName:         aws.String(spec.Name),
		Strategy:          types.PlacementStrategy(spec.Strategy),
		TagSpecifications: tagSpecifications(types.ResourceTypePlacementGroup, spec.Tags),
	}
	if spec.PartitionCount > 0 {
		input.PartitionCount = aws.Int32(spec.PartitionCount)
	}

	out, err := shared.Invoke(ctx, a.caller, "ec2", "CreatePlacementGroup", func(ctx context.Context) (*ec2.CreatePlacementGroupOutput, error) {
		return a.client.CreatePlacementGroup(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	a.logger.Infof(ctx, "Created placement group %s", spec.Name)

	observed, err := a.Describe(ctx, desired)
	if err != nil {
		return nil, err
	}
	if observed == nil && out != nil && out.PlacementGroup != nil {
		observed = observedPlacementGroup(*out.PlacementGroup)
	}
	return observed, nil
}

func (a *PlacementGroupAdapter) Update(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) (*domain.ObservedState, error) {
	spec := desired.Spec.(placementGroupSpec)
	groupID := observed.String(domain.PlacementGroupIDKey)

	if diff.Has(domain.KeyTags) {
		if _, err := syncTags(ctx, a.client, a.caller, groupID, spec.Tags, observed.Tags(), desired.PurgeTags); err != nil {
			return nil, err
		}
	}
	return a.Describe(ctx, desired)
}

func (a *PlacementGroupAdapter) Delete(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState) error {
	_, err := shared.Invoke(ctx, a.caller, "ec2", "DeletePlacementGroup", func(ctx context.Context) (*ec2.DeletePlacementGroupOutput, error) {
		return a.client.DeletePlacementGroup(ctx, &ec2.DeletePlacementGroupInput{GroupName: aws.String(desired.Identity)})
	})
	if err != nil {
		return err
	}
	a.logger.Infof(ctx, "Deleted placement group %s", desired.Identity)
	return nil
}

// Preview renders the group as it would look after a dry-run create or tag
// update.
func (a *PlacementGroupAdapter) Preview(desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) map[string]any {
	spec := desired.Spec.(placementGroupSpec)
	switch diff.Action {
	case domain.ActionCreate:
		return map[string]any{
			domain.KeyName:                   spec.Name,
			domain.KeyState:                  "DryRun",
			domain.PlacementGroupStrategyKey: spec.Strategy,
			domain.KeyTags:                   spec.Tags,
		}
	case domain.ActionUpdate:
		preview := make(map[string]any, len(observed.Attributes))
		for k, v := range observed.Attributes {
			preview[k] = v
		}
		if spec.Tags != nil {
			tags := spec.Tags
			if !desired.PurgeTags {
				tags = mergeTags(observed.Tags(), spec.Tags)
			}
			preview[domain.KeyTags] = tags
		}
		return preview
	default:
		return nil
	}
}

func mergeTags(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func observedPlacementGroup(pg types.PlacementGroup) *domain.ObservedState {
	identity := aws.ToString(pg.GroupId)
	if identity == "" {
		identity = aws.ToString(pg.GroupName)
	}
	return &domain.ObservedState{Identity: identity, Attributes: normalizePlacementGroup(pg)}
}

// describePlacementGroups lists groups by name, or every group when names is
// empty. An unknown group name is reported as no match.
func describePlacementGroups(ctx context.Context, client EC2ClientInterface, caller shared.Caller, names []string) ([]types.PlacementGroup, error) {
	input := &ec2.DescribePlacementGroupsInput{}
	if len(names) > 0 {
		input.Filters = []types.Filter{nameFilter("group-name", names...)}
	}
	out, err := shared.Invoke(ctx, caller, "ec2", "DescribePlacementGroups", func(ctx context.Context) (*ec2.DescribePlacementGroupsOutput, error) {
		return client.DescribePlacementGroups(ctx, input)
	})
	if err != nil {
		if awserrors.HasCode(err, "InvalidPlacementGroup.Unknown") {
			return nil, nil
		}
		return nil, err
	}
	return out.PlacementGroups, nil
}
