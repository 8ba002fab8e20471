package cloudwatchlogs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

type transformationSpec struct {
	MetricName      string            `mapstructure:"metric_name" validate:"required"`
	MetricNamespace string            `mapstructure:"metric_namespace" validate:"required"`
	MetricValue     string            `mapstructure:"metric_value" validate:"required"`
	DefaultValue    *float64          `mapstructure:"default_value"`
	Unit            string            `mapstructure:"unit"`
	Dimensions      map[string]string `mapstructure:"dimensions" validate:"max=3"`
}

type metricFilterSpec struct {
	State                domain.State        `mapstructure:"state" validate:"omitempty,oneof=present absent"`
	LogGroupName         string              `mapstructure:"log_group_name" validate:"required"`
	FilterName           string              `mapstructure:"filter_name" validate:"required"`
	FilterPattern        *string             `mapstructure:"filter_pattern"`
	MetricTransformation *transformationSpec `mapstructure:"metric_transformation"`
}

// MetricFilterAdapter reconciles one metric filter of a log group. Every
// field is mutable: PutMetricFilter both creates and replaces.
type MetricFilterAdapter struct {
	client LogsClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewMetricFilterAdapter(client LogsClientInterface, caller shared.Caller, logger ports.Logger) *MetricFilterAdapter {
	return &MetricFilterAdapter{client: client, caller: caller, logger: logger}
}

func (a *MetricFilterAdapter) Kind() domain.ResourceKind { return domain.KindMetricFilter }
func (a *MetricFilterAdapter) Noun() string              { return "metric_filter" }

func (a *MetricFilterAdapter) Decode(params map[string]any) (domain.DesiredState, error) {
	var spec metricFilterSpec
	if err := shared.DecodeParams(a.Kind(), params, &spec); err != nil {
		return domain.DesiredState{}, err
	}
	state := shared.StateOrDefault(spec.State)

	attrs := map[string]any{}
	if state == domain.StatePresent {
		if spec.FilterPattern == nil || spec.MetricTransformation == nil {
			return domain.DesiredState{}, shared.Invalid("state is present but all of the following are missing: metric_transformation, filter_pattern")
		}
		mt := spec.MetricTransformation
		if mt.DefaultValue != nil && len(mt.Dimensions) > 0 {
			return domain.DesiredState{}, shared.Invalid("default_value and dimensions are mutually exclusive.")
		}
		attrs[domain.MetricFilterPatternKey] = *spec.FilterPattern
		attrs[domain.MetricFilterTransformationKey] = desiredTransformation(mt)
	}

	return domain.DesiredState{
		Kind:       a.Kind(),
		State:      state,
		Identity:   fmt.Sprintf("%s:%s", spec.LogGroupName, spec.FilterName),
		Attributes: attrs,
		Spec:       spec,
	}, nil
}

// desiredTransformation renders the requested transformation in the same
// shape normalizeTransformation gives the live one.
func desiredTransformation(mt *transformationSpec) map[string]any {
	out := map[string]any{
		"metric_name":      mt.MetricName,
		"metric_namespace": mt.MetricNamespace,
		"metric_value":     mt.MetricValue,
	}
	if mt.DefaultValue != nil {
		out["default_value"] = *mt.DefaultValue
	}
	if mt.Unit != "" {
		out["unit"] = mt.Unit
	}
	// An empty dimensions map is the same as none.
	if len(mt.Dimensions) > 0 {
		dims := make(map[string]any, len(mt.Dimensions))
		for k, v := range mt.Dimensions {
			dims[k] = v
		}
		out["dimensions"] = dims
	}
	return out
}

func normalizeTransformation(t types.MetricTransformation) map[string]any {
	out := map[string]any{
		"metric_name":      aws.ToString(t.MetricName),
		"metric_namespace": aws.ToString(t.MetricNamespace),
		"metric_value":     aws.ToString(t.MetricValue),
	}
	if t.DefaultValue != nil {
		out["default_value"] = *t.DefaultValue
	}
	if t.Unit != "" {
		out["unit"] = string(t.Unit)
	}
	if len(t.Dimensions) > 0 {
		dims := make(map[string]any, len(t.Dimensions))
		for k, v := range t.Dimensions {
			dims[k] = v
		}
		out["dimensions"] = dims
	}
	return out
}

func (a *MetricFilterAdapter) Rules() []domain.FieldRule {
	return []domain.FieldRule{
		domain.Exact(domain.MetricFilterPatternKey),
		domain.Exact(domain.MetricFilterTransformationKey),
	}
}

// Describe lists filters by name prefix and keeps the exact match.
func (a *MetricFilterAdapter) Describe(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(metricFilterSpec)
	input := &cloudwatchlogs.DescribeMetricFiltersInput{
		LogGroupName:     aws.String(spec.LogGroupName),
		FilterNamePrefix: aws.String(spec.FilterName),
	}

	var matches []types.MetricFilter
	for {
		out, err := shared.Invoke(ctx, a.caller, "logs", "DescribeMetricFilters", func(ctx context.Context) (*cloudwatchlogs.DescribeMetricFiltersOutput, error) {
			return a.client.DescribeMetricFilters(ctx, input)
		})
		if err != nil {
			return nil, err
		}
		for _, f := range out.MetricFilters {
			if aws.ToString(f.FilterName) == spec.FilterName {
				matches = append(matches, f)
			}
		}
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return observedFilter(desired.Identity, matches[0]), nil
	default:
		return nil, shared.Ambiguous(a.Kind(), desired.Identity, len(matches))
	}
}

func observedFilter(identity string, f types.MetricFilter) *domain.ObservedState {
	transformations := make([]any, 0, len(f.MetricTransformations))
	for _, t := range f.MetricTransformations {
		transformations = append(transformations, normalizeTransformation(t))
	}
	attrs := map[string]any{
		domain.MetricFilterNameKey:     aws.ToString(f.FilterName),
		domain.MetricFilterLogGroupKey: aws.ToString(f.LogGroupName),
		domain.MetricFilterPatternKey:  aws.ToString(f.FilterPattern),
		"metric_transformations":       transformations,
	}
	if f.CreationTime != nil {
		attrs["creation_time"] = *f.CreationTime
	}
	if len(transformations) > 0 {
		attrs[domain.MetricFilterTransformationKey] = transformations[0]
	}
	return &domain.ObservedState{Identity: identity, Attributes: attrs}
}

func (a *MetricFilterAdapter) Create(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	return a.put(ctx, desired)
}

func (a *MetricFilterAdapter) Update(ctx context.Context, desired domain.DesiredState, _ *domain.ObservedState, _ domain.Diff) (*domain.ObservedState, error) {
	return a.put(ctx, desired)
}

func (a *MetricFilterAdapter) put(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(metricFilterSpec)
	mt := spec.MetricTransformation
	transformation := types.MetricTransformation{
		MetricName:      aws.String(mt.MetricName),
		MetricNamespace: aws.String(mt.MetricNamespace),
		MetricValue:     aws.String(mt.MetricValue),
		DefaultValue:    mt.DefaultValue,
		Unit:            types.StandardUnit(mt.Unit),
	}
	if len(mt.Dimensions) > 0 {
		transformation.Dimensions = mt.Dimensions
	}

	_, err := shared.Invoke(ctx, a.caller, "logs", "PutMetricFilter", func(ctx context.Context) (*cloudwatchlogs.PutMetricFilterOutput, error) {
		return a.client.PutMetricFilter(ctx, &cloudwatchlogs.PutMetricFilterInput{
			LogGroupName:          aws.String(spec.LogGroupName),
			FilterName:            aws.String(spec.FilterName),
			FilterPattern:         spec.FilterPattern,
			MetricTransformations: []types.MetricTransformation{transformation},
		})
	})
	if err != nil {
		return nil, err
	}
	a.logger.Infof(ctx, "Put metric filter %s", desired.Identity)
	return a.Describe(ctx, desired)
}

func (a *MetricFilterAdapter) Delete(ctx context.Context, desired domain.DesiredState, _ *domain.ObservedState) error {
	spec := desired.Spec.(metricFilterSpec)
	_, err := shared.Invoke(ctx, a.caller, "logs", "DeleteMetricFilter", func(ctx context.Context) (*cloudwatchlogs.DeleteMetricFilterOutput, error) {
		return a.client.DeleteMetricFilter(ctx, &cloudwatchlogs.DeleteMetricFilterInput{
			LogGroupName: aws.String(spec.LogGroupName),
			FilterName:   aws.String(spec.FilterName),
		})
	})
	if err != nil {
		return err
	}
	a.logger.Infof(ctx, "Deleted metric filter %s", desired.Identity)
	return nil
}

// Preview shows the filter as PutMetricFilter would leave it.
func (a *MetricFilterAdapter) Preview(desired domain.DesiredState, _ *domain.ObservedState, diff domain.Diff) map[string]any {
	if diff.Action == domain.ActionDelete {
		return nil
	}
	spec := desired.Spec.(metricFilterSpec)
	return map[string]any{
		domain.MetricFilterNameKey:           spec.FilterName,
		domain.MetricFilterLogGroupKey:       spec.LogGroupName,
		domain.MetricFilterPatternKey:        desired.Attributes[domain.MetricFilterPatternKey],
		domain.MetricFilterTransformationKey: desired.Attributes[domain.MetricFilterTransformationKey],
	}
}
