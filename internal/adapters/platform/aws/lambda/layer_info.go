package lambda

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

var layerAliases = map[string]string{"layer_name": "name"}

type layerInfoSpec struct {
	Name                   string `mapstructure:"name"`
	CompatibleRuntime      string `mapstructure:"compatible_runtime"`
	CompatibleArchitecture string `mapstructure:"compatible_architecture" validate:"omitempty,oneof=x86_64 arm64"`
}

// LayerInfo lists the latest version of every layer, or every version of
// one named layer.
type LayerInfo struct {
	client LambdaClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewLayerInfo(client LambdaClientInterface, caller shared.Caller, logger ports.Logger) *LayerInfo {
	return &LayerInfo{client: client, caller: caller, logger: logger}
}

func (q *LayerInfo) Kind() domain.ResourceKind { return domain.KindLambdaLayerInfo }
func (q *LayerInfo) Noun() string              { return "layers_versions" }

func (q *LayerInfo) Query(ctx context.Context, params map[string]any, _ ports.FailureHandler) ([]any, error) {
	params, err := shared.ResolveAliases(params, layerAliases)
	if err != nil {
		return nil, err
	}
	var spec layerInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}

	if spec.Name != "" {
		return q.layerVersions(ctx, spec)
	}
	return q.layers(ctx, spec)
}

func (q *LayerInfo) layers(ctx context.Context, spec layerInfoSpec) ([]any, error) {
	input := &lambda.ListLayersInput{
		CompatibleRuntime:      types.Runtime(spec.CompatibleRuntime),
		CompatibleArchitecture: types.Architecture(spec.CompatibleArchitecture),
	}

	var items []any
	for {
		out, err := shared.Invoke(ctx, q.caller, "lambda", "ListLayers", func(ctx context.Context) (*lambda.ListLayersOutput, error) {
			return q.client.ListLayers(ctx, input)
		})
		if err != nil {
			return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "Unable to list layers")
		}
		for _, layer := range out.Layers {
			item, err := flattenLayer(layer)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if aws.ToString(out.NextMarker) == "" {
			return items, nil
		}
		input.Marker = out.NextMarker
	}
}

func (q *LayerInfo) layerVersions(ctx context.Context, spec layerInfoSpec) ([]any, error) {
	input := &lambda.ListLayerVersionsInput{
		LayerName:              aws.String(spec.Name),
		CompatibleRuntime:      types.Runtime(spec.CompatibleRuntime),
		CompatibleArchitecture: types.Architecture(spec.CompatibleArchitecture),
	}

	var items []any
	for {
		out, err := shared.Invoke(ctx, q.caller, "lambda", "ListLayerVersions", func(ctx context.Context) (*lambda.ListLayerVersionsOutput, error) {
			return q.client.ListLayerVersions(ctx, input)
		})
		if err != nil {
			return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "Unable to list layer versions")
		}
		for _, version := range out.LayerVersions {
			item, err := convert.ToSnakeMap(version)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render layer version")
			}
			items = append(items, item)
		}
		if aws.ToString(out.NextMarker) == "" {
			return items, nil
		}
		input.Marker = out.NextMarker
	}
}

// flattenLayer lifts the latest matching version's fields next to the
// layer's own name and ARN.
func flattenLayer(layer types.LayersListItem) (map[string]any, error) {
	item := map[string]any{}
	if layer.LatestMatchingVersion != nil {
		var err error
		if item, err = convert.ToSnakeMap(layer.LatestMatchingVersion); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render layer")
		}
	}
	item["layer_name"] = aws.ToString(layer.LayerName)
	item["layer_arn"] = aws.ToString(layer.LayerArn)
	return item, nil
}
