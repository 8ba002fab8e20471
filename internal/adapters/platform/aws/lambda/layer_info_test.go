package lambda

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/mocks"
)

func newLayerInfo(t *testing.T) (*LayerInfo, *mocks.MockLambdaClient, *service.Reconciler) {
	t.Helper()
	client := new(mocks.MockLambdaClient)
	t.Cleanup(func() { client.AssertExpectations(t) })
	logger := mocks.NewMockLogger()
	return NewLayerInfo(client, mocks.MockCaller{}, logger), client, service.NewReconciler(logger, domain.DefaultFailurePolicies())
}

func TestLayerInfoListsLatestVersions(t *testing.T) {
	info, client, reconciler := newLayerInfo(t)

	client.On("ListLayers", mock.Anything, mock.MatchedBy(func(in *lambda.ListLayersInput) bool {
		return in.Marker == nil && in.CompatibleRuntime == types.RuntimeNodejs && in.CompatibleArchitecture == types.ArchitectureArm64
	})).Return(&lambda.ListLayersOutput{
		NextMarker: aws.String("002"),
		Layers: []types.LayersListItem{{
			LayerName: aws.String("test-layer-01"),
			LayerArn:  aws.String("arn:aws:lambda:eu-west-2:123456789012:layer:test-layer-01"),
			LatestMatchingVersion: &types.LayerVersionsListItem{
				LayerVersionArn:         aws.String("arn:aws:lambda:eu-west-2:123456789012:layer:test-layer-01:1"),
				Version:                 1,
				Description:             aws.String("lambda layer created for unit tests"),
				LicenseInfo:             aws.String("MIT"),
				CompatibleRuntimes:      []types.Runtime{types.RuntimeNodejs},
				CompatibleArchitectures: []types.Architecture{types.ArchitectureArm64},
			},
		}},
	}, nil).Once()
	client.On("ListLayers", mock.Anything, mock.MatchedBy(func(in *lambda.ListLayersInput) bool {
		return aws.ToString(in.Marker) == "002"
	})).Return(&lambda.ListLayersOutput{
		Layers: []types.LayersListItem{{
			LayerName: aws.String("test-layer-02"),
			LayerArn:  aws.String("arn:aws:lambda:eu-west-2:123456789012:layer:test-layer-02"),
		}},
	}, nil).Once()

	result, err := reconciler.Query(context.Background(), info, map[string]any{
		"compatible_runtime":      "nodejs",
		"compatible_architecture": "arm64",
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "layers_versions", result.Noun)

	first := result.Items[0].(map[string]any)
	assert.Equal(t, "test-layer-01", first["layer_name"])
	assert.Equal(t, "arn:aws:lambda:eu-west-2:123456789012:layer:test-layer-01:1", first["layer_version_arn"])
	assert.Equal(t, float64(1), first["version"])
	assert.Equal(t, "MIT", first["license_info"])
	assert.Equal(t, []any{"arm64"}, first["compatible_architectures"])

	second := result.Items[1].(map[string]any)
	assert.Equal(t, "test-layer-02", second["layer_name"])
}

func TestLayerInfoListsVersionsOfNamedLayer(t *testing.T) {
	info, client, reconciler := newLayerInfo(t)

	client.On("ListLayerVersions", mock.Anything, &lambda.ListLayerVersionsInput{LayerName: aws.String("layer-01")}).
		Return(&lambda.ListLayerVersionsOutput{LayerVersions: []types.LayerVersionsListItem{
			{Version: 2, LicenseInfo: aws.String("MIT"), CompatibleRuntimes: []types.Runtime{types.RuntimePython37}},
			{Version: 1, LicenseInfo: aws.String("GPL-3.0-only"), Description: aws.String("lambda layer first version")},
		}}, nil).Once()

	result, err := reconciler.Query(context.Background(), info, map[string]any{"layer_name": "layer-01"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, float64(2), result.Items[0].(map[string]any)["version"])
	assert.Equal(t, []any{"python3.7"}, result.Items[0].(map[string]any)["compatible_runtimes"])
	assert.Equal(t, "lambda layer first version", result.Items[1].(map[string]any)["description"])
}

func TestLayerInfoRejectsUnknownArchitecture(t *testing.T) {
	info, _, reconciler := newLayerInfo(t)

	_, err := reconciler.Query(context.Background(), info, map[string]any{"compatible_architecture": "sparc"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestLayerInfoListFailure(t *testing.T) {
	info, client, reconciler := newLayerInfo(t)

	client.On("ListLayerVersions", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "ServiceException", Message: "failed"}).Once()

	_, err := reconciler.Query(context.Background(), info, map[string]any{"name": "test-layer"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to list layer versions")
}
