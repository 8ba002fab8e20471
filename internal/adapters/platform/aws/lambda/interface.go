package lambda

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

//go:generate mockery --name LambdaClientInterface --output ./mocks --outpkg mocks --case underscore

type LambdaClientInterface interface {
	ListLayers(ctx context.Context, params *lambda.ListLayersInput, optFns ...func(*lambda.Options)) (*lambda.ListLayersOutput, error)
	ListLayerVersions(ctx context.Context, params *lambda.ListLayerVersionsInput, optFns ...func(*lambda.Options)) (*lambda.ListLayerVersionsOutput, error)
}
