package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

type spotRequestInfoSpec struct {
	SpotInstanceRequestIDs []string       `mapstructure:"spot_instance_request_ids"`
	Filters                map[string]any `mapstructure:"filters"`
	MaxResults             int32          `mapstructure:"max_results" validate:"omitempty,min=5,max=1000"`
}

// SpotRequestInfo lists spot instance requests. Every page is read;
// max_results only sets the page size.
type SpotRequestInfo struct {
	client EC2ClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewSpotRequestInfo(client EC2ClientInterface, caller shared.Caller, logger ports.Logger) *SpotRequestInfo {
	return &SpotRequestInfo{client: client, caller: caller, logger: logger}
}

func (q *SpotRequestInfo) Kind() domain.ResourceKind { return domain.KindSpotRequestInfo }
func (q *SpotRequestInfo) Noun() string              { return "spot_request" }

func (q *SpotRequestInfo) Query(ctx context.Context, params map[string]any, _ ports.FailureHandler) ([]any, error) {
	var spec spotRequestInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}

	input := &ec2.DescribeSpotInstanceRequestsInput{
		SpotInstanceRequestIds: spec.SpotInstanceRequestIDs,
		Filters:                BuildEC2Filters(spec.Filters),
	}
	// The API rejects a page size combined with explicit ids.
	if spec.MaxResults > 0 && len(spec.SpotInstanceRequestIDs) == 0 {
		input.MaxResults = aws.Int32(spec.MaxResults)
	}

	var requests []types.SpotInstanceRequest
	for {
		out, err := shared.Invoke(ctx, q.caller, "ec2", "DescribeSpotInstanceRequests", func(ctx context.Context) (*ec2.DescribeSpotInstanceRequestsOutput, error) {
			return q.client.DescribeSpotInstanceRequests(ctx, input)
		})
		if err != nil {
			return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "failed to describe spot instance requests")
		}
		requests = append(requests, out.SpotInstanceRequests...)
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	q.logger.Debugf(ctx, "Found %d spot instance requests", len(requests))

	items := make([]any, 0, len(requests))
	for _, r := range requests {
		item, err := convert.ToSnakeMap(r)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render spot instance request")
		}
		item[domain.KeyTags] = tagsToMap(r.Tags)
		items = append(items, item)
	}
	return items, nil
}
