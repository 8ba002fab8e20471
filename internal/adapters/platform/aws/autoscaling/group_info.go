package autoscaling

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

// DescribeTargetGroups accepts at most this many ARNs per call.
const targetGroupChunk = 20

type groupInfoSpec struct {
	Name string            `mapstructure:"name"`
	Tags map[string]string `mapstructure:"tags"`
}

// GroupInfo lists auto scaling groups whose name starts with a pattern and
// that carry every requested tag.
type GroupInfo struct {
	client       AutoScalingClientInterface
	targetGroups TargetGroupClientInterface
	caller       shared.Caller
	logger       ports.Logger
}

// NewGroupInfo builds the query. targetGroups may be nil, in which case
// target group names are not resolved.
func NewGroupInfo(client AutoScalingClientInterface, targetGroups TargetGroupClientInterface, caller shared.Caller, logger ports.Logger) *GroupInfo {
	return &GroupInfo{client: client, targetGroups: targetGroups, caller: caller, logger: logger}
}

func (q *GroupInfo) Kind() domain.ResourceKind { return domain.KindAutoScalingInfo }
func (q *GroupInfo) Noun() string              { return "results" }

func (q *GroupInfo) Query(ctx context.Context, params map[string]any, _ ports.FailureHandler) ([]any, error) {
	var spec groupInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}

	var namePattern *regexp.Regexp
	if spec.Name != "" {
		re, err := regexp.Compile("^" + spec.Name)
		if err != nil {
			return nil, shared.Invalid("name %q is not a valid regular expression: %v", spec.Name, err)
		}
		namePattern = re
	}

	groups, err := q.describeGroups(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(groups))
	for _, g := range groups {
		if namePattern != nil && !namePattern.MatchString(aws.ToString(g.AutoScalingGroupName)) {
			continue
		}
		if !hasTags(g.Tags, spec.Tags) {
			continue
		}
		item, err := q.render(ctx, g)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	q.logger.Debugf(ctx, "Matched %d of %d auto scaling groups", len(items), len(groups))
	return items, nil
}

func (q *GroupInfo) describeGroups(ctx context.Context) ([]types.AutoScalingGroup, error) {
	input := &autoscaling.DescribeAutoScalingGroupsInput{}
	var groups []types.AutoScalingGroup
	for {
		out, err := shared.Invoke(ctx, q.caller, "autoscaling", "DescribeAutoScalingGroups", func(ctx context.Context) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
			return q.client.DescribeAutoScalingGroups(ctx, input)
		})
		if err != nil {
			return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "failed to describe auto scaling groups")
		}
		groups = append(groups, out.AutoScalingGroups...)
		if aws.ToString(out.NextToken) == "" {
			return groups, nil
		}
		input.NextToken = out.NextToken
	}
}

// hasTags reports whether every wanted key is present with the wanted value.
func hasTags(tags []types.TagDescription, want map[string]string) bool {
	for key, value := range want {
		found := false
		for _, t := range tags {
			if aws.ToString(t.Key) == key && aws.ToString(t.Value) == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (q *GroupInfo) render(ctx context.Context, g types.AutoScalingGroup) (map[string]any, error) {
	item, err := convert.ToSnakeMap(g)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render auto scaling group")
	}

	// CamelToSnake splits the ARNs acronym.
	delete(item, "target_group_ar_ns")
	item["target_group_arns"] = nonNil(g.TargetGroupARNs)
	if g.LaunchConfigurationName != nil {
		item["launch_config_name"] = aws.ToString(g.LaunchConfigurationName)
	}

	names, err := q.targetGroupNames(ctx, g.TargetGroupARNs)
	if err != nil {
		return nil, err
	}
	if names != nil {
		item["target_group_names"] = names
	}

	hooks, err := q.lifecycleHooks(ctx, aws.ToString(g.AutoScalingGroupName))
	if err != nil {
		return nil, err
	}
	item["lifecycle_hooks"] = hooks
	return item, nil
}

// targetGroupNames returns nil when names cannot be resolved because no
// load balancing client is configured.
func (q *GroupInfo) targetGroupNames(ctx context.Context, arns []string) ([]string, error) {
	if len(arns) == 0 {
		return []string{}, nil
	}
	if q.targetGroups == nil {
		return nil, nil
	}

	names := make([]string, 0, len(arns))
	for start := 0; start < len(arns); start += targetGroupChunk {
		end := min(start+targetGroupChunk, len(arns))
		input := &elbv2.DescribeTargetGroupsInput{TargetGroupArns: arns[start:end]}
		for {
			out, err := shared.Invoke(ctx, q.caller, "elasticloadbalancingv2", "DescribeTargetGroups", func(ctx context.Context) (*elbv2.DescribeTargetGroupsOutput, error) {
				return q.targetGroups.DescribeTargetGroups(ctx, input)
			})
			if err != nil {
				return nil, apperrors.Reclassify(err, apperrors.GetCode(err), "failed to describe target groups")
			}
			for _, tg := range out.TargetGroups {
				names = append(names, aws.ToString(tg.TargetGroupName))
			}
			if aws.ToString(out.NextMarker) == "" {
				break
			}
			input.Marker = out.NextMarker
		}
	}
	return names, nil
}

func (q *GroupInfo) lifecycleHooks(ctx context.Context, group string) ([]any, error) {
	out, err := shared.Invoke(ctx, q.caller, "autoscaling", "DescribeLifecycleHooks", func(ctx context.Context) (*autoscaling.DescribeLifecycleHooksOutput, error) {
		return q.client.DescribeLifecycleHooks(ctx, &autoscaling.DescribeLifecycleHooksInput{AutoScalingGroupName: aws.String(group)})
	})
	if err != nil {
		return nil, apperrors.Reclassify(err, apperrors.GetCode(err), fmt.Sprintf("failed to fetch lifecycle hooks for %s", group))
	}

	hooks := make([]any, 0, len(out.LifecycleHooks))
	for _, h := range out.LifecycleHooks {
		hook, err := convert.ToSnakeMap(h)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to render lifecycle hook")
		}
		hooks = append(hooks, hook)
	}
	return hooks, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
