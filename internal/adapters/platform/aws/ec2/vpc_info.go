package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

type vpcInfoSpec struct {
	VpcIDs  []string       `mapstructure:"vpc_ids"`
	Filters map[string]any `mapstructure:"filters"`
}

// A VPC vanishing between listing and attribute lookup only warrants a warning.
var vpcAttributePolicies = domain.FailurePolicies{OnMissing: domain.PolicyWarn}

// VpcInfo lists VPCs with their DNS and ClassicLink attributes.
type VpcInfo struct {
	client EC2ClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewVpcInfo(client EC2ClientInterface, caller shared.Caller, logger ports.Logger) *VpcInfo {
	return &VpcInfo{client: client, caller: caller, logger: logger}
}

func (q *VpcInfo) Kind() domain.ResourceKind { return domain.KindVPCInfo }
func (q *VpcInfo) Noun() string              { return "vpcs" }

func (q *VpcInfo) Query(ctx context.Context, params map[string]any, failures ports.FailureHandler) ([]any, error) {
	var spec vpcInfoSpec
	if err := shared.DecodeParams(q.Kind(), params, &spec); err != nil {
		return nil, err
	}

	vpcs, err := q.describeVpcs(ctx, spec)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(vpcs))
	for _, vpc := range vpcs {
		vpcID := aws.ToString(vpc.VpcId)
		attrs := normalizeVpc(vpc)

		if err := q.classicLink(ctx, vpcID, attrs, failures); err != nil {
			return nil, err
		}
		for _, attribute := range []types.VpcAttributeName{types.VpcAttributeNameEnableDnsSupport, types.VpcAttributeNameEnableDnsHostnames} {
			value, found, err := q.vpcAttribute(ctx, vpcID, attribute, failures)
			if err != nil {
				return nil, err
			}
			if found {
				attrs[convert.CamelToSnake(string(attribute))] = value
			}
		}
		items = append(items, attrs)
	}
	return items, nil
}

func (q *VpcInfo) describeVpcs(ctx context.Context, spec vpcInfoSpec) ([]types.Vpc, error) {
	input := &ec2.DescribeVpcsInput{
		VpcIds:  spec.VpcIDs,
		Filters: BuildEC2Filters(spec.Filters),
	}

	var vpcs []types.Vpc
	for {
		out, err := shared.Invoke(ctx, q.caller, "ec2", "DescribeVpcs", func(ctx context.Context) (*ec2.DescribeVpcsOutput, error) {
			return q.client.DescribeVpcs(ctx, input)
		})
		if err != nil {
			return nil, err
		}
		vpcs = append(vpcs, out.Vpcs...)
		if aws.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	q.logger.Debugf(ctx, "Found %d VPCs", len(vpcs))
	return vpcs, nil
}

// classicLink fills in both ClassicLink flags. Regions without ClassicLink
// answer UnsupportedOperation, which reads as disabled.
func (q *VpcInfo) classicLink(ctx context.Context, vpcID string, attrs map[string]any, failures ports.FailureHandler) error {
	enabled, err := shared.Invoke(ctx, q.caller, "ec2", "DescribeVpcClassicLink", func(ctx context.Context) (*ec2.DescribeVpcClassicLinkOutput, error) {
		return q.client.DescribeVpcClassicLink(ctx, &ec2.DescribeVpcClassicLinkInput{VpcIds: []string{vpcID}})
	})
	switch {
	case err == nil:
		for _, v := range enabled.Vpcs {
			if aws.ToString(v.VpcId) == vpcID {
				attrs["classic_link_enabled"] = aws.ToBool(v.ClassicLinkEnabled)
			}
		}
	case awserrors.HasCode(err, "UnsupportedOperation"):
		attrs["classic_link_enabled"] = false
	default:
		if err := failures.Handle(ctx, fmt.Sprintf("VPC attribute ClassicLinkEnabled on VPC %s", vpcID), err, vpcAttributePolicies); err != nil {
			return err
		}
	}

	dns, err := shared.Invoke(ctx, q.caller, "ec2", "DescribeVpcClassicLinkDnsSupport", func(ctx context.Context) (*ec2.DescribeVpcClassicLinkDnsSupportOutput, error) {
		return q.client.DescribeVpcClassicLinkDnsSupport(ctx, &ec2.DescribeVpcClassicLinkDnsSupportInput{VpcIds: []string{vpcID}})
	})
	switch {
	case err == nil:
		for _, v := range dns.Vpcs {
			if aws.ToString(v.VpcId) == vpcID {
				attrs["classic_link_dns_supported"] = aws.ToBool(v.ClassicLinkDnsSupported)
			}
		}
	case awserrors.HasCode(err, "UnsupportedOperation"):
		attrs["classic_link_dns_supported"] = false
	default:
		if err := failures.Handle(ctx, fmt.Sprintf("VPC attribute ClassicLinkDnsSupported on VPC %s", vpcID), err, vpcAttributePolicies); err != nil {
			return err
		}
	}
	return nil
}

func (q *VpcInfo) vpcAttribute(ctx context.Context, vpcID string, attribute types.VpcAttributeName, failures ports.FailureHandler) (bool, bool, error) {
	out, err := shared.Invoke(ctx, q.caller, "ec2", "DescribeVpcAttribute", func(ctx context.Context) (*ec2.DescribeVpcAttributeOutput, error) {
		return q.client.DescribeVpcAttribute(ctx, &ec2.DescribeVpcAttributeInput{VpcId: aws.String(vpcID), Attribute: attribute})
	})
	if err != nil {
		return false, false, failures.Handle(ctx, fmt.Sprintf("VPC attribute %s on VPC %s", attribute, vpcID), err, vpcAttributePolicies)
	}

	var value *types.AttributeBooleanValue
	switch attribute {
	case types.VpcAttributeNameEnableDnsSupport:
		value = out.EnableDnsSupport
	case types.VpcAttributeNameEnableDnsHostnames:
		value = out.EnableDnsHostnames
	}
	if value == nil {
		return false, true, nil
	}
	return aws.ToBool(value.Value), true, nil
}
