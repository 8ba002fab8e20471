package ec2

import (
	"context"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/pkg/compare"
)

func tagsToMap(tags []types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil {
			out[*t.Key] = aws.ToString(t.Value)
		}
	}
	return out
}

// mapToTags converts a tag map to EC2 tags sorted by key.
func mapToTags(tags map[string]string) []types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func tagSpecifications(resourceType types.ResourceType, tags map[string]string) []types.TagSpecification {
	if len(tags) == 0 {
		return nil
	}
	return []types.TagSpecification{{ResourceType: resourceType, Tags: mapToTags(tags)}}
}

// desiredTags keeps an unset tag map as "don't care" instead of "no tags".
func desiredTags(tags map[string]string) any {
	if tags == nil {
		return nil
	}
	return tags
}

// syncTags brings the tags on resourceID in line with desired. A nil desired
// map leaves tags alone.
func syncTags(ctx context.Context, client EC2ClientInterface, caller shared.Caller, resourceID string, desired, observed map[string]string, purge bool) (bool, error) {
	if desired == nil {
		return false, nil
	}
	changes := compare.Tags(desired, observed, purge)
	if changes.Empty() {
		return false, nil
	}

	if len(changes.Set) > 0 {
		_, err := shared.Invoke(ctx, caller, "ec2", "CreateTags", func(ctx context.Context) (*ec2.CreateTagsOutput, error) {
			return client.CreateTags(ctx, &ec2.CreateTagsInput{
				Resources: []string{resourceID},
				Tags:      mapToTags(changes.Set),
			})
		})
		if err != nil {
			return false, err
		}
	}

	if len(changes.Remove) > 0 {
		remove := make([]types.Tag, 0, len(changes.Remove))
		for _, k := range changes.Remove {
			remove = append(remove, types.Tag{Key: aws.String(k)})
		}
		_, err := shared.Invoke(ctx, caller, "ec2", "DeleteTags", func(ctx context.Context) (*ec2.DeleteTagsOutput, error) {
			return client.DeleteTags(ctx, &ec2.DeleteTagsInput{
				Resources: []string{resourceID},
				Tags:      remove,
			})
		})
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

func normalizePlacementGroup(pg types.PlacementGroup) map[string]any {
	attrs := map[string]any{
		domain.KeyName:                   aws.ToString(pg.GroupName),
		domain.KeyState:                  string(pg.State),
		domain.PlacementGroupStrategyKey: string(pg.Strategy),
		domain.KeyTags:                   tagsToMap(pg.Tags),
		domain.PlacementGroupIDKey:       aws.ToString(pg.GroupId),
		domain.KeyARN:                    aws.ToString(pg.GroupArn),
	}
	if pg.PartitionCount != nil {
		attrs[domain.PlacementGroupPartitionCountKey] = *pg.PartitionCount
	}
	if pg.SpreadLevel != "" {
		attrs["spread_level"] = string(pg.SpreadLevel)
	}
	return attrs
}

func normalizeAddress(a types.Address) map[string]any {
	attrs := map[string]any{
		domain.AddressPublicIPKey:           aws.ToString(a.PublicIp),
		domain.AddressAllocationIDKey:       aws.ToString(a.AllocationId),
		domain.AddressAssociationIDKey:      aws.ToString(a.AssociationId),
		domain.AddressDomainKey:             string(a.Domain),
		domain.AddressInstanceIDKey:         aws.ToString(a.InstanceId),
		domain.AddressNetworkInterfaceKey:   aws.ToString(a.NetworkInterfaceId),
		domain.AddressPrivateIPKey:          aws.ToString(a.PrivateIpAddress),
		domain.AddressPublicIPv4PoolKey:     aws.ToString(a.PublicIpv4Pool),
		domain.AddressNetworkBorderGroupKey: aws.ToString(a.NetworkBorderGroup),
		domain.AddressDeviceIDKey:           addressDevice(a),
		domain.KeyTags:                      tagsToMap(a.Tags),
	}
	return attrs
}

// addressDevice is the instance or interface the address is bound to. An
// instance wins because AWS reports both for instance associations.
func addressDevice(a types.Address) string {
	if id := aws.ToString(a.InstanceId); id != "" {
		return id
	}
	return aws.ToString(a.NetworkInterfaceId)
}

func normalizeVpc(v types.Vpc) map[string]any {
	attrs := map[string]any{
		"vpc_id":           aws.ToString(v.VpcId),
		domain.KeyID:       aws.ToString(v.VpcId),
		"cidr_block":       aws.ToString(v.CidrBlock),
		"dhcp_options_id":  aws.ToString(v.DhcpOptionsId),
		"instance_tenancy": string(v.InstanceTenancy),
		"is_default":       aws.ToBool(v.IsDefault),
		"owner_id":         aws.ToString(v.OwnerId),
		domain.KeyState:    string(v.State),
		domain.KeyTags:     tagsToMap(v.Tags),
	}

	cidrs := make([]any, 0, len(v.CidrBlockAssociationSet))
	for _, c := range v.CidrBlockAssociationSet {
		entry := map[string]any{
			"association_id": aws.ToString(c.AssociationId),
			"cidr_block":     aws.ToString(c.CidrBlock),
		}
		if c.CidrBlockState != nil {
			entry["cidr_block_state"] = map[string]any{
				"state":          string(c.CidrBlockState.State),
				"status_message": aws.ToString(c.CidrBlockState.StatusMessage),
			}
		}
		cidrs = append(cidrs, entry)
	}
	attrs["cidr_block_association_set"] = cidrs

	ipv6 := make([]any, 0, len(v.Ipv6CidrBlockAssociationSet))
	for _, c := range v.Ipv6CidrBlockAssociationSet {
		entry := map[string]any{
			"association_id":  aws.ToString(c.AssociationId),
			"ipv6_cidr_block": aws.ToString(c.Ipv6CidrBlock),
		}
		if c.Ipv6CidrBlockState != nil {
			entry["ipv6_cidr_block_state"] = map[string]any{
				"state":          string(c.Ipv6CidrBlockState.State),
				"status_message": aws.ToString(c.Ipv6CidrBlockState.StatusMessage),
			}
		}
		ipv6 = append(ipv6, entry)
	}
	attrs["ipv6_cidr_block_association_set"] = ipv6
	return attrs
}

// trimDNS drops the trailing dot Route 53 style PTR records carry.
func trimDNS(name string) string {
	return strings.TrimSuffix(name, ".")
}
