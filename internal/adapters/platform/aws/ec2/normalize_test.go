package ec2

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	"github.com/olusolaa/infra-reconciler/mocks"
)

func TestNormalizedPlacementGroupRederivesToNoop(t *testing.T) {
	tests := []struct {
		name    string
		fixture types.PlacementGroup
	}{
		{
			name:    "cluster untagged",
			fixture: types.PlacementGroup{GroupName: aws.String("web"), GroupId: aws.String("pg-1"), Strategy: types.PlacementStrategyCluster, State: types.PlacementGroupStateAvailable},
		},
		{
			name: "partition tagged",
			fixture: types.PlacementGroup{
				GroupName:      aws.String("db"),
				GroupId:        aws.String("pg-2"),
				Strategy:       types.PlacementStrategyPartition,
				PartitionCount: aws.Int32(3),
				Tags:           []types.Tag{{Key: aws.String("env"), Value: aws.String("prod")}},
			},
		},
		{
			name:    "spread with level",
			fixture: types.PlacementGroup{GroupName: aws.String("edge"), Strategy: types.PlacementStrategySpread, SpreadLevel: types.SpreadLevelRack},
		},
	}

	adapter := NewPlacementGroupAdapter(new(mocks.MockEC2Client), mocks.MockCaller{}, mocks.NewMockLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed := observedPlacementGroup(tt.fixture)

			params := map[string]any{
				"name":     observed.Attributes[domain.KeyName],
				"strategy": observed.Attributes[domain.PlacementGroupStrategyKey],
				"tags":     observed.Attributes[domain.KeyTags],
			}
			if pc, ok := observed.Attributes[domain.PlacementGroupPartitionCountKey]; ok {
				params["partition_count"] = pc
			}

			desired, err := adapter.Decode(params)
			require.NoError(t, err)
			diff := service.ComputeDiff(adapter.Rules(), desired, observed)
			assert.Equal(t, domain.ActionNoop, diff.Action, "differences: %v", diff.Differences)
		})
	}
}

func TestNormalizedAddressRederivesToNoop(t *testing.T) {
	tests := []struct {
		name       string
		fixture    types.Address
		reverseDNS string
	}{
		{
			name:    "unassociated vpc address",
			fixture: types.Address{PublicIp: aws.String("1.2.3.4"), AllocationId: aws.String("eipalloc-1"), Domain: types.DomainTypeVpc, PublicIpv4Pool: aws.String("amazon")},
		},
		{
			name:    "instance association",
			fixture: vpcAddress("1.2.3.5", "eipalloc-2", "i-1"),
		},
		{
			name: "interface association with tags",
			fixture: types.Address{
				PublicIp:           aws.String("1.2.3.6"),
				AllocationId:       aws.String("eipalloc-3"),
				AssociationId:      aws.String("eipassoc-3"),
				NetworkInterfaceId: aws.String("eni-3"),
				PrivateIpAddress:   aws.String("10.0.0.3"),
				Domain:             types.DomainTypeVpc,
				Tags:               []types.Tag{{Key: aws.String("Name"), Value: aws.String("nat")}},
			},
		},
		{
			name:       "reverse dns",
			fixture:    types.Address{PublicIp: aws.String("1.2.3.7"), AllocationId: aws.String("eipalloc-4"), Domain: types.DomainTypeVpc},
			reverseDNS: "host.example.com",
		},
		{
			name:    "standard domain",
			fixture: types.Address{PublicIp: aws.String("1.2.3.8"), Domain: types.DomainTypeStandard},
		},
	}

	adapter := NewAddressAdapter(new(mocks.MockEC2Client), mocks.MockCaller{}, mocks.NewMockLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := normalizeAddress(tt.fixture)
			if tt.reverseDNS != "" {
				attrs[domain.AddressReverseDNSKey] = tt.reverseDNS
			}
			observed := &domain.ObservedState{Identity: aws.ToString(tt.fixture.AllocationId), Attributes: attrs}

			params := map[string]any{
				"public_ip": attrs[domain.AddressPublicIPKey],
				"tags":      attrs[domain.KeyTags],
				"in_vpc":    attrs[domain.AddressDomainKey] == string(types.DomainTypeVpc),
			}
			if device := observed.String(domain.AddressDeviceIDKey); device != "" {
				params["device_id"] = device
			}
			if pool := observed.String(domain.AddressPublicIPv4PoolKey); pool != "" {
				params["public_ipv4_pool"] = pool
			}
			if ptr := observed.String(domain.AddressReverseDNSKey); ptr != "" {
				params["domain_name"] = ptr
			}

			desired, err := adapter.Decode(params)
			require.NoError(t, err)
			diff := service.ComputeDiff(adapter.Rules(), desired, observed)
			assert.Equal(t, domain.ActionNoop, diff.Action, "differences: %v", diff.Differences)
		})
	}
}
