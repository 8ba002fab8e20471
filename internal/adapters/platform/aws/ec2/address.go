package ec2

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

type addressSpec struct {
	State                   domain.State      `mapstructure:"state" validate:"omitempty,oneof=present absent"`
	PublicIP                string            `mapstructure:"public_ip" validate:"omitempty,ip"`
	AllocationID            string            `mapstructure:"allocation_id"`
	DeviceID                string            `mapstructure:"device_id"`
	InVPC                   bool              `mapstructure:"in_vpc"`
	ReuseExistingIPAllowed  bool              `mapstructure:"reuse_existing_ip_allowed"`
	ReleaseOnDisassociation bool              `mapstructure:"release_on_disassociation"`
	AllowReassociation      bool              `mapstructure:"allow_reassociation"`
	PrivateIPAddress        string            `mapstructure:"private_ip_address" validate:"omitempty,ip"`
	Tags                    map[string]string `mapstructure:"tags"`
	PurgeTags               *bool             `mapstructure:"purge_tags"`
	TagName                 string            `mapstructure:"tag_name"`
	TagValue                string            `mapstructure:"tag_value"`
	PublicIPv4Pool          string            `mapstructure:"public_ipv4_pool"`
	DomainName              string            `mapstructure:"domain_name"`
}

func (s addressSpec) isInstance() bool {
	return strings.HasPrefix(s.DeviceID, "i-")
}

// AddressAdapter reconciles Elastic IP addresses: allocation, association
// with an instance or network interface, tags and the reverse DNS record.
type AddressAdapter struct {
	client EC2ClientInterface
	caller shared.Caller
	logger ports.Logger
}

func NewAddressAdapter(client EC2ClientInterface, caller shared.Caller, logger ports.Logger) *AddressAdapter {
	return &AddressAdapter{client: client, caller: caller, logger: logger}
}

func (a *AddressAdapter) Kind() domain.ResourceKind { return domain.KindElasticIP }
func (a *AddressAdapter) Noun() string              { return "address" }

var addressAliases = map[string]string{
	"ip":            "public_ip",
	"resource_tags": "tags",
}

func (a *AddressAdapter) Decode(params map[string]any) (domain.DesiredState, error) {
	params, err := shared.ResolveAliases(params, addressAliases)
	if err != nil {
		return domain.DesiredState{}, err
	}
	var spec addressSpec
	if err := shared.DecodeParams(a.Kind(), params, &spec); err != nil {
		return domain.DesiredState{}, err
	}

	switch {
	case spec.PrivateIPAddress != "" && spec.DeviceID == "":
		return domain.DesiredState{}, shared.Invalid("'private_ip_address' requires 'device_id'.")
	case spec.TagValue != "" && spec.TagName == "":
		return domain.DesiredState{}, shared.Invalid("'tag_value' requires 'tag_name'.")
	case spec.DeviceID != "" && !spec.isInstance() && !strings.HasPrefix(spec.DeviceID, "eni-"):
		return domain.DesiredState{}, shared.Invalid("'device_id' must be an instance (i-) or network interface (eni-) id, got '%s'.", spec.DeviceID)
	case strings.HasPrefix(spec.DeviceID, "eni-") && !spec.InVPC:
		return domain.DesiredState{}, shared.Invalid("If you are specifying an ENI, in_vpc must be true")
	}

	attrs := map[string]any{domain.KeyTags: desiredTags(spec.Tags)}
	if spec.DeviceID != "" {
		attrs[domain.AddressDeviceIDKey] = spec.DeviceID
	}
	if spec.DomainName != "" {
		attrs[domain.AddressReverseDNSKey] = trimDNS(spec.DomainName)
	}
	if spec.InVPC {
		attrs[domain.AddressDomainKey] = string(types.DomainTypeVpc)
	}
	if spec.PublicIPv4Pool != "" {
		attrs[domain.AddressPublicIPv4PoolKey] = spec.PublicIPv4Pool
	}

	return domain.DesiredState{
		Kind:       a.Kind(),
		State:      shared.StateOrDefault(spec.State),
		Identity:   addressIdentity(spec),
		Attributes: attrs,
		PurgeTags:  shared.BoolOr(spec.PurgeTags, true),
		Spec:       spec,
	}, nil
}

func addressIdentity(spec addressSpec) string {
	switch {
	case spec.PublicIP != "":
		return spec.PublicIP
	case spec.AllocationID != "":
		return spec.AllocationID
	case spec.DeviceID != "":
		return spec.DeviceID
	default:
		return "new address"
	}
}

func (a *AddressAdapter) Rules() []domain.FieldRule {
	return []domain.FieldRule{
		domain.Exact(domain.AddressDeviceIDKey),
		domain.Tags(),
		domain.Exact(domain.AddressReverseDNSKey),
		domain.Exact(domain.AddressDomainKey).Frozen(),
		domain.Exact(domain.AddressPublicIPv4PoolKey).Frozen(),
	}
}

// Describe finds the address by public IP, allocation id or the device it is
// bound to, in that order. With none of those there is nothing to find.
func (a *AddressAdapter) Describe(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(addressSpec)

	input := &ec2.DescribeAddressesInput{}
	switch {
	case spec.PublicIP != "":
		input.PublicIps = []string{spec.PublicIP}
	case spec.AllocationID != "":
		input.AllocationIds = []string{spec.AllocationID}
	case spec.isInstance():
		input.Filters = []types.Filter{nameFilter("instance-id", spec.DeviceID)}
	case spec.DeviceID != "":
		input.Filters = []types.Filter{nameFilter("network-interface-id", spec.DeviceID)}
	default:
		return nil, nil
	}

	observed, err := a.lookup(ctx, input, desired.Identity, spec)
	if err != nil || observed == nil {
		return observed, err
	}

	// Removing an address from a device it is not bound to is a no-op.
	if desired.State == domain.StateAbsent && spec.DeviceID != "" && observed.String(domain.AddressDeviceIDKey) != spec.DeviceID {
		return nil, nil
	}
	return observed, nil
}

func (a *AddressAdapter) lookup(ctx context.Context, input *ec2.DescribeAddressesInput, identity string, spec addressSpec) (*domain.ObservedState, error) {
	out, err := shared.Invoke(ctx, a.caller, "ec2", "DescribeAddresses", func(ctx context.Context) (*ec2.DescribeAddressesOutput, error) {
		return a.client.DescribeAddresses(ctx, input)
	})
	if err != nil {
		if awserrors.HasCode(err, "InvalidAddress.NotFound", "InvalidAllocationID.NotFound") {
			return nil, nil
		}
		return nil, err
	}

	switch len(out.Addresses) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, shared.Ambiguous(a.Kind(), identity, len(out.Addresses))
	}

	address := out.Addresses[0]
	attrs := normalizeAddress(address)
	if spec.DomainName != "" && address.AllocationId != nil {
		ptr, err := a.reverseDNS(ctx, *address.AllocationId)
		if err != nil {
			return nil, err
		}
		attrs[domain.AddressReverseDNSKey] = ptr
	}
	return &domain.ObservedState{Identity: aws.ToString(address.AllocationId), Attributes: attrs}, nil
}

func (a *AddressAdapter) reverseDNS(ctx context.Context, allocationID string) (string, error) {
	out, err := shared.Invoke(ctx, a.caller, "ec2", "DescribeAddressesAttribute", func(ctx context.Context) (*ec2.DescribeAddressesAttributeOutput, error) {
		return a.client.DescribeAddressesAttribute(ctx, &ec2.DescribeAddressesAttributeInput{
			AllocationIds: []string{allocationID},
			Attribute:     types.AddressAttributeNameDomainName,
		})
	})
	if err != nil {
		return "", err
	}
	for _, attr := range out.Addresses {
		if aws.ToString(attr.AllocationId) == allocationID {
			return trimDNS(aws.ToString(attr.PtrRecord)), nil
		}
	}
	return "", nil
}

func (a *AddressAdapter) Create(ctx context.Context, desired domain.DesiredState) (*domain.ObservedState, error) {
	spec := desired.Spec.(addressSpec)

	if err := a.checkInstanceDomain(ctx, spec); err != nil {
		return nil, err
	}
	address, reused, err := a.allocate(ctx, spec)
	if err != nil {
		return nil, err
	}
	allocationID := aws.ToString(address.AllocationId)

	if spec.DeviceID != "" && addressDevice(address) != spec.DeviceID {
		if err := a.associate(ctx, spec, address); err != nil {
			return nil, err
		}
	}
	if reused {
		if _, err := syncTags(ctx, a.client, a.caller, allocationID, spec.Tags, tagsToMap(address.Tags), desired.PurgeTags); err != nil {
			return nil, err
		}
	}
	if spec.DomainName != "" {
		if err := a.setReverseDNS(ctx, allocationID, spec.DomainName); err != nil {
			return nil, err
		}
	}

	return a.lookup(ctx, &ec2.DescribeAddressesInput{AllocationIds: []string{allocationID}}, allocationID, spec)
}

// checkInstanceDomain rejects reusing an address for a VPC instance unless
// in_vpc is set, since AWS would refuse the association.
func (a *AddressAdapter) checkInstanceDomain(ctx context.Context, spec addressSpec) error {
	if !spec.isInstance() || !spec.ReuseExistingIPAllowed || spec.InVPC {
		return nil
	}
	out, err := shared.Invoke(ctx, a.caller, "ec2", "DescribeInstances", func(ctx context.Context) (*ec2.DescribeInstancesOutput, error) {
		return a.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{spec.DeviceID}})
	})
	if err != nil {
		return err
	}
	for _, r := range out.Reservations {
		for _, inst := range r.Instances {
			if aws.ToString(inst.VpcId) != "" {
				return shared.Invalid("You must set 'in_vpc' to true to associate an instance with an existing ip in a vpc")
			}
		}
	}
	return nil
}

// allocate returns an unassociated address matching the search tags when
// reuse is allowed, or a freshly allocated one.
func (a *AddressAdapter) allocate(ctx context.Context, spec addressSpec) (types.Address, bool, error) {
	if spec.ReuseExistingIPAllowed {
		filters := TagSearchFilter(spec.TagName, spec.TagValue)
		if filters == nil {
			filters = map[string]any{}
		}
		if spec.InVPC {
			filters["domain"] = string(types.DomainTypeVpc)
		}
		out, err := shared.Invoke(ctx, a.caller, "ec2", "DescribeAddresses", func(ctx context.Context) (*ec2.DescribeAddressesOutput, error) {
			return a.client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{Filters: BuildEC2Filters(filters)})
		})
		if err != nil {
			return types.Address{}, false, err
		}
		for _, addr := range out.Addresses {
			if aws.ToString(addr.AssociationId) == "" && aws.ToString(addr.InstanceId) == "" {
				a.logger.Infof(ctx, "Reusing unassociated address %s", aws.ToString(addr.PublicIp))
				return addr, true, nil
			}
		}
	}

	input := &ec2.AllocateAddressInput{
		TagSpecifications: tagSpecifications(types.ResourceTypeElasticIp, spec.Tags),
	}
	if spec.InVPC {
		input.Domain = types.DomainTypeVpc
	}
	if spec.PublicIPv4Pool != "" {
		input.PublicIpv4Pool = aws.String(spec.PublicIPv4Pool)
	}
	out, err := shared.Invoke(ctx, a.caller, "ec2", "AllocateAddress", func(ctx context.Context) (*ec2.AllocateAddressOutput, error) {
		return a.client.AllocateAddress(ctx, input)
	})
	if err != nil {
		return types.Address{}, false, err
	}
	a.logger.Infof(ctx, "Allocated address %s", aws.ToString(out.PublicIp))
	return types.Address{
		AllocationId:   out.AllocationId,
		PublicIp:       out.PublicIp,
		Domain:         out.Domain,
		PublicIpv4Pool: out.PublicIpv4Pool,
		Tags:           mapToTags(spec.Tags),
	}, false, nil
}

func (a *AddressAdapter) associate(ctx context.Context, spec addressSpec, address types.Address) error {
	input := &ec2.AssociateAddressInput{AllowReassociation: aws.Bool(spec.AllowReassociation)}
	if spec.isInstance() {
		input.InstanceId = aws.String(spec.DeviceID)
		if address.Domain == types.DomainTypeVpc {
			input.AllocationId = address.AllocationId
		} else {
			input.PublicIp = address.PublicIp
		}
	} else {
		input.NetworkInterfaceId = aws.String(spec.DeviceID)
		input.AllocationId = address.AllocationId
	}
	if spec.PrivateIPAddress != "" {
		input.PrivateIpAddress = aws.String(spec.PrivateIPAddress)
	}

	_, err := shared.Invoke(ctx, a.caller, "ec2", "AssociateAddress", func(ctx context.Context) (*ec2.AssociateAddressOutput, error) {
		return a.client.AssociateAddress(ctx, input)
	})
	if err != nil {
		return err
	}
	a.logger.Infof(ctx, "Associated %s with %s", aws.ToString(address.PublicIp), spec.DeviceID)
	return nil
}

func (a *AddressAdapter) setReverseDNS(ctx context.Context, allocationID, name string) error {
	_, err := shared.Invoke(ctx, a.caller, "ec2", "ModifyAddressAttribute", func(ctx context.Context) (*ec2.ModifyAddressAttributeOutput, error) {
		return a.client.ModifyAddressAttribute(ctx, &ec2.ModifyAddressAttributeInput{
			AllocationId: aws.String(allocationID),
			DomainName:   aws.String(name),
		})
	})
	return err
}

func (a *AddressAdapter) Update(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) (*domain.ObservedState, error) {
	spec := desired.Spec.(addressSpec)
	allocationID := observed.String(domain.AddressAllocationIDKey)

	if diff.Has(domain.AddressDeviceIDKey) {
		if err := a.checkInstanceDomain(ctx, spec); err != nil {
			return nil, err
		}
		address := types.Address{
			AllocationId: aws.String(allocationID),
			PublicIp:     aws.String(observed.String(domain.AddressPublicIPKey)),
			Domain:       types.DomainType(observed.String(domain.AddressDomainKey)),
		}
		if err := a.associate(ctx, spec, address); err != nil {
			return nil, err
		}
	}
	if diff.Has(domain.KeyTags) {
		if _, err := syncTags(ctx, a.client, a.caller, allocationID, spec.Tags, observed.Tags(), desired.PurgeTags); err != nil {
			return nil, err
		}
	}
	if diff.Has(domain.AddressReverseDNSKey) {
		if err := a.setReverseDNS(ctx, allocationID, spec.DomainName); err != nil {
			return nil, err
		}
	}

	return a.lookup(ctx, &ec2.DescribeAddressesInput{AllocationIds: []string{allocationID}}, allocationID, spec)
}

// Delete disassociates the address from the requested device, then releases
// it when no device was named or release_on_disassociation is set.
func (a *AddressAdapter) Delete(ctx context.Context, desired domain.DesiredState, observed *domain.ObservedState) error {
	spec := desired.Spec.(addressSpec)

	if spec.DeviceID != "" {
		associationID := observed.String(domain.AddressAssociationIDKey)
		input := &ec2.DisassociateAddressInput{}
		if associationID != "" {
			input.AssociationId = aws.String(associationID)
		} else {
			input.PublicIp = aws.String(observed.String(domain.AddressPublicIPKey))
		}
		_, err := shared.Invoke(ctx, a.caller, "ec2", "DisassociateAddress", func(ctx context.Context) (*ec2.DisassociateAddressOutput, error) {
			return a.client.DisassociateAddress(ctx, input)
		})
		if err != nil {
			return err
		}
		a.logger.Infof(ctx, "Disassociated %s from %s", observed.String(domain.AddressPublicIPKey), spec.DeviceID)
		if !spec.ReleaseOnDisassociation {
			return nil
		}
	}

	input := &ec2.ReleaseAddressInput{}
	if id := observed.String(domain.AddressAllocationIDKey); id != "" {
		input.AllocationId = aws.String(id)
	} else {
		input.PublicIp = aws.String(observed.String(domain.AddressPublicIPKey))
	}
	_, err := shared.Invoke(ctx, a.caller, "ec2", "ReleaseAddress", func(ctx context.Context) (*ec2.ReleaseAddressOutput, error) {
		return a.client.ReleaseAddress(ctx, input)
	})
	if err != nil {
		return err
	}
	a.logger.Infof(ctx, "Released %s", observed.String(domain.AddressPublicIPKey))
	return nil
}

func (a *AddressAdapter) Preview(desired domain.DesiredState, observed *domain.ObservedState, diff domain.Diff) map[string]any {
	if diff.Action == domain.ActionDelete {
		return nil
	}
	preview := map[string]any{}
	if observed != nil {
		for k, v := range observed.Attributes {
			preview[k] = v
		}
	}
	for k, v := range desired.Attributes {
		if v != nil {
			preview[k] = v
		}
	}
	if diff.Action == domain.ActionCreate {
		preview[domain.KeyState] = "DryRun"
	}
	return preview
}
