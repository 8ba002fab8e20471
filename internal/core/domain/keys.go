package domain

// Canonical attribute keys shared across kinds. Observed attributes always use
// snake_case and tags are always a map[string]string.
const (
	KeyName   = "name"
	KeyARN    = "arn"
	KeyID     = "id"
	KeyTags   = "tags"
	KeyState  = "state"
	KeyRegion = "region"
	TagPrefix = "tag:"

	// Placement groups
	PlacementGroupStrategyKey       = "strategy"
	PlacementGroupPartitionCountKey = "partition_count"
	PlacementGroupIDKey             = "group_id"

	// Elastic IPs
	AddressPublicIPKey           = "public_ip"
	AddressAllocationIDKey       = "allocation_id"
	AddressAssociationIDKey      = "association_id"
	AddressDomainKey             = "domain"
	AddressInstanceIDKey         = "instance_id"
	AddressNetworkInterfaceKey   = "network_interface_id"
	AddressPrivateIPKey          = "private_ip_address"
	AddressPublicIPv4PoolKey     = "public_ipv4_pool"
	AddressDeviceIDKey           = "device_id"
	AddressReverseDNSKey         = "domain_name"
	AddressNetworkBorderGroupKey = "network_border_group"

	// Metric filters
	MetricFilterNameKey           = "filter_name"
	MetricFilterLogGroupKey       = "log_group_name"
	MetricFilterPatternKey        = "filter_pattern"
	MetricFilterTransformationKey = "metric_transformation"

	// Key pairs
	KeyPairFingerprintKey = "fingerprint"
	KeyPairTypeKey        = "type"
	KeyPairPrivateKeyKey  = "private_key"

	// Key-signing keys
	KSKHostedZoneIDKey = "hosted_zone_id"
	KSKKMSARNKey       = "kms_arn"
	KSKStatusKey       = "status"
)
