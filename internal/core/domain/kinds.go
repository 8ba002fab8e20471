package domain

type ResourceKind string

// Reconciled kinds.
const (
	KindPlacementGroup ResourceKind = "placement_group"
	KindElasticIP      ResourceKind = "elastic_ip"
	KindMetricFilter   ResourceKind = "metric_filter"
	KindKeySigningKey  ResourceKind = "key_signing_key"
	KindKeyPair        ResourceKind = "key_pair"
)

// Read-only kinds.
const (
	KindPlacementGroupInfo ResourceKind = "placement_group_info"
	KindVPCInfo            ResourceKind = "vpc_info"
	KindS3BucketInfo       ResourceKind = "s3_bucket_info"
	KindSecret             ResourceKind = "secret"
	KindBackupPlanInfo     ResourceKind = "backup_plan_info"
	KindLambdaLayerInfo    ResourceKind = "lambda_layer_info"
	KindSpotRequestInfo    ResourceKind = "spot_instance_info"
	KindAutoScalingInfo    ResourceKind = "autoscaling_group_info"
	KindRestoreJobInfo     ResourceKind = "backup_restore_job_info"
	KindMFADeviceInfo      ResourceKind = "iam_mfa_device_info"
)

func (rk ResourceKind) String() string {
	return string(rk)
}

// State is the lifecycle a caller asks for.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

func (s State) Valid() bool {
	return s == StatePresent || s == StateAbsent
}
