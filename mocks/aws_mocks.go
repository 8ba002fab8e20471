package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/backup"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/mock"
)

// result unpacks a (*Output, error) expectation. A nil first return value
// is allowed so tests can write Return(nil, err).
func result[T any](args mock.Arguments) (T, error) {
	var zero T
	if v := args.Get(0); v != nil {
		zero = v.(T)
	}
	return zero, args.Error(1)
}

type MockEC2Client struct {
	mock.Mock
}

func (m *MockEC2Client) DescribePlacementGroups(ctx context.Context, params *ec2.DescribePlacementGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribePlacementGroupsOutput, error) {
	return result[*ec2.DescribePlacementGroupsOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) CreatePlacementGroup(ctx context.Context, params *ec2.CreatePlacementGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreatePlacementGroupOutput, error) {
	return result[*ec2.CreatePlacementGroupOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DeletePlacementGroup(ctx context.Context, params *ec2.DeletePlacementGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeletePlacementGroupOutput, error) {
	return result[*ec2.DeletePlacementGroupOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	return result[*ec2.CreateTagsOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DeleteTags(ctx context.Context, params *ec2.DeleteTagsInput, optFns ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error) {
	return result[*ec2.DeleteTagsOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error) {
	return result[*ec2.DescribeAddressesOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) AllocateAddress(ctx context.Context, params *ec2.AllocateAddressInput, optFns ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error) {
	return result[*ec2.AllocateAddressOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) AssociateAddress(ctx context.Context, params *ec2.AssociateAddressInput, optFns ...func(*ec2.Options)) (*ec2.AssociateAddressOutput, error) {
	return result[*ec2.AssociateAddressOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DisassociateAddress(ctx context.Context, params *ec2.DisassociateAddressInput, optFns ...func(*ec2.Options)) (*ec2.DisassociateAddressOutput, error) {
	return result[*ec2.DisassociateAddressOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) ReleaseAddress(ctx context.Context, params *ec2.ReleaseAddressInput, optFns ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error) {
	return result[*ec2.ReleaseAddressOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeAddressesAttribute(ctx context.Context, params *ec2.DescribeAddressesAttributeInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesAttributeOutput, error) {
	return result[*ec2.DescribeAddressesAttributeOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) ModifyAddressAttribute(ctx context.Context, params *ec2.ModifyAddressAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyAddressAttributeOutput, error) {
	return result[*ec2.ModifyAddressAttributeOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return result[*ec2.DescribeInstancesOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return result[*ec2.DescribeVpcsOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeVpcAttribute(ctx context.Context, params *ec2.DescribeVpcAttributeInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcAttributeOutput, error) {
	return result[*ec2.DescribeVpcAttributeOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeVpcClassicLink(ctx context.Context, params *ec2.DescribeVpcClassicLinkInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcClassicLinkOutput, error) {
	return result[*ec2.DescribeVpcClassicLinkOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeVpcClassicLinkDnsSupport(ctx context.Context, params *ec2.DescribeVpcClassicLinkDnsSupportInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcClassicLinkDnsSupportOutput, error) {
	return result[*ec2.DescribeVpcClassicLinkDnsSupportOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error) {
	return result[*ec2.DescribeKeyPairsOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) CreateKeyPair(ctx context.Context, params *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	return result[*ec2.CreateKeyPairOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) ImportKeyPair(ctx context.Context, params *ec2.ImportKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error) {
	return result[*ec2.ImportKeyPairOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error) {
	return result[*ec2.DeleteKeyPairOutput](m.Called(ctx, params))
}

func (m *MockEC2Client) DescribeSpotInstanceRequests(ctx context.Context, params *ec2.DescribeSpotInstanceRequestsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSpotInstanceRequestsOutput, error) {
	return result[*ec2.DescribeSpotInstanceRequestsOutput](m.Called(ctx, params))
}

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return result[*s3.ListBucketsOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketAccelerateConfiguration(ctx context.Context, params *s3.GetBucketAccelerateConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketAccelerateConfigurationOutput, error) {
	return result[*s3.GetBucketAccelerateConfigurationOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketAcl(ctx context.Context, params *s3.GetBucketAclInput, optFns ...func(*s3.Options)) (*s3.GetBucketAclOutput, error) {
	return result[*s3.GetBucketAclOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketCors(ctx context.Context, params *s3.GetBucketCorsInput, optFns ...func(*s3.Options)) (*s3.GetBucketCorsOutput, error) {
	return result[*s3.GetBucketCorsOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketEncryption(ctx context.Context, params *s3.GetBucketEncryptionInput, optFns ...func(*s3.Options)) (*s3.GetBucketEncryptionOutput, error) {
	return result[*s3.GetBucketEncryptionOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error) {
	return result[*s3.GetBucketLifecycleConfigurationOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	return result[*s3.GetBucketLocationOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketLogging(ctx context.Context, params *s3.GetBucketLoggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketLoggingOutput, error) {
	return result[*s3.GetBucketLoggingOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketNotificationConfiguration(ctx context.Context, params *s3.GetBucketNotificationConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketNotificationConfigurationOutput, error) {
	return result[*s3.GetBucketNotificationConfigurationOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketOwnershipControls(ctx context.Context, params *s3.GetBucketOwnershipControlsInput, optFns ...func(*s3.Options)) (*s3.GetBucketOwnershipControlsOutput, error) {
	return result[*s3.GetBucketOwnershipControlsOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketPolicy(ctx context.Context, params *s3.GetBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.GetBucketPolicyOutput, error) {
	return result[*s3.GetBucketPolicyOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketPolicyStatus(ctx context.Context, params *s3.GetBucketPolicyStatusInput, optFns ...func(*s3.Options)) (*s3.GetBucketPolicyStatusOutput, error) {
	return result[*s3.GetBucketPolicyStatusOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketReplication(ctx context.Context, params *s3.GetBucketReplicationInput, optFns ...func(*s3.Options)) (*s3.GetBucketReplicationOutput, error) {
	return result[*s3.GetBucketReplicationOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketRequestPayment(ctx context.Context, params *s3.GetBucketRequestPaymentInput, optFns ...func(*s3.Options)) (*s3.GetBucketRequestPaymentOutput, error) {
	return result[*s3.GetBucketRequestPaymentOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	return result[*s3.GetBucketTaggingOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error) {
	return result[*s3.GetBucketVersioningOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetBucketWebsite(ctx context.Context, params *s3.GetBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.GetBucketWebsiteOutput, error) {
	return result[*s3.GetBucketWebsiteOutput](m.Called(ctx, params))
}

func (m *MockS3Client) GetPublicAccessBlock(ctx context.Context, params *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.GetPublicAccessBlockOutput, error) {
	return result[*s3.GetPublicAccessBlockOutput](m.Called(ctx, params))
}

type MockRoute53Client struct {
	mock.Mock
}

func (m *MockRoute53Client) GetDNSSEC(ctx context.Context, params *route53.GetDNSSECInput, optFns ...func(*route53.Options)) (*route53.GetDNSSECOutput, error) {
	return result[*route53.GetDNSSECOutput](m.Called(ctx, params))
}

func (m *MockRoute53Client) CreateKeySigningKey(ctx context.Context, params *route53.CreateKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.CreateKeySigningKeyOutput, error) {
	return result[*route53.CreateKeySigningKeyOutput](m.Called(ctx, params))
}

func (m *MockRoute53Client) ActivateKeySigningKey(ctx context.Context, params *route53.ActivateKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.ActivateKeySigningKeyOutput, error) {
	return result[*route53.ActivateKeySigningKeyOutput](m.Called(ctx, params))
}

func (m *MockRoute53Client) DeactivateKeySigningKey(ctx context.Context, params *route53.DeactivateKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.DeactivateKeySigningKeyOutput, error) {
	return result[*route53.DeactivateKeySigningKeyOutput](m.Called(ctx, params))
}

func (m *MockRoute53Client) DeleteKeySigningKey(ctx context.Context, params *route53.DeleteKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.DeleteKeySigningKeyOutput, error) {
	return result[*route53.DeleteKeySigningKeyOutput](m.Called(ctx, params))
}

func (m *MockRoute53Client) GetChange(ctx context.Context, params *route53.GetChangeInput, optFns ...func(*route53.Options)) (*route53.GetChangeOutput, error) {
	return result[*route53.GetChangeOutput](m.Called(ctx, params))
}

type MockLogsClient struct {
	mock.Mock
}

func (m *MockLogsClient) DescribeMetricFilters(ctx context.Context, params *cloudwatchlogs.DescribeMetricFiltersInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeMetricFiltersOutput, error) {
	return result[*cloudwatchlogs.DescribeMetricFiltersOutput](m.Called(ctx, params))
}

func (m *MockLogsClient) PutMetricFilter(ctx context.Context, params *cloudwatchlogs.PutMetricFilterInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutMetricFilterOutput, error) {
	return result[*cloudwatchlogs.PutMetricFilterOutput](m.Called(ctx, params))
}

func (m *MockLogsClient) DeleteMetricFilter(ctx context.Context, params *cloudwatchlogs.DeleteMetricFilterInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DeleteMetricFilterOutput, error) {
	return result[*cloudwatchlogs.DeleteMetricFilterOutput](m.Called(ctx, params))
}

type MockSecretsClient struct {
	mock.Mock
}

func (m *MockSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return result[*secretsmanager.GetSecretValueOutput](m.Called(ctx, params))
}

func (m *MockSecretsClient) ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	return result[*secretsmanager.ListSecretsOutput](m.Called(ctx, params))
}

type MockBackupClient struct {
	mock.Mock
}

func (m *MockBackupClient) ListBackupPlans(ctx context.Context, params *backup.ListBackupPlansInput, optFns ...func(*backup.Options)) (*backup.ListBackupPlansOutput, error) {
	return result[*backup.ListBackupPlansOutput](m.Called(ctx, params))
}

func (m *MockBackupClient) GetBackupPlan(ctx context.Context, params *backup.GetBackupPlanInput, optFns ...func(*backup.Options)) (*backup.GetBackupPlanOutput, error) {
	return result[*backup.GetBackupPlanOutput](m.Called(ctx, params))
}

func (m *MockBackupClient) ListRestoreJobs(ctx context.Context, params *backup.ListRestoreJobsInput, optFns ...func(*backup.Options)) (*backup.ListRestoreJobsOutput, error) {
	return result[*backup.ListRestoreJobsOutput](m.Called(ctx, params))
}

func (m *MockBackupClient) DescribeRestoreJob(ctx context.Context, params *backup.DescribeRestoreJobInput, optFns ...func(*backup.Options)) (*backup.DescribeRestoreJobOutput, error) {
	return result[*backup.DescribeRestoreJobOutput](m.Called(ctx, params))
}

func (m *MockBackupClient) ListTags(ctx context.Context, params *backup.ListTagsInput, optFns ...func(*backup.Options)) (*backup.ListTagsOutput, error) {
	return result[*backup.ListTagsOutput](m.Called(ctx, params))
}

type MockAutoScalingClient struct {
	mock.Mock
}

func (m *MockAutoScalingClient) DescribeAutoScalingGroups(ctx context.Context, params *autoscaling.DescribeAutoScalingGroupsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
	return result[*autoscaling.DescribeAutoScalingGroupsOutput](m.Called(ctx, params))
}

func (m *MockAutoScalingClient) DescribeLifecycleHooks(ctx context.Context, params *autoscaling.DescribeLifecycleHooksInput, optFns ...func(*autoscaling.Options)) (*autoscaling.DescribeLifecycleHooksOutput, error) {
	return result[*autoscaling.DescribeLifecycleHooksOutput](m.Called(ctx, params))
}

type MockTargetGroupClient struct {
	mock.Mock
}

func (m *MockTargetGroupClient) DescribeTargetGroups(ctx context.Context, params *elbv2.DescribeTargetGroupsInput, optFns ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error) {
	return result[*elbv2.DescribeTargetGroupsOutput](m.Called(ctx, params))
}

type MockIAMClient struct {
	mock.Mock
}

func (m *MockIAMClient) ListMFADevices(ctx context.Context, params *iam.ListMFADevicesInput, optFns ...func(*iam.Options)) (*iam.ListMFADevicesOutput, error) {
	return result[*iam.ListMFADevicesOutput](m.Called(ctx, params))
}

type MockLambdaClient struct {
	mock.Mock
}

func (m *MockLambdaClient) ListLayers(ctx context.Context, params *lambda.ListLayersInput, optFns ...func(*lambda.Options)) (*lambda.ListLayersOutput, error) {
	return result[*lambda.ListLayersOutput](m.Called(ctx, params))
}

func (m *MockLambdaClient) ListLayerVersions(ctx context.Context, params *lambda.ListLayerVersionsInput, optFns ...func(*lambda.Options)) (*lambda.ListLayerVersionsOutput, error) {
	return result[*lambda.ListLayerVersionsOutput](m.Called(ctx, params))
}

type MockSTSClient struct {
	mock.Mock
}

func (m *MockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return result[*sts.GetCallerIdentityOutput](m.Called(ctx, params))
}
