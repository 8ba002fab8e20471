package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/pkg/convert"
)

// defaultRegion is where S3 reports an empty location constraint.
const defaultRegion = "us-east-1"

// absentFactCodes are the answers S3 gives for a configuration the bucket
// simply does not have.
var absentFactCodes = []string{
	"NoSuchBucketPolicy",
	"NoSuchTagSet",
	"NoSuchCORSConfiguration",
	"NoSuchLifecycleConfiguration",
	"NoSuchWebsiteConfiguration",
	"NoSuchPublicAccessBlockConfiguration",
	"ServerSideEncryptionConfigurationNotFoundError",
	"ReplicationConfigurationNotFoundError",
	"OwnershipControlsNotFoundError",
}

func factAbsent(err error) bool {
	return awserrors.HasCode(err, absentFactCodes...) || apperrors.Is(err, apperrors.CodeResourceNotFound)
}

type bucketFact struct {
	name      string
	operation string
	fetch     func(ctx context.Context, c S3ClientInterface, bucket string) (any, error)
}

// bucketFacts lists every opt-in fact in output order.
var bucketFacts = []bucketFact{
	{"bucket_accelerate_configuration", "GetBucketAccelerateConfiguration", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketAccelerateConfiguration(ctx, &s3.GetBucketAccelerateConfigurationInput{Bucket: aws.String(b)})
	}},
	{"bucket_acl", "GetBucketAcl", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketAcl(ctx, &s3.GetBucketAclInput{Bucket: aws.String(b)})
	}},
	{"bucket_cors", "GetBucketCors", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketCors(ctx, &s3.GetBucketCorsInput{Bucket: aws.String(b)})
	}},
	{"bucket_encryption", "GetBucketEncryption", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(b)})
	}},
	{"bucket_lifecycle_configuration", "GetBucketLifecycleConfiguration", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{Bucket: aws.String(b)})
	}},
	{"bucket_location", "GetBucketLocation", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(b)})
	}},
	{"bucket_logging", "GetBucketLogging", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketLogging(ctx, &s3.GetBucketLoggingInput{Bucket: aws.String(b)})
	}},
	{"bucket_notification_configuration", "GetBucketNotificationConfiguration", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketNotificationConfiguration(ctx, &s3.GetBucketNotificationConfigurationInput{Bucket: aws.String(b)})
	}},
	{"bucket_ownership_controls", "GetBucketOwnershipControls", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketOwnershipControls(ctx, &s3.GetBucketOwnershipControlsInput{Bucket: aws.String(b)})
	}},
	{"bucket_policy", "GetBucketPolicy", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{Bucket: aws.String(b)})
	}},
	{"bucket_policy_status", "GetBucketPolicyStatus", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketPolicyStatus(ctx, &s3.GetBucketPolicyStatusInput{Bucket: aws.String(b)})
	}},
	{"bucket_replication", "GetBucketReplication", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketReplication(ctx, &s3.GetBucketReplicationInput{Bucket: aws.String(b)})
	}},
	{"bucket_request_payment", "GetBucketRequestPayment", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketRequestPayment(ctx, &s3.GetBucketRequestPaymentInput{Bucket: aws.String(b)})
	}},
	{"bucket_tagging", "GetBucketTagging", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(b)})
	}},
	{"bucket_versioning", "GetBucketVersioning", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(b)})
	}},
	{"bucket_website", "GetBucketWebsite", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetBucketWebsite(ctx, &s3.GetBucketWebsiteInput{Bucket: aws.String(b)})
	}},
	{"public_access_block", "GetPublicAccessBlock", func(ctx context.Context, c S3ClientInterface, b string) (any, error) {
		return c.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(b)})
	}},
}

// renderFact normalizes one fact response. Tags fold into a map and the
// location constraint optionally resolves to defaultRegion.
func renderFact(name string, out any, transformLocation bool) (any, error) {
	switch v := out.(type) {
	case *s3.GetBucketTaggingOutput:
		tags := make(map[string]string, len(v.TagSet))
		for _, t := range v.TagSet {
			tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
		}
		return tags, nil
	case *s3.GetBucketLocationOutput:
		constraint := string(v.LocationConstraint)
		if constraint == "" && transformLocation {
			constraint = defaultRegion
		}
		if constraint == "" {
			return map[string]any{"location_constraint": nil}, nil
		}
		return map[string]any{"location_constraint": constraint}, nil
	default:
		return convert.ToSnakeMap(out)
	}
}
