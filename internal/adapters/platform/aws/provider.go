package aws

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	sdkautoscaling "github.com/aws/aws-sdk-go-v2/service/autoscaling"
	sdkbackup "github.com/aws/aws-sdk-go-v2/service/backup"
	sdklogs "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	sdkec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	sdkelbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	sdkiam "github.com/aws/aws-sdk-go-v2/service/iam"
	sdklambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	sdkroute53 "github.com/aws/aws-sdk-go-v2/service/route53"
	sdks3 "github.com/aws/aws-sdk-go-v2/service/s3"
	sdksecrets "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/autoscaling"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/backup"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/cloudwatchlogs"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/ec2"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/iam"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/lambda"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/limiter"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/retry"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/route53"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/s3"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/secretsmanager"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	"github.com/olusolaa/infra-reconciler/internal/errors"
)

const ProviderTypeAWS = "aws"

type Options struct {
	Region            string
	Profile           string
	RequestsPerSecond int
	MaxAttempts       int
	MaxBackoff        time.Duration
	FactConcurrency   int
}

// Provider owns the AWS configuration and the single Caller every adapter
// shares, so pacing and retry budgets apply process-wide.
type Provider struct {
	awsConfig aws.Config
	caller    shared.Caller
	sts       shared.STSClientInterface
	logger    ports.Logger

	accountMu sync.Mutex
	accountID string
}

func NewProvider(ctx context.Context, opts Options, logger ports.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil for AWS Provider")
	}

	loadOpts := []func(*config.LoadOptions) error{
		// The Retrier is the only retry loop; SDK retries would multiply attempts.
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if opts.Region != "" {
		logger.Debugf(ctx, "AWS config: using region %s", opts.Region)
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		logger.Debugf(ctx, "AWS config: using profile %s", opts.Profile)
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			"Failed to load AWS configuration/credentials",
			"Check the AWS profile, region and credential environment variables.")
	}

	caller := retry.New(retry.Options{
		MaxAttempts: opts.MaxAttempts,
		MaxBackoff:  opts.MaxBackoff,
		Limiter:     limiter.New(opts.RequestsPerSecond, logger),
	}, logger)

	return NewProviderWithConfig(cfg, caller, sts.NewFromConfig(cfg), logger), nil
}

// NewProviderWithConfig assembles a provider from prepared parts.
func NewProviderWithConfig(cfg aws.Config, caller shared.Caller, stsClient shared.STSClientInterface, logger ports.Logger) *Provider {
	return &Provider{
		awsConfig: cfg,
		caller:    caller,
		sts:       stsClient,
		logger:    logger.WithFields(map[string]any{"provider": ProviderTypeAWS}),
	}
}

func (p *Provider) Type() string { return ProviderTypeAWS }

func (p *Provider) Region() string { return p.awsConfig.Region }

// AccountID resolves the caller's account once per process. Failures are
// not cached.
func (p *Provider) AccountID(ctx context.Context) (string, error) {
	p.accountMu.Lock()
	defer p.accountMu.Unlock()
	if p.accountID != "" {
		return p.accountID, nil
	}

	out, err := shared.Invoke(ctx, p.caller, "sts", "GetCallerIdentity", func(ctx context.Context) (*sts.GetCallerIdentityOutput, error) {
		return p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	})
	if err != nil {
		return "", errors.Reclassify(err, errors.GetCode(err), "failed to resolve AWS account")
	}
	p.accountID = aws.ToString(out.Account)
	return p.accountID, nil
}

// Register binds every supported kind to a client built from the provider's
// configuration.
func (p *Provider) Register(registry *service.ComponentRegistry, factConcurrency int) error {
	cfg := p.awsConfig
	ec2Client := sdkec2.NewFromConfig(cfg)
	backupClient := sdkbackup.NewFromConfig(cfg)

	adapters := []ports.ResourceAdapter{
		ec2.NewPlacementGroupAdapter(ec2Client, p.caller, p.logger),
		ec2.NewAddressAdapter(ec2Client, p.caller, p.logger),
		ec2.NewKeyPairAdapter(ec2Client, p.caller, p.logger),
		cloudwatchlogs.NewMetricFilterAdapter(sdklogs.NewFromConfig(cfg), p.caller, p.logger),
		route53.NewKeySigningKeyAdapter(sdkroute53.NewFromConfig(cfg), p.caller, p.logger),
	}
	queries := []ports.QueryAdapter{
		ec2.NewPlacementGroupInfo(ec2Client, p.caller, p.logger),
		ec2.NewVpcInfo(ec2Client, p.caller, p.logger),
		ec2.NewSpotRequestInfo(ec2Client, p.caller, p.logger),
		autoscaling.NewGroupInfo(sdkautoscaling.NewFromConfig(cfg), sdkelbv2.NewFromConfig(cfg), p.caller, p.logger),
		s3.NewBucketInfo(sdks3.NewFromConfig(cfg), p.caller, p.logger, factConcurrency),
		secretsmanager.NewSecretLookup(sdksecrets.NewFromConfig(cfg), p.caller, p.logger),
		backup.NewPlanInfo(backupClient, p.caller, p.logger),
		backup.NewRestoreJobInfo(backupClient, p.caller, p.logger),
		lambda.NewLayerInfo(sdklambda.NewFromConfig(cfg), p.caller, p.logger),
		iam.NewMFADeviceInfo(sdkiam.NewFromConfig(cfg), p.caller, p.logger),
	}

	for _, a := range adapters {
		if err := registry.RegisterAdapter(a); err != nil {
			return err
		}
		p.logger.Debugf(context.Background(), "Registered AWS adapter for %s", a.Kind())
	}
	for _, q := range queries {
		if err := registry.RegisterQuery(q); err != nil {
			return err
		}
		p.logger.Debugf(context.Background(), "Registered AWS query for %s", q.Kind())
	}
	return nil
}
