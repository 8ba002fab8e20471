package route53

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/route53"
)

//go:generate mockery --name Route53ClientInterface --output ./mocks --outpkg mocks --case underscore

// Route53ClientInterface is the DNSSEC key-signing key API plus GetChange,
// which also makes it usable by the SDK change waiter.
type Route53ClientInterface interface {
	GetDNSSEC(ctx context.Context, params *route53.GetDNSSECInput, optFns ...func(*route53.Options)) (*route53.GetDNSSECOutput, error)
	CreateKeySigningKey(ctx context.Context, params *route53.CreateKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.CreateKeySigningKeyOutput, error)
	ActivateKeySigningKey(ctx context.Context, params *route53.ActivateKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.ActivateKeySigningKeyOutput, error)
	DeactivateKeySigningKey(ctx context.Context, params *route53.DeactivateKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.DeactivateKeySigningKeyOutput, error)
	DeleteKeySigningKey(ctx context.Context, params *route53.DeleteKeySigningKeyInput, optFns ...func(*route53.Options)) (*route53.DeleteKeySigningKeyOutput, error)
	GetChange(ctx context.Context, params *route53.GetChangeInput, optFns ...func(*route53.Options)) (*route53.GetChangeOutput, error)
}
