package shared

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

// RateLimiter paces outgoing API calls.
type RateLimiter interface {
	Wait(ctx context.Context, logger ports.Logger) error
}

// ErrorHandler translates an SDK error raised by service.operation.
type ErrorHandler interface {
	Handle(service, operation string, err error, ctx context.Context) error
}

// Caller runs one logical API call: pacing, bounded retries of transient
// failures and error translation all happen inside Call.
type Caller interface {
	Call(ctx context.Context, service, operation string, fn func(ctx context.Context) error) error
}

type STSClientInterface interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}
