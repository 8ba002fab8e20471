package retry

import (
	"context"
	"fmt"
	"time"

	awsretry "github.com/aws/aws-sdk-go-v2/aws/retry"

	awserrors "github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/errors"
	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

const (
	DefaultMaxAttempts = 5
	DefaultMaxBackoff  = 20 * time.Second
)

type SleepFunc func(ctx context.Context, d time.Duration) error

type Options struct {
	MaxAttempts  int
	MaxBackoff   time.Duration
	Limiter      shared.RateLimiter
	ErrorHandler shared.ErrorHandler
	Sleep        SleepFunc
}

// Retrier is the only retry loop in the process; SDK clients are built with
// retries disabled so a call is never retried twice over.
type Retrier struct {
	maxAttempts  int
	backoff      *awsretry.ExponentialJitterBackoff
	limiter      shared.RateLimiter
	errorHandler shared.ErrorHandler
	sleep        SleepFunc
	logger       ports.Logger
}

var _ shared.Caller = (*Retrier)(nil)

func New(opts Options, logger ports.Logger) *Retrier {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = &awserrors.DefaultErrorHandler{}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Retrier{
		maxAttempts:  opts.MaxAttempts,
		backoff:      awsretry.NewExponentialJitterBackoff(opts.MaxBackoff),
		limiter:      opts.Limiter,
		errorHandler: opts.ErrorHandler,
		sleep:        opts.Sleep,
		logger:       logger,
	}
}

func (r *Retrier) Call(ctx context.Context, service, operation string, fn func(ctx context.Context) error) error {
	log := r.logger.WithFields(map[string]any{"service": service, "operation": operation})

	for attempt := 1; ; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx, log); err != nil {
				return apperrors.Wrap(err, apperrors.CodeTimeout, fmt.Sprintf("%s.%s: rate limiter wait aborted", service, operation))
			}
		}

		raw := fn(ctx)
		if raw == nil {
			return nil
		}
		err := r.errorHandler.Handle(service, operation, raw, ctx)
		if !apperrors.Is(err, apperrors.CodeTransient) {
			return err
		}
		if attempt >= r.maxAttempts {
			return apperrors.Reclassify(err, apperrors.CodeTransient,
				fmt.Sprintf("%s.%s still failing after %d attempts", service, operation, attempt))
		}

		delay, bErr := r.backoff.BackoffDelay(attempt, raw)
		if bErr != nil {
			return apperrors.Wrap(bErr, apperrors.CodeInternal, "failed computing retry delay")
		}
		log.Debugf(ctx, "Transient failure on attempt %d/%d, retrying in %s: %v", attempt, r.maxAttempts, delay, raw)
		if err := r.sleep(ctx, delay); err != nil {
			return apperrors.Wrap(err, apperrors.CodeTimeout, fmt.Sprintf("%s.%s: retry wait aborted", service, operation))
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
