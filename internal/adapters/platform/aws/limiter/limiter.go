package limiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/olusolaa/infra-reconciler/internal/core/ports"
)

const (
	MaxRateLimitRPS = 100
	burstDivisor    = 5
)

// Limiter paces API calls client-side. A zero rate disables pacing.
type Limiter struct {
	limiter *rate.Limiter
	rps     int
}

func New(rps int, logger ports.Logger) *Limiter {
	if rps <= 0 {
		logger.Debugf(context.Background(), "AWS API rate limiting disabled")
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0), rps: 0}
	}
	if rps > MaxRateLimitRPS {
		logger.Warnf(context.Background(), "Configured AWS API rate %d RPS exceeds maximum, using %d", rps, MaxRateLimitRPS)
		rps = MaxRateLimitRPS
	}
	burst := rps / burstDivisor
	if burst < 1 {
		burst = 1
	}
	logger.Debugf(context.Background(), "AWS API rate limiter: %d RPS, burst %d", rps, burst)
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst), rps: rps}
}

func (l *Limiter) RPS() int {
	return l.rps
}

func (l *Limiter) Wait(ctx context.Context, logger ports.Logger) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			logger.Warnf(ctx, "Error waiting for AWS API rate limiter: %v", err)
		}
		return err
	}
	return nil
}
