package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Config describes an upstream throttle. A non-positive RequestsPerSecond
// disables throttling so calls only queue behind the fan-out itself.
type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

type Limiter struct {
	limiter *rate.Limiter
}

func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}

	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter.Limit() != rate.Inf
}

// Wait blocks until a call may proceed or ctx is done. A nil Limiter never
// blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
