package infrastructure

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/musicbridge/musicbridge/internal/domain"
	"golang.org/x/time/rate"
)

// RatePacer spaces track starts at least Interval apart, plus a random
// delay in [0, Jitter). Creating the pacer counts as the first start, so
// every Wait, the first included, lasts a full Interval.
type RatePacer struct {
	limiter *rate.Limiter
	jitter  time.Duration
}

// NewRatePacer creates a pacer for one batch
func NewRatePacer(config domain.PacingConfig) *RatePacer {
	limit := rate.Inf
	if config.Interval > 0 {
		limit = rate.Every(config.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	limiter.Allow()
	return &RatePacer{
		limiter: limiter,
		jitter:  config.Jitter,
	}
}

// Wait blocks until the next track may start or ctx is done
func (p *RatePacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if p.jitter <= 0 {
		return nil
	}

	timer := time.NewTimer(rand.N(p.jitter))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PacerFactory returns a constructor producing a fresh pacer per batch
func PacerFactory(config domain.PacingConfig) func() domain.Pacer {
	return func() domain.Pacer {
		return NewRatePacer(config)
	}
}
