package resilience

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Guard rate-limits calls and then runs them through a Breaker.
type Guard struct {
	limiter *rate.Limiter
	breaker *Breaker
}

// NewGuard allows perSecond calls with the given burst. perSecond <= 0
// disables the limit.
func NewGuard(perSecond float64, burst int, opts BreakerOpts) *Guard {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Guard{limiter: rate.NewLimiter(limit, burst), breaker: NewBreaker(opts)}
}

// Do waits for a rate token, then calls f through the breaker.
func (g *Guard) Do(ctx context.Context, f func(context.Context) error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("resilience: rate limit: %w", err)
	}
	return g.breaker.Call(ctx, f)
}
