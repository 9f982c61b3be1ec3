package pricing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate spaces out vendor-touching items.
type Gate interface {
	Wait(ctx context.Context) error
}

// IntervalGate admits one caller per interval. The first Wait returns at once.
type IntervalGate struct {
	limiter *rate.Limiter
}

func NewIntervalGate(interval time.Duration) *IntervalGate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &IntervalGate{limiter: rate.NewLimiter(limit, 1)}
}

func (g *IntervalGate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
