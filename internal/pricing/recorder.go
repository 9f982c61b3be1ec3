package pricing

import (
	"context"
	"time"
)

const (
	ActionProducts = "getProducts"
	ActionPrices   = "getPrices"
)

// BatchStats summarizes one finished batch.
type BatchStats struct {
	Action    string
	Requested int
	CacheHits int
	Fetched   int
	Failed    int
	Duration  time.Duration
}

// Recorder receives batch statistics. Implementations must not block the
// response for long and must swallow their own failures.
type Recorder interface {
	RecordBatch(ctx context.Context, stats BatchStats)
}

type NopRecorder struct{}

func (NopRecorder) RecordBatch(context.Context, BatchStats) {}
