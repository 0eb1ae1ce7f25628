package productevent

import (
	"context"
	"time"

	"github.com/sakarghimire/ecommerce-products/internal/clock"
)

const DefaultTTL = 5 * time.Minute

// Recorder appends lifecycle events to the Event Store. It neither validates
// nor retries; a failed write is returned to the invoker as is.
type Recorder struct {
	store Store
	clock clock.Clock
	ttl   time.Duration
}

func NewRecorder(store Store, clk clock.Clock, ttl time.Duration) *Recorder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Recorder{store: store, clock: clk, ttl: ttl}
}

func (r *Recorder) Record(ctx context.Context, e Event) (Record, error) {
	rec := NewRecord(e, r.clock.Now(), r.ttl)
	if err := r.store.Put(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
