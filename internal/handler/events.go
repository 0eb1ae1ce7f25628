package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/sakarghimire/ecommerce-products/internal/logger"
	"github.com/sakarghimire/ecommerce-products/internal/productevent"
)

type eventRecorder interface {
	Record(ctx context.Context, e productevent.Event) (productevent.Record, error)
}

// Events is the recorder function. A failed write is returned as the
// invocation error so that the invoker observes it.
type Events struct {
	recorder eventRecorder
	log      *zap.Logger
}

func NewEvents(recorder eventRecorder, log *zap.Logger) *Events {
	return &Events{recorder: recorder, log: log}
}

func (h *Events) Handle(ctx context.Context, e productevent.Event) (productevent.Ack, error) {
	ctx = logger.ContextWithRequestID(ctx, e.RequestID)
	log := logger.WithRequestID(ctx, h.log).With(
		zap.String("event_type", string(e.EventType)),
		zap.String("product_id", e.ProductID),
	)

	rec, err := h.recorder.Record(ctx, e)
	if err != nil {
		log.Error("failed to record product event", zap.Error(err))
		return productevent.Ack{}, err
	}

	log.Info("product event recorded", zap.String("pk", rec.PK), zap.String("sk", rec.SK))
	return productevent.OK(), nil
}
