package handler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakarghimire/ecommerce-products/internal/clock"
	"github.com/sakarghimire/ecommerce-products/internal/dynamotest"
	"github.com/sakarghimire/ecommerce-products/internal/errs"
	"github.com/sakarghimire/ecommerce-products/internal/handler"
	"github.com/sakarghimire/ecommerce-products/internal/productevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventsHandler(t *testing.T) {
	db := dynamotest.New()
	db.AddTable("events", productevent.AttrPK, productevent.AttrSK)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recorder := productevent.NewRecorder(productevent.NewDynamoStore(db, "events"), clock.NewFixedClock(now), 5*time.Minute)
	h := handler.NewEvents(recorder, zap.NewNop())

	evt := productevent.NewEvent(productevent.Created, phoneProduct, "api-req-1", defaultActor)

	ack, err := h.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, productevent.Ack{ProductEventCreated: true, Message: "OK"}, ack)
	assert.Len(t, db.Items("events"), 1)

	db.FailWith("UpdateItem", errors.New("unavailable"))
	_, err = h.Handle(context.Background(), evt)
	assert.True(t, errs.Is(err, errs.ErrDownstream), "got %v", err)
}
