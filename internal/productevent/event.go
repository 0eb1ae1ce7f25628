// Package productevent records product lifecycle events.
//
// The admin function publishes one Event per committed mutation. The recorder
// function turns it into a Record in the events table, where it expires on its
// own once its ttl has passed.
package productevent

import (
	"github.com/sakarghimire/ecommerce-products/internal/product"
)

type EventType string

const (
	Created EventType = "PRODUCT_CREATED"
	Updated EventType = "PRODUCT_UPDATED"
	Deleted EventType = "PRODUCT_DELETED"
)

// Event is the message sent from the admin function to the recorder.
type Event struct {
	RequestID    string    `json:"requestId"`
	EventType    EventType `json:"eventType"`
	ProductID    string    `json:"productId"`
	ProductCode  string    `json:"productCode"`
	ProductPrice string    `json:"productPrice"`
	Email        string    `json:"email"`
}

func NewEvent(eventType EventType, p product.Product, requestID, email string) Event {
	return Event{
		RequestID:    requestID,
		EventType:    eventType,
		ProductID:    p.ID,
		ProductCode:  p.Code,
		ProductPrice: p.Price,
		Email:        email,
	}
}

// Ack is the recorder's reply to a synchronous invocation.
type Ack struct {
	ProductEventCreated bool   `json:"productEventCreated"`
	Message             string `json:"message"`
}

func OK() Ack {
	return Ack{ProductEventCreated: true, Message: "OK"}
}
