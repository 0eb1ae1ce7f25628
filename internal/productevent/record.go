package productevent

import (
	"strconv"
	"time"
)

// Attribute names of the events table.
const (
	AttrPK        = "pk"
	AttrSK        = "sk"
	AttrEmail     = "email"
	AttrCreatedAt = "createdAt"
	AttrRequestID = "requestId"
	AttrEventType = "eventType"
	AttrInfo      = "info"
	AttrTTL       = "ttl"
)

const partitionPrefix = "#product_"

type Info struct {
	ProductID string `json:"productId" dynamodbav:"productId"`
	Price     string `json:"price" dynamodbav:"price"`
}

// Record is one row of the events table. CreatedAt is in unix milliseconds,
// TTL in unix seconds as DynamoDB time-to-live requires.
type Record struct {
	PK        string    `json:"pk" dynamodbav:"pk"`
	SK        string    `json:"sk" dynamodbav:"sk"`
	Email     string    `json:"email" dynamodbav:"email"`
	CreatedAt int64     `json:"createdAt" dynamodbav:"createdAt"`
	RequestID string    `json:"requestId" dynamodbav:"requestId"`
	EventType EventType `json:"eventType" dynamodbav:"eventType"`
	Info      Info      `json:"info" dynamodbav:"info"`
	TTL       int64     `json:"ttl" dynamodbav:"ttl"`
}

func PartitionKey(productCode string) string {
	return partitionPrefix + productCode
}

// SortKey orders a product's events by type, then by time. The millisecond
// timestamp keeps repeated events of the same type distinct.
func SortKey(eventType EventType, at time.Time) string {
	return string(eventType) + "#" + strconv.FormatInt(at.UnixMilli(), 10)
}

func NewRecord(e Event, now time.Time, ttl time.Duration) Record {
	return Record{
		PK:        PartitionKey(e.ProductCode),
		SK:        SortKey(e.EventType, now),
		Email:     e.Email,
		CreatedAt: now.UnixMilli(),
		RequestID: e.RequestID,
		EventType: e.EventType,
		Info: Info{
			ProductID: e.ProductID,
			Price:     e.ProductPrice,
		},
		TTL: now.Add(ttl).Unix(),
	}
}

// Expired reports whether the row's ttl has passed. DynamoDB removes expired
// rows lazily, so readers filter them out themselves.
func (r Record) Expired(now time.Time) bool {
	return r.TTL <= now.Unix()
}
