package productevent

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
)

// Store is the Event Store.
type Store interface {
	Put(ctx context.Context, rec Record) error
	ListByProduct(ctx context.Context, productCode string, now time.Time) ([]Record, error)
}

type DynamoStore struct {
	db    dynamodbiface.DynamoDBAPI
	table string
}

func NewDynamoStore(db dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{db: db, table: table}
}

// Put writes rec with an upsert. Every event has a new sort key, so the write
// never merges into an existing row.
func (s *DynamoStore) Put(ctx context.Context, rec Record) error {
	update := expression.
		Set(expression.Name(AttrEmail), expression.Value(rec.Email)).
		Set(expression.Name(AttrCreatedAt), expression.Value(rec.CreatedAt)).
		Set(expression.Name(AttrRequestID), expression.Value(rec.RequestID)).
		Set(expression.Name(AttrEventType), expression.Value(rec.EventType)).
		Set(expression.Name(AttrInfo), expression.Value(rec.Info)).
		Set(expression.Name(AttrTTL), expression.Value(rec.TTL))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return errs.Wrap(err, "failed to build event update expression")
	}

	_, err = s.db.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]*dynamodb.AttributeValue{
			AttrPK: {S: aws.String(rec.PK)},
			AttrSK: {S: aws.String(rec.SK)},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return errs.Downstream(err, "failed to write product event")
	}
	return nil
}

// ListByProduct returns the unexpired events of one product ordered by sort key.
func (s *DynamoStore) ListByProduct(ctx context.Context, productCode string, now time.Time) ([]Record, error) {
	keyCond := expression.Key(AttrPK).Equal(expression.Value(PartitionKey(productCode)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, errs.Wrap(err, "failed to build event query expression")
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	records := []Record{}
	var decodeErr error
	err = s.db.QueryPagesWithContext(ctx, input, func(page *dynamodb.QueryOutput, _ bool) bool {
		var batch []Record
		if decodeErr = dynamodbattribute.UnmarshalListOfMaps(page.Items, &batch); decodeErr != nil {
			return false
		}
		for _, rec := range batch {
			if !rec.Expired(now) {
				records = append(records, rec)
			}
		}
		return true
	})
	if err != nil {
		return nil, errs.Downstream(err, "failed to query product events")
	}
	if decodeErr != nil {
		return nil, errs.Wrap(decodeErr, "failed to unmarshal product events")
	}
	return records, nil
}
