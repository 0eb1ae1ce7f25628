package product

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/google/uuid"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
)

const attrID = "id"

// DynamoRepository stores products in a DynamoDB table keyed by id.
type DynamoRepository struct {
	db    dynamodbiface.DynamoDBAPI
	table string
	newID func() string
}

func NewDynamoRepository(db dynamodbiface.DynamoDBAPI, table string) *DynamoRepository {
	return &DynamoRepository{
		db:    db,
		table: table,
		newID: func() string { return uuid.New().String() },
	}
}

func (r *DynamoRepository) List(ctx context.Context) ([]Product, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	}

	products := []Product{}
	var decodeErr error
	err := r.db.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, _ bool) bool {
		var batch []Product
		if decodeErr = dynamodbattribute.UnmarshalListOfMaps(page.Items, &batch); decodeErr != nil {
			return false
		}
		products = append(products, batch...)
		return true
	})
	if err != nil {
		return nil, errs.Downstream(err, "failed to scan products")
	}
	if decodeErr != nil {
		return nil, errs.Wrap(decodeErr, "failed to unmarshal products")
	}
	return products, nil
}

func (r *DynamoRepository) Get(ctx context.Context, id string) (*Product, error) {
	out, err := r.db.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       key(id),
	})
	if err != nil {
		return nil, errs.Downstream(err, "failed to get product")
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var p Product
	if err := dynamodbattribute.UnmarshalMap(out.Item, &p); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal product")
	}
	return &p, nil
}

func (r *DynamoRepository) Create(ctx context.Context, draft Draft) (Product, error) {
	p := draft.withID(r.newID())

	item, err := dynamodbattribute.MarshalMap(p)
	if err != nil {
		return Product{}, errs.Wrap(err, "failed to marshal product")
	}
	// A fresh uuid never collides in practice; the guard keeps a collision from
	// silently overwriting another product.
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrID))).
		Build()
	if err != nil {
		return Product{}, errs.Wrap(err, "failed to build put expression")
	}

	_, err = r.db.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return Product{}, errs.Downstream(err, "failed to create product")
	}
	return p, nil
}

func (r *DynamoRepository) Update(ctx context.Context, id string, draft Draft) (Product, error) {
	update := expression.
		Set(expression.Name("name"), expression.Value(draft.Name)).
		Set(expression.Name("code"), expression.Value(draft.Code)).
		Set(expression.Name("price"), expression.Value(draft.Price)).
		Set(expression.Name("model"), expression.Value(draft.Model)).
		Set(expression.Name("url"), expression.Value(draft.URL))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(attrID))).
		Build()
	if err != nil {
		return Product{}, errs.Wrap(err, "failed to build update expression")
	}

	out, err := r.db.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              aws.String(dynamodb.ReturnValueAllNew),
	})
	if err != nil {
		if isConditionFailed(err) {
			return Product{}, errs.Mark(errs.Wrapf(err, "product %s", id), errs.ErrNotFound)
		}
		return Product{}, errs.Downstream(err, "failed to update product")
	}

	var p Product
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &p); err != nil {
		return Product{}, errs.Wrap(err, "failed to unmarshal product")
	}
	return p, nil
}

// Delete reads the product first so the caller gets its last state back, then
// deletes it only if it still exists.
func (r *DynamoRepository) Delete(ctx context.Context, id string) (Product, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if existing == nil {
		return Product{}, errs.Mark(errs.Newf("product %s", id), errs.ErrNotFound)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name(attrID))).
		Build()
	if err != nil {
		return Product{}, errs.Wrap(err, "failed to build delete expression")
	}

	out, err := r.db.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.table),
		Key:                      key(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
		ReturnValues:             aws.String(dynamodb.ReturnValueAllOld),
	})
	if err != nil {
		if isConditionFailed(err) {
			return Product{}, errs.Mark(errs.Wrapf(err, "product %s", id), errs.ErrNotFound)
		}
		return Product{}, errs.Downstream(err, "failed to delete product")
	}

	if len(out.Attributes) == 0 {
		return *existing, nil
	}
	var prior Product
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &prior); err != nil {
		return Product{}, errs.Wrap(err, "failed to unmarshal product")
	}
	return prior, nil
}

func key(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		attrID: {S: aws.String(id)},
	}
}

func isConditionFailed(err error) bool {
	var aerr awserr.Error
	return errs.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}
