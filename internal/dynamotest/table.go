// Package dynamotest provides an in-memory stand-in for the DynamoDB API.
//
// It understands the subset of DynamoDB used by this module: single-item
// reads and writes, SET update expressions, attribute_exists /
// attribute_not_exists conditions, equality key conditions and paginated
// scans and queries. Expressions are expected in the form produced by the
// SDK's expression builder.
package dynamotest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

type Item = map[string]*dynamodb.AttributeValue

type table struct {
	hashKey  string
	rangeKey string
	ttlAttr  string
	items    map[string]Item
}

// DB is a fake DynamoDB client. Methods not overridden here panic through the
// nil embedded interface.
type DB struct {
	dynamodbiface.DynamoDBAPI

	// PageSize splits scan and query results into pages of this many items.
	PageSize int

	mu     sync.Mutex
	tables map[string]*table
	fail   map[string]error
	calls  map[string]int
}

func New() *DB {
	return &DB{
		tables: map[string]*table{},
		fail:   map[string]error{},
		calls:  map[string]int{},
	}
}

// AddTable registers a table. rangeKey may be empty.
func (db *DB) AddTable(name, hashKey, rangeKey string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tables[name] = &table{hashKey: hashKey, rangeKey: rangeKey, items: map[string]Item{}}
}

// FailWith makes every later call of op ("GetItem", "Scan", ...) return err.
func (db *DB) FailWith(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.fail[op] = err
}

// Calls reports how many times op was invoked.
func (db *DB) Calls(op string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.calls[op]
}

// Items returns a snapshot of every item in the table, ordered by key.
func (db *DB) Items(name string) []Item {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.tables[name]
	if !ok {
		return nil
	}
	return t.sorted(nil)
}

// TTLAttribute returns the attribute enabled for time-to-live on a table.
func (db *DB) TTLAttribute(name string) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	if t, ok := db.tables[name]; ok {
		return t.ttlAttr
	}
	return ""
}

func (db *DB) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, err := db.begin("GetItem", in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: clone(t.items[k])}, nil
}

func (db *DB) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, err := db.begin("PutItem", in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.keyOf(in.Item)
	if err != nil {
		return nil, err
	}
	if err := checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, t.items[k]); err != nil {
		return nil, err
	}
	t.items[k] = clone(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (db *DB) UpdateItemWithContext(_ aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, err := db.begin("UpdateItem", in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	old := t.items[k]
	if err := checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, old); err != nil {
		return nil, err
	}

	updated := clone(old)
	if updated == nil {
		updated = clone(in.Key)
	}
	for _, clause := range setClauses(aws.StringValue(in.UpdateExpression)) {
		name := resolveName(clause[0], in.ExpressionAttributeNames)
		value, ok := in.ExpressionAttributeValues[clause[1]]
		if !ok {
			return nil, validation("missing expression attribute value " + clause[1])
		}
		updated[name] = value
	}
	t.items[k] = updated

	out := &dynamodb.UpdateItemOutput{}
	switch aws.StringValue(in.ReturnValues) {
	case dynamodb.ReturnValueAllNew:
		out.Attributes = clone(updated)
	case dynamodb.ReturnValueAllOld:
		out.Attributes = clone(old)
	}
	return out, nil
}

func (db *DB) DeleteItemWithContext(_ aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, err := db.begin("DeleteItem", in.TableName)
	if err != nil {
		return nil, err
	}
	k, err := t.keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	old := t.items[k]
	if err := checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, old); err != nil {
		return nil, err
	}
	delete(t.items, k)

	out := &dynamodb.DeleteItemOutput{}
	if aws.StringValue(in.ReturnValues) == dynamodb.ReturnValueAllOld {
		out.Attributes = clone(old)
	}
	return out, nil
}

func (db *DB) ScanPagesWithContext(_ aws.Context, in *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, _ ...request.Option) error {
	db.mu.Lock()
	t, err := db.begin("Scan", in.TableName)
	var items []Item
	if err == nil {
		items = t.sorted(nil)
	}
	db.mu.Unlock()
	if err != nil {
		return err
	}

	for _, p := range db.paginate(items) {
		if !fn(&dynamodb.ScanOutput{Items: p.items, Count: aws.Int64(int64(len(p.items)))}, p.last) || p.last {
			break
		}
	}
	return nil
}

func (db *DB) QueryPagesWithContext(_ aws.Context, in *dynamodb.QueryInput, fn func(*dynamodb.QueryOutput, bool) bool, _ ...request.Option) error {
	db.mu.Lock()
	t, err := db.begin("Query", in.TableName)
	var items []Item
	if err == nil {
		var lhs, rhs string
		lhs, rhs, err = equality(aws.StringValue(in.KeyConditionExpression))
		if err == nil {
			attr := resolveName(lhs, in.ExpressionAttributeNames)
			want, ok := in.ExpressionAttributeValues[rhs]
			if !ok || attr != t.hashKey {
				err = validation("unsupported key condition " + aws.StringValue(in.KeyConditionExpression))
			} else {
				items = t.sorted(func(it Item) bool {
					return aws.StringValue(it[attr].S) == aws.StringValue(want.S)
				})
			}
		}
	}
	db.mu.Unlock()
	if err != nil {
		return err
	}

	for _, p := range db.paginate(items) {
		if !fn(&dynamodb.QueryOutput{Items: p.items, Count: aws.Int64(int64(len(p.items)))}, p.last) || p.last {
			break
		}
	}
	return nil
}

func (db *DB) CreateTableWithContext(_ aws.Context, in *dynamodb.CreateTableInput, _ ...request.Option) (*dynamodb.CreateTableOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.calls["CreateTable"]++
	if err := db.fail["CreateTable"]; err != nil {
		return nil, err
	}
	name := aws.StringValue(in.TableName)
	if _, ok := db.tables[name]; ok {
		return nil, awserr.New(dynamodb.ErrCodeResourceInUseException, "table already exists: "+name, nil)
	}
	t := &table{items: map[string]Item{}}
	for _, ks := range in.KeySchema {
		switch aws.StringValue(ks.KeyType) {
		case dynamodb.KeyTypeHash:
			t.hashKey = aws.StringValue(ks.AttributeName)
		case dynamodb.KeyTypeRange:
			t.rangeKey = aws.StringValue(ks.AttributeName)
		}
	}
	db.tables[name] = t
	return &dynamodb.CreateTableOutput{TableDescription: &dynamodb.TableDescription{
		TableName:   in.TableName,
		KeySchema:   in.KeySchema,
		TableStatus: aws.String(dynamodb.TableStatusActive),
	}}, nil
}

func (db *DB) UpdateTimeToLiveWithContext(_ aws.Context, in *dynamodb.UpdateTimeToLiveInput, _ ...request.Option) (*dynamodb.UpdateTimeToLiveOutput, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, err := db.begin("UpdateTimeToLive", in.TableName)
	if err != nil {
		return nil, err
	}
	if in.TimeToLiveSpecification != nil && aws.BoolValue(in.TimeToLiveSpecification.Enabled) {
		t.ttlAttr = aws.StringValue(in.TimeToLiveSpecification.AttributeName)
	}
	return &dynamodb.UpdateTimeToLiveOutput{TimeToLiveSpecification: in.TimeToLiveSpecification}, nil
}

func (db *DB) begin(op string, tableName *string) (*table, error) {
	db.calls[op]++
	if err := db.fail[op]; err != nil {
		return nil, err
	}
	t, ok := db.tables[aws.StringValue(tableName)]
	if !ok {
		return nil, awserr.New(dynamodb.ErrCodeResourceNotFoundException, "table not found: "+aws.StringValue(tableName), nil)
	}
	return t, nil
}

type page struct {
	items []Item
	last  bool
}

func (db *DB) paginate(items []Item) []page {
	size := db.PageSize
	if size <= 0 || size >= len(items) {
		return []page{{items: items, last: true}}
	}
	var pages []page
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, page{items: items[start:end], last: end == len(items)})
	}
	return pages
}

func (t *table) keyOf(item Item) (string, error) {
	h, ok := item[t.hashKey]
	if !ok || h.S == nil {
		return "", validation("missing hash key " + t.hashKey)
	}
	if t.rangeKey == "" {
		return *h.S, nil
	}
	r, ok := item[t.rangeKey]
	if !ok || r.S == nil {
		return "", validation("missing range key " + t.rangeKey)
	}
	return *h.S + "\x00" + *r.S, nil
}

func (t *table) sorted(keep func(Item) bool) []Item {
	keys := make([]string, 0, len(t.items))
	for k, it := range t.items {
		if keep == nil || keep(it) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]Item, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(t.items[k]))
	}
	return out
}

var conditionRe = regexp.MustCompile(`^(attribute_exists|attribute_not_exists)\s*\(\s*([#\w]+)\s*\)$`)

func checkCondition(expr *string, names map[string]*string, existing Item) error {
	cond := strings.TrimSpace(aws.StringValue(expr))
	if cond == "" {
		return nil
	}
	m := conditionRe.FindStringSubmatch(cond)
	if m == nil {
		return validation("unsupported condition " + cond)
	}
	_, present := existing[resolveName(m[2], names)]
	if (m[1] == "attribute_exists") != present {
		return awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "The conditional request failed", nil)
	}
	return nil
}

// setClauses splits "SET #0 = :0, #1 = :1" into name/value placeholder pairs.
func setClauses(expr string) [][2]string {
	var out [][2]string
	for _, line := range strings.Split(expr, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "SET ") {
			continue
		}
		for _, assignment := range strings.Split(strings.TrimPrefix(line, "SET "), ",") {
			lhs, rhs, err := equality(assignment)
			if err == nil {
				out = append(out, [2]string{lhs, rhs})
			}
		}
	}
	return out
}

func equality(expr string) (string, string, error) {
	parts := strings.SplitN(expr, "=", 2)
	if len(parts) != 2 {
		return "", "", validation(fmt.Sprintf("expected an equality, got %q", expr))
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func resolveName(token string, names map[string]*string) string {
	if n, ok := names[token]; ok {
		return aws.StringValue(n)
	}
	return token
}

func validation(msg string) error {
	return awserr.New("ValidationException", msg, nil)
}

func clone(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
