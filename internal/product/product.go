package product

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
)

// Product is a catalog entry as stored in the products table.
type Product struct {
	ID    string `json:"id" dynamodbav:"id"`
	Name  string `json:"name" dynamodbav:"name"`
	Code  string `json:"code" dynamodbav:"code"`
	Price string `json:"price" dynamodbav:"price"`
	Model string `json:"model" dynamodbav:"model"`
	URL   string `json:"url" dynamodbav:"url"`
}

// Draft carries the caller-supplied attributes of a product. It is used for
// both create and update; an update replaces every attribute, so a field left
// out of the draft is stored empty.
type Draft struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Price string `json:"price"`
	Model string `json:"model"`
	URL   string `json:"url"`
}

// Reasons a draft is rejected. Every one of them is also marked
// errs.ErrMalformedRequest.
var (
	ErrEmptyBody      = errs.New("empty request body")
	ErrInvalidPayload = errs.New("invalid request payload")
	ErrMissingCode    = errs.New("code is required")
	ErrInvalidPrice   = errs.New("invalid price")
)

// ParseDraft decodes a JSON request body. Any id in the body is ignored.
func ParseDraft(body string) (Draft, error) {
	if strings.TrimSpace(body) == "" {
		return Draft{}, malformed(errs.New("empty request body"), ErrEmptyBody)
	}
	var d Draft
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return Draft{}, malformed(errs.Wrap(err, "invalid request payload"), ErrInvalidPayload)
	}
	return d, nil
}

// Validate requires a product code, since lifecycle events are keyed by it,
// and a non-negative decimal price.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Code) == "" {
		return malformed(errs.New("code is required"), ErrMissingCode)
	}
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return malformed(errs.Newf("price %q is not a decimal", d.Price), ErrInvalidPrice)
	}
	if price.IsNegative() {
		return malformed(errs.Newf("price %q is negative", d.Price), ErrInvalidPrice)
	}
	return nil
}

func malformed(err, reason error) error {
	return errs.Mark(errs.Mark(err, reason), errs.ErrMalformedRequest)
}

func (d Draft) withID(id string) Product {
	return Product{
		ID:    id,
		Name:  d.Name,
		Code:  d.Code,
		Price: d.Price,
		Model: d.Model,
		URL:   d.URL,
	}
}
