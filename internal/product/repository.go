package product

import "context"

//go:generate mockgen -source=repository.go -destination=../mocks/mock_product_repository.go -package=mocks

// Repository is the Record Store.
//
// Get returns (nil, nil) when no product has the id. Update and Delete fail
// with errs.ErrNotFound when the product does not exist; store I/O failures
// are marked errs.ErrDownstream.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, draft Draft) (Product, error)
	Update(ctx context.Context, id string, draft Draft) (Product, error)
	Delete(ctx context.Context, id string) (Product, error)
}
