package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/sakarghimire/ecommerce-products/internal/product"
)

// Fetch serves read-only product lookups.
type Fetch struct {
	products product.Repository
	log      *zap.Logger
}

func NewFetch(products product.Repository, log *zap.Logger) *Fetch {
	return &Fetch{products: products, log: log}
}

func (h *Fetch) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, log := begin(ctx, h.log, req)
	log.Info("fetch request", zap.String("method", req.HTTPMethod), zap.String("resource", req.Resource))

	if req.HTTPMethod != http.MethodGet {
		return badRequest(), nil
	}

	switch req.Resource {
	case ResourceProducts:
		products, err := h.products.List(ctx)
		if err != nil {
			log.Error("failed to list products", zap.Error(err))
			return errorResponse(err), nil
		}
		if products == nil {
			products = []product.Product{}
		}
		return jsonResponse(http.StatusOK, products), nil

	case ResourceProduct:
		id := req.PathParameters["id"]
		p, err := h.products.Get(ctx, id)
		if err != nil {
			log.Error("failed to get product", zap.String("product_id", id), zap.Error(err))
			return errorResponse(err), nil
		}
		if p == nil {
			return textResponse(http.StatusNotFound, msgNotFound), nil
		}
		return jsonResponse(http.StatusOK, p), nil
	}

	return badRequest(), nil
}
