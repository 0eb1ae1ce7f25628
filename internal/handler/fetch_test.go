package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
	"github.com/sakarghimire/ecommerce-products/internal/handler"
	"github.com/sakarghimire/ecommerce-products/internal/mocks"
	"github.com/sakarghimire/ecommerce-products/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestFetchHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		products := mocks.NewMockRepository(gomock.NewController(t))
		products.EXPECT().List(gomock.Any()).Return([]product.Product{phoneProduct}, nil)
		h := handler.NewFetch(products, zap.NewNop())

		res, err := h.Handle(ctx, apiRequest(http.MethodGet, handler.ResourceProducts, "", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.JSONEq(t, `[{"id":"p-1","name":"Phone","code":"PH1","price":"999","model":"X","url":"http://x"}]`, res.Body)
	})

	t.Run("list empty renders an array", func(t *testing.T) {
		products := mocks.NewMockRepository(gomock.NewController(t))
		products.EXPECT().List(gomock.Any()).Return(nil, nil)
		h := handler.NewFetch(products, zap.NewNop())

		res, err := h.Handle(ctx, apiRequest(http.MethodGet, handler.ResourceProducts, "", ""))
		require.NoError(t, err)
		assert.Equal(t, "[]", res.Body)
	})

	t.Run("get", func(t *testing.T) {
		products := mocks.NewMockRepository(gomock.NewController(t))
		p := phoneProduct
		products.EXPECT().Get(gomock.Any(), "p-1").Return(&p, nil)
		h := handler.NewFetch(products, zap.NewNop())

		res, err := h.Handle(ctx, apiRequest(http.MethodGet, handler.ResourceProduct, "p-1", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.JSONEq(t, `{"id":"p-1","name":"Phone","code":"PH1","price":"999","model":"X","url":"http://x"}`, res.Body)
	})

	t.Run("get miss", func(t *testing.T) {
		products := mocks.NewMockRepository(gomock.NewController(t))
		products.EXPECT().Get(gomock.Any(), "missing").Return(nil, nil)
		h := handler.NewFetch(products, zap.NewNop())

		res, err := h.Handle(ctx, apiRequest(http.MethodGet, handler.ResourceProduct, "missing", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, "Product not found", res.Body)
	})

	t.Run("store failure", func(t *testing.T) {
		products := mocks.NewMockRepository(gomock.NewController(t))
		products.EXPECT().List(gomock.Any()).Return(nil, errs.Downstream(errors.New("throttled"), "scan"))
		h := handler.NewFetch(products, zap.NewNop())

		res, err := h.Handle(ctx, apiRequest(http.MethodGet, handler.ResourceProducts, "", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	})

	t.Run("unroutable", func(t *testing.T) {
		h := handler.NewFetch(mocks.NewMockRepository(gomock.NewController(t)), zap.NewNop())

		for _, req := range []struct{ method, resource string }{
			{http.MethodPost, handler.ResourceProducts},
			{http.MethodDelete, handler.ResourceProduct},
			{http.MethodGet, "/orders"},
		} {
			res, err := h.Handle(ctx, apiRequest(req.method, req.resource, "p-1", ""))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, "Bad Request", res.Body)
		}
	})
}
