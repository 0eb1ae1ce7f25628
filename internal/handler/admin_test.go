package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sakarghimire/ecommerce-products/internal/errs"
	"github.com/sakarghimire/ecommerce-products/internal/handler"
	"github.com/sakarghimire/ecommerce-products/internal/mocks"
	"github.com/sakarghimire/ecommerce-products/internal/product"
	"github.com/sakarghimire/ecommerce-products/internal/productevent"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const defaultActor = "unknown@catalog.local"

type AdminHandlerTestSuite struct {
	suite.Suite
	ctx       context.Context
	mockCtrl  *gomock.Controller
	products  *mocks.MockRepository
	publisher *mocks.MockPublisher
	handler   *handler.Admin
}

func (s *AdminHandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockCtrl = gomock.NewController(s.T())
	s.products = mocks.NewMockRepository(s.mockCtrl)
	s.publisher = mocks.NewMockPublisher(s.mockCtrl)
	s.handler = handler.NewAdmin(s.products, s.publisher, defaultActor, zap.NewNop())
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func apiRequest(method, resource, id, body string) events.APIGatewayProxyRequest {
	req := events.APIGatewayProxyRequest{
		Resource:   resource,
		HTTPMethod: method,
		Body:       body,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: "api-req-1",
		},
	}
	if id != "" {
		req.PathParameters = map[string]string{"id": id}
	}
	return req
}

const phoneBody = `{"name":"Phone","code":"PH1","price":"999","model":"X","url":"http://x"}`

var (
	phoneDraft   = product.Draft{Name: "Phone", Code: "PH1", Price: "999", Model: "X", URL: "http://x"}
	phoneProduct = product.Product{ID: "p-1", Name: "Phone", Code: "PH1", Price: "999", Model: "X", URL: "http://x"}
)

func decodeProduct(s *suite.Suite, body string) product.Product {
	var p product.Product
	s.Require().NoError(json.Unmarshal([]byte(body), &p))
	return p
}

// ================================================================================
// Create
// ================================================================================

func (s *AdminHandlerTestSuite) TestCreate() {
	s.Run("success: 201 and CREATED event", func() {
		s.products.EXPECT().Create(gomock.Any(), phoneDraft).Return(phoneProduct, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), productevent.Event{
			RequestID:    "api-req-1",
			EventType:    productevent.Created,
			ProductID:    "p-1",
			ProductCode:  "PH1",
			ProductPrice: "999",
			Email:        defaultActor,
		}).Return(nil)

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPost, handler.ResourceProducts, "", phoneBody))
		s.Require().NoError(err)
		s.Equal(http.StatusCreated, res.StatusCode)
		s.Equal(phoneProduct, decodeProduct(&s.Suite, res.Body))
		s.Equal("application/json", res.Headers["Content-Type"])
	})

	s.Run("event failure does not fail the request", func() {
		s.products.EXPECT().Create(gomock.Any(), phoneDraft).Return(phoneProduct, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errs.Mark(errors.New("timeout"), errs.ErrDownstream))

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPost, handler.ResourceProducts, "", phoneBody))
		s.Require().NoError(err)
		s.Equal(http.StatusCreated, res.StatusCode)
	})

	s.Run("store failure: 500 without event", func() {
		s.products.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(product.Product{}, errs.Downstream(errors.New("throttled"), "failed to create product"))

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPost, handler.ResourceProducts, "", phoneBody))
		s.Require().NoError(err)
		s.Equal(http.StatusInternalServerError, res.StatusCode)
		s.JSONEq(`{"error":"Internal server error"}`, res.Body)
	})

	invalid := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", `{"error":"Empty request body"}`},
		{"malformed json", `{"name":`, `{"error":"Invalid request payload"}`},
		{"not json", "not json", `{"error":"Invalid request payload"}`},
		{"missing code", `{"name":"Phone","price":"1"}`, `{"error":"Product code is required"}`},
		{"non-decimal", `{"code":"PH1","price":"free"}`, `{"error":"Price must be a non-negative decimal"}`},
	}
	for _, tc := range invalid {
		s.Run("invalid: "+tc.name, func() {
			res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPost, handler.ResourceProducts, "", tc.body))
			s.Require().NoError(err)
			s.Equal(http.StatusBadRequest, res.StatusCode)
			s.JSONEq(tc.want, res.Body)
		})
	}
}

func (s *AdminHandlerTestSuite) TestActorFromAuthorizer() {
	req := apiRequest(http.MethodPost, handler.ResourceProducts, "", phoneBody)
	req.RequestContext.Authorizer = map[string]interface{}{
		"claims": map[string]interface{}{"email": "admin@example.com"},
	}

	s.products.EXPECT().Create(gomock.Any(), phoneDraft).Return(phoneProduct, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e productevent.Event) error {
			s.Equal("admin@example.com", e.Email)
			return nil
		})

	res, err := s.handler.Handle(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(http.StatusCreated, res.StatusCode)
}

func (s *AdminHandlerTestSuite) TestActorFromIdentity() {
	req := apiRequest(http.MethodDelete, handler.ResourceProduct, "p-1", "")
	req.RequestContext.Identity.User = "AIDAEXAMPLE"

	s.products.EXPECT().Delete(gomock.Any(), "p-1").Return(phoneProduct, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e productevent.Event) error {
			s.Equal("AIDAEXAMPLE", e.Email)
			return nil
		})

	_, err := s.handler.Handle(s.ctx, req)
	s.Require().NoError(err)
}

// ================================================================================
// Update
// ================================================================================

func (s *AdminHandlerTestSuite) TestUpdate() {
	s.Run("success: 201 and UPDATED event", func() {
		updated := phoneProduct
		updated.Price = "899"
		body := `{"name":"Phone","code":"PH1","price":"899","model":"X","url":"http://x"}`
		draft := phoneDraft
		draft.Price = "899"

		s.products.EXPECT().Update(gomock.Any(), "p-1", draft).Return(updated, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), productevent.NewEvent(productevent.Updated, updated, "api-req-1", defaultActor)).Return(nil)

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPut, handler.ResourceProduct, "p-1", body))
		s.Require().NoError(err)
		s.Equal(http.StatusCreated, res.StatusCode)
		s.Equal(updated, decodeProduct(&s.Suite, res.Body))
	})

	s.Run("unknown id: 404 without event", func() {
		s.products.EXPECT().Update(gomock.Any(), "missing", phoneDraft).
			Return(product.Product{}, errs.Mark(errors.New("conditional check failed"), errs.ErrNotFound))

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPut, handler.ResourceProduct, "missing", phoneBody))
		s.Require().NoError(err)
		s.Equal(http.StatusNotFound, res.StatusCode)
		s.Equal("Product not found", res.Body)
	})

	s.Run("invalid body on existing id: 400 without update", func() {
		s.products.EXPECT().Get(gomock.Any(), "p-1").Return(&phoneProduct, nil)

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPut, handler.ResourceProduct, "p-1", "not json"))
		s.Require().NoError(err)
		s.Equal(http.StatusBadRequest, res.StatusCode)
		s.JSONEq(`{"error":"Invalid request payload"}`, res.Body)
	})

	for name, body := range map[string]string{
		"empty object": "{}",
		"name only":    `{"name":"only"}`,
		"empty body":   "",
		"not json":     "not json",
	} {
		s.Run("unknown id with "+name+": 404 without event", func() {
			s.products.EXPECT().Get(gomock.Any(), "missing").Return(nil, nil)

			res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPut, handler.ResourceProduct, "missing", body))
			s.Require().NoError(err)
			s.Equal(http.StatusNotFound, res.StatusCode)
			s.Equal("Product not found", res.Body)
		})
	}

	s.Run("invalid body and lookup failure: 500", func() {
		s.products.EXPECT().Get(gomock.Any(), "p-1").
			Return(nil, errs.Downstream(errors.New("throttled"), "failed to get product"))

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodPut, handler.ResourceProduct, "p-1", "{}"))
		s.Require().NoError(err)
		s.Equal(http.StatusInternalServerError, res.StatusCode)
	})
}

// ================================================================================
// Delete
// ================================================================================

func (s *AdminHandlerTestSuite) TestDelete() {
	s.Run("success: 201 with prior attributes and DELETED event", func() {
		s.products.EXPECT().Delete(gomock.Any(), "p-1").Return(phoneProduct, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), productevent.NewEvent(productevent.Deleted, phoneProduct, "api-req-1", defaultActor)).Return(nil)

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodDelete, handler.ResourceProduct, "p-1", ""))
		s.Require().NoError(err)
		s.Equal(http.StatusCreated, res.StatusCode)
		s.Equal(phoneProduct, decodeProduct(&s.Suite, res.Body))
	})

	s.Run("unknown id: 404 without event", func() {
		s.products.EXPECT().Delete(gomock.Any(), "missing").
			Return(product.Product{}, errs.Mark(errors.New("product missing"), errs.ErrNotFound))

		res, err := s.handler.Handle(s.ctx, apiRequest(http.MethodDelete, handler.ResourceProduct, "missing", ""))
		s.Require().NoError(err)
		s.Equal(http.StatusNotFound, res.StatusCode)
	})
}

// ================================================================================
// Routing
// ================================================================================

func (s *AdminHandlerTestSuite) TestUnroutable() {
	cases := []struct {
		method   string
		resource string
	}{
		{http.MethodGet, handler.ResourceProducts},
		{http.MethodPut, handler.ResourceProducts},
		{http.MethodDelete, handler.ResourceProducts},
		{http.MethodPost, handler.ResourceProduct},
		{http.MethodPatch, handler.ResourceProduct},
		{http.MethodPost, "/orders"},
	}
	for _, tc := range cases {
		s.Run(tc.method+" "+tc.resource, func() {
			res, err := s.handler.Handle(s.ctx, apiRequest(tc.method, tc.resource, "p-1", phoneBody))
			s.Require().NoError(err)
			s.Equal(http.StatusBadRequest, res.StatusCode)
			s.Equal("Bad Request", res.Body)
		})
	}
}
