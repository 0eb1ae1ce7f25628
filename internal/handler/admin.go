package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/sakarghimire/ecommerce-products/internal/product"
	"github.com/sakarghimire/ecommerce-products/internal/productevent"
)

// Admin serves product mutations. Each committed mutation is followed by one
// lifecycle event handed to the publisher.
type Admin struct {
	products     product.Repository
	events       productevent.Publisher
	defaultActor string
	log          *zap.Logger
}

func NewAdmin(products product.Repository, events productevent.Publisher, defaultActor string, log *zap.Logger) *Admin {
	return &Admin{
		products:     products,
		events:       events,
		defaultActor: defaultActor,
		log:          log,
	}
}

func (h *Admin) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, log := begin(ctx, h.log, req)
	log.Info("admin request", zap.String("method", req.HTTPMethod), zap.String("resource", req.Resource))

	switch {
	case req.Resource == ResourceProducts && req.HTTPMethod == http.MethodPost:
		return h.create(ctx, log, req), nil
	case req.Resource == ResourceProduct && req.HTTPMethod == http.MethodPut:
		return h.update(ctx, log, req), nil
	case req.Resource == ResourceProduct && req.HTTPMethod == http.MethodDelete:
		return h.delete(ctx, log, req), nil
	}
	return badRequest(), nil
}

func (h *Admin) create(ctx context.Context, log *zap.Logger, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	draft, err := parseAndValidate(req.Body)
	if err != nil {
		log.Info("rejected product draft", zap.Error(err))
		return errorResponse(err)
	}

	created, err := h.products.Create(ctx, draft)
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return errorResponse(err)
	}

	h.notify(ctx, log, req, productevent.Created, created)
	return jsonResponse(http.StatusCreated, created)
}

func (h *Admin) update(ctx context.Context, log *zap.Logger, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	id := req.PathParameters["id"]
	draft, err := parseAndValidate(req.Body)
	if err != nil {
		return h.rejectUpdate(ctx, log, id, err)
	}

	updated, err := h.products.Update(ctx, id, draft)
	if err != nil {
		log.Warn("failed to update product", zap.String("product_id", id), zap.Error(err))
		return errorResponse(err)
	}

	h.notify(ctx, log, req, productevent.Updated, updated)
	return jsonResponse(http.StatusCreated, updated)
}

// rejectUpdate answers an update whose body did not parse or validate. An
// unknown id is reported as 404 whatever the body holds; only an existing
// product gets the 400.
func (h *Admin) rejectUpdate(ctx context.Context, log *zap.Logger, id string, cause error) events.APIGatewayProxyResponse {
	existing, err := h.products.Get(ctx, id)
	if err != nil {
		log.Error("failed to get product", zap.String("product_id", id), zap.Error(err))
		return errorResponse(err)
	}
	if existing == nil {
		return textResponse(http.StatusNotFound, msgNotFound)
	}
	log.Info("rejected product draft", zap.String("product_id", id), zap.Error(cause))
	return errorResponse(cause)
}

func (h *Admin) delete(ctx context.Context, log *zap.Logger, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	id := req.PathParameters["id"]

	deleted, err := h.products.Delete(ctx, id)
	if err != nil {
		log.Warn("failed to delete product", zap.String("product_id", id), zap.Error(err))
		return errorResponse(err)
	}

	h.notify(ctx, log, req, productevent.Deleted, deleted)
	return jsonResponse(http.StatusCreated, deleted)
}

// notify publishes the lifecycle event of a mutation that has already been
// committed. A publish failure cannot undo the mutation, so it is logged and
// the caller still gets the mutation result.
func (h *Admin) notify(ctx context.Context, log *zap.Logger, req events.APIGatewayProxyRequest, eventType productevent.EventType, p product.Product) {
	evt := productevent.NewEvent(eventType, p, req.RequestContext.RequestID, actorEmail(req, h.defaultActor))
	if err := h.events.Publish(ctx, evt); err != nil {
		log.Error("failed to record product event",
			zap.String("event_type", string(eventType)),
			zap.String("product_id", p.ID),
			zap.String("product_code", p.Code),
			zap.Error(err),
		)
	}
}

func parseAndValidate(body string) (product.Draft, error) {
	draft, err := product.ParseDraft(body)
	if err != nil {
		return product.Draft{}, err
	}
	if err := draft.Validate(); err != nil {
		return product.Draft{}, err
	}
	return draft, nil
}
