package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"github.com/sakarghimire/ecommerce-products/internal/logger"
)

// API Gateway resource paths routed to the product functions.
const (
	ResourceProducts = "/products"
	ResourceProduct  = "/products/{id}"
)

// begin tags ctx with the API Gateway request id and returns a logger that
// carries both that id and the Lambda invocation id.
func begin(ctx context.Context, base *zap.Logger, req events.APIGatewayProxyRequest) (context.Context, *zap.Logger) {
	ctx = logger.ContextWithRequestID(ctx, req.RequestContext.RequestID)
	log := logger.WithRequestID(ctx, base)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With(zap.String("lambda_request_id", lc.AwsRequestID))
	}
	return ctx, log
}

// actorEmail resolves who is acting on the catalog: the email claim of a
// Cognito authorizer, then the IAM caller, then fallback.
func actorEmail(req events.APIGatewayProxyRequest, fallback string) string {
	if claims, ok := req.RequestContext.Authorizer["claims"].(map[string]interface{}); ok {
		if email, ok := claims["email"].(string); ok && email != "" {
			return email
		}
	}
	if user := req.RequestContext.Identity.User; user != "" {
		return user
	}
	return fallback
}
