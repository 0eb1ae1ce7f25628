package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
	"github.com/sakarghimire/ecommerce-products/internal/product"
)

const (
	msgBadRequest     = "Bad Request"
	msgNotFound       = "Product not found"
	msgInternalServer = "Internal server error"

	msgEmptyBody      = "Empty request body"
	msgInvalidPayload = "Invalid request payload"
	msgMissingCode    = "Product code is required"
	msgInvalidPrice   = "Price must be a non-negative decimal"
)

func headers(contentType string) map[string]string {
	return map[string]string{
		"Content-Type":                 contentType,
		"Access-Control-Allow-Methods": "*",
		"Access-Control-Allow-Origin":  "*",
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorJSON(http.StatusInternalServerError, msgInternalServer)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers("application/json"),
		Body:       string(body),
	}
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers("text/plain"),
		Body:       body,
	}
}

func errorJSON(status int, msg string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers("application/json"),
		Body:       string(body),
	}
}

// errorResponse maps a classified error onto the response the caller sees.
func errorResponse(err error) events.APIGatewayProxyResponse {
	switch {
	case errs.Is(err, errs.ErrNotFound):
		return textResponse(http.StatusNotFound, msgNotFound)
	case errs.Is(err, errs.ErrMalformedRequest):
		return errorJSON(http.StatusBadRequest, malformedMessage(err))
	default:
		return errorJSON(http.StatusInternalServerError, msgInternalServer)
	}
}

// malformedMessage keeps decoder and validation detail out of the response
// body; the detail is logged by the caller.
func malformedMessage(err error) string {
	switch {
	case errs.Is(err, product.ErrEmptyBody):
		return msgEmptyBody
	case errs.Is(err, product.ErrMissingCode):
		return msgMissingCode
	case errs.Is(err, product.ErrInvalidPrice):
		return msgInvalidPrice
	default:
		return msgInvalidPayload
	}
}

func badRequest() events.APIGatewayProxyResponse {
	return textResponse(http.StatusBadRequest, msgBadRequest)
}
