// Package server provides the HTTP API for the writing optimizer.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/writing-optimizer/internal/feedback"
	"github.com/jonathan/writing-optimizer/internal/gdocs"
	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/schemas"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Raw   string `json:"raw,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *types.ValidationError
		schemaErr     *schemas.ValidationError
		authErr       *gdocs.AuthError
		notFoundErr   *gdocs.NotFoundError
		conflictErr   *gdocs.ConflictError
		parseErr      *feedback.ParseError
		providerErr   *feedback.ProviderError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &providerErr):
		if providerErr.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrNoDocumentService):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// toErrorResponse builds the response body for err. The raw model output is
// included for parse errors so clients can show what the model said.
func toErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), Code: "internal_error"}

	var (
		validationErr *types.ValidationError
		schemaErr     *schemas.ValidationError
		parseErr      *feedback.ParseError
	)
	switch {
	case errors.As(err, &validationErr):
		resp.Code = "validation_error"
		resp.Field = validationErr.Field
	case errors.As(err, &schemaErr):
		resp.Code = "validation_error"
		resp.Field = schemaErr.First().Field
	case errors.As(err, &parseErr):
		resp.Code = "parse_error"
		resp.Raw = parseErr.Raw
	default:
		switch HTTPStatus(err) {
		case http.StatusUnauthorized:
			resp.Code = "auth_error"
		case http.StatusNotFound:
			resp.Code = "not_found"
		case http.StatusConflict:
			resp.Code = "conflict"
		case http.StatusGatewayTimeout:
			resp.Code = "provider_timeout"
		case http.StatusBadGateway:
			resp.Code = "provider_error"
		case http.StatusServiceUnavailable:
			resp.Code = "unavailable"
		}
	}
	return resp
}
