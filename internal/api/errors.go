package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/Amir-Wake/Ebookd/internal/errors"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr := classify(err); apiErr != nil {
				return apiErr
			}
		}

		// Schema violations from request decoding count as plain bad requests.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
			Details: errorDetails(errs),
		}
	}
}

// errorDetails flattens huma error details into a location-to-message map,
// the same shape the request validator produces.
func errorDetails(errs []error) any {
	details := make(map[string]string)
	for _, err := range errs {
		var detailer huma.ErrorDetailer
		if errors.As(err, &detailer) {
			if d := detailer.ErrorDetail(); d != nil && d.Location != "" {
				details[d.Location] = d.Message
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// classify converts a domain error or store not-found sentinel into an
// APIError, or returns nil when err carries no domain information.
func classify(err error) *APIError {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	// Store sentinels that escape the service layer still map to 404.
	for _, sentinel := range []error{store.ErrBookNotFound, store.ErrReviewNotFound, store.ErrUserNotFound} {
		if errors.Is(err, sentinel) {
			return &APIError{
				status:  http.StatusNotFound,
				Code:    string(domainerrors.CodeNotFound),
				Message: err.Error(),
			}
		}
	}
	return nil
}

var statusCodes = map[int]domainerrors.Code{
	http.StatusBadRequest:          domainerrors.CodeValidation,
	http.StatusUnprocessableEntity: domainerrors.CodeValidation,
	http.StatusUnauthorized:        domainerrors.CodeUnauthorized,
	http.StatusForbidden:           domainerrors.CodeForbidden,
	http.StatusNotFound:            domainerrors.CodeNotFound,
	http.StatusConflict:            domainerrors.CodeConflict,
	http.StatusTooManyRequests:     domainerrors.CodeRateLimited,
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	if code, ok := statusCodes[status]; ok {
		return string(code)
	}
	return string(domainerrors.CodeInternal)
}
