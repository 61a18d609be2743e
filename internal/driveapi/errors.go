package driveapi

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, driveapi.ErrNotFound) to check.
var (
	ErrBadRequest      = errors.New("driveapi: bad request")
	ErrUnauthorized    = errors.New("driveapi: unauthorized")
	ErrForbidden       = errors.New("driveapi: forbidden")
	ErrNotFound        = errors.New("driveapi: not found")
	ErrPayloadTooLarge = errors.New("driveapi: payload too large")
	ErrThrottled       = errors.New("driveapi: throttled")
	ErrServerError     = errors.New("driveapi: server error")
)

// APIError is a non-2xx response from Drive. Body is the response body as
// received; Message is the error message parsed out of it, when present.
type APIError struct {
	StatusCode int
	Body       string
	Message    string
	Err        error // sentinel, for errors.Is(); nil for unclassified codes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("driveapi: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// checkResponse returns nil for 2xx, else an *APIError built from the body.
func checkResponse(resp *http.Response) error {
	err := googleapi.CheckResponse(resp)
	if err == nil {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Err:        classifyStatus(resp.StatusCode),
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		apiErr.Body = gErr.Body
		apiErr.Message = gErr.Message
	} else {
		apiErr.Body = err.Error()
	}

	return apiErr
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
