package auth

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Sentinel errors. Use errors.Is(err, auth.ErrNotAuthenticated) to check.
var (
	ErrNoVerifier          = errors.New("auth: no PKCE verifier stored (sign-in was not started or was already completed)")
	ErrNoRefreshToken      = errors.New("auth: no refresh token stored")
	ErrNotAuthenticated    = errors.New("auth: not authenticated")
	ErrInvalidClientID     = errors.New("auth: client id must end with " + clientIDSuffix)
	ErrEmptyCode           = errors.New("auth: authorization code is empty")
	ErrAuthorizationDenied = errors.New("auth: authorization denied")
)

// ProtocolError is a non-2xx response from the token endpoint. Body is the
// server's response body, unmodified.
type ProtocolError struct {
	Op         string // "token exchange" or "token refresh"
	StatusCode int
	Body       string
	Err        error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("auth: %s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// tokenEndpointError converts an oauth2 failure into a ProtocolError when the
// server answered, or a wrapped transport error when it did not.
func tokenEndpointError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &ProtocolError{
			Op:         op,
			StatusCode: re.Response.StatusCode,
			Body:       string(re.Body),
			Err:        err,
		}
	}

	return fmt.Errorf("auth: %s: %w", op, err)
}
