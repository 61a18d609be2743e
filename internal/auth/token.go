package auth

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ExpiryMargin is how long before the recorded expiry a token stops being
// handed out. It covers the gap between checking a token and using it.
const ExpiryMargin = 300 * time.Second

// TokenRecord is the persisted credential. The three fields are always written
// together as one value.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"` // epoch seconds
}

// fresh reports whether the access token is usable at now with the margin applied.
func (r TokenRecord) fresh(now time.Time) bool {
	return r.AccessToken != "" && r.ExpiresAt > now.Add(ExpiryMargin).Unix()
}

// State is where the sign-in lifecycle currently stands.
type State int

const (
	// StateSignedOut: no token and no sign-in in progress.
	StateSignedOut State = iota
	// StateAwaitingCode: a verifier is stored and the authorization code has
	// not been exchanged yet.
	StateAwaitingCode
	// StateAuthenticated: the access token is valid beyond the expiry margin.
	StateAuthenticated
	// StateStale: a token exists but is inside the expiry margin; a refresh
	// is due.
	StateStale
	// StateRefreshRejected: a refresh was attempted and failed. The user has
	// to sign in again.
	StateRefreshRejected
)

func (s State) String() string {
	switch s {
	case StateSignedOut:
		return "signed-out"
	case StateAwaitingCode:
		return "awaiting-code"
	case StateAuthenticated:
		return "authenticated"
	case StateStale:
		return "stale"
	case StateRefreshRejected:
		return "refresh-rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AuthState is derived on demand from the stored record and the clock; it is
// never persisted. AccessToken and ExpiresAt are set only when authenticated.
type AuthState struct {
	IsAuthenticated bool
	AccessToken     string
	ExpiresAt       int64 // epoch seconds, 0 when not authenticated
	State           State
}

// Expiry returns ExpiresAt as a time, or the zero time when unset.
func (s AuthState) Expiry() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}

	return time.Unix(s.ExpiresAt, 0)
}

func authenticated(rec TokenRecord) AuthState {
	return AuthState{
		IsAuthenticated: true,
		AccessToken:     rec.AccessToken,
		ExpiresAt:       rec.ExpiresAt,
		State:           StateAuthenticated,
	}
}

// recordFromToken builds the record to persist from a token endpoint response.
// The expiry is computed from expires_in against now rather than trusting the
// library's own clock. prevRefresh is kept when the response carries no
// refresh token.
func recordFromToken(tok *oauth2.Token, prevRefresh string, now time.Time) TokenRecord {
	rec := TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    now.Unix() + expiresIn(tok, now),
	}

	if rec.RefreshToken == "" {
		rec.RefreshToken = prevRefresh
	}

	return rec
}

// expiresIn returns the token lifetime in seconds as sent by the server,
// falling back to the library-computed expiry. Never negative.
func expiresIn(tok *oauth2.Token, now time.Time) int64 {
	secs := tok.ExpiresIn

	if secs == 0 {
		// Form-encoded responses only carry it in the raw values.
		switch v := tok.Extra("expires_in").(type) {
		case int64:
			secs = v
		case float64:
			secs = int64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				secs = n
			}
		default:
			if !tok.Expiry.IsZero() {
				secs = int64(tok.Expiry.Sub(now) / time.Second)
			}
		}
	}

	return max(secs, 0)
}
