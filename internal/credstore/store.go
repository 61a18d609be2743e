// Package credstore persists secrets (the OAuth token record, the pending PKCE
// verifier, and optional custom client credentials) outside process memory.
// Backends re-query their storage on every call; nothing is cached in-process,
// so concurrent callers see each other's writes at the next call boundary.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Key identifies a stored secret. The set of keys is closed: backends reject
// anything not listed in Keys().
type Key string

const (
	// KeyToken holds the JSON-encoded token record (access token, refresh
	// token, expiry) so that all three are replaced in one write.
	KeyToken Key = "token"
	// KeyClientID holds a user-supplied OAuth client id.
	KeyClientID Key = "custom_client_id"
	// KeyClientSecret holds a user-supplied OAuth client secret.
	KeyClientSecret Key = "custom_client_secret"
	// KeyPKCEVerifier holds the verifier of the authorization attempt in flight.
	KeyPKCEVerifier Key = "pkce_verifier"
)

var allKeys = []Key{KeyToken, KeyClientID, KeyClientSecret, KeyPKCEVerifier}

// Keys returns every valid key.
func Keys() []Key {
	return slices.Clone(allKeys)
}

// Valid reports whether k is one of the known keys.
func (k Key) Valid() bool {
	return slices.Contains(allKeys, k)
}

func (k Key) String() string {
	return string(k)
}

// Error kinds. Use errors.Is(err, credstore.ErrBackendUnavailable) to check.
var (
	ErrBackendUnavailable = errors.New("credstore: backend unavailable")
	ErrSerialization      = errors.New("credstore: serialization failure")
	ErrUnknownKey         = errors.New("credstore: unknown key")
)

// StoreError describes a failed backend operation. Kind is one of the error
// kinds above; Err is the underlying cause.
type StoreError struct {
	Op   string // "store", "retrieve", "delete"
	Key  Key
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("credstore: %s %s: %v", e.Op, e.Key, e.Kind)
	}

	return fmt.Sprintf("credstore: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// Backend is an OS-backed (or file-backed) key/value secret store.
//
// Retrieve returns ok=false with a nil error when the key is absent. Delete of
// an absent key succeeds.
type Backend interface {
	Store(key Key, value string) error
	Retrieve(key Key) (value string, ok bool, err error)
	Delete(key Key) error
}

// checkKey rejects keys outside the closed enumeration.
func checkKey(op string, key Key) error {
	if key.Valid() {
		return nil
	}

	return &StoreError{Op: op, Key: key, Kind: ErrUnknownKey}
}

// unavailable wraps a backend failure.
func unavailable(op string, key Key, err error) error {
	return &StoreError{Op: op, Key: key, Kind: ErrBackendUnavailable, Err: err}
}

// StoreJSON encodes v as JSON and stores it under key.
func StoreJSON(b Backend, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StoreError{Op: "store", Key: key, Kind: ErrSerialization, Err: err}
	}

	return b.Store(key, string(data))
}

// RetrieveJSON decodes the JSON value stored under key into v. Returns
// ok=false when the key is absent, leaving v untouched.
func RetrieveJSON(b Backend, key Key, v any) (bool, error) {
	raw, ok, err := b.Retrieve(key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, &StoreError{Op: "retrieve", Key: key, Kind: ErrSerialization, Err: err}
	}

	return true, nil
}
