package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/gopener/internal/auth"
	"github.com/tonimelisma/gopener/internal/credstore"
)

func decodeStatus(t *testing.T, out string) map[string]any {
	t.Helper()

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	return got
}

func TestStatus_SignedOut(t *testing.T) {
	env := newTestEnv(t, "")

	for _, args := range [][]string{{"status", "--json"}, {"status", "--offline", "--json"}} {
		out, err := env.run(t, args...)
		require.NoError(t, err)

		got := decodeStatus(t, out)
		assert.Equal(t, "signed-out", got["state"])
		assert.Equal(t, false, got["authenticated"])
		assert.NotContains(t, got, "expires_at")
		assert.Equal(t, map[string]any{
			"use_custom":        false,
			"client_id":         auth.DefaultClientID,
			"has_client_secret": false,
		}, got["client"])
	}
}

func TestStatus_Authenticated(t *testing.T) {
	env := newTestEnv(t, "")
	env.storeFreshToken(t, "tok")

	out, err := env.run(t, "status", "--json")
	require.NoError(t, err)

	got := decodeStatus(t, out)
	assert.Equal(t, "authenticated", got["state"])
	assert.Equal(t, true, got["authenticated"])
	assert.NotEmpty(t, got["expires_at"])
	assert.NotContains(t, out, "tok\"", "the access token is never printed")
}

func TestStatus_OfflineReportsStale(t *testing.T) {
	env := newTestEnv(t, "")

	rec := auth.TokenRecord{AccessToken: "old", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Minute).Unix()}
	require.NoError(t, credstore.StoreJSON(env.store, credstore.KeyToken, rec))

	out, err := env.run(t, "status", "--offline", "--json")
	require.NoError(t, err)
	assert.Equal(t, "stale", decodeStatus(t, out)["state"])
}

func TestStatus_TextOutput(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:   signed-out")
	assert.Contains(t, out, "(built-in)")
	assert.Contains(t, out, "gopener login")
}

func TestLogout_RemovesToken(t *testing.T) {
	env := newTestEnv(t, "")
	env.storeFreshToken(t, "tok")

	_, err := env.run(t, "logout", "--quiet")
	require.NoError(t, err)

	_, ok, err := env.store.Retrieve(credstore.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.run(t, "logout", "--quiet")
	assert.NoError(t, err, "signing out twice is fine")
}

func TestClient_SetShowClear(t *testing.T) {
	env := newTestEnv(t, "")
	const id = "123-custom.apps.googleusercontent.com"

	_, err := env.run(t, "client", "set", id, "s3cret", "--quiet")
	require.NoError(t, err)

	out, err := env.run(t, "client", "show", "--json")
	require.NoError(t, err)

	var cc auth.ClientConfig
	require.NoError(t, json.Unmarshal([]byte(out), &cc))
	assert.Equal(t, auth.ClientConfig{UseCustom: true, ClientID: id, HasClientSecret: true}, cc)
	assert.NotContains(t, out, "s3cret")

	_, err = env.run(t, "client", "clear", "--quiet")
	require.NoError(t, err)

	out, err = env.run(t, "client", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Custom:    false")
	assert.Contains(t, out, auth.DefaultClientID)
}

func TestClient_SetRejectsBadID(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "client", "set", "not-a-google-client")
	require.ErrorIs(t, err, auth.ErrInvalidClientID)
}

func TestNewStatusOutput(t *testing.T) {
	st := auth.AuthState{IsAuthenticated: true, ExpiresAt: 1_700_000_000, State: auth.StateAuthenticated}

	out := newStatusOutput(st, nil)
	assert.Equal(t, statusOutput{
		State:         "authenticated",
		Authenticated: true,
		ExpiresAt:     "2023-11-14T22:13:20Z",
	}, out)
}
