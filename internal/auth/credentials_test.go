package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/gopener/internal/credstore"
)

func TestCredentials_DefaultWhenNoneStored(t *testing.T) {
	m, _ := newTestManager(t, newMockAuthServer(t, nil))

	assert.Equal(t, Credentials{ClientID: testClientID}, m.Credentials())

	cc, err := m.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, ClientConfig{ClientID: testClientID}, cc)
}

func TestCredentials_EmptyCustomIDFallsBack(t *testing.T) {
	m, store := newTestManager(t, newMockAuthServer(t, nil))
	require.NoError(t, store.Store(credstore.KeyClientID, "  "))
	require.NoError(t, store.Store(credstore.KeyClientSecret, "orphan"))

	assert.Equal(t, Credentials{ClientID: testClientID}, m.Credentials())
}

func TestCredentials_StoreFailureFallsBack(t *testing.T) {
	m, _ := newTestManager(t, newMockAuthServer(t, nil))
	m.store = credstore.NewFile(t.TempDir())

	assert.Equal(t, Credentials{ClientID: testClientID}, m.Credentials())

	_, err := m.ClientConfig()
	assert.ErrorIs(t, err, credstore.ErrBackendUnavailable)
}

func TestSaveCustomCredentials(t *testing.T) {
	m, _ := newTestManager(t, newMockAuthServer(t, nil))

	require.NoError(t, m.SaveCustomCredentials(" mine.apps.googleusercontent.com ", "secret"))

	assert.Equal(t, Credentials{
		ClientID:     "mine.apps.googleusercontent.com",
		ClientSecret: "secret",
		Custom:       true,
	}, m.Credentials())

	cc, err := m.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, ClientConfig{UseCustom: true, ClientID: "mine.apps.googleusercontent.com", HasClientSecret: true}, cc)

	// Saving again without a secret drops the old one.
	require.NoError(t, m.SaveCustomCredentials("mine.apps.googleusercontent.com", ""))
	assert.Empty(t, m.Credentials().ClientSecret)
}

func TestSaveCustomCredentials_Invalid(t *testing.T) {
	m, store := newTestManager(t, newMockAuthServer(t, nil))

	for _, id := range []string{"", "not-a-google-id", ".apps.googleusercontent.com", "x.apps.googleusercontent.com.evil"} {
		err := m.SaveCustomCredentials(id, "s")
		assert.ErrorIs(t, err, ErrInvalidClientID, id)
	}

	_, ok, err := store.Retrieve(credstore.KeyClientID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearCustomCredentials(t *testing.T) {
	m, _ := newTestManager(t, newMockAuthServer(t, nil))
	require.NoError(t, m.SaveCustomCredentials("mine.apps.googleusercontent.com", "secret"))

	m.ClearCustomCredentials()
	m.ClearCustomCredentials()

	assert.Equal(t, Credentials{ClientID: testClientID}, m.Credentials())
}
