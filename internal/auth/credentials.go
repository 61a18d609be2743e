package auth

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tonimelisma/gopener/internal/credstore"
)

// clientIDSuffix is the suffix every Google OAuth client id carries.
const clientIDSuffix = ".apps.googleusercontent.com"

// Credentials is the OAuth client the manager talks to the token endpoint as.
type Credentials struct {
	ClientID     string
	ClientSecret string // only ever set for custom credentials
	Custom       bool
}

// ClientConfig is the user-facing view of the client configuration. The
// secret itself is never returned.
type ClientConfig struct {
	UseCustom       bool   `json:"use_custom"`
	ClientID        string `json:"client_id"`
	HasClientSecret bool   `json:"has_client_secret"`
}

// Credentials resolves the effective client: the custom pair when a non-empty
// custom client id is stored, else the built-in default. A credential store
// failure falls back to the default and is logged.
func (m *Manager) Credentials() Credentials {
	def := Credentials{ClientID: m.cfg.ClientID}

	id, ok, err := m.store.Retrieve(credstore.KeyClientID)
	if err != nil {
		m.logger.Warn("reading custom client id failed, using default client",
			slog.String("error", err.Error()),
		)

		return def
	}

	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return def
	}

	secret, _, err := m.store.Retrieve(credstore.KeyClientSecret)
	if err != nil {
		m.logger.Warn("reading custom client secret failed, continuing without it",
			slog.String("error", err.Error()),
		)

		secret = ""
	}

	return Credentials{ClientID: id, ClientSecret: secret, Custom: true}
}

// ClientConfig reports whether custom credentials are in use, propagating
// credential store failures.
func (m *Manager) ClientConfig() (ClientConfig, error) {
	id, ok, err := m.store.Retrieve(credstore.KeyClientID)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("auth: reading client config: %w", err)
	}

	if !ok || strings.TrimSpace(id) == "" {
		return ClientConfig{ClientID: m.cfg.ClientID}, nil
	}

	secret, _, err := m.store.Retrieve(credstore.KeyClientSecret)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("auth: reading client config: %w", err)
	}

	return ClientConfig{
		UseCustom:       true,
		ClientID:        strings.TrimSpace(id),
		HasClientSecret: secret != "",
	}, nil
}

// SaveCustomCredentials stores a user-supplied OAuth client. The id must be a
// Google client id; an empty secret removes any previously stored one.
func (m *Manager) SaveCustomCredentials(clientID, clientSecret string) error {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)

	if !strings.HasSuffix(clientID, clientIDSuffix) || len(clientID) == len(clientIDSuffix) {
		return fmt.Errorf("%w: got %q", ErrInvalidClientID, clientID)
	}

	if err := m.store.Store(credstore.KeyClientID, clientID); err != nil {
		return fmt.Errorf("auth: saving client id: %w", err)
	}

	if clientSecret == "" {
		if err := m.store.Delete(credstore.KeyClientSecret); err != nil {
			return fmt.Errorf("auth: clearing client secret: %w", err)
		}
	} else if err := m.store.Store(credstore.KeyClientSecret, clientSecret); err != nil {
		return fmt.Errorf("auth: saving client secret: %w", err)
	}

	m.logger.Info("custom OAuth client saved",
		slog.String("client_id", clientID),
		slog.Bool("has_secret", clientSecret != ""),
	)

	return nil
}

// ClearCustomCredentials reverts to the built-in client. Deletions are
// best-effort; failures are logged and not returned.
func (m *Manager) ClearCustomCredentials() {
	m.deleteBestEffort(credstore.KeyClientID, credstore.KeyClientSecret)
	m.logger.Info("custom OAuth client cleared")
}

func (m *Manager) deleteBestEffort(keys ...credstore.Key) {
	for _, k := range keys {
		if err := m.store.Delete(k); err != nil {
			m.logger.Warn("credential delete failed",
				slog.String("key", k.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}
