// Package auth owns the OAuth2 authorization-code + PKCE lifecycle against
// Google: building the consent URL, exchanging the returned code, refreshing
// the access token before it expires, and signing out.
//
// Refresh is lazy. There is no background timer; every call to Token or
// CheckState re-validates the stored record and refreshes it when needed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"

	"github.com/tonimelisma/gopener/internal/credstore"
	"github.com/tonimelisma/gopener/internal/pkce"
)

// DefaultClientID is the OAuth client used when no custom client is stored.
// Release builds set it with -ldflags "-X".
var DefaultClientID = "YOUR_CLIENT_ID.apps.googleusercontent.com"

// DefaultRedirectURL is the loopback address the consent screen redirects to.
const DefaultRedirectURL = "http://localhost:8085"

// DefaultScopes grants access to files the app creates plus read access to
// the folder tree.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/drive.readonly",
}

// Config describes the authorization server and the built-in client.
type Config struct {
	ClientID    string
	AuthURL     string
	TokenURL    string
	RedirectURL string
	Scopes      []string
}

// DefaultConfig returns the Google endpoints with the built-in client.
func DefaultConfig() Config {
	return Config{
		ClientID:    DefaultClientID,
		AuthURL:     google.Endpoint.AuthURL,
		TokenURL:    google.Endpoint.TokenURL,
		RedirectURL: DefaultRedirectURL,
		Scopes:      DefaultScopes,
	}
}

// Manager runs the token lifecycle. All state lives in the credential store;
// a Manager can be discarded and recreated at any time.
type Manager struct {
	cfg        Config
	store      credstore.Backend
	httpClient *http.Client
	logger     *slog.Logger

	// nowFunc is the clock; tests override it.
	nowFunc func() time.Time

	refreshGroup singleflight.Group
}

// NewManager creates a Manager. Empty Config fields fall back to
// DefaultConfig; a nil httpClient uses http.DefaultClient.
func NewManager(cfg Config, store credstore.Backend, httpClient *http.Client, logger *slog.Logger) *Manager {
	def := DefaultConfig()

	if cfg.ClientID == "" {
		cfg.ClientID = def.ClientID
	}

	if cfg.AuthURL == "" {
		cfg.AuthURL = def.AuthURL
	}

	if cfg.TokenURL == "" {
		cfg.TokenURL = def.TokenURL
	}

	if cfg.RedirectURL == "" {
		cfg.RedirectURL = def.RedirectURL
	}

	if len(cfg.Scopes) == 0 {
		cfg.Scopes = def.Scopes
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:        cfg,
		store:      store,
		httpClient: httpClient,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// oauthConfig builds the library config for creds. Client credentials go in
// the form body; the secret is sent only when non-empty.
func (m *Manager) oauthConfig(creds Credentials, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   m.cfg.AuthURL,
			TokenURL:  m.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      m.cfg.Scopes,
	}
}

// oauthContext routes the library's token requests through m.httpClient.
func (m *Manager) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// BuildAuthorizationURL starts a sign-in attempt: it stores a fresh PKCE
// verifier (replacing any earlier one) and returns the consent URL.
func (m *Manager) BuildAuthorizationURL(ctx context.Context) (string, error) {
	return m.buildAuthorizationURL(ctx, m.cfg.RedirectURL)
}

func (m *Manager) buildAuthorizationURL(_ context.Context, redirectURL string) (string, error) {
	creds := m.Credentials()
	ch := pkce.Generate()

	if err := m.store.Store(credstore.KeyPKCEVerifier, ch.Verifier); err != nil {
		return "", fmt.Errorf("auth: saving PKCE verifier: %w", err)
	}

	authURL := m.oauthConfig(creds, redirectURL).AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("code_challenge", ch.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", ch.Method()),
	)

	m.logger.Info("authorization URL built",
		slog.Bool("custom_client", creds.Custom),
		slog.String("redirect_uri", redirectURL),
	)

	return authURL, nil
}

// ExchangeCode trades an authorization code for tokens using the stored
// verifier. The verifier is deleted once read, whether or not the exchange
// succeeds. A refresh token already on record is kept if the response
// carries none.
func (m *Manager) ExchangeCode(ctx context.Context, code string) (AuthState, error) {
	return m.exchangeCode(ctx, code, m.cfg.RedirectURL)
}

func (m *Manager) exchangeCode(ctx context.Context, code, redirectURL string) (AuthState, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return AuthState{}, ErrEmptyCode
	}

	creds := m.Credentials()

	verifier, ok, err := m.store.Retrieve(credstore.KeyPKCEVerifier)
	if err != nil {
		return AuthState{}, fmt.Errorf("auth: reading PKCE verifier: %w", err)
	}

	if !ok || verifier == "" {
		return AuthState{}, ErrNoVerifier
	}

	defer m.deleteBestEffort(credstore.KeyPKCEVerifier)

	var prevRefresh string
	if prev, found, loadErr := m.loadRecord(); loadErr == nil && found {
		prevRefresh = prev.RefreshToken
	}

	m.logger.Info("exchanging authorization code", slog.Bool("custom_client", creds.Custom))

	tok, err := m.oauthConfig(creds, redirectURL).Exchange(
		m.oauthContext(ctx), code, oauth2.VerifierOption(verifier),
	)
	if err != nil {
		return AuthState{}, tokenEndpointError("token exchange", err)
	}

	rec := recordFromToken(tok, prevRefresh, m.now())
	if err := m.saveRecord(rec); err != nil {
		return AuthState{}, err
	}

	m.logger.Info("token exchange successful",
		slog.Time("expiry", time.Unix(rec.ExpiresAt, 0)),
		slog.Bool("has_refresh_token", rec.RefreshToken != ""),
	)

	return authenticated(rec), nil
}

// Refresh obtains a new access token with the stored refresh token. A rotated
// refresh token returned by the server replaces the stored one. Concurrent
// refreshes within the process share one request.
func (m *Manager) Refresh(ctx context.Context) (AuthState, error) {
	return m.refreshShared(ctx, true)
}

// refreshShared runs refresh under the singleflight group. With force unset,
// a record that became fresh while waiting is returned without a request.
// The shared request is detached from any one caller's cancellation; each
// caller stops waiting when its own ctx is done.
func (m *Manager) refreshShared(ctx context.Context, force bool) (AuthState, error) {
	if err := ctx.Err(); err != nil {
		return AuthState{}, fmt.Errorf("auth: token refresh: %w", err)
	}

	work := context.WithoutCancel(ctx)

	ch := m.refreshGroup.DoChan("refresh", func() (any, error) {
		return m.refresh(work, force)
	})

	select {
	case <-ctx.Done():
		return AuthState{}, fmt.Errorf("auth: waiting for token refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			m.logger.Debug("joined in-flight token refresh")
		}

		if res.Err != nil {
			return AuthState{}, res.Err
		}

		st, _ := res.Val.(AuthState)

		return st, nil
	}
}

func (m *Manager) refresh(ctx context.Context, force bool) (AuthState, error) {
	rec, ok, err := m.loadRecord()
	if err != nil {
		return AuthState{}, err
	}

	if !force && ok && rec.fresh(m.now()) {
		return authenticated(rec), nil
	}

	if !ok || rec.RefreshToken == "" {
		return AuthState{}, ErrNoRefreshToken
	}

	creds := m.Credentials()

	m.logger.Info("refreshing access token", slog.Bool("custom_client", creds.Custom))

	src := m.oauthConfig(creds, m.cfg.RedirectURL).TokenSource(
		m.oauthContext(ctx), &oauth2.Token{RefreshToken: rec.RefreshToken},
	)

	tok, err := src.Token()
	if err != nil {
		return AuthState{}, tokenEndpointError("token refresh", err)
	}

	next := recordFromToken(tok, rec.RefreshToken, m.now())
	if next.RefreshToken != rec.RefreshToken {
		m.logger.Info("refresh token rotated by server")
	}

	if err := m.saveRecord(next); err != nil {
		return AuthState{}, err
	}

	m.logger.Info("token refresh successful", slog.Time("expiry", time.Unix(next.ExpiresAt, 0)))

	return authenticated(next), nil
}

// CheckState reports the current authentication state, refreshing silently
// when the token is inside the expiry margin. A failed refresh yields
// StateRefreshRejected with no error; credential store failures and
// cancellation are returned.
func (m *Manager) CheckState(ctx context.Context) (AuthState, error) {
	st, err := m.Inspect()
	if err != nil || st.State != StateStale {
		return st, err
	}

	m.logger.Info("access token near expiry, attempting silent refresh")

	refreshed, err := m.refreshShared(ctx, false)
	if err == nil {
		return refreshed, nil
	}

	if isStoreError(err) {
		return AuthState{}, err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return AuthState{}, fmt.Errorf("auth: refresh canceled: %w", ctxErr)
	}

	m.logger.Warn("silent refresh failed, sign-in required", slog.String("error", err.Error()))

	return AuthState{State: StateRefreshRejected}, nil
}

// Inspect reports the state from the store and the clock without contacting
// the token endpoint. A refreshable token inside the margin is StateStale.
func (m *Manager) Inspect() (AuthState, error) {
	rec, ok, err := m.loadRecord()
	if err != nil {
		return AuthState{}, err
	}

	if ok && rec.fresh(m.now()) {
		return authenticated(rec), nil
	}

	if ok && rec.RefreshToken != "" {
		return AuthState{State: StateStale}, nil
	}

	if _, pending, vErr := m.store.Retrieve(credstore.KeyPKCEVerifier); vErr == nil && pending {
		return AuthState{State: StateAwaitingCode}, nil
	}

	return AuthState{State: StateSignedOut}, nil
}

// Token returns a usable access token or ErrNotAuthenticated. HTTP consumers
// call this before every request and never cache the result.
func (m *Manager) Token(ctx context.Context) (string, error) {
	st, err := m.CheckState(ctx)
	if err != nil {
		return "", err
	}

	if !st.IsAuthenticated {
		return "", ErrNotAuthenticated
	}

	return st.AccessToken, nil
}

// SignOut removes the token record and any pending verifier. Custom client
// credentials are kept. It never fails; deletion errors are logged.
func (m *Manager) SignOut() {
	m.deleteBestEffort(credstore.KeyToken, credstore.KeyPKCEVerifier)
	m.logger.Info("signed out")
}

// abandon drops a sign-in attempt that will not reach the exchange.
func (m *Manager) abandon() {
	m.deleteBestEffort(credstore.KeyPKCEVerifier)
}

func (m *Manager) now() time.Time {
	return m.nowFunc()
}

func (m *Manager) loadRecord() (TokenRecord, bool, error) {
	var rec TokenRecord

	ok, err := credstore.RetrieveJSON(m.store, credstore.KeyToken, &rec)
	if err != nil {
		return TokenRecord{}, false, fmt.Errorf("auth: loading token: %w", err)
	}

	return rec, ok && rec.AccessToken != "", nil
}

func (m *Manager) saveRecord(rec TokenRecord) error {
	if err := credstore.StoreJSON(m.store, credstore.KeyToken, rec); err != nil {
		return fmt.Errorf("auth: saving token: %w", err)
	}

	return nil
}

func isStoreError(err error) bool {
	return errors.Is(err, credstore.ErrBackendUnavailable) ||
		errors.Is(err, credstore.ErrSerialization) ||
		errors.Is(err, credstore.ErrUnknownKey)
}
