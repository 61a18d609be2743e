package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// shutdownTimeout is how long to wait for the callback server to drain.
const shutdownTimeout = 5 * time.Second

// callbackResult carries the authorization code or error from the callback handler.
type callbackResult struct {
	code string
	err  error
}

// Receiver is the loopback HTTP server the consent screen redirects to.
type Receiver struct {
	srv         *http.Server
	listener    net.Listener
	redirectURL string
	resultCh    chan callbackResult
	logger      *slog.Logger
}

// Listen binds the host:port of redirectURL and starts serving the callback
// path. Port 0 binds an ephemeral port; RedirectURL reports the bound one.
func Listen(ctx context.Context, redirectURL string, logger *slog.Logger) (*Receiver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("auth: parsing redirect URI: %w", err)
	}

	if u.Scheme != "http" || u.Port() == "" {
		return nil, fmt.Errorf("auth: redirect URI %q must be http with an explicit port", redirectURL)
	}

	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("auth: binding callback listener: %w", err)
	}

	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		listener.Close()
		return nil, fmt.Errorf("auth: listener address is not TCP")
	}

	bound := *u
	bound.Host = net.JoinHostPort(u.Hostname(), fmt.Sprint(tcpAddr.Port))

	path := u.Path
	if path == "" || path == "/" {
		path = "/{$}"
	}

	r := &Receiver{
		listener:    listener,
		redirectURL: bound.String(),
		resultCh:    make(chan callbackResult, 1),
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path, r.handleCallback)

	r.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		if serveErr := r.srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			r.deliver(callbackResult{err: fmt.Errorf("auth: callback server error: %w", serveErr)})
		}
	}()

	logger.Info("callback server listening", slog.String("redirect_uri", r.redirectURL))

	return r, nil
}

// RedirectURL is the redirect URI with the port actually bound.
func (r *Receiver) RedirectURL() string {
	return r.redirectURL
}

// handleCallback extracts the code or the authorization server's error.
func (r *Receiver) handleCallback(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		http.Error(w, "Authorization failed: "+errParam, http.StatusBadRequest)
		r.deliver(callbackResult{err: fmt.Errorf("%w: %s: %s", ErrAuthorizationDenied, errParam, q.Get("error_description"))})

		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		r.deliver(callbackResult{err: fmt.Errorf("auth: callback missing authorization code")})

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h1>Signed in</h1>"+
		"<p>You can close this window and return to the terminal.</p></body></html>")
	r.deliver(callbackResult{code: code})
}

// deliver keeps the first result; later callbacks are dropped.
func (r *Receiver) deliver(res callbackResult) {
	select {
	case r.resultCh <- res:
	default:
	}
}

// Wait blocks until the callback fires or ctx is done.
func (r *Receiver) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-r.resultCh:
		if res.err != nil {
			return "", res.err
		}

		return res.code, nil
	case <-ctx.Done():
		return "", fmt.Errorf("auth: waiting for browser sign-in: %w", ctx.Err())
	}
}

// Close shuts the server down, waiting up to shutdownTimeout for the
// response to the browser to be written.
func (r *Receiver) Close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.srv.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("callback server shutdown error", slog.String("error", err.Error()))
		return fmt.Errorf("auth: shutting down callback server: %w", err)
	}

	return nil
}

// Login runs the whole browser flow: bind the receiver, build the consent
// URL, hand it to openURL, wait for the redirect, and exchange the code.
// If openURL fails the URL is printed to stderr for the user to open.
func (m *Manager) Login(ctx context.Context, openURL func(string) error) (AuthState, error) {
	rcv, err := Listen(ctx, m.cfg.RedirectURL, m.logger)
	if err != nil {
		return AuthState{}, err
	}

	defer rcv.Close()

	authURL, err := m.buildAuthorizationURL(ctx, rcv.RedirectURL())
	if err != nil {
		return AuthState{}, err
	}

	launchBrowser(authURL, openURL, m.logger)

	code, err := rcv.Wait(ctx)
	if err != nil {
		m.abandon()
		return AuthState{}, err
	}

	m.logger.Info("received authorization code")

	return m.exchangeCode(ctx, code, rcv.RedirectURL())
}

// launchBrowser attempts to open the auth URL. If it fails, prints the URL
// to stderr as a fallback so the user can copy-paste it.
func launchBrowser(authURL string, openURL func(string) error, logger *slog.Logger) {
	logger.Info("opening browser for authorization")

	if openErr := openURL(authURL); openErr != nil {
		logger.Warn("failed to open browser, printing URL",
			slog.String("error", openErr.Error()),
		)

		fmt.Fprintf(os.Stderr, "Open this URL in your browser:\n%s\n", authURL)
	}
}
