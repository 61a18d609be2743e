package main

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tonimelisma/gopener/internal/auth"
	"github.com/tonimelisma/gopener/internal/config"
	"github.com/tonimelisma/gopener/internal/credstore"
	"github.com/tonimelisma/gopener/internal/driveapi"
	"github.com/tonimelisma/gopener/internal/upload"
)

// Session holds the clients built from the resolved config for one command.
// Drive serves metadata calls under a total request timeout; Transfer serves
// uploads and only bounds the wait for response headers.
type Session struct {
	Auth     *auth.Manager
	Drive    *driveapi.Client
	Transfer *driveapi.Client
	Uploader *upload.Uploader
}

// NewSession wires the credential store, auth manager, Drive clients and
// uploader from cc.Cfg. No network call is made.
func NewSession(cc *CLIContext) (*Session, error) {
	cfg := cc.Cfg

	store, err := newCredentialStore(cfg.Credentials)
	if err != nil {
		return nil, err
	}

	connect, err := cfg.Network.ConnectTimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("connect_timeout: %w", err)
	}

	data, err := cfg.Network.DataTimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("data_timeout: %w", err)
	}

	maxSize, err := cfg.Upload.MaxFileSizeBytes()
	if err != nil {
		return nil, fmt.Errorf("max_file_size: %w", err)
	}

	metaHTTP := newHTTPClient(connect, data, data)
	transferHTTP := newHTTPClient(connect, data, 0)

	mgr := auth.NewManager(auth.Config{
		ClientID:    cfg.OAuth.ClientID,
		AuthURL:     cfg.OAuth.AuthURL,
		TokenURL:    cfg.OAuth.TokenURL,
		RedirectURL: cfg.OAuth.RedirectURI,
	}, store, metaHTTP, cc.Logger)

	driveCfg := driveapi.Config{
		APIBaseURL: cfg.Drive.APIBaseURL,
		UploadURL:  cfg.Drive.UploadURL,
		UserAgent:  cfg.Network.UserAgent,
	}

	transfer := driveapi.NewClient(driveCfg, transferHTTP, mgr, cc.Logger)

	return &Session{
		Auth:     mgr,
		Drive:    driveapi.NewClient(driveCfg, metaHTTP, mgr, cc.Logger),
		Transfer: transfer,
		Uploader: upload.NewUploader(transfer, mgr, maxSize, cc.Logger),
	}, nil
}

func newCredentialStore(cfg config.CredentialsConfig) (credstore.Backend, error) {
	kind, err := credstore.ParseKind(cfg.Backend)
	if err != nil {
		return nil, err
	}

	return credstore.New(credstore.Options{
		Kind:     kind,
		Service:  cfg.Service,
		FilePath: cfg.FilePath,
	})
}

// newHTTPClient returns a client whose dials give up after connect and whose
// responses must start within header. total bounds the whole request; zero
// leaves it unbounded for uploads.
func newHTTPClient(connect, header, total time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connect}).DialContext
	transport.TLSHandshakeTimeout = connect
	transport.ResponseHeaderTimeout = header

	return &http.Client{Transport: transport, Timeout: total}
}
