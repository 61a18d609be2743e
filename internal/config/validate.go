package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validation range constants.
const (
	minConnectTimeout    = 1 * time.Second
	minDataTimeout       = 5 * time.Second
	googleClientIDSuffix = ".apps.googleusercontent.com"
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateOAuth(&cfg.OAuth)...)
	errs = append(errs, validateDrive(&cfg.Drive)...)
	errs = append(errs, validateCredentials(&cfg.Credentials)...)
	errs = append(errs, validateUpload(&cfg.Upload)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)

	return errors.Join(errs...)
}

func validateOAuth(o *OAuthConfig) []error {
	var errs []error

	if o.ClientID != "" && (!strings.HasSuffix(o.ClientID, googleClientIDSuffix) || o.ClientID == googleClientIDSuffix) {
		errs = append(errs, fmt.Errorf("client_id: must end with %q, got %q", googleClientIDSuffix, o.ClientID))
	}

	if o.AuthURL != "" {
		errs = append(errs, validateHTTPURL("auth_url", o.AuthURL)...)
	}

	if o.TokenURL != "" {
		errs = append(errs, validateHTTPURL("token_url", o.TokenURL)...)
	}

	errs = append(errs, validateRedirectURI(o.RedirectURI)...)

	return errs
}

// validateRedirectURI requires a loopback-style http URL with an explicit
// port, since the login command listens on that port.
func validateRedirectURI(s string) []error {
	u, err := url.Parse(s)
	if err != nil {
		return []error{fmt.Errorf("redirect_uri: %w", err)}
	}

	if u.Scheme != "http" {
		return []error{fmt.Errorf("redirect_uri: scheme must be http, got %q", s)}
	}

	if u.Port() == "" {
		return []error{fmt.Errorf("redirect_uri: must include a port, got %q", s)}
	}

	return nil
}

func validateDrive(d *DriveConfig) []error {
	var errs []error

	errs = append(errs, validateHTTPURL("api_base_url", d.APIBaseURL)...)
	errs = append(errs, validateHTTPURL("upload_url", d.UploadURL)...)

	return errs
}

func validateHTTPURL(field, s string) []error {
	u, err := url.Parse(s)
	if err != nil {
		return []error{fmt.Errorf("%s: %w", field, err)}
	}

	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return []error{fmt.Errorf("%s: must be an absolute http(s) URL, got %q", field, s)}
	}

	return nil
}

var validCredentialBackends = map[string]bool{
	"keyring": true,
	"file":    true,
}

func validateCredentials(c *CredentialsConfig) []error {
	var errs []error

	if !validCredentialBackends[c.Backend] {
		errs = append(errs, fmt.Errorf("backend: must be one of keyring, file; got %q", c.Backend))
	}

	if c.Service == "" {
		errs = append(errs, errors.New("service: must not be empty"))
	}

	if c.Backend == "file" && c.FilePath == "" {
		errs = append(errs, errors.New("file_path: required when backend is \"file\""))
	}

	return errs
}

func validateUpload(u *UploadConfig) []error {
	n, err := ParseSize(u.MaxFileSize)
	if err != nil {
		return []error{fmt.Errorf("max_file_size: %w", err)}
	}

	if n <= 0 {
		return []error{fmt.Errorf("max_file_size: must be positive, got %q", u.MaxFileSize)}
	}

	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogging(l *LoggingConfig) []error {
	if !validLogLevels[l.LogLevel] {
		return []error{fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", l.LogLevel)}
	}

	return nil
}

func validateNetwork(n *NetworkConfig) []error {
	var errs []error

	errs = append(errs, validateDurationMin("connect_timeout", n.ConnectTimeout, minConnectTimeout)...)
	errs = append(errs, validateDurationMin("data_timeout", n.DataTimeout, minDataTimeout)...)

	return errs
}

func validateDurationMin(field, value string, minimum time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < minimum {
		return []error{fmt.Errorf("%s: must be >= %s, got %s", field, minimum, d)}
	}

	return nil
}
