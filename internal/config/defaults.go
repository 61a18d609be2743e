package config

import "path/filepath"

// Default values for configuration options. OAuth client and endpoint
// defaults live in the auth package; empty values here select them.
const (
	defaultRedirectURI       = "http://localhost:8085"
	defaultAPIBaseURL        = "https://www.googleapis.com/drive/v3"
	defaultUploadURL         = "https://www.googleapis.com/upload/drive/v3/files"
	defaultCredentialBackend = "keyring"
	defaultMaxFileSize       = "100MB"
	defaultLogLevel          = "info"
	defaultConnectTimeout    = "10s"
	defaultDataTimeout       = "60s"
	credentialsFileName      = "credentials.json"
)

// DefaultConfig returns a Config populated with all default values.
// Used as the base layer before the config file is decoded on top.
func DefaultConfig() *Config {
	return &Config{
		OAuth: OAuthConfig{
			RedirectURI: defaultRedirectURI,
		},
		Drive: DriveConfig{
			APIBaseURL: defaultAPIBaseURL,
			UploadURL:  defaultUploadURL,
		},
		Credentials: CredentialsConfig{
			Backend:  defaultCredentialBackend,
			Service:  appName,
			FilePath: DefaultCredentialsPath(),
		},
		Upload: UploadConfig{
			MaxFileSize: defaultMaxFileSize,
		},
		Logging: LoggingConfig{
			LogLevel: defaultLogLevel,
		},
		Network: NetworkConfig{
			ConnectTimeout: defaultConnectTimeout,
			DataTimeout:    defaultDataTimeout,
		},
	}
}

// DefaultCredentialsPath returns the file backend's default location.
func DefaultCredentialsPath() string {
	dir := DefaultDataDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, credentialsFileName)
}
