// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for gopener. Values are resolved through
// a layered override chain (defaults -> config file -> environment -> CLI
// flags).
package config

import "time"

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	OAuth       OAuthConfig       `toml:"oauth"`
	Drive       DriveConfig       `toml:"drive"`
	Credentials CredentialsConfig `toml:"credentials"`
	Upload      UploadConfig      `toml:"upload"`
	Logging     LoggingConfig     `toml:"logging"`
	Network     NetworkConfig     `toml:"network"`
}

// OAuthConfig describes the authorization server. Empty values fall back to
// the built-in Google client and endpoints.
type OAuthConfig struct {
	ClientID    string `toml:"client_id"`
	AuthURL     string `toml:"auth_url"`
	TokenURL    string `toml:"token_url"`
	RedirectURI string `toml:"redirect_uri"`
}

// DriveConfig holds the Drive API endpoints.
type DriveConfig struct {
	APIBaseURL string `toml:"api_base_url"`
	UploadURL  string `toml:"upload_url"`
}

// CredentialsConfig selects where tokens and client secrets are kept.
type CredentialsConfig struct {
	Backend  string `toml:"backend"`
	Service  string `toml:"service"`
	FilePath string `toml:"file_path"`
}

// UploadConfig controls uploads.
type UploadConfig struct {
	DefaultFolderID string `toml:"default_folder_id"`
	MaxFileSize     string `toml:"max_file_size"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	ConnectTimeout string `toml:"connect_timeout"`
	DataTimeout    string `toml:"data_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// CLIOverrides holds values from CLI flags. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath string
}

// MaxFileSizeBytes returns the parsed upload limit. The value was checked by
// Validate, so a parse failure here means the Config was built by hand.
func (u UploadConfig) MaxFileSizeBytes() (int64, error) {
	return ParseSize(u.MaxFileSize)
}

// ConnectTimeoutDuration returns the parsed connect timeout.
func (n NetworkConfig) ConnectTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(n.ConnectTimeout)
}

// DataTimeoutDuration returns the parsed data timeout.
func (n NetworkConfig) DataTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(n.DataTimeout)
}
