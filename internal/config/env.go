package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig            = "GOPENER_CONFIG"
	EnvClientID          = "GOPENER_CLIENT_ID"
	EnvCredentialBackend = "GOPENER_CREDENTIAL_BACKEND"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath        string // GOPENER_CONFIG: override config file path
	ClientID          string // GOPENER_CLIENT_ID: OAuth client id
	CredentialBackend string // GOPENER_CREDENTIAL_BACKEND: keyring or file
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:        os.Getenv(EnvConfig),
		ClientID:          os.Getenv(EnvClientID),
		CredentialBackend: os.Getenv(EnvCredentialBackend),
	}
}
