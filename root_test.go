package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/gopener/internal/auth"
	"github.com/tonimelisma/gopener/internal/config"
	"github.com/tonimelisma/gopener/internal/credstore"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their defaults. Tests drive flags
// through cmd.SetArgs() + cmd.Execute().

// testEnv is a config file whose credentials live in a temp file and whose
// Drive endpoints point at a test server.
type testEnv struct {
	configPath string
	store      *credstore.File
}

func newTestEnv(t *testing.T, driveURL string) testEnv {
	t.Helper()

	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvClientID, "")
	t.Setenv(config.EnvCredentialBackend, "")

	dir := t.TempDir()
	credPath := filepath.Join(dir, "credentials.json")

	if driveURL == "" {
		driveURL = "http://127.0.0.1:1"
	}

	content := `
[credentials]
backend = "file"
file_path = "` + credPath + `"

[drive]
api_base_url = "` + driveURL + `/drive/v3"
upload_url = "` + driveURL + `/upload/drive/v3/files"

[logging]
log_level = "error"
`

	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	return testEnv{configPath: cfgPath, store: credstore.NewFile(credPath)}
}

// storeFreshToken saves a token valid for an hour.
func (e testEnv) storeFreshToken(t *testing.T, access string) {
	t.Helper()

	rec := auth.TokenRecord{AccessToken: access, ExpiresAt: time.Now().Add(time.Hour).Unix()}
	require.NoError(t, credstore.StoreJSON(e.store, credstore.KeyToken, rec))
}

// run executes the root command with args and returns what it wrote to stdout.
func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	var runErr error

	out := captureStdout(t, func() {
		runErr = cmd.ExecuteContext(context.Background())
	})

	return out, runErr
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	old := os.Stdout
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	fn()

	os.Stdout = old
	require.NoError(t, w.Close())

	return string(<-done)
}

func TestBuildLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		flags   CLIFlags
		enabled slog.Level
		below   slog.Level
	}{
		{"default info", "info", CLIFlags{}, slog.LevelInfo, slog.LevelDebug},
		{"config debug", "debug", CLIFlags{}, slog.LevelDebug, slog.LevelDebug - 1},
		{"config warn", "warn", CLIFlags{}, slog.LevelWarn, slog.LevelInfo},
		{"verbose overrides config", "error", CLIFlags{Verbose: true}, slog.LevelDebug, slog.LevelDebug - 1},
		{"quiet overrides config", "debug", CLIFlags{Quiet: true}, slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Logging.LogLevel = tt.level

			h := buildLogger(cfg, tt.flags).Handler()
			assert.True(t, h.Enabled(context.Background(), tt.enabled))
			assert.False(t, h.Enabled(context.Background(), tt.below))
		})
	}
}

func TestBuildLogger_NilConfig(t *testing.T) {
	h := buildLogger(nil, CLIFlags{}).Handler()
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"login", "logout", "status", "client", "upload", "folders"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "json", "verbose", "quiet"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %q", name)
	}
}

func TestPreRun_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, os.WriteFile(env.configPath, []byte("[logging]\nlog_level = \"loud\"\n"), 0o600))

	_, err := env.run(t, "status", "--offline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
	assert.Contains(t, err.Error(), "log_level")
}

func TestPreRun_AttachesCLIContext(t *testing.T) {
	env := newTestEnv(t, "")

	var got *CLIContext

	cmd := newRootCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "logout" {
			sub.RunE = func(c *cobra.Command, _ []string) error {
				got = mustCLIContext(c.Context())
				return nil
			}
		}
	}

	cmd.SetArgs([]string{"--config", env.configPath, "--json", "-v", "logout"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	require.NotNil(t, got)
	assert.Equal(t, CLIFlags{ConfigPath: env.configPath, JSON: true, Verbose: true}, got.Flags)
	assert.Equal(t, env.configPath, got.CfgPath)
	assert.Equal(t, "file", got.Cfg.Credentials.Backend)
}

func TestRootCmd_VerboseAndQuietConflict(t *testing.T) {
	env := newTestEnv(t, "")

	_, err := env.run(t, "-v", "-q", "status", "--offline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")
}

func TestMustCLIContext_Panics(t *testing.T) {
	assert.Panics(t, func() { mustCLIContext(context.Background()) })
}

// newDriveServer serves handler under a test server and returns its URL.
func newDriveServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv.URL
}
