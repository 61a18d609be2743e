// Signs in once and leaves an isolated config plus file-backed credentials in
// .testdata/ for the e2e suite.
//
// Usage: go run ./cmd/integration-bootstrap [--dir .testdata] [--client-id ID]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/browser"

	"github.com/tonimelisma/gopener/internal/auth"
	"github.com/tonimelisma/gopener/internal/config"
	"github.com/tonimelisma/gopener/internal/credstore"
)

func main() {
	dir := flag.String("dir", ".testdata", "directory for the test config and credentials")
	clientID := flag.String("client-id", "", "OAuth client id (default: built-in client)")
	flag.Parse()

	logger := slog.Default()

	cfgPath, cfg, err := writeTestConfig(*dir, *clientID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "writing test config: %v\n", err)
		os.Exit(1)
	}

	mgr := auth.NewManager(auth.Config{
		ClientID:    cfg.OAuth.ClientID,
		RedirectURL: cfg.OAuth.RedirectURI,
	}, credstore.NewFile(cfg.Credentials.FilePath), nil, logger)

	st, err := mgr.Login(context.Background(), browser.OpenURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Login successful. Token valid until %s.\n", st.Expiry().Format("15:04:05"))
	fmt.Printf("Config: %s\n", cfgPath)
}

// writeTestConfig writes a config that keeps credentials in a file next to it.
func writeTestConfig(dir, clientID string) (string, *config.Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", nil, err
	}

	cfg := config.DefaultConfig()
	cfg.OAuth.ClientID = clientID
	cfg.Credentials.Backend = string(credstore.KindFile)
	cfg.Credentials.FilePath = filepath.Join(abs, "credentials.json")
	cfg.Logging.LogLevel = "debug"

	if err := config.Validate(cfg); err != nil {
		return "", nil, err
	}

	path := filepath.Join(abs, "config.toml")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return "", nil, fmt.Errorf("encoding %s: %w", path, err)
	}

	return path, cfg, nil
}
