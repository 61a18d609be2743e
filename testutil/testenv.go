// Package testutil provides shared environment helpers for the e2e suite.
// It depends only on the standard library so that tests outside internal/
// can use it.
package testutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// A missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// RequireParentFolder returns the Drive folder ID named by envVar, the only
// place live tests may create anything. Crashes when it is unset so a run
// can never write into the root of a real account.
func RequireParentFolder(envVar string) string {
	id := strings.TrimSpace(os.Getenv(envVar))
	if id == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", envVar)
		fmt.Fprintln(os.Stderr, "Create a scratch folder in the test account and put its ID in .env.")
		fmt.Fprintf(os.Stderr, "Example: %s=1AbCdEfGhIjKlMnOp\n", envVar)
		os.Exit(1)
	}

	return id
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// FindTestCredentialDir locates .testdata/ under the module root and checks
// that the bootstrap left a config and a credentials file there. Crashes
// with instructions otherwise.
func FindTestCredentialDir(moduleRoot string) string {
	dir := filepath.Join(moduleRoot, ".testdata")

	for _, name := range []string{"config.toml", "credentials.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %s not found in %s\n", name, dir)
			fmt.Fprintln(os.Stderr, "Run: go run ./cmd/integration-bootstrap")
			os.Exit(1)
		}
	}

	return dir
}

// CopyFile copies a file from src to dst with the given permissions.
// Crashes on failure because tests cannot proceed without the file.
func CopyFile(src, dst string, perm os.FileMode) {
	data, err := os.ReadFile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: cannot read %s: %v\n", src, err)
		os.Exit(1)
	}

	if writeErr := os.WriteFile(dst, data, perm); writeErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: writing %s: %v\n", dst, writeErr)
		os.Exit(1)
	}
}
