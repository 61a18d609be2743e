package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FilePerms restricts the credentials file to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the credentials directory.
const DirPerms = 0o700

// File stores secrets in a single owner-only JSON file. It is the fallback for
// hosts without a keychain (headless Linux, containers). Every call re-reads
// the file; writes go to a temp file that is fsynced and renamed over the
// original, so a crash never leaves a partially written file behind.
type File struct {
	path string

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewFile returns a file backend rooted at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Store implements Backend.
func (f *File) Store(key Key, value string) error {
	if err := checkKey("store", key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return f.wrap("store", key, err)
	}

	entries[string(key)] = value

	if err := f.save(entries); err != nil {
		return f.wrap("store", key, err)
	}

	return nil
}

// Retrieve implements Backend.
func (f *File) Retrieve(key Key) (string, bool, error) {
	if err := checkKey("retrieve", key); err != nil {
		return "", false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", false, f.wrap("retrieve", key, err)
	}

	value, ok := entries[string(key)]

	return value, ok, nil
}

// Delete implements Backend.
func (f *File) Delete(key Key) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return f.wrap("delete", key, err)
	}

	if _, ok := entries[string(key)]; !ok {
		return nil
	}

	delete(entries, string(key))

	if err := f.save(entries); err != nil {
		return f.wrap("delete", key, err)
	}

	return nil
}

// errCorrupt marks a credentials file that exists but does not decode.
var errCorrupt = errors.New("corrupt credentials file")

func (f *File) wrap(op string, key Key, err error) error {
	if errors.Is(err, errCorrupt) {
		return &StoreError{Op: op, Key: key, Kind: ErrSerialization, Err: err}
	}

	return unavailable(op, key, err)
}

// load reads the entry map. A missing file is an empty map.
func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errCorrupt, f.path, err)
	}

	return entries, nil
}

// save writes the entry map atomically (write-to-temp + rename) with 0600
// permissions. Never logs values.
func (f *File) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding: %w", errCorrupt, err)
	}

	dir := filepath.Dir(f.path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("creating directory %s: %w", dir, mkErr)
	}

	// Same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("renaming: %w", err)
	}

	success = true

	return nil
}
