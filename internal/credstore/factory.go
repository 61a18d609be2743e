package credstore

import (
	"fmt"
	"strings"
)

// Kind selects a backend implementation.
type Kind string

const (
	// KindKeyring stores secrets in the OS keychain.
	KindKeyring Kind = "keyring"
	// KindFile stores secrets in an owner-only JSON file.
	KindFile Kind = "file"
)

// ParseKind parses a backend name. Unknown names are an error rather than a
// silent fallback, since falling back from the keychain to a plain file
// would change where secrets live.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindKeyring, KindFile:
		return k, nil
	case "":
		return KindKeyring, nil
	default:
		return "", fmt.Errorf("credstore: unknown backend %q (want %q or %q)", s, KindKeyring, KindFile)
	}
}

// Options configures New.
type Options struct {
	Kind     Kind
	Service  string // keychain service name (KindKeyring)
	FilePath string // credentials file (KindFile)
}

// New creates the backend selected by opts.
func New(opts Options) (Backend, error) {
	switch opts.Kind {
	case KindKeyring, "":
		return NewKeyring(opts.Service), nil
	case KindFile:
		if opts.FilePath == "" {
			return nil, fmt.Errorf("credstore: file backend requires a path")
		}

		return NewFile(opts.FilePath), nil
	default:
		return nil, fmt.Errorf("credstore: unknown backend %q", opts.Kind)
	}
}
