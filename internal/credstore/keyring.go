package credstore

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keychain service name entries are filed under.
const DefaultService = "gopener"

// Keyring stores secrets in the operating system keychain: Keychain on macOS,
// the Secret Service (GNOME Keyring, KWallet) on Linux, and Credential Manager
// on Windows.
type Keyring struct {
	service string
}

// NewKeyring returns a keychain backend filing entries under service.
// An empty service uses DefaultService.
func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultService
	}

	return &Keyring{service: service}
}

// Store implements Backend.
func (k *Keyring) Store(key Key, value string) error {
	if err := checkKey("store", key); err != nil {
		return err
	}

	if err := keyring.Set(k.service, string(key), value); err != nil {
		return unavailable("store", key, err)
	}

	return nil
}

// Retrieve implements Backend.
func (k *Keyring) Retrieve(key Key) (string, bool, error) {
	if err := checkKey("retrieve", key); err != nil {
		return "", false, err
	}

	value, err := keyring.Get(k.service, string(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}

	if err != nil {
		return "", false, unavailable("retrieve", key, err)
	}

	return value, true, nil
}

// Delete implements Backend.
func (k *Keyring) Delete(key Key) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}

	err := keyring.Delete(k.service, string(key))
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}

	return unavailable("delete", key, err)
}
