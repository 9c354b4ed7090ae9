// Package storage persists the small key/value blobs the client keeps between
// runs, chiefly the signed-in user under KeyUserData.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"taskmate/internal/config"
	"taskmate/internal/domain"
)

// KeyUserData holds the JSON encoded domain.User of the signed-in account.
const KeyUserData = "userData"

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string-keyed blob store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Close() error
}

// Open builds the backend selected by cfg.Storage.
func Open(cfg config.Config) (Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageSQLite:
		return OpenSQLiteStore(filepath.Join(cfg.DataDir, "taskmate.db"))
	case config.StorageFile, "":
		return NewFileStore(filepath.Join(cfg.DataDir, "storage.json")), nil
	}
	return nil, fmt.Errorf("storage: unknown backend %q", cfg.Storage)
}

// LoadUser decodes the stored user. ok is false when nobody is signed in.
func LoadUser(s Store) (domain.User, bool, error) {
	raw, err := s.Get(KeyUserData)
	if errors.Is(err, ErrNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, false, fmt.Errorf("decode %s: %w", KeyUserData, err)
	}
	return u, true, nil
}

// SaveUser replaces the stored user.
func SaveUser(s Store, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Set(KeyUserData, raw)
}
