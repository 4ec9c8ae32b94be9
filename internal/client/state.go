package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"storefront-be/internal/session"
)

// LoadState fills storage from the JSON file at path. A missing file is an empty state.
func LoadState(path string, storage *session.Storage) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	storage.Load(values)
	return nil
}

// SaveState writes storage to path through a temp file so a crash never leaves half a file.
func SaveState(path string, storage *session.Storage) error {
	data, err := json.MarshalIndent(storage.Snapshot(), "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
