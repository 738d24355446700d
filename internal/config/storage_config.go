package config

import "path/filepath"

type StorageConfig interface {
	GetStorePath() string
	GetStorePassphrase() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorePath returns the sqlite file backing secure storage.
func (Storage) GetStorePath() string {
	if p := GetEnv("EVENTS_STORE_PATH", ""); p != "" {
		return p
	}
	return filepath.Join(EnvVars{}.GetDataFolder(), "secure.db")
}

// GetStorePassphrase returns the passphrase the store key is derived from.
// Values written under one passphrase cannot be read under another.
func (Storage) GetStorePassphrase() string {
	return GetEnv("EVENTS_STORE_PASSPHRASE", "")
}
