package gcp

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type StorageMode string

const (
	StorageModeGCS      StorageMode = "gcs"
	StorageModeEmulator StorageMode = "gcs_emulator"
)

type StorageConfig struct {
	Mode         StorageMode
	EmulatorHost string
}

// StorageConfigError reports an invalid OBJECT_STORAGE_MODE or emulator host.
type StorageConfigError struct {
	Mode         string
	EmulatorHost string
	Reason       string
}

func (e *StorageConfigError) Error() string {
	if e.EmulatorHost != "" {
		return fmt.Sprintf("object storage %s: %s (STORAGE_EMULATOR_HOST=%q)", e.Mode, e.Reason, e.EmulatorHost)
	}
	return fmt.Sprintf("object storage mode %q: %s", e.Mode, e.Reason)
}

// StorageConfigFromEnv resolves OBJECT_STORAGE_MODE and STORAGE_EMULATOR_HOST.
// An empty mode with an emulator host set selects the emulator.
func StorageConfigFromEnv() (StorageConfig, error) {
	cfg := StorageConfig{EmulatorHost: strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))}
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE")))
	switch StorageMode(raw) {
	case "":
		cfg.Mode = StorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeEmulator
		}
	case StorageModeGCS, StorageModeEmulator:
		cfg.Mode = StorageMode(raw)
	default:
		return cfg, &StorageConfigError{Mode: raw, Reason: "expected gcs or gcs_emulator"}
	}
	return cfg, cfg.Validate()
}

func (cfg StorageConfig) Validate() error {
	switch cfg.Mode {
	case StorageModeGCS:
		return nil
	case StorageModeEmulator:
	default:
		return &StorageConfigError{Mode: string(cfg.Mode), Reason: "expected gcs or gcs_emulator"}
	}
	if cfg.EmulatorHost == "" {
		return &StorageConfigError{Mode: string(cfg.Mode), Reason: "STORAGE_EMULATOR_HOST is required"}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &StorageConfigError{Mode: string(cfg.Mode), EmulatorHost: cfg.EmulatorHost, Reason: "expected an absolute URL like http://fake-gcs:4443"}
	}
	return nil
}

// NewStorageClient opens a read-only Cloud Storage client for cfg.
func NewStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == StorageModeEmulator {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(cfg.EmulatorHost, "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadOnly))
	return storage.NewClient(ctx, opts...)
}
