package gcp

import (
	"errors"
	"testing"
)

func TestStorageConfigFromEnvDefaultsToGCS(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")

	cfg, err := StorageConfigFromEnv()
	if err != nil {
		t.Fatalf("StorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != StorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", StorageModeGCS, cfg.Mode)
	}
}

func TestStorageConfigFromEnvEmulatorHostImpliesEmulator(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")

	cfg, err := StorageConfigFromEnv()
	if err != nil {
		t.Fatalf("StorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != StorageModeEmulator {
		t.Fatalf("mode: want=%q got=%q", StorageModeEmulator, cfg.Mode)
	}
}

func TestStorageConfigFromEnvRejectsBadInput(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "s3")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	_, err := StorageConfigFromEnv()
	var cfgErr *StorageConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want StorageConfigError, got %v", err)
	}

	t.Setenv("OBJECT_STORAGE_MODE", "gcs_emulator")
	t.Setenv("STORAGE_EMULATOR_HOST", "fake-gcs")
	if _, err := StorageConfigFromEnv(); !errors.As(err, &cfgErr) {
		t.Fatalf("want StorageConfigError for relative host, got %v", err)
	}
}
