package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SIXSIGMA_STORAGE_DRIVER=bolt\nSIXSIGMA_STORAGE_PATH="+filepath.Join(dir, "portal.db")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIXSIGMA_STORAGE_DRIVER", "")
	os.Unsetenv("SIXSIGMA_STORAGE_DRIVER")
	t.Setenv("SIXSIGMA_STORAGE_PATH", "")
	os.Unsetenv("SIXSIGMA_STORAGE_PATH")

	loaded, err := LoadEnvFile(envPath)
	if err != nil || !loaded {
		t.Fatalf("LoadEnvFile() = %v, %v", loaded, err)
	}

	conf, err := LoadConfiguration(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Storage.Driver != "bolt" {
		t.Errorf("Driver = %q, expected bolt from the env file", conf.Storage.Driver)
	}
	if conf.Storage.Path != filepath.Join(dir, "portal.db") {
		t.Errorf("Path = %q", conf.Storage.Path)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	loaded, err := LoadEnvFile(filepath.Join(t.TempDir(), ".env"))
	if err != nil || loaded {
		t.Errorf("LoadEnvFile() = %v, %v; expected a silent no-op", loaded, err)
	}

	loaded, err = LoadEnvFile("")
	if err != nil || loaded {
		t.Errorf("LoadEnvFile(\"\") = %v, %v", loaded, err)
	}
}
