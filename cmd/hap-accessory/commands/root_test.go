package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/backkem/hap/pkg/accessory"
)

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() { configPath, storagePath = "", "" })

	t.Run("defaults", func(t *testing.T) {
		configPath, storagePath = "", ""
		cfg, err := loadConfig()
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.SetupCode != accessory.DefaultSetupCode {
			t.Errorf("SetupCode = %q, want %q", cfg.SetupCode, accessory.DefaultSetupCode)
		}
		if cfg.StoragePath != "" {
			t.Errorf("StoragePath = %q, want empty", cfg.StoragePath)
		}
	})

	t.Run("storage flag overrides file", func(t *testing.T) {
		dir := t.TempDir()
		configPath = filepath.Join(dir, "accessory.toml")
		content := "name = \"Desk Lamp\"\nstorage_path = \"/tmp/from-file.db\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		storagePath = filepath.Join(dir, "flag.db")

		cfg, err := loadConfig()
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Name != "Desk Lamp" {
			t.Errorf("Name = %q, want Desk Lamp", cfg.Name)
		}
		if cfg.StoragePath != storagePath {
			t.Errorf("StoragePath = %q, want %q", cfg.StoragePath, storagePath)
		}
	})
}
