package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Import.FlipUV {
		t.Error("expected flip_uv to be true by default")
	}
	if len(cfg.Textures.SearchDirs) != 0 {
		t.Errorf("expected no default search dirs, got %v", cfg.Textures.SearchDirs)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "modelforge.yaml")

	yamlContent := `
import:
  flip_uv: false

textures:
  search_dirs:
    - /data/textures
    - /data/shared

logging:
  level: debug
  log_file: import.log
`

	cfg := Default()
	if err := writeAndLoad(cfg, configPath, yamlContent); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Import.FlipUV {
		t.Error("expected flip_uv false from file")
	}
	if len(cfg.Textures.SearchDirs) != 2 || cfg.Textures.SearchDirs[0] != "/data/textures" {
		t.Errorf("unexpected search dirs: %v", cfg.Textures.SearchDirs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "import.log" {
		t.Errorf("expected log file import.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "modelforge.yaml")

	// Only override logging; import defaults must survive.
	yamlContent := `
logging:
  level: warn
`

	cfg := Default()
	if err := writeAndLoad(cfg, configPath, yamlContent); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !cfg.Import.FlipUV {
		t.Error("partial config should keep flip_uv default")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "modelforge.yaml")

	cfg := Default()
	cfg.Logging.Level = "debug"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("round trip lost logging level: got %s", loaded.Logging.Level)
	}
}

func writeAndLoad(cfg *Config, path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return err
	}
	return loadFromFile(cfg, path)
}
