package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	path, err := defaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", appName, configFile); path != want {
		t.Errorf("defaultConfigPath() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	path, _ = defaultConfigPath()
	if want := filepath.Join("/etc/xdg", appName, configFile); path != want {
		t.Errorf("defaultConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	c := New(os.Stderr, LogInfo)

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() without a file: %v", err)
	}
	if cfg.Canvas.Width != 800 {
		t.Errorf("default width = %g", cfg.Canvas.Width)
	}

	if err := os.MkdirAll(filepath.Join(dir, appName), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, appName, configFile), []byte("[canvas]\nwidth = 1000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = c.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.Width != 1000 {
		t.Errorf("width from default config file = %g", cfg.Canvas.Width)
	}

	c.configPath = filepath.Join(dir, "missing.toml")
	if _, err := c.loadConfig(); err == nil {
		t.Error("an explicit missing config file should fail")
	}
}
