package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default LFS config
	if cfg.LFS.ToolPath != "git-lfs" {
		t.Errorf("LFS.ToolPath = %q, want %q", cfg.LFS.ToolPath, "git-lfs")
	}
	if cfg.LFS.TimeoutMs != 30000 {
		t.Errorf("LFS.TimeoutMs = %d, want 30000", cfg.LFS.TimeoutMs)
	}

	// Verify default refresh config
	if !cfg.Refresh.Auto {
		t.Error("Refresh.Auto should be true by default")
	}
	if cfg.Refresh.IntervalSeconds != 30 {
		t.Errorf("Refresh.IntervalSeconds = %d, want 30", cfg.Refresh.IntervalSeconds)
	}

	// Verify default sort config
	if cfg.Sort.Key != "path" {
		t.Errorf("Sort.Key = %q, want %q", cfg.Sort.Key, "path")
	}
	if !cfg.Sort.Ascending {
		t.Error("Sort.Ascending should be true by default")
	}
	if cfg.Sort.PathStyle != "" {
		t.Errorf("Sort.PathStyle = %q, want empty (host OS)", cfg.Sort.PathStyle)
	}

	// Verify default TUI config
	if cfg.TUI.ShowGUIDs {
		t.Error("TUI.ShowGUIDs should be false by default")
	}

	// Verify default logging config
	if cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLFSConfig_Timeout(t *testing.T) {
	tests := []struct {
		name      string
		timeoutMs int
		want      time.Duration
	}{
		{"default", 30000, 30 * time.Second},
		{"one second", 1000, time.Second},
		{"sub-second", 250, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LFSConfig{TimeoutMs: tt.timeoutMs}
			if got := cfg.Timeout(); got != tt.want {
				t.Errorf("Timeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefreshConfig_Interval(t *testing.T) {
	cfg := RefreshConfig{IntervalSeconds: 30}
	if got := cfg.Interval(); got != 30*time.Second {
		t.Errorf("Interval() = %v, want 30s", got)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/locksmith"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "locksmith")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

	_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/locksmith/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestConfig_StateDir(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.StateDir = "/srv/locksmith"
		if got := cfg.StateDir(); got != "/srv/locksmith" {
			t.Errorf("StateDir() = %q, want %q", got, "/srv/locksmith")
		}
	})

	t.Run("XDG_STATE_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_STATE_HOME")
		defer func() { _ = os.Setenv("XDG_STATE_HOME", original) }()

		_ = os.Setenv("XDG_STATE_HOME", "/custom/state")
		cfg := Default()
		expected := "/custom/state/locksmith"
		if got := cfg.StateDir(); got != expected {
			t.Errorf("StateDir() = %q, want %q", got, expected)
		}
	})

	t.Run("home fallback", func(t *testing.T) {
		original := os.Getenv("XDG_STATE_HOME")
		defer func() { _ = os.Setenv("XDG_STATE_HOME", original) }()

		_ = os.Setenv("XDG_STATE_HOME", "")
		cfg := Default()
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".local", "state", "locksmith")
		if got := cfg.StateDir(); got != expected {
			t.Errorf("StateDir() = %q, want %q", got, expected)
		}
	})
}

func TestConfig_LogDir(t *testing.T) {
	cfg := Default()
	cfg.Logging.Dir = "/var/log/locksmith"
	if got := cfg.LogDir(); got != "/var/log/locksmith" {
		t.Errorf("LogDir() = %q, want override", got)
	}

	cfg.Logging.Dir = ""
	if got := cfg.LogDir(); got != cfg.StateDir() {
		t.Errorf("LogDir() = %q, want StateDir %q", got, cfg.StateDir())
	}
}

func TestGet(t *testing.T) {
	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	// Get() should return defaults when no config file exists
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	if cfg.LFS.ToolPath != "git-lfs" {
		t.Errorf("Get().LFS.ToolPath = %q, want %q", cfg.LFS.ToolPath, "git-lfs")
	}
	if cfg.Refresh.IntervalSeconds != 30 {
		t.Errorf("Get().Refresh.IntervalSeconds = %d, want 30", cfg.Refresh.IntervalSeconds)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tilde only", "~", home},
		{"tilde slash", "~/state", filepath.Join(home, "state")},
		{"absolute untouched", "/srv/x", "/srv/x"},
		{"relative untouched", "state/dir", "state/dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandHome(tt.in); got != tt.want {
				t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
