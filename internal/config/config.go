// Package config handles chameleon configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Faultbox/chameleon/pkg/texture"
)

// Config holds all settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Cache   CacheConfig   `yaml:"cache"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds the asset roots.
type PathsConfig struct {
	BasePath string `yaml:"base_path"` // Installed game data
	HomePath string `yaml:"home_path"` // User data, overrides BasePath
}

// CacheConfig holds asset cache settings.
type CacheConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// PreviewConfig holds preview rendering settings.
type PreviewConfig struct {
	Size        int `yaml:"size"`
	JPEGQuality int `yaml:"jpeg_quality"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	base, home := defaultRoots()
	return &Config{
		Paths: PathsConfig{
			BasePath: base,
			HomePath: home,
		},
		Cache: CacheConfig{
			Path: filepath.Join(ConfigDir(), "shader_cache.bin"),
		},
		Preview: PreviewConfig{
			Size:        texture.DefaultPreviewSize,
			JPEGQuality: 95,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// defaultRoots returns the usual Unvanquished install and user paths.
func defaultRoots() (base, home string) {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("PROGRAMFILES"), "Unvanquished"),
			filepath.Join(os.Getenv("APPDATA"), "Daemon")
	case "darwin":
		h, _ := os.UserHomeDir()
		return "/Applications/Unvanquished.app/Contents/MacOS",
			filepath.Join(h, "Library", "Application Support", "Unvanquished")
	default: // Linux and others
		h, _ := os.UserHomeDir()
		return "/usr/share/unvanquished", filepath.Join(h, ".unvanquished")
	}
}
