package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Path returns the config file in the user's config directory.
func Path() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Save writes the config to the user's config directory, where Load
// finds it when no ./chameleon.yaml exists.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	return writeYAML(path, c)
}

func writeYAML(path string, v interface{}) error {
	// Create parent directory if needed
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding yaml")
	}

	return os.WriteFile(path, data, 0644)
}
