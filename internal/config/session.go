package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Session remembers what the last commands worked on.
type Session struct {
	LastMap   string   `yaml:"last_map"`
	LastRules string   `yaml:"last_rules"`
	LastSets  []string `yaml:"last_sets"`
}

// SessionPath returns the default session file location.
func SessionPath() string {
	return filepath.Join(ConfigDir(), "session.yaml")
}

// LoadSession reads a session file. A missing file gives an empty session.
func LoadSession(path string) (*Session, error) {
	s := &Session{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading session %s", path)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "parsing session %s", path)
	}
	return s, nil
}

// SaveTo writes the session to path.
func (s *Session) SaveTo(path string) error {
	return writeYAML(path, s)
}
