package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// SettingsFile is the per-workspace configuration file name.
	SettingsFile = "slotguard.toml"

	// DefaultPrefix is the namespace prefix used when nothing else is
	// configured.
	DefaultPrefix = "storage"
)

// Settings holds the per-workspace configuration. Values come from
// slotguard.toml at the workspace root, overridden by environment
// variables (a .env file next to the settings file is loaded first).
type Settings struct {
	Prefix   string `toml:"namespace_prefix"`
	Database string `toml:"database"`
	Debug    bool   `toml:"debug"`
}

// Load reads the settings for the workspace rooted at root.
func Load(root string) (*Settings, error) {
	_ = godotenv.Load(filepath.Join(root, ".env"))

	s := &Settings{Prefix: DefaultPrefix}
	path := filepath.Join(root, SettingsFile)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", SettingsFile, err)
		}
	}

	if v := os.Getenv("SLOTGUARD_NAMESPACE_PREFIX"); v != "" {
		s.Prefix = v
	}
	if v := os.Getenv("SLOTGUARD_DB"); v != "" {
		s.Database = v
	}
	return s, nil
}

// NamespacePrefix reports the namespace prefix for a document. The
// workspace currently carries a single prefix for all files.
func (s *Settings) NamespacePrefix(_ context.Context, _ string) (string, error) {
	return s.Prefix, nil
}
