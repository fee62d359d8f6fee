package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:         DefaultDataDir(),
		Theme:           "nord",
		Locale:          "en",
		DefaultPriority: "medium",
		Notifications:   true,
		View: ViewConfig{
			Filter:        "all",
			Sort:          "created",
			ShowCompleted: true,
		},
	}
}

// DefaultDataDir returns ~/.local/share/doable, where the database, lock and
// debug log live
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".doable"
	}
	return filepath.Join(home, ".local", "share", "doable")
}

// DefaultPath returns $XDG_CONFIG_HOME/doable/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".doable", "config.yaml")
	}
	return filepath.Join(dir, "doable", "config.yaml")
}

const header = `# doable configuration
# Every key can also be set through the environment, e.g. DOABLE_THEME=dracula
# or DOABLE_VIEW_SORT=priority.
`

// WriteDefault writes the default configuration to path. An existing file is
// left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, append([]byte(header), data...), 0644)
}
