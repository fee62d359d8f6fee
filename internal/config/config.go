package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dori/doable/internal/model"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds application configuration
type Config struct {
	DataDir         string     `mapstructure:"data_dir" yaml:"data_dir"`
	DBPath          string     `mapstructure:"db_path" yaml:"db_path,omitempty"`
	Theme           string     `mapstructure:"theme" yaml:"theme"`
	Locale          string     `mapstructure:"locale" yaml:"locale"`
	DefaultPriority string     `mapstructure:"default_priority" yaml:"default_priority"`
	Notifications   bool       `mapstructure:"notifications" yaml:"notifications"`
	Debug           bool       `mapstructure:"debug" yaml:"debug"`
	View            ViewConfig `mapstructure:"view" yaml:"view"`
}

// ViewConfig holds the view settings applied at startup
type ViewConfig struct {
	Filter        string `mapstructure:"filter" yaml:"filter"`
	Sort          string `mapstructure:"sort" yaml:"sort"`
	ShowCompleted bool   `mapstructure:"show_completed" yaml:"show_completed"`
}

// EnvPrefix is prepended to environment overrides, e.g. DOABLE_THEME
const EnvPrefix = "DOABLE"

// Load reads path (or the default config path when empty) over the defaults,
// then applies DOABLE_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.DBPath = expandHome(cfg.DBPath)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "doable.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("db_path", cfg.DBPath)
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("locale", cfg.Locale)
	v.SetDefault("default_priority", cfg.DefaultPriority)
	v.SetDefault("notifications", cfg.Notifications)
	v.SetDefault("debug", cfg.Debug)
	v.SetDefault("view.filter", cfg.View.Filter)
	v.SetDefault("view.sort", cfg.View.Sort)
	v.SetDefault("view.show_completed", cfg.View.ShowCompleted)
}

// ThemeNames lists the themes the TUI ships with
var ThemeNames = []string{"nord", "dracula"}

// Validate checks enumerated values
func (c *Config) Validate() error {
	if !slices.Contains(ThemeNames, c.Theme) {
		return fmt.Errorf("config theme: unknown theme %q (want one of %s)", c.Theme, strings.Join(ThemeNames, ", "))
	}
	if _, err := model.ParsePriority(c.DefaultPriority); err != nil {
		return fmt.Errorf("config default_priority: %w", err)
	}
	if _, err := model.ParseStatusFilter(c.View.Filter); err != nil {
		return fmt.Errorf("config view.filter: %w", err)
	}
	if _, err := model.ParseSortMode(c.View.Sort); err != nil {
		return fmt.Errorf("config view.sort: %w", err)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config locale %q: %w", c.Locale, err)
	}
	return nil
}

// ViewSettings converts the view section into startup settings
func (c *Config) ViewSettings() model.ViewSettings {
	vs := model.DefaultViewSettings()
	if f, err := model.ParseStatusFilter(c.View.Filter); err == nil {
		vs.StatusFilter = f
	}
	if m, err := model.ParseSortMode(c.View.Sort); err == nil {
		vs.SortMode = m
	}
	vs.ShowCompleted = c.View.ShowCompleted
	return vs
}

// Priority returns the configured default priority for new tasks
func (c *Config) Priority() model.Priority {
	p, err := model.ParsePriority(c.DefaultPriority)
	if err != nil {
		return model.PriorityMedium
	}
	return p
}

// Language returns the collation language for alphabetical sorting
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// LockPath returns the single-instance lock file path
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "doable.lock")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
