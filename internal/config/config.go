package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the local mock server that serves one random book per request.
const DefaultAPIURL = "http://localhost:4000/random-book-delayed"

// Config is the persistent application configuration
type Config struct {
	// Directory for logs, the event log and the journal
	DataDir string `yaml:"data_dir"`

	API     APIConfig     `yaml:"api"`
	Journal JournalConfig `yaml:"journal"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig controls the "add random via API" fetch.
type APIConfig struct {
	URL string `yaml:"url"`
	// Zero means no deadline; the fetch settles whenever the server answers.
	Timeout time.Duration `yaml:"timeout"`
	// Zero or less means unlimited.
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// JournalConfig controls the action journal.
type JournalConfig struct {
	Enabled bool `yaml:"enabled"`
	// Relative paths resolve against DataDir. ":memory:" keeps it in RAM.
	Path string `yaml:"path"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	ToastDuration time.Duration `yaml:"toast_duration"`
	StartInList   bool          `yaml:"start_in_list"`
}

// LogConfig holds process log settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".booklib"),
		API: APIConfig{
			URL: DefaultAPIURL,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "journal.db",
		},
		UI: UIConfig{
			ToastDuration: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".booklib", "config.yaml")
}

// Load reads config from ConfigPath, or returns defaults
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults.
// Keys absent from the file keep their default values. Environment
// overrides are applied last in both cases.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.AutoPopulateFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AutoPopulateFromEnv applies BOOKLIB_* environment overrides
func (c *Config) AutoPopulateFromEnv() {
	if v := os.Getenv("BOOKLIB_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("BOOKLIB_JOURNAL"); v != "" {
		if v == "off" {
			c.Journal.Enabled = false
		} else {
			c.Journal.Enabled = true
			c.Journal.Path = v
		}
	}
	if v := os.Getenv("BOOKLIB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BOOKLIB_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return errors.New("config: api.url must not be empty")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("config: api.timeout must not be negative, got %s", c.API.Timeout)
	}
	if c.UI.ToastDuration <= 0 {
		return fmt.Errorf("config: ui.toast_duration must be positive, got %s", c.UI.ToastDuration)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}

// JournalPath returns where the journal lives, or "" when it is disabled.
func (c *Config) JournalPath() string {
	if !c.Journal.Enabled || c.Journal.Path == "" {
		return ""
	}
	if c.Journal.Path == ":memory:" || filepath.IsAbs(c.Journal.Path) {
		return c.Journal.Path
	}
	return filepath.Join(c.DataDir, c.Journal.Path)
}

// EventLogPath is the JSONL observability log.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}

// LogDir is where the process log files go.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}
