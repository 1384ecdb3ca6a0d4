package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/LucasGeos/GKG/internal/logging"
	"github.com/LucasGeos/GKG/internal/selectservice"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = logging.FormatJSON
	LogFormatText = logging.FormatText
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Data   DataConfig        `yaml:"data"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Watch  WatchConfig       `yaml:"watch"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig holds the data directory and its layout. Inbox, Output and
// Rejected are relative to Path.
type DataConfig struct {
	Path     string `yaml:"path"`
	Inbox    string `yaml:"inbox"`
	Output   string `yaml:"output"`
	Rejected string `yaml:"rejected"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Inbox, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.Output, validation.Required, validation.By(relativeDir)),
		validation.Field(&c.Rejected, validation.Required, validation.By(relativeDir)),
	); err != nil {
		return err
	}
	if c.Inbox == c.Output || c.Inbox == c.Rejected {
		return fmt.Errorf("data: inbox must differ from output and rejected directories")
	}
	return nil
}

// Dirs returns the layout in the form the selection service uses.
func (c *DataConfig) Dirs() selectservice.Dirs {
	return selectservice.Dirs{
		Inbox:    filepath.ToSlash(filepath.Clean(c.Inbox)),
		Output:   filepath.ToSlash(filepath.Clean(c.Output)),
		Rejected: filepath.ToSlash(filepath.Clean(c.Rejected)),
	}
}

func relativeDir(value any) error {
	s, _ := value.(string)
	if filepath.IsAbs(s) {
		return fmt.Errorf("must be relative to data.path")
	}
	clean := filepath.Clean(s)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("must be a subdirectory of data.path")
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WatchConfig controls the inbox watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EventsConfig controls the SSE broker.
type EventsConfig struct {
	// Throttle is the minimum interval between views.updated events.
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Path:     "./data",
			Inbox:    "inbox",
			Output:   "selections",
			Rejected: "rejected",
		},
		SQLite: SQLiteConfig{
			Path: "./gkg.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
		},
	}
}
