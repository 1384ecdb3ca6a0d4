package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/LucasGeos/GKG/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	dirs := cfg.Data.Dirs()
	if dirs.Inbox != "inbox" || dirs.Output != "selections" || dirs.Rejected != "rejected" {
		t.Errorf("Dirs() = %+v", dirs)
	}
}

func TestDataConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DataConfig)
		wantErr bool
	}{
		{"default", func(*DataConfig) {}, false},
		{"nested", func(c *DataConfig) { c.Output = "out/selections" }, false},
		{"no path", func(c *DataConfig) { c.Path = "" }, true},
		{"absolute inbox", func(c *DataConfig) { c.Inbox = "/tmp/inbox" }, true},
		{"escaping output", func(c *DataConfig) { c.Output = "../out" }, true},
		{"root rejected", func(c *DataConfig) { c.Rejected = "." }, true},
		{"inbox is output", func(c *DataConfig) { c.Output = "inbox" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Data
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig().App
	cfg.LogFormat = ""
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("xml log format should fail")
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	t.Setenv("GKG_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  log_level: debug
  log_format: text
  http:
    port: 9090
data:
  path: /srv/gkg
sqlite:
  path: /srv/gkg.db
auth:
  mode: token
  token: ${GKG_TEST_TOKEN}
watch:
  enabled: false
events:
  throttle: 500ms
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogFormat != LogFormatText {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %s, want DEBUG", cfg.App.LogLevel)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want expanded env", cfg.Auth.Token)
	}
	if cfg.Watch.Enabled {
		t.Error("watch.enabled should be false")
	}
	if cfg.Events.Throttle != 500*time.Millisecond {
		t.Errorf("throttle = %s, want 500ms", cfg.Events.Throttle)
	}
	if cfg.Data.Inbox != "inbox" {
		t.Errorf("inbox = %q, default should survive", cfg.Data.Inbox)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	loaded, err := pkgconfig.LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"), cfg)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if loaded {
		t.Error("loaded = true for a missing file")
	}
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("port = %d, want default", cfg.App.HTTP.Port)
	}
}
