package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ServiceConfig points the client at the email/AI backend.
type ServiceConfig struct {
	// BaseURL is the root URL of the backend (e.g., http://localhost:8000).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// AIRequestsPerMinute paces calls to the /ai endpoints. Zero disables pacing.
	AIRequestsPerMinute int `mapstructure:"ai_requests_per_minute" yaml:"ai_requests_per_minute"`
}

// AuthConfig holds the OAuth client settings for the mail provider.
type AuthConfig struct {
	ClientID string `mapstructure:"client_id" yaml:"client_id"`

	// RedirectURL must be registered with the provider. Loopback URLs are
	// served locally to capture the authorization code.
	RedirectURL string `mapstructure:"redirect_url" yaml:"redirect_url"`

	Scopes []string `mapstructure:"scopes" yaml:"scopes"`
}

// InboxConfig holds inbox defaults.
type InboxConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// SessionConfig selects where session_id and token are kept.
type SessionConfig struct {
	// Backend is one of "keyring", "sqlite" or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls the debug log file. The terminal belongs to the UI,
// so logs never go to stdout.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Service ServiceConfig `mapstructure:"service" yaml:"service"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Inbox   InboxConfig   `mapstructure:"inbox" yaml:"inbox"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Chat    ChatConfig    `mapstructure:"chat" yaml:"chat"`
}

// ChatConfig bounds the persisted assistant transcript.
type ChatConfig struct {
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
}

// DefaultScopes are the provider scopes the backend needs to read, trash
// and send mail on the user's behalf.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// ConfigDir returns ~/.config/mailassist, or "." if the home directory
// cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailassist")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailassist/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Service: ServiceConfig{
			BaseURL:             "http://localhost:8000",
			TimeoutSec:          30,
			AIRequestsPerMinute: 30,
		},
		Auth: AuthConfig{
			ClientID:    os.Getenv("GOOGLE_CLIENT_ID"),
			RedirectURL: "http://127.0.0.1:5173/dashboard",
			Scopes:      append([]string(nil), DefaultScopes...),
		},
		Inbox:   InboxConfig{PageSize: 5},
		Session: SessionConfig{Backend: "keyring"},
		Display: DisplayConfig{Theme: "default"},
		Log:     LogConfig{File: filepath.Join(ConfigDir(), "debug.log")},
		Chat:    ChatConfig{HistoryLimit: 50},
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	return defaultAppConfig()
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden by MAILASSIST_* environment variables
// (e.g., MAILASSIST_SERVICE_BASE_URL). If the file does not exist, the
// defaults are returned with environment overrides applied.
func LoadConfig(path string) (*AppConfig, error) {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("service.base_url", def.Service.BaseURL)
	v.SetDefault("service.timeout_sec", def.Service.TimeoutSec)
	v.SetDefault("service.ai_requests_per_minute", def.Service.AIRequestsPerMinute)
	v.SetDefault("auth.client_id", def.Auth.ClientID)
	v.SetDefault("auth.redirect_url", def.Auth.RedirectURL)
	v.SetDefault("auth.scopes", def.Auth.Scopes)
	v.SetDefault("inbox.page_size", def.Inbox.PageSize)
	v.SetDefault("session.backend", def.Session.Backend)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("chat.history_limit", def.Chat.HistoryLimit)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if !ValidPageLimit(cfg.Inbox.PageSize) {
		cfg.Inbox.PageSize = def.Inbox.PageSize
	}
	if cfg.Service.TimeoutSec <= 0 {
		cfg.Service.TimeoutSec = def.Service.TimeoutSec
	}
	if len(cfg.Auth.Scopes) == 0 {
		cfg.Auth.Scopes = def.Auth.Scopes
	}
	cfg.Service.BaseURL = strings.TrimRight(cfg.Service.BaseURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("service", cfg.Service)
	v.Set("auth", cfg.Auth)
	v.Set("inbox", cfg.Inbox)
	v.Set("session", cfg.Session)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("chat", cfg.Chat)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
