package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/seedrbot/internal/seedr"
	"github.com/florianilch/seedrbot/internal/tokencipher"
	"github.com/florianilch/seedrbot/internal/tokenstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// StorageType represents the supported credential store backends.
type StorageType string

const (
	StorageTypeFile    StorageType = "file"
	StorageTypeKeyring StorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigOpsHost         = "127.0.0.1"
	DefaultConfigOpsPort         = 8090
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigStorageType     = StorageTypeFile
	DefaultConfigKeyringService  = "seedrbot-tokens"
	DefaultConfigSessionTTL      = 5 * time.Minute
)

// TelegramConfig holds the bot transport configuration.
type TelegramConfig struct {
	// Token is the bot API token from @BotFather.
	Token string `json:"token" validate:"required"`
}

// OpsConfig holds the operational HTTP server configuration.
type OpsConfig struct {
	// Enabled toggles the probe server entirely.
	Enabled bool   `json:"enabled"`
	Host    string `json:"host" validate:"hostname_rfc1123|ip"`
	Port    uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// ProviderConfig holds Seedr API configuration.
type ProviderConfig struct {
	BaseURL string `json:"base_url" validate:"omitempty,url"`
}

// StorageConfig describes where user credentials live and how they are
// protected at rest.
type StorageConfig struct {
	Type StorageType `json:"type" validate:"required,oneof=file keyring"`

	// Storage-specific settings (mutually exclusive based on Type)
	File           string `json:"file,omitempty"`            // For file storage: path to the credential document
	KeyringService string `json:"keyring_service,omitempty"` // For keyring storage: service name

	// EncryptionKey is a base64-encoded 32-byte key. Empty disables
	// encryption and stores tokens in the clear.
	EncryptionKey string `json:"encryption_key,omitempty"`
}

// NewStore creates the credential store from the storage configuration.
func (s *StorageConfig) NewStore() (tokenstore.Store, error) {
	cipher, err := tokencipher.New(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	switch s.Type {
	case StorageTypeFile:
		return tokenstore.NewFileStore(s.File, cipher)
	case StorageTypeKeyring:
		return tokenstore.NewKeyringStore(s.KeyringService, cipher)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", s.Type)
	}
}

// SessionConfig holds device-authorization session behavior.
type SessionConfig struct {
	// TTL is how long a user has to enter the code before the session
	// lapses.
	TTL time.Duration `json:"ttl"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	Telegram  TelegramConfig `json:"telegram"`
	Ops       OpsConfig      `json:"ops"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	Provider  ProviderConfig `json:"provider"`
	Storage   StorageConfig  `json:"storage"`
	Session   SessionConfig  `json:"session"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Ops.Host == "" {
		c.Ops.Host = DefaultConfigOpsHost
	}
	if c.Ops.Port == 0 {
		c.Ops.Port = DefaultConfigOpsPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = seedr.DefaultBaseURL
	}
	if c.Storage.Type == "" {
		c.Storage.Type = DefaultConfigStorageType
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = DefaultConfigSessionTTL
	}

	// Dynamic defaults based on storage type
	switch c.Storage.Type {
	case StorageTypeFile:
		if c.Storage.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("storage.file required (auto-detect failed: %w)", err)
			}
			c.Storage.File = filepath.Join(configDir, "seedrbot", "tokens.json")
		}
	case StorageTypeKeyring:
		if c.Storage.KeyringService == "" {
			c.Storage.KeyringService = DefaultConfigKeyringService
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Storage.Type {
	case StorageTypeFile:
		if c.Storage.File == "" {
			return errors.New("file path required for file storage")
		}
	case StorageTypeKeyring:
		if c.Storage.KeyringService == "" {
			return errors.New("keyring_service required for keyring storage")
		}
	}

	if c.Session.TTL < 0 {
		return errors.New("session ttl must be positive")
	}

	return nil
}
