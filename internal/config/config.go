// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/aferrand/valet/api/schemas"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Parser    ParserConfig    `mapstructure:"parser" yaml:"parser"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Assistant AssistantConfig `mapstructure:"assistant" yaml:"assistant"`
	Vault     VaultConfig     `mapstructure:"vault" yaml:"vault"`
	Speech    SpeechConfig    `mapstructure:"speech" yaml:"speech"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// ParserProvider defines the supported intent-parser backends.
type ParserProvider string

const (
	ProviderGemini ParserProvider = "gemini"
	// ProviderStatic is an offline parser used in tests and demos; it never
	// leaves the process.
	ProviderStatic ParserProvider = "static"
)

// ParserConfig defines the connection to the natural-language intent parser.
type ParserConfig struct {
	Provider    ParserProvider `mapstructure:"provider" yaml:"provider"`
	Model       string         `mapstructure:"model" yaml:"model"`
	APIKey      string         `mapstructure:"api_key" yaml:"-"`
	Endpoint    string         `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration  `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32        `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int            `mapstructure:"max_tokens" yaml:"max_tokens"`
	// MaxRetryElapsed caps the exponential backoff applied to transient
	// parser failures within a single turn.
	MaxRetryElapsed time.Duration `mapstructure:"max_retry_elapsed" yaml:"max_retry_elapsed"`
}

// DatabaseConfig holds the optional postgres connection for the calendar
// store. When URL is empty the in-memory store is used.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"-"`
}

// AssistantConfig tunes the conversation core.
type AssistantConfig struct {
	Personality schemas.Personality `mapstructure:"personality" yaml:"personality"`
	// HistoryWindow is the number of recent turns forwarded to the parser.
	HistoryWindow int `mapstructure:"history_window" yaml:"history_window"`
	// ParserRatePerMinute limits how often the parser may be called.
	ParserRatePerMinute int `mapstructure:"parser_rate_per_minute" yaml:"parser_rate_per_minute"`
}

// VaultConfig configures the encrypted secret store.
type VaultConfig struct {
	// Passphrase derives the at-rest encryption key. Set via VALET_VAULT_PASSPHRASE.
	Passphrase string `mapstructure:"passphrase" yaml:"-"`
}

// SpeechConfig controls spoken output.
type SpeechConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// QueueDepth bounds the response-line playback queue.
	QueueDepth int `mapstructure:"queue_depth" yaml:"queue_depth"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "valet")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Parser --
	v.SetDefault("parser.provider", string(ProviderGemini))
	v.SetDefault("parser.model", "gemini-2.5-flash")
	v.SetDefault("parser.api_timeout", "30s")
	v.SetDefault("parser.temperature", 0.2)
	v.SetDefault("parser.max_tokens", 2048)
	v.SetDefault("parser.max_retry_elapsed", "45s")

	// -- Assistant --
	v.SetDefault("assistant.personality", string(schemas.PersonalityWarm))
	v.SetDefault("assistant.history_window", 6)
	v.SetDefault("assistant.parser_rate_per_minute", 20)

	// -- Speech --
	v.SetDefault("speech.enabled", true)
	v.SetDefault("speech.queue_depth", 16)
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults alone.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("parser.api_key", "VALET_PARSER_API_KEY")
	v.BindEnv("vault.passphrase", "VALET_VAULT_PASSPHRASE")
	v.BindEnv("database.url", "VALET_DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if !c.Assistant.Personality.Valid() {
		return fmt.Errorf("assistant.personality %q is not one of [warm concise coach]", c.Assistant.Personality)
	}
	if c.Assistant.HistoryWindow <= 0 {
		return fmt.Errorf("assistant.history_window must be a positive integer")
	}
	if c.Assistant.ParserRatePerMinute <= 0 {
		return fmt.Errorf("assistant.parser_rate_per_minute must be a positive integer")
	}
	if c.Speech.QueueDepth <= 0 {
		return fmt.Errorf("speech.queue_depth must be a positive integer")
	}
	switch c.Parser.Provider {
	case ProviderGemini, ProviderStatic:
	default:
		return fmt.Errorf("parser.provider %q is not supported. Supported: [%s %s]", c.Parser.Provider, ProviderGemini, ProviderStatic)
	}
	if c.Parser.APITimeout <= 0 {
		return fmt.Errorf("parser.api_timeout must be a positive duration")
	}
	return nil
}
