package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	MessageRateLimit  int           `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`

	JWT   JWTConfig   `mapstructure:"jwt" yaml:"jwt"`
	Reply ReplyConfig `mapstructure:"reply" yaml:"reply"`
	Media MediaConfig `mapstructure:"media" yaml:"media"`
}

// JWTConfig holds session token settings.
type JWTConfig struct {
	Secret   string        `mapstructure:"secret" yaml:"secret"`
	Issuer   string        `mapstructure:"issuer" yaml:"issuer"`
	Audience string        `mapstructure:"audience" yaml:"audience"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ReplyConfig holds the generated-reply (language model) settings.
type ReplyConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MediaConfig holds the attachment upload service settings.
type MediaConfig struct {
	CloudName string `mapstructure:"cloud_name" yaml:"cloud_name"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	APISecret string `mapstructure:"api_secret" yaml:"api_secret"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "talkie.db",
		LogLevel:          "info",
		MessageRateLimit:  120,
		JWT: JWTConfig{
			Secret:   "change-me",
			Issuer:   "talkie",
			Audience: "talkie-clients",
			TTL:      15 * 24 * time.Hour,
		},
		Reply: ReplyConfig{
			Model:   "gpt-3.5-turbo",
			Timeout: 10 * time.Second,
		},
	}
}
