package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	DatabasePath string        `mapstructure:"database_path" yaml:"database_path"`
	JWTSecret    string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer    string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience  string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL       time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// Relay
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	PingInterval       time.Duration `mapstructure:"ping_interval" yaml:"ping_interval"`
	PongTimeout        time.Duration `mapstructure:"pong_timeout" yaml:"pong_timeout"`
	ClientBuffer       int           `mapstructure:"client_buffer" yaml:"client_buffer"`
	ChatBacklog        int           `mapstructure:"chat_backlog" yaml:"chat_backlog"`
	AnnounceSelf       bool          `mapstructure:"announce_self" yaml:"announce_self"`
	EchoChat           bool          `mapstructure:"echo_chat" yaml:"echo_chat"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	CORSOrigins    []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	MetricsEnabled bool     `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,

		LogLevel:  "info",
		LogFormat: "console",

		DatabasePath: "letsconnect.db",
		JWTSecret:    "change-me",
		JWTIssuer:    "lets-connect",
		JWTTTL:       24 * time.Hour,

		MaxMessageBytes:    64 << 10,
		PingInterval:       20 * time.Second,
		PongTimeout:        10 * time.Second,
		ClientBuffer:       64,
		ChatBacklog:        500,
		RateLimitPerMinute: 600,

		CORSOrigins:    []string{"*"},
		MetricsEnabled: true,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Boolean switches are only ever turned on.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTIssuer != "" {
		c.JWTIssuer = other.JWTIssuer
	}
	if other.JWTAudience != "" {
		c.JWTAudience = other.JWTAudience
	}
	if other.JWTTTL != 0 {
		c.JWTTTL = other.JWTTTL
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.PingInterval != 0 {
		c.PingInterval = other.PingInterval
	}
	if other.PongTimeout != 0 {
		c.PongTimeout = other.PongTimeout
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.ChatBacklog != 0 {
		c.ChatBacklog = other.ChatBacklog
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if len(other.CORSOrigins) > 0 {
		c.CORSOrigins = other.CORSOrigins
	}
	if other.AnnounceSelf {
		c.AnnounceSelf = true
	}
	if other.EchoChat {
		c.EchoChat = true
	}
	if other.MetricsEnabled {
		c.MetricsEnabled = true
	}
}
