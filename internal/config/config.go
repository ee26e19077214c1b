package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	GraphQLPath       string        `mapstructure:"graphql_path" yaml:"graphql_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`         // console or json
	DefaultAuthor     string        `mapstructure:"default_author" yaml:"default_author"` // credited when a request has no identity

	GraphQL GraphQLConfig `mapstructure:"graphql" yaml:"graphql"`
	WS      WSConfig      `mapstructure:"ws" yaml:"ws"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
}

// GraphQLConfig tunes query execution.
type GraphQLConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

// WSConfig tunes the subscription transport.
type WSConfig struct {
	InitTimeout   time.Duration `mapstructure:"init_timeout" yaml:"init_timeout"`
	SubscribeRate int           `mapstructure:"subscribe_rate" yaml:"subscribe_rate"` // per connection per minute, 0 = unlimited
}

// AuthConfig enables request identities when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":4000",
		GraphQLPath:       "/graphql",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		DefaultAuthor:     "Ammiel Yawson",
		GraphQL: GraphQLConfig{
			MaxDepth: 12,
		},
		WS: WSConfig{
			InitTimeout:   3 * time.Second,
			SubscribeRate: 60,
		},
		Auth: AuthConfig{
			JWTIssuer: "chatql",
			JWTTTL:    24 * time.Hour,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.GraphQLPath != "" {
		c.GraphQLPath = other.GraphQLPath
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
	if other.DefaultAuthor != "" {
		c.DefaultAuthor = other.DefaultAuthor
	}
	if other.GraphQL.MaxDepth != 0 {
		c.GraphQL.MaxDepth = other.GraphQL.MaxDepth
	}
	if other.WS.InitTimeout != 0 {
		c.WS.InitTimeout = other.WS.InitTimeout
	}
	if other.WS.SubscribeRate != 0 {
		c.WS.SubscribeRate = other.WS.SubscribeRate
	}
	if other.Auth.JWTSecret != "" {
		c.Auth.JWTSecret = other.Auth.JWTSecret
	}
	if other.Auth.JWTIssuer != "" {
		c.Auth.JWTIssuer = other.Auth.JWTIssuer
	}
	if other.Auth.JWTTTL != 0 {
		c.Auth.JWTTTL = other.Auth.JWTTTL
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if !strings.HasPrefix(c.GraphQLPath, "/") {
		errs = append(errs, errors.New("graphql_path must start with /"))
	}
	if c.DefaultAuthor == "" {
		errs = append(errs, errors.New("default_author must not be empty"))
	}
	if c.WS.InitTimeout <= 0 {
		errs = append(errs, errors.New("ws.init_timeout must be positive"))
	}
	return errors.Join(errs...)
}
