package types

import "errors"

// Config holds backend selection and parameters for opening a Store.
type Config struct {
	Backend  string      `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir  string      `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	LogLevel string      `json:"log_level,omitempty" yaml:"log_level,omitempty" mapstructure:"log_level"`
	Redis    RedisConfig `json:"redis" yaml:"redis,omitempty" mapstructure:"redis"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr,omitempty" mapstructure:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `json:"db" yaml:"db,omitempty" mapstructure:"db"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty" mapstructure:"prefix"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// DefaultRedisPrefix namespaces configuration keys in a shared Redis database.
const DefaultRedisPrefix = "kvconf:"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrRedisAddrEmpty = errors.New("redis backend requires an address")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMemory: true,
	BackendBadger: true,
	BackendRedis:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return ErrRedisAddrEmpty
	}
	return nil
}

// RedisPrefix returns the configured key prefix or DefaultRedisPrefix.
func (c Config) RedisPrefix() string {
	if c.Redis.Prefix == "" {
		return DefaultRedisPrefix
	}
	return c.Redis.Prefix
}
