package config

import (
	"errors"
	"strings"
	"time"

	pkgconfig "github.com/manglemix/pony-express/pkg/config"
	"github.com/manglemix/pony-express/pkg/log"
	"github.com/spf13/viper"
)

// Driver names shared by the session store and the query cache.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

var ErrMissingBackendURL = errors.New("backend.base_url (BACKEND_URL) is required")

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
	Query   QueryConfig
	Events  EventsConfig
	Display DisplayConfig
	Log     log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Driver       string        `mapstructure:"driver"`
	CookieName   string        `mapstructure:"cookie_name"`
	TTL          time.Duration `mapstructure:"ttl"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
	Prefix       string        `mapstructure:"prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueryConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
	Prefix string        `mapstructure:"prefix"`
}

// EventsConfig selects how message boards stay in step across instances.
// "memory" keeps them per process; "redis" shares changes over pub/sub.
type EventsConfig struct {
	Driver string `mapstructure:"driver"`
}

type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Load reads config from ./config/config.yaml (optional) and the environment.
func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}
	return build(v)
}

// LoadFile reads config from an explicit YAML file and the environment.
func LoadFile(path string) (*Config, error) {
	v, err := pkgconfig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5173)
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("session.driver", DriverMemory)
	v.SetDefault("session.cookie_name", "pony_session")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("session.prefix", "pony:session")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("query.driver", DriverMemory)
	v.SetDefault("query.ttl", "30s")
	v.SetDefault("query.prefix", "pony:query")
	v.SetDefault("events.driver", DriverMemory)
	v.SetDefault("display.timezone", "Local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "pony-express-web")

	// Bind environment variables
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("backend.base_url", "BACKEND_URL")
	_ = v.BindEnv("session.driver", "SESSION_DRIVER")
	_ = v.BindEnv("query.driver", "QUERY_DRIVER")
	_ = v.BindEnv("events.driver", "EVENTS_DRIVER")
	_ = v.BindEnv("redis.address", "REDIS_ADDRESS")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("display.timezone", "TZ")
	_ = v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if cfg.Backend.BaseURL == "" {
		return nil, ErrMissingBackendURL
	}

	return &cfg, nil
}

// Location resolves the display timezone, falling back to time.Local.
func (d DisplayConfig) Location() *time.Location {
	if d.Timezone == "" || strings.EqualFold(d.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
