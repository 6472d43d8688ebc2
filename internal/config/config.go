package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	IdentityModeSecret = "secret"
	IdentityModeJWT    = "jwt"

	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Anthropic AnthropicConfig
	Identity  IdentityConfig
	Store     StoreConfig
	DB        DBConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	CORS      CORSConfig
	IPLimit   IPLimitConfig
	NATS      NATSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type IdentityConfig struct {
	Mode   string
	Secret string
}

type StoreConfig struct {
	Driver string
	// LimitsFile is an optional YAML overlay for the rate-limit profiles.
	LimitsFile string
	// Timeout bounds post-dispatch tracking and reporting.
	Timeout time.Duration
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SQLiteConfig struct {
	Path string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// IPLimitConfig configures the Redis-backed per-IP flood guard. Max == 0 disables it.
type IPLimitConfig struct {
	Max       int
	WindowSec int
}

func (c IPLimitConfig) Enabled() bool {
	return c.Max > 0
}

type NATSConfig struct {
	URL string
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		Anthropic: AnthropicConfig{
			APIKey:    k.String("anthropic.api.key"),
			BaseURL:   k.String("anthropic.base.url"),
			Model:     k.String("anthropic.model"),
			MaxTokens: k.Int("anthropic.max.tokens"),
		},
		Identity: IdentityConfig{
			Mode:   k.String("identity.mode"),
			Secret: k.String("memberspot.secret.key"),
		},
		Store: StoreConfig{
			Driver:     k.String("store.driver"),
			LimitsFile: k.String("rate.limits.file"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		SQLite: SQLiteConfig{
			Path: k.String("sqlite.path"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(k.String("cors.allowed.origins")),
		},
		IPLimit: IPLimitConfig{
			Max:       k.Int("ip.rate.limit.max"),
			WindowSec: k.Int("ip.rate.limit.window"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Log: LogConfig{
			Level:      k.String("log.level"),
			Format:     k.String("log.format"),
			File:       k.String("log.file"),
			MaxSizeMB:  k.Int("log.max.size.mb"),
			MaxBackups: k.Int("log.max.backups"),
			MaxAgeDays: k.Int("log.max.age.days"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Anthropic.BaseURL == "" {
		cfg.Anthropic.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.Anthropic.MaxTokens == 0 {
		cfg.Anthropic.MaxTokens = 2000
	}
	cfg.Anthropic.Temperature = 0.7
	if k.Exists("anthropic.temperature") {
		cfg.Anthropic.Temperature = k.Float64("anthropic.temperature")
	}
	if cfg.Identity.Mode == "" {
		cfg.Identity.Mode = IdentityModeSecret
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverPostgres
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "contentproxy"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "contentproxy"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "contentproxy.db"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.IPLimit.WindowSec == 0 {
		cfg.IPLimit.WindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 28
	}

	// Parse durations
	var err error
	cfg.Server.ReadTimeout, err = durationOr(k, "server.read.timeout", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = durationOr(k, "server.write.timeout", "150s")
	if err != nil {
		return nil, err
	}
	cfg.Anthropic.Timeout, err = durationOr(k, "anthropic.timeout", "120s")
	if err != nil {
		return nil, err
	}
	cfg.Store.Timeout, err = durationOr(k, "store.timeout", "5s")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationOr(k *koanf.Koanf, key, def string) (time.Duration, error) {
	raw := k.String(key)
	if raw == "" {
		raw = def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
