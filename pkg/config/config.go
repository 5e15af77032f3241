package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported plan collection backends.
const (
	StoreBackendFile     = "file"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendBadger   = "badger"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Badger   BadgerConfig
	Auth     AuthConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Planner  PlannerConfig
	Audit    AuditConfig
}

// StoreConfig selects and tunes the versioned plan collection.
type StoreConfig struct {
	Backend    string
	FilePath   string
	RedisKey   string
	Collection string
	MaxRetries int
	// PreferencesInDB persists availability profiles in Postgres even when blocks live elsewhere.
	PreferencesInDB bool
}

// UsesPostgres reports whether a database connection is required.
func (c StoreConfig) UsesPostgres() bool {
	return c.Backend == StoreBackendPostgres || c.PreferencesInDB
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// BadgerConfig configures the embedded badger database.
type BadgerConfig struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// AuthConfig toggles bearer token enforcement. When disabled every request acts as the local user.
type AuthConfig struct {
	Enabled bool
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig governs proposal generation and apply behaviour.
type PlannerConfig struct {
	Timezone        string
	ProposalTTL     time.Duration
	ApplyMaxRetries int
	ProposalCache   bool
}

// Location resolves the configured planner timezone, falling back to UTC.
func (c PlannerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AuditConfig sizes the change audit worker queue.
type AuditConfig struct {
	Workers    int
	BufferSize int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Backend:    strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		FilePath:   v.GetString("STORE_FILE_PATH"),
		RedisKey:   v.GetString("STORE_REDIS_KEY"),
		Collection: v.GetString("STORE_COLLECTION"),
		MaxRetries: v.GetInt("STORE_MAX_RETRIES"),

		PreferencesInDB: v.GetBool("PREFERENCES_IN_DB"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Badger = BadgerConfig{
		Path:       v.GetString("BADGER_PATH"),
		InMemory:   v.GetBool("BADGER_IN_MEMORY"),
		SyncWrites: v.GetBool("BADGER_SYNC_WRITES"),
	}

	cfg.Auth = AuthConfig{Enabled: v.GetBool("AUTH_ENABLED")}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		Timezone:        v.GetString("PLANNER_TIMEZONE"),
		ProposalTTL:     parseDuration(v.GetString("PLANNER_PROPOSAL_TTL"), 30*time.Minute),
		ApplyMaxRetries: v.GetInt("PLANNER_APPLY_MAX_RETRIES"),
		ProposalCache:   v.GetBool("ENABLE_PROPOSAL_CACHE"),
	}

	cfg.Audit = AuditConfig{
		Workers:    v.GetInt("AUDIT_WORKERS"),
		BufferSize: v.GetInt("AUDIT_BUFFER"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendFile, StoreBackendRedis, StoreBackendPostgres, StoreBackendBadger:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Auth.Enabled && c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_BACKEND", StoreBackendFile)
	v.SetDefault("STORE_FILE_PATH", "./data/planblocks.json")
	v.SetDefault("STORE_REDIS_KEY", "planner:planblocks")
	v.SetDefault("STORE_COLLECTION", "planblocks")
	v.SetDefault("STORE_MAX_RETRIES", 3)
	v.SetDefault("PREFERENCES_IN_DB", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "study_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("BADGER_PATH", "./data/badger")
	v.SetDefault("BADGER_IN_MEMORY", false)
	v.SetDefault("BADGER_SYNC_WRITES", true)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNER_TIMEZONE", "UTC")
	v.SetDefault("PLANNER_PROPOSAL_TTL", "30m")
	v.SetDefault("PLANNER_APPLY_MAX_RETRIES", 3)
	v.SetDefault("ENABLE_PROPOSAL_CACHE", false)

	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_BUFFER", 64)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
