package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the importer.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Importer ImporterConfig
}

// AppConfig controls admin server behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// BindingsTTLMinutes bounds how long pushed binding tables live; 0 keeps them.
	BindingsTTLMinutes int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines operator token parameters for the admin API.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	Issuer                string
}

// ImporterConfig controls vendor access and replay inputs.
type ImporterConfig struct {
	ManifestPath   string
	BindingsPath   string
	DumpDir        string
	TimeoutSeconds int
	QueueSize      int
	RunRetention   int
	Vendors        map[string]VendorConfig
}

// VendorConfig holds credentials and endpoints for one vendor API.
type VendorConfig struct {
	BaseURL  string
	Token    string
	APIKey   string
	Username string
	Owner    string
	Repo     string
	PageSize int
}

// Vendor names understood by the importer.
var vendorNames = []string{"asana", "github", "jira", "trello"}

var defaultBaseURLs = map[string]string{
	"asana":  "https://app.asana.com/api/1.0",
	"github": "https://api.github.com",
	"jira":   "",
	"trello": "https://api.trello.com/1",
}

var defaultPageSizes = map[string]int{
	"asana":  100,
	"github": 100,
	"jira":   100,
	"trello": 1000,
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	vendors := make(map[string]VendorConfig, len(vendorNames))
	for _, name := range vendorNames {
		vendors[name] = loadVendor(name)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "history-importer"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:               getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 redisDB,
			BindingsTTLMinutes: getEnvAsInt("REDIS_BINDINGS_TTL_MINUTES", 0),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			Issuer:                getEnv("AUTH_ISSUER", "history-importer"),
		},
		Importer: ImporterConfig{
			ManifestPath:   getEnv("IMPORT_MANIFEST", "manifest.yaml"),
			BindingsPath:   getEnv("IMPORT_BINDINGS", "bindings.yaml"),
			DumpDir:        os.Getenv("IMPORT_DUMP_DIR"),
			TimeoutSeconds: getEnvAsInt("IMPORT_HTTP_TIMEOUT_SECONDS", 30),
			QueueSize:      getEnvAsInt("IMPORT_QUEUE_SIZE", 8),
			RunRetention:   getEnvAsInt("IMPORT_RUN_RETENTION", 200),
			Vendors:        vendors,
		},
	}

	return cfg, nil
}

func loadVendor(name string) VendorConfig {
	prefix := strings.ToUpper(name) + "_"
	return VendorConfig{
		BaseURL:  getEnv(prefix+"BASE_URL", defaultBaseURLs[name]),
		Token:    os.Getenv(prefix + "TOKEN"),
		APIKey:   os.Getenv(prefix + "API_KEY"),
		Username: os.Getenv(prefix + "USERNAME"),
		Owner:    os.Getenv(prefix + "OWNER"),
		Repo:     os.Getenv(prefix + "REPO"),
		PageSize: getEnvAsInt(prefix+"PAGE_SIZE", defaultPageSizes[name]),
	}
}

// Vendor returns the configuration for name, empty when unknown.
func (c ImporterConfig) Vendor(name string) VendorConfig {
	return c.Vendors[name]
}

// HTTPTimeout returns the vendor request timeout.
func (c ImporterConfig) HTTPTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// BindingsTTL returns how long pushed binding tables are kept.
func (r RedisConfig) BindingsTTL() time.Duration {
	return time.Duration(r.BindingsTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
