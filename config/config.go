package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Redis         RedisConfig
	Edge          EdgeConfig
	Access        AccessConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// CORSOrigins lists the exact origins allowed to call /api/v1 with credentials
	CORSOrigins []string
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// AuthConfig holds the hosted auth provider settings
type AuthConfig struct {
	URL          string // Project URL, e.g. https://xyz.supabase.co
	AnonKey      string
	JWTSecret    string // HS256 secret; takes precedence over JWKSURL
	JWKSURL      string
	Issuer       string // Optional expected "iss"
	Audience     string // Expected "aud" (default "authenticated")
	CookieName   string
	CookieSecure bool
	CacheTTL     time.Duration
	HTTPTimeout  time.Duration
}

// RedisConfig holds the optional Redis session cache settings
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// EdgeConfig controls the edge request filter
type EdgeConfig struct {
	ExcludePrefixes []string
	EnforceAuth     bool
	LoginPath       string
}

// AccessConfig points at an optional YAML file overriding route allow-lists
type AccessConfig struct {
	PolicyFile string
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// DefaultExcludePrefixes are the static asset paths that bypass the edge filter
var DefaultExcludePrefixes = []string{"/_next/static", "/_next/image", "/static/", "/favicon.ico"}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: loadDatabaseConfig(),
		Auth: AuthConfig{
			URL:          strings.TrimSuffix(getEnv("SUPABASE_URL", ""), "/"),
			AnonKey:      getEnv("SUPABASE_ANON_KEY", ""),
			JWTSecret:    getEnv("SUPABASE_JWT_SECRET", ""),
			JWKSURL:      getEnv("SUPABASE_JWKS_URL", ""),
			Issuer:       getEnv("AUTH_ISSUER", ""),
			Audience:     getEnv("AUTH_AUDIENCE", "authenticated"),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "sb-access-token"),
			CookieSecure: getEnvAsBool("AUTH_COOKIE_SECURE", false),
			CacheTTL:     getEnvAsDuration("SESSION_CACHE_TTL", time.Minute),
			HTTPTimeout:  getEnvAsDuration("AUTH_HTTP_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "dashboard:session:"),
		},
		Edge: EdgeConfig{
			ExcludePrefixes: getEnvAsList("EDGE_EXCLUDE_PREFIXES", DefaultExcludePrefixes),
			EnforceAuth:     getEnvAsBool("EDGE_ENFORCE_AUTH", false),
			LoginPath:       getEnv("EDGE_LOGIN_PATH", "/login"),
		},
		Access: AccessConfig{
			PolicyFile: getEnv("ACCESS_POLICY_FILE", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	// The JWKS endpoint lives under the project URL unless set explicitly
	if cfg.Auth.JWKSURL == "" && cfg.Auth.JWTSecret == "" && cfg.Auth.URL != "" {
		cfg.Auth.JWKSURL = cfg.Auth.URL + "/auth/v1/.well-known/jwks.json"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	db := c.Database
	if db.ConnectionString == "" {
		switch {
		case db.Host == "":
			return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
		case db.User == "":
			return fmt.Errorf("database user is required")
		case db.Database == "":
			return fmt.Errorf("database name is required")
		}
	}

	if c.IsProduction() {
		switch {
		case c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "":
			return fmt.Errorf("auth verification key is required in production: set SUPABASE_JWT_SECRET or SUPABASE_JWKS_URL")
		case c.Auth.URL == "":
			return fmt.Errorf("auth provider URL is required in production")
		}
	}

	switch {
	case c.Auth.CookieName == "":
		return fmt.Errorf("auth cookie name is required")
	case !strings.HasPrefix(c.Edge.LoginPath, "/"):
		return fmt.Errorf("edge login path must be absolute: %q", c.Edge.LoginPath)
	case c.Observability.LogLevel == "":
		return fmt.Errorf("log level is required")
	}
	if _, err := zapcore.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Observability.LogLevel, err)
	}

	for _, origin := range c.Server.CORSOrigins {
		u, err := url.Parse(origin)
		if err != nil || strings.Contains(origin, "*") || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return fmt.Errorf("CORS origin must be an exact scheme://host[:port]: %q", origin)
		}
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadDatabaseConfig() DatabaseConfig {
	db := DatabaseConfig{
		ConnectionString: getEnv("DATABASE_URL", ""),
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	if db.ConnectionString != "" {
		return db
	}
	db.Host = getEnv("DB_HOST", "localhost")
	db.Port = getEnvAsInt("DB_PORT", 5432)
	db.User = getEnv("DB_USER", "postgres")
	db.Password = getEnv("DB_PASSWORD", "postgres")
	db.Database = getEnv("DB_NAME", "postgres")
	db.SSLMode = getEnv("DB_SSLMODE", "disable")
	return db
}

// getPort reads PORT, then SERVER_PORT, defaulting to 3000
func getPort() int {
	return getEnvAsInt("PORT", getEnvAsInt("SERVER_PORT", 3000))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseEnv falls back to defaultValue when key is unset or does not parse
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := parse(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

func getEnvAsBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, strconv.ParseBool)
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration)
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
