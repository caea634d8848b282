// Package config loads the server configuration from command-line flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Data        DataConfig
	Server      ServerConfig
	Auth        AuthConfig
	Catalog     CatalogConfig
	GoogleBooks GoogleBooksConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk locations.
type DataConfig struct {
	BasePath        string // root for everything below (default: ~/mybooks/data)
	DatabasePath    string // SQLite file (default: {base}/mybooks.db)
	SearchIndexPath string // bleve index (default: {base}/search.bleve)
	CachePath       string // badger cache for provider responses (default: {base}/cache)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host               string
	Port               string
	PublicURL          string // Optional, used for absolute links
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// KeyPath is where the PASETO v4 symmetric key is persisted.
	KeyPath             string
	AccessTokenDuration time.Duration // API bearer tokens
	SessionDuration     time.Duration // web session cookies
	RateLimit           int           // login/register attempts per minute per client
	RateBurst           int
}

// CatalogConfig holds listing behavior.
type CatalogConfig struct {
	PageSize int
}

// GoogleBooksConfig holds the external metadata provider settings.
type GoogleBooksConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration // 0 disables the response cache
}

// flagValues carries raw flag strings; empty means "not given".
type flagValues struct {
	env, logLevel, dataPath, envFile string
	host, port, publicURL            string
	readTimeout, writeTimeout        string
	accessTokenDuration              string
	sessionDuration                  string
	googleBooksAPIKey                string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	var fv flagValues
	flag.StringVar(&fv.env, "env", "", "Environment (development, staging, production)")
	flag.StringVar(&fv.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&fv.dataPath, "data-path", "", "Directory for the database, search index and caches")
	flag.StringVar(&fv.envFile, "env-file", ".env", "Path to .env file")
	flag.StringVar(&fv.host, "server-host", "", "Interface to listen on (default: all)")
	flag.StringVar(&fv.port, "server-port", "", "Server port (default: 8000)")
	flag.StringVar(&fv.publicURL, "public-url", "", "Externally visible base URL")
	flag.StringVar(&fv.readTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	flag.StringVar(&fv.writeTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	flag.StringVar(&fv.accessTokenDuration, "access-token-duration", "", "API token lifetime (default: 24h)")
	flag.StringVar(&fv.sessionDuration, "session-duration", "", "Web session lifetime (default: 336h)")
	flag.StringVar(&fv.googleBooksAPIKey, "google-books-api-key", "", "Google Books API key (optional)")

	flag.Parse()

	// A missing .env file is fine.
	_ = loadEnvFile(fv.envFile)

	return fromSources(fv)
}

func fromSources(fv flagValues) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(fv.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(fv.logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath:        getConfigValue(fv.dataPath, "DATA_PATH", ""),
			DatabasePath:    getConfigValue("", "DATABASE_PATH", ""),
			SearchIndexPath: getConfigValue("", "SEARCH_INDEX_PATH", ""),
			CachePath:       getConfigValue("", "CACHE_PATH", ""),
		},
		Server: ServerConfig{
			Host:               getConfigValue(fv.host, "SERVER_HOST", ""),
			Port:               getConfigValue(fv.port, "SERVER_PORT", "8000"),
			PublicURL:          strings.TrimRight(getConfigValue(fv.publicURL, "PUBLIC_URL", ""), "/"),
			CORSAllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			KeyPath:   getConfigValue("", "AUTH_KEY_PATH", ""),
			RateLimit: getIntConfigValue("", "AUTH_RATE_LIMIT", 5),
			RateBurst: getIntConfigValue("", "AUTH_RATE_BURST", 10),
		},
		Catalog: CatalogConfig{
			PageSize: getIntConfigValue("", "PAGE_SIZE", 10),
		},
		GoogleBooks: GoogleBooksConfig{
			BaseURL: strings.TrimRight(getConfigValue("", "GOOGLE_BOOKS_BASE_URL", "https://www.googleapis.com/books/v1"), "/"),
			APIKey:  getConfigValue(fv.googleBooksAPIKey, "GOOGLE_BOOKS_API_KEY", ""),
		},
	}

	durations := []struct {
		dst      *time.Duration
		flag     string
		env      string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, fv.readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, fv.writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, "", "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Auth.AccessTokenDuration, fv.accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h"},
		{&cfg.Auth.SessionDuration, fv.sessionDuration, "SESSION_DURATION", "336h"},
		{&cfg.GoogleBooks.Timeout, "", "GOOGLE_BOOKS_TIMEOUT", "10s"},
		{&cfg.GoogleBooks.CacheTTL, "", "GOOGLE_BOOKS_CACHE_TTL", "24h"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.env, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}

	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.Catalog.PageSize)
	}

	if c.Auth.AccessTokenDuration <= 0 || c.Auth.SessionDuration <= 0 {
		return errors.New("token durations must be positive")
	}

	if c.GoogleBooks.CacheTTL < 0 {
		return errors.New("GOOGLE_BOOKS_CACHE_TTL cannot be negative")
	}

	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// IsProduction reports whether the app runs in production.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPaths resolves the base directory and derives the per-store
// paths from it unless they were set explicitly.
func (c *Config) expandDataPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "mybooks", "data"))
	if err != nil {
		return err
	}
	c.Data.BasePath = base

	derived := []struct {
		dst  *string
		name string
	}{
		{&c.Data.DatabasePath, "mybooks.db"},
		{&c.Data.SearchIndexPath, "search.bleve"},
		{&c.Data.CachePath, "cache"},
		{&c.Auth.KeyPath, "auth.key"},
	}
	for _, d := range derived {
		expanded, err := expandPath(*d.dst, filepath.Join(base, d.name))
		if err != nil {
			return err
		}
		*d.dst = expanded
	}

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
