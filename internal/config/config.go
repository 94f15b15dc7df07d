package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"invoicer/internal/logger"
	"invoicer/internal/store"
)

type Config struct {
	// Storage Configuration
	StoreBackend  string
	StoreDir      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// HTTP Server Configuration
	HTTPAddr       string
	AuthUser       string
	AuthPass       string
	AllowedOrigins []string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Export Configuration
	ExportWorkers int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		StoreBackend:         getEnv("STORE_BACKEND", "file"),
		StoreDir:             getEnv("STORE_DIR", "./data"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisPrefix:          getEnv("REDIS_PREFIX", "invoicer:"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		AuthUser:             getEnv("AUTH_USER", ""),
		AuthPass:             getEnv("AUTH_PASS", ""),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "*")),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		ExportWorkers:        getEnvInt("EXPORT_WORKERS", 4),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "file", "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be file, redis or memory, got %q", c.StoreBackend)
	}
	if c.StoreBackend == "file" && c.StoreDir == "" {
		return fmt.Errorf("STORE_DIR is required for the file backend")
	}
	if c.ExportWorkers <= 0 {
		return fmt.Errorf("EXPORT_WORKERS must be positive, got %d", c.ExportWorkers)
	}
	if (c.AuthUser == "") != (c.AuthPass == "") {
		return fmt.Errorf("AUTH_USER and AUTH_PASS must be set together")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// StoreOptions returns the backend selection for store.Open
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend: c.StoreBackend,
		Dir:     c.StoreDir,
		Redis: store.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
	}
}

// AuthEnabled reports whether the API requires basic auth
func (c *Config) AuthEnabled() bool {
	return c.AuthUser != "" && c.AuthPass != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
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
