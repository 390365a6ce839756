package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultMaxTasks is the creation quota used when TODO_MAX_TASKS is unset.
const DefaultMaxTasks = 50

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	DatabaseMaxOpenConns   int
	MaxTasks               int
	RateLimit              int
	CORSAllowOrigins       []string
	RedisAddr              string
	RedisRateLimitKey      string
	LogLevel               string
	LogFormat              string
	ShutdownTimeoutSeconds int
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8000")

	var redisAddr string
	if redisHost := getEnv("REDIS_HOST", ""); redisHost != "" {
		redisAddr = fmt.Sprintf("%s:%s", redisHost, getEnv("REDIS_PORT", "6379"))
	}

	cfg := Config{
		AppURL:            fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:       getEnv("DATABASE_DSN", "todo.db?_busy_timeout=5000"),
		CORSAllowOrigins:  getEnvAsList("CORS_ALLOW_ORIGINS", "*"),
		RedisAddr:         redisAddr,
		RedisRateLimitKey: getEnv("REDIS_RATE_LIMIT_KEY", "todo:ratelimit"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.DatabaseMaxOpenConns, err = getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 1); err != nil {
		return Config{}, err
	}
	if cfg.MaxTasks, err = getEnvAsInt("TODO_MAX_TASKS", DefaultMaxTasks); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeoutSeconds, err = getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.AppURL == "" {
		return errors.New("APP_URL must not be empty (e.g. 127.0.0.1:8000)")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.DatabaseMaxOpenConns <= 0 {
		return errors.New("DATABASE_MAX_OPEN_CONNS must be greater than 0")
	}
	if cfg.MaxTasks < 0 {
		return errors.New("TODO_MAX_TASKS must not be negative")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// getEnvAsList splits a comma separated value. "none" yields an empty list.
func getEnvAsList(key, defaultVal string) []string {
	v := getEnv(key, defaultVal)
	if v == "none" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}
