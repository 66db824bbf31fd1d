package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type R2Config struct {
	AccountID       string `toml:"account_id"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	BucketName      string `toml:"bucket_name"`
	PublicBaseURL   string `toml:"public_base_url"`
	Endpoint        string `toml:"endpoint"`
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort    int    `toml:"server_port"`
	JWTSecretKey  string `toml:"jwt_secret_key"`
	StorageDriver string `toml:"storage_driver"`
	DatabaseURL   string `toml:"database_url"`
	BoltPath      string `toml:"bolt_path"`
	LogLevel      string `toml:"log_level"`

	SubmitMaxAttempts  int           `toml:"submit_max_attempts"`
	LeaderboardLimit   int           `toml:"leaderboard_limit"`
	RateLimitRPS       float64       `toml:"rate_limit_rps"`
	RateLimitBurst     int           `toml:"rate_limit_burst"`
	ActivationInterval time.Duration `toml:"activation_interval"`
	CORSAllowedOrigins []string      `toml:"cors_allowed_origins"`

	R2 R2Config `toml:"r2"`
}

func defaults() Config {
	return Config{
		ServerPort:         8080,
		StorageDriver:      DriverPostgres,
		BoltPath:           "data/arena.db",
		LogLevel:           "info",
		SubmitMaxAttempts:  5,
		LeaderboardLimit:   50,
		RateLimitRPS:       5,
		RateLimitBurst:     10,
		ActivationInterval: 30 * time.Second,
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем TOML-файл
// (путь из аргумента или CONFIG_FILE), затем переменные окружения.
// .env подгружается, если он есть; его отсутствие не ошибка.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	envString("JWT_SECRET_KEY", &c.JWTSecretKey)
	envString("STORAGE_DRIVER", &c.StorageDriver)
	envString("DATABASE_URL", &c.DatabaseURL)
	envString("BOLT_PATH", &c.BoltPath)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("R2_ACCOUNT_ID", &c.R2.AccountID)
	envString("R2_ACCESS_KEY_ID", &c.R2.AccessKeyID)
	envString("R2_SECRET_ACCESS_KEY", &c.R2.SecretAccessKey)
	envString("R2_BUCKET_NAME", &c.R2.BucketName)
	envString("R2_PUBLIC_BASE_URL", &c.R2.PublicBaseURL)
	envString("R2_ENDPOINT", &c.R2.Endpoint)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSAllowedOrigins = append(c.CORSAllowedOrigins, o)
			}
		}
	}

	return errors.Join(
		envInt("SERVER_PORT", &c.ServerPort),
		envInt("SUBMIT_MAX_ATTEMPTS", &c.SubmitMaxAttempts),
		envInt("LEADERBOARD_LIMIT", &c.LeaderboardLimit),
		envInt("RATE_LIMIT_BURST", &c.RateLimitBurst),
		envFloat("RATE_LIMIT_RPS", &c.RateLimitRPS),
		envDuration("ACTIVATION_INTERVAL", &c.ActivationInterval),
	)
}

func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is not set")
		}
	case DriverBolt:
		if c.BoltPath == "" {
			return errors.New("BOLT_PATH must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverBolt, c.StorageDriver)
	}
	if c.SubmitMaxAttempts < 1 {
		return fmt.Errorf("SUBMIT_MAX_ATTEMPTS must be at least 1, got %d", c.SubmitMaxAttempts)
	}
	if c.LeaderboardLimit < 1 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be at least 1, got %d", c.LeaderboardLimit)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got %v rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.ActivationInterval <= 0 {
		return fmt.Errorf("ACTIVATION_INTERVAL must be positive, got %v", c.ActivationInterval)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// RequireJWT is checked by commands that serve authenticated requests.
func (c *Config) RequireJWT() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is not set")
	}
	return nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	*dst = f
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	*dst = d
	return nil
}
