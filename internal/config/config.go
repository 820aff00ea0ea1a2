package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Server     ServerConfig
	SMTP       SMTPConfig
	Slack      SlackConfig
	Moderation ModerationConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds admin token verification settings.
type JWTConfig struct {
	Secret    string //nolint:gosec // G117: JWT signing secret config
	AccessTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// SMTPConfig holds outbound mail relay settings. An empty Host disables
// email notifications.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string //nolint:gosec // G117: SMTP relay config
	From     string
}

// SlackConfig holds the optional moderation ops-feed settings. An empty
// BotToken disables the feed.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// ModerationConfig holds the lifecycle policy knobs.
type ModerationConfig struct {
	PurgeGrace    time.Duration // retention of soft-deleted accounts before purge
	NotifyBuffer  int           // notification dispatcher queue size
	SweepInterval time.Duration // 0 disables the background expiry sweep
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("WARDEN_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("WARDEN_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("WARDEN_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("WARDEN_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("WARDEN_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("WARDEN_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	smtpPort, err := getEnvInt("WARDEN_SMTP_PORT", 587)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	purgeGrace, err := getEnvDuration("WARDEN_PURGE_GRACE", 30*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	notifyBuffer, err := getEnvInt("WARDEN_NOTIFY_BUFFER", 256)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sweepInterval, err := getEnvDuration("WARDEN_SWEEP_INTERVAL", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("WARDEN_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("WARDEN_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("WARDEN_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("WARDEN_DB_USER", "warden"),
			Password: getEnv("WARDEN_DB_PASSWORD", ""),
			DBName:   getEnv("WARDEN_DB_NAME", "warden_dev"),
			SSLMode:  getEnv("WARDEN_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("WARDEN_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("WARDEN_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:    getEnv("WARDEN_JWT_SECRET", ""),
			AccessTTL: accessTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("WARDEN_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		SMTP: SMTPConfig{
			Host:     getEnv("WARDEN_SMTP_HOST", ""),
			Port:     smtpPort,
			Username: getEnv("WARDEN_SMTP_USERNAME", ""),
			Password: getEnv("WARDEN_SMTP_PASSWORD", ""),
			From:     getEnv("WARDEN_SMTP_FROM", "noreply@localhost"),
		},
		Slack: SlackConfig{
			BotToken: getEnv("WARDEN_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("WARDEN_SLACK_CHANNEL", "#moderation"),
		},
		Moderation: ModerationConfig{
			PurgeGrace:    purgeGrace,
			NotifyBuffer:  notifyBuffer,
			SweepInterval: sweepInterval,
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("WARDEN_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("WARDEN_JWT_SECRET must be at least 32 characters")
	}

	// DB SSL mode warning for non-self-hosted deployments.
	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("WARDEN_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("WARDEN_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("WARDEN_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("WARDEN_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("WARDEN_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("WARDEN_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return fmt.Errorf("WARDEN_SMTP_PORT must be 1-65535, got %d", c.SMTP.Port)
	}
	if c.Moderation.PurgeGrace <= 0 {
		return fmt.Errorf("WARDEN_PURGE_GRACE must be positive, got %s", c.Moderation.PurgeGrace)
	}
	if c.Moderation.NotifyBuffer < 1 {
		return fmt.Errorf("WARDEN_NOTIFY_BUFFER must be >= 1, got %d", c.Moderation.NotifyBuffer)
	}
	if c.Moderation.SweepInterval < 0 {
		return fmt.Errorf("WARDEN_SWEEP_INTERVAL must not be negative, got %s", c.Moderation.SweepInterval)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
