package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/ratelimit"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Server    ServerConfig
	Slack     SlackConfig
	Agent     AgentConfig
	Repo      RepoConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	History   HistoryConfig
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

// JWTConfig holds JWT authentication settings.
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

// SlackConfig holds Slack integration settings.
type SlackConfig struct {
	BotToken      string
	SigningSecret string
}

// AgentConfig holds settings for the external agent CLI.
type AgentConfig struct {
	Binary         string
	MaxTurns       int
	Timeout        time.Duration
	CompactTimeout time.Duration
}

// RepoConfig holds the managed git working tree location.
type RepoConfig struct {
	Path string
}

// SessionConfig holds session tracking settings.
type SessionConfig struct {
	CompactThreshold int
}

// RateLimitConfig holds per-caller admission ceilings.
type RateLimitConfig struct {
	MinuteLimit    int
	HourLimit      int
	DayLimit       int
	NoticeCooldown time.Duration
}

// Windows renders the configured ceilings as limiter window configs.
func (c RateLimitConfig) Windows() []ratelimit.WindowConfig {
	return []ratelimit.WindowConfig{
		{Name: "minute", Span: time.Minute, Limit: c.MinuteLimit},
		{Name: "hour", Span: time.Hour, Limit: c.HourLimit},
		{Name: "day", Span: 24 * time.Hour, Limit: c.DayLimit},
	}
}

// HistoryConfig holds approval audit retention settings.
type HistoryConfig struct {
	RetainPerCaller int
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("STEWARD_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("STEWARD_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("STEWARD_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("STEWARD_JWT_ACCESS_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("STEWARD_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("STEWARD_SERVER_WRITE_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	agentMaxTurns, err := getEnvInt("STEWARD_AGENT_MAX_TURNS", 30)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	agentTimeout, err := getEnvDuration("STEWARD_AGENT_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	compactTimeout, err := getEnvDuration("STEWARD_AGENT_COMPACT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	compactThreshold, err := getEnvInt("STEWARD_SESSION_COMPACT_THRESHOLD", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	minuteLimit, err := getEnvInt("STEWARD_RATE_MINUTE_LIMIT", 6)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	hourLimit, err := getEnvInt("STEWARD_RATE_HOUR_LIMIT", 60)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dayLimit, err := getEnvInt("STEWARD_RATE_DAY_LIMIT", 300)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	noticeCooldown, err := getEnvDuration("STEWARD_RATE_NOTICE_COOLDOWN", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	retainPerCaller, err := getEnvInt("STEWARD_HISTORY_RETAIN", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("STEWARD_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("STEWARD_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("STEWARD_DB_USER", "steward"),
			Password: getEnv("STEWARD_DB_PASSWORD", ""),
			DBName:   getEnv("STEWARD_DB_NAME", "steward_dev"),
			SSLMode:  getEnv("STEWARD_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("STEWARD_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("STEWARD_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:    getEnv("STEWARD_JWT_SECRET", ""),
			AccessTTL: accessTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("STEWARD_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Slack: SlackConfig{
			BotToken:      getEnv("STEWARD_SLACK_BOT_TOKEN", ""),
			SigningSecret: getEnv("STEWARD_SLACK_SIGNING_SECRET", ""),
		},
		Agent: AgentConfig{
			Binary:         getEnv("STEWARD_AGENT_BINARY", "claude"),
			MaxTurns:       agentMaxTurns,
			Timeout:        agentTimeout,
			CompactTimeout: compactTimeout,
		},
		Repo: RepoConfig{
			Path: getEnv("STEWARD_REPO_PATH", ""),
		},
		Session: SessionConfig{
			CompactThreshold: compactThreshold,
		},
		RateLimit: RateLimitConfig{
			MinuteLimit:    minuteLimit,
			HourLimit:      hourLimit,
			DayLimit:       dayLimit,
			NoticeCooldown: noticeCooldown,
		},
		History: HistoryConfig{
			RetainPerCaller: retainPerCaller,
		},
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
		return errors.New("STEWARD_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("STEWARD_JWT_SECRET must be at least 32 characters")
	}

	if c.Repo.Path == "" {
		return errors.New("STEWARD_REPO_PATH is required")
	}

	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("STEWARD_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("STEWARD_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("STEWARD_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("STEWARD_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("STEWARD_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("STEWARD_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Agent.MaxTurns < 1 {
		return fmt.Errorf("STEWARD_AGENT_MAX_TURNS must be >= 1, got %d", c.Agent.MaxTurns)
	}
	if c.Agent.Timeout <= 0 {
		return fmt.Errorf("STEWARD_AGENT_TIMEOUT must be positive, got %s", c.Agent.Timeout)
	}
	if c.Session.CompactThreshold < 1 {
		return fmt.Errorf("STEWARD_SESSION_COMPACT_THRESHOLD must be >= 1, got %d", c.Session.CompactThreshold)
	}
	for _, w := range []struct {
		key   string
		limit int
	}{
		{"STEWARD_RATE_MINUTE_LIMIT", c.RateLimit.MinuteLimit},
		{"STEWARD_RATE_HOUR_LIMIT", c.RateLimit.HourLimit},
		{"STEWARD_RATE_DAY_LIMIT", c.RateLimit.DayLimit},
	} {
		if w.limit < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", w.key, w.limit)
		}
	}
	if c.History.RetainPerCaller < 1 {
		return fmt.Errorf("STEWARD_HISTORY_RETAIN must be >= 1, got %d", c.History.RetainPerCaller)
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
