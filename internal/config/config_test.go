package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "STEWARD_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "STEWARD_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "STEWARD_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "STEWARD_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "STEWARD_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "STEWARD_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "STEWARD_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "parses zero", key: "STEWARD_TEST_INT_ZERO", setVal: strPtr("0"), fallback: 99, want: 0},
		{name: "returns fallback for empty string", key: "STEWARD_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "STEWARD_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "STEWARD_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
		{name: "errors on hex", key: "STEWARD_TEST_INT_HEX", setVal: strPtr("0xFF"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "STEWARD_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "STEWARD_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses minutes", key: "STEWARD_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses hours", key: "STEWARD_TEST_DUR_HR", setVal: strPtr("2h"), fallback: 0, want: 2 * time.Hour},
		{name: "parses composite", key: "STEWARD_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses zero", key: "STEWARD_TEST_DUR_ZERO", setVal: strPtr("0s"), fallback: 5 * time.Second, want: 0},
		{name: "errors on invalid", key: "STEWARD_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "STEWARD_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("STEWARD_REPO_PATH", "/srv/repo")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "STEWARD_JWT_SECRET")
}

func TestLoad_MissingRepoPath(t *testing.T) {
	t.Setenv("STEWARD_JWT_SECRET", "test-secret-that-is-at-least-32ch")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "STEWARD_REPO_PATH")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		// DB_PORT parse errors
		{name: "DB_PORT not a number", envKey: "STEWARD_DB_PORT", envVal: "abc", errMsg: "STEWARD_DB_PORT"},
		{name: "DB_PORT float", envKey: "STEWARD_DB_PORT", envVal: "3.14", errMsg: "STEWARD_DB_PORT"},

		// DB_PORT validation errors (parses fine, fails bounds)
		{name: "DB_PORT zero", envKey: "STEWARD_DB_PORT", envVal: "0", errMsg: "STEWARD_DB_PORT"},
		{name: "DB_PORT negative", envKey: "STEWARD_DB_PORT", envVal: "-1", errMsg: "STEWARD_DB_PORT"},
		{name: "DB_PORT too high", envKey: "STEWARD_DB_PORT", envVal: "65536", errMsg: "STEWARD_DB_PORT"},

		// DB_MAX_CONNS
		{name: "DB_MAX_CONNS zero", envKey: "STEWARD_DB_MAX_CONNS", envVal: "0", errMsg: "STEWARD_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS negative", envKey: "STEWARD_DB_MAX_CONNS", envVal: "-5", errMsg: "STEWARD_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS not a number", envKey: "STEWARD_DB_MAX_CONNS", envVal: "many", errMsg: "STEWARD_DB_MAX_CONNS"},

		// JWT access TTL
		{name: "JWT_ACCESS_TTL invalid", envKey: "STEWARD_JWT_ACCESS_TTL", envVal: "badval", errMsg: "STEWARD_JWT_ACCESS_TTL"},
		{name: "JWT_ACCESS_TTL zero", envKey: "STEWARD_JWT_ACCESS_TTL", envVal: "0s", errMsg: "STEWARD_JWT_ACCESS_TTL"},
		{name: "JWT_ACCESS_TTL negative", envKey: "STEWARD_JWT_ACCESS_TTL", envVal: "-5m", errMsg: "STEWARD_JWT_ACCESS_TTL"},

		// Server timeouts
		{name: "SERVER_READ_TIMEOUT invalid", envKey: "STEWARD_SERVER_READ_TIMEOUT", envVal: "notduration", errMsg: "STEWARD_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT invalid", envKey: "STEWARD_SERVER_WRITE_TIMEOUT", envVal: "notduration", errMsg: "STEWARD_SERVER_WRITE_TIMEOUT"},
		{name: "SERVER_READ_TIMEOUT zero", envKey: "STEWARD_SERVER_READ_TIMEOUT", envVal: "0s", errMsg: "STEWARD_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT zero", envKey: "STEWARD_SERVER_WRITE_TIMEOUT", envVal: "0s", errMsg: "STEWARD_SERVER_WRITE_TIMEOUT"},

		// Redis DB
		{name: "REDIS_DB not a number", envKey: "STEWARD_REDIS_DB", envVal: "abc", errMsg: "STEWARD_REDIS_DB"},

		// Agent
		{name: "AGENT_MAX_TURNS zero", envKey: "STEWARD_AGENT_MAX_TURNS", envVal: "0", errMsg: "STEWARD_AGENT_MAX_TURNS"},
		{name: "AGENT_MAX_TURNS not a number", envKey: "STEWARD_AGENT_MAX_TURNS", envVal: "lots", errMsg: "STEWARD_AGENT_MAX_TURNS"},
		{name: "AGENT_TIMEOUT zero", envKey: "STEWARD_AGENT_TIMEOUT", envVal: "0s", errMsg: "STEWARD_AGENT_TIMEOUT"},
		{name: "AGENT_TIMEOUT invalid", envKey: "STEWARD_AGENT_TIMEOUT", envVal: "soon", errMsg: "STEWARD_AGENT_TIMEOUT"},

		// Session
		{name: "COMPACT_THRESHOLD zero", envKey: "STEWARD_SESSION_COMPACT_THRESHOLD", envVal: "0", errMsg: "STEWARD_SESSION_COMPACT_THRESHOLD"},

		// Rate limits
		{name: "RATE_MINUTE_LIMIT zero", envKey: "STEWARD_RATE_MINUTE_LIMIT", envVal: "0", errMsg: "STEWARD_RATE_MINUTE_LIMIT"},
		{name: "RATE_HOUR_LIMIT negative", envKey: "STEWARD_RATE_HOUR_LIMIT", envVal: "-1", errMsg: "STEWARD_RATE_HOUR_LIMIT"},
		{name: "RATE_DAY_LIMIT not a number", envKey: "STEWARD_RATE_DAY_LIMIT", envVal: "abc", errMsg: "STEWARD_RATE_DAY_LIMIT"},

		// History
		{name: "HISTORY_RETAIN zero", envKey: "STEWARD_HISTORY_RETAIN", envVal: "0", errMsg: "STEWARD_HISTORY_RETAIN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Always satisfy the required vars so failures are from the var
			// under test.
			t.Setenv("STEWARD_JWT_SECRET", "test-secret-for-error-cases-32ch!")
			t.Setenv("STEWARD_REPO_PATH", "/srv/repo")
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	// Only the required vars are set; everything else uses defaults.
	t.Setenv("STEWARD_JWT_SECRET", "my-dev-secret-at-least-32-chars!!")
	t.Setenv("STEWARD_REPO_PATH", "/srv/repo")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Database defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "steward", cfg.Database.User)
	assert.Empty(t, cfg.Database.Password)
	assert.Equal(t, "steward_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)

	// Redis defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	// JWT defaults.
	assert.Equal(t, "my-dev-secret-at-least-32-chars!!", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)

	// Server defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)

	// Slack defaults.
	assert.Empty(t, cfg.Slack.BotToken)
	assert.Empty(t, cfg.Slack.SigningSecret)

	// Agent defaults.
	assert.Equal(t, "claude", cfg.Agent.Binary)
	assert.Equal(t, 30, cfg.Agent.MaxTurns)
	assert.Equal(t, 2*time.Minute, cfg.Agent.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Agent.CompactTimeout)

	// Session and rate-limit defaults.
	assert.Equal(t, 20, cfg.Session.CompactThreshold)
	assert.Equal(t, 6, cfg.RateLimit.MinuteLimit)
	assert.Equal(t, 60, cfg.RateLimit.HourLimit)
	assert.Equal(t, 300, cfg.RateLimit.DayLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.NoticeCooldown)

	// History default.
	assert.Equal(t, 50, cfg.History.RetainPerCaller)
}

func TestLoad_AllCustomValues(t *testing.T) {
	envs := map[string]string{
		// Database
		"STEWARD_DB_HOST":      "db.prod.internal",
		"STEWARD_DB_PORT":      "5433",
		"STEWARD_DB_USER":      "prod_user",
		"STEWARD_DB_PASSWORD":  "s3cret!",
		"STEWARD_DB_NAME":      "steward_prod",
		"STEWARD_DB_SSLMODE":   "require",
		"STEWARD_DB_MAX_CONNS": "50",
		// Redis
		"STEWARD_REDIS_ADDR":     "redis.prod:6380",
		"STEWARD_REDIS_PASSWORD": "redis-pass",
		"STEWARD_REDIS_DB":       "3",
		// JWT
		"STEWARD_JWT_SECRET":     "prod-jwt-secret-256-bits-long!!!",
		"STEWARD_JWT_ACCESS_TTL": "30m",
		// Server
		"STEWARD_SERVER_ADDR":          ":9090",
		"STEWARD_SERVER_READ_TIMEOUT":  "5s",
		"STEWARD_SERVER_WRITE_TIMEOUT": "15s",
		// Slack
		"STEWARD_SLACK_BOT_TOKEN":      "xoxb-test",
		"STEWARD_SLACK_SIGNING_SECRET": "slack-sign",
		// Agent
		"STEWARD_AGENT_BINARY":          "/usr/local/bin/claude",
		"STEWARD_AGENT_MAX_TURNS":       "50",
		"STEWARD_AGENT_TIMEOUT":         "10m",
		"STEWARD_AGENT_COMPACT_TIMEOUT": "1m",
		// Repo
		"STEWARD_REPO_PATH": "/srv/managed-repo",
		// Session
		"STEWARD_SESSION_COMPACT_THRESHOLD": "40",
		// Rate limits
		"STEWARD_RATE_MINUTE_LIMIT":    "10",
		"STEWARD_RATE_HOUR_LIMIT":      "100",
		"STEWARD_RATE_DAY_LIMIT":       "500",
		"STEWARD_RATE_NOTICE_COOLDOWN": "2m",
		// History
		"STEWARD_HISTORY_RETAIN": "100",
	}

	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Database
	assert.Equal(t, "db.prod.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "prod_user", cfg.Database.User)
	assert.Equal(t, "s3cret!", cfg.Database.Password)
	assert.Equal(t, "steward_prod", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 50, cfg.Database.MaxConns)

	// Redis
	assert.Equal(t, "redis.prod:6380", cfg.Redis.Addr)
	assert.Equal(t, "redis-pass", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)

	// JWT
	assert.Equal(t, "prod-jwt-secret-256-bits-long!!!", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)

	// Server
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)

	// Slack
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
	assert.Equal(t, "slack-sign", cfg.Slack.SigningSecret)

	// Agent
	assert.Equal(t, "/usr/local/bin/claude", cfg.Agent.Binary)
	assert.Equal(t, 50, cfg.Agent.MaxTurns)
	assert.Equal(t, 10*time.Minute, cfg.Agent.Timeout)
	assert.Equal(t, time.Minute, cfg.Agent.CompactTimeout)

	// Repo
	assert.Equal(t, "/srv/managed-repo", cfg.Repo.Path)

	// Session and rate limits
	assert.Equal(t, 40, cfg.Session.CompactThreshold)
	assert.Equal(t, 10, cfg.RateLimit.MinuteLimit)
	assert.Equal(t, 100, cfg.RateLimit.HourLimit)
	assert.Equal(t, 500, cfg.RateLimit.DayLimit)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.NoticeCooldown)

	// History
	assert.Equal(t, 100, cfg.History.RetainPerCaller)
}

// ---------------------------------------------------------------------------
// RateLimitConfig.Windows()
// ---------------------------------------------------------------------------

func TestRateLimitConfig_Windows(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{MinuteLimit: 3, HourLimit: 30, DayLimit: 90}
	windows := cfg.Windows()

	require.Len(t, windows, 3)
	assert.Equal(t, "minute", windows[0].Name)
	assert.Equal(t, time.Minute, windows[0].Span)
	assert.Equal(t, 3, windows[0].Limit)
	assert.Equal(t, "hour", windows[1].Name)
	assert.Equal(t, 30, windows[1].Limit)
	assert.Equal(t, "day", windows[2].Name)
	assert.Equal(t, 24*time.Hour, windows[2].Span)
	assert.Equal(t, 90, windows[2].Limit)
}

// ---------------------------------------------------------------------------
// DSN() output format
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default dev values",
			cfg: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "steward",
				Password: "", DBName: "steward_dev", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=steward password= dbname=steward_dev sslmode=disable",
		},
		{
			name: "production values",
			cfg: DatabaseConfig{
				Host: "db.prod", Port: 5433, User: "admin",
				Password: "p@ss!", DBName: "steward_prod", SSLMode: "require",
			},
			want: "host=db.prod port=5433 user=admin password=p@ss! dbname=steward_prod sslmode=require",
		},
		{
			name: "special characters in password",
			cfg: DatabaseConfig{
				Host: "h", Port: 1, User: "u",
				Password: "p=a&b c", DBName: "d", SSLMode: "s",
			},
			want: "host=h port=1 user=u password=p=a&b c dbname=d sslmode=s",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	// validBase returns a Config that passes validation.
	validBase := func() *Config {
		return &Config{
			Database: DatabaseConfig{Port: 5432, MaxConns: 25, SSLMode: "require"},
			JWT: JWTConfig{
				Secret:    "test-secret-that-is-at-least-32ch",
				AccessTTL: 24 * time.Hour,
			},
			Server: ServerConfig{
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 5 * time.Minute,
			},
			Agent: AgentConfig{
				Binary:   "claude",
				MaxTurns: 30,
				Timeout:  2 * time.Minute,
			},
			Repo:      RepoConfig{Path: "/srv/repo"},
			Session:   SessionConfig{CompactThreshold: 20},
			RateLimit: RateLimitConfig{MinuteLimit: 6, HourLimit: 60, DayLimit: 300},
			History:   HistoryConfig{RetainPerCaller: 50},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validBase().validate())
	})

	t.Run("empty JWT secret fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = ""
		assert.ErrorContains(t, c.validate(), "STEWARD_JWT_SECRET")
	})

	t.Run("JWT secret too short fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = "only-31-characters-long-secret!"
		assert.ErrorContains(t, c.validate(), "STEWARD_JWT_SECRET")
	})

	t.Run("JWT secret exactly 32 chars passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.Secret = "exactly-32-characters-long-sec!!"
		assert.NoError(t, c.validate())
	})

	t.Run("empty repo path fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Repo.Path = ""
		assert.ErrorContains(t, c.validate(), "STEWARD_REPO_PATH")
	})

	t.Run("port 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_DB_PORT")
	})

	t.Run("port 65536 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 65536
		assert.ErrorContains(t, c.validate(), "STEWARD_DB_PORT")
	})

	t.Run("port 1 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 1
		assert.NoError(t, c.validate())
	})

	t.Run("port 65535 passes", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = 65535
		assert.NoError(t, c.validate())
	})

	t.Run("MaxConns 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.MaxConns = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_DB_MAX_CONNS")
	})

	t.Run("AccessTTL 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.JWT.AccessTTL = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_JWT_ACCESS_TTL")
	})

	t.Run("ReadTimeout 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Server.ReadTimeout = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_SERVER_READ_TIMEOUT")
	})

	t.Run("WriteTimeout negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Server.WriteTimeout = -time.Second
		assert.ErrorContains(t, c.validate(), "STEWARD_SERVER_WRITE_TIMEOUT")
	})

	t.Run("MaxTurns 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Agent.MaxTurns = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_AGENT_MAX_TURNS")
	})

	t.Run("agent timeout 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Agent.Timeout = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_AGENT_TIMEOUT")
	})

	t.Run("compact threshold 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Session.CompactThreshold = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_SESSION_COMPACT_THRESHOLD")
	})

	t.Run("minute limit 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.RateLimit.MinuteLimit = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_RATE_MINUTE_LIMIT")
	})

	t.Run("history retain 0 fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.History.RetainPerCaller = 0
		assert.ErrorContains(t, c.validate(), "STEWARD_HISTORY_RETAIN")
	})
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func strPtr(s string) *string {
	return &s
}
