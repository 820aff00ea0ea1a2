package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid secret for tests that need Load to succeed.
const testSecret = "0123456789abcdef0123456789abcdef"

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
		{name: "returns fallback when unset", key: "WARDEN_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "WARDEN_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "WARDEN_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
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
		{name: "returns fallback when unset", key: "WARDEN_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "WARDEN_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "WARDEN_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "returns fallback for empty string", key: "WARDEN_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "WARDEN_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "WARDEN_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
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

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "WARDEN_TEST_BOOL_UNSET", setVal: nil, fallback: true, want: true},
		{name: "parses true", key: "WARDEN_TEST_BOOL_TRUE", setVal: strPtr("true"), fallback: false, want: true},
		{name: "parses false", key: "WARDEN_TEST_BOOL_FALSE", setVal: strPtr("false"), fallback: true, want: false},
		{name: "parses 1", key: "WARDEN_TEST_BOOL_ONE", setVal: strPtr("1"), fallback: false, want: true},
		{name: "errors on junk", key: "WARDEN_TEST_BOOL_JUNK", setVal: strPtr("yes please"), fallback: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvBool(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
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
		{name: "returns fallback when unset", key: "WARDEN_TEST_DUR_UNSET", setVal: nil, fallback: time.Minute, want: time.Minute},
		{name: "parses minutes", key: "WARDEN_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses compound", key: "WARDEN_TEST_DUR_COMPOUND", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses hours for long windows", key: "WARDEN_TEST_DUR_LONG", setVal: strPtr("720h"), fallback: 0, want: 720 * time.Hour},
		{name: "errors on bare number", key: "WARDEN_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
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

func TestGetEnvList(t *testing.T) {
	fallback := []string{"http://localhost:5173"}

	t.Run("returns fallback when unset", func(t *testing.T) {
		assert.Equal(t, fallback, getEnvList("WARDEN_TEST_LIST_UNSET", fallback))
	})

	t.Run("splits and trims", func(t *testing.T) {
		t.Setenv("WARDEN_TEST_LIST_SET", "https://a.example, https://b.example ,, ")
		got := getEnvList("WARDEN_TEST_LIST_SET", fallback)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, got)
	})
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_MissingJWTSecret(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WARDEN_JWT_SECRET")
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	t.Setenv("WARDEN_JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WARDEN_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "warden", cfg.Database.User)
	assert.Equal(t, "warden_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)

	assert.Empty(t, cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "noreply@localhost", cfg.SMTP.From)

	assert.Empty(t, cfg.Slack.BotToken)
	assert.Equal(t, "#moderation", cfg.Slack.Channel)

	assert.Equal(t, 30*24*time.Hour, cfg.Moderation.PurgeGrace)
	assert.Equal(t, 256, cfg.Moderation.NotifyBuffer)
	assert.Equal(t, time.Duration(0), cfg.Moderation.SweepInterval)

	assert.False(t, cfg.SelfHosted)
}

func TestLoad_AllCustomValues(t *testing.T) {
	t.Setenv("WARDEN_JWT_SECRET", testSecret)
	t.Setenv("WARDEN_DB_HOST", "db.internal")
	t.Setenv("WARDEN_DB_PORT", "5433")
	t.Setenv("WARDEN_DB_USER", "moderator")
	t.Setenv("WARDEN_DB_PASSWORD", "s3cret")
	t.Setenv("WARDEN_DB_NAME", "warden_prod")
	t.Setenv("WARDEN_DB_SSLMODE", "require")
	t.Setenv("WARDEN_DB_MAX_CONNS", "50")
	t.Setenv("WARDEN_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("WARDEN_REDIS_DB", "2")
	t.Setenv("WARDEN_JWT_ACCESS_TTL", "30m")
	t.Setenv("WARDEN_SERVER_ADDR", ":9090")
	t.Setenv("WARDEN_CORS_ORIGINS", "https://admin.example.com")
	t.Setenv("WARDEN_SMTP_HOST", "smtp.example.com")
	t.Setenv("WARDEN_SMTP_FROM", "moderation@example.com")
	t.Setenv("WARDEN_SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("WARDEN_SLACK_CHANNEL", "#ops")
	t.Setenv("WARDEN_PURGE_GRACE", "168h")
	t.Setenv("WARDEN_NOTIFY_BUFFER", "1024")
	t.Setenv("WARDEN_SWEEP_INTERVAL", "5m")
	t.Setenv("WARDEN_SELF_HOSTED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "moderator", cfg.Database.User)
	assert.Equal(t, "warden_prod", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, "moderation@example.com", cfg.SMTP.From)
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
	assert.Equal(t, "#ops", cfg.Slack.Channel)
	assert.Equal(t, 168*time.Hour, cfg.Moderation.PurgeGrace)
	assert.Equal(t, 1024, cfg.Moderation.NotifyBuffer)
	assert.Equal(t, 5*time.Minute, cfg.Moderation.SweepInterval)
	assert.True(t, cfg.SelfHosted)
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad db port", "WARDEN_DB_PORT", "not-a-port"},
		{"bad max conns", "WARDEN_DB_MAX_CONNS", "lots"},
		{"bad redis db", "WARDEN_REDIS_DB", "two"},
		{"bad access ttl", "WARDEN_JWT_ACCESS_TTL", "15"},
		{"bad purge grace", "WARDEN_PURGE_GRACE", "30 days"},
		{"bad sweep interval", "WARDEN_SWEEP_INTERVAL", "often"},
		{"bad self hosted", "WARDEN_SELF_HOSTED", "maybe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("WARDEN_JWT_SECRET", testSecret)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_BoundaryValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"db port zero", "WARDEN_DB_PORT", "0", "WARDEN_DB_PORT must be 1-65535"},
		{"db port too high", "WARDEN_DB_PORT", "70000", "WARDEN_DB_PORT must be 1-65535"},
		{"max conns zero", "WARDEN_DB_MAX_CONNS", "0", "WARDEN_DB_MAX_CONNS must be >= 1"},
		{"access ttl zero", "WARDEN_JWT_ACCESS_TTL", "0s", "WARDEN_JWT_ACCESS_TTL must be positive"},
		{"read timeout zero", "WARDEN_SERVER_READ_TIMEOUT", "0s", "WARDEN_SERVER_READ_TIMEOUT must be positive"},
		{"smtp port zero", "WARDEN_SMTP_PORT", "0", "WARDEN_SMTP_PORT must be 1-65535"},
		{"purge grace zero", "WARDEN_PURGE_GRACE", "0s", "WARDEN_PURGE_GRACE must be positive"},
		{"notify buffer zero", "WARDEN_NOTIFY_BUFFER", "0", "WARDEN_NOTIFY_BUFFER must be >= 1"},
		{"negative sweep", "WARDEN_SWEEP_INTERVAL", "-1m", "WARDEN_SWEEP_INTERVAL must not be negative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("WARDEN_JWT_SECRET", testSecret)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// DSN
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "moderator",
		Password: "s3cret",
		DBName:   "warden_prod",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=moderator password=s3cret dbname=warden_prod sslmode=require",
		db.DSN())
}

func strPtr(s string) *string {
	return &s
}
