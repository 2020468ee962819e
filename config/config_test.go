package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv(t *testing.T) {
	t.Setenv("EVENTHALL_APP_TIMEZONE", "UTC")
	t.Setenv("EVENTHALL_DATABASE_URL", "postgres://localhost/eventhall")
	t.Setenv("EVENTHALL_JWT_SECRET", "a-very-long-secret-for-testing-only")
}

func TestLoadDefaults(t *testing.T) {
	baseEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "eventhall", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, int64(1), cfg.App.NodeID)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 60*time.Minute, cfg.JWT.Expiry)
	assert.Equal(t, "eventhall", cfg.JWT.Issuer)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Finance.LaborInExpenses)
	assert.True(t, cfg.Reminders.Enabled)
	assert.Equal(t, "@every 1m", cfg.Reminders.Schedule)
	assert.False(t, cfg.Twilio.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("EVENTHALL_APP_TIMEZONE", "UTC")
	t.Setenv("DB_URL", "postgres://legacy/eventhall")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("PORT", "9000")
	t.Setenv("EVENTHALL_HTTP_CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "postgres://legacy/eventhall", cfg.Database.URL)
	assert.Equal(t, "legacy-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowOrigins)
}

func TestLoadConfigFile(t *testing.T) {
	baseEnv(t)
	dir := t.TempDir()
	yaml := `
app:
  env: production
database:
  driver: sqlite
finance:
  labor_in_expenses: false
reminders:
  schedule: "*/5 * * * *"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Finance.LaborInExpenses)
	assert.Equal(t, "*/5 * * * *", cfg.Reminders.Schedule)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("EVENTHALL_APP_TIMEZONE", "UTC")
		t.Setenv("EVENTHALL_DATABASE_URL", "postgres://localhost/eventhall")
		t.Setenv("EVENTHALL_JWT_SECRET", "")
		t.Setenv("JWT_SECRET", "")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "jwt secret is required")
	})

	t.Run("short secret in production", func(t *testing.T) {
		baseEnv(t)
		t.Setenv("EVENTHALL_APP_ENV", "production")
		t.Setenv("EVENTHALL_JWT_SECRET", "short")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "at least 32 characters")
	})

	t.Run("unknown driver", func(t *testing.T) {
		baseEnv(t)
		t.Setenv("EVENTHALL_DATABASE_DRIVER", "mysql")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}
