package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("SUPER_ADMIN_ID", "42")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.SuperAdminID)
	assert.Equal(t, StateDriverMemory, cfg.StateDriver)
	assert.Equal(t, 5, cfg.ReputationSolutionBonus)
	assert.Equal(t, "Europe/Moscow", cfg.AppTimezone)
	assert.Zero(t, cfg.StateTTL)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	require.NoError(t, os.Unsetenv("TELEGRAM_BOT_TOKEN"))
	t.Setenv("SUPER_ADMIN_ID", "42")
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		TelegramBotToken:        "token",
		SuperAdminID:            1,
		StorageDriver:           StorageDriverPostgres,
		DBPassword:              "secret",
		DBMaxConns:              10,
		DBMinConns:              2,
		StateDriver:             StateDriverRedis,
		BotWorkers:              4,
		BotQueueSize:            8,
		BotUpdateTimeoutSeconds: 60,
		RateLimitRequests:       10,
		RateLimitWindow:         60,
		TopUsersLimit:           5,
	}
	require.NoError(t, base.Validate())

	noPassword := base
	noPassword.DBPassword = ""
	assert.Error(t, noPassword.Validate())

	badDriver := base
	badDriver.StateDriver = "etcd"
	assert.Error(t, badDriver.Validate())

	badConns := base
	badConns.DBMinConns = 20
	assert.Error(t, badConns.Validate())

	noWorkers := base
	noWorkers.BotWorkers = 0
	assert.Error(t, noWorkers.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5432, DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DatabaseDSN())
}
