package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "erpbridge", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "erpbridge", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 2*time.Minute, cfg.Redis.LockTTL)
		assert.False(t, cfg.ErpBatch.Enabled)
		assert.Equal(t, 3, cfg.ErpBatch.Workers)
		assert.Equal(t, time.Minute, cfg.ErpBatch.CheckInterval)
		assert.Equal(t, "https://oapi%s.ecount.com", cfg.Ecount.BaseURLFormat)
		assert.Equal(t, map[string]string{"COUPANG": "0.033"}, cfg.Commission.DeliveryRates)
		assert.Equal(t, map[string]string{"NAVER": "67"}, cfg.Commission.DeliveryFlats)
	})

	t.Run("loads values from environment variables with ERPB prefix", func(t *testing.T) {
		t.Setenv("ERPB_APP_NAME", "test-app")
		t.Setenv("ERPB_APP_PORT", "9000")
		t.Setenv("ERPB_DATABASE_HOST", "testdb.local")
		t.Setenv("ERPB_DATABASE_PORT", "5433")
		t.Setenv("ERPB_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("ERPB_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("ERPB_ERP_BATCH_ENABLED", "true")
		t.Setenv("ERPB_ERP_BATCH_HOUR", "4")
		t.Setenv("ERPB_ERP_BATCH_MINUTE", "30")
		t.Setenv("ERPB_ECOUNT_TIMEOUT", "10s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.ErpBatch.Enabled)
		assert.Equal(t, 4, cfg.ErpBatch.Hour)
		assert.Equal(t, 30, cfg.ErpBatch.Minute)
		assert.Equal(t, 10*time.Second, cfg.Ecount.Timeout)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("ERPB_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("ERPB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates batch hour", func(t *testing.T) {
		t.Setenv("ERPB_ERP_BATCH_HOUR", "24")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "erp_batch.hour")
	})
}

func TestFromViper_TOML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[erp_batch]
enabled = true
hour = 3
minute = 15
workers = 5
job_timeout = "10m"

[commission.delivery_rates]
COUPANG = "0.05"

[commission.delivery_flats]
NAVER = "100"
ELEVEN_ST = "50"
`)))

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.True(t, cfg.ErpBatch.Enabled)
	assert.Equal(t, 3, cfg.ErpBatch.Hour)
	assert.Equal(t, 15, cfg.ErpBatch.Minute)
	assert.Equal(t, 5, cfg.ErpBatch.Workers)
	assert.Equal(t, 10*time.Minute, cfg.ErpBatch.JobTimeout)
	// viper lower-cases map keys
	assert.Equal(t, "0.05", cfg.Commission.DeliveryRates["coupang"])
	assert.Equal(t, "100", cfg.Commission.DeliveryFlats["naver"])
	assert.Equal(t, "50", cfg.Commission.DeliveryFlats["eleven_st"])
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("ERPB_APP_ENV", "production")
		t.Setenv("ERPB_DATABASE_PASSWORD", "secure-password")
		t.Setenv("ERPB_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		t.Setenv("ERPB_APP_ENV", "production")
		t.Setenv("ERPB_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ERPB_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects full SQL logging in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("ERPB_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
