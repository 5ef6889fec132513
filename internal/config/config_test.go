package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "sql", cfg.CatalogBackend)
	assert.Equal(t, "memory", cfg.CartBackend)
	assert.Equal(t, 0.15, cfg.TaxRate)
	assert.Equal(t, 10*time.Second, cfg.PaymentVerifyTimeout)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CART_BACKEND", "redis")
	t.Setenv("PAYMENT_VERIFY_TIMEOUT", "3s")
	t.Setenv("TAX_RATE", "0.18")

	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.CartBackend)
	assert.Equal(t, 3*time.Second, cfg.PaymentVerifyTimeout)
	assert.Equal(t, 0.18, cfg.TaxRate)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \":9090\"\nLOG_LEVEL: debug\n"), 0o600))

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = config.Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := config.Load(viper.New(), "")
	assert.ErrorContains(t, err, "invalid configuration")
}
