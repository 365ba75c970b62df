package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/salary-engine/store/sqlite"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil, env(nil))
	require.NoError(t, err)

	assert.Equal(t, Config{Port: 8080, DBPath: "salary.db", CacheTTL: 10 * time.Minute}, cfg)
}

func TestParseConfig_EnvThenFlags(t *testing.T) {
	vars := map[string]string{
		"PORT":           "9090",
		"DATABASE_PATH":  ":memory:",
		"REDIS_ADDR":     "localhost:6379",
		"CITY_CACHE_TTL": "30s",
		"CITY_SEED":      "standard",
		"LOG_DEV":        "true",
	}

	cfg, err := parseConfig(nil, env(vars))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "standard", cfg.Seed)
	assert.True(t, cfg.Dev)

	cfg, err = parseConfig([]string{"-port", "3000", "-redis", "", "-dev=false"}, env(vars))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.Dev)
}

func TestParseConfig_Invalid(t *testing.T) {
	for name, vars := range map[string]map[string]string{
		"port":    {"PORT": "http"},
		"ttl":     {"CITY_CACHE_TTL": "ten minutes"},
		"log dev": {"LOG_DEV": "maybe"},
		"range":   {"PORT": "70000"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseConfig(nil, env(vars))
			assert.Error(t, err)
		})
	}

	_, err := parseConfig([]string{"-nope"}, env(nil))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SALARY_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SALARY_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("SALARY_TEST_DOTENV"))
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, applySeed(ctx, store, ""))
	records, err := store.ListCityTax(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, applySeed(ctx, store, "standard"))
	records, err = store.ListCityTax(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 24)

	assert.Error(t, applySeed(ctx, store, filepath.Join(t.TempDir(), "missing.json")))
}
