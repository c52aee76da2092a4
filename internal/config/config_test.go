package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"API_PORT", "LOG_LEVEL", "SESSION_TABLE", "BOOKED_BY", "TIMEZONE", "INSERT_TIMEOUT", "SESSION_TTL", "AUTO_MIGRATE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "session-table", cfg.SessionTable)
	assert.Equal(t, 0, cfg.BookedBy)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, "3 sal", cfg.DefaultFloor)
	assert.Equal(t, 10*time.Second, cfg.InsertTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("BOOKED_BY", "12")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("INSERT_TIMEOUT", "2s")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("TIMEZONE", "UTC")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 12, cfg.BookedBy)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 2*time.Second, cfg.InsertTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLocation_Invalid(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	_, err := cfg.Location()
	assert.ErrorContains(t, err, "invalid TIMEZONE")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_TABLE=dev-sessions\n"), 0o600))

	os.Unsetenv("SESSION_TABLE")
	t.Cleanup(func() { os.Unsetenv("SESSION_TABLE") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "dev-sessions", Load().SessionTable)
}
