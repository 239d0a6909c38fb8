package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoad(t *testing.T, files ...string) (*Config, error) {
	t.Helper()
	return loadConfig(aconfig.Config{SkipFlags: true, Files: files})
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := testLoad(t)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 45*time.Minute, cfg.LeadTime)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.False(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "0 */15 * * * *", cfg.Jobs.AnalyticsReport)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
}

func TestLoadConfig_EnvAndPlatform(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FOOD_TIMEZONE", "Asia/Kolkata")
	t.Setenv("FOOD_RATE_LIMIT_MAX", "5")
	t.Setenv("FOOD_CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/food")
	t.Setenv("PORT", "9000")

	cfg, err := testLoad(t)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "postgres://localhost/food", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.Origins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadConfig_DotEnvAndYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	// godotenv sets the variable in the process environment.
	t.Cleanup(func() { os.Unsetenv("FOOD_SEED_FILE") })

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOOD_SEED_FILE=catalog.json.gz\n"), 0o600))
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("addr: 127.0.0.1:7070\nlead_time: 30m\n"), 0o600))

	cfg, err := testLoad(t, cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "catalog.json.gz", cfg.SeedFile)
	assert.Equal(t, "127.0.0.1:7070", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.LeadTime)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("FOOD_TIMEZONE", "Mars/Olympus")
	_, err := testLoad(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")

	t.Setenv("FOOD_TIMEZONE", "UTC")
	t.Setenv("FOOD_LEAD_TIME", "-1m")
	_, err = testLoad(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead time")
}
