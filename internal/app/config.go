package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Config holds the complete application configuration, loadable from
// environment variables (FOOD_ prefix), a .env file, flags, or YAML config
// files.
type Config struct {
	Addr        string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string        `usage:"PostgreSQL connection URL for the catalog and promotions (FOOD_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SeedFile    string        `usage:"JSON or .json.gz seed file for the in-memory catalog; built-in sample data when empty" flag:"seed-file"`
	Timezone    string        `default:"Local" usage:"IANA time zone for order timestamps and daily analytics" flag:"timezone"`
	LeadTime    time.Duration `default:"45m" usage:"Estimated time from placement to delivery" flag:"lead-time"`
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Jobs        JobsConfig
	Graceful    GracefulConfig
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*"     usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentialed cross-origin requests" flag:"cors-credentials"`
}

// RateLimitConfig controls the per-client fixed window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window, 0 disables limiting"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// JobsConfig holds cron schedules with a leading seconds field. An empty
// schedule disables the job.
type JobsConfig struct {
	AnalyticsReport string `default:"0 */15 * * * *" usage:"Schedule of the analytics report" flag:"analytics-report-schedule"`
	PromotionFilter string `default:"0 */5 * * * *"  usage:"Schedule of the promotion code filter refresh (Postgres only)" flag:"promotion-filter-schedule"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from a .env file, environment variables,
// flags and YAML config files, and applies platform-specific defaults.
// Variables already set in the environment win over .env entries.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		Files: []string{"config.yaml", "/etc/food/config.yaml"},
	})
}

func loadConfig(base aconfig.Config) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	base.EnvPrefix = "FOOD"
	base.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, base)
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.LeadTime <= 0 {
		return nil, errors.Errorf("lead time must be positive, got %s", cfg.LeadTime)
	}
	return &cfg, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", c.Timezone)
	}
	return loc, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's FOOD_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
