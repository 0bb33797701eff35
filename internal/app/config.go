package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (BAKESHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr           string `default:"0.0.0.0:8080" usage:"HTTP server listen address"`
	DatabaseURL    string `usage:"PostgreSQL connection URL (BAKESHOP_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	UploadDir      string `default:"uploads" usage:"Directory for uploaded product images" flag:"upload-dir"`
	MaxUploadBytes int64  `default:"16777216" usage:"Maximum request body size in bytes" flag:"max-upload-bytes"`
	AdminUsername  string `default:"admin" usage:"Admin login username" flag:"admin-username"`
	AdminPassword  string `usage:"Admin login password (BAKESHOP_ADMIN_PASSWORD)" flag:"admin-password"`
	Session        SessionConfig
	RateLimit      RateLimitConfig
	Graceful       GracefulConfig
}

// SessionConfig controls the in-memory session store.
type SessionConfig struct {
	TTL             time.Duration `default:"24h" usage:"Idle session lifetime"`
	CleanupInterval time.Duration `default:"10m" usage:"Expired session eviction interval" flag:"session-cleanup-interval"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"300" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BAKESHOP",
		Files:     []string{"config.yaml", "/etc/bakeshop/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set BAKESHOP_DATABASE_URL or DATABASE_URL")
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("admin password is required: set BAKESHOP_ADMIN_PASSWORD")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's BAKESHOP_-prefixed configuration.
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
