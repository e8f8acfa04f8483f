package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env string `mapstructure:"BLOG_ENV"`

	HTTP       HTTPConfig       `mapstructure:",squash"`
	Database   DBConfig         `mapstructure:",squash"`
	Cache      CacheConfig      `mapstructure:",squash"`
	Translator TranslatorConfig `mapstructure:",squash"`
	Media      MediaConfig      `mapstructure:",squash"`
	Auth       AuthConfig       `mapstructure:",squash"`
	Events     EventsConfig     `mapstructure:",squash"`
	Security   SecurityConfig   `mapstructure:",squash"`
}

type HTTPConfig struct {
	Addr      string `mapstructure:"BLOG_HTTP_ADDR"`
	PublicURL string `mapstructure:"BLOG_PUBLIC_URL"`

	// A translated save makes one upstream call per field.
	RequestTimeout time.Duration `mapstructure:"BLOG_HTTP_REQUEST_TIMEOUT"`
}

type DBConfig struct {
	Backend      string `mapstructure:"BLOG_DB_BACKEND"` // "memory" or "postgres"
	PostgresDSN  string `mapstructure:"BLOG_POSTGRES_DSN"`
	MaxConns     int32  `mapstructure:"BLOG_POSTGRES_MAX_CONNS"`
	AutoMigrate  bool   `mapstructure:"BLOG_DB_AUTO_MIGRATE"`
	SeedFixtures bool   `mapstructure:"BLOG_SEED_FIXTURES"`
}

type CacheConfig struct {
	RedisAddr string        `mapstructure:"BLOG_REDIS_ADDR"`
	TTL       time.Duration `mapstructure:"BLOG_CACHE_TTL"`
}

type TranslatorConfig struct {
	Endpoint string        `mapstructure:"BLOG_TRANSLATOR_ENDPOINT"`
	Key      string        `mapstructure:"BLOG_TRANSLATOR_KEY"`
	Region   string        `mapstructure:"BLOG_TRANSLATOR_REGION"`
	Timeout  time.Duration `mapstructure:"BLOG_TRANSLATOR_TIMEOUT"`
}

type MediaConfig struct {
	Dir        string `mapstructure:"BLOG_MEDIA_DIR"`
	PublicBase string `mapstructure:"BLOG_MEDIA_PUBLIC_BASE"`
	MaxBytes   int64  `mapstructure:"BLOG_MEDIA_MAX_BYTES"`
}

type AuthConfig struct {
	SessionTTL    time.Duration `mapstructure:"BLOG_SESSION_TTL"`
	CookieName    string        `mapstructure:"BLOG_SESSION_COOKIE"`
	SecureCookies bool          `mapstructure:"BLOG_SESSION_SECURE"`

	// Dev seeding only; see BLOG_SEED_FIXTURES.
	AdminEmail    string `mapstructure:"BLOG_ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"BLOG_ADMIN_PASSWORD"`
}

type EventsConfig struct {
	AMQPURL    string `mapstructure:"BLOG_AMQP_URL"`
	Exchange   string `mapstructure:"BLOG_AMQP_EXCHANGE"`
	RoutingKey string `mapstructure:"BLOG_AMQP_ROUTING_KEY"`
	Queue      string `mapstructure:"BLOG_AMQP_QUEUE"`

	// 0 disables the dashboard stats publisher.
	StatsInterval time.Duration `mapstructure:"BLOG_STATS_INTERVAL"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"BLOG_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"BLOG_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("backend", ".env"),
		filepath.Join("..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // variables already set take precedence
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BLOG_ENV", "dev")
	v.SetDefault("BLOG_HTTP_ADDR", ":8080")
	v.SetDefault("BLOG_PUBLIC_URL", "http://localhost:3000")
	v.SetDefault("BLOG_HTTP_REQUEST_TIMEOUT", "2m")

	v.SetDefault("BLOG_DB_BACKEND", "memory")
	v.SetDefault("BLOG_POSTGRES_DSN", "")
	v.SetDefault("BLOG_POSTGRES_MAX_CONNS", 10)
	v.SetDefault("BLOG_DB_AUTO_MIGRATE", true)
	v.SetDefault("BLOG_SEED_FIXTURES", false)

	v.SetDefault("BLOG_REDIS_ADDR", "")
	v.SetDefault("BLOG_CACHE_TTL", "5m")

	v.SetDefault("BLOG_TRANSLATOR_ENDPOINT", "https://api.cognitive.microsofttranslator.com/translate")
	v.SetDefault("BLOG_TRANSLATOR_KEY", "")
	v.SetDefault("BLOG_TRANSLATOR_REGION", "")
	v.SetDefault("BLOG_TRANSLATOR_TIMEOUT", "30s")

	v.SetDefault("BLOG_MEDIA_DIR", "./media")
	v.SetDefault("BLOG_MEDIA_PUBLIC_BASE", "/media")
	v.SetDefault("BLOG_MEDIA_MAX_BYTES", 5*1024*1024)

	v.SetDefault("BLOG_SESSION_TTL", "24h")
	v.SetDefault("BLOG_SESSION_COOKIE", "blog_session")
	v.SetDefault("BLOG_SESSION_SECURE", false)
	v.SetDefault("BLOG_ADMIN_EMAIL", "")
	v.SetDefault("BLOG_ADMIN_PASSWORD", "")

	v.SetDefault("BLOG_AMQP_URL", "")
	v.SetDefault("BLOG_AMQP_EXCHANGE", "blog.events")
	v.SetDefault("BLOG_AMQP_ROUTING_KEY", "blog.event")
	v.SetDefault("BLOG_AMQP_QUEUE", "blog.events")
	v.SetDefault("BLOG_STATS_INTERVAL", "30s")

	v.SetDefault("BLOG_RATE_LIMIT_RPM", 120)
	v.SetDefault("BLOG_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

// Load reads .env files and the environment.
func Load() (*Config, error) {
	loadDotEnvFiles()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// comma-separated lists
	if origins := v.GetString("BLOG_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("BLOG_CORS_ALLOWED_ORIGINS", splitList(origins))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Backend = strings.ToLower(strings.TrimSpace(cfg.Database.Backend))
	cfg.Media.PublicBase = strings.TrimRight(cfg.Media.PublicBase, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Database.Backend {
	case "memory":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("BLOG_POSTGRES_DSN is required when BLOG_DB_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("invalid BLOG_DB_BACKEND %q (must be memory or postgres)", c.Database.Backend)
	}
	if c.Media.MaxBytes <= 0 {
		return fmt.Errorf("BLOG_MEDIA_MAX_BYTES must be positive")
	}
	if c.Auth.SessionTTL < time.Minute {
		return fmt.Errorf("BLOG_SESSION_TTL must be at least one minute")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("BLOG_CACHE_TTL must be positive")
	}
	if c.Security.RateLimitRPM <= 0 {
		return fmt.Errorf("BLOG_RATE_LIMIT_RPM must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
