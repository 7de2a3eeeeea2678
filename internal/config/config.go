package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DBMaxConns        int           `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int           `mapstructure:"DB_MIN_CONNS"`
	DBMaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	JWTSecret         []byte        `mapstructure:"-"`
	CORSOrigins       []string      `mapstructure:"-"`
	RequestTimeoutSec int           `mapstructure:"REQUEST_TIMEOUT_SEC"`
	// Redis é opcional: sem REDIS_ADDR o cache fica em memória.
	RedisAddr              string `mapstructure:"REDIS_ADDR"`
	RedisPassword          string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int    `mapstructure:"REDIS_DB"`
	CacheTTLSec            int    `mapstructure:"CACHE_TTL_SEC"`
	RateLimitPerMin        int    `mapstructure:"RATE_LIMIT_PER_MIN"`
	TrustProxy             bool   `mapstructure:"TRUST_PROXY"`
	DefaultDurationMinutes int    `mapstructure:"DEFAULT_DURATION_MINUTES"`
	Timezone               string `mapstructure:"TIMEZONE"`
}

const devJWTSecret = "default-secret-min-32-chars-required!!"

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_CONN_LIFETIME", "30m")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("REQUEST_TIMEOUT_SEC", 30)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SEC", 30)
	v.SetDefault("RATE_LIMIT_PER_MIN", 300)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("DEFAULT_DURATION_MINUTES", 50)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	jwtSecret := v.GetString("JWT_SECRET")
	if len(jwtSecret) < 32 {
		jwtSecret = devJWTSecret
	}
	cfg.JWTSecret = []byte(jwtSecret)
	for _, o := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if t := strings.TrimSpace(o); t != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, t)
		}
	}
	if cfg.DefaultDurationMinutes <= 0 {
		cfg.DefaultDurationMinutes = 50
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Location returns the clinic timezone, falling back to UTC when TIMEZONE is invalid.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
