package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "supersecretjwtkey"

// Store drivers accepted by STORE_DRIVER
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"APP_ENV"`
	StoreDriver             string        `mapstructure:"STORE_DRIVER"`
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DATABASE"`
	PostgresUrl             string        `mapstructure:"POSTGRES_URL"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	SessionTTL              time.Duration `mapstructure:"SESSION_TTL"`
	RefreshTTL              time.Duration `mapstructure:"REFRESH_TTL"`
	PostMaxLength           int           `mapstructure:"POST_MAX_LENGTH"`
	BodyLimit               string        `mapstructure:"BODY_LIMIT"`
	DefaultProfileImage     string        `mapstructure:"DEFAULT_PROFILE_IMAGE"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	AuthRateLimit           int           `mapstructure:"AUTH_RATE_LIMIT"`
	FirebaseCredentialsPath string        `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	MetricsPort             string        `mapstructure:"METRICS_PORT"`
	AllowedOrigins          string        `mapstructure:"ALLOWED_ORIGINS"`
	TrustProxy              bool          `mapstructure:"TRUST_PROXY"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "acebook")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("REFRESH_TTL", "10m")
	v.SetDefault("POST_MAX_LENGTH", 200)
	v.SetDefault("BODY_LIMIT", "10M")
	v.SetDefault("DEFAULT_PROFILE_IMAGE", "/images/default-profile.png")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRUST_PROXY", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks required values and production-only secret rules.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.SessionTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("SESSION_TTL and REFRESH_TTL must be positive")
	}
	if c.PostMaxLength <= 0 {
		return errors.New("POST_MAX_LENGTH must be positive")
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	case StorePostgres:
		if c.PostgresUrl == "" {
			return errors.New("POSTGRES_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Origins splits ALLOWED_ORIGINS into a list for the CORS middleware.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
