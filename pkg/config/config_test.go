package config

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:          "8080",
		Env:           "development",
		StoreDriver:   StoreMongo,
		MongoURI:      "mongodb://localhost:27017",
		JWTSecret:     "secure-secret-at-least-32-chars-long",
		SessionTTL:    time.Hour,
		RefreshTTL:    time.Minute,
		PostMaxLength: 200,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero refresh ttl", func(c *Config) { c.RefreshTTL = 0 }, true},
		{"zero post length", func(c *Config) { c.PostMaxLength = 0 }, true},
		{"unknown store driver", func(c *Config) { c.StoreDriver = "cassandra" }, true},
		{"postgres without url", func(c *Config) { c.StoreDriver = StorePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.StoreDriver = StorePostgres
			c.PostgresUrl = "postgres://localhost/acebook"
		}, false},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"production strong secret", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("POSTGRES_URL", "postgres://localhost/acebook")
	t.Setenv("REFRESH_TTL", "15m")
	t.Setenv("POST_MAX_LENGTH", "2000")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, StorePostgres, c.StoreDriver)
	assert.Equal(t, 15*time.Minute, c.RefreshTTL)
	assert.Equal(t, 168*time.Hour, c.SessionTTL)
	assert.Equal(t, 2000, c.PostMaxLength)
	assert.False(t, c.TrustProxy)
}

func TestConfig_Origins(t *testing.T) {
	c := &Config{AllowedOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Origins())
}

func TestIPExtractor(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		remoteAddr string
		want       string
	}{
		{name: "direct ignores forwarded header", remoteAddr: "203.0.113.9:4000", want: "203.0.113.9"},
		{name: "proxy from private peer", trustProxy: true, remoteAddr: "10.0.0.2:4000", want: "198.51.100.7"},
		{name: "proxy from public peer", trustProxy: true, remoteAddr: "203.0.113.9:4000", want: "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("X-Forwarded-For", "198.51.100.7")
			req.Header.Set("X-Real-IP", "198.51.100.8")
			assert.Equal(t, tt.want, IPExtractor(tt.trustProxy)(req))
		})
	}
}
