package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("HOTELBOOK_TEST_KEY", "secret-key")

	yamlContent := `
database:
  path: "test.db"
lock:
  ttl: 45s
cache:
  enabled: true
api:
  auth:
    enabled: true
    api_keys:
      - key: "${HOTELBOOK_TEST_KEY}"
        name: "frontend"
        permissions: ["bookings:read"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, 45*time.Second, cfg.Lock.TTL)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, "secret-key", cfg.API.Auth.APIKeys[0].Key)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	base := func() Config {
		c := Config{Database: DatabaseConfig{Path: "db.sqlite"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing sqlite path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "mongo without uri", mutate: func(c *Config) { c.Database.Driver = DriverMongo }, wantErr: true},
		{name: "mongo with uri", mutate: func(c *Config) {
			c.Database.Driver = DriverMongo
			c.Database.Mongo.URI = "mongodb://localhost:27017"
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "lock ttl too short", mutate: func(c *Config) { c.Lock.TTL = 10 * time.Millisecond }, wantErr: true},
		{name: "auth without keys", mutate: func(c *Config) { c.API.Auth.Enabled = true }, wantErr: true},
		{name: "duplicate keys", mutate: func(c *Config) {
			c.API.Auth.APIKeys = []APIClientKey{{Key: "a", Name: "x"}, {Key: "a", Name: "y"}}
		}, wantErr: true},
		{name: "kafka without topic", mutate: func(c *Config) { c.Kafka.Brokers = []string{"localhost:9092"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
