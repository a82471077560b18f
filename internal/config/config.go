package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Lock       LockConfig       `yaml:"lock"`
	Cache      CacheConfig      `yaml:"cache"`
	Booking    BookingConfig    `yaml:"booking"`
	API        APIConfig        `yaml:"api"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Worker     WorkerConfig     `yaml:"worker"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	SeedPath   string           `yaml:"seed_path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path"`
	Mongo  MongoConfig `yaml:"mongo"`
}

type MongoConfig struct {
	URI          string        `yaml:"uri"`
	Database     string        `yaml:"database"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type RedisConfig struct {
	Address     string        `yaml:"address"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	PoolSize    int           `yaml:"pool_size"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	OpTimeout   time.Duration `yaml:"op_timeout"`
}

type LockConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type BookingConfig struct {
	MaxAdvanceDays int `yaml:"max_advance_days"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port         int           `yaml:"port"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type WorkerConfig struct {
	QueueSize     int           `yaml:"queue_size"`
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	DeadLetterKey string        `yaml:"dead_letter_key"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case DriverMongo:
		if c.Database.Mongo.URI == "" {
			return errors.New("database.mongo.uri is required")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Lock.TTL < time.Second {
		return fmt.Errorf("lock ttl %s is too short", c.Lock.TTL)
	}

	seen := make(map[string]bool)
	for _, k := range c.API.Auth.APIKeys {
		if strings.TrimSpace(k.Key) == "" {
			return fmt.Errorf("api key %q has empty key", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key for %q", k.Name)
		}
		seen[k.Key] = true
	}
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth is enabled but no api keys are configured")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "hotelbook"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Mongo.Database == "" {
		c.Database.Mongo.Database = "hotelbook"
	}
	if c.Database.Mongo.ReadTimeout == 0 {
		c.Database.Mongo.ReadTimeout = 5 * time.Second
	}
	if c.Database.Mongo.WriteTimeout == 0 {
		c.Database.Mongo.WriteTimeout = 10 * time.Second
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 2 * time.Second
	}
	if c.Redis.OpTimeout == 0 {
		c.Redis.OpTimeout = time.Second
	}
	if c.Lock.TTL == 0 {
		c.Lock.TTL = 30 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = 365
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.WriteTimeout == 0 {
		c.API.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Worker.QueueSize == 0 {
		c.Worker.QueueSize = 1000
	}
	if c.Worker.DeadLetterKey == "" {
		c.Worker.DeadLetterKey = "events:deadletter"
	}
}
