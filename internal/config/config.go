package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	JWT struct {
		Secret      string `yaml:"secret"`
		ExpiryHours int    `yaml:"expiry_hours"`
	} `yaml:"jwt"`

	Store struct {
		// TimeoutSeconds bounds every remote record store call.
		TimeoutSeconds int `yaml:"timeout_seconds"`
		// CacheTTLSeconds is the read-through query cache TTL.
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"store"`

	Notify struct {
		// DebounceMillis is the per-topic suppression window.
		DebounceMillis int `yaml:"debounce_millis"`
	} `yaml:"notify"`

	Fallback struct {
		// SeedFile optionally overrides the built-in sample data.
		SeedFile string `yaml:"seed_file"`
	} `yaml:"fallback"`

	envFiles []string
}

// Load merges dotenv files into the environment, reads a YAML config
// file and applies environment overrides, in that order. An empty path
// derives the file from APP_ENV.
func Load(path string) (*Config, error) {
	cfg := defaults()
	cfg.envFiles = loadEnvFiles()

	if path == "" {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "local"
		}
		path = fmt.Sprintf("configs/config.%s.yaml", env)
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	return cfg, nil
}

// loadEnvFiles merges .env.local and .env into the process
// environment. godotenv never overwrites a variable that is already
// set, so real environment variables always win and .env.local wins
// over .env. Returns the files that were actually read.
func loadEnvFiles() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// EnvFiles lists the dotenv files merged during Load
func (c *Config) EnvFiles() []string { return c.envFiles }

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8082
	cfg.Server.Env = "local"
	cfg.Database.Port = 3306
	cfg.Redis.Port = 6379
	cfg.Redis.PoolSize = 10
	cfg.JWT.ExpiryHours = 24
	cfg.Store.TimeoutSeconds = 15
	cfg.Store.CacheTTLSeconds = 30
	cfg.Notify.DebounceMillis = 1500
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Server.Env, "APP_ENV")
	overrideInt(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideInt(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Name, "DB_NAME")
	overrideString(&cfg.Redis.Host, "REDIS_HOST")
	overrideInt(&cfg.Redis.Port, "REDIS_PORT")
	overrideString(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideString(&cfg.JWT.Secret, "JWT_SECRET")
	overrideInt(&cfg.Store.TimeoutSeconds, "STORE_TIMEOUT_SECONDS")
	overrideInt(&cfg.Notify.DebounceMillis, "NOTIFY_DEBOUNCE_MILLIS")
	overrideString(&cfg.Fallback.SeedFile, "FALLBACK_SEED_FILE")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// DSN builds the MySQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

// RedisAddr builds the redis host:port address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// StoreTimeout returns the bounded per-call store timeout
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// DebounceWindow returns the notification debounce window
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Notify.DebounceMillis) * time.Millisecond
}
