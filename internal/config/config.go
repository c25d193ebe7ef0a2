package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Draft storage backends.
const (
	DraftBackendRedis  = "redis"
	DraftBackendMemory = "memory"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Draft    DraftConfig    `mapstructure:"draft"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	SecureCookie bool   `mapstructure:"secure_cookie"` // Mark the session cookie Secure (HTTPS only)
	ReleaseMode  bool   `mapstructure:"release_mode"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether exercise image storage is configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"` // Duration string in config, e.g. "60m"
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DraftConfig controls where in-progress workouts live.
type DraftConfig struct {
	Backend string        `mapstructure:"backend"` // "redis" or "memory"
	TTL     time.Duration `mapstructure:"ttl"`     // Refreshed on every write
}

type CatalogConfig struct {
	PageSize int  `mapstructure:"page_size"`
	Seed     bool `mapstructure:"seed"` // Insert the built-in exercises into an empty catalog
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map to env vars, e.g. server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file: rely on defaults and env vars
		err = nil
	} else if err != nil {
		return
	}

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"jwt.secret", "redis.password", "s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket_name"} {
		if bindErr := v.BindEnv(key); bindErr != nil {
			return config, bindErr
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	config.Draft.Backend = strings.ToLower(strings.TrimSpace(config.Draft.Backend))
	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.secure_cookie", false)
	v.SetDefault("server.release_mode", false)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitsho")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("draft.backend", DraftBackendRedis)
	v.SetDefault("draft.ttl", "12h")
	v.SetDefault("catalog.page_size", 20)
	v.SetDefault("catalog.seed", true)
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	switch c.Draft.Backend {
	case DraftBackendRedis, DraftBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("draft.backend must be %q or %q, got %q", DraftBackendRedis, DraftBackendMemory, c.Draft.Backend))
	}
	if c.Draft.TTL <= 0 {
		errs = append(errs, errors.New("draft.ttl must be positive"))
	}
	if c.Catalog.PageSize <= 0 || c.Catalog.PageSize > 100 {
		errs = append(errs, errors.New("catalog.page_size must be between 1 and 100"))
	}
	if c.Draft.Backend == DraftBackendRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required for the redis draft backend"))
	}
	return errors.Join(errs...)
}
