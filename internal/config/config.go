// Package config loads backend settings from environment variables, an
// optional .env file and an optional configs/config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	// StorageS3 stores references in an S3 compatible bucket
	StorageS3 = "s3"
	// StorageGCS stores references in Google Cloud Storage
	StorageGCS = "gcs"
	// StorageMemory keeps references in process memory, for local development only
	StorageMemory = "memory"
)

// Config holds runtime settings of the backend
type Config struct {
	Port         int
	AllowOrigins []string
	GinMode      string

	DB DBConfig

	SecretKey     string
	TokenDuration time.Duration
	AdminUsername string
	AdminPassword string

	Storage StorageConfig

	RateLimitPerSecond uint
	OrphanSweepCron    string
	OrphanGracePeriod  time.Duration

	LogLevel    string
	LogFormat   string
	AuthLogging bool
	AuthLogFile string
}

// DBConfig holds the parameters for connecting to PostgreSQL
type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	ConnectionStr string
	UseConnStr    bool
}

// StorageConfig selects and configures the object storage backend
type StorageConfig struct {
	Driver             string
	Bucket             string
	S3Region           string
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	S3UsePathStyle     bool
	GCSCredentialsFile string
	DownloadURLTTL     time.Duration
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() (string, error) {
	if d.UseConnStr {
		if d.ConnectionStr == "" {
			return "", errors.New("DB_CONNECTION_STR is empty")
		}
		return d.ConnectionStr, nil
	}
	if d.Host == "" || d.Port == "" || d.User == "" || d.Password == "" || d.DBName == "" {
		return "", errors.New("database configuration is incomplete")
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.DBName), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("ALLOW_ORIGIN", "http://localhost:3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("USE_CONNECTION_STR", false)
	v.SetDefault("TOKEN_DURATION", time.Hour)
	v.SetDefault("STORAGE_DRIVER", StorageS3)
	v.SetDefault("STORAGE_BUCKET", "article-references")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_PATH_STYLE", true)
	v.SetDefault("DOWNLOAD_URL_TTL", 30*time.Minute)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 5)
	v.SetDefault("ORPHAN_GRACE_PERIOD", time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOGGING", false)
	v.SetDefault("AUTH_LOG_FILE", "log/auth.log")
}

// Load reads the configuration. Environment variables take precedence over
// configs/config.yaml which takes precedence over defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	rateLimit := v.GetInt("RATE_LIMIT_REQUESTS_PER_SECOND")
	if rateLimit <= 0 {
		rateLimit = 5
	}

	cfg := &Config{
		Port:         v.GetInt("PORT"),
		AllowOrigins: splitList(v.GetString("ALLOW_ORIGIN")),
		GinMode:      v.GetString("GIN_MODE"),
		DB: DBConfig{
			Host:          v.GetString("DB_HOST"),
			Port:          v.GetString("DB_PORT"),
			User:          v.GetString("DB_USERNAME"),
			Password:      v.GetString("DB_PASSWORD"),
			DBName:        v.GetString("DB_DATABASE"),
			ConnectionStr: v.GetString("DB_CONNECTION_STR"),
			UseConnStr:    v.GetBool("USE_CONNECTION_STR"),
		},
		SecretKey:     v.GetString("SECRET_KEY"),
		TokenDuration: v.GetDuration("TOKEN_DURATION"),
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		Storage: StorageConfig{
			Driver:             strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Bucket:             v.GetString("STORAGE_BUCKET"),
			S3Region:           v.GetString("S3_REGION"),
			S3Endpoint:         v.GetString("S3_ENDPOINT"),
			S3AccessKey:        v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:        v.GetString("S3_SECRET_KEY"),
			S3UsePathStyle:     v.GetBool("S3_USE_PATH_STYLE"),
			GCSCredentialsFile: v.GetString("GCS_CREDENTIALS_FILE"),
			DownloadURLTTL:     v.GetDuration("DOWNLOAD_URL_TTL"),
		},
		RateLimitPerSecond: uint(rateLimit),
		OrphanSweepCron:    v.GetString("ORPHAN_SWEEP_CRON"),
		OrphanGracePeriod:  v.GetDuration("ORPHAN_GRACE_PERIOD"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		AuthLogging:        v.GetBool("LOGGING"),
		AuthLogFile:        v.GetString("AUTH_LOG_FILE"),
	}

	switch cfg.Storage.Driver {
	case StorageS3, StorageGCS, StorageMemory:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY must be set")
	}

	return cfg, nil
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
