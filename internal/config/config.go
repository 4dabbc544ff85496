package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	URL                string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectAttempts is how many pings startup makes before giving up on the database.
	ConnectAttempts int
}

// StorageConfig holds object storage settings for the S3-compatible bucket.
type StorageConfig struct {
	Driver     string
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	AppID      string
	UseSSL     bool
	TimeoutSec int
}

// Timeout is the deadline applied to every outbound storage call.
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// SigningConfig holds the lifetime of presigned read URLs per view kind.
type SigningConfig struct {
	ListTTL   time.Duration
	DetailTTL time.Duration
}

// UploadConfig holds multipart intake limits per resource.
type UploadConfig struct {
	PostMaxFileSize    int64
	ProductMaxFileSize int64
	ProductMaxImages   int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port         string
	LogLevel     string
	AllowOrigins string
	Database     DatabaseConfig
	Storage      StorageConfig
	Signing      SigningConfig
	Upload       UploadConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:         getEnv("PORT", "9000"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", "minio")),
			Endpoint:   getEnv("STORAGE_ENDPOINT", "s3.amazonaws.com"),
			Region:     getEnv("STORAGE_REGION", ""),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:     getEnv("STORAGE_BUCKET", ""),
			AppID:      getEnv("STORAGE_APP_ID", ""),
			UseSSL:     getEnvBool("STORAGE_USE_SSL", true),
			TimeoutSec: getEnvInt("STORAGE_TIMEOUT_SEC", 10),
		},
		Signing: SigningConfig{
			ListTTL:   time.Duration(getEnvInt("URL_TTL_LIST_SEC", 300)) * time.Second,
			DetailTTL: time.Duration(getEnvInt("URL_TTL_DETAIL_SEC", 3000)) * time.Second,
		},
		Upload: UploadConfig{
			PostMaxFileSize:    getEnvInt64("POST_MAX_FILE_SIZE", 5_000_000),
			ProductMaxFileSize: getEnvInt64("PRODUCT_MAX_FILE_SIZE", 500_000),
			ProductMaxImages:   getEnvInt("PRODUCT_MAX_IMAGES", 4),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
