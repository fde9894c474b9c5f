package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Catalog    CatalogConfig
	Storage    StorageConfig
	MQ         MQConfig
	Log        LogConfig
}

type ServerConfig struct {
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// ImplicitSignup creates unknown usernames on token issuance.
	ImplicitSignup bool
}

// CatalogConfig holds the external movie catalog credentials and retry policy.
type CatalogConfig struct {
	URL                string
	Username           string
	Password           string
	Timeout            time.Duration
	MaxRetries         int
	InsecureSkipVerify bool
}

// StorageConfig selects the object storage backend used for catalog snapshots.
// An empty Backend disables archiving.
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// MQConfig selects the broker used for domain events. An empty Backend
// disables publishing.
type MQConfig struct {
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

// RabbitMQConfig configures the fanout exchanges events are published to.
type RabbitMQConfig struct {
	URL           string
	Durable       bool
	PrefetchCount int
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

type LogConfig struct {
	Level  string
	Format string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "movies"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "movie_collections"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Server: ServerConfig{
			CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
			RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: dbConfig,
		Auth: AuthConfig{
			JWTSecret:      strings.TrimSpace(getEnv("JWT_SECRET", "")),
			TokenTTL:       getEnvDuration("AUTH_TOKEN_TTL", 12*time.Hour),
			ImplicitSignup: getEnvBool("AUTH_IMPLICIT_SIGNUP", true),
		},
		Catalog: CatalogConfig{
			URL:                getEnv("MOVIE_API_URL", "https://demo.credy.in/api/v1/maya/movies/"),
			Username:           getEnv("MOVIE_API_USERNAME", ""),
			Password:           getEnv("MOVIE_API_PASSWORD", ""),
			Timeout:            getEnvDuration("MOVIE_API_TIMEOUT", 10*time.Second),
			MaxRetries:         getEnvInt("MOVIE_API_MAX_RETRIES", 5),
			InsecureSkipVerify: getEnvBool("MOVIE_API_INSECURE_SKIP_VERIFY", false),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", "")),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "catalog-snapshots"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		MQ: MQConfig{
			Backend: strings.ToLower(getEnv("MQ_BACKEND", "")),
			RabbitMQ: RabbitMQConfig{
				URL:           getEnv("RABBITMQ_URL", ""),
				Durable:       getEnvBool("RABBITMQ_DURABLE", true),
				PrefetchCount: getEnvInt("RABBITMQ_PREFETCH", 10),
			},
			PubSub: PubSubConfig{
				ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
