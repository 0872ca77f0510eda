package config

import (
	"os"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string
	PostgresDSN   string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	BarcodeAPIURL string
	BarcodeAPIKey string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8000"),
		PostgresDSN:   getenv("POSTGRES_DSN", ""),
		MongoURI:      getenv("MONGO_URI", ""),
		MongoDB:       getenv("MONGO_DB", "grocify"),
		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "item-images"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		JWTSecret:  getenv("JWT_SECRET_KEY", ""),
		AccessTTL:  getduration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTTL: getduration("REFRESH_TOKEN_TTL", 720*time.Hour),

		BarcodeAPIURL: getenv("BARCODE_API_URL", "https://api.barcodelookup.com/v3/products"),
		BarcodeAPIKey: getenv("BARCODE_API_KEY", ""),

		OpenAIBaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  getenv("OPENAI_API_KEY", ""),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o-mini"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
