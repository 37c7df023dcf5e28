package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	Environment   string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	JWTExpiry     int64
	UploadDir     string
	MaxUploadSize int64
	CacheTTL      time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "abcstore"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:     getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
		UploadDir:     getEnv("UPLOAD_DIR", "public/uploads/products"),
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
		CacheTTL:      time.Duration(getEnvAsInt64("CACHE_TTL", 300)) * time.Second,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
