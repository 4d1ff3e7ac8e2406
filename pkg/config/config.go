package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Upload intake
	UploadDir       string
	MaxUploadSizeMB int64

	// Import pipeline
	WorkerCount        int
	WorkerPollInterval time.Duration
	MemoryCeilingMB    int64
	BulkBatchSize      int
	CacheTTL           time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE_MB", 100)
	viper.SetDefault("WORKER_COUNT", 2)
	viper.SetDefault("WORKER_POLL_INTERVAL", "2s")
	viper.SetDefault("MEMORY_CEILING_MB", 1024)
	viper.SetDefault("BULK_BATCH_SIZE", 100)
	viper.SetDefault("CACHE_TTL", "1h")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.UploadDir = viper.GetString("UPLOAD_DIR")
	cfg.MaxUploadSizeMB = viper.GetInt64("MAX_UPLOAD_SIZE_MB")
	cfg.WorkerCount = viper.GetInt("WORKER_COUNT")
	cfg.MemoryCeilingMB = viper.GetInt64("MEMORY_CEILING_MB")
	cfg.BulkBatchSize = viper.GetInt("BULK_BATCH_SIZE")

	pollInterval, err := time.ParseDuration(viper.GetString("WORKER_POLL_INTERVAL"))
	if err != nil {
		log.Printf("Warning: Invalid WORKER_POLL_INTERVAL (%q). Defaulting to 2s.\n", viper.GetString("WORKER_POLL_INTERVAL"))
		pollInterval = 2 * time.Second
	}
	cfg.WorkerPollInterval = pollInterval

	cacheTTL, err := time.ParseDuration(viper.GetString("CACHE_TTL"))
	if err != nil {
		log.Printf("Warning: Invalid CACHE_TTL (%q). Defaulting to 1h.\n", viper.GetString("CACHE_TTL"))
		cacheTTL = time.Hour
	}
	cfg.CacheTTL = cacheTTL

	return cfg, nil
}
