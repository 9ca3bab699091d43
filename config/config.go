package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Vendor   VendorConfig
	Webhook  WebhookConfig
	Sweeper  SweeperConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
}

// VendorConfig holds the print vendor (mockup generator) API settings.
type VendorConfig struct {
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
}

// WebhookConfig holds settings for the vendor-facing webhook receiver.
type WebhookConfig struct {
	Secret string
}

// SweeperConfig controls the stale-pending design sweep.
type SweeperConfig struct {
	Schedule   string
	StaleAfter time.Duration
}

type AppConfig struct {
	Environment string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "printloom"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Vendor: VendorConfig{
			BaseURL:           getEnv("VENDOR_API_URL", "https://api.printful.com"),
			APIKey:            getEnv("VENDOR_API_KEY", ""),
			RequestsPerMinute: getEnvAsInt("VENDOR_RATE_PER_MINUTE", 60),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("VENDOR_WEBHOOK_SECRET", ""),
		},
		Sweeper: SweeperConfig{
			Schedule:   getEnv("SWEEP_SCHEDULE", "@every 5m"),
			StaleAfter: time.Duration(getEnvAsInt("SWEEP_STALE_AFTER_MINUTES", 30)) * time.Minute,
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Vendor.BaseURL == "" {
		return fmt.Errorf("VENDOR_API_URL is required")
	}

	if c.App.Environment == "production" {
		if c.Vendor.APIKey == "" {
			return fmt.Errorf("VENDOR_API_KEY is required in production")
		}
		if c.Webhook.Secret == "" {
			return fmt.Errorf("VENDOR_WEBHOOK_SECRET is required in production")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
