package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv    string
	Debug     bool
	Version   string
	SentryDSN string

	BotToken        string
	DefaultLanguage string
	ChannelURL      string

	// AdminID is the only identity allowed to log into the admin panel.
	AdminID           int64
	AdminPassword     string
	AdminPasswordHash string

	MongoDBURI      string
	MongoDBDatabase string

	AMQPURL    string
	HealthAddr string

	UpdatesRate   int
	BroadcastRate int
}

// LoadConfig loads configuration from environment variables.
// A .env file is read first when present; variables already set in the
// process environment take precedence over it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	adminID, err := getInt64("ADMIN_ID", 0)
	if err != nil {
		return nil, err
	}
	updatesRate, err := getInt64("UPDATES_RATE", 20)
	if err != nil {
		return nil, err
	}
	broadcastRate, err := getInt64("BROADCAST_RATE", 25)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Debug:             debug,
		Version:           getEnv("VERSION", "dev"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		BotToken:          getEnv("TELEGRAM_BOT_TOKEN", ""),
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "uz"),
		ChannelURL:        getEnv("CHANNEL_URL", ""),
		AdminID:           adminID,
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		MongoDBURI:        getEnv("MONGODB_URI", ""),
		MongoDBDatabase:   getEnv("MONGODB_DATABASE", ""),
		AMQPURL:           getEnv("AMQP_URL", ""),
		HealthAddr:        getEnv("HEALTH_ADDR", ""),
		UpdatesRate:       int(updatesRate),
		BroadcastRate:     int(broadcastRate),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID is required")
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if c.MongoDBURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.MongoDBDatabase == "" {
		return fmt.Errorf("MONGODB_DATABASE is required")
	}
	if c.UpdatesRate <= 0 {
		return fmt.Errorf("UPDATES_RATE must be positive, got %d", c.UpdatesRate)
	}
	if c.BroadcastRate <= 0 {
		return fmt.Errorf("BROADCAST_RATE must be positive, got %d", c.BroadcastRate)
	}
	if c.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}
	if c.ChannelURL == "" {
		log.Println("Warning: CHANNEL_URL is not set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) (int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
