package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Discord Bot (optional)
	DiscordToken           string
	DiscordReminderChannel string
	ReminderInterval       time.Duration

	// Discord OAuth2
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
	OwnerDiscordID      string

	// Database
	DatabaseURL string

	// Web Server
	WebBind      string
	WebUIBaseURL string

	// Session
	JWTSecret string

	// Club rules
	DefaultBuyIn     int64
	DefaultRebuy     int64
	RequireDateNames bool

	LogLevel string
}

// Load reads the environment, after an optional .env file.
func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:           os.Getenv("DISCORD_TOKEN"),
		DiscordReminderChannel: os.Getenv("DISCORD_REMINDER_CHANNEL"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		WebBind:                getEnvDefault("WEB_BIND", "0.0.0.0:3000"),
		DiscordClientID:        os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret:    os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURI:     getEnvDefault("DISCORD_REDIRECT_URI", "http://localhost:3000/api/auth/callback"),
		OwnerDiscordID:         os.Getenv("OWNER_DISCORD_ID"),
		JWTSecret:              getEnvDefault("JWT_SECRET", "dev-only-change-me"),
		LogLevel:               getEnvDefault("LOG_LEVEL", "info"),
	}

	// Extract base URL from redirect URI
	cfg.WebUIBaseURL = extractBaseURL(cfg.DiscordRedirectURI)

	var err error
	if cfg.DefaultBuyIn, err = getEnvInt("DEFAULT_BUY_IN", 100); err != nil {
		return nil, err
	}
	if cfg.DefaultRebuy, err = getEnvInt("DEFAULT_REBUY", 100); err != nil {
		return nil, err
	}
	if cfg.DefaultBuyIn < 0 || cfg.DefaultRebuy < 0 {
		return nil, fmt.Errorf("DEFAULT_BUY_IN and DEFAULT_REBUY must not be negative")
	}
	minutes, err := getEnvInt("REMINDER_INTERVAL_MINUTES", 0)
	if err != nil {
		return nil, err
	}
	cfg.ReminderInterval = time.Duration(minutes) * time.Minute
	if cfg.RequireDateNames, err = getEnvBool("REQUIRE_DATE_NAMES", true); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DiscordClientID == "" {
		return nil, fmt.Errorf("DISCORD_CLIENT_ID is required")
	}
	if cfg.DiscordClientSecret == "" {
		return nil, fmt.Errorf("DISCORD_CLIENT_SECRET is required")
	}
	if cfg.ReminderInterval > 0 && (cfg.DiscordToken == "" || cfg.DiscordReminderChannel == "") {
		return nil, fmt.Errorf("reminders need DISCORD_TOKEN and DISCORD_REMINDER_CHANNEL")
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func extractBaseURL(redirectURI string) string {
	// e.g., "http://localhost:3000/api/auth/callback" -> "http://localhost:3000"
	parsed, err := url.Parse(redirectURI)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "http://localhost:3000"
	}

	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}
