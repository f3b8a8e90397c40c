package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	Env                  string
	DatabaseDriver       string
	PostgresConnStr      string
	SQLitePath           string
	PrivyAppID           string
	PrivyVerificationKey string
	TwitterAPIBase       string
	TwitterRefAccount    string
	FarcasterFID         uint64
	FarcasterSignerKey   string
	FarcasterHubURL      string
}

func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		DatabaseDriver:       getEnv("DATABASE_DRIVER", "postgres"),
		PostgresConnStr:      getEnv("POSTGRES_CONN_STR", ""),
		SQLitePath:           getEnv("SQLITE_PATH", "crosspostx.db"),
		PrivyAppID:           getEnv("PRIVY_APP_ID", ""),
		PrivyVerificationKey: getEnv("PRIVY_VERIFICATION_KEY", ""),
		TwitterAPIBase:       getEnv("TWITTER_API_BASE", "https://cdn.syndication.twimg.com"),
		TwitterRefAccount:    getEnv("TWITTER_REF_ACCOUNT", "twitter"),
		FarcasterFID:         getEnvUint("FARCASTER_FID", 0),
		FarcasterSignerKey:   getEnv("FARCASTER_SIGNER_KEY", ""),
		FarcasterHubURL:      getEnv("FARCASTER_HUB_URL", "https://nemes.farcaster.xyz:2281"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
