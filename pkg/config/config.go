// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Production disables fallback data: a failed mall search degrades to
	// an empty result set instead of synthetic listings.
	Production bool

	// Naver Shopping Open API credentials. When absent the naver adapter
	// never calls out and runs in fallback mode.
	NaverClientID     string
	NaverClientSecret string

	CacheDBPath string
	CacheTTL    time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:              getEnv("PORT", "9090"),
		Production:        os.Getenv("APP_ENV") == "production",
		NaverClientID:     os.Getenv("NAVER_CLIENT_ID"),
		NaverClientSecret: os.Getenv("NAVER_CLIENT_SECRET"),
		CacheDBPath:       getEnv("CACHE_DB_PATH", "./cache.db"),
	}

	ttlMinutes := 1440
	if val := os.Getenv("CACHE_TTL_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			ttlMinutes = parsed
		}
	}
	cfg.CacheTTL = time.Duration(ttlMinutes) * time.Minute

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
