package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port              string
	DatabaseDSN       string
	AllowedOrigin     string
	JWTSecret         string
	GeminiAPIKey      string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	AllowRegistration bool
	LowStockCron      string
	Development       bool
}

// Load reads configuration from the environment. Call godotenv.Load first
// if a .env file should be honored.
func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseDSN:       os.Getenv("DB_DSN"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		AllowRegistration: getEnv("ALLOW_REGISTRATION", "false") == "true",
		LowStockCron:      getEnv("LOW_STOCK_CRON", "0 8 * * *"),
		Development:       getEnv("APP_ENV", "development") != "production",
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
