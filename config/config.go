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
	CORS     CORSConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	StaticDir   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// CacheConfig carries the tuning knobs for both cache tiers. The defaults
// mirror what the catalog was tuned against in production; they are not a
// correctness contract.
type CacheConfig struct {
	TTLShort   time.Duration // default listing pages, variant bundles
	TTLLong    time.Duration // single products, categories, country stats
	TTLSearch  time.Duration // search result pages
	TTLPopular time.Duration // popularity endpoint pages

	HotTTL             time.Duration // validity window for precomputed hot lists
	HotLimit           int           // max rows held per (sort, country) hot entry
	HotRefreshInterval time.Duration
	DefaultCountries   []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "3004"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			StaticDir:   getEnv("STATIC_DIR", "./dist"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "amazocart"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "*")),
		},
		Cache: CacheConfig{
			TTLShort:           parseDuration(getEnv("CACHE_TTL_SHORT", "15m"), 15*time.Minute),
			TTLLong:            parseDuration(getEnv("CACHE_TTL_LONG", "2h"), 2*time.Hour),
			TTLSearch:          parseDuration(getEnv("CACHE_TTL_SEARCH", "30m"), 30*time.Minute),
			TTLPopular:         parseDuration(getEnv("CACHE_TTL_POPULAR", "30m"), 30*time.Minute),
			HotTTL:             parseDuration(getEnv("HOT_CACHE_TTL", "30m"), 30*time.Minute),
			HotLimit:           parseInt(getEnv("HOT_CACHE_LIMIT", "500"), 500),
			HotRefreshInterval: parseDuration(getEnv("HOT_CACHE_REFRESH_INTERVAL", "20m"), 20*time.Minute),
			DefaultCountries:   parseSlice(getEnv("HOT_CACHE_COUNTRIES", "US,UK,CA,IN")),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for i := 0; i < len(s); {
		end := i
		for end < len(s) && s[end] != ',' {
			end++
		}
		result = append(result, s[i:end])
		i = end + 1
	}
	return result
}
