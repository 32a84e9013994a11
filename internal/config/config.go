package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default allowed origins for development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Port            string
	GinMode         string
	DatabaseDriver  string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	AllowedOrigins  []string
	// TrustedProxies may set X-Forwarded-For. Empty means the socket peer
	// is always the client IP.
	TrustedProxies []string
	GitHubAPIURL    string
	GitHubToken     string
	GitHubTimeout   time.Duration
	AuthRateLimit   float64
	AuthRateBurst   int
	LogLevel        string
	LogPretty       bool
	ShutdownTimeout time.Duration
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		GinMode:        os.Getenv("GIN_MODE"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: allowedOrigins(),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		GitHubAPIURL:   strings.TrimRight(getEnv("GITHUB_API_URL", "https://api.github.com"), "/"),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", cfg.DatabaseDriver)
	}

	for _, origin := range cfg.AllowedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return nil, fmt.Errorf("ALLOWED_ORIGINS and CLIENT_URL entries must start with http:// or https://, got %q", origin)
		}
	}

	for _, proxy := range cfg.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES entries must be IPs or CIDRs, got %q", proxy)
			}
		}
	}

	var err error

	if cfg.JWTTTL, err = getDuration("JWT_TTL", 168*time.Hour); err != nil {
		return nil, err
	}

	if cfg.GitHubTimeout, err = getDuration("GITHUB_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.AuthRateLimit, err = getFloat("AUTH_RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	if cfg.AuthRateBurst, err = getInt("AUTH_RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	if cfg.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

func allowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, strings.TrimRight(clientURL, "/"))
	}

	for _, origin := range splitList(os.Getenv("ALLOWED_ORIGINS")) {
		origins = append(origins, strings.TrimRight(origin, "/"))
	}

	return origins
}

// splitList parses a comma-separated value, skipping blank entries.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, value)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}
