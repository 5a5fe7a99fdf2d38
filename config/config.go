package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port           string
	SiteURL        string
	CORSOrigins    []string
	TrustedProxies []string

	JWTSecret string
	JWTTTL    time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	GoogleClientID string
	GoogleSecret   string
	GoogleRedirect string

	LogLevel  string
	LogFormat string

	// Catalog settings
	ProductsPaginateBy        int
	PopularProductsPaginateBy int
	VisitTrackingTTL          time.Duration
	EmailVerificationTTL      time.Duration

	// Price sync
	PriceSyncEnabled  bool
	PriceSyncSchedule string
	PriceSyncTimeout  time.Duration

	SeedDemo bool
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return &Config{
		DBDriver:   getenvOrDefault("DB_DRIVER", "postgres"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenvOrDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		SQLitePath: getenvOrDefault("SQLITE_PATH", "./pricely.db"),

		RedisAddr:     getenvOrDefault("REDIS_ADDR", fmt.Sprintf("%s:6379", getenvOrDefault("DB_HOST", "localhost"))),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		Port:           getenvOrDefault("PORT", "8080"),
		SiteURL:        strings.TrimRight(getenvOrDefault("SITE_URL", "http://localhost:8080"), "/"),
		CORSOrigins:    getenvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		TrustedProxies: getenvList("TRUSTED_PROXIES", nil),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getenvDuration("JWT_TTL", 72*time.Hour),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getenvInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirect: os.Getenv("GOOGLE_REDIRECT_URI"),

		LogLevel:  getenvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getenvOrDefault("LOG_FORMAT", "json"),

		ProductsPaginateBy:        getenvInt("PRODUCTS_PAGINATE_BY", 12),
		PopularProductsPaginateBy: getenvInt("POPULAR_PRODUCTS_PAGINATE_BY", 8),
		VisitTrackingTTL:          getenvDuration("VISIT_TRACKING_TTL", time.Hour),
		EmailVerificationTTL:      getenvDuration("EMAIL_VERIFICATION_TTL", 48*time.Hour),

		PriceSyncEnabled:  getenvBool("PRICE_SYNC_ENABLED", false),
		PriceSyncSchedule: getenvOrDefault("PRICE_SYNC_SCHEDULE", "0 */6 * * *"),
		PriceSyncTimeout:  getenvDuration("PRICE_SYNC_TIMEOUT", 10*time.Second),

		SeedDemo: getenvBool("SEED_DEMO", false),
	}
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBPort,
	)
}

// getenvOrDefault returns the environment variable value if set, otherwise returns def
func getenvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}

func getenvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
