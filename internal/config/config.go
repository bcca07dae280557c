package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	MinIO   MinIOConfig
	CORS    CORSConfig
	SMTP    SMTPConfig
	Geocode GeocodeConfig
	Map     MapConfig
}

type AppConfig struct {
	Env  string
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=UTC"
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type MinIOConfig struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CORSConfig struct {
	Origins []string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// GeocodeConfig configures the reverse-geocoding proxy
type GeocodeConfig struct {
	BaseURL     string
	ProxyPrefix string // optional CORS proxy placed in front of BaseURL
	UserAgent   string
	Timeout     time.Duration
	CacheTTL    time.Duration
	RatePerSec  float64
}

type MapConfig struct {
	OWMAPIKey string
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading from environment variables")
	}

	return &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Port: getEnv("APP_PORT", "8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "agrosynth"),
			Password: getEnv("DB_PASSWORD", "agrosynth"),
			Name:     getEnv("DB_NAME", "agrosynth"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "alerts"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		CORS: CORSConfig{
			Origins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "mailpit"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "alerts@agrosynth.local"),
			FromName: getEnv("SMTP_FROM_NAME", "AgroSynth"),
		},
		Geocode: GeocodeConfig{
			BaseURL:     getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
			ProxyPrefix: getEnv("GEOCODE_PROXY_PREFIX", ""),
			UserAgent:   getEnv("GEOCODE_USER_AGENT", "agrosynth-weather-alerts/1.0"),
			Timeout:     getDuration("GEOCODE_TIMEOUT", 5*time.Second),
			CacheTTL:    getDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
			RatePerSec:  getFloat("GEOCODE_RATE_PER_SEC", 1),
		},
		Map: MapConfig{
			OWMAPIKey: getEnv("OWM_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil || d <= 0 {
		log.Printf("⚠️  Invalid %s, using %s", key, fallback)
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Printf("⚠️  Invalid %s, using %g", key, fallback)
		return fallback
	}
	return f
}
