package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Server configuration
	ServerPort     string
	Environment    string
	AllowedOrigins []string

	// Database configuration. DatabaseURL wins over the individual parts.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DBMaxConns  int32

	// Redis configuration
	RedisAddress  string
	RedisPassword string

	// JWT configuration
	JWTSecret          string
	JWTExpirationHours int

	// Base URL of the web client, used to build invitation links
	SiteURL string

	// Blob storage
	BlobEndpoint    string
	BlobAccessKey   string
	BlobSecretKey   string
	BlobBucket      string
	BlobPublicURL   string
	BlobUseSSL      bool
	UploadTicketTTL time.Duration
	MaxUploadBytes  int64

	// Kafka, optional. Without brokers invitations are only logged.
	KafkaBrokers     []string
	KafkaInviteTopic string

	// Bootstrap administrator
	AdminEmail    string
	AdminPassword string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Warn().Err(err).Msg("error loading .env file")
		}
	}

	environment := getEnv("ENV", "development")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" && environment != "production" {
		jwtSecret = generateRandomSecret(32)
		log.Warn().Msg("JWT_SECRET not set, generated a random secret for this process")
	}

	AppConfig = Config{
		ServerPort:         getEnv("PORT", "8080"),
		Environment:        environment,
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "process_platform"),
		DBSSLMode:          getEnv("DB_SSLMODE", "disable"),
		DBMaxConns:         int32(getEnvInt("DB_MAX_CONNS", 10)),
		RedisAddress:       getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          jwtSecret,
		JWTExpirationHours: getEnvInt("JWT_EXPIRATION_HOURS", 72),
		SiteURL:            strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		BlobEndpoint:       os.Getenv("BLOB_ENDPOINT"),
		BlobAccessKey:      os.Getenv("BLOB_ACCESS_KEY"),
		BlobSecretKey:      os.Getenv("BLOB_SECRET_KEY"),
		BlobBucket:         getEnv("BLOB_BUCKET", "documents"),
		BlobPublicURL:      strings.TrimRight(os.Getenv("BLOB_PUBLIC_URL"), "/"),
		BlobUseSSL:         getEnvBool("BLOB_USE_SSL", false),
		UploadTicketTTL:    time.Duration(getEnvInt("UPLOAD_TICKET_TTL_MINUTES", 15)) * time.Minute,
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS", nil),
		KafkaInviteTopic:   getEnv("KAFKA_INVITE_TOPIC", "user-invitations"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
	}
}

// DSN returns the connection string handed to the pool.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in %s", c.Environment)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer in environment, using default")
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func generateRandomSecret(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
