package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devAccessTokenSecret signs tokens outside release mode when no secret is set
const devAccessTokenSecret = "default-secret-key"

// ErrMissingTokenSecret is returned in release mode without ACCESS_TOKEN_SECRET
var ErrMissingTokenSecret = errors.New("ACCESS_TOKEN_SECRET must be set when GIN_MODE=release")

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	GitHub   GitHubConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigin   string
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	CookieSecure      bool
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPSweepInterval  time.Duration
	RatePerMinute     int
	RateBurst         int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type GitHubConfig struct {
	Token string
}

// Load loads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
			CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./crewledger.db"),
		},
		Auth: AuthConfig{
			AccessTokenSecret: getEnv("ACCESS_TOKEN_SECRET", devAccessTokenSecret),
			AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 24*time.Hour),
			CookieSecure:      getEnvAsBool("COOKIE_SECURE", false),
			OTPTTL:            getEnvAsDuration("OTP_TTL", 5*time.Minute),
			OTPMaxAttempts:    getEnvAsInt("OTP_MAX_ATTEMPTS", 5),
			OTPSweepInterval:  getEnvAsDuration("OTP_SWEEP_INTERVAL", time.Minute),
			RatePerMinute:     getEnvAsInt("AUTH_RATE_PER_MINUTE", 30),
			RateBurst:         getEnvAsInt("AUTH_RATE_BURST", 15),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "Crew Ledger <no-reply@localhost>"),
		},
		GitHub: GitHubConfig{
			Token: getEnv("GITHUB_TOKEN", ""),
		},
	}

	if cfg.Server.Mode == "release" && os.Getenv("ACCESS_TOKEN_SECRET") == "" {
		return nil, ErrMissingTokenSecret
	}

	return cfg, nil
}

// Address returns the listen address for the HTTP server
func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15m") or plain seconds ("900")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
