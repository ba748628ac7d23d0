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

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "museumtix.db"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultJWTTTL            = "24h"
	defaultSessionTTL        = "2h"
	defaultMongoDatabase     = "museumtix"
	defaultLLMBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultLLMModel          = "gemini-2.0-flash"
	defaultLLMTimeout        = "20s"
	defaultTicketSecret      = "change-me-ticket-secret"
	defaultSMTPPort          = "587"
	defaultPendingBookingTTL = "30m"
	defaultExpiryInterval    = "1m"
	defaultChatRatePerMinute = "20"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	AutoMigrate bool

	JWTSecret               string
	JWTTTL                  time.Duration
	FirebaseCredentialsFile string

	RedisURL   string
	SessionTTL time.Duration

	MongoURI      string
	MongoDatabase string

	LLM LLMConfig

	TicketSigningSecret string

	SMTP SMTPConfig

	PendingBookingTTL time.Duration
	ExpiryInterval    time.Duration

	ChatRatePerMinute  int
	CORSAllowedOrigins []string
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

// Load reads the process environment, after an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.AutoMigrate = parseBoolEnv("DB_AUTO_MIGRATE", "true")
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.FirebaseCredentialsFile = strings.TrimSpace(os.Getenv("FIREBASE_CREDENTIALS_FILE"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.MongoURI = strings.TrimSpace(os.Getenv("MONGO_URI"))
	cfg.MongoDatabase = strings.TrimSpace(getEnv("MONGO_DATABASE", defaultMongoDatabase))
	cfg.TicketSigningSecret = strings.TrimSpace(getEnv("TICKET_SIGNING_SECRET", defaultTicketSecret))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.LLM = LLMConfig{
		APIKey:  strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		BaseURL: strings.TrimRight(strings.TrimSpace(getEnv("LLM_BASE_URL", defaultLLMBaseURL)), "/"),
		Model:   strings.TrimSpace(getEnv("LLM_MODEL", defaultLLMModel)),
	}
	cfg.SMTP = SMTPConfig{
		Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     strings.TrimSpace(os.Getenv("MAIL_FROM")),
	}

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = parseDurationEnv("LLM_TIMEOUT", defaultLLMTimeout); err != nil {
		return nil, err
	}
	if cfg.PendingBookingTTL, err = parseDurationEnv("PENDING_BOOKING_TTL", defaultPendingBookingTTL); err != nil {
		return nil, err
	}
	if cfg.ExpiryInterval, err = parseDurationEnv("EXPIRY_INTERVAL", defaultExpiryInterval); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = parseIntEnv("SMTP_PORT", defaultSMTPPort); err != nil {
		return nil, err
	}
	if cfg.ChatRatePerMinute, err = parseIntEnv("CHAT_RATE_PER_MINUTE", defaultChatRatePerMinute); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s redis=%t mongo=%t llm=%t smtp=%t firebase=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.RedisURL != "", cfg.MongoURI != "", cfg.LLM.APIKey != "",
		cfg.SMTP.Enabled(), cfg.FirebaseCredentialsFile != "")

	return cfg, nil
}

func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be > 0")
	}
	if cfg.PendingBookingTTL <= 0 {
		return fmt.Errorf("PENDING_BOOKING_TTL must be > 0")
	}
	if cfg.ExpiryInterval <= 0 {
		return fmt.Errorf("EXPIRY_INTERVAL must be > 0")
	}
	if cfg.ChatRatePerMinute <= 0 {
		return fmt.Errorf("CHAT_RATE_PER_MINUTE must be > 0")
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		return fmt.Errorf("MAIL_FROM must be set when SMTP_HOST is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.TicketSigningSecret, defaultTicketSecret) {
			return fmt.Errorf("in prod/release TICKET_SIGNING_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
