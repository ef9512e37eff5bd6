package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultPort          = 8080
	defaultClerkAPIURL   = "https://api.clerk.com/v1"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultAnalyticsTTL  = 10 * time.Minute
	defaultWebhookRetain = 7 * 24 * time.Hour
)

// Config holds everything the API needs at startup.
type Config struct {
	Port   int
	AppEnv string

	DatabaseURL string

	ClerkSecretKey         string
	ClerkAPIURL            string
	ClerkJWTKey            string
	ClerkAuthorizedParties []string
	WebhookSigningSecret   string

	SendGridAPIKey string
	MailFrom       string

	GeminiAPIKey string
	GeminiModel  string

	CORSAllowedOrigins []string
	AnalyticsCacheTTL  time.Duration
	WebhookRetention   time.Duration
}

// Production reports whether the service runs with production settings.
func (c Config) Production() bool {
	return c.AppEnv == EnvProduction
}

// Load reads a .env file if present and builds the Config from the process
// environment. Values already set in the environment take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:               defaultPort,
		AppEnv:             EnvDevelopment,
		ClerkAPIURL:        defaultClerkAPIURL,
		GeminiModel:        defaultGeminiModel,
		CORSAllowedOrigins: []string{"*"},
		AnalyticsCacheTTL:  defaultAnalyticsTTL,
		WebhookRetention:   defaultWebhookRetain,
	}

	var problems []string

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			problems = append(problems, "invalid PORT")
		} else {
			cfg.Port = port
		}
	}
	if v := getenv("APP_ENV"); v != "" {
		if v != EnvDevelopment && v != EnvProduction {
			problems = append(problems, "APP_ENV must be development or production")
		} else {
			cfg.AppEnv = v
		}
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	cfg.ClerkSecretKey = getenv("CLERK_SECRET_KEY")
	cfg.ClerkJWTKey = strings.ReplaceAll(getenv("CLERK_JWT_KEY"), `\n`, "\n")
	cfg.WebhookSigningSecret = getenv("SIGNING_SECRET")
	if v := getenv("CLERK_API_URL"); v != "" {
		cfg.ClerkAPIURL = strings.TrimRight(v, "/")
	}
	cfg.ClerkAuthorizedParties = splitList(getenv("CLERK_AUTHORIZED_PARTIES"))

	required := []struct {
		name, value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"CLERK_SECRET_KEY", cfg.ClerkSecretKey},
		{"CLERK_JWT_KEY", cfg.ClerkJWTKey},
		{"SIGNING_SECRET", cfg.WebhookSigningSecret},
	}
	for _, r := range required {
		if r.value == "" {
			problems = append(problems, r.name+" is required")
		}
	}

	cfg.SendGridAPIKey = getenv("SENDGRID_API_KEY")
	cfg.MailFrom = getenv("MAIL_FROM")
	if cfg.SendGridAPIKey != "" && cfg.MailFrom == "" {
		problems = append(problems, "MAIL_FROM is required when SENDGRID_API_KEY is set")
	}

	cfg.GeminiAPIKey = getenv("GEMINI_API_KEY")
	if v := getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}

	if origins := splitList(getenv("CORS_ALLOWED_ORIGINS")); len(origins) > 0 {
		cfg.CORSAllowedOrigins = origins
	}

	if d, ok, err := parseDuration(getenv, "ANALYTICS_CACHE_TTL"); err != nil {
		problems = append(problems, err.Error())
	} else if ok {
		cfg.AnalyticsCacheTTL = d
	}
	if d, ok, err := parseDuration(getenv, "WEBHOOK_RETENTION"); err != nil {
		problems = append(problems, err.Error())
	} else if ok {
		cfg.WebhookRetention = d
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// NewLogger returns the process logger: JSON in production, text otherwise.
func NewLogger(cfg Config) *slog.Logger {
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func parseDuration(getenv func(string) string, key string) (time.Duration, bool, error) {
	v := getenv(key)
	if v == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false, fmt.Errorf("invalid %s", key)
	}
	return d, true, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
