package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Config struct {
	Validator *validator.Validate
	// InstanceID identifies this process in system logs and its NATS connection name; it changes on every restart.
	InstanceID string
}

// AppConfig represents the application configuration
type AppConfig struct {
	Port           string
	OpenSearchURL  string
	OpenSearchUser string
	OpenSearchPass string
	EnableLogging  bool
	LoggingLevel   string
	NATSURL        string
	NATSStream     string
	CORSOrigins    []string
	// APIKey guards the /v1 relay endpoints
	APIKey             string
	WebhookIPWhitelist []string
	RateLimitPerMinute int
}

var (
	instance          *Config
	appConfigInstance *AppConfig
)

func App() *Config {
	if instance == nil {
		instance = &Config{
			Validator:  validator.New(),
			InstanceID: uuid.New().String(),
		}
	}
	return instance
}

// GetAppConfig returns the application configuration
func GetAppConfig() *AppConfig {
	if appConfigInstance == nil {
		appConfigInstance = &AppConfig{
			Port:               GetEnv("APP_PORT", "9999"),
			OpenSearchURL:      GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
			OpenSearchUser:     GetEnv("OPENSEARCH_USER", ""),
			OpenSearchPass:     GetEnv("OPENSEARCH_PASSWORD", ""),
			EnableLogging:      GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
			LoggingLevel:       GetEnv("LOGGING_LEVEL", "info"),
			NATSURL:            GetEnv("NATS_URL", ""),
			NATSStream:         GetEnv("NATS_STREAM", "PLACETOPAY"),
			CORSOrigins:        GetListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			APIKey:             GetEnv("API_KEY", ""),
			WebhookIPWhitelist: GetListEnv("WEBHOOK_IP_WHITELIST", nil),
			RateLimitPerMinute: GetIntEnv("RATE_LIMIT_PER_MINUTE", 100),
		}
	}
	return appConfigInstance
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value.
// Besides strconv.ParseBool it accepts yes/on and no/off.
func GetBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, ok := ParseBool(value); ok {
		return parsed
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetListEnv splits a comma separated environment variable
func GetListEnv(key string, defaultValue []string) []string {
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
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// ParseBool is strconv.ParseBool plus yes/on/no/off
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "on":
		return true, true
	case "no", "off":
		return false, true
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return parsed, true
}
