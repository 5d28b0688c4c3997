package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultEnvPrefix prefixes the PlacetoPay client environment variables
const DefaultEnvPrefix = "PLACETOPAY_"

// ClientSettings are the credentials and defaults of a PlacetoPay client
type ClientSettings struct {
	Login             string `mapstructure:"login"`
	SecretKey         string `mapstructure:"secret_key"`
	BaseURL           string `mapstructure:"base_url"`
	GatewayBaseURL    string `mapstructure:"gateway_base_url"`
	DefaultLocale     string `mapstructure:"default_locale"`
	TimeOffsetMS      string `mapstructure:"time_offset_ms"`
	TimeOffsetMinutes string `mapstructure:"time_offset_minutes"`
	DebugAuth         bool   `mapstructure:"debug_auth"`
	PublicBaseURL     string `mapstructure:"public_base_url"`
}

// clientKeys maps settings keys to their environment suffix.
// public_base_url is read without prefix.
var clientKeys = map[string]string{
	"login":               "LOGIN",
	"secret_key":          "SECRET_KEY",
	"base_url":            "BASE_URL",
	"gateway_base_url":    "GATEWAY_BASE_URL",
	"default_locale":      "DEFAULT_LOCALE",
	"time_offset_ms":      "TIME_OFFSET_MS",
	"time_offset_minutes": "TIME_OFFSET_MINUTES",
	"debug_auth":          "DEBUG_AUTH",
}

// LoadClientSettings reads the client settings from <prefix>LOGIN, <prefix>SECRET_KEY...
// When configFile is set it is read first and environment variables override it.
func LoadClientSettings(prefix, configFile string) (*ClientSettings, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	v := viper.New()
	for key, suffix := range clientKeys {
		if err := v.BindEnv(key, prefix+suffix); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", prefix+suffix, err)
		}
	}
	if err := v.BindEnv("public_base_url", "PUBLIC_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind PUBLIC_BASE_URL: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	settings := &ClientSettings{
		Login:             v.GetString("login"),
		SecretKey:         v.GetString("secret_key"),
		BaseURL:           v.GetString("base_url"),
		GatewayBaseURL:    v.GetString("gateway_base_url"),
		DefaultLocale:     v.GetString("default_locale"),
		TimeOffsetMS:      v.GetString("time_offset_ms"),
		TimeOffsetMinutes: v.GetString("time_offset_minutes"),
		PublicBaseURL:     v.GetString("public_base_url"),
	}
	settings.DebugAuth, _ = ParseBool(v.GetString("debug_auth"))

	var missing []string
	if settings.Login == "" {
		missing = append(missing, prefix+"LOGIN")
	}
	if settings.SecretKey == "" {
		missing = append(missing, prefix+"SECRET_KEY")
	}
	if settings.BaseURL == "" {
		missing = append(missing, prefix+"BASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	return settings, nil
}

// Lookup resolves a prefixed environment name against the loaded settings
func (s *ClientSettings) Lookup(prefix string) func(string) string {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	values := map[string]string{
		prefix + "TIME_OFFSET_MS":      s.TimeOffsetMS,
		prefix + "TIME_OFFSET_MINUTES": s.TimeOffsetMinutes,
		prefix + "DEFAULT_LOCALE":      s.DefaultLocale,
	}
	return func(key string) string {
		return values[key]
	}
}
