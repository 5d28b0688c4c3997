package logger

import (
	"strings"
	"sync"

	"github.com/mstgnz/placetopay/infra/config"
	"github.com/mstgnz/placetopay/infra/opensearch"
)

var (
	globalLogger *SystemLogger
	once         sync.Once
)

const (
	serviceName    = "placetopay"
	serviceVersion = "1.0.0"
)

// InitGlobalLogger initializes the global system logger. A nil OpenSearch
// logger keeps output on the console only.
func InitGlobalLogger(openSearchLogger *opensearch.Logger) {
	once.Do(func() {
		cfg := SystemLoggerConfig{
			EnableConsole:    true,
			EnableOpenSearch: openSearchLogger != nil,
			MinLevel:         LevelInfo,
			Service:          serviceName,
			Version:          serviceVersion,
			Environment:      config.GetEnv("ENVIRONMENT", "development"),
			Instance:         config.App().InstanceID,
		}

		if cfg.Environment == "development" {
			cfg.MinLevel = LevelDebug
		}
		if level := parseLevel(config.GetEnv("LOGGING_LEVEL", "")); level != "" {
			cfg.MinLevel = level
		}

		globalLogger = NewSystemLogger(openSearchLogger, cfg)
	})
}

func parseLevel(value string) LogLevel {
	level := LogLevel(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := levelOrder[level]; ok {
		return level
	}
	return ""
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *SystemLogger {
	if globalLogger == nil {
		globalLogger = NewSystemLogger(nil, SystemLoggerConfig{
			EnableConsole: true,
			MinLevel:      LevelInfo,
			Service:       serviceName,
			Version:       serviceVersion,
			Environment:   "development",
		})
	}
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(message string, ctx ...LogContext) {
	GetGlobalLogger().Debug(message, ctx...)
}

// Info logs an info message using the global logger
func Info(message string, ctx ...LogContext) {
	GetGlobalLogger().Info(message, ctx...)
}

// Warn logs a warning message using the global logger
func Warn(message string, ctx ...LogContext) {
	GetGlobalLogger().Warn(message, ctx...)
}

// Error logs an error message using the global logger
func Error(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Error(message, err, ctx...)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(message string, err error, ctx ...LogContext) {
	GetGlobalLogger().Fatal(message, err, ctx...)
}

// WithContext creates a context logger from the global logger
func WithContext(ctx LogContext) *ContextLogger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithProvider creates a context logger with provider
func WithProvider(provider string) *ContextLogger {
	return WithContext(LogContext{Provider: provider})
}

// WithRequest creates a context logger bound to a checkout session
func WithRequest(requestID string) *ContextLogger {
	return WithContext(LogContext{Provider: serviceName, RequestID: requestID})
}
