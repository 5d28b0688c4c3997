package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mstgnz/placetopay/infra/opensearch"
	"github.com/mstgnz/placetopay/provider"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelFatal LogLevel = "fatal"
)

// SystemLog represents a structured system log entry
type SystemLog struct {
	Timestamp   time.Time      `json:"timestamp"`
	Level       LogLevel       `json:"level"`
	Message     string         `json:"message"`
	Component   string         `json:"component"`
	Function    string         `json:"function"`
	File        string         `json:"file"`
	Line        int            `json:"line"`
	Provider    string         `json:"provider,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Error       string         `json:"error,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	Environment string         `json:"environment"`
	Service     string         `json:"service"`
	Version     string         `json:"version"`
	Instance    string         `json:"instance,omitempty"`
}

// SystemLogger writes structured entries to the console through logrus
// and, when enabled, ships them to OpenSearch asynchronously
type SystemLogger struct {
	openSearchLogger *opensearch.Logger
	console          *logrus.Logger
	enableConsole    bool
	enableOpenSearch bool
	minLevel         LogLevel
	service          string
	version          string
	environment      string
	instance         string
}

// SystemLoggerConfig represents configuration for system logger
type SystemLoggerConfig struct {
	EnableConsole    bool     `yaml:"enable_console"`
	EnableOpenSearch bool     `yaml:"enable_opensearch"`
	MinLevel         LogLevel `yaml:"min_level"`
	Service          string   `yaml:"service"`
	Version          string   `yaml:"version"`
	Environment      string   `yaml:"environment"`
	Instance         string   `yaml:"instance"`
	// Output defaults to stdout
	Output io.Writer `yaml:"-"`
}

// NewSystemLogger creates a new system logger
func NewSystemLogger(openSearchLogger *opensearch.Logger, config SystemLoggerConfig) *SystemLogger {
	console := logrus.New()
	console.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	console.SetLevel(logrus.DebugLevel)
	if config.Output != nil {
		console.SetOutput(config.Output)
	} else {
		console.SetOutput(os.Stdout)
	}

	return &SystemLogger{
		openSearchLogger: openSearchLogger,
		console:          console,
		enableConsole:    config.EnableConsole,
		enableOpenSearch: config.EnableOpenSearch && openSearchLogger != nil,
		minLevel:         config.MinLevel,
		service:          config.Service,
		version:          config.Version,
		environment:      config.Environment,
		instance:         config.Instance,
	}
}

// LogContext holds contextual information for logging
type LogContext struct {
	Provider  string
	RequestID string
	Fields    map[string]any
}

// Debug logs a debug message
func (sl *SystemLogger) Debug(message string, ctx ...LogContext) {
	sl.log(LevelDebug, message, ctx...)
}

// Info logs an info message
func (sl *SystemLogger) Info(message string, ctx ...LogContext) {
	sl.log(LevelInfo, message, ctx...)
}

// Warn logs a warning message
func (sl *SystemLogger) Warn(message string, ctx ...LogContext) {
	sl.log(LevelWarn, message, ctx...)
}

// Error logs an error message
func (sl *SystemLogger) Error(message string, err error, ctx ...LogContext) {
	logCtx := LogContext{}
	if len(ctx) > 0 {
		logCtx = ctx[0]
	}

	fields := make(map[string]any, len(logCtx.Fields)+1)
	for k, v := range logCtx.Fields {
		fields[k] = v
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logCtx.Fields = fields

	sl.log(LevelError, message, logCtx)
}

// Fatal logs a fatal message and exits
func (sl *SystemLogger) Fatal(message string, err error, ctx ...LogContext) {
	sl.Error(message, err, ctx...)
	os.Exit(1)
}

// log is the core logging function
func (sl *SystemLogger) log(level LogLevel, message string, ctx ...LogContext) {
	if !sl.shouldLog(level) {
		return
	}

	file, line, function := "unknown", 0, "unknown"
	if pc, f, l, ok := runtime.Caller(3); ok {
		file, line = f, l
		if fn := runtime.FuncForPC(pc); fn != nil {
			function = fn.Name()
			if idx := strings.LastIndex(function, "."); idx != -1 {
				function = function[idx+1:]
			}
		}
	}

	logEntry := SystemLog{
		Timestamp:   time.Now().UTC(),
		Level:       level,
		Message:     message,
		Component:   extractComponent(file),
		Function:    function,
		File:        file,
		Line:        line,
		Environment: sl.environment,
		Service:     sl.service,
		Version:     sl.version,
		Instance:    sl.instance,
	}

	if len(ctx) > 0 {
		logCtx := ctx[0]
		logEntry.Provider = logCtx.Provider
		logEntry.RequestID = logCtx.RequestID
		logEntry.Fields = logCtx.Fields

		if errMsg, ok := logCtx.Fields["error"].(string); ok {
			logEntry.Error = errMsg
		}
	}

	if sl.enableConsole {
		sl.logToConsole(logEntry)
	}

	if sl.enableOpenSearch {
		go sl.logToOpenSearch(logEntry)
	}
}

var levelOrder = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// shouldLog checks if the log level should be logged
func (sl *SystemLogger) shouldLog(level LogLevel) bool {
	return levelOrder[level] >= levelOrder[sl.minLevel]
}

// extractComponent turns a source path into a component name,
// e.g. /src/placetopay/provider/placetopay/session.go -> provider/placetopay
func extractComponent(file string) string {
	parts := strings.Split(file, "/")

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] == "placetopay" && i+2 < len(parts) {
			if i+3 < len(parts) {
				return parts[i+1] + "/" + parts[i+2]
			}
			return parts[i+1]
		}
	}

	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}

	return "unknown"
}

func (sl *SystemLogger) logToConsole(entry SystemLog) {
	fields := logrus.Fields{"component": entry.Component}
	if entry.Instance != "" {
		fields["instance"] = entry.Instance
	}
	if entry.Provider != "" {
		fields["provider"] = entry.Provider
	}
	if entry.RequestID != "" {
		fields["request_id"] = entry.RequestID
	}
	for k, v := range entry.Fields {
		fields[k] = v
	}

	e := sl.console.WithFields(fields).WithTime(entry.Timestamp)
	switch entry.Level {
	case LevelDebug:
		e.Debug(entry.Message)
	case LevelWarn:
		e.Warn(entry.Message)
	case LevelError, LevelFatal:
		e.Error(entry.Message)
	default:
		e.Info(entry.Message)
	}
}

// logToOpenSearch logs to OpenSearch asynchronously
func (sl *SystemLogger) logToOpenSearch(entry SystemLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sl.openSearchLogger.LogSystemEvent(ctx, entry); err != nil {
		sl.console.WithError(err).Warn("failed to log to OpenSearch")
	}
}

// WithContext creates a new logger with context
func (sl *SystemLogger) WithContext(ctx LogContext) *ContextLogger {
	return &ContextLogger{
		systemLogger: sl,
		context:      ctx,
	}
}

// SDK adapts the system logger to the client library's Logger interface
func (sl *SystemLogger) SDK() provider.Logger {
	return sdkLogger{sl: sl}
}

type sdkLogger struct {
	sl *SystemLogger
}

func (s sdkLogger) Debug(msg string, fields map[string]any) { s.sl.Debug(msg, sdkContext(fields)) }
func (s sdkLogger) Info(msg string, fields map[string]any)  { s.sl.Info(msg, sdkContext(fields)) }
func (s sdkLogger) Warn(msg string, fields map[string]any)  { s.sl.Warn(msg, sdkContext(fields)) }
func (s sdkLogger) Error(msg string, fields map[string]any) { s.sl.Error(msg, nil, sdkContext(fields)) }

func sdkContext(fields map[string]any) LogContext {
	ctx := LogContext{Provider: "placetopay", Fields: fields}
	if id, ok := fields["requestId"]; ok {
		ctx.RequestID = fmt.Sprint(id)
	}
	return ctx
}

// ContextLogger wraps SystemLogger with context
type ContextLogger struct {
	systemLogger *SystemLogger
	context      LogContext
}

// Debug logs a debug message with context
func (cl *ContextLogger) Debug(message string) {
	cl.systemLogger.Debug(message, cl.context)
}

// Info logs an info message with context
func (cl *ContextLogger) Info(message string) {
	cl.systemLogger.Info(message, cl.context)
}

// Warn logs a warning message with context
func (cl *ContextLogger) Warn(message string) {
	cl.systemLogger.Warn(message, cl.context)
}

// Error logs an error message with context
func (cl *ContextLogger) Error(message string, err error) {
	cl.systemLogger.Error(message, err, cl.context)
}

// Fatal logs a fatal message with context and exits
func (cl *ContextLogger) Fatal(message string, err error) {
	cl.systemLogger.Fatal(message, err, cl.context)
}

// AddField adds a field to the context
func (cl *ContextLogger) AddField(key string, value any) *ContextLogger {
	if cl.context.Fields == nil {
		cl.context.Fields = make(map[string]any)
	}
	cl.context.Fields[key] = value
	return cl
}

// SetProvider sets the provider in context
func (cl *ContextLogger) SetProvider(provider string) *ContextLogger {
	cl.context.Provider = provider
	return cl
}

// SetRequestID sets the request ID in context
func (cl *ContextLogger) SetRequestID(requestID string) *ContextLogger {
	cl.context.RequestID = requestID
	return cl
}
