package provider

import (
	"context"
	"time"
)

// Logger receives the SDK's diagnostic output. Fields carry structured context.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]any) {}
func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}

// Exchange is one HTTP attempt against the gateway
type Exchange struct {
	Timestamp    time.Time
	Method       string
	URL          string
	Path         string
	Attempt      int
	HTTPStatus   int
	RequestBody  string
	ResponseBody string
	Duration     time.Duration
	Err          error
}

// ExchangeRecorder persists gateway exchanges for later inspection
type ExchangeRecorder interface {
	RecordExchange(ctx context.Context, exchange Exchange) error
}

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
