package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"wedding-site/internal/domain"

	"github.com/sirupsen/logrus"
)

const componentName = "wedding_site"

// StructuredLogger implements domain.Logger on top of logrus
type StructuredLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	IPKey        contextKey = "ip"
	TokenKey     contextKey = "token"
	UserAgentKey contextKey = "user_agent"
)

// NewLogger builds a logger writing to stdout
func NewLogger(level, format string) domain.Logger {
	return NewLoggerWithOutput(level, format, os.Stdout)
}

// NewLoggerWithOutput builds a logger writing to out
func NewLoggerWithOutput(level, format string, out io.Writer) domain.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
			},
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	logger.SetOutput(out)

	return &StructuredLogger{
		logger: logger,
		fields: make(logrus.Fields),
	}
}

// NewNopLogger discards everything; handy in tests and CLI dry runs
func NewNopLogger() domain.Logger {
	return NewLoggerWithOutput("panic", "text", io.Discard)
}

func (l *StructuredLogger) Debug(msg string, fields map[string]interface{}) {
	l.logWithFields(logrus.DebugLevel, msg, fields)
}

func (l *StructuredLogger) Info(msg string, fields map[string]interface{}) {
	l.logWithFields(logrus.InfoLevel, msg, fields)
}

func (l *StructuredLogger) Warn(msg string, fields map[string]interface{}) {
	l.logWithFields(logrus.WarnLevel, msg, fields)
}

func (l *StructuredLogger) Error(msg string, err error, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}
	l.logWithFields(logrus.ErrorLevel, msg, merged)
}

// WithContext returns a logger carrying the request fields stored in ctx
func (l *StructuredLogger) WithContext(ctx context.Context) domain.Logger {
	return l.with(l.extractContextFields(ctx))
}

// WithFields returns a logger carrying fields on every entry
func (l *StructuredLogger) WithFields(fields map[string]interface{}) domain.Logger {
	return l.with(fields)
}

func (l *StructuredLogger) with(fields map[string]interface{}) *StructuredLogger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &StructuredLogger{
		logger: l.logger,
		fields: merged,
	}
}

func (l *StructuredLogger) logWithFields(level logrus.Level, msg string, fields map[string]interface{}) {
	allFields := make(logrus.Fields, len(l.fields)+len(fields)+2)
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}

	allFields["component"] = componentName
	if version := os.Getenv("APP_VERSION"); version != "" {
		allFields["version"] = version
	}

	l.logger.WithFields(allFields).Log(level, msg)
}

func (l *StructuredLogger) extractContextFields(ctx context.Context) logrus.Fields {
	fields := make(logrus.Fields)

	if ctx == nil {
		return fields
	}

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		fields["request_id"] = requestID
	}

	if ip := ctx.Value(IPKey); ip != nil {
		fields["ip"] = ip
	}

	if token, ok := ctx.Value(TokenKey).(string); ok && token != "" {
		fields["token"] = MaskToken(token)
	}

	if userAgent := ctx.Value(UserAgentKey); userAgent != nil {
		fields["user_agent"] = userAgent
	}

	return fields
}

// LogRateLimitEvent records one limiter decision
func (l *StructuredLogger) LogRateLimitEvent(scope domain.RateLimitScope, identifier string, result *domain.RateLimitResult, fields map[string]interface{}) {
	entry := make(map[string]interface{}, len(fields)+6)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event_type"] = "rate_limit_check"
	entry["scope"] = scope
	entry["identifier"] = identifier
	entry["allowed"] = result.Allowed
	entry["limit"] = result.Limit
	entry["remaining"] = result.Remaining

	if result.Allowed {
		l.Debug("Rate limit check passed", entry)
	} else {
		entry["reset_at"] = result.ResetAt
		l.Warn("Rate limit exceeded", entry)
	}
}

// LogStorageEvent records a storage round trip
func (l *StructuredLogger) LogStorageEvent(operation string, key string, latency float64, err error) {
	fields := map[string]interface{}{
		"operation":  operation,
		"key":        key,
		"success":    err == nil,
		"latency_ms": latency,
	}

	if err != nil {
		l.Error("Storage operation failed", err, fields)
		return
	}
	l.Debug("Storage operation completed", fields)
}

// ContextWithRequestInfo stores request data read back by WithContext
func ContextWithRequestInfo(ctx context.Context, requestID, ip, token, userAgent string) context.Context {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, IPKey, ip)
	if token != "" {
		ctx = context.WithValue(ctx, TokenKey, token)
	}
	ctx = context.WithValue(ctx, UserAgentKey, userAgent)
	return ctx
}

// GetRequestID extracts the request id from ctx
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// MaskToken keeps the first 8 characters of a secret for correlation
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return token + "***"
	}
	return token[:8] + "***"
}
