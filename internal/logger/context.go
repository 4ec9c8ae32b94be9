package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	fieldsKey
	requestFieldsKey
)

// requestFields collects fields attached anywhere below LoggingMiddleware so
// the request entry can carry them.
type requestFields struct {
	mu     sync.Mutex
	fields []zap.Field
}

func (f *requestFields) add(fields []zap.Field) {
	f.mu.Lock()
	f.fields = append(f.fields, fields...)
	f.mu.Unlock()
}

func (f *requestFields) snapshot() []zap.Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]zap.Field(nil), f.fields...)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithFields attaches fields to ctx; FromCtx adds them to every entry. Inside
// LoggingMiddleware they are also added to the request entry.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if rf, ok := ctx.Value(requestFieldsKey).(*requestFields); ok {
		rf.add(fields)
	}
	prev, _ := ctx.Value(fieldsKey).([]zap.Field)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

// FromCtx returns the global logger tagged with the request id and any
// fields carried by ctx.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if fields, _ := ctx.Value(fieldsKey).([]zap.Field); len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
