package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across recipeviz.
// Use these constants instead of raw strings.
const (
	// Identity
	FieldClientID   = "client_id"
	FieldSearchID   = "search_id"
	FieldGeneration = "generation"
	FieldNodeID     = "node_id"

	// Search parameters
	FieldTarget  = "target"
	FieldMethod  = "method"
	FieldOption  = "option"
	FieldDelayMS = "delay_ms"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError    = "error"
	FieldCategory = "error_category"

	// Counts
	FieldNodes     = "nodes"
	FieldEdges     = "edges"
	FieldRevealed  = "revealed"
	FieldBatchSize = "batch_size"

	// Network
	FieldAddress = "address"
	FieldPort    = "port"
	FieldURL     = "url"
)

type contextKey string

const (
	searchIDKey contextKey = "logger_search_id"
	clientIDKey contextKey = "logger_client_id"
)

// WithSearchID adds a search ID to the context for logging
func WithSearchID(ctx context.Context, searchID string) context.Context {
	return context.WithValue(ctx, searchIDKey, searchID)
}

// WithClientID adds a client ID to the context for logging
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if searchID, ok := ctx.Value(searchIDKey).(string); ok && searchID != "" {
		fields = append(fields, FieldSearchID, searchID)
	}
	if clientID, ok := ctx.Value(clientIDKey).(string); ok && clientID != "" {
		fields = append(fields, FieldClientID, clientID)
	}

	return fields
}

// LoggerFromContext returns base with fields extracted from context.
// A nil base uses the global Logger.
func LoggerFromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Scheduler struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewScheduler() *Scheduler {
//	    return &Scheduler{
//	        logger: logger.ComponentLogger("reveal.scheduler"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
