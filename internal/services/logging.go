package services

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ServiceLogger logs practice and collection operations with the user and round they touched
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

// Logger exposes the underlying slog logger with the service attributes attached
func (l *ServiceLogger) Logger() *slog.Logger {
	return l.logger
}

// outcome grades an operation error. Expected user-facing outcomes stay below error level.
func outcome(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case errors.Is(err, ErrStaleRound):
		return slog.LevelInfo, "stale_round"
	case IsConflict(err):
		return slog.LevelInfo, "conflict"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	case IsValidation(err):
		return slog.LevelWarn, "validation_error"
	case IsUnauthorized(err):
		return slog.LevelWarn, "unauthorized"
	default:
		return slog.LevelError, "error"
	}
}

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, resourceID, resourceType string, duration time.Duration, err error) {
	level, status := outcome(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if resourceID != "" {
		attrs = append(attrs, slog.String(resourceType+"_id", resourceID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErrs ValidationErrors
		if errors.As(err, &validationErrs) {
			attrs = append(attrs, slog.Any("invalid_fields", validationErrs.Fields()))
		}
	}

	l.logger.LogAttrs(ctx, level, operation+" "+status, attrs...)
}

// LogWriteBackFailure records a persistence call whose failure does not change the user-visible outcome.
func (l *ServiceLogger) LogWriteBackFailure(ctx context.Context, operation, userID, questionID string, err error) {
	l.logger.LogAttrs(ctx, slog.LevelError, "Write-back failed",
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("question_id", questionID),
		slog.String("error", err.Error()),
	)
}

// OperationLog times one operation and logs its outcome when LogResult is called
type OperationLog struct {
	logger    *ServiceLogger
	ctx       context.Context
	operation string
	userID    string
	startTime time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *OperationLog {
	return &OperationLog{
		logger:    l,
		ctx:       ctx,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
	}
}

func (o *OperationLog) LogResult(resourceID, resourceType string, err error) {
	o.logger.LogOperation(o.ctx, o.operation, o.userID, resourceID, resourceType, time.Since(o.startTime), err)
}
