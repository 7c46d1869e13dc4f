package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

// ServiceLogger writes one structured line per state-changing operation and
// per audit entry. Lines carry the request id when the call came over HTTP.
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

// outcome classifies err for the operation log: expected rejections are
// warnings, misses are info and anything else is an error.
func outcome(err error) (slog.Level, string, []slog.Attr) {
	if err == nil {
		return slog.LevelInfo, "success", nil
	}

	var (
		validationErrs ValidationErrors
		businessErr    *BusinessRuleError
		permErr        *PermissionError
	)
	switch {
	case errors.As(err, &validationErrs):
		return slog.LevelWarn, "invalid", []slog.Attr{
			slog.Any("fields", validationErrs.Fields()),
		}
	case errors.As(err, &businessErr):
		attrs := []slog.Attr{slog.String("rule", businessErr.Rule)}
		for key, value := range businessErr.Context {
			attrs = append(attrs, slog.Any("rule_"+key, value))
		}
		return slog.LevelWarn, "rejected", attrs
	case errors.As(err, &permErr):
		return slog.LevelWarn, "forbidden", []slog.Attr{
			slog.String("action", permErr.Action),
			slog.String("reason", permErr.Reason),
		}
	case IsValidation(err):
		return slog.LevelWarn, "invalid", nil
	case IsUnauthorized(err):
		return slog.LevelWarn, "unauthorized", nil
	case IsNotFound(err):
		return slog.LevelInfo, "not_found", nil
	case IsConflict(err):
		return slog.LevelWarn, "conflict", nil
	default:
		return slog.LevelError, "error", nil
	}
}

// Operation times one service call; LogResult closes it.
type Operation struct {
	logger  *ServiceLogger
	ctx     context.Context
	name    string
	actorID uint
	started time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, name string, actorID uint) *Operation {
	return &Operation{logger: l, ctx: ctx, name: name, actorID: actorID, started: time.Now()}
}

func (op *Operation) LogResult(resourceID uint, resourceType string, err error) {
	level, status, extra := outcome(err)

	attrs := make([]slog.Attr, 0, 8+len(extra))
	attrs = append(attrs,
		slog.String("operation", op.name),
		slog.String("status", status),
		slog.Uint64("actor_id", uint64(op.actorID)),
		slog.String("resource_type", resourceType),
		slog.Duration("duration", time.Since(op.started)),
	)
	if resourceID != 0 {
		attrs = append(attrs, slog.Uint64("resource_id", uint64(resourceID)))
	}
	if requestID := utils.RequestIDFromContext(op.ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	attrs = append(attrs, extra...)

	op.logger.logger.LogAttrs(op.ctx, level, op.name+" "+status, attrs...)
}

type AuditEvent struct {
	Type         models.AuditEventType  `json:"type"`
	UserID       uint                   `json:"user_id"`
	ResourceID   uint                   `json:"resource_id"`
	ResourceType string                 `json:"resource_type"`
	Action       string                 `json:"action"`
	OldValue     interface{}            `json:"old_value,omitempty"`
	NewValue     interface{}            `json:"new_value,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.Uint64("actor_id", uint64(event.UserID)),
		slog.String("resource_type", event.ResourceType),
		slog.Uint64("resource_id", uint64(event.ResourceID)),
	}
	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if event.OldValue != nil || event.NewValue != nil {
		attrs = append(attrs, slog.Group("change",
			slog.Any("old", event.OldValue),
			slog.Any("new", event.NewValue),
		))
	}
	if len(event.Metadata) > 0 {
		meta := make([]any, 0, len(event.Metadata))
		for key, value := range event.Metadata {
			meta = append(meta, slog.Any(key, SanitizeForLogging(key, value)))
		}
		attrs = append(attrs, slog.Group("meta", meta...))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("audit: %s", event.Action), attrs...)
}

var sensitiveKeys = []string{"password", "token", "secret", "credential", "api_key"}

// SanitizeForLogging redacts values stored under credential-like keys.
func SanitizeForLogging(key string, value interface{}) interface{} {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
