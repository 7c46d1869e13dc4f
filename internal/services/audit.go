package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

// auditRecorder persists audit rows and mirrors them to the service log
type auditRecorder struct {
	repo   repositories.Repository
	logger *ServiceLogger
}

func newAuditRecorder(repo repositories.Repository, logger *ServiceLogger) *auditRecorder {
	return &auditRecorder{repo: repo, logger: logger}
}

// Record writes the entry inside tx so it commits or rolls back with the change it describes.
func (a *auditRecorder) Record(ctx context.Context, tx *gorm.DB, actor Actor, event AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.UserID = actor.UserID

	entry := &models.AuditLog{
		EventType:   event.Type,
		UserID:      actor.userIDPtr(),
		UserRole:    actor.Role,
		TargetType:  event.ResourceType,
		Description: event.Action,
	}
	if event.ResourceID != 0 {
		id := event.ResourceID
		entry.TargetID = &id
	}

	if event.OldValue != nil || event.NewValue != nil {
		changes, err := json.Marshal(map[string]interface{}{"old": event.OldValue, "new": event.NewValue})
		if err != nil {
			return fmt.Errorf("failed to encode audit changes: %w", err)
		}
		entry.Changes = datatypes.JSON(changes)
	}
	if len(event.Metadata) > 0 {
		metadata, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		entry.Metadata = datatypes.JSON(metadata)
	}

	if err := a.repo.Audit().Create(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	a.logger.LogAuditEvent(ctx, event)
	return nil
}
