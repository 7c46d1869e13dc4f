package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEventType string

const (
	AuditActivityStatusChanged AuditEventType = "activity_status_changed"
	AuditPaymentLinked         AuditEventType = "payment_linked"
	AuditStockMoveRecorded     AuditEventType = "stock_move_recorded"
	AuditStockMoveDeleted      AuditEventType = "stock_move_deleted"
	AuditSubmissionReviewed    AuditEventType = "submission_reviewed"
	AuditAnswerReviewed        AuditEventType = "answer_reviewed"
	AuditCertificateIssued     AuditEventType = "certificate_issued"
	AuditCertificateRevoked    AuditEventType = "certificate_revoked"
	AuditUserRoleChanged       AuditEventType = "user_role_changed"
	AuditDataExported          AuditEventType = "data_exported"
	AuditContentReviewed       AuditEventType = "content_reviewed"
	AuditContentPublished      AuditEventType = "content_published"
	AuditWigStatusChanged      AuditEventType = "wig_status_changed"
)

type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType AuditEventType `json:"event_type" gorm:"not null;size:50;index"`

	// Actor
	UserID   *uint    `json:"user_id" gorm:"index"`
	UserRole UserRole `json:"user_role" gorm:"size:20"`

	// Target
	TargetType string `json:"target_type" gorm:"size:50;index"`
	TargetID   *uint  `json:"target_id" gorm:"index"`

	Description string         `json:"description" gorm:"type:text"`
	Changes     datatypes.JSON `json:"changes"`
	Metadata    datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
