package events

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of domain events
type EventType string

const (
	// LMS events
	EventQuizSubmitted       EventType = "lms.quiz_submitted"
	EventEnrollmentCompleted EventType = "lms.enrollment_completed"
	EventSubmissionReviewed  EventType = "lms.submission_reviewed"
	EventBadgeAwarded        EventType = "lms.badge_awarded"
	EventCertificateIssued   EventType = "lms.certificate_issued"

	// Operations events
	EventActivityStatusChanged EventType = "operations.activity_status_changed"
	EventActivityPaid          EventType = "operations.activity_paid"
	EventStockAlert            EventType = "inventory.stock_alert"
)

const (
	eventSource  = "backoffice-service"
	eventVersion = "1.0"
)

// Event is the envelope shared by all published events
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps a payload in an envelope with a fresh id
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type QuizSubmittedEvent struct {
	SubmissionID  uint    `json:"submission_id"`
	EnrollmentID  uint    `json:"enrollment_id"`
	QuizID        uint    `json:"quiz_id"`
	AttemptNumber int     `json:"attempt_number"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
	Passed        bool    `json:"passed"`
}

type EnrollmentCompletedEvent struct {
	EnrollmentID uint      `json:"enrollment_id"`
	UserID       uint      `json:"user_id"`
	CourseID     uint      `json:"course_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

type SubmissionReviewedEvent struct {
	SubmissionID uint   `json:"submission_id"`
	EnrollmentID uint   `json:"enrollment_id"`
	AssignmentID uint   `json:"assignment_id"`
	Status       string `json:"status"`
	ReviewerID   uint   `json:"reviewer_id"`
}

type BadgeAwardedEvent struct {
	AwardID   uint   `json:"award_id"`
	BadgeID   uint   `json:"badge_id"`
	BadgeName string `json:"badge_name"`
	UserID    uint   `json:"user_id"`
}

type CertificateIssuedEvent struct {
	CertificateID     uint   `json:"certificate_id"`
	CertificateNumber string `json:"certificate_number"`
	EnrollmentID      uint   `json:"enrollment_id"`
	VerifyURL         string `json:"verify_url"`
}

type ActivityStatusChangedEvent struct {
	ActivityID uint   `json:"activity_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type ActivityPaidEvent struct {
	ActivityID      uint   `json:"activity_id"`
	FinalAmount     string `json:"final_amount"`
	ReceiptID       string `json:"receipt_id,omitempty"`
	ManualReference string `json:"manual_reference,omitempty"`
}

type StockAlertEvent struct {
	ItemID   uint   `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"min_stock"`
}

// Payloads name the aggregate they belong to so Kafka keeps its events on one
// partition, in order.

func (e QuizSubmittedEvent) PartitionKey() string       { return aggregateKey("enrollment", e.EnrollmentID) }
func (e EnrollmentCompletedEvent) PartitionKey() string { return aggregateKey("enrollment", e.EnrollmentID) }
func (e SubmissionReviewedEvent) PartitionKey() string  { return aggregateKey("enrollment", e.EnrollmentID) }
func (e BadgeAwardedEvent) PartitionKey() string        { return aggregateKey("user", e.UserID) }
func (e CertificateIssuedEvent) PartitionKey() string   { return aggregateKey("enrollment", e.EnrollmentID) }
func (e ActivityStatusChangedEvent) PartitionKey() string {
	return aggregateKey("activity", e.ActivityID)
}
func (e ActivityPaidEvent) PartitionKey() string { return aggregateKey("activity", e.ActivityID) }
func (e StockAlertEvent) PartitionKey() string   { return aggregateKey("item", e.ItemID) }

func aggregateKey(kind string, id uint) string {
	return kind + "-" + strconv.FormatUint(uint64(id), 10)
}

// Domain is the prefix of the event type, e.g. "lms" for lms.quiz_submitted.
func (t EventType) Domain() string {
	domain, _, _ := strings.Cut(string(t), ".")
	return domain
}
