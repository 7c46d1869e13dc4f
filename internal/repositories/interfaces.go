package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates every repository and owns transaction boundaries.
// Methods on the individual repositories accept an optional tx; a nil tx
// runs against the base connection.
type Repository interface {
	DB() *gorm.DB
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	User() UserRepository
	Client() ClientRepository
	Service() ServiceRepository
	Activity() ActivityRepository
	Loyverse() LoyverseRepository
	Inventory() InventoryRepository
	Task() TaskRepository
	Content() ContentRepository
	Wig() WigRepository
	Audit() AuditRepository

	Catalog() CatalogRepository
	Quiz() QuizRepository
	Enrollment() EnrollmentRepository
	Submission() SubmissionRepository
	Assignment() AssignmentRepository
	Badge() BadgeRepository
	Certificate() CertificateRepository
}

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the page size to 1..200, defaulting to 50.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type UserFilters struct {
	Role     *models.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
	Search   string           `json:"search"`
	Pagination
}

type ClientFilters struct {
	Search string `json:"search"`
	Pagination
}

type ServiceFilters struct {
	CategoryID *uint  `json:"category_id"`
	ActiveOnly bool   `json:"active_only"`
	Search     string `json:"search"`
}

type ActivityFilters struct {
	Status          *models.ActivityStatus `json:"status"`
	Type            *models.ActivityType   `json:"type"`
	AssignedStaffID *uint                  `json:"assigned_staff_id"`
	ClientID        *uint                  `json:"client_id"`
	DateFrom        *time.Time             `json:"date_from"`
	DateTo          *time.Time             `json:"date_to"`
	Pagination
}

type InventoryFilters struct {
	Category  *models.ItemCategory `json:"category"`
	AlertOnly bool                 `json:"alert_only"`
	Search    string               `json:"search"`
}

type TaskFilters struct {
	Status       *models.TaskStatus `json:"status"`
	AssignedToID *uint              `json:"assigned_to_id"`
	TemplateID   *uint              `json:"template_id"`
	DueBefore    *time.Time         `json:"due_before"`
	Pagination
}

type EnrollmentFilters struct {
	UserID   *uint                    `json:"user_id"`
	CourseID *uint                    `json:"course_id"`
	Status   *models.EnrollmentStatus `json:"status"`
	Pagination
}

type AssignmentSubmissionFilters struct {
	Status       *models.AssignmentSubmissionStatus `json:"status"`
	AssignmentID *uint                              `json:"assignment_id"`
	EnrollmentID *uint                              `json:"enrollment_id"`
	Pagination
}

type ReceiptFilters struct {
	Since *time.Time `json:"since"`
	Pagination
}

type ContentFilters struct {
	Status        *models.ContentStatus   `json:"status"`
	Platform      *models.ContentPlatform `json:"platform"`
	ScheduledFrom *time.Time              `json:"scheduled_from"`
	ScheduledTo   *time.Time              `json:"scheduled_to"`
	Search        string                  `json:"search"`
	Pagination
}

// WigFilters is shared by the product and care listings. Search matches the
// code and the name (products) or the client (care). The date bounds apply to
// the creation day, both inclusive.
type WigFilters struct {
	Status    string     `json:"status"`
	Code      string     `json:"code"`
	Search    string     `json:"q"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}
