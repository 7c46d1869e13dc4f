package models

import (
	"time"
)

type Assignment struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	LessonID            *uint      `json:"lesson_id" gorm:"index"`
	ModuleID            *uint      `json:"module_id" gorm:"index"`
	Title               string     `json:"title" gorm:"not null;size:200"`
	Description         string     `json:"description" gorm:"type:text"`
	Instructions        string     `json:"instructions" gorm:"type:text"`
	DueDate             *time.Time `json:"due_date"`
	RequiresKPIEvidence bool       `json:"requires_kpi_evidence"`
	MaxScore            int        `json:"max_score"`
	RequiresReview      bool       `json:"requires_review"`
	IsFinalAssessment   bool       `json:"is_final_assessment" gorm:"index"`

	KPIRequirements []AssignmentKPIRequirement `json:"kpi_requirements,omitempty" gorm:"foreignKey:AssignmentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Assignment) TableName() string { return "lms_assignments" }

// AssignmentKPIRequirement is a numeric figure a learner must prove. Nil
// bounds are unbounded.
type AssignmentKPIRequirement struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	AssignmentID uint     `json:"assignment_id" gorm:"not null;index"`
	Label        string   `json:"label" gorm:"not null;size:150"`
	Unit         string   `json:"unit" gorm:"size:50"`
	MinValue     *float64 `json:"min_value"`
	MaxValue     *float64 `json:"max_value"`
	IsRequired   bool     `json:"is_required"`
	Order        int      `json:"order" gorm:"column:sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AssignmentKPIRequirement) TableName() string { return "lms_assignment_kpi_requirements" }

type AssignmentSubmissionStatus string

const (
	AssignmentSubmitted AssignmentSubmissionStatus = "SUBMITTED"
	AssignmentRejected  AssignmentSubmissionStatus = "REJECTED"
	AssignmentApproved  AssignmentSubmissionStatus = "APPROVED"
)

type AssignmentSubmission struct {
	ID           uint                       `json:"id" gorm:"primaryKey"`
	EnrollmentID uint                       `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_assignment_submission"`
	AssignmentID uint                       `json:"assignment_id" gorm:"not null;uniqueIndex:idx_assignment_submission;index"`
	Status       AssignmentSubmissionStatus `json:"status" gorm:"size:20;not null;index"`
	ResponseText string                     `json:"response_text" gorm:"type:text"`
	Score        *int                       `json:"score"`
	Feedback     string                     `json:"feedback" gorm:"type:text"`
	SubmittedAt  time.Time                  `json:"submitted_at"`
	ReviewedAt   *time.Time                 `json:"reviewed_at"`
	ReviewedByID *uint                      `json:"reviewed_by_id"`

	Assignment  *Assignment             `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
	Enrollment  *Enrollment             `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	Evidence    []AssignmentKPIEvidence `json:"kpi_evidence,omitempty" gorm:"foreignKey:SubmissionID"`
	Attachments []SubmissionAttachment  `json:"attachments,omitempty" gorm:"foreignKey:SubmissionID"`
	Links       []SubmissionLink        `json:"links,omitempty" gorm:"foreignKey:SubmissionID"`
	KPIs        []SubmissionKPI         `json:"kpis,omitempty" gorm:"foreignKey:SubmissionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AssignmentSubmission) TableName() string { return "lms_assignment_submissions" }

type SubmissionAttachment struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	SubmissionID uint   `json:"submission_id" gorm:"not null;index"`
	ImagePath    string `json:"image_path" gorm:"size:500;not null"`
	Caption      string `json:"caption" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
}

func (SubmissionAttachment) TableName() string { return "lms_submission_attachments" }

type SubmissionLink struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	SubmissionID uint   `json:"submission_id" gorm:"not null;index"`
	URL          string `json:"url" gorm:"size:500;not null"`
	Label        string `json:"label" gorm:"size:150"`

	CreatedAt time.Time `json:"created_at"`
}

func (SubmissionLink) TableName() string { return "lms_submission_links" }

// SubmissionKPI is a free-form figure reported alongside a submission.
type SubmissionKPI struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	SubmissionID uint    `json:"submission_id" gorm:"not null;index"`
	Label        string  `json:"label" gorm:"size:150;not null"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit" gorm:"size:50"`

	CreatedAt time.Time `json:"created_at"`
}

func (SubmissionKPI) TableName() string { return "lms_submission_kpis" }

// AssignmentKPIEvidence is a value proving one KPI requirement.
type AssignmentKPIEvidence struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	SubmissionID  uint    `json:"submission_id" gorm:"not null;index"`
	RequirementID uint    `json:"requirement_id" gorm:"not null;index"`
	Value         float64 `json:"value"`
	ProofURL      string  `json:"proof_url" gorm:"size:500"`
	ProofFile     string  `json:"proof_file" gorm:"size:500"`
	Notes         string  `json:"notes" gorm:"type:text"`
	ClientID      *uint   `json:"client_id"`
	ActivityID    *uint   `json:"activity_id"`

	Requirement *AssignmentKPIRequirement `json:"requirement,omitempty" gorm:"foreignKey:RequirementID"`

	CreatedAt time.Time `json:"created_at"`
}

func (AssignmentKPIEvidence) TableName() string { return "lms_assignment_kpi_evidence" }

func (e AssignmentKPIEvidence) HasProof() bool {
	return e.ProofURL != "" || e.ProofFile != ""
}
