package models

import (
	"time"
)

type BadgeRuleType string

const (
	BadgeCourseCompleted    BadgeRuleType = "COURSE_COMPLETED"
	BadgeModuleCompleted    BadgeRuleType = "MODULE_COMPLETED"
	BadgeQuizScore          BadgeRuleType = "QUIZ_SCORE"
	BadgeKPITarget          BadgeRuleType = "KPI_TARGET"
	BadgeAssignmentApproved BadgeRuleType = "ASSIGNMENT_APPROVED"
)

type Badge struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Name         string        `json:"name" gorm:"not null;size:150"`
	Description  string        `json:"description" gorm:"type:text"`
	Icon         string        `json:"icon" gorm:"size:255"`
	RuleType     BadgeRuleType `json:"rule_type" gorm:"size:30;not null"`
	CourseID     *uint         `json:"course_id" gorm:"index"`
	ModuleID     *uint         `json:"module_id" gorm:"index"`
	AssignmentID *uint         `json:"assignment_id" gorm:"index"`
	MinScore     float64       `json:"min_score"`
	KPILabel     string        `json:"kpi_label" gorm:"size:150"`
	KPIMinValue  *float64      `json:"kpi_min_value"`
	IsActive     bool          `json:"is_active" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Badge) TableName() string { return "lms_badges" }

type BadgeAward struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	BadgeID      uint      `json:"badge_id" gorm:"not null;uniqueIndex:idx_badge_award_user"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_badge_award_user;index"`
	EnrollmentID *uint     `json:"enrollment_id"`
	AwardedAt    time.Time `json:"awarded_at"`
	Notes        string    `json:"notes" gorm:"type:text"`

	Badge *Badge `json:"badge,omitempty" gorm:"foreignKey:BadgeID"`
}

func (BadgeAward) TableName() string { return "lms_badge_awards" }

type CertificateStatus string

const (
	CertificateIssued  CertificateStatus = "ISSUED"
	CertificateRevoked CertificateStatus = "REVOKED"
)

type Certificate struct {
	ID                uint              `json:"id" gorm:"primaryKey"`
	EnrollmentID      uint              `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	CertificateNumber string            `json:"certificate_number" gorm:"uniqueIndex;not null;size:80"`
	VerificationCode  string            `json:"verification_code" gorm:"uniqueIndex;not null;size:36"`
	IssuedAt          time.Time         `json:"issued_at"`
	Status            CertificateStatus `json:"status" gorm:"size:20;not null"`
	CreatedByID       *uint             `json:"created_by_id"`

	Enrollment *Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Certificate) TableName() string { return "lms_certificates" }
