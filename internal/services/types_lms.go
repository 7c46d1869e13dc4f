package services

import (
	"time"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

// ===== CATALOG =====

type CourseRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Slug          string `json:"slug" validate:"omitempty,max=220"`
	Description   string `json:"description"`
	Objectives    string `json:"objectives"`
	DurationWeeks int    `json:"duration_weeks" validate:"min=0"`
	IsActive      *bool  `json:"is_active"`
}

type ModuleRequest struct {
	CourseID   uint   `json:"course_id" validate:"required"`
	WeekNumber int    `json:"week_number" validate:"min=0"`
	Title      string `json:"title" validate:"required,max=200"`
	Objective  string `json:"objective"`
	Overview   string `json:"overview"`
	Order      int    `json:"order"`
}

type LessonRequest struct {
	ModuleID        uint              `json:"module_id" validate:"required"`
	Title           string            `json:"title" validate:"required,max=200"`
	Description     string            `json:"description"`
	Content         string            `json:"content"`
	LessonType      models.LessonType `json:"lesson_type" validate:"omitempty,lesson_type"`
	DurationMinutes int               `json:"duration_minutes" validate:"min=0"`
	Order           int               `json:"order"`
	IsRequired      *bool             `json:"is_required"`
}

type ResourceRequest struct {
	LessonID     uint                `json:"lesson_id" validate:"required"`
	Title        string              `json:"title" validate:"required,max=200"`
	ResourceType models.ResourceType `json:"resource_type" validate:"required,oneof=GUIDE TEMPLATE VIDEO CHECKLIST LINK FILE"`
	URL          string              `json:"url" validate:"required,max=500"`
	Order        int                 `json:"order"`
}

type QuizRequest struct {
	LessonID                *uint    `json:"lesson_id"`
	ModuleID                *uint    `json:"module_id"`
	Title                   string   `json:"title" validate:"required,max=200"`
	PassingScore            *float64 `json:"passing_score" validate:"omitempty,min=0,max=100"`
	MaxAttempts             *int     `json:"max_attempts" validate:"omitempty,min=0"`
	Order                   int      `json:"order"`
	IsActive                *bool    `json:"is_active"`
	IsRequiredForCompletion *bool    `json:"is_required_for_completion"`
}

func (r QuizRequest) ValidateBusiness() validator.ValidationErrors {
	return validator.RequireOneOf("lesson_id", "quiz must reference a lesson or a module", r.LessonID != nil, r.ModuleID != nil)
}

type ChoiceRequest struct {
	Text      string `json:"text" validate:"required,max=255"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

type QuestionRequest struct {
	QuizID               uint                `json:"quiz_id" validate:"required"`
	Type                 models.QuestionType `json:"type" validate:"required,question_type"`
	Prompt               string              `json:"prompt" validate:"required"`
	Points               int                 `json:"points"`
	Order                int                 `json:"order"`
	CorrectText          string              `json:"correct_text" validate:"max=255"`
	CaseSensitive        bool                `json:"case_sensitive"`
	ManualReviewRequired bool                `json:"manual_review_required"`
	Choices              []ChoiceRequest     `json:"choices" validate:"dive"`
}

type KPIRequirementRequest struct {
	Label      string   `json:"label" validate:"required,max=150"`
	Unit       string   `json:"unit" validate:"max=50"`
	MinValue   *float64 `json:"min_value"`
	MaxValue   *float64 `json:"max_value"`
	IsRequired bool     `json:"is_required"`
	Order      int      `json:"order"`
}

type AssignmentRequest struct {
	LessonID            *uint                   `json:"lesson_id"`
	ModuleID            *uint                   `json:"module_id"`
	Title               string                  `json:"title" validate:"required,max=200"`
	Description         string                  `json:"description"`
	Instructions        string                  `json:"instructions"`
	DueDate             *time.Time              `json:"due_date"`
	RequiresKPIEvidence bool                    `json:"requires_kpi_evidence"`
	MaxScore            int                     `json:"max_score" validate:"min=0"`
	RequiresReview      *bool                   `json:"requires_review"`
	IsFinalAssessment   bool                    `json:"is_final_assessment"`
	KPIRequirements     []KPIRequirementRequest `json:"kpi_requirements" validate:"dive"`
}

func (r AssignmentRequest) ValidateBusiness() validator.ValidationErrors {
	errs := validator.RequireOneOf("lesson_id", "assignment must reference a lesson or a module", r.LessonID != nil, r.ModuleID != nil)
	for _, req := range r.KPIRequirements {
		if req.MinValue != nil && req.MaxValue != nil && *req.MinValue > *req.MaxValue {
			errs = errs.Add("kpi_requirements", "min_value must not exceed max_value", req.Label)
		}
	}
	return errs
}

type BadgeRequest struct {
	Name         string               `json:"name" validate:"required,max=150"`
	Description  string               `json:"description"`
	Icon         string               `json:"icon" validate:"max=255"`
	RuleType     models.BadgeRuleType `json:"rule_type" validate:"required,badge_rule"`
	CourseID     *uint                `json:"course_id"`
	ModuleID     *uint                `json:"module_id"`
	AssignmentID *uint                `json:"assignment_id"`
	MinScore     float64              `json:"min_score" validate:"min=0,max=100"`
	KPILabel     string               `json:"kpi_label" validate:"max=150"`
	KPIMinValue  *float64             `json:"kpi_min_value"`
	IsActive     *bool                `json:"is_active"`
}

func (r BadgeRequest) ValidateBusiness() validator.ValidationErrors {
	var errs validator.ValidationErrors
	switch r.RuleType {
	case models.BadgeModuleCompleted:
		if r.ModuleID == nil {
			errs = errs.Add("module_id", "is required for module completion badges", nil)
		}
	case models.BadgeKPITarget:
		if r.KPILabel == "" || r.KPIMinValue == nil {
			errs = errs.Add("kpi_label", "kpi_label and kpi_min_value are required for KPI badges", r.KPILabel)
		}
	case models.BadgeAssignmentApproved:
		errs = append(errs, validator.RequireOneOf("assignment_id", "assignment, module or course scope is required",
			r.AssignmentID != nil, r.ModuleID != nil, r.CourseID != nil)...)
	}
	return errs
}

type CompletionRuleRequest struct {
	CourseID                   *uint   `json:"course_id"`
	ModuleID                   *uint   `json:"module_id"`
	RequireAllLessons          bool    `json:"require_all_lessons"`
	MinLessonsCompleted        int     `json:"min_lessons_completed" validate:"min=0"`
	MinQuizScore               float64 `json:"min_quiz_score" validate:"min=0,max=100"`
	MinProgressPercent         float64 `json:"min_progress_percent" validate:"min=0,max=100"`
	RequireAssignmentsApproved bool    `json:"require_assignments_approved"`
}

func (r CompletionRuleRequest) ValidateBusiness() validator.ValidationErrors {
	return validator.RequireExactlyOne("course_id", "exactly one of course_id and module_id is required", r.CourseID != nil, r.ModuleID != nil)
}

// ===== ENGINE =====

type EnrollmentListResponse struct {
	Enrollments []*models.Enrollment `json:"enrollments"`
	Total       int64                `json:"total"`
}

type QuizAnswerInput struct {
	QuestionID       uint   `json:"question_id" validate:"required"`
	SelectedChoiceID *uint  `json:"selected_choice_id"`
	TextAnswer       string `json:"text_answer"`
}

type QuizAttemptRequest struct {
	Answers []QuizAnswerInput `json:"answers" validate:"dive"`
}

type ReviewAnswerRequest struct {
	Score     float64 `json:"score" validate:"min=0"`
	IsCorrect *bool   `json:"is_correct"`
}

type KPIEvidenceInput struct {
	RequirementID uint    `json:"requirement_id" validate:"required"`
	Value         float64 `json:"value"`
	ProofURL      string  `json:"proof_url" validate:"omitempty,url,max=500"`
	ProofFile     string  `json:"proof_file" validate:"max=500"`
	Notes         string  `json:"notes"`
	ClientID      *uint   `json:"client_id"`
	ActivityID    *uint   `json:"activity_id"`
}

type SubmissionLinkInput struct {
	URL   string `json:"url" validate:"required,url,max=500"`
	Label string `json:"label" validate:"max=150"`
}

type SubmissionKPIInput struct {
	Label string  `json:"label" validate:"required,max=150"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit" validate:"max=50"`
}

type SubmissionAttachmentInput struct {
	ImagePath string `json:"image_path" validate:"required,max=500"`
	Caption   string `json:"caption" validate:"max=255"`
}

// SubmitAssignmentRequest replaces the nested collections only when the
// corresponding slice is non-nil.
type SubmitAssignmentRequest struct {
	ResponseText string                      `json:"response_text"`
	Evidence     []KPIEvidenceInput          `json:"kpi_evidence" validate:"dive"`
	Attachments  []SubmissionAttachmentInput `json:"attachments" validate:"dive"`
	Links        []SubmissionLinkInput       `json:"links" validate:"dive"`
	KPIs         []SubmissionKPIInput        `json:"kpis" validate:"dive"`
}

type ReviewSubmissionRequest struct {
	Status   models.AssignmentSubmissionStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Feedback string                            `json:"feedback"`
	Score    *int                              `json:"score" validate:"omitempty,min=0"`
}

type AssignmentSubmissionListResponse struct {
	Submissions []*models.AssignmentSubmission `json:"submissions"`
	Total       int64                          `json:"total"`
}

// CertificateVerification is the public view of a certificate
type CertificateVerification struct {
	CertificateNumber string                   `json:"certificate_number"`
	Status            models.CertificateStatus `json:"status"`
	Valid             bool                     `json:"valid"`
	IssuedAt          time.Time                `json:"issued_at"`
	CourseTitle       string                   `json:"course_title"`
	HolderName        string                   `json:"holder_name"`
}
