package models

import (
	"time"
)

type Quiz struct {
	ID                      uint    `json:"id" gorm:"primaryKey"`
	LessonID                *uint   `json:"lesson_id" gorm:"index"`
	ModuleID                *uint   `json:"module_id" gorm:"index"`
	Title                   string  `json:"title" gorm:"not null;size:200"`
	PassingScore            float64 `json:"passing_score"`
	MaxAttempts             int     `json:"max_attempts"`
	Order                   int     `json:"order" gorm:"column:sort_order"`
	IsActive                bool    `json:"is_active"`
	IsRequiredForCompletion bool    `json:"is_required_for_completion"`

	Lesson    *Lesson    `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string { return "lms_quizzes" }

type QuestionType string

const (
	QuestionMCQ       QuestionType = "MCQ"
	QuestionTrueFalse QuestionType = "TRUE_FALSE"
	QuestionShort     QuestionType = "SHORT"
)

type Question struct {
	ID                   uint         `json:"id" gorm:"primaryKey"`
	QuizID               uint         `json:"quiz_id" gorm:"not null;index"`
	Type                 QuestionType `json:"type" gorm:"size:20;not null"`
	Prompt               string       `json:"prompt" gorm:"type:text;not null"`
	Points               int          `json:"points"`
	Order                int          `json:"order" gorm:"column:sort_order"`
	CorrectText          string       `json:"correct_text,omitempty" gorm:"size:255"`
	CaseSensitive        bool         `json:"case_sensitive"`
	ManualReviewRequired bool         `json:"manual_review_required"`
	IsActive             bool         `json:"is_active"`

	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string { return "lms_questions" }

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null;size:255"`
	IsCorrect  bool   `json:"is_correct"`
	Order      int    `json:"order" gorm:"column:sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Choice) TableName() string { return "lms_choices" }

// Submission is one attempt at a quiz.
type Submission struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	EnrollmentID  uint      `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_submission_attempt"`
	QuizID        uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_submission_attempt;index"`
	AttemptNumber int       `json:"attempt_number" gorm:"not null;uniqueIndex:idx_submission_attempt"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Score         float64   `json:"score"`
	MaxScore      float64   `json:"max_score"`
	Passed        bool      `json:"passed"`

	Quiz    *Quiz              `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Answers []SubmissionAnswer `json:"answers,omitempty" gorm:"foreignKey:SubmissionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string { return "lms_quiz_submissions" }

// Percent returns the score as a percentage of the maximum, 0 when the
// quiz carries no points.
func (s *Submission) Percent() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.Score / s.MaxScore * 100
}

type SubmissionAnswer struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	SubmissionID     uint       `json:"submission_id" gorm:"not null;uniqueIndex:idx_answer_question"`
	QuestionID       uint       `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_question"`
	SelectedChoiceID *uint      `json:"selected_choice_id"`
	TextAnswer       string     `json:"text_answer" gorm:"type:text"`
	IsCorrect        bool       `json:"is_correct"`
	ScoreAwarded     float64    `json:"score_awarded"`
	ManualScored     bool       `json:"manual_scored"`
	ReviewedAt       *time.Time `json:"reviewed_at"`
	ReviewedByID     *uint      `json:"reviewed_by_id"`

	Question   *Question   `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Submission *Submission `json:"-" gorm:"foreignKey:SubmissionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SubmissionAnswer) TableName() string { return "lms_submission_answers" }
