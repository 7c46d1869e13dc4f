package validator

import (
	"strings"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

// QuestionValidator handles quiz question validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ChoiceInput is the minimal view of a choice the validator needs.
type ChoiceInput struct {
	Text      string
	IsCorrect bool
}

// ValidateQuestion checks that a question of the given type can be graded.
func (v *QuestionValidator) ValidateQuestion(questionType models.QuestionType, points int, correctText string, manualReview bool, choices []ChoiceInput) ValidationErrors {
	var errs ValidationErrors

	if points < 1 {
		errs = errs.Add("points", "must be at least 1", points)
	}

	switch questionType {
	case models.QuestionMCQ:
		errs = append(errs, v.validateChoices(choices, 2, 0)...)
	case models.QuestionTrueFalse:
		errs = append(errs, v.validateChoices(choices, 2, 2)...)
	case models.QuestionShort:
		if len(choices) > 0 {
			errs = errs.Add("choices", "short answer questions do not take choices", len(choices))
		}
		if !manualReview && strings.TrimSpace(correctText) == "" {
			errs = errs.Add("correct_text", "is required unless manual review is enabled", correctText)
		}
	default:
		errs = errs.Add("type", "unsupported question type", questionType)
	}

	return errs
}

func (v *QuestionValidator) validateChoices(choices []ChoiceInput, min, max int) ValidationErrors {
	var errs ValidationErrors
	if len(choices) < min {
		errs = errs.Add("choices", "not enough choices", len(choices))
	}
	if max > 0 && len(choices) > max {
		errs = errs.Add("choices", "too many choices", len(choices))
	}

	correct := 0
	for _, c := range choices {
		if strings.TrimSpace(c.Text) == "" {
			errs = errs.Add("choices", "choice text is required", c.Text)
		}
		if c.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		errs = errs.Add("choices", "at least one choice must be correct", correct)
	}
	return errs
}
