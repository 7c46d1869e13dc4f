package validator

import (
	"testing"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ruleRequest struct {
	Role      string `json:"role" validate:"required,user_role"`
	Frequency string `json:"frequency" validate:"required,recurrence_frequency"`
	Weekdays  string `json:"weekdays" validate:"omitempty,weekdays"`
	LessonID  *uint  `json:"lesson_id"`
	ModuleID  *uint  `json:"module_id"`
}

func (r ruleRequest) ValidateBusiness() ValidationErrors {
	return RequireOneOf("lesson_id", "lesson or module is required", r.LessonID != nil, r.ModuleID != nil)
}

func TestValidate_CustomTags(t *testing.T) {
	v := New()
	lessonID := uint(1)

	t.Run("valid request", func(t *testing.T) {
		err := v.Validate(ruleRequest{Role: "MANAGER", Frequency: "WEEKLY", Weekdays: "0, 2,4", LessonID: &lessonID})
		assert.NoError(t, err)
	})

	t.Run("invalid tags use json names", func(t *testing.T) {
		err := v.Validate(ruleRequest{Role: "intern", Frequency: "YEARLY", Weekdays: "1,9", LessonID: &lessonID})
		require.Error(t, err)

		errs, ok := err.(ValidationErrors)
		require.True(t, ok)
		fields := map[string]string{}
		for _, e := range errs {
			fields[e.Field] = e.Rule
		}
		assert.Equal(t, "user_role", fields["role"])
		assert.Equal(t, "recurrence_frequency", fields["frequency"])
		assert.Equal(t, "weekdays", fields["weekdays"])
	})

	t.Run("business rules run after tags", func(t *testing.T) {
		err := v.Validate(ruleRequest{Role: "STAFF", Frequency: "DAILY"})
		require.Error(t, err)
		errs := err.(ValidationErrors)
		require.Len(t, errs, 1)
		assert.Equal(t, "lesson_id", errs[0].Field)
	})
}

func TestRequireExactlyOne(t *testing.T) {
	assert.Empty(t, RequireExactlyOne("scope", "pick one", true, false, false))
	assert.Len(t, RequireExactlyOne("scope", "pick one", true, true, false), 1)
	assert.Len(t, RequireExactlyOne("scope", "pick one", false, false), 1)
}

func TestQuestionValidator(t *testing.T) {
	qv := NewQuestionValidator()

	tests := []struct {
		name     string
		qType    models.QuestionType
		points   int
		correct  string
		manual   bool
		choices  []ChoiceInput
		wantErrs int
	}{
		{"mcq ok", models.QuestionMCQ, 1, "", false, []ChoiceInput{{"a", true}, {"b", false}}, 0},
		{"mcq without correct choice", models.QuestionMCQ, 1, "", false, []ChoiceInput{{"a", false}, {"b", false}}, 1},
		{"true false needs two choices", models.QuestionTrueFalse, 1, "", false, []ChoiceInput{{"vrai", true}}, 1},
		{"short needs correct text", models.QuestionShort, 2, "", false, nil, 1},
		{"short manual review", models.QuestionShort, 2, "", true, nil, 0},
		{"zero points", models.QuestionShort, 0, "ok", false, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := qv.ValidateQuestion(tt.qType, tt.points, tt.correct, tt.manual, tt.choices)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}
