// Package errors holds the field-level validation error shared by the
// validator and the services.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	default:
		return fmt.Sprintf("validation failed: %d field errors", len(ve))
	}
}

// Add appends a field error and returns the collection for chaining.
func (ve ValidationErrors) Add(field, message string, value interface{}) ValidationErrors {
	return append(ve, ValidationError{Field: field, Message: message, Value: value})
}

// OrNil returns nil for an empty collection so it can be returned as an error.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// Fields lists the failing field names in order.
func (ve ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ve))
	for _, e := range ve {
		fields = append(fields, e.Field)
	}
	return fields
}

// ToValidationErrors converts go-playground field errors. Any other error
// yields an empty collection.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// Messages for rules that take no parameter, including the custom tags
// registered by the validator package.
var ruleMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"uuid":     "must be a valid UUID",
	"url":      "must be a valid URL",
	"numeric":  "must be a number",
	"alpha":    "must contain only letters",
	"alphanum": "must contain only letters and numbers",
	"decimal":  "must be a decimal amount",

	"user_role":            "must be one of OWNER, MANAGER, ADMIN, STAFF, CASHIER",
	"activity_status":      "must be one of ARRIVED, IN_PROGRESS, DONE, TO_COLLECT, PAID, CANCELED",
	"question_type":        "must be one of MCQ, TRUE_FALSE, SHORT",
	"lesson_type":          "must be one of COURSE, PRACTICE, WORKSHOP, EVALUATION",
	"badge_rule":           "must be one of COURSE_COMPLETED, MODULE_COMPLETED, QUIZ_SCORE, KPI_TARGET, ASSIGNMENT_APPROVED",
	"recurrence_frequency": "must be DAILY, WEEKLY or MONTHLY",
	"stock_move_type":      "must be IN, OUT, ADJUST or LOSS",
	"weekdays":             "must list days between 0 (Monday) and 6 (Sunday)",
	"content_status":       "must be a known content status",
	"content_platform":     "must be one of INSTAGRAM, TIKTOK, FACEBOOK, WHATSAPP, YOUTUBE, OTHER",
	"wig_status":           "must be one of IN_STOCK, RESERVED, SOLD, RETOUCH, RETURNED",
	"care_status":          "must be one of RECEIVED, IN_PROGRESS, READY, DELIVERED, CANCELED",
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := ruleMessages[fe.Tag()]; ok {
		return msg
	}

	param := fe.Param()
	switch fe.Tag() {
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "len":
		return "must be exactly " + param + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "gtefield":
		return "must not be before " + param
	default:
		return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
	}
}
