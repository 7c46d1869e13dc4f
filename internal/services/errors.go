package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/backoffice-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Accounts
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidRole        = errors.New("invalid user role")

	// CRM and operations
	ErrClientNotFound          = errors.New("client not found")
	ErrServiceNotFound         = errors.New("service not found")
	ErrCategoryNotFound        = errors.New("service category not found")
	ErrCategoryNameTaken       = errors.New("service category name already exists")
	ErrActivityNotFound        = errors.New("activity not found")
	ErrActivityLineNotFound    = errors.New("activity line not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrReceiptNotFound         = errors.New("loyverse receipt not found")
	ErrLoyverseNotConfigured   = errors.New("no active loyverse store or token configured")

	// Inventory
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrStockMoveNotFound = errors.New("stock move not found")
	ErrNegativeStock     = errors.New("stock cannot become negative")

	// Content calendar and wigs
	ErrContentNotFound    = errors.New("content item not found")
	ErrReviewCommentEmpty = errors.New("a review comment is required")
	ErrWigProductNotFound = errors.New("wig product not found")
	ErrCareWigNotFound    = errors.New("care wig not found")

	// Tasks
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskTemplateNotFound   = errors.New("task template not found")
	ErrRecurrenceRuleNotFound = errors.New("recurrence rule not found")
	ErrChecklistItemNotFound  = errors.New("checklist item not found")

	// LMS catalog
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseSlugTaken    = errors.New("course slug already exists")
	ErrModuleNotFound     = errors.New("module not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrBadgeNotFound      = errors.New("badge not found")

	// LMS engine
	ErrEnrollmentNotFound       = errors.New("enrollment not found")
	ErrLessonNotInCourse        = errors.New("lesson does not belong to the enrollment course")
	ErrQuizNotInCourse          = errors.New("quiz does not belong to the enrollment course")
	ErrAssignmentNotInCourse    = errors.New("assignment does not belong to the enrollment course")
	ErrQuizInactive             = errors.New("quiz is not active")
	ErrQuizAttemptLimitExceeded = errors.New("maximum quiz attempts reached")
	ErrSubmissionNotFound       = errors.New("submission not found")
	ErrAnswerNotFound           = errors.New("answer not found")
	ErrAnswerNotManual          = errors.New("answer does not require manual review")
	ErrEnrollmentNotCompleted   = errors.New("enrollment is not completed")
	ErrCertificateNotFound      = errors.New("certificate not found")
	ErrCertificateRevoked       = errors.New("certificate is revoked")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// validationFailure wraps a single field failure as ValidationErrors
func validationFailure(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*NewValidationError(field, message, value)}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID uint, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

var notFoundErrors = []error{
	ErrNotFound, ErrUserNotFound, ErrClientNotFound, ErrServiceNotFound, ErrCategoryNotFound,
	ErrActivityNotFound, ErrActivityLineNotFound, ErrReceiptNotFound, ErrItemNotFound,
	ErrStockMoveNotFound, ErrTaskNotFound, ErrTaskTemplateNotFound, ErrRecurrenceRuleNotFound,
	ErrChecklistItemNotFound, ErrCourseNotFound, ErrModuleNotFound, ErrLessonNotFound,
	ErrQuizNotFound, ErrQuestionNotFound, ErrAssignmentNotFound, ErrBadgeNotFound,
	ErrEnrollmentNotFound, ErrSubmissionNotFound, ErrAnswerNotFound, ErrCertificateNotFound,
	ErrContentNotFound, ErrWigProductNotFound, ErrCareWigNotFound,
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUserInactive) ||
		errors.As(err, &pe)
}

var validationSentinels = []error{
	ErrValidationFailed, ErrInvalidStatusTransition, ErrQuizAttemptLimitExceeded, ErrNegativeStock,
	ErrInvalidRole, ErrLessonNotInCourse, ErrQuizNotInCourse, ErrAssignmentNotInCourse, ErrQuizInactive, ErrAnswerNotManual,
	ErrEnrollmentNotCompleted, ErrCertificateRevoked, ErrLoyverseNotConfigured, ErrReviewCommentEmpty,
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	for _, target := range validationSentinels {
		if errors.Is(err, target) {
			return true
		}
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrCategoryNameTaken) ||
		errors.Is(err, ErrCourseSlugTaken)
}
