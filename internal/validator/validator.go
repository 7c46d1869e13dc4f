package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/backoffice-service/internal/errors"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

type (
	ValidationError  = errors.ValidationError
	ValidationErrors = errors.ValidationErrors
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	businessValidator *BusinessValidator
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		businessValidator: NewBusinessValidator(),
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := errors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateBusiness validates business rules only
func (v *Validator) ValidateBusiness(s interface{}) ValidationErrors {
	return v.businessValidator.Validate(s)
}

// Validate performs complete validation (struct + business rules)
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}

	if errs := v.ValidateBusiness(s); len(errs) > 0 {
		return errs
	}

	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("activity_status", validateActivityStatus)
	validate.RegisterValidation("question_type", oneOfStrings(
		string(models.QuestionMCQ), string(models.QuestionTrueFalse), string(models.QuestionShort)))
	validate.RegisterValidation("lesson_type", oneOfStrings(
		string(models.LessonTypeCourse), string(models.LessonTypePractice),
		string(models.LessonTypeWorkshop), string(models.LessonTypeEvaluation)))
	validate.RegisterValidation("badge_rule", oneOfStrings(
		string(models.BadgeCourseCompleted), string(models.BadgeModuleCompleted),
		string(models.BadgeQuizScore), string(models.BadgeKPITarget), string(models.BadgeAssignmentApproved)))
	validate.RegisterValidation("recurrence_frequency", oneOfStrings(
		string(models.FrequencyDaily), string(models.FrequencyWeekly), string(models.FrequencyMonthly)))
	validate.RegisterValidation("stock_move_type", oneOfStrings(
		string(models.StockMoveIn), string(models.StockMoveOut), string(models.StockMoveAdjust), string(models.StockMoveLoss)))
	validate.RegisterValidation("weekdays", validateWeekdays)
	validate.RegisterValidation("content_status", func(fl validator.FieldLevel) bool {
		return models.ContentStatus(fl.Field().String()).IsValid()
	})
	validate.RegisterValidation("content_platform", func(fl validator.FieldLevel) bool {
		return models.ContentPlatform(fl.Field().String()).IsValid()
	})
	validate.RegisterValidation("wig_status", oneOfStrings(
		string(models.WigInStock), string(models.WigReserved), string(models.WigSold),
		string(models.WigRetouch), string(models.WigReturned)))
	validate.RegisterValidation("care_status", oneOfStrings(
		string(models.CareReceived), string(models.CareInProgress), string(models.CareReady),
		string(models.CareDelivered), string(models.CareCanceled)))

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).IsValid()
}

func validateActivityStatus(fl validator.FieldLevel) bool {
	return models.ActivityStatus(fl.Field().String()).IsValid()
}

func validateWeekdays(fl validator.FieldLevel) bool {
	_, invalid := models.ParseWeekdays(fl.Field().String())
	return len(invalid) == 0
}

func oneOfStrings(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, v := range values {
			if v == value {
				return true
			}
		}
		return false
	}
}
