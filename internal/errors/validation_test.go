package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("qty", "must be positive", -2)
	assert.Equal(t, "qty", err.Field)
	assert.Equal(t, -2, err.Value)
	assert.Equal(t, "validation error on field 'qty': must be positive", err.Error())
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = errs.Add("name", "is required", nil)
	assert.Equal(t, "validation failed: name is required", errs.Error())

	errs = errs.Add("price", "must not be negative", "-1")
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
	assert.Equal(t, []string{"name", "price"}, errs.Fields())
}

type sampleRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Qty    int    `json:"qty" validate:"min=1"`
	Status string `json:"status" validate:"omitempty,oneof=OPEN DONE"`
}

func TestToValidationErrors(t *testing.T) {
	v := validator.New()
	err := v.Struct(sampleRequest{Email: "not-an-email", Status: "LATE"})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 4)

	byRule := map[string]ValidationError{}
	for _, e := range errs {
		byRule[e.Rule] = e
	}
	assert.Equal(t, "is required", byRule["required"].Message)
	assert.Equal(t, "must be a valid email address", byRule["email"].Message)
	assert.Equal(t, "must be at least 1", byRule["min"].Message)
	assert.Equal(t, "must be one of: OPEN, DONE", byRule["oneof"].Message)
}

func TestToValidationErrors_IgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, ToValidationErrors(fmt.Errorf("boom")))
	assert.Empty(t, ToValidationErrors(nil))
}

func TestValidationErrors_OrNil(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.OrNil())

	errs = errs.Add("qty", "must be positive", -1)
	require.Error(t, errs.OrNil())
	assert.Equal(t, "validation failed: qty must be positive", errs.OrNil().Error())
}
