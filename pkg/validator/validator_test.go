package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type registerInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"omitempty,oneof=STUDENT MENTOR ADMIN"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(registerInput{Email: "nope", Password: "short", Role: "ROOT"})
	msg := FormatValidationError(err)

	assert.Contains(t, msg, "Email must be a valid email")
	assert.Contains(t, msg, "Password must be at least 8 characters")
	assert.Contains(t, msg, "Role must be one of: STUDENT MENTOR ADMIN")
}

func TestFormatValidationErrorHidesUnknownErrors(t *testing.T) {
	assert.Equal(t, "invalid request", FormatValidationError(errors.New("EOF at byte 12")))
}
