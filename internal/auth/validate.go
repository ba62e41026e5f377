package auth

import (
	"errors"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/wChoros/OpenEduLog-backend/internal/apperr"
)

const birthDateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("strongpassword", strongPassword)
	return v
}

// strongPassword enforces the registration password policy: at least 8
// characters with an upper-case letter, a lower-case letter and a digit.
func strongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

type AddressInput struct {
	Street  string `json:"street" validate:"required"`
	House   string `json:"house" validate:"required"`
	City    string `json:"city" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type RegisterInput struct {
	FirstName   string       `json:"first_name" validate:"required"`
	LastName    string       `json:"last_name" validate:"required"`
	Email       string       `json:"email" validate:"required,email"`
	Login       string       `json:"login" validate:"required,min=3"`
	Password    string       `json:"password" validate:"required,strongpassword"`
	PhoneNumber string       `json:"phone_number" validate:"required"`
	BirthDate   string       `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Address     AddressInput `json:"address"`
}

// validate checks the payload and returns the parsed birth date.
func (in RegisterInput) validate(now time.Time) (time.Time, error) {
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return time.Time{}, apperr.Validation(messageFor(fieldErrs[0]))
		}
		return time.Time{}, apperr.Validation("Provide all required data")
	}

	birthDate, err := time.Parse(birthDateLayout, in.BirthDate)
	if err != nil {
		return time.Time{}, apperr.Validation("Birth date is invalid")
	}
	if birthDate.After(now) {
		return time.Time{}, apperr.Validation("Birth date is invalid")
	}
	return birthDate, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Provide all required data"
	case "email":
		return "Email is invalid"
	case "strongpassword":
		return "Password must be at least 8 characters with an upper-case letter, a lower-case letter and a digit"
	case "datetime":
		return "Birth date is invalid"
	case "min":
		return "Login is too short"
	}
	return "Provide all required data"
}
