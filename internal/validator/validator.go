package validator

import (
	"errors"
	"fmt"
	"notary/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func IsValidLogin(login string) bool {
	return validate.Var(login, "required,alphanum,min=3,max=32") == nil
}

// IsValidPassword caps the length at 72 bytes, the most bcrypt reads.
func IsValidPassword(password string) bool {
	return validate.Var(password, "required,min=8,max=72") == nil
}

// Struct validates the `validate` tags of a request body. Field failures come back as
// *models.FieldsError, which wraps models.ErrInvalidParams.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", models.ErrInvalidParams, err.Error())
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}

	return &models.FieldsError{Fields: fields}
}
