package auth

import (
	"errors"

	"gopkg.in/go-playground/validator.v9"
)

var validate = validator.New()

type setupInput struct {
	Username string `validate:"required"`
	Password string `validate:"min=4"`
	Confirm  string `validate:"eqfield=Password"`
}

var setupMessages = map[string]string{
	"Username.required": "Username is required.",
	"Password.min":      "Password must be at least 4 characters.",
	"Confirm.eqfield":   "Passwords do not match.",
}

type newPasswordInput struct {
	NewPassword     string `validate:"min=4"`
	ConfirmPassword string `validate:"eqfield=NewPassword"`
}

var newPasswordMessages = map[string]string{
	"NewPassword.min":         "New password must be at least 4 characters.",
	"ConfirmPassword.eqfield": "New passwords do not match.",
}

// validateInput runs the struct rules and turns the first failure into a ValidationError
func validateInput(input interface{}, messages map[string]string) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
			return &ValidationError{Msg: msg}
		}
		return &ValidationError{Msg: fe.Field() + " is invalid."}
	}
	return err
}
