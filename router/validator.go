package router

import (
	"reflect"
	"strings"

	"gopkg.in/go-playground/validator.v9"
)

// NewValidator func
func NewValidator() *Validator {
	v := validator.New()
	// report the json field names, e.g. "label" instead of "Label"
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{
		validator: v,
	}
}

// Validator struct
type Validator struct {
	validator *validator.Validate
}

// Validate func
func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}
