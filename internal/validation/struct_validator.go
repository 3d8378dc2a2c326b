package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "lgpsreport/internal/errors"
)

// Validator validates request structs, reporting fields by their JSON name.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a struct validator
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s. Field failures are returned as a VALIDATION
// application error carrying the per-field details.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return apperrors.NewAppValidationError("request validation failed").
		WithContext("errors", apperrors.FromValidator(verrs))
}
