// Package validation checks entity field rules declared in `validate` struct
// tags and reports failures as field-keyed validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"folio/internal/models"

	"github.com/go-playground/validator/v10"
)

// Clock returns the current time. Date rules are evaluated against it.
type Clock func() time.Time

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v     *validator.Validate
	clock Clock
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used by the date rules.
func WithClock(c Clock) Option {
	return func(v *Validator) {
		v.clock = c
	}
}

// New creates a validator with the application's custom rules registered.
func New(opts ...Option) *Validator {
	val := &Validator{v: validator.New(), clock: time.Now}
	for _, opt := range opts {
		opt(val)
	}

	// Use JSON tag names in error messages
	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(val.v, "notblank", notBlank)
	mustRegister(val.v, "notfutureyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(val.clock().Year())
	})
	mustRegister(val.v, "notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return !ok || !t.After(val.clock())
	})

	return val
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) != ""
	}
	return !field.IsZero()
}

// Now returns the validator's current time.
func (v *Validator) Now() time.Time {
	return v.clock()
}

// Validate validates a struct and returns a field validation error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return models.NewInternalError(err)
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		if _, seen := fieldErrors[e.Field()]; seen {
			continue
		}
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return models.NewFieldValidationError(fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field may not be blank."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
	case "gte":
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "url":
		return "Enter a valid URL."
	case "email":
		return "Enter a valid email address."
	case "notfutureyear":
		return "Publication year cannot be in the future."
	case "notfuture":
		return "Date cannot be in the future."
	default:
		return "Invalid value."
	}
}
