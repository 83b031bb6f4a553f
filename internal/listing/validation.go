package listing

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a form field name to a human readable message.
// Returned by mutations that were rejected before touching the store.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid fields: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(v[f])
	}
	return b.String()
}

// AsValidationErrors extracts ValidationErrors from err
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

var messages = map[string]string{
	"title":       "Title is required",
	"location":    "Location is required",
	"price":       "Valid price is required",
	"area":        "Valid area is required",
	"description": "Description is required",
	"images":      "At least one image URL is required",
	"type":        "Valid property type is required",
	"bedrooms":    "Valid number of bedrooms is required",
	"bathrooms":   "Valid number of bathrooms is required",
	"furnishing":  "Valid furnishing is required",
	"status":      "Valid status is required",
	"text":        "Message text is required",
	"sender":      "Valid sender is required",
	"ownerName":   "Owner name is required",
}

// rules are the validator tags of every editable field, keyed by form field name.
// They mirror the struct tags of PropertyForm and are used for partial updates.
var rules = map[string]string{
	"title":       "required",
	"location":    "required",
	"price":       "gt=0",
	"type":        "oneof=apartment house studio villa",
	"bedrooms":    "gt=0",
	"bathrooms":   "gt=0",
	"area":        "gt=0",
	"images":      "min=1",
	"description": "required",
	"furnishing":  "oneof=Unfurnished 'Semi Furnished' 'Fully Furnished'",
	"status":      "oneof=active inactive pending",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func message(field string) string {
	if m, ok := messages[field]; ok {
		return m
	}
	return "Invalid value"
}

// collect turns validator output into ValidationErrors, other errors are returned as is
func collect(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe.Field())
	}
	return out
}

// checkVar validates a single value against the rule of field and records a failure in errs
func checkVar(v *validator.Validate, errs ValidationErrors, field string, value interface{}) {
	if err := v.Var(value, rules[field]); err != nil {
		errs[field] = message(field)
	}
}
