// Package validation checks request payloads with go-playground/validator
// and enforces the account password policy.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[\w.-]+@[a-zA-Z\d.-]+\.[a-zA-Z]{2,}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Errors lists every rule a value violated.
type Errors struct {
	Messages []string
}

func (e *Errors) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Messages, "; ")
}

// GetValidator returns the shared validator with the custom "account_email"
// rule registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
			return ValidEmail(fl.Field().String())
		})
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s and returns *Errors listing each failed field, or nil.
func Struct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Errors{}
	for _, fe := range fieldErrs {
		out.Messages = append(out.Messages, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: this field is required.", fe.Field())
	case "account_email":
		return "Invalid email format."
	case "min":
		if fe.Param() == "1" {
			return fmt.Sprintf("%s: this field may not be blank.", fe.Field())
		}
		return fmt.Sprintf("%s: ensure this field has at least %s characters.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s: ensure this field has no more than %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation.", fe.Field(), fe.Tag())
	}
}

// ValidEmail reports whether value looks like an email address.
func ValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}
