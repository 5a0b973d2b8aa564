// internal/app/system/inputval/inputval.go
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule, already phrased for the user.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseKind(fl.Field().String())
			return ok
		})
	})
	return v
}

// Validate runs the `validate` struct tags of s. Messages use each field's
// `label` tag.
func Validate(s any) *Result {
	res := &Result{}
	err := engine().Struct(s)
	if err == nil {
		return res
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range ves {
		res.Errors = append(res.Errors, FieldError{Field: fe.StructField(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "emailaddr", "email":
		return "A valid email address is required."
	case "kind":
		return label + " is not a known content type."
	}
	return label + " is invalid."
}

// IsValidEmail applies validator's email rule to a bare address (no
// display name). Single-label domains such as "admin@mailserver" are also
// accepted.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if engine().Var(s, "email") == nil {
		return true
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || strings.Contains(s[at+1:], ".") {
		return false
	}
	return engine().Var(s+".local", "email") == nil
}
