package util

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"note-sync/internal/utils/crypto"

	"github.com/go-playground/validator/v10"
)

var (
	sharedOnce sync.Once
	shared     *validator.Validate
)

// Validator returns the process-wide validator with the custom rules registered.
// validator.Validate caches struct metadata and is safe for concurrent use.
func Validator() *validator.Validate {
	sharedOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		if err := crypto.RegisterPasswordValidator(v); err != nil {
			panic(err)
		}
		shared = v
	})
	return shared
}

// Describe renders validator failures as a single human-readable sentence.
// Errors of any other type are returned verbatim.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "hexcolor":
		return field + " must be a hex color"
	case "email":
		return field + " must be a valid email"
	case "password":
		return crypto.ErrPasswordStrength.Error()
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
