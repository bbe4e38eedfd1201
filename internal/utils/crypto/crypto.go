// Package crypto hashes account passwords and enforces their strength rule.
package crypto

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// PasswordTag is the validator tag checked by IsStrong.
const PasswordTag = "password"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var ErrPasswordStrength = errors.New("password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, and one digit")

// HashPassword hashes password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword returns nil when password matches hash.
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsStrong requires MinPasswordLength characters with an upper case letter, a
// lower case letter and a digit.
func IsStrong(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// RegisterPasswordValidator adds PasswordTag to v. Registering twice is not an error.
func RegisterPasswordValidator(v *validator.Validate) error {
	err := v.RegisterValidation(PasswordTag, func(fl validator.FieldLevel) bool {
		return IsStrong(fl.Field().String())
	})
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}
