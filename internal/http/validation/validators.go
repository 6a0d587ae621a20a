// Package validation provides field validators for request bodies.
// Validators return an empty string when the value is acceptable and a
// user-facing message otherwise; they never panic.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an
// error message if invalid.
type Validator func(v string) string

// emailRe is the basic local@domain.tld shape. Deliberately loose: real
// verification happens upstream; this only catches obvious typos early.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phoneRe limits phone numbers to digits, whitespace, and -+() punctuation.
var phoneRe = regexp.MustCompile(`^[\d\s\-+()]+$`)

// Required validates that a field is not empty.
func Required(fieldName string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return fieldName + " is required"
		}
		return ""
	}
}

// Email validates the basic local@domain.tld shape.
func Email(fieldName string) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return fieldName + " is required"
		}
		if !emailRe.MatchString(v) {
			return "Invalid email address"
		}
		return ""
	}
}

// MinLength validates that a field has at least minLen characters.
// Uses rune count for proper Unicode support.
func MinLength(fieldName string, minLen int) Validator {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return fieldName + " is required"
		}
		if utf8.RuneCountInString(v) < minLen {
			return fmt.Sprintf("%s must be at least %d characters", fieldName, minLen)
		}
		return ""
	}
}

// OptionalPhone validates the phone character set when a value is present.
func OptionalPhone(fieldName string) Validator {
	return func(v string) string {
		if v == "" {
			return ""
		}
		if !phoneRe.MatchString(v) {
			return fieldName + " contains invalid characters"
		}
		return ""
	}
}

// First runs validators against their values in order and returns the
// first failure message, or empty when everything passes.
func First(checks ...func() string) string {
	for _, check := range checks {
		if msg := check(); msg != "" {
			return msg
		}
	}
	return ""
}

// Check binds a validator to a value for use with First.
func Check(v Validator, value string) func() string {
	return func() string { return v(value) }
}
