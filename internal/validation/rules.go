// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/speakwell/rtcauth/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput. The trailing
// period validation.Errors appends is dropped so the wrapped message reads cleanly.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, strings.TrimSuffix(err.Error(), "."))
}

// NoWhitespace validates that a string contains no whitespace or control characters.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.IndexFunc(s, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsControl(r)
		}) < 0
	},
	validation.NewError("validation_no_whitespace", "must not contain whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// MaxBytes validates that a string is at most n bytes long. Length counts runes,
// which is not what TRTC enforces for identifiers.
func MaxBytes(n int) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			return len(s) <= n
		},
		validation.NewError("validation_max_bytes", fmt.Sprintf("must be at most %d bytes", n)),
	)
}
