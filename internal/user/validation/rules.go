package validation

import (
	"context"
	"errors"
	"unicode/utf8"

	"signup/internal/user/models"
	"signup/pkg/email"
	"signup/pkg/platform/sentinel"
)

// Codes produced by the registration rules. Each is also a message ID in the
// i18n catalogs.
const (
	CodeUsernameNull    = "username_null"
	CodeUsernameSize    = "username_size"
	CodeEmailNull       = "email_null"
	CodeEmailNotValid   = "email_not_valid"
	CodeEmailInUse      = "email_inuse"
	CodePasswordNull    = "password_null"
	CodePasswordSize    = "password_size"
	CodePasswordPattern = "password_pattern"
)

// Username and password bounds, in characters.
const (
	UsernameMinLength = 4
	UsernameMaxLength = 32
	PasswordMinLength = 6
)

// Rule checks one field value and returns a code when it fails, or "" when it
// passes. Only store-backed rules return an error.
type Rule func(ctx context.Context, value string) (string, error)

// check lifts a pure predicate into a Rule.
func check(ok func(string) bool, code string) Rule {
	return func(_ context.Context, value string) (string, error) {
		if ok(value) {
			return "", nil
		}
		return code, nil
	}
}

// NotEmpty fails on empty values. Absent, null and non-string JSON all decode
// to "".
func NotEmpty(code string) Rule {
	return check(func(v string) bool { return v != "" }, code)
}

// LengthBetween fails when the character count is outside [min, max].
func LengthBetween(min, max int, code string) Rule {
	return check(func(v string) bool {
		n := utf8.RuneCountInString(v)
		return n >= min && n <= max
	}, code)
}

// MinLength fails when the character count is below min.
func MinLength(min int, code string) Rule {
	return check(func(v string) bool {
		return utf8.RuneCountInString(v) >= min
	}, code)
}

// EmailSyntax fails unless the value is local@domain with a dotted domain.
func EmailSyntax(code string) Rule {
	return check(email.IsValid, code)
}

// LetterAndDigit fails unless the value has an ASCII letter and an ASCII
// digit. Letter case is not checked: "password1" passes.
func LetterAndDigit(code string) Rule {
	return check(func(v string) bool {
		var letter, digit bool
		for _, r := range v {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
				letter = true
			case r >= '0' && r <= '9':
				digit = true
			}
		}
		return letter && digit
	}, code)
}

// EmailLookup is the read side of the account store used by EmailAvailable.
type EmailLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// EmailAvailable fails when an account with exactly this email exists.
func EmailAvailable(accounts EmailLookup, code string) Rule {
	return func(ctx context.Context, value string) (string, error) {
		_, err := accounts.FindByEmail(ctx, value)
		switch {
		case err == nil:
			return code, nil
		case errors.Is(err, sentinel.ErrNotFound):
			return "", nil
		default:
			return "", err
		}
	}
}
