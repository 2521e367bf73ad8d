// Package validation checks registration payloads.
//
// Fields are checked in a fixed order (username, email, password). Within a
// field the rules run in order and stop at the first failure, so each failing
// field yields exactly one code. The validator returns codes only; turning
// them into localized text is the caller's job.
package validation

import (
	"context"
	"fmt"

	"signup/internal/user/models"
)

// Violation is the first failed rule for a field.
type Violation struct {
	Field string
	Code  string
}

type fieldRules struct {
	name  string
	value func(models.RegistrationRequest) string
	rules []Rule
}

// Validator is immutable after construction and safe for concurrent use.
type Validator struct {
	fields []fieldRules
}

// New builds the registration rule set. accounts backs the email-in-use rule.
func New(accounts EmailLookup) *Validator {
	return &Validator{fields: []fieldRules{
		{
			name:  models.FieldUsername,
			value: func(r models.RegistrationRequest) string { return r.Username },
			rules: []Rule{
				NotEmpty(CodeUsernameNull),
				LengthBetween(UsernameMinLength, UsernameMaxLength, CodeUsernameSize),
			},
		},
		{
			name:  models.FieldEmail,
			value: func(r models.RegistrationRequest) string { return r.Email },
			rules: []Rule{
				NotEmpty(CodeEmailNull),
				EmailSyntax(CodeEmailNotValid),
				EmailAvailable(accounts, CodeEmailInUse),
			},
		},
		{
			name:  models.FieldPassword,
			value: func(r models.RegistrationRequest) string { return r.Password },
			rules: []Rule{
				NotEmpty(CodePasswordNull),
				MinLength(PasswordMinLength, CodePasswordSize),
				LetterAndDigit(CodePasswordPattern),
			},
		},
	}}
}

// Validate returns one violation per failing field, in field order. An error
// is returned only when a store-backed rule cannot reach the store.
func (v *Validator) Validate(ctx context.Context, req models.RegistrationRequest) ([]Violation, error) {
	var violations []Violation
	for _, f := range v.fields {
		value := f.value(req)
		for _, rule := range f.rules {
			code, err := rule(ctx, value)
			if err != nil {
				return nil, fmt.Errorf("validate %s: %w", f.name, err)
			}
			if code != "" {
				violations = append(violations, Violation{Field: f.name, Code: code})
				break
			}
		}
	}
	return violations, nil
}
