package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup/internal/user/models"
	"signup/internal/user/store/account"
	"signup/pkg/platform/sentinel"
)

var validRequest = models.RegistrationRequest{
	Username: "user1",
	Email:    "user1@mail.com",
	Password: "P4ssword",
}

func newValidator(t *testing.T, existing ...string) *Validator {
	t.Helper()
	store := account.NewInMemory()
	for _, e := range existing {
		a := models.NewAccount(uuid.New(), "taken", e, "digest", "token", time.Now())
		require.NoError(t, store.Create(context.Background(), a))
	}
	return New(store)
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	violations, err := newValidator(t).Validate(context.Background(), validRequest)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RegistrationRequest)
		field  string
		code   string
	}{
		{"username empty", func(r *models.RegistrationRequest) { r.Username = "" }, models.FieldUsername, CodeUsernameNull},
		{"username 3 chars", func(r *models.RegistrationRequest) { r.Username = "usr" }, models.FieldUsername, CodeUsernameSize},
		{"username 33 chars", func(r *models.RegistrationRequest) { r.Username = strings.Repeat("a", 33) }, models.FieldUsername, CodeUsernameSize},
		{"email empty", func(r *models.RegistrationRequest) { r.Email = "" }, models.FieldEmail, CodeEmailNull},
		{"email without at", func(r *models.RegistrationRequest) { r.Email = "mail.com" }, models.FieldEmail, CodeEmailNotValid},
		{"email without domain", func(r *models.RegistrationRequest) { r.Email = "user@" }, models.FieldEmail, CodeEmailNotValid},
		{"email with undotted domain", func(r *models.RegistrationRequest) { r.Email = "user@mail" }, models.FieldEmail, CodeEmailNotValid},
		{"password empty", func(r *models.RegistrationRequest) { r.Password = "" }, models.FieldPassword, CodePasswordNull},
		{"password 5 chars", func(r *models.RegistrationRequest) { r.Password = "P4ssw" }, models.FieldPassword, CodePasswordSize},
		{"password all lowercase", func(r *models.RegistrationRequest) { r.Password = "alllowercase" }, models.FieldPassword, CodePasswordPattern},
		{"password all uppercase", func(r *models.RegistrationRequest) { r.Password = "ALLUPPERCASE" }, models.FieldPassword, CodePasswordPattern},
		{"password digits only", func(r *models.RegistrationRequest) { r.Password = "1234567890" }, models.FieldPassword, CodePasswordPattern},
		{"password lower and upper", func(r *models.RegistrationRequest) { r.Password = "lowerUPPER" }, models.FieldPassword, CodePasswordPattern},
		{"password symbols and digits", func(r *models.RegistrationRequest) { r.Password = "!!!999" }, models.FieldPassword, CodePasswordPattern},
		{"password non-ascii letters and digit", func(r *models.RegistrationRequest) { r.Password = "şğüöç1" }, models.FieldPassword, CodePasswordPattern},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest
			tt.mutate(&req)

			violations, err := v.Validate(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, violations, 1)
			assert.Equal(t, Violation{Field: tt.field, Code: tt.code}, violations[0])
		})
	}
}

func TestValidateUsernameBoundaries(t *testing.T) {
	v := newValidator(t)
	for _, n := range []int{UsernameMinLength, UsernameMaxLength} {
		req := validRequest
		req.Username = strings.Repeat("u", n)
		violations, err := v.Validate(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, violations, "username of length %d should be accepted", n)
	}

	t.Run("counts characters not bytes", func(t *testing.T) {
		req := validRequest
		req.Username = strings.Repeat("ş", UsernameMaxLength)
		violations, err := v.Validate(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}

func TestValidatePasswordAccepted(t *testing.T) {
	for _, password := range []string{"Password1", "password1", "UPPER555", "1a2b3c"} {
		t.Run(password, func(t *testing.T) {
			req := validRequest
			req.Password = password
			violations, err := newValidator(t).Validate(context.Background(), req)
			require.NoError(t, err)
			assert.Empty(t, violations)
		})
	}
}

func TestValidateEmailInUse(t *testing.T) {
	v := newValidator(t, "user1@mail.com")

	violations, err := v.Validate(context.Background(), validRequest)
	require.NoError(t, err)
	assert.Equal(t, []Violation{{Field: models.FieldEmail, Code: CodeEmailInUse}}, violations)

	t.Run("match is case-sensitive", func(t *testing.T) {
		req := validRequest
		req.Email = "User1@mail.com"
		violations, err := v.Validate(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})
}

func TestValidateReportsEveryFailingFieldInOrder(t *testing.T) {
	violations, err := newValidator(t).Validate(context.Background(), models.RegistrationRequest{
		Password: "alllowercase",
	})
	require.NoError(t, err)
	assert.Equal(t, []Violation{
		{Field: models.FieldUsername, Code: CodeUsernameNull},
		{Field: models.FieldEmail, Code: CodeEmailNull},
		{Field: models.FieldPassword, Code: CodePasswordPattern},
	}, violations)
}

func TestValidateBailsWithinField(t *testing.T) {
	lookup := &countingLookup{}
	v := New(lookup)

	req := validRequest
	req.Email = "not-an-email"
	violations, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []Violation{{Field: models.FieldEmail, Code: CodeEmailNotValid}}, violations)
	assert.Zero(t, lookup.calls, "store must not be queried once syntax fails")
}

func TestValidateStoreFailure(t *testing.T) {
	v := New(&countingLookup{err: errors.New("connection refused")})

	_, err := v.Validate(context.Background(), validRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate email")
}

type countingLookup struct {
	calls int
	err   error
}

func (l *countingLookup) FindByEmail(_ context.Context, _ string) (*models.Account, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return nil, sentinel.ErrNotFound
}
