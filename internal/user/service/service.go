// Package service implements the registration workflow.
//
// Register validates the payload, persists an inactive account and schedules
// the activation email. Validation failures are an outcome, not an error: the
// caller gets the localized field messages back. Errors returned from
// Register are domain errors for failures the client cannot fix.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"signup/internal/notification"
	"signup/internal/platform/metrics"
	"signup/internal/user/models"
	"signup/internal/user/secrets"
	"signup/internal/user/validation"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/email"
	"signup/pkg/platform/sentinel"
	"signup/pkg/requestcontext"
)

// SuccessMessage is returned for every created account.
const SuccessMessage = "User created"

const (
	activationSubjectCode = "activation_email_subject"
	activationBodyCode    = "activation_email_body"
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Localizer interface {
	Resolve(code string, locale language.Tag) string
	ResolveWith(code string, locale language.Tag, data any) string
}

type Notifier interface {
	Enqueue(ctx context.Context, msg notification.Message) *notification.Delivery
}

// Status is the terminal state of a registration.
type Status int

const (
	StatusCreated Status = iota
	StatusRejected
)

// Outcome is the result of a registration the service handled. Exactly one
// of Message (created) or Errors (rejected) is set.
type Outcome struct {
	Status  Status
	Message string
	Errors  models.ValidationErrors
	Account *models.Account
	// Notification resolves when the activation email was sent or given up
	// on. Register never waits for it.
	Notification *notification.Delivery
}

// Service orchestrates account registration.
type Service struct {
	accounts  AccountStore
	validator *validation.Validator
	hasher    PasswordHasher
	tokens    func() (string, error)
	localizer Localizer
	notifier  Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

// WithTokenGenerator replaces the activation token source.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		s.tokens = gen
	}
}

func New(accounts AccountStore, localizer Localizer, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		accounts:  accounts,
		validator: validation.New(accounts),
		hasher:    secrets.NewHasher(0),
		tokens:    secrets.GenerateActivationToken,
		localizer: localizer,
		notifier:  notifier,
		logger:    slog.Default(),
		tracer:    otel.Tracer("signup/internal/user/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register runs the registration workflow for one payload. locale selects
// the language of validation messages and of the activation email.
func (s *Service) Register(ctx context.Context, req models.RegistrationRequest, locale language.Tag) (*Outcome, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "user.Register", trace.WithAttributes(
		attribute.String("locale", locale.String()),
	))
	defer span.End()
	if s.metrics != nil {
		defer s.metrics.ObserveRegistration(start)
	}

	violations, err := s.validator.Validate(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to validate registration")
	}
	if len(violations) > 0 {
		return s.reject(ctx, span, violations, locale), nil
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to hash password")
	}
	token, err := s.tokens()
	if err != nil {
		return nil, s.fail(ctx, span, err, "failed to generate activation token")
	}

	account := models.NewAccount(uuid.New(), req.Username, req.Email, digest, token, requestcontext.Now(ctx))
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Lost the race against a concurrent registration for the same email.
			return s.reject(ctx, span, []validation.Violation{
				{Field: models.FieldEmail, Code: validation.CodeEmailInUse},
			}, locale), nil
		}
		return nil, s.fail(ctx, span, err, "failed to create account")
	}
	span.SetAttributes(attribute.String("account_id", account.ID.String()))

	delivery := s.notifier.Enqueue(ctx, s.activationMessage(account, locale))

	s.logger.InfoContext(ctx, "account created",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", account.ID,
		"email", email.Mask(account.Email),
	)
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}

	return &Outcome{
		Status:       StatusCreated,
		Message:      SuccessMessage,
		Account:      account,
		Notification: delivery,
	}, nil
}

func (s *Service) reject(ctx context.Context, span trace.Span, violations []validation.Violation, locale language.Tag) *Outcome {
	errs := make(models.ValidationErrors, 0, len(violations))
	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		errs = append(errs, models.FieldError{
			Field:   v.Field,
			Code:    v.Code,
			Message: s.localizer.Resolve(v.Code, locale),
		})
		fields = append(fields, v.Field)
		if s.metrics != nil {
			s.metrics.IncrementValidationFailure(v.Field)
		}
	}
	span.SetAttributes(attribute.StringSlice("validation.fields", fields))
	s.logger.InfoContext(ctx, "registration rejected",
		"request_id", requestcontext.RequestID(ctx),
		"fields", fields,
	)
	return &Outcome{Status: StatusRejected, Errors: errs}
}

// fail logs the cause and returns a generic internal error that is safe to
// show to clients.
func (s *Service) fail(ctx context.Context, span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) activationMessage(account *models.Account, locale language.Tag) notification.Message {
	data := struct {
		Username string
		Token    string
	}{Username: account.Username, Token: account.ActivationToken}
	return notification.Message{
		To:      []string{account.Email},
		Subject: s.localizer.Resolve(activationSubjectCode, locale),
		Body:    s.localizer.ResolveWith(activationBodyCode, locale, data),
	}
}
