package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"signup/internal/user/models"
	"signup/internal/user/service"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/platform/httputil"
	"signup/pkg/requestcontext"
)

// RegisterPath is the signup endpoint.
const RegisterPath = "/api/1.0/users"

const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after request object")

// Service defines the interface for registration.
type Service interface {
	Register(ctx context.Context, req models.RegistrationRequest, locale language.Tag) (*service.Outcome, error)
}

// Handler serves the signup endpoint.
type Handler struct {
	users  Service
	logger *slog.Logger
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// Register mounts the signup route. mw wraps only this route, so callers can
// attach per-route limits.
func (h *Handler) Register(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.With(mw...).Post(RegisterPath, h.handleRegister)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := decodeRegisterRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	outcome, err := h.users.Register(ctx, req, requestcontext.Locale(ctx))
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeInvalidInput) {
			h.logger.ErrorContext(ctx, "registration failed",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	switch outcome.Status {
	case service.StatusRejected:
		httputil.WriteJSON(w, http.StatusBadRequest, &ValidationErrorResponse{ValidationErrors: outcome.Errors})
	default:
		httputil.WriteJSON(w, http.StatusOK, &MessageResponse{Message: outcome.Message})
	}
}

// decodeRegisterRequest accepts a single JSON object. An empty body counts as
// an empty object; anything else, including data after the object, is
// rejected.
func decodeRegisterRequest(body io.Reader) (models.RegistrationRequest, error) {
	var payload RegisterRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload.toModel(), nil
		}
		return models.RegistrationRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return models.RegistrationRequest{}, errTrailingData
	}
	return payload.toModel(), nil
}
