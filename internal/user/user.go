// Package user wires the registration module: account storage, the
// registration workflow and its HTTP handler.
package user

import (
	"log/slog"

	"signup/internal/user/handler"
	"signup/internal/user/service"
)

// Service exposes the registration workflow.
type Service = service.Service

// Handler wires the signup endpoint to the registration service.
type Handler = handler.Handler

// NewService constructs the registration service with required dependencies.
func NewService(accounts service.AccountStore, localizer service.Localizer, notifier service.Notifier, opts ...service.Option) *Service {
	return service.New(accounts, localizer, notifier, opts...)
}

// NewHandler constructs the HTTP handler for the signup endpoint.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
