// Package identity contains the identity-management collaborators that
// receive sign-up requests from the form.
package identity

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/rackmate/internal/domain"
)

// LogRegistrar writes sign-up requests to the diagnostic log and accepts
// every one of them. Use it in development when no identity service runs.
type LogRegistrar struct {
	logger *slog.Logger
}

// NewLogRegistrar creates a LogRegistrar.
func NewLogRegistrar(logger *slog.Logger) *LogRegistrar {
	return &LogRegistrar{logger: logger}
}

// SignUp logs the request. The password is never written.
func (r *LogRegistrar) SignUp(ctx context.Context, req domain.SignUpRequest) error {
	r.logger.InfoContext(ctx, "signup attempt",
		"name", req.FullName,
		"email", req.Email,
		"password_length", len(req.Password),
	)
	return nil
}
