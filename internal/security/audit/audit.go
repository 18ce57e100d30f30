package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/orgvault/internal/security/middleware"
)

// Logger emits structured audit records for lifecycle and auth events.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, organization, adminID, action, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("organization", organization),
		slog.String("admin_id", adminID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", middleware.RequestIDFromContext(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogCreate(ctx context.Context, organization, adminID, status, details string) {
	al.LogAction(ctx, organization, adminID, "create_organization", status, details)
}

func (al *Logger) LogUpdate(ctx context.Context, organization, adminID, status, details string) {
	al.LogAction(ctx, organization, adminID, "update_organization", status, details)
}

func (al *Logger) LogDelete(ctx context.Context, organization, adminID, status, details string) {
	al.LogAction(ctx, organization, adminID, "delete_organization", status, details)
}

func (al *Logger) LogLogin(ctx context.Context, email, status string) {
	al.LogAction(ctx, "", "", "login", status, email)
}

func (al *Logger) LogDenied(ctx context.Context, organization, adminID, reason string) {
	al.LogAction(ctx, organization, adminID, "access_denied", "denied", reason)
}
