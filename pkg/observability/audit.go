package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/storefront/pkg/domain"
)

// AuditHooks logs every lifecycle event.
func AuditHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOpen: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_open", "action_id", e.ActionID, "generation", e.Generation)
		},
		OnClose: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session_close", "action_id", e.ActionID, "reason", e.Reason)
		},
		OnSubmit: func(ctx context.Context, e *domain.ActionEvent) {
			logger.InfoContext(ctx, "action_submit", "action_id", e.ActionID)
		},
		OnSettle: func(ctx context.Context, e *domain.ActionEvent) {
			attrs := []any{"action_id", e.ActionID, "outcome", e.Outcome, "duration", e.Duration}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			logger.InfoContext(ctx, "action_settle", attrs...)
		},
	}
}
