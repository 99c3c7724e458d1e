package impl

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"blogger-auth/internal/domain"
)

// Audit writes are best effort: a failed append must never fail the flow
// that triggered it.
func appendAudit(ctx context.Context, st auditStore, userID *uuid.UUID, action string, payload any, ip, title string) {
	metadata, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("audit payload not serializable", "action", action, "error", err)
		metadata = nil
	}
	entry := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
		IP:       ip,
		Title:    title,
	}
	if err := st.Append(ctx, entry); err != nil {
		slog.Warn("audit append failed", "action", action, "error", err)
	}
}
