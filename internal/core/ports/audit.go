package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// AuditRepository persists the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
	// ListRecent returns the newest events first.
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

// Auditor accepts audit events without blocking the caller.
type Auditor interface {
	Record(event domain.AuditEvent)
}
