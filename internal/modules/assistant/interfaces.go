package assistant

import (
	"context"

	"museumtix/internal/domain"
	"museumtix/internal/modules/booking"
	"museumtix/internal/modules/catalog"
)

// CatalogSource provides the read-only museum and event catalog.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// BookingTool creates the booking once a draft is confirmed.
type BookingTool interface {
	Invoke(ctx context.Context, in booking.ToolInput) booking.ToolResult
}

// ChatLog is the append-only audit trail of turns.
type ChatLog interface {
	Append(ctx context.Context, e *domain.ChatLogEntry) error
	Recent(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error)
}
