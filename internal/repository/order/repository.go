package order

import (
	"context"

	"dlvrit-backend/internal/domain"
)

// Repository persists the per-order step-completion ledger. Step markers are
// written as each outbound call finishes so a charged-but-undelivered order is
// always visible in storage.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	MarkProvisioned(ctx context.Context, id, uploadURL string) error
	MarkCharged(ctx context.Context, id, paymentRef string) error
	MarkNotified(ctx context.Context, id string) error
	SetSessionID(ctx context.Context, id, sessionID string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
}
