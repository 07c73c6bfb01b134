package port

import (
	"context"

	"github.com/google/uuid"
)

// IdempotencyStore remembers which order a client key produced.
//
// Claim returns claimed=true when the key was free and is now held by the caller.
// Otherwise it returns the order already bound to the key, or uuid.Nil while the
// first request is still running.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (orderID uuid.UUID, claimed bool, err error)
	Complete(ctx context.Context, key string, orderID uuid.UUID) error
	Abandon(ctx context.Context, key string) error
}

//go:generate mockgen -source=idempotency.go -destination=mock/idempotency.go -package=mock

// OrderObserver receives lifecycle signals for metrics.
type OrderObserver interface {
	OrderCreated(itemCount int)
	StockRejected()
	StockCompensated(lines int)
	StatusChanged(status string)
}
