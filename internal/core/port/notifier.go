package port

import (
	"time"

	"github.com/google/uuid"
)

type SellerNotification struct {
	EventID   uuid.UUID   `json:"event_id"`
	SellerID  uint64      `json:"seller_id"`
	OrderID   uuid.UUID   `json:"order_id"`
	Products  []uuid.UUID `json:"products"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

// SellerNotifier delivers events in the background. Schedule must not block
// the caller for long and never reports delivery failures.
//
//go:generate mockgen -source=notifier.go -destination=mock/notifier.go -package=mock
type SellerNotifier interface {
	ScheduleSellerNotification(event SellerNotification)
}
