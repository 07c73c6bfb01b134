package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type OrderStatus string

// remember to add new statuses to the orderTransitions map
const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Terminal statuses have no outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := orderTransitions[status]; ok {
		return status, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, s)
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return slices.Contains(orderTransitions[s], target)
}

func (s OrderStatus) IsTerminal() bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

func ToPaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return status, nil
	}

	return "", fmt.Errorf("%w: payment status %q", ErrBadRequest, s)
}

type ShippingDetails struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

func (d ShippingDetails) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"address", d.Address},
		{"city", d.City},
		{"state", d.State},
		{"country", d.Country},
		{"postalCode", d.PostalCode},
		{"phone", d.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: shipping %s is required", ErrBadRequest, f.name)
		}
	}

	return nil
}

type Notification struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

type Order struct {
	ID            uuid.UUID
	BuyerID       uint64
	TotalAmount   decimal.Decimal
	PaymentMethod string
	PaymentStatus PaymentStatus
	Status        OrderStatus
	TrackingInfo  string
	Shipping      ShippingDetails
	Notifications []Notification
	Version       int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Notify appends a notification and drops the oldest entries beyond limit.
// A non-positive limit keeps the whole log.
func (o *Order) Notify(message string, at time.Time, limit int) {
	o.Notifications = append(o.Notifications, Notification{Message: message, CreatedAt: at})
	if limit > 0 && len(o.Notifications) > limit {
		o.Notifications = slices.Clone(o.Notifications[len(o.Notifications)-limit:])
	}
}

// OrderLine is one product entry of an order. Price is the unit price at
// purchase time; SellerID is resolved from the product owner.
type OrderLine struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	SellerID  uint64
	Quantity  int64
	Price     decimal.Decimal

	CreatedAt time.Time
}

type LineItem struct {
	ProductID uuid.UUID
	Quantity  int64
}

type OrderRequest struct {
	Items          []LineItem
	PaymentMethod  string
	Shipping       ShippingDetails
	IdempotencyKey string
}

// MaxPaymentMethodLen matches the orders.payment_method column.
const MaxPaymentMethodLen = 64

// Validate checks the request shape only; stock is checked by the ledger.
func (r OrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: items must not be empty", ErrBadRequest)
	}
	for _, item := range r.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: product id is required", ErrBadRequest)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity of product %s must be positive", ErrBadRequest, item.ProductID)
		}
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method is required", ErrBadRequest)
	}
	if utf8.RuneCountInString(r.PaymentMethod) > MaxPaymentMethodLen {
		return fmt.Errorf("%w: payment method is longer than %d characters", ErrBadRequest, MaxPaymentMethodLen)
	}

	return r.Shipping.Validate()
}

// MergedItems sums quantities of repeated products keeping first-seen order.
func (r OrderRequest) MergedItems() []LineItem {
	merged := make([]LineItem, 0, len(r.Items))
	index := make(map[uuid.UUID]int, len(r.Items))
	for _, item := range r.Items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// OrderFilter has AND semantics across fields. An empty filter matches all orders.
type OrderFilter struct {
	BuyerID  *uint64
	SellerID *uint64
}
