package port

import (
	"context"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// User
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)

	// Product
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	ReadProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)

	// Stock ledger. Reserve decrements only when enough stock is left,
	// Release increments unconditionally.
	Reserve(ctx context.Context, productID uuid.UUID, quantity int64) error
	Release(ctx context.Context, productID uuid.UUID, quantity int64) error

	// Order
	CreateOrder(ctx context.Context, order *domain.Order, lines []*domain.OrderLine) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ReadOrderLines(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updateFn UpdateOrderFn) (*domain.Order, error)
	// CancelOrder is UpdateOrder that also returns every line's quantity to
	// stock. The order and the ledger change together or not at all.
	CancelOrder(ctx context.Context, orderID uuid.UUID, updateFn UpdateOrderFn) (*domain.Order, error)
}

// UpdateOrderFn mutates the order in place while the order is locked.
// Returning an error aborts the update.
type UpdateOrderFn func(*domain.Order) error
