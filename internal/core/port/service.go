package port

import (
	"context"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	RegisterUser(ctx context.Context, user *domain.User) (*domain.User, error)
	LoginUser(ctx context.Context, login string, password string) (string, error)

	CreateProduct(ctx context.Context, caller domain.Caller, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)

	CreateOrder(ctx context.Context, caller domain.Caller, req domain.OrderRequest) (*domain.Order, bool, error)
	GetOrder(ctx context.Context, caller domain.Caller, orderID uuid.UUID) (*domain.Order, []*domain.OrderLine, error)
	ListOrders(ctx context.Context, caller domain.Caller) ([]*domain.Order, error)
	TransitionStatus(ctx context.Context, caller domain.Caller, orderID uuid.UUID,
		status domain.OrderStatus, trackingInfo *string) (*domain.Order, error)
	CancelOrder(ctx context.Context, caller domain.Caller, orderID uuid.UUID) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, caller domain.Caller, orderID uuid.UUID,
		status domain.PaymentStatus) (*domain.Order, error)
	MarkNotificationsRead(ctx context.Context, caller domain.Caller, orderID uuid.UUID) (*domain.Order, error)
}
