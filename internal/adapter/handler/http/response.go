package http

import (
	"time"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type productResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uint64    `json:"ownerId"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Price:     p.Price.String(),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type orderResponse struct {
	ID              uuid.UUID              `json:"id"`
	BuyerID         uint64                 `json:"buyerId"`
	TotalAmount     string                 `json:"totalAmount"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentStatus   domain.PaymentStatus   `json:"paymentStatus"`
	Status          domain.OrderStatus     `json:"status"`
	TrackingInfo    string                 `json:"trackingInfo,omitempty"`
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
	Notifications   []domain.Notification  `json:"notifications"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	notifications := o.Notifications
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return orderResponse{
		ID:              o.ID,
		BuyerID:         o.BuyerID,
		TotalAmount:     o.TotalAmount.String(),
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Status:          o.Status,
		TrackingInfo:    o.TrackingInfo,
		ShippingDetails: o.Shipping,
		Notifications:   notifications,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type orderLineResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	SellerID  uint64    `json:"sellerId"`
	Quantity  int64     `json:"quantity"`
	Price     string    `json:"price"`
}

type orderDetailsResponse struct {
	Order        orderResponse       `json:"order"`
	OrderDetails []orderLineResponse `json:"orderDetails"`
}

func newOrderDetailsResponse(o *domain.Order, lines []*domain.OrderLine) orderDetailsResponse {
	return orderDetailsResponse{
		Order: newOrderResponse(o),
		OrderDetails: lo.Map(lines, func(l *domain.OrderLine, _ int) orderLineResponse {
			return orderLineResponse{
				ID:        l.ID,
				ProductID: l.ProductID,
				SellerID:  l.SellerID,
				Quantity:  l.Quantity,
				Price:     l.Price.String(),
			}
		}),
	}
}
