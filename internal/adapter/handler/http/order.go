package http

import (
	"net/http"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	idempotencyHeaderKey = "Idempotency-Key"
	maxIdempotencyKeyLen = 255
)

type OrderHandler struct {
	Handler
	service port.Service
}

func NewOrderHandler(service port.Service, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
}

type OrderRequest struct {
	Items           []OrderItemRequest     `json:"items"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
}

type StatusRequest struct {
	Status       string  `json:"status" binding:"required"`
	TrackingInfo *string `json:"trackingInfo"`
}

type PaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

func (oh *OrderHandler) orderID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		oh.handleValidationError(ctx, err)
		return uuid.Nil, false
	}
	return id, true
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	req := OrderRequest{}
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	key := ctx.GetHeader(idempotencyHeaderKey)
	if len(key) > maxIdempotencyKeyLen {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, replayed, err := oh.service.CreateOrder(ctx, getCaller(ctx), domain.OrderRequest{
		Items: lo.Map(req.Items, func(i OrderItemRequest, _ int) domain.LineItem {
			return domain.LineItem{ProductID: i.ProductID, Quantity: i.Quantity}
		}),
		PaymentMethod:  req.PaymentMethod,
		Shipping:       req.ShippingDetails,
		IdempotencyKey: key,
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	oh.handleSuccessWithStatus(ctx, newOrderResponse(order), status)
}

func (oh *OrderHandler) ListOrders(ctx *gin.Context) {
	list, err := oh.service.ListOrders(ctx, getCaller(ctx))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, lo.Map(list, func(o *domain.Order, _ int) orderResponse {
		return newOrderResponse(o)
	}))
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	id, ok := oh.orderID(ctx)
	if !ok {
		return
	}

	order, lines, err := oh.service.GetOrder(ctx, getCaller(ctx), id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderDetailsResponse(order, lines))
}

func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	id, ok := oh.orderID(ctx)
	if !ok {
		return
	}

	order, err := oh.service.CancelOrder(ctx, getCaller(ctx), id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order))
}

func (oh *OrderHandler) UpdateStatus(ctx *gin.Context) {
	id, ok := oh.orderID(ctx)
	if !ok {
		return
	}

	req := StatusRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	status, err := domain.ToOrderStatus(req.Status)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	order, err := oh.service.TransitionStatus(ctx, getCaller(ctx), id, status, req.TrackingInfo)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order))
}

func (oh *OrderHandler) UpdatePayment(ctx *gin.Context) {
	id, ok := oh.orderID(ctx)
	if !ok {
		return
	}

	req := PaymentRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	status, err := domain.ToPaymentStatus(req.PaymentStatus)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	order, err := oh.service.UpdatePaymentStatus(ctx, getCaller(ctx), id, status)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order))
}

func (oh *OrderHandler) MarkNotificationsRead(ctx *gin.Context) {
	id, ok := oh.orderID(ctx)
	if !ok {
		return
	}

	order, err := oh.service.MarkNotificationsRead(ctx, getCaller(ctx), id)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, newOrderResponse(order))
}
