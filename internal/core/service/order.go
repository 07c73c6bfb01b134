package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/policy"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	msgOrderPlaced    = "Order has been placed successfully"
	msgOrderCancelled = "Order has been cancelled"
	msgStatusUpdated  = "Order status updated to %s"
	msgPaymentUpdated = "Payment status updated to %s"
	msgSellerNewOrder = "New order %s contains %d of your products"

	completeAttempts = 2
)

// CreateOrder reserves stock for every item and persists the order.
// The bool result reports a replay of an earlier request with the same
// idempotency key.
func (s *Service) CreateOrder(ctx context.Context, caller domain.Caller,
	req domain.OrderRequest) (*domain.Order, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	if err := policy.CreateOrder(caller); err != nil {
		return nil, false, err
	}

	if req.IdempotencyKey == "" || s.idempotency == nil {
		order, err := s.placeOrder(ctx, caller, req)
		return order, false, err
	}

	key := fmt.Sprintf("%d:%s", caller.UserID, req.IdempotencyKey)
	orderID, claimed, err := s.idempotency.Claim(ctx, key)
	if err != nil {
		s.logger.Error("Claim idempotency key", zap.Error(err))
		return nil, false, domain.ErrInternal
	}
	if !claimed {
		if orderID == uuid.Nil {
			return nil, false, domain.ErrOrderInProgress
		}
		order, err := s.repo.ReadOrder(ctx, orderID)
		if err != nil {
			s.logger.Error("Read replayed order", zap.Stringer("order", orderID), zap.Error(err))
			return nil, false, domain.ErrInternal
		}
		return order, true, nil
	}

	order, err := s.placeOrder(ctx, caller, req)
	if err != nil {
		if abErr := s.idempotency.Abandon(context.WithoutCancel(ctx), key); abErr != nil {
			s.logger.Warn("Abandon idempotency key", zap.String("key", key), zap.Error(abErr))
		}
		return nil, false, err
	}

	s.completeKey(context.WithoutCancel(ctx), key, order.ID)

	return order, false, nil
}

// completeKey records the placed order under key. A key that cannot be
// completed is dropped so retries are not answered with ErrOrderInProgress
// until it expires.
func (s *Service) completeKey(ctx context.Context, key string, orderID uuid.UUID) {
	var err error
	for range completeAttempts {
		if err = s.idempotency.Complete(ctx, key, orderID); err == nil {
			return
		}
	}

	s.logger.Error("Complete idempotency key, dropping it",
		zap.String("key", key), zap.Stringer("order", orderID), zap.Error(err))
	if err := s.idempotency.Abandon(ctx, key); err != nil {
		s.logger.Error("Abandon idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) placeOrder(ctx context.Context, caller domain.Caller,
	req domain.OrderRequest) (*domain.Order, error) {
	items := req.MergedItems()

	// load everything first so a missing product fails before any reservation
	products := make([]*domain.Product, len(items))
	for i, item := range items {
		product, err := s.repo.ReadProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrDataNotFound) {
				return nil, fmt.Errorf("%w: product %s", domain.ErrDataNotFound, item.ProductID)
			}
			s.logger.Error("Read product", zap.Stringer("product", item.ProductID), zap.Error(err))
			return nil, domain.ErrInternal
		}
		products[i] = product
	}

	now := s.now()
	orderID := uuid.New()
	total := decimal.Zero
	lines := make([]*domain.OrderLine, len(items))
	for i, item := range items {
		qty, err := decimal.New(item.Quantity, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: quantity %d", domain.ErrBadRequest, item.Quantity)
		}
		amount, err := products[i].Price.Mul(qty)
		if err != nil {
			return nil, fmt.Errorf("%w: line amount overflow", domain.ErrBadRequest)
		}
		total, err = total.Add(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: order total overflow", domain.ErrBadRequest)
		}

		lines[i] = &domain.OrderLine{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			SellerID:  products[i].OwnerID,
			Quantity:  item.Quantity,
			Price:     products[i].Price,
			CreatedAt: now,
		}
	}

	if err := s.reserve(ctx, lines); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            orderID,
		BuyerID:       caller.UserID,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: domain.PaymentStatusPending,
		Status:        domain.OrderStatusPending,
		Shipping:      req.Shipping,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.Notify(msgOrderPlaced, now, s.notificationLimit)

	newOrder, err := s.repo.CreateOrder(ctx, order, lines)
	if err != nil {
		s.logger.Error("Create order", zap.Stringer("order", orderID), zap.Error(err))
		s.compensate(ctx, lines)
		return nil, domain.ErrInternal
	}

	s.observer.OrderCreated(len(lines))
	s.notifySellers(newOrder, lines)

	return newOrder, nil
}

// reserve takes stock line by line. On failure every line reserved so far is
// released before the error is returned.
func (s *Service) reserve(ctx context.Context, lines []*domain.OrderLine) error {
	for i, line := range lines {
		err := s.repo.Reserve(ctx, line.ProductID, line.Quantity)
		if err == nil {
			continue
		}

		s.compensate(ctx, lines[:i])

		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			s.observer.StockRejected()
			return fmt.Errorf("%w: product %s", domain.ErrInsufficientStock, line.ProductID)
		case errors.Is(err, domain.ErrDataNotFound):
			return fmt.Errorf("%w: product %s", domain.ErrDataNotFound, line.ProductID)
		}
		s.logger.Error("Reserve stock", zap.Stringer("product", line.ProductID), zap.Error(err))
		return domain.ErrInternal
	}
	return nil
}

func (s *Service) compensate(ctx context.Context, lines []*domain.OrderLine) {
	if len(lines) == 0 {
		return
	}
	if err := s.restock(ctx, lines); err != nil {
		s.logger.Error("Compensating release failed, stock is short", zap.Error(err))
	}
	s.observer.StockCompensated(len(lines))
}

// restock returns every line's quantity to its product. It keeps going after a
// failure so one bad product does not strand the others.
func (s *Service) restock(ctx context.Context, lines []*domain.OrderLine) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, line := range lines {
		if err := s.repo.Release(ctx, line.ProductID, line.Quantity); err != nil {
			errs = append(errs, fmt.Errorf("release %d of product %s: %w", line.Quantity, line.ProductID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) notifySellers(order *domain.Order, lines []*domain.OrderLine) {
	bySeller := lo.GroupBy(lines, func(l *domain.OrderLine) uint64 { return l.SellerID })
	sellers := lo.Uniq(lo.Map(lines, func(l *domain.OrderLine, _ int) uint64 { return l.SellerID }))

	for _, sellerID := range sellers {
		owned := bySeller[sellerID]
		s.notifier.ScheduleSellerNotification(port.SellerNotification{
			EventID:   uuid.New(),
			SellerID:  sellerID,
			OrderID:   order.ID,
			Products:  lo.Map(owned, func(l *domain.OrderLine, _ int) uuid.UUID { return l.ProductID }),
			Message:   fmt.Sprintf(msgSellerNewOrder, order.ID, len(owned)),
			CreatedAt: order.CreatedAt,
		})
	}
}

func (s *Service) loadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, []*domain.OrderLine, error) {
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, s.storageError("Read order", err)
	}
	lines, err := s.repo.ReadOrderLines(ctx, orderID)
	if err != nil {
		return nil, nil, s.storageError("Read order lines", err)
	}
	return order, lines, nil
}

func (s *Service) GetOrder(ctx context.Context, caller domain.Caller,
	orderID uuid.UUID) (*domain.Order, []*domain.OrderLine, error) {
	order, lines, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	visible, err := policy.ViewOrder(caller, policy.Facts{BuyerID: order.BuyerID, Lines: lines})
	if err != nil {
		return nil, nil, err
	}

	return order, visible, nil
}

func (s *Service) ListOrders(ctx context.Context, caller domain.Caller) ([]*domain.Order, error) {
	filter, err := policy.ListScope(caller)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		s.logger.Error("List orders", zap.Error(err))
		return nil, domain.ErrInternal
	}
	return list, nil
}

// TransitionStatus moves the order one edge along the status machine.
// Cancelling through here restocks like CancelOrder does.
func (s *Service) TransitionStatus(ctx context.Context, caller domain.Caller, orderID uuid.UUID,
	status domain.OrderStatus, trackingInfo *string) (*domain.Order, error) {
	if _, err := domain.ToOrderStatus(string(status)); err != nil {
		return nil, err
	}

	order, lines, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.TransitionOrder(caller, policy.Facts{BuyerID: order.BuyerID, Lines: lines}); err != nil {
		return nil, err
	}

	update := s.repo.UpdateOrder
	if status == domain.OrderStatusCancelled {
		update = s.repo.CancelOrder
	}

	updated, err := update(ctx, orderID, func(o *domain.Order) error {
		if !o.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, o.Status, status)
		}
		now := s.now()
		o.Status = status
		if trackingInfo != nil {
			o.TrackingInfo = *trackingInfo
		}
		o.Notify(fmt.Sprintf(msgStatusUpdated, status), now, s.notificationLimit)
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.storageError("Update order status", err)
	}
	s.observer.StatusChanged(string(status))

	return updated, nil
}

// CancelOrder lets the buyer withdraw an order that has not shipped yet.
// The status change and the stock release commit together, so a failed
// cancel can be retried and a second cancel never reaches the ledger.
func (s *Service) CancelOrder(ctx context.Context, caller domain.Caller,
	orderID uuid.UUID) (*domain.Order, error) {
	order, lines, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.CancelOrder(caller, policy.Facts{BuyerID: order.BuyerID, Lines: lines}); err != nil {
		return nil, err
	}

	updated, err := s.repo.CancelOrder(ctx, orderID, func(o *domain.Order) error {
		if !o.Status.Cancellable() {
			return fmt.Errorf("%w: order is %s", domain.ErrInvalidTransition, o.Status)
		}
		now := s.now()
		o.Status = domain.OrderStatusCancelled
		o.Notify(msgOrderCancelled, now, s.notificationLimit)
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.storageError("Cancel order", err)
	}
	s.observer.StatusChanged(string(domain.OrderStatusCancelled))

	return updated, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, caller domain.Caller, orderID uuid.UUID,
	status domain.PaymentStatus) (*domain.Order, error) {
	if err := policy.UpdatePayment(caller); err != nil {
		return nil, err
	}
	if _, err := domain.ToPaymentStatus(string(status)); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		now := s.now()
		o.PaymentStatus = status
		o.Notify(fmt.Sprintf(msgPaymentUpdated, status), now, s.notificationLimit)
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.storageError("Update payment status", err)
	}
	return updated, nil
}

func (s *Service) MarkNotificationsRead(ctx context.Context, caller domain.Caller,
	orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.ReadOrder(ctx, orderID)
	if err != nil {
		return nil, s.storageError("Read order", err)
	}
	if err := policy.ReadNotifications(caller, policy.Facts{BuyerID: order.BuyerID}); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateOrder(ctx, orderID, func(o *domain.Order) error {
		for i := range o.Notifications {
			o.Notifications[i].Read = true
		}
		return nil
	})
	if err != nil {
		return nil, s.storageError("Mark notifications read", err)
	}
	return updated, nil
}
