package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MikeRez0/ypstore/internal/adapter/auth"
	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/adapter/storage/memory"
	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/MikeRez0/ypstore/internal/core/service"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []port.SellerNotification
}

func (n *recordingNotifier) ScheduleSellerNotification(event port.SellerNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// failingCancelRepo fails the first cancels the way a dropped connection
// would: nothing reaches storage.
type failingCancelRepo struct {
	*memory.Repository
	failures atomic.Int32
}

func (r *failingCancelRepo) CancelOrder(ctx context.Context, orderID uuid.UUID,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	if r.failures.Add(-1) >= 0 {
		return nil, errors.New("connection reset by peer")
	}
	return r.Repository.CancelOrder(ctx, orderID, updateFn)
}

type OrderLifecycleSuite struct {
	suite.Suite
	ctx      context.Context
	repo     *memory.Repository
	notifier *recordingNotifier
	svc      *service.Service

	sellerS  domain.Caller
	sellerS2 domain.Caller
	buyer    domain.Caller
	admin    domain.Caller
}

func TestOrderLifecycle(t *testing.T) {
	suite.Run(t, new(OrderLifecycleSuite))
}

func (s *OrderLifecycleSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = memory.NewRepository()
	s.notifier = &recordingNotifier{}

	ts, err := auth.New(&config.Token{})
	s.Require().NoError(err)

	s.svc, err = service.NewService(s.repo, ts, s.notifier, zap.NewNop(),
		service.WithIdempotency(memory.NewIdempotencyStore(time.Hour)),
		service.WithNotificationLimit(3))
	s.Require().NoError(err)

	s.sellerS = s.register("seller-s", domain.RoleSeller)
	s.sellerS2 = s.register("seller-s2", domain.RoleSeller)
	s.buyer = s.register("buyer", domain.RoleBuyer)
	s.Require().NoError(s.svc.EnsureAdmin(s.ctx, "admin", "admin"))
	admin, err := s.repo.GetUserByLogin(s.ctx, "admin")
	s.Require().NoError(err)
	s.admin = domain.Caller{UserID: admin.ID, Role: domain.RoleAdmin}
}

func (s *OrderLifecycleSuite) register(login string, role domain.Role) domain.Caller {
	u, err := s.svc.RegisterUser(s.ctx, &domain.User{Login: login, Password: gofakeit.Password(true, true, true, false, false, 12), Role: role})
	s.Require().NoError(err)
	return domain.Caller{UserID: u.ID, Role: u.Role}
}

func (s *OrderLifecycleSuite) product(owner domain.Caller, stock int64) *domain.Product {
	p, err := s.svc.CreateProduct(s.ctx, owner, &domain.Product{
		Name:  gofakeit.ProductName(),
		Price: decimal.MustNew(int64(gofakeit.IntRange(100, 10000)), 2),
		Stock: stock,
	})
	s.Require().NoError(err)
	return p
}

func (s *OrderLifecycleSuite) stock(id uuid.UUID) int64 {
	p, err := s.svc.GetProduct(s.ctx, id)
	s.Require().NoError(err)
	return p.Stock
}

func request(items ...domain.LineItem) domain.OrderRequest {
	return domain.OrderRequest{
		Items:         items,
		PaymentMethod: gofakeit.RandomString([]string{"card", "cash", "paypal"}),
		Shipping: domain.ShippingDetails{
			Address:    gofakeit.Street(),
			City:       gofakeit.City(),
			State:      gofakeit.State(),
			Country:    gofakeit.Country(),
			PostalCode: gofakeit.Zip(),
			Phone:      gofakeit.Phone(),
		},
	}
}

func (s *OrderLifecycleSuite) TestStockExhaustion() {
	p := s.product(s.sellerS, 5)

	_, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 3}))
	s.Require().NoError(err)
	s.Equal(int64(2), s.stock(p.ID))

	_, _, err = s.svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 3}))
	s.ErrorIs(err, domain.ErrInsufficientStock)
	s.ErrorContains(err, p.ID.String())
	s.Equal(int64(2), s.stock(p.ID))
}

func (s *OrderLifecycleSuite) TestCreateIsAllOrNothing() {
	p1 := s.product(s.sellerS, 5)
	p2 := s.product(s.sellerS2, 1)

	_, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(
		domain.LineItem{ProductID: p1.ID, Quantity: 4},
		domain.LineItem{ProductID: p2.ID, Quantity: 2},
	))
	s.ErrorIs(err, domain.ErrInsufficientStock)
	s.Equal(int64(5), s.stock(p1.ID))
	s.Equal(int64(1), s.stock(p2.ID))

	orders, err := s.svc.ListOrders(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Empty(orders)
	s.Empty(s.notifier.events)
}

func (s *OrderLifecycleSuite) TestCancelRestoresStock() {
	p := s.product(s.sellerS, 5)

	order, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 3}))
	s.Require().NoError(err)
	s.Equal(int64(2), s.stock(p.ID))

	cancelled, err := s.svc.CancelOrder(s.ctx, s.buyer, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, cancelled.Status)
	s.Equal("Order has been cancelled", cancelled.Notifications[len(cancelled.Notifications)-1].Message)
	s.Equal(int64(5), s.stock(p.ID))

	_, err = s.svc.CancelOrder(s.ctx, s.buyer, order.ID)
	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.Equal(int64(5), s.stock(p.ID))
}

func (s *OrderLifecycleSuite) TestFailedCancelCanBeRetried() {
	repo := &failingCancelRepo{Repository: s.repo}
	repo.failures.Store(1)

	ts, err := auth.New(&config.Token{})
	s.Require().NoError(err)
	svc, err := service.NewService(repo, ts, s.notifier, zap.NewNop())
	s.Require().NoError(err)

	p := s.product(s.sellerS, 5)
	order, _, err := svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 3}))
	s.Require().NoError(err)

	_, err = svc.CancelOrder(s.ctx, s.buyer, order.ID)
	s.ErrorIs(err, domain.ErrInternal)

	stored, err := s.repo.ReadOrder(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, stored.Status)
	s.Equal(int64(2), s.stock(p.ID))

	cancelled, err := svc.CancelOrder(s.ctx, s.buyer, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, cancelled.Status)
	s.Equal(int64(5), s.stock(p.ID))

	// the transition path goes through the same unit of work
	repo.failures.Store(1)
	again, _, err := svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 4}))
	s.Require().NoError(err)

	_, err = svc.TransitionStatus(s.ctx, s.admin, again.ID, domain.OrderStatusCancelled, nil)
	s.ErrorIs(err, domain.ErrInternal)
	s.Equal(int64(1), s.stock(p.ID))

	_, err = svc.TransitionStatus(s.ctx, s.admin, again.ID, domain.OrderStatusCancelled, nil)
	s.Require().NoError(err)
	s.Equal(int64(5), s.stock(p.ID))
}

func (s *OrderLifecycleSuite) TestCancelShippedFails() {
	p := s.product(s.sellerS, 5)

	order, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 3}))
	s.Require().NoError(err)

	for _, status := range []domain.OrderStatus{domain.OrderStatusProcessing, domain.OrderStatusShipped} {
		_, err = s.svc.TransitionStatus(s.ctx, s.sellerS, order.ID, status, lo.ToPtr("TRK-42"))
		s.Require().NoError(err)
	}

	_, err = s.svc.CancelOrder(s.ctx, s.buyer, order.ID)
	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.Equal(int64(2), s.stock(p.ID))

	got, _, err := s.svc.GetOrder(s.ctx, s.buyer, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusShipped, got.Status)
	s.Equal("TRK-42", got.TrackingInfo)
}

func (s *OrderLifecycleSuite) TestSellerSeesOwnLinesOnly() {
	p1 := s.product(s.sellerS, 5)
	p2 := s.product(s.sellerS2, 5)

	order, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(
		domain.LineItem{ProductID: p1.ID, Quantity: 1},
		domain.LineItem{ProductID: p2.ID, Quantity: 2},
	))
	s.Require().NoError(err)

	productsOf := func(caller domain.Caller) []uuid.UUID {
		_, lines, err := s.svc.GetOrder(s.ctx, caller, order.ID)
		s.Require().NoError(err)
		return lo.Map(lines, func(l *domain.OrderLine, _ int) uuid.UUID { return l.ProductID })
	}

	s.Equal([]uuid.UUID{p1.ID}, productsOf(s.sellerS))
	s.Equal([]uuid.UUID{p2.ID}, productsOf(s.sellerS2))
	s.ElementsMatch([]uuid.UUID{p1.ID, p2.ID}, productsOf(s.admin))
	s.ElementsMatch([]uuid.UUID{p1.ID, p2.ID}, productsOf(s.buyer))

	s.Len(s.notifier.events, 2)

	other := s.register("other-seller", domain.RoleSeller)
	_, _, err = s.svc.GetOrder(s.ctx, other, order.ID)
	s.ErrorIs(err, domain.ErrForbidden)

	list, err := s.svc.ListOrders(s.ctx, other)
	s.Require().NoError(err)
	s.Empty(list)

	list, err = s.svc.ListOrders(s.ctx, s.sellerS)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *OrderLifecycleSuite) TestTransitionToCancelledRestocks() {
	p := s.product(s.sellerS, 4)

	order, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 4}))
	s.Require().NoError(err)
	s.Equal(int64(0), s.stock(p.ID))

	_, err = s.svc.TransitionStatus(s.ctx, s.admin, order.ID, domain.OrderStatusCancelled, nil)
	s.Require().NoError(err)
	s.Equal(int64(4), s.stock(p.ID))

	_, err = s.svc.TransitionStatus(s.ctx, s.admin, order.ID, domain.OrderStatusCancelled, nil)
	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.Equal(int64(4), s.stock(p.ID))
}

func (s *OrderLifecycleSuite) TestPaymentAndNotifications() {
	p := s.product(s.sellerS, 10)

	order, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(domain.LineItem{ProductID: p.ID, Quantity: 1}))
	s.Require().NoError(err)

	_, err = s.svc.UpdatePaymentStatus(s.ctx, s.sellerS, order.ID, domain.PaymentStatusCompleted)
	s.ErrorIs(err, domain.ErrForbidden)

	updated, err := s.svc.UpdatePaymentStatus(s.ctx, s.admin, order.ID, domain.PaymentStatusCompleted)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusCompleted, updated.PaymentStatus)
	s.Equal(domain.OrderStatusPending, updated.Status)

	for _, status := range []domain.OrderStatus{domain.OrderStatusProcessing, domain.OrderStatusShipped} {
		_, err = s.svc.TransitionStatus(s.ctx, s.admin, order.ID, status, nil)
		s.Require().NoError(err)
	}

	read, err := s.svc.MarkNotificationsRead(s.ctx, s.buyer, order.ID)
	s.Require().NoError(err)
	// the log is capped at 3 entries, placement notice dropped
	s.Require().Len(read.Notifications, 3)
	s.Equal("Payment status updated to COMPLETED", read.Notifications[0].Message)
	s.Equal("Order status updated to SHIPPED", read.Notifications[2].Message)
	for _, n := range read.Notifications {
		s.True(n.Read)
	}

	_, err = s.svc.MarkNotificationsRead(s.ctx, s.admin, order.ID)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *OrderLifecycleSuite) TestIdempotentReplay() {
	p := s.product(s.sellerS, 10)

	req := request(domain.LineItem{ProductID: p.ID, Quantity: 2})
	req.IdempotencyKey = "retry-1"

	first, replayed, err := s.svc.CreateOrder(s.ctx, s.buyer, req)
	s.Require().NoError(err)
	s.False(replayed)

	second, replayed, err := s.svc.CreateOrder(s.ctx, s.buyer, req)
	s.Require().NoError(err)
	s.True(replayed)
	s.Equal(first.ID, second.ID)
	s.Equal(int64(8), s.stock(p.ID))

	// keys are scoped per buyer
	other := s.register("buyer-2", domain.RoleBuyer)
	third, replayed, err := s.svc.CreateOrder(s.ctx, other, req)
	s.Require().NoError(err)
	s.False(replayed)
	s.NotEqual(first.ID, third.ID)
}

func (s *OrderLifecycleSuite) TestConcurrentOrdersNeverOversell() {
	p1 := s.product(s.sellerS, 40)
	p2 := s.product(s.sellerS2, 15)

	var created atomic.Int64
	var wg sync.WaitGroup
	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.svc.CreateOrder(s.ctx, s.buyer, request(
				domain.LineItem{ProductID: p1.ID, Quantity: 1},
				domain.LineItem{ProductID: p2.ID, Quantity: 1},
			))
			if err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int64(15), created.Load())
	s.Equal(int64(25), s.stock(p1.ID))
	s.Equal(int64(0), s.stock(p2.ID))

	orders, err := s.svc.ListOrders(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Len(orders, 15)

	// concurrent double cancel credits stock once
	target := orders[0]
	var cancelled atomic.Int64
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.svc.CancelOrder(s.ctx, s.buyer, target.ID); err == nil {
				cancelled.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int64(1), cancelled.Load())
	s.Equal(int64(26), s.stock(p1.ID))
	s.Equal(int64(1), s.stock(p2.ID))
}
