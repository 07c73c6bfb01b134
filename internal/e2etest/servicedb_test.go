package e2etest_test

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MikeRez0/ypstore/internal/adapter/auth"
	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/adapter/storage"
	"github.com/MikeRez0/ypstore/internal/adapter/storage/repository"
	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/MikeRez0/ypstore/internal/core/port/mock"
	"github.com/MikeRez0/ypstore/internal/core/service"
	"github.com/MikeRez0/ypstore/internal/e2etest/testdb"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var dbtest *testdb.TestDBInstance

func setup() {
	if testing.Short() {
		return
	}
	var err error
	dbtest, err = testdb.NewTestDBInstance()
	if err != nil {
		log.Printf("postgres is not available, skipping: %v", err)
		dbtest = nil
	}
}

func shutdown() {
	if dbtest != nil {
		dbtest.Down()
	}
}

func TestMain(m *testing.M) {
	flag.Parse()
	setup()
	code := m.Run()
	shutdown()
	os.Exit(code)
}

func getDeps(t *testing.T) (*repository.Repository, port.TokenService) {
	t.Helper()
	if dbtest == nil {
		t.Skip("postgres container is not running")
	}

	db, err := storage.NewDBStorage(context.Background(), &config.Database{DSN: dbtest.DSN})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.RunMigrations())

	repo, err := repository.NewRepository(db)
	require.NoError(t, err)

	ts, err := auth.New(&config.Token{})
	require.NoError(t, err)

	return repo, ts
}

// storeFixture is a service over Postgres with two sellers, a buyer and an admin.
type storeFixture struct {
	svc      *service.Service
	repo     *repository.Repository
	buyer    domain.Caller
	sellerS  domain.Caller
	sellerS2 domain.Caller
	admin    domain.Caller
}

func newStoreFixture(t *testing.T, notifier port.SellerNotifier) *storeFixture {
	t.Helper()
	repo, ts := getDeps(t)

	svc, err := service.NewService(repo, ts, notifier, zap.NewNop())
	require.NoError(t, err)

	f := &storeFixture{svc: svc, repo: repo}
	register := func(role domain.Role) domain.Caller {
		u, err := svc.RegisterUser(context.Background(), &domain.User{
			Login:    gofakeit.Username() + "-" + uuid.NewString()[:8],
			Password: gofakeit.Password(true, true, true, false, false, 12),
			Role:     role,
		})
		require.NoError(t, err)
		return domain.Caller{UserID: u.ID, Role: u.Role}
	}
	f.buyer = register(domain.RoleBuyer)
	f.sellerS = register(domain.RoleSeller)
	f.sellerS2 = register(domain.RoleSeller)

	adminLogin := "admin-" + uuid.NewString()[:8]
	require.NoError(t, svc.EnsureAdmin(context.Background(), adminLogin, "admin"))
	admin, err := repo.GetUserByLogin(context.Background(), adminLogin)
	require.NoError(t, err)
	f.admin = domain.Caller{UserID: admin.ID, Role: domain.RoleAdmin}

	return f
}

func (f *storeFixture) product(t *testing.T, owner domain.Caller, price string, stock int64) *domain.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), owner, &domain.Product{
		Name:  gofakeit.ProductName(),
		Price: decimal.MustParse(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func (f *storeFixture) stock(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	p, err := f.repo.ReadProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func orderRequest(items ...domain.LineItem) domain.OrderRequest {
	return domain.OrderRequest{
		Items:         items,
		PaymentMethod: "card",
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

func TestServiceDB_UserRegister(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	login := "user-" + uuid.NewString()[:8]

	tests := []struct {
		name     string
		user     domain.User
		expError error
		expRole  domain.Role
	}{
		{
			name:    "Register buyer",
			user:    domain.User{Login: login, Password: "test"},
			expRole: domain.RoleBuyer,
		},
		{
			name:    "Register seller",
			user:    domain.User{Login: login + "-s", Password: "test", Role: domain.RoleSeller},
			expRole: domain.RoleSeller,
		},
		{
			name:     "Register already exists",
			user:     domain.User{Login: login, Password: "test"},
			expError: domain.ErrConflictingData,
		},
	}

	repo, ts := getDeps(t)
	s, err := service.NewService(repo, ts, mock.NewMockSellerNotifier(mockCtrl), zap.NewNop())
	require.NoError(t, err)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := s.RegisterUser(context.Background(), &test.user)
			assert.ErrorIs(t, err, test.expError)
			if test.expError == nil {
				require.NoError(t, err)
				assert.Equal(t, test.user.Login, result.Login)
				assert.Equal(t, test.expRole, result.Role)

				token, err := s.LoginUser(context.Background(), test.user.Login, "test")
				require.NoError(t, err)
				payload, err := ts.VerifyToken(token)
				require.NoError(t, err)
				assert.Equal(t, result.ID, payload.UserID)
			}
		})
	}

	_, err = s.LoginUser(context.Background(), login, "hacker")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestServiceDB_OrderLifecycle(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	notifier := mock.NewMockSellerNotifier(mockCtrl)
	notifier.EXPECT().ScheduleSellerNotification(gomock.Any()).AnyTimes()

	f := newStoreFixture(t, notifier)
	ctx := context.Background()

	p1 := f.product(t, f.sellerS, "5.00", 10)
	p2 := f.product(t, f.sellerS2, "3.00", 5)

	order, _, err := f.svc.CreateOrder(ctx, f.buyer, orderRequest(
		domain.LineItem{ProductID: p1.ID, Quantity: 2},
		domain.LineItem{ProductID: p2.ID, Quantity: 2},
	))
	require.NoError(t, err)
	assert.Equal(t, "16.00", order.TotalAmount.String())
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(8), f.stock(t, p1.ID))
	assert.Equal(t, int64(3), f.stock(t, p2.ID))

	lineS := &domain.OrderLine{OrderID: order.ID, ProductID: p1.ID, SellerID: f.sellerS.UserID,
		Quantity: 2, Price: decimal.MustParse("5.00")}
	lineS2 := &domain.OrderLine{OrderID: order.ID, ProductID: p2.ID, SellerID: f.sellerS2.UserID,
		Quantity: 2, Price: decimal.MustParse("3.00")}
	ignore := cmpopts.IgnoreFields(domain.OrderLine{}, "ID", "CreatedAt")

	visible := []struct {
		name   string
		caller domain.Caller
		want   []*domain.OrderLine
	}{
		{name: "buyer", caller: f.buyer, want: []*domain.OrderLine{lineS, lineS2}},
		{name: "seller S", caller: f.sellerS, want: []*domain.OrderLine{lineS}},
		{name: "seller S2", caller: f.sellerS2, want: []*domain.OrderLine{lineS2}},
		{name: "admin", caller: f.admin, want: []*domain.OrderLine{lineS, lineS2}},
	}
	for _, v := range visible {
		t.Run("view as "+v.name, func(t *testing.T) {
			_, lines, err := f.svc.GetOrder(ctx, v.caller, order.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(v.want, lines, ignore); diff != "" {
				t.Errorf("visible lines mismatch (-want +got):\n%s", diff)
			}
		})
	}

	sellerOrders, err := f.svc.ListOrders(ctx, f.sellerS2)
	require.NoError(t, err)
	assert.Len(t, sellerOrders, 1)

	_, err = f.svc.TransitionStatus(ctx, f.sellerS, order.ID, domain.OrderStatusDelivered, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	cancelled, err := f.svc.CancelOrder(ctx, f.buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(10), f.stock(t, p1.ID))
	assert.Equal(t, int64(5), f.stock(t, p2.ID))

	_, err = f.svc.CancelOrder(ctx, f.buyer, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(10), f.stock(t, p1.ID))
}

func TestServiceDB_CreateIsAllOrNothing(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	f := newStoreFixture(t, mock.NewMockSellerNotifier(mockCtrl))
	ctx := context.Background()

	p1 := f.product(t, f.sellerS, "5.00", 10)
	p2 := f.product(t, f.sellerS2, "3.00", 5)

	_, _, err := f.svc.CreateOrder(ctx, f.buyer, orderRequest(
		domain.LineItem{ProductID: p1.ID, Quantity: 2},
		domain.LineItem{ProductID: p2.ID, Quantity: 6},
	))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.stock(t, p1.ID))
	assert.Equal(t, int64(5), f.stock(t, p2.ID))

	_, _, err = f.svc.CreateOrder(ctx, f.buyer, orderRequest(
		domain.LineItem{ProductID: p1.ID, Quantity: 1},
		domain.LineItem{ProductID: uuid.New(), Quantity: 1},
	))
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
	assert.Equal(t, int64(10), f.stock(t, p1.ID))

	orders, err := f.svc.ListOrders(ctx, f.buyer)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestServiceDB_ConcurrentOrdersNeverOversell(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	notifier := mock.NewMockSellerNotifier(mockCtrl)
	notifier.EXPECT().ScheduleSellerNotification(gomock.Any()).AnyTimes()

	f := newStoreFixture(t, notifier)
	p := f.product(t, f.sellerS, "1.50", 5)

	const buyers = 20
	var (
		wg      sync.WaitGroup
		placed  atomic.Int64
		refused atomic.Int64
	)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.CreateOrder(ctx, f.buyer, orderRequest(domain.LineItem{ProductID: p.ID, Quantity: 1}))
			if err == nil {
				placed.Add(1)
				return
			}
			if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), placed.Load())
	assert.Equal(t, int64(buyers-5), refused.Load())
	assert.Equal(t, int64(0), f.stock(t, p.ID))
}

func TestServiceDB_StatusAndPayment(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	notifier := mock.NewMockSellerNotifier(mockCtrl)
	notifier.EXPECT().ScheduleSellerNotification(gomock.Any()).Times(1)

	f := newStoreFixture(t, notifier)
	ctx := context.Background()
	p := f.product(t, f.sellerS, "2.00", 3)

	order, _, err := f.svc.CreateOrder(ctx, f.buyer, orderRequest(domain.LineItem{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(ctx, f.sellerS2, order.ID, domain.OrderStatusProcessing, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	steps := []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	}
	tracking := "TRK-" + gofakeit.DigitN(8)
	for _, status := range steps {
		var info *string
		if status == domain.OrderStatusShipped {
			info = &tracking
		}
		order, err = f.svc.TransitionStatus(ctx, f.sellerS, order.ID, status, info)
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}
	assert.Equal(t, tracking, order.TrackingInfo)
	assert.Equal(t, int64(2), f.stock(t, p.ID))

	_, err = f.svc.CancelOrder(ctx, f.buyer, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.UpdatePaymentStatus(ctx, f.buyer, order.ID, domain.PaymentStatusCompleted)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	order, err = f.svc.UpdatePaymentStatus(ctx, f.admin, order.ID, domain.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, order.PaymentStatus)

	order, err = f.svc.MarkNotificationsRead(ctx, f.buyer, order.ID)
	require.NoError(t, err)
	require.NotEmpty(t, order.Notifications)
	for _, n := range order.Notifications {
		assert.True(t, n.Read)
	}

	stored, _, err := f.svc.GetOrder(ctx, f.admin, order.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(order.Notifications, stored.Notifications,
		cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("stored notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceDB_TransitionToCancelledRestocks(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	notifier := mock.NewMockSellerNotifier(mockCtrl)
	notifier.EXPECT().ScheduleSellerNotification(gomock.Any()).AnyTimes()

	f := newStoreFixture(t, notifier)
	ctx := context.Background()

	p1 := f.product(t, f.sellerS, "4.00", 6)
	p2 := f.product(t, f.sellerS2, "1.00", 6)

	order, _, err := f.svc.CreateOrder(ctx, f.buyer, orderRequest(
		domain.LineItem{ProductID: p2.ID, Quantity: 4},
		domain.LineItem{ProductID: p1.ID, Quantity: 1},
		domain.LineItem{ProductID: p2.ID, Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.stock(t, p1.ID))
	assert.Equal(t, int64(1), f.stock(t, p2.ID))

	_, err = f.svc.TransitionStatus(ctx, f.sellerS, order.ID, domain.OrderStatusProcessing, nil)
	require.NoError(t, err)

	cancelled, err := f.svc.TransitionStatus(ctx, f.admin, order.ID, domain.OrderStatusCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(6), f.stock(t, p1.ID))
	assert.Equal(t, int64(6), f.stock(t, p2.ID))

	_, err = f.svc.TransitionStatus(ctx, f.admin, order.ID, domain.OrderStatusCancelled, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(6), f.stock(t, p2.ID))

	_, _, err = f.svc.CreateOrder(ctx, f.buyer, orderRequest(domain.LineItem{ProductID: p1.ID, Quantity: 1}))
	require.NoError(t, err)
	long := orderRequest(domain.LineItem{ProductID: p1.ID, Quantity: 1})
	long.PaymentMethod = strings.Repeat("p", domain.MaxPaymentMethodLen+1)
	_, _, err = f.svc.CreateOrder(ctx, f.buyer, long)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Equal(t, int64(5), f.stock(t, p1.ID))
}
