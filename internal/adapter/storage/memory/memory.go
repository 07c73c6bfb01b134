// Package memory keeps the whole store in process memory. Stock and order
// records carry their own locks so unrelated products and orders never
// contend.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type productEntry struct {
	mu      sync.Mutex
	product domain.Product
}

type orderEntry struct {
	mu    sync.Mutex
	order domain.Order
	lines []domain.OrderLine
}

type Repository struct {
	mu         sync.RWMutex
	lastUserID uint64
	users      map[string]domain.User
	products   map[uuid.UUID]*productEntry
	orders     map[uuid.UUID]*orderEntry
}

var _ port.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		users:    make(map[string]domain.User),
		products: make(map[uuid.UUID]*productEntry),
		orders:   make(map[uuid.UUID]*orderEntry),
	}
}

func (r *Repository) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Login]; ok {
		return nil, domain.ErrConflictingData
	}
	r.lastUserID++
	user.ID = r.lastUserID
	r.users[user.Login] = *user

	return user, nil
}

func (r *Repository) GetUserByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[login]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return &user, nil
}

func (r *Repository) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; ok {
		return nil, domain.ErrConflictingData
	}
	r.products[product.ID] = &productEntry{product: *product}

	return product, nil
}

func (r *Repository) product(productID uuid.UUID) (*productEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.products[productID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return entry, nil
}

func (r *Repository) ReadProduct(_ context.Context, productID uuid.UUID) (*domain.Product, error) {
	entry, err := r.product(productID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	p := entry.product
	return &p, nil
}

func (r *Repository) Reserve(_ context.Context, productID uuid.UUID, quantity int64) error {
	entry, err := r.product(productID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.product.Stock < quantity {
		return domain.ErrInsufficientStock
	}
	entry.product.Stock -= quantity
	return nil
}

func (r *Repository) Release(_ context.Context, productID uuid.UUID, quantity int64) error {
	entry, err := r.product(productID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.product.Stock += quantity
	return nil
}

func (r *Repository) CreateOrder(_ context.Context, order *domain.Order,
	lines []*domain.OrderLine) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return nil, domain.ErrConflictingData
	}
	for _, l := range lines {
		if _, ok := r.products[l.ProductID]; !ok {
			return nil, fmt.Errorf("%w: product %s", domain.ErrDataNotFound, l.ProductID)
		}
	}

	entry := &orderEntry{
		order: cloneOrder(order),
		lines: lo.Map(lines, func(l *domain.OrderLine, _ int) domain.OrderLine { return *l }),
	}
	r.orders[order.ID] = entry

	created := cloneOrder(&entry.order)
	return &created, nil
}

func (r *Repository) order(orderID uuid.UUID) (*orderEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrDataNotFound
	}
	return entry, nil
}

func (r *Repository) ReadOrder(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	entry, err := r.order(orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	o := cloneOrder(&entry.order)
	return &o, nil
}

func (r *Repository) ReadOrderLines(_ context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error) {
	entry, err := r.order(orderID)
	if err != nil {
		return nil, err
	}

	// lines never change after creation
	return lo.Map(entry.lines, func(l domain.OrderLine, _ int) *domain.OrderLine { return &l }), nil
}

func (r *Repository) ListOrders(_ context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	entries := lo.Values(r.orders)
	r.mu.RUnlock()

	list := make([]*domain.Order, 0)
	for _, entry := range entries {
		if filter.SellerID != nil && !lo.ContainsBy(entry.lines, func(l domain.OrderLine) bool {
			return l.SellerID == *filter.SellerID
		}) {
			continue
		}

		entry.mu.Lock()
		o := cloneOrder(&entry.order)
		entry.mu.Unlock()

		if filter.BuyerID != nil && o.BuyerID != *filter.BuyerID {
			continue
		}
		list = append(list, &o)
	}

	slices.SortFunc(list, func(a, b *domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(b.ID[:], a.ID[:])
	})

	return list, nil
}

func (r *Repository) UpdateOrder(_ context.Context, orderID uuid.UUID,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	entry, err := r.order(orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	o := cloneOrder(&entry.order)
	if err := updateFn(&o); err != nil {
		return nil, err
	}
	o.Version++
	entry.order = cloneOrder(&o)

	return &o, nil
}

// CancelOrder keeps the order locked while stock goes back, so a concurrent
// cancel sees the new status and never releases twice.
func (r *Repository) CancelOrder(_ context.Context, orderID uuid.UUID,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	entry, err := r.order(orderID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	o := cloneOrder(&entry.order)
	if err := updateFn(&o); err != nil {
		return nil, err
	}

	// resolve every product before touching stock
	products := make([]*productEntry, len(entry.lines))
	for i, l := range entry.lines {
		products[i], err = r.product(l.ProductID)
		if err != nil {
			// a missing product here is broken storage, not a missing order
			return nil, fmt.Errorf("order %s references unknown product %s", orderID, l.ProductID)
		}
	}
	for i, p := range products {
		p.mu.Lock()
		p.product.Stock += entry.lines[i].Quantity
		p.mu.Unlock()
	}

	o.Version++
	entry.order = cloneOrder(&o)

	return &o, nil
}

func cloneOrder(o *domain.Order) domain.Order {
	c := *o
	c.Notifications = slices.Clone(o.Notifications)
	return c
}
