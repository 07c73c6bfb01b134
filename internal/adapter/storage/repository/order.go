package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var orderColumns = []string{
	"id", "buyer_id", "total_amount", "payment_method", "payment_status", "status",
	"tracking_info", "shipping_details", "notifications", "version", "created_at", "updated_at",
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := domain.Order{}
	err := row.Scan(
		&o.ID,
		&o.BuyerID,
		&o.TotalAmount,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.Status,
		&o.TrackingInfo,
		&o.Shipping,
		&o.Notifications,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	if o.Notifications == nil {
		o.Notifications = []domain.Notification{}
	}
	return &o, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order,
	lines []*domain.OrderLine) (*domain.Order, error) {
	if order.Notifications == nil {
		order.Notifications = []domain.Notification{}
	}

	orderSt := r.db.QueryBuilder.
		Insert("orders").
		Columns(orderColumns...).
		Values(order.ID, order.BuyerID, order.TotalAmount, order.PaymentMethod, order.PaymentStatus,
			order.Status, order.TrackingInfo, order.Shipping, order.Notifications, order.Version,
			order.CreatedAt, order.UpdatedAt)

	linesSt := r.db.QueryBuilder.
		Insert("order_lines").
		Columns("id", "order_id", "line_no", "product_id", "quantity", "price", "created_at")
	for i, l := range lines {
		linesSt = linesSt.Values(l.ID, order.ID, i, l.ProductID, l.Quantity, l.Price, l.CreatedAt)
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		if len(lines) == 0 {
			return nil
		}
		sql, args, err = linesSt.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, domain.ErrConflictingData
		case isForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: %w", domain.ErrDataNotFound, err)
		}
		return nil, err
	}

	return order, nil
}

func (r *Repository) ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	return scanOrder(r.db.QueryRow(ctx, sql, args...))
}

// ReadOrderLines resolves each line's seller through the product owner.
func (r *Repository) ReadOrderLines(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error) {
	statement := r.db.QueryBuilder.
		Select("ol.id", "ol.order_id", "ol.product_id", "p.owner_id", "ol.quantity", "ol.price", "ol.created_at").
		From("order_lines ol").
		Join("products p ON p.id = ol.product_id").
		Where(sq.Eq{"ol.order_id": orderID}).
		OrderBy("ol.line_no")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.OrderLine, 0)
	for rows.Next() {
		l := domain.OrderLine{}
		err := rows.Scan(
			&l.ID,
			&l.OrderID,
			&l.ProductID,
			&l.SellerID,
			&l.Quantity,
			&l.Price,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, &l)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (r *Repository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC")

	if filter.BuyerID != nil {
		statement = statement.Where(sq.Eq{"buyer_id": *filter.BuyerID})
	}
	if filter.SellerID != nil {
		// seller's products -> lines -> owning orders
		statement = statement.Where(sq.Expr(
			"id IN (SELECT ol.order_id FROM order_lines ol JOIN products p ON p.id = ol.product_id WHERE p.owner_id = ?)",
			*filter.SellerID))
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}

// UpdateOrder runs updateFn under a row lock and bumps the version.
func (r *Repository) UpdateOrder(ctx context.Context, orderID uuid.UUID,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	var updated *domain.Order

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		order, err := r.updateOrder(ctx, tx, orderID, updateFn)
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// CancelOrder updates the order and returns its stock in one transaction.
func (r *Repository) CancelOrder(ctx context.Context, orderID uuid.UUID,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	var updated *domain.Order

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		order, err := r.updateOrder(ctx, tx, orderID, updateFn)
		if err != nil {
			return err
		}

		quantities, err := r.lineQuantities(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, q := range quantities {
			err := r.release(ctx, tx, q.productID, q.quantity)
			if errors.Is(err, domain.ErrDataNotFound) {
				return fmt.Errorf("order %s references unknown product %s", orderID, q.productID)
			}
			if err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *Repository) updateOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID,
	updateFn port.UpdateOrderFn) (*domain.Order, error) {
	selectSt := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID}).
		Suffix("FOR UPDATE")

	sql, args, err := selectSt.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	if err := updateFn(order); err != nil {
		return nil, err
	}
	order.Version++

	updateSt := r.db.QueryBuilder.
		Update("orders").
		Set("payment_status", order.PaymentStatus).
		Set("status", order.Status).
		Set("tracking_info", order.TrackingInfo).
		Set("notifications", order.Notifications).
		Set("version", order.Version).
		Set("updated_at", order.UpdatedAt).
		Where(sq.Eq{"id": orderID})

	sql, args, err = updateSt.ToSql()
	if err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx, sql, args...); err != nil {
		return nil, err
	}

	return order, nil
}

type lineQuantity struct {
	productID uuid.UUID
	quantity  int64
}

// lineQuantities sums the order's lines per product. Rows come back in
// product order so concurrent cancels lock ledger rows in the same order.
func (r *Repository) lineQuantities(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]lineQuantity, error) {
	statement := r.db.QueryBuilder.
		Select("product_id", "SUM(quantity)::BIGINT").
		From("order_lines").
		Where(sq.Eq{"order_id": orderID}).
		GroupBy("product_id").
		OrderBy("product_id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]lineQuantity, 0)
	for rows.Next() {
		var q lineQuantity
		if err := rows.Scan(&q.productID, &q.quantity); err != nil {
			return nil, err
		}
		list = append(list, q)
	}

	return list, rows.Err()
}
