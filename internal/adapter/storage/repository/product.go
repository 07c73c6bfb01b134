package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	statement := r.db.QueryBuilder.
		Insert("products").
		Columns("id", "owner_id", "name", "price", "stock", "created_at", "updated_at").
		Values(product.ID, product.OwnerID, product.Name, product.Price, product.Stock,
			product.CreatedAt, product.UpdatedAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return product, nil
}

func (r *Repository) ReadProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	statement := r.db.QueryBuilder.
		Select("id", "owner_id", "name", "price", "stock", "created_at", "updated_at").
		From("products").
		Where(sq.Eq{"id": productID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	p := domain.Product{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &p, nil
}

// Reserve is a single conditional update, so concurrent reservations of one
// product serialize on its row and never drive stock below zero.
func (r *Repository) Reserve(ctx context.Context, productID uuid.UUID, quantity int64) error {
	statement := r.db.QueryBuilder.
		Update("products").
		Set("stock", sq.Expr("stock - ?", quantity)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": productID}).
		Where(sq.GtOrEq{"stock": quantity})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	exists, err := r.productExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrDataNotFound
	}
	return domain.ErrInsufficientStock
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *Repository) Release(ctx context.Context, productID uuid.UUID, quantity int64) error {
	return r.release(ctx, r.db, productID, quantity)
}

func (r *Repository) release(ctx context.Context, db execer, productID uuid.UUID, quantity int64) error {
	statement := r.db.QueryBuilder.
		Update("products").
		Set("stock", sq.Expr("stock + ?", quantity)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": productID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDataNotFound
	}
	return nil
}

func (r *Repository) productExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	statement := r.db.QueryBuilder.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("products").
		Where(sq.Eq{"id": productID}).
		Suffix(")")

	sql, args, err := statement.ToSql()
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	return exists, err
}
