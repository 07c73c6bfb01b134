package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

// MaxProductNameLen matches the products.name column.
const MaxProductNameLen = 255

type Product struct {
	ID      uuid.UUID
	OwnerID uint64
	Name    string
	Price   decimal.Decimal
	Stock   int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrBadRequest)
	}
	if utf8.RuneCountInString(p.Name) > MaxProductNameLen {
		return fmt.Errorf("%w: product name is longer than %d characters", ErrBadRequest, MaxProductNameLen)
	}
	if !p.Price.IsPos() {
		return fmt.Errorf("%w: product price must be positive", ErrBadRequest)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product stock must not be negative", ErrBadRequest)
	}
	return nil
}
