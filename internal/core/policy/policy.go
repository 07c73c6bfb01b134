// Package policy decides what a caller may see and change in the order graph.
//
// Admins have full access. Sellers are scoped to orders that contain at least
// one line for a product they own, and only ever see those lines. Buyers are
// scoped to orders they placed. Functions here are pure: the caller supplies
// every ownership fact.
package policy

import (
	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/samber/lo"
)

// Facts describes the ownership of one order.
type Facts struct {
	BuyerID uint64
	Lines   []*domain.OrderLine
}

func known(caller domain.Caller) bool {
	switch caller.Role {
	case domain.RoleBuyer, domain.RoleSeller, domain.RoleAdmin:
		return caller.UserID != 0
	}
	return false
}

func ownedLines(sellerID uint64, lines []*domain.OrderLine) []*domain.OrderLine {
	return lo.Filter(lines, func(l *domain.OrderLine, _ int) bool {
		return l.SellerID == sellerID
	})
}

// CreateOrder allows buyers and admins to place orders for themselves.
// Sellers are not buyers: their order view is limited to their own products.
func CreateOrder(caller domain.Caller) error {
	if known(caller) && caller.Role != domain.RoleSeller {
		return nil
	}
	return domain.ErrForbidden
}

func CreateProduct(caller domain.Caller) error {
	if known(caller) && caller.Role != domain.RoleBuyer {
		return nil
	}
	return domain.ErrForbidden
}

// ViewOrder returns the lines the caller is allowed to see.
func ViewOrder(caller domain.Caller, facts Facts) ([]*domain.OrderLine, error) {
	if !known(caller) {
		return nil, domain.ErrForbidden
	}

	switch caller.Role {
	case domain.RoleAdmin:
		return facts.Lines, nil
	case domain.RoleSeller:
		lines := ownedLines(caller.UserID, facts.Lines)
		if len(lines) == 0 {
			return nil, domain.ErrForbidden
		}
		return lines, nil
	default:
		if facts.BuyerID == caller.UserID {
			return facts.Lines, nil
		}
		return nil, domain.ErrForbidden
	}
}

func TransitionOrder(caller domain.Caller, facts Facts) error {
	if !known(caller) {
		return domain.ErrForbidden
	}

	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleSeller:
		if len(ownedLines(caller.UserID, facts.Lines)) > 0 {
			return nil
		}
	}
	return domain.ErrForbidden
}

// CancelOrder is reserved to the buyer who placed the order.
func CancelOrder(caller domain.Caller, facts Facts) error {
	if !known(caller) || facts.BuyerID != caller.UserID {
		return domain.ErrForbidden
	}
	return nil
}

func UpdatePayment(caller domain.Caller) error {
	if known(caller) && caller.Role == domain.RoleAdmin {
		return nil
	}
	return domain.ErrForbidden
}

func ReadNotifications(caller domain.Caller, facts Facts) error {
	if !known(caller) || facts.BuyerID != caller.UserID {
		return domain.ErrForbidden
	}
	return nil
}

// ListScope narrows order listing to what the caller may see.
func ListScope(caller domain.Caller) (domain.OrderFilter, error) {
	if !known(caller) {
		return domain.OrderFilter{}, domain.ErrForbidden
	}

	switch caller.Role {
	case domain.RoleAdmin:
		return domain.OrderFilter{}, nil
	case domain.RoleSeller:
		return domain.OrderFilter{SellerID: lo.ToPtr(caller.UserID)}, nil
	default:
		return domain.OrderFilter{BuyerID: lo.ToPtr(caller.UserID)}, nil
	}
}
