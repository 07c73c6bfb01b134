package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func ToRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	switch role {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return role, nil
	}

	return "", fmt.Errorf("%w: role %q", ErrBadRequest, s)
}

type User struct {
	ID       uint64
	Login    string
	Password string
	Role     Role
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID uint64
	Role   Role
}
