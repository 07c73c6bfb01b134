package port

import "github.com/MikeRez0/ypstore/internal/core/domain"

type TokenPayload struct {
	UserID uint64      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock
type TokenService interface {
	CreateToken(user *domain.User) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}
