package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikeRez0/ypstore/internal/core/domain"
	"github.com/MikeRez0/ypstore/internal/core/policy"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/MikeRez0/ypstore/internal/core/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultNotificationLimit = 50

type Service struct {
	repo              port.Repository
	tokenService      port.TokenService
	notifier          port.SellerNotifier
	idempotency       port.IdempotencyStore
	observer          port.OrderObserver
	notificationLimit int
	now               func() time.Time
	logger            *zap.Logger
}

type Option func(*Service)

// WithIdempotency enables Idempotency-Key handling for order creation.
// Without a store the key is ignored.
func WithIdempotency(store port.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

func WithObserver(observer port.OrderObserver) Option {
	return func(s *Service) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithNotificationLimit bounds the notification log of every order.
// Non-positive values keep the whole log.
func WithNotificationLimit(limit int) Option {
	return func(s *Service) {
		s.notificationLimit = limit
	}
}

func NewService(repo port.Repository, tokenService port.TokenService,
	notifier port.SellerNotifier, logger *zap.Logger, opts ...Option) (*Service, error) {
	if repo == nil || tokenService == nil || notifier == nil || logger == nil {
		return nil, errors.New("service dependencies must not be nil")
	}

	s := &Service{
		repo:              repo,
		tokenService:      tokenService,
		notifier:          notifier,
		observer:          noopObserver{},
		notificationLimit: defaultNotificationLimit,
		now:               time.Now,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// RegisterUser stores a new buyer or seller. The password is hashed here.
func (s *Service) RegisterUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if strings.TrimSpace(user.Login) == "" || user.Password == "" {
		return nil, fmt.Errorf("%w: login and password are required", domain.ErrBadRequest)
	}
	switch user.Role {
	case "":
		user.Role = domain.RoleBuyer
	case domain.RoleBuyer, domain.RoleSeller:
	default:
		return nil, fmt.Errorf("%w: role %q can not be registered", domain.ErrBadRequest, user.Role)
	}

	return s.createUser(ctx, user)
}

// EnsureAdmin creates the bootstrap admin account unless it exists already.
func (s *Service) EnsureAdmin(ctx context.Context, login, password string) error {
	exUser, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, domain.ErrDataNotFound) {
		return fmt.Errorf("get admin: %w", err)
	}
	if exUser != nil {
		if exUser.Role != domain.RoleAdmin {
			return fmt.Errorf("%w: login %q is taken by a %s", domain.ErrConflictingData, login, exUser.Role)
		}
		return nil
	}

	_, err = s.createUser(ctx, &domain.User{Login: login, Password: password, Role: domain.RoleAdmin})
	return err
}

func (s *Service) createUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	exUser, err := s.repo.GetUserByLogin(ctx, user.Login)
	if err != nil && !errors.Is(err, domain.ErrDataNotFound) {
		s.logger.Error("Get user", zap.Error(err))
		return nil, domain.ErrInternal
	}

	if exUser != nil {
		return nil, domain.ErrConflictingData
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		s.logger.Error("Hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}
	user.Password = hashed

	newUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrConflictingData) {
			return nil, domain.ErrConflictingData
		}
		s.logger.Error("Create user", zap.Error(err))
		return nil, domain.ErrInternal
	}

	return newUser, nil
}

func (s *Service) LoginUser(ctx context.Context, login string, password string) (string, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		s.logger.Error("Get user", zap.Error(err))
		return "", domain.ErrInternal
	}

	err = utils.ComparePassword(password, user.Password)
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(user)
	if err != nil {
		s.logger.Error("Create token", zap.Error(err))
		return "", domain.ErrTokenCreation
	}

	return token, nil
}

func (s *Service) CreateProduct(ctx context.Context, caller domain.Caller,
	product *domain.Product) (*domain.Product, error) {
	if err := policy.CreateProduct(caller); err != nil {
		return nil, err
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	product.ID = uuid.New()
	product.OwnerID = caller.UserID
	product.CreatedAt = now
	product.UpdatedAt = now

	newProduct, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		s.logger.Error("Create product", zap.Error(err))
		return nil, domain.ErrInternal
	}

	return newProduct, nil
}

func (s *Service) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.ReadProduct(ctx, productID)
	if err != nil {
		return nil, s.storageError("Read product", err)
	}
	return product, nil
}

// storageError passes through errors callers can act on and hides the rest.
func (s *Service) storageError(msg string, err error) error {
	if errors.Is(err, domain.ErrDataNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
		return err
	}
	s.logger.Error(msg, zap.Error(err))
	return domain.ErrInternal
}

type noopObserver struct{}

func (noopObserver) OrderCreated(int)     {}
func (noopObserver) StockRejected()       {}
func (noopObserver) StockCompensated(int) {}
func (noopObserver) StatusChanged(string) {}
