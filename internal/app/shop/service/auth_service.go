package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/repository"
	"maplemarket/internal/app/shop/util"
	"maplemarket/pkg/metrics"

	"github.com/google/uuid"
)

// AuthService обрабатывает регистрацию, вход и управление ролями
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *util.JWTManager
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtManager *util.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register создает нового пользователя без ролей
// Флаги is_admin и is_supplier выставляются только администратором
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthRegistrations.Inc()

	return user, nil
}

// Login проверяет учётные данные и выпускает access токен
// Ответ не различает "нет пользователя" и "неверный пароль"
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.IsAdmin, user.IsSupplier)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()

	return &entity.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// SetSupplier выставляет или снимает флаг поставщика (только администратор)
func (s *AuthService) SetSupplier(ctx context.Context, userID uuid.UUID, isSupplier bool, actor Actor) error {
	if !Allow(actor, ActionManageRoles, nil) {
		return ErrUnauthorized
	}

	if err := s.userRepo.SetSupplier(ctx, userID, isSupplier); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set supplier flag: %w", err)
	}

	return nil
}
