package service

import (
	"context"
	"testing"
	"time"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/repository"
	"maplemarket/internal/app/shop/repository/mocks"
	"maplemarket/internal/app/shop/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuthServiceWithMocks() (*AuthService, *mocks.MockUserRepository) {
	userRepo := new(mocks.MockUserRepository)
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute)
	return NewAuthService(userRepo, jwtManager), userRepo
}

func TestRegister_Success(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	req := &entity.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret123"}

	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	user, err := svc.Register(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsSupplier)
	// Пароль хранится только как bcrypt hash
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, util.CheckPassword("secret123", user.PasswordHash))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	req := &entity.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret123"}

	userRepo.On("Create", ctx, mock.Anything).Return(repository.ErrUserAlreadyExists)

	user, err := svc.Register(ctx, req)

	assert.ErrorIs(t, err, ErrUserExists)
	assert.Nil(t, user)
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	hash, _ := util.HashPassword("secret123")
	user := &entity.User{ID: uuid.New(), Username: "alice", PasswordHash: hash, IsSupplier: true}

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	tokens, err := svc.Login(ctx, &entity.LoginRequest{Username: "alice", Password: "secret123"})

	assert.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "bearer", tokens.TokenType)

	// Токен несёт клеймы пользователя, включая роль поставщика
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute)
	claims, err := jwtManager.ValidateToken(tokens.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.True(t, claims.IsSupplier)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	hash, _ := util.HashPassword("secret123")
	user := &entity.User{ID: uuid.New(), Username: "alice", PasswordHash: hash}

	userRepo.On("GetByUsername", ctx, "alice").Return(user, nil)

	tokens, err := svc.Login(ctx, &entity.LoginRequest{Username: "alice", Password: "wrong"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, tokens)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	userRepo.On("GetByUsername", ctx, "ghost").Return(nil, repository.ErrUserNotFound)

	tokens, err := svc.Login(ctx, &entity.LoginRequest{Username: "ghost", Password: "whatever"})

	// Ответ не различает неизвестного пользователя и неверный пароль
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, tokens)
}

func TestSetSupplier_AdminSuccess(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	admin := Actor{ID: uuid.New(), Username: "admin", IsAdmin: true}
	userID := uuid.New()

	userRepo.On("SetSupplier", ctx, userID, true).Return(nil)

	err := svc.SetSupplier(ctx, userID, true, admin)

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestSetSupplier_NotAdmin(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	supplier := Actor{ID: uuid.New(), Username: "supplier", IsSupplier: true}

	err := svc.SetSupplier(ctx, uuid.New(), true, supplier)

	assert.ErrorIs(t, err, ErrUnauthorized)
	userRepo.AssertNotCalled(t, "SetSupplier", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetSupplier_UserNotFound(t *testing.T) {
	svc, userRepo := newAuthServiceWithMocks()

	ctx := context.Background()
	admin := Actor{ID: uuid.New(), Username: "admin", IsAdmin: true}
	userID := uuid.New()

	userRepo.On("SetSupplier", ctx, userID, false).Return(repository.ErrUserNotFound)

	err := svc.SetSupplier(ctx, userID, false, admin)

	assert.ErrorIs(t, err, ErrUserNotFound)
}
