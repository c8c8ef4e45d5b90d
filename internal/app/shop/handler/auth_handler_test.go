package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/repository"
	"maplemarket/internal/app/shop/repository/mocks"
	"maplemarket/internal/app/shop/service"
	"maplemarket/internal/app/shop/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthHandler() (*AuthHandler, *mocks.MockUserRepository) {
	userRepo := new(mocks.MockUserRepository)
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute)
	authService := service.NewAuthService(userRepo, jwtManager)
	return NewAuthHandler(authService), userRepo
}

func TestAuthHandler_Register_Success(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()

	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	body, _ := json.Marshal(entity.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Register(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Successful")
	// Хэш пароля не попадает в ответ
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestAuthHandler_Register_DuplicateUser(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()

	userRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrUserAlreadyExists)

	body, _ := json.Marshal(entity.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Register(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()

	body, _ := json.Marshal(entity.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "short",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Register(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()

	hash, _ := util.HashPassword("secret123")
	user := &entity.User{ID: uuid.New(), Username: "alice", PasswordHash: hash}
	userRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

	body, _ := json.Marshal(entity.LoginRequest{Username: "alice", Password: "secret123"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Login(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response.AccessToken)
	assert.Equal(t, "bearer", response.TokenType)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()

	hash, _ := util.HashPassword("secret123")
	user := &entity.User{ID: uuid.New(), Username: "alice", PasswordHash: hash}
	userRepo.On("GetByUsername", mock.Anything, "alice").Return(user, nil)

	body, _ := json.Marshal(entity.LoginRequest{Username: "alice", Password: "wrong"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Login(c)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestAuthHandler_SetSupplier_AdminSuccess(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()
	userID := uuid.New()

	userRepo.On("SetSupplier", mock.Anything, userID, true).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/permission/supplier/"+userID.String(), nil)
	c.Params = gin.Params{{Key: "user_id", Value: userID.String()}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.SetSupplier(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	userRepo.AssertExpectations(t)
}

func TestAuthHandler_SetSupplier_RevokeRole(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()
	userID := uuid.New()

	userRepo.On("SetSupplier", mock.Anything, userID, false).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/permission/supplier/"+userID.String()+"?grant=false", nil)
	c.Params = gin.Params{{Key: "user_id", Value: userID.String()}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.SetSupplier(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	userRepo.AssertExpectations(t)
}

func TestAuthHandler_SetSupplier_NotAdmin(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()
	userID := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/permission/supplier/"+userID.String(), nil)
	c.Params = gin.Params{{Key: "user_id", Value: userID.String()}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "supplier", IsSupplier: true})

	// Act
	handler.SetSupplier(c)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "You are not authorized to use this method")
	userRepo.AssertNotCalled(t, "SetSupplier", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_SetSupplier_InvalidUserID(t *testing.T) {
	// Arrange
	handler, userRepo := setupAuthHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/permission/supplier/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "user_id", Value: "not-a-uuid"}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.SetSupplier(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	userRepo.AssertNotCalled(t, "SetSupplier", mock.Anything, mock.Anything, mock.Anything)
}
