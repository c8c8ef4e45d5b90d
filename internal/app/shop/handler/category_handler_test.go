package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/repository"
	"maplemarket/internal/app/shop/repository/mocks"
	"maplemarket/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCategoryHandler() (*CategoryHandler, *mocks.MockCategoryRepository, *mocks.MockCategoryCache) {
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCategoryCache)

	catalogService := service.NewCatalogService(categoryRepo, productRepo, cache)
	return NewCategoryHandler(catalogService), categoryRepo, cache
}

func TestCategoryHandler_List_Success(t *testing.T) {
	// Arrange
	handler, categoryRepo, cache := setupCategoryHandler()
	categories := []entity.Category{{ID: uuid.New(), Name: "Shoes", Slug: "shoes"}}

	cache.On("GetCategories", mock.Anything).Return(nil, nil)
	categoryRepo.On("GetAll", mock.Anything).Return(categories, nil)
	cache.On("SetCategories", mock.Anything, categories, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/categories/", nil)

	// Act
	handler.List(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.CategoryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)
}

func TestCategoryHandler_Create_AdminSuccess(t *testing.T) {
	// Arrange
	handler, categoryRepo, cache := setupCategoryHandler()

	categoryRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("DeleteCategories", mock.Anything).Return(nil)

	body, _ := json.Marshal(entity.CreateCategoryRequest{Name: "Running Shoes"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/categories/create", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.Create(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "running-shoes")
}

func TestCategoryHandler_Create_NotAdmin(t *testing.T) {
	// Arrange
	handler, categoryRepo, _ := setupCategoryHandler()

	body, _ := json.Marshal(entity.CreateCategoryRequest{Name: "Shoes"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/categories/create", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "supplier", IsSupplier: true})

	// Act
	handler.Create(c)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryHandler_Create_NestedParentRejected(t *testing.T) {
	// Arrange
	handler, categoryRepo, _ := setupCategoryHandler()
	rootID := uuid.New()
	childID := uuid.New()

	categoryRepo.On("GetByID", mock.Anything, childID).Return(&entity.Category{ID: childID, ParentID: &rootID}, nil)

	body, _ := json.Marshal(entity.CreateCategoryRequest{Name: "Deep", Parent: &childID})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/categories/create", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.Create(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryHandler_Update_Success(t *testing.T) {
	// Arrange
	handler, categoryRepo, cache := setupCategoryHandler()
	existing := &entity.Category{ID: uuid.New(), Name: "Shoes", Slug: "shoes"}

	categoryRepo.On("GetBySlug", mock.Anything, "shoes").Return(existing, nil)
	categoryRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Category")).Return(nil)
	cache.On("DeleteCategories", mock.Anything).Return(nil)

	body, _ := json.Marshal(entity.UpdateCategoryRequest{Name: "Footwear"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/categories/update/shoes", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "category_slug", Value: "shoes"}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.Update(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Category update is successful")
	assert.Contains(t, w.Body.String(), "footwear")
}

func TestCategoryHandler_Delete_HasProducts(t *testing.T) {
	// Arrange
	handler, categoryRepo, _ := setupCategoryHandler()
	existing := &entity.Category{ID: uuid.New(), Name: "Shoes", Slug: "shoes"}

	categoryRepo.On("GetBySlug", mock.Anything, "shoes").Return(existing, nil)
	categoryRepo.On("Delete", mock.Anything, existing.ID).Return(repository.ErrCategoryHasProducts)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/categories/delete/shoes", nil)
	c.Params = gin.Params{{Key: "category_slug", Value: "shoes"}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.Delete(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCategoryHandler_Delete_Success(t *testing.T) {
	// Arrange
	handler, categoryRepo, cache := setupCategoryHandler()
	existing := &entity.Category{ID: uuid.New(), Name: "Shoes", Slug: "shoes"}

	categoryRepo.On("GetBySlug", mock.Anything, "shoes").Return(existing, nil)
	categoryRepo.On("Delete", mock.Anything, existing.ID).Return(nil)
	cache.On("DeleteCategories", mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/categories/delete/shoes", nil)
	c.Params = gin.Params{{Key: "category_slug", Value: "shoes"}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.Delete(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Category delete is successful")
	cache.AssertCalled(t, "DeleteCategories", mock.Anything)
}
