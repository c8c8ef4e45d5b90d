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

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Хелперы для создания тестового окружения

func setupProductHandler() (*ProductHandler, *mocks.MockCategoryRepository, *mocks.MockProductRepository, *mocks.MockMessagePublisher) {
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCategoryCache)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}

	catalogService := service.NewCatalogService(categoryRepo, productRepo, cache)
	productService := service.NewProductService(productRepo, categoryRepo, kafkaProducer)
	handler := NewProductHandler(catalogService, productService)

	return handler, categoryRepo, productRepo, kafkaProducer
}

func newTestProduct(categoryID uuid.UUID) *entity.Product {
	return &entity.Product{
		ID:          uuid.New(),
		Name:        "Laptop",
		Slug:        "laptop",
		Description: "High-performance laptop",
		Price:       1299.99,
		ImageURL:    "http://example.com/laptop.png",
		Stock:       5,
		SupplierID:  uuid.New(),
		CategoryID:  categoryID,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
}

func validCreateProductBody(categoryID uuid.UUID) []byte {
	body, _ := json.Marshal(entity.CreateProductRequest{
		Name:        "Laptop",
		Description: "High-performance laptop",
		Price:       1299.99,
		ImageURL:    "http://example.com/laptop.png",
		Stock:       5,
		Category:    categoryID,
	})
	return body
}

// ==================== List Tests ====================

func TestProductHandler_ListProducts_Success(t *testing.T) {
	// Arrange
	handler, _, productRepo, _ := setupProductHandler()
	products := []entity.Product{*newTestProduct(uuid.New())}

	productRepo.On("ListActive", mock.Anything).Return(products, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/", nil)

	// Act
	handler.ListProducts(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ProductListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)
	assert.Equal(t, "laptop", response.Products[0].Slug)
}

func TestProductHandler_ListProducts_Empty(t *testing.T) {
	// Arrange
	handler, _, productRepo, _ := setupProductHandler()

	productRepo.On("ListActive", mock.Anything).Return([]entity.Product{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/", nil)

	// Act
	handler.ListProducts(c)

	// Assert: пустой список - валидный ответ, не ошибка
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ProductListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Total)
}

func TestProductHandler_ListProductsByCategory_NotFound(t *testing.T) {
	// Arrange
	handler, categoryRepo, _, _ := setupProductHandler()

	categoryRepo.On("GetBySlug", mock.Anything, "missing").Return(nil, repository.ErrCategoryNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/missing", nil)
	c.Params = gin.Params{{Key: "category_slug", Value: "missing"}}

	// Act
	handler.ListProductsByCategory(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "There is no category found")
}

func TestProductHandler_GetProductDetail_Success(t *testing.T) {
	// Arrange
	handler, _, productRepo, _ := setupProductHandler()
	product := newTestProduct(uuid.New())

	productRepo.On("GetBySlug", mock.Anything, "laptop").Return(product, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/detail/laptop", nil)
	c.Params = gin.Params{{Key: "category_slug", Value: "detail"}, {Key: "product_slug", Value: "laptop"}}

	// Act
	handler.GetProductDetail(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, product.ID, response.ID)
}

func TestProductHandler_GetProductDetail_NotFound(t *testing.T) {
	// Arrange
	handler, _, productRepo, _ := setupProductHandler()

	productRepo.On("GetBySlug", mock.Anything, "missing").Return(nil, repository.ErrProductNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/detail/missing", nil)
	c.Params = gin.Params{{Key: "category_slug", Value: "detail"}, {Key: "product_slug", Value: "missing"}}

	// Act
	handler.GetProductDetail(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "There is no product found")
}

// ==================== Create Tests ====================

func TestProductHandler_CreateProduct_Success(t *testing.T) {
	// Arrange
	handler, categoryRepo, productRepo, kafkaProducer := setupProductHandler()
	categoryID := uuid.New()

	categoryRepo.On("GetByID", mock.Anything, categoryID).Return(&entity.Category{ID: categoryID}, nil)
	productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(nil)
	kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/products/create", bytes.NewBuffer(validCreateProductBody(categoryID)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "supplier", IsSupplier: true})

	// Act
	handler.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Successful")
}

func TestProductHandler_CreateProduct_BuyerDenied(t *testing.T) {
	// Arrange
	handler, _, productRepo, _ := setupProductHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/products/create", bytes.NewBuffer(validCreateProductBody(uuid.New())))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "buyer"})

	// Act
	handler.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "You are not authorized to use this method")
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductHandler_CreateProduct_ValidationError(t *testing.T) {
	// Arrange
	handler, _, _, _ := setupProductHandler()

	// Отрицательный stock не проходит валидацию
	body, _ := json.Marshal(entity.CreateProductRequest{
		Name:        "Laptop",
		Description: "High-performance laptop",
		Price:       1299.99,
		ImageURL:    "http://example.com/laptop.png",
		Stock:       -1,
		Category:    uuid.New(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/products/create", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== Update Tests ====================

func TestProductHandler_UpdateProduct_Success(t *testing.T) {
	// Arrange
	handler, _, productRepo, kafkaProducer := setupProductHandler()
	categoryID := uuid.New()
	actor := service.Actor{ID: uuid.New(), Username: "supplier", IsSupplier: true}
	existing := newTestProduct(categoryID)
	existing.SupplierID = actor.ID

	productRepo.On("GetBySlug", mock.Anything, "laptop").Return(existing, nil)
	productRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(nil)
	kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/products/detail/laptop", bytes.NewBuffer(validCreateProductBody(categoryID)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "product_slug", Value: "laptop"}}
	c.Set(actorContextKey, actor)

	// Act
	handler.UpdateProduct(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Product update is successful")
}

func TestProductHandler_UpdateProduct_ForeignSupplier(t *testing.T) {
	// Arrange
	handler, _, productRepo, _ := setupProductHandler()
	categoryID := uuid.New()
	existing := newTestProduct(categoryID)

	productRepo.On("GetBySlug", mock.Anything, "laptop").Return(existing, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/products/detail/laptop", bytes.NewBuffer(validCreateProductBody(categoryID)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "product_slug", Value: "laptop"}}
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "other", IsSupplier: true})

	// Act
	handler.UpdateProduct(c)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	productRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ==================== Delete Tests ====================

func TestProductHandler_DeleteProduct_Success(t *testing.T) {
	// Arrange
	handler, _, productRepo, kafkaProducer := setupProductHandler()
	existing := newTestProduct(uuid.New())

	productRepo.On("GetBySlug", mock.Anything, "laptop").Return(existing, nil)
	productRepo.On("SoftDelete", mock.Anything, existing.ID).Return(nil)
	kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/products/delete?product_slug=laptop", nil)
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.DeleteProduct(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Product delete is successful")
}

func TestProductHandler_DeleteProduct_MissingSlug(t *testing.T) {
	// Arrange
	handler, _, _, _ := setupProductHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/products/delete", nil)
	c.Set(actorContextKey, service.Actor{ID: uuid.New(), Username: "admin", IsAdmin: true})

	// Act
	handler.DeleteProduct(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
