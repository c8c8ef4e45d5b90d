package handler

import (
	"context"
	"errors"
	"net/http"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogQueryService - публичные выборки каталога
type CatalogQueryService interface {
	ListActiveProducts(ctx context.Context) ([]entity.Product, error)
	ListProductsByCategory(ctx context.Context, categorySlug string) ([]entity.Product, error)
	GetProductDetail(ctx context.Context, productSlug string) (*entity.Product, error)
}

// ProductMutationService - защищённые мутации товаров
type ProductMutationService interface {
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest, actor service.Actor) (*entity.Product, error)
	UpdateProduct(ctx context.Context, productSlug string, req *entity.CreateProductRequest, actor service.Actor) (*entity.Product, error)
	DeleteProduct(ctx context.Context, productSlug string, actor service.Actor) error
}

type ProductHandler struct {
	catalogService CatalogQueryService
	productService ProductMutationService
	validator      *validator.Validate
}

func NewProductHandler(catalogService CatalogQueryService, productService ProductMutationService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		productService: productService,
		validator:      validator.New(),
	}
}

// ListProducts обрабатывает GET /products/
// Возвращает все активные товары в наличии; пустой список - валидный ответ
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListActiveProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// ListProductsByCategory обрабатывает GET /products/:category_slug
// Товары категории и её прямых подкатегорий
func (h *ProductHandler) ListProductsByCategory(c *gin.Context) {
	categorySlug := c.Param("category_slug")

	products, err := h.catalogService.ListProductsByCategory(c.Request.Context(), categorySlug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no category found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// GetProductDetail обрабатывает GET /products/detail/:product_slug
// Товар возвращается независимо от is_active и stock
func (h *ProductHandler) GetProductDetail(c *gin.Context) {
	// Маршрут зарегистрирован как /:category_slug/:product_slug,
	// первым сегментом должен быть литерал "detail"
	if c.Param("category_slug") != "detail" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	productSlug := c.Param("product_slug")

	product, err := h.catalogService.GetProductDetail(c.Request.Context(), productSlug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no product found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct обрабатывает POST /products/create
// Требует роли администратора или поставщика
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no category found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		}
		return
	}

	c.JSON(http.StatusCreated, entity.SuccessResponse{
		Message: "Successful",
		Data:    product,
	})
}

// UpdateProduct обрабатывает PUT /products/detail/:product_slug
// Требует владения товаром или роли администратора
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productSlug := c.Param("product_slug")

	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productSlug, &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no product found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product update is successful",
		Data:    product,
	})
}

// DeleteProduct обрабатывает DELETE /products/delete?product_slug=
// Soft delete: товар помечается неактивным
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productSlug := c.Query("product_slug")
	if productSlug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_slug is required"})
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), productSlug, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no product found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product delete is successful",
	})
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
