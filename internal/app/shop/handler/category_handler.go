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

type CategoryServiceInterface interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest, actor service.Actor) (*entity.Category, error)
	UpdateCategory(ctx context.Context, categorySlug string, req *entity.UpdateCategoryRequest, actor service.Actor) (*entity.Category, error)
	DeleteCategory(ctx context.Context, categorySlug string, actor service.Actor) error
}

type CategoryHandler struct {
	catalogService CategoryServiceInterface
	validator      *validator.Validate
}

func NewCategoryHandler(catalogService CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// List обрабатывает GET /categories/
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// Create обрабатывает POST /categories/create (только администратор)
func (h *CategoryHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no category found"})
		case errors.Is(err, service.ErrCategoryParentInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent category must be a root category"})
		case errors.Is(err, service.ErrCategoryExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		}
		return
	}

	c.JSON(http.StatusCreated, entity.SuccessResponse{
		Message: "Successful",
		Data:    category,
	})
}

// Update обрабатывает PUT /categories/update/:category_slug (только администратор)
func (h *CategoryHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	categorySlug := c.Param("category_slug")

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), categorySlug, &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no category found"})
		case errors.Is(err, service.ErrCategoryParentInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent category must be a root category"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Category update is successful",
		Data:    category,
	})
}

// Delete обрабатывает DELETE /categories/delete/:category_slug (только администратор)
func (h *CategoryHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	categorySlug := c.Param("category_slug")

	if err := h.catalogService.DeleteCategory(c.Request.Context(), categorySlug, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no category found"})
		case errors.Is(err, service.ErrCategoryHasProducts):
			c.JSON(http.StatusConflict, gin.H{"error": "Category has products and cannot be deleted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Category delete is successful",
	})
}
