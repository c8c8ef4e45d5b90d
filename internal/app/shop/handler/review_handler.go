package handler

import (
	"context"
	"errors"
	"net/http"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ReviewServiceInterface interface {
	ListAll(ctx context.Context) (*entity.ReviewsRatingsResponse, error)
	ListByProduct(ctx context.Context, productSlug string) (*entity.ReviewsRatingsResponse, error)
	Submit(ctx context.Context, productSlug string, req *entity.SubmitReviewRequest, actor service.Actor) (*entity.Review, error)
	Delete(ctx context.Context, ratingID, reviewID uuid.UUID, actor service.Actor) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// ListAll обрабатывает GET /reviews/
// Возвращает все активные отзывы и оценки двумя независимыми коллекциями
func (h *ReviewHandler) ListAll(c *gin.Context) {
	result, err := h.reviewService.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListByProduct обрабатывает GET /reviews/product_reviews/:product_slug
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productSlug := c.Param("product_slug")

	result, err := h.reviewService.ListByProduct(c.Request.Context(), productSlug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no product found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list product reviews"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Submit обрабатывает POST /reviews/add_review/:product_slug
// Требует аутентифицированного пользователя
func (h *ReviewHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productSlug := c.Param("product_slug")

	var req entity.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.reviewService.Submit(c.Request.Context(), productSlug, &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no product found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
		}
		return
	}

	c.JSON(http.StatusCreated, entity.SuccessResponse{
		Message: "Successful",
		Data:    review,
	})
}

// Delete обрабатывает DELETE /reviews/delete?rating_id=&review_id=
// Только администратор; повторный вызов с теми же id возвращает 404
func (h *ReviewHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ratingID, err := uuid.Parse(c.Query("rating_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating_id"})
		return
	}

	reviewID, err := uuid.Parse(c.Query("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review_id"})
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), ratingID, reviewID, actor); err != nil {
		switch {
		case errors.Is(err, service.ErrRatingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no rating found"})
		case errors.Is(err, service.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "There is no review found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not authorized to use this method"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review delete is successful",
	})
}
