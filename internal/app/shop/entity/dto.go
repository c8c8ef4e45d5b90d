package entity

import "github.com/google/uuid"

// CreateProductRequest - запрос на создание или полное обновление товара
// При обновлении перезаписываются все изменяемые поля, slug генерируется заново
type CreateProductRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"required,min=10,max=2000"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	ImageURL    string    `json:"image_url" validate:"required,url"`
	Stock       int       `json:"stock" validate:"gte=0"`
	Category    uuid.UUID `json:"category" validate:"required"`
}

// SubmitReviewRequest - запрос на отправку отзыва с оценкой
type SubmitReviewRequest struct {
	Grade   float64 `json:"grade" validate:"required,gte=1,lte=5"`
	Comment string  `json:"comment" validate:"required,min=2,max=2000"`
}

// CreateCategoryRequest - запрос на создание категории
// Parent указывает корневую категорию для подкатегорий (дерево глубиной 1)
type CreateCategoryRequest struct {
	Name   string     `json:"name" validate:"required,min=2,max=100"`
	Parent *uuid.UUID `json:"parent,omitempty"`
}

// UpdateCategoryRequest - запрос на обновление категории
type UpdateCategoryRequest struct {
	Name   string     `json:"name" validate:"required,min=2,max=100"`
	Parent *uuid.UUID `json:"parent,omitempty"`
}

// RegisterRequest - запрос на регистрацию пользователя
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse - ответ с access токеном
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProductListResponse - ответ со списком товаров
type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// CategoryListResponse - ответ со списком категорий
type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

/// ReviewsRatingsResponse - пара независимых коллекций: отзывы и оценки.
// Сопоставление выполняет клиент по полю rating_id, join не делается.
type ReviewsRatingsResponse struct {
	Reviews []Review `json:"reviews"`
	Ratings []Rating `json:"ratings"`
}
