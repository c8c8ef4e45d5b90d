package repository

import (
	"context"
	"errors"

	"maplemarket/internal/app/shop/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this slug already exists")
	ErrCategoryHasProducts   = errors.New("cannot delete category with existing products")
	ErrProductNotFound       = errors.New("product not found")
	ErrRatingNotFound        = errors.New("rating not found")
	ErrReviewNotFound        = errors.New("review not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user with this username or email already exists")
	ErrDuplicateSlug         = errors.New("slug already exists")
)

// CategoryRepository определяет методы для работы с категориями в PostgreSQL
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	// GetChildIDs возвращает id категорий, у которых parent_id = parentID.
	// Вместе с самой категорией они образуют "scope" для выборки товаров.
	GetChildIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository определяет методы для работы с товарами
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	// ListActive возвращает товары с is_active=true и stock > 0
	ListActive(ctx context.Context) ([]entity.Product, error)
	// ListActiveByCategories возвращает активные товары в наличии,
	// чья категория входит в переданный набор id
	ListActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// RecalculateAllRatings пересчитывает агрегированный рейтинг всех товаров
	// по активным оценкам одним SQL запросом. Возвращает число обновлённых строк.
	RecalculateAllRatings(ctx context.Context) (int64, error)
}

// RatingRepository определяет методы для работы с оценками
type RatingRepository interface {
	// CreateWithReview выполняет в одной транзакции: вставку оценки, вставку
	// отзыва со ссылкой на эту оценку и пересчёт агрегированного рейтинга
	// товара по активным оценкам (округление до 2 знаков).
	CreateWithReview(ctx context.Context, rating *entity.Rating, review *entity.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Rating, error)
	ListActive(ctx context.Context) ([]entity.Rating, error)
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Rating, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// ReviewRepository определяет методы для работы с отзывами
type ReviewRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	ListActive(ctx context.Context) ([]entity.Review, error)
	ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Review, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	SetSupplier(ctx context.Context, id uuid.UUID, isSupplier bool) error
}
