package repository

import (
	"context"
	"errors"
	"math"

	"maplemarket/internal/app/shop/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return result.Error
	}
	return nil
}

// GetBySlug получает товар по slug независимо от is_active и stock
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "slug = ?", slug)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// ListActive получает все видимые товары каталога: is_active=true и stock > 0
func (r *productRepository) ListActive(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND stock > 0", true).
		Order("created_at DESC").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// ListActiveByCategories получает видимые товары в заданном наборе категорий
func (r *productRepository) ListActiveByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("category_id IN ? AND is_active = ? AND stock > 0", categoryIDs, true).
		Order("created_at DESC").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// Update перезаписывает все изменяемые поля товара, включая slug
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(product).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"name":        product.Name,
		"slug":        product.Slug,
		"description": product.Description,
		"price":       product.Price,
		"image_url":   product.ImageURL,
		"stock":       product.Stock,
		"category_id": product.CategoryID,
	})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// SoftDelete помечает товар неактивным, строка не удаляется
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).
		Update("is_active", false)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// RecalculateAllRatings сверяет сохранённые рейтинги товаров с активными
// оценками одним запросом. Товары без активных оценок не трогаем:
// их рейтинг сохраняет последнее рассчитанное значение.
func (r *productRepository) RecalculateAllRatings(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE products p
		SET rating = agg.avg_grade
		FROM (
			SELECT product_id, ROUND(AVG(grade)::numeric, 2) AS avg_grade
			FROM ratings
			WHERE is_active = true
			GROUP BY product_id
		) agg
		WHERE p.id = agg.product_id AND p.rating <> agg.avg_grade
	`)

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// roundGrade округляет среднюю оценку до 2 знаков после запятой
func roundGrade(value float64) float64 {
	return math.Round(value*100) / 100
}
