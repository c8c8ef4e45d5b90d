package repository

import (
	"context"
	"errors"

	"maplemarket/internal/app/shop/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ratingRepository struct {
	db *gorm.DB // GORM DB для работы с PostgreSQL
}

// NewRatingRepository создает новый репозиторий оценок
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// CreateWithReview вставляет оценку и связанный отзыв и пересчитывает
// агрегированный рейтинг товара в одной транзакции. Без транзакции два
// конкурентных отзыва на один товар могут прочитать устаревший набор оценок
// и затереть результат друг друга.
func (r *ratingRepository) CreateWithReview(ctx context.Context, rating *entity.Rating, review *entity.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return err
		}

		// Отзыв ссылается на только что вставленную оценку
		review.RatingID = rating.ID
		if err := tx.Create(review).Error; err != nil {
			return err
		}

		type aggregate struct {
			Count int64
			Sum   float64
		}
		var agg aggregate
		if err := tx.Model(&entity.Rating{}).
			Select("COUNT(*) AS count, COALESCE(SUM(grade), 0) AS sum").
			Where("product_id = ? AND is_active = ?", rating.ProductID, true).
			Scan(&agg).Error; err != nil {
			return err
		}

		// Без активных оценок рейтинг не трогаем: прежнее значение сохраняется
		if agg.Count == 0 {
			return nil
		}

		return tx.Model(&entity.Product{}).
			Where("id = ?", rating.ProductID).
			Update("rating", roundGrade(agg.Sum/float64(agg.Count))).Error
	})
}

// GetByID получает оценку по ID
func (r *ratingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Rating, error) {
	var rating entity.Rating
	result := r.db.WithContext(ctx).First(&rating, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, result.Error
	}

	return &rating, nil
}

// ListActive получает все активные оценки
func (r *ratingRepository) ListActive(ctx context.Context) ([]entity.Rating, error) {
	var ratings []entity.Rating
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&ratings)

	if result.Error != nil {
		return nil, result.Error
	}

	return ratings, nil
}

// ListActiveByProduct получает активные оценки товара
func (r *ratingRepository) ListActiveByProduct(ctx context.Context, productID uuid.UUID) ([]entity.Rating, error) {
	var ratings []entity.Rating
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Find(&ratings)

	if result.Error != nil {
		return nil, result.Error
	}

	return ratings, nil
}

// SoftDelete помечает оценку неактивной
// Пересчёт рейтинга товара при этом не выполняется: дрейф устраняет
// фоновый reconciler (processor.CronScheduler)
func (r *ratingRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&entity.Rating{}).
		Where("id = ?", id).
		Update("is_active", false)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}

	return nil
}
