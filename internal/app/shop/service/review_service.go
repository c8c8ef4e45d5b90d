package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/repository"
	"maplemarket/internal/app/shop/util"
	"maplemarket/pkg/logger"
	"maplemarket/pkg/metrics"

	"github.com/google/uuid"
)

// ReviewService обрабатывает отзывы и оценки: публичные списки, отправку
// пары оценка+отзыв с пересчётом агрегированного рейтинга товара и
// административное удаление пары (soft delete).
type ReviewService struct {
	productRepo   repository.ProductRepository
	ratingRepo    repository.RatingRepository
	reviewRepo    repository.ReviewRepository
	kafkaProducer util.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	productRepo repository.ProductRepository,
	ratingRepo repository.RatingRepository,
	reviewRepo repository.ReviewRepository,
	kafkaProducer util.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		productRepo:   productRepo,
		ratingRepo:    ratingRepo,
		reviewRepo:    reviewRepo,
		kafkaProducer: kafkaProducer,
	}
}

// ListAll возвращает две независимые коллекции: все активные отзывы и все
// активные оценки. Join не выполняется, сопоставление по rating_id - задача клиента
func (s *ReviewService) ListAll(ctx context.Context) (*entity.ReviewsRatingsResponse, error) {
	reviews, err := s.reviewRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	ratings, err := s.ratingRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	return &entity.ReviewsRatingsResponse{Reviews: reviews, Ratings: ratings}, nil
}

// ListByProduct возвращает активные отзывы и оценки товара
// Неизвестный slug товара - ошибка, пустые коллекции - нет
func (s *ReviewService) ListByProduct(ctx context.Context, productSlug string) (*entity.ReviewsRatingsResponse, error) {
	product, err := s.productRepo.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	reviews, err := s.reviewRepo.ListActiveByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product reviews: %w", err)
	}

	ratings, err := s.ratingRepo.ListActiveByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product ratings: %w", err)
	}

	return &entity.ReviewsRatingsResponse{Reviews: reviews, Ratings: ratings}, nil
}

// Submit записывает пару оценка+отзыв аутентифицированного пользователя
// и пересчитывает рейтинг товара. Вставки и пересчёт выполняются в одной
// транзакции, отзыв ссылается на оценку из того же запроса
func (s *ReviewService) Submit(ctx context.Context, productSlug string, req *entity.SubmitReviewRequest, actor Actor) (*entity.Review, error) {
	if !Allow(actor, ActionSubmitReview, nil) {
		return nil, ErrUnauthorized
	}

	product, err := s.productRepo.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	rating := &entity.Rating{
		ID:        uuid.New(),
		Grade:     req.Grade,
		UserID:    actor.ID,
		ProductID: product.ID,
		IsActive:  true,
	}

	review := &entity.Review{
		ID:          uuid.New(),
		UserID:      actor.ID,
		ProductID:   product.ID,
		Comment:     req.Comment,
		CommentDate: time.Now(),
		IsActive:    true,
	}

	if err := s.ratingRepo.CreateWithReview(ctx, rating, review); err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsGrade.Observe(req.Grade)
	metrics.RatingRecalculations.WithLabelValues("review_submitted").Inc()

	s.publishReviewEvent(ctx, review, rating)

	return review, nil
}

// Delete помечает пару оценка+отзыв неактивной (только администратор)
// Повторное удаление той же пары возвращает NotFound: строки уже неактивны.
// Рейтинг товара при удалении не пересчитывается, дрейф устраняет reconciler
func (s *ReviewService) Delete(ctx context.Context, ratingID, reviewID uuid.UUID, actor Actor) error {
	if !Allow(actor, ActionDeleteReview, nil) {
		return ErrUnauthorized
	}

	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("failed to get rating: %w", err)
	}
	if !rating.IsActive {
		return ErrRatingNotFound
	}

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}
	if !review.IsActive {
		return ErrReviewNotFound
	}

	if err := s.ratingRepo.SoftDelete(ctx, ratingID); err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	if err := s.reviewRepo.SoftDelete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}

// publishReviewEvent отправляет событие REVIEW_CREATED в Kafka
// Отзыв уже создан, проблемы с Kafka не прерывают запрос
func (s *ReviewService) publishReviewEvent(ctx context.Context, review *entity.Review, rating *entity.Rating) {
	event := entity.ShopEvent{
		EventType: "REVIEW_CREATED",
		EntityID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Payload: map[string]interface{}{
			"rating_id": rating.ID,
			"grade":     rating.Grade,
		},
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, review.ProductID.String(), eventData); err != nil {
		logger.Warn().Err(err).Msg("failed to publish review event")
	}
}
