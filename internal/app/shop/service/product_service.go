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
	"github.com/gosimple/slug"
)

// ProductService обрабатывает мутации товаров: создание, полное обновление
// и soft delete. Каждая мутация проходит через проверку политики доступа
// и порождает доменное событие в Kafka.
type ProductService struct {
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	kafkaProducer util.MessagePublisher
}

// NewProductService создает новый сервис товаров с внедрением зависимостей
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	kafkaProducer util.MessagePublisher,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		kafkaProducer: kafkaProducer,
	}
}

// CreateProduct создает новый товар
// Доступно администратору или поставщику; владельцем становится актор.
// Slug детерминированно выводится из имени; коллизии отклоняет UNIQUE constraint
func (s *ProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest, actor Actor) (*entity.Product, error) {
	if !Allow(actor, ActionCreateProduct, nil) {
		return nil, ErrUnauthorized
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.Category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		SupplierID:  actor.ID,
		CategoryID:  req.Category,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductsCreated.Inc()
	s.publishEvent(ctx, "PRODUCT_CREATED", product)

	return product, nil
}

// UpdateProduct перезаписывает все изменяемые поля товара по slug
// Доступно владельцу (supplier_id) или администратору.
// Slug генерируется заново из нового имени
func (s *ProductService) UpdateProduct(ctx context.Context, productSlug string, req *entity.CreateProductRequest, actor Actor) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if !Allow(actor, ActionModifyProduct, product) {
		return nil, ErrUnauthorized
	}

	product.Name = req.Name
	product.Slug = slug.Make(req.Name)
	product.Description = req.Description
	product.Price = req.Price
	product.ImageURL = req.ImageURL
	product.Stock = req.Stock
	product.CategoryID = req.Category

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishEvent(ctx, "PRODUCT_UPDATED", product)

	return product, nil
}

// DeleteProduct помечает товар неактивным (soft delete)
// Доступно владельцу или администратору; строка не удаляется физически
func (s *ProductService) DeleteProduct(ctx context.Context, productSlug string, actor Actor) error {
	product, err := s.productRepo.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if !Allow(actor, ActionModifyProduct, product) {
		return ErrUnauthorized
	}

	if err := s.productRepo.SoftDelete(ctx, product.ID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	metrics.ProductsDeactivated.Inc()
	s.publishEvent(ctx, "PRODUCT_DELETED", product)

	return nil
}

// publishEvent отправляет событие о товаре в Kafka
// Товар уже сохранён, проблемы с Kafka не прерывают запрос
func (s *ProductService) publishEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ShopEvent{
		EventType: eventType,
		EntityID:  product.ID,
		ProductID: product.ID,
		UserID:    product.SupplierID,
		Payload: map[string]interface{}{
			"name":  product.Name,
			"slug":  product.Slug,
			"price": product.Price,
		},
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal product event")
		return
	}

	// Ключ = ProductID, чтобы события одного товара попадали в одну партицию
	if err := s.kafkaProducer.PublishMessage(ctx, product.ID.String(), eventData); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish product event")
	}
}
