package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maplemarket/internal/app/shop/entity"
	"maplemarket/internal/app/shop/repository"
	"maplemarket/internal/app/shop/util"
	"maplemarket/pkg/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// CatalogService обрабатывает каталог: управление категориями и публичные
// выборки товаров. Координирует работу репозиториев и Redis кеша.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.CategoryCache
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
	}
}

// === CATEGORIES ===

// ListCategories получает все категории с кешированием в Redis
// Сначала проверяет кеш, если нет - загружает из БД и кеширует на 1 час
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, time.Hour); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache categories")
	}

	return categories, nil
}

// CreateCategory создает новую категорию и инвалидирует кеш
// Подкатегория может ссылаться только на корневую категорию: дерево
// категорий имеет глубину ровно один уровень
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest, actor Actor) (*entity.Category, error) {
	if !Allow(actor, ActionManageCategories, nil) {
		return nil, ErrUnauthorized
	}

	if req.Parent != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *req.Parent)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to verify parent category: %w", err)
		}
		if parent.ParentID != nil {
			return nil, ErrCategoryParentInvalid
		}
	}

	category := &entity.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      slug.Make(req.Name),
		ParentID:  req.Parent,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCache(ctx)

	return category, nil
}

// UpdateCategory обновляет категорию по slug и инвалидирует кеш
// Slug пересчитывается из нового имени
func (s *CatalogService) UpdateCategory(ctx context.Context, categorySlug string, req *entity.UpdateCategoryRequest, actor Actor) (*entity.Category, error) {
	if !Allow(actor, ActionManageCategories, nil) {
		return nil, ErrUnauthorized
	}

	category, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Name = req.Name
	category.Slug = slug.Make(req.Name)
	if req.Parent != nil {
		category.ParentID = req.Parent
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCache(ctx)

	return category, nil
}

// DeleteCategory удаляет категорию по slug и инвалидирует кеш
// Категория с товарами не удаляется
func (s *CatalogService) DeleteCategory(ctx context.Context, categorySlug string, actor Actor) error {
	if !Allow(actor, ActionManageCategories, nil) {
		return ErrUnauthorized
	}

	category, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryHasProducts):
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCache(ctx)

	return nil
}

// === PRODUCT QUERIES ===

// ListActiveProducts получает все видимые товары каталога:
// is_active=true и stock > 0. Пустой список - валидный ответ
func (s *CatalogService) ListActiveProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// ListProductsByCategory получает видимые товары категории и её прямых
// подкатегорий. Неизвестный slug категории - ошибка, пустой список товаров - нет
func (s *CatalogService) ListProductsByCategory(ctx context.Context, categorySlug string) ([]entity.Product, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	childIDs, err := s.categoryRepo.GetChildIDs(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subcategories: %w", err)
	}

	scope := append([]uuid.UUID{category.ID}, childIDs...)

	products, err := s.productRepo.ListActiveByCategories(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}

	return products, nil
}

// GetProductDetail получает товар по slug независимо от is_active и stock
func (s *CatalogService) GetProductDetail(ctx context.Context, productSlug string) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// invalidateCache сбрасывает кеш категорий после мутации
func (s *CatalogService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}
