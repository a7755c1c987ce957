package service

import (
	"context"
	"time"

	"points-mall/internal/models"
	"points-mall/internal/redisclient"
	"points-mall/internal/store"
	"points-mall/internal/util"

	"go.uber.org/zap"
)

const (
	productsCacheKey   = "catalog:products"
	categoriesCacheKey = "catalog:categories"
)

// CatalogService serves the read-mostly menu with a Redis cache in front.
// Admin edits become visible when the cache entries expire.
type CatalogService struct {
	store    *store.Store
	redis    *redisclient.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st *store.Store, redis *redisclient.Client, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    st,
		redis:    redis,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// Products retrieves the full product catalog
func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Products")
	defer span.End()

	var products []models.Product
	if s.cacheGet(ctx, productsCacheKey, &products) {
		return products, nil
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, productsCacheKey, products)
	return products, nil
}

// Categories retrieves the menu categories
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Categories")
	defer span.End()

	var categories []models.Category
	if s.cacheGet(ctx, categoriesCacheKey, &categories) {
		return categories, nil
	}

	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, categoriesCacheKey, categories)
	return categories, nil
}

// Product retrieves a single product, bypassing the cache
func (s *CatalogService) Product(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// SaveProduct creates or updates a product and invalidates the catalog cache
func (s *CatalogService) SaveProduct(ctx context.Context, p *models.Product) error {
	if err := s.store.UpsertProduct(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, productsCacheKey)
	return nil
}

// DeleteProduct removes a product and invalidates the catalog cache
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, productsCacheKey)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, key string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.InvalidateCached(ctx, key); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}

	hit, err := s.redis.GetCached(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if hit {
		util.CatalogCacheHits.WithLabelValues("hit").Inc()
	} else {
		util.CatalogCacheHits.WithLabelValues("miss").Inc()
	}
	return hit
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	if err := s.redis.SetCached(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
