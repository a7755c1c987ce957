package service

import (
	"context"
	"fmt"

	"points-mall/internal/models"
	"points-mall/internal/util"

	"go.uber.org/zap"
)

// CartStore is the persistence surface the cart needs
type CartStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	CartByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	UpsertCartItem(ctx context.Context, item *models.CartItem) error
	ChangeCartItemQuantity(ctx context.Context, userID, productID, size string, delta int) error
	ClearCart(ctx context.Context, userID string) error
}

// CartService manages the per-user cart. Adding an item snapshots the
// product's name, image and size-adjusted price, so a later product edit
// never changes what an already-carted item costs.
type CartService struct {
	store          CartStore
	largeSurcharge int64
	logger         *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(st CartStore, largeSurcharge int64) *CartService {
	return &CartService{
		store:          st,
		largeSurcharge: largeSurcharge,
		logger:         util.GetLogger(),
	}
}

// Get retrieves the user's cart
func (s *CartService) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.store.CartByUser(ctx, userID)
}

// Add puts one unit of a product into the cart. Large size carries the
// configured surcharge on top of the base price.
func (s *CartService) Add(ctx context.Context, userID, productID, size string) error {
	ctx, span := util.StartSpan(ctx, "CartService.Add")
	defer span.End()

	if size == "" {
		size = models.SizeStandard
	}
	if size != models.SizeStandard && size != models.SizeLarge {
		return fmt.Errorf("invalid size: %s", size)
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}

	unitPrice := product.Price
	if size == models.SizeLarge {
		unitPrice += s.largeSurcharge
	}

	item := &models.CartItem{
		UserID:       userID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.Image,
		Size:         size,
		Quantity:     1,
		UnitPrice:    unitPrice,
	}

	return s.store.UpsertCartItem(ctx, item)
}

// ChangeQuantity adjusts a cart line by delta; at or below zero the line
// is removed
func (s *CartService) ChangeQuantity(ctx context.Context, userID, productID, size string, delta int) error {
	if size == "" {
		size = models.SizeStandard
	}
	return s.store.ChangeCartItemQuantity(ctx, userID, productID, size, delta)
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.ClearCart(ctx, userID)
}
