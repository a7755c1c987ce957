package store

import (
	"context"
	"database/sql"
	"fmt"

	"points-mall/internal/models"
)

// CartByUser retrieves the user's cart items
func (s *Store) CartByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM cart_items WHERE user_id = $1 ORDER BY created_at", userID)
	return items, err
}

// UpsertCartItem adds one unit of a product to the cart, snapshotting the
// product's name, image and size-adjusted price. Re-adding the same product
// and size bumps the quantity; the original snapshot price is kept.
func (s *Store) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, product_name, product_image, size, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, product_id, size)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, unit_price, created_at`

	return s.db.GetContext(ctx, item, query,
		item.UserID, item.ProductID, item.ProductName, item.ProductImage,
		item.Size, item.Quantity, item.UnitPrice)
}

// ChangeCartItemQuantity adjusts a cart line by delta. A resulting quantity
// of zero or below deletes the line. Missing lines are a no-op, matching
// what a stale client would expect.
func (s *Store) ChangeCartItemQuantity(ctx context.Context, userID, productID, size string, delta int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var item models.CartItem
	err = tx.GetContext(ctx, &item,
		"SELECT * FROM cart_items WHERE user_id = $1 AND product_id = $2 AND size = $3 FOR UPDATE",
		userID, productID, size)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to lock cart item: %w", err)
	}

	newQuantity := item.Quantity + delta
	if newQuantity <= 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", item.ID); err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			"UPDATE cart_items SET quantity = $1 WHERE id = $2", newQuantity, item.ID); err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	return tx.Commit()
}

// ClearCart removes every cart item for a user
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	return err
}
