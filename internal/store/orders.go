package store

import (
	"context"
	"database/sql"
	"fmt"

	"points-mall/internal/models"
)

// SettlementInput carries everything the checkout transaction writes. The
// amounts are recomputed by the caller from the live cart immediately before
// settlement; client-supplied prices never reach this layer.
type SettlementInput struct {
	Order    *models.Order
	Items    []models.CartItem
	CouponID string
}

// SettleCheckout executes the checkout as a single database transaction:
// order insert, item snapshots, conditional points debit, ledger append,
// coupon consumption and cart clear. Any failure rolls back the whole
// settlement, so an order can never exist without its points debit.
func (s *Store) SettleCheckout(ctx context.Context, in SettlementInput) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order := in.Order

	err = tx.GetContext(ctx, &order.CreatedAt, `
		INSERT INTO orders (id, user_id, status, subtotal, discount_amount, final_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		order.ID, order.UserID, order.Status, order.Subtotal, order.DiscountAmount, order.FinalPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = make([]models.OrderItem, 0, len(in.Items))
	for _, cartItem := range in.Items {
		item := models.OrderItem{
			OrderID:      order.ID,
			ProductID:    cartItem.ProductID,
			ProductName:  cartItem.ProductName,
			ProductImage: cartItem.ProductImage,
			Size:         cartItem.Size,
			Quantity:     cartItem.Quantity,
			UnitPrice:    cartItem.UnitPrice,
		}

		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_items (order_id, product_id, product_name, product_image, size, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			item.OrderID, item.ProductID, item.ProductName, item.ProductImage,
			item.Size, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		order.Items = append(order.Items, item)
	}

	// The balance guard lives in the WHERE clause: a stale preview or a
	// concurrent debit turns into zero affected rows, not a negative balance.
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET points = points - $1 WHERE id = $2 AND points >= $1",
		order.FinalPrice, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to debit points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.ErrInsufficientPoints
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO points_transactions (user_id, amount, kind, description, order_id)
		VALUES ($1, $2, $3, $4, $5)`,
		order.UserID, -order.FinalPrice, models.TxKindSpend, models.TxDescOrder, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	if in.CouponID != "" {
		res, err := tx.ExecContext(ctx, `
			UPDATE user_coupons SET used = TRUE, used_at = NOW()
			WHERE user_id = $1 AND coupon_id = $2 AND NOT used`,
			order.UserID, in.CouponID)
		if err != nil {
			return nil, fmt.Errorf("failed to consume coupon: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, models.ErrCouponNotFound
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", order.UserID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return order, nil
}

// GetOrderByID retrieves an order with its items
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &order.Items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", id); err != nil {
		return nil, err
	}

	return &order, nil
}

// OrdersByUser retrieves a user's orders, newest first, with items
func (s *Store) OrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := s.db.SelectContext(ctx, &orders[i].Items,
			"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orders[i].ID); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// ListOrders retrieves all orders for the admin dashboard, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// UpdateOrderStatus transitions an order's status (operator action)
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}
