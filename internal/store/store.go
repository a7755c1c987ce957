package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"points-mall/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetUser retrieves a user profile by ID
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserProfile updates the mutable profile fields
func (s *Store) UpdateUserProfile(ctx context.Context, id, name, avatar string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"UPDATE users SET name = $1, avatar = $2 WHERE id = $3 RETURNING *",
		name, avatar, id)
	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserLevel sets the stored membership level. The level column is
// denormalized on purpose so operator overrides survive points churn.
func (s *Store) UpdateUserLevel(ctx context.Context, id, level string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET level = $1 WHERE id = $2", level, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// ListUsers retrieves all users for the admin dashboard
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at")
	return users, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves the full catalog
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// GetCategories retrieves all menu categories
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY position, id")
	return categories, err
}

// UpsertProduct creates or updates a catalog product (operator action)
func (s *Store) UpsertProduct(ctx context.Context, p *models.Product) error {
	return s.db.GetContext(ctx, p, `
		INSERT INTO products (id, name, description, price, image, category_id, rating, calories, tag_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			category_id = EXCLUDED.category_id,
			rating = EXCLUDED.rating,
			calories = EXCLUDED.calories,
			tag_type = EXCLUDED.tag_type
		RETURNING created_at`,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.CategoryID, p.Rating, p.Calories, p.TagType)
}

// DeleteProduct removes a catalog product
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

// AddFavorite marks a product as favorited; duplicates are a no-op
func (s *Store) AddFavorite(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO favorites (user_id, product_id) VALUES ($1, $2) ON CONFLICT (user_id, product_id) DO NOTHING",
		userID, productID)
	return err
}

// RemoveFavorite removes a favorite
func (s *Store) RemoveFavorite(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = $1 AND product_id = $2",
		userID, productID)
	return err
}

// IsFavorite reports whether the user has favorited the product
func (s *Store) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)",
		userID, productID)
	return exists, err
}

// FavoriteProductIDs retrieves the product IDs a user has favorited
func (s *Store) FavoriteProductIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids,
		"SELECT product_id FROM favorites WHERE user_id = $1 ORDER BY created_at", userID)
	return ids, err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
