package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"points-mall/internal/models"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// TransactionsByUser retrieves ledger entries, newest first. Both filters
// are optional: since bounds created_at from below, description matches
// exactly.
func (s *Store) TransactionsByUser(ctx context.Context, userID string, since *time.Time, description string) ([]models.PointsTransaction, error) {
	query := "SELECT * FROM points_transactions WHERE user_id = $1"
	args := []interface{}{userID}

	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if description != "" {
		args = append(args, description)
		query += fmt.Sprintf(" AND description = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var txs []models.PointsTransaction
	err := s.db.SelectContext(ctx, &txs, query, args...)
	return txs, err
}

// SumTransactions returns the signed sum of a user's ledger. The invariant
// is that this always equals users.points for the same user.
func (s *Store) SumTransactions(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum,
		"SELECT COALESCE(SUM(amount), 0) FROM points_transactions WHERE user_id = $1", userID)
	return sum, err
}

// HasCheckedInToday reports whether a check-in ledger entry exists since the
// given start of day.
func (s *Store) HasCheckedInToday(ctx context.Context, userID string, startOfDay time.Time) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM points_transactions
			WHERE user_id = $1 AND description = $2 AND created_at >= $3
		)`,
		userID, models.TxDescCheckin, startOfDay)
	return exists, err
}

// RecordCheckin credits the daily award and appends the matching earn entry
// in one transaction. The unique index on (user_id, checkin_date) turns a
// same-day repeat into a clean conflict instead of a double award.
func (s *Store) RecordCheckin(ctx context.Context, userID string, award int64, day string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE users SET points = points + $1 WHERE id = $2", award, userID)
	if err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO points_transactions (user_id, amount, kind, description, checkin_date)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, award, models.TxKindEarn, models.TxDescCheckin, day)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return models.ErrAlreadyCheckedIn
		}
		return fmt.Errorf("failed to append check-in entry: %w", err)
	}

	return tx.Commit()
}

// AdjustPoints applies an operator adjustment: balance update plus ledger
// entry, atomically. Negative deltas may not drive the balance below zero.
func (s *Store) AdjustPoints(ctx context.Context, userID string, delta int64) (*models.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var user models.User
	err = tx.GetContext(ctx, &user,
		"UPDATE users SET points = points + $1 WHERE id = $2 AND points + $1 >= 0 RETURNING *",
		delta, userID)
	if err == sql.ErrNoRows {
		return nil, models.ErrInsufficientPoints
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust points: %w", err)
	}

	kind := models.TxKindEarn
	if delta < 0 {
		kind = models.TxKindSpend
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO points_transactions (user_id, amount, kind, description)
		VALUES ($1, $2, $3, $4)`,
		userID, delta, kind, models.TxDescAdjustment)
	if err != nil {
		return nil, fmt.Errorf("failed to append adjustment entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &user, nil
}
