package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hongminglow/payment-gateway/internal/models"
	"github.com/hongminglow/payment-gateway/internal/storage"
)

const paymentColumns = `id, order_id, amount::float8, currency, status, user_id,
	COALESCE(description, ''), COALESCE(payment_ref, ''), created_at, updated_at`

// CreatePayment inserts a payment row.
func (s *Store) CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	const query = `
		INSERT INTO payments (order_id, amount, currency, status, user_id, description)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING ` + paymentColumns + `;`
	row := s.pool.QueryRow(ctx, query, p.OrderID, p.Amount, p.Currency, string(p.Status), p.UserID, p.Description)
	created, err := scanPayment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Payment{}, storage.ErrAlreadyExists
		}
		return models.Payment{}, err
	}
	return created, nil
}

// FindByOrderAndOwner fetches the payment for orderID only if userID owns it.
func (s *Store) FindByOrderAndOwner(ctx context.Context, orderID string, userID int64) (models.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 AND user_id = $2;`
	return scanPayment(s.pool.QueryRow(ctx, query, orderID, userID))
}

// UpdateStatus moves a payment from update.From to update.To in a single
// conditional UPDATE, so concurrent callers cannot both apply a transition.
func (s *Store) UpdateStatus(ctx context.Context, id int64, update storage.StatusUpdate) (models.Payment, error) {
	if !update.From.CanTransition(update.To) {
		return models.Payment{}, fmt.Errorf("illegal transition %s -> %s: %w", update.From, update.To, storage.ErrStatusConflict)
	}
	const query = `
		UPDATE payments
		SET status = $3, payment_ref = COALESCE(NULLIF($4, ''), payment_ref), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + paymentColumns + `;`
	updated, err := scanPayment(s.pool.QueryRow(ctx, query, id, string(update.From), string(update.To), update.PaymentRef))
	if !errors.Is(err, storage.ErrNotFound) {
		return updated, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1);`, id).Scan(&exists); err != nil {
		return models.Payment{}, err
	}
	if exists {
		return models.Payment{}, storage.ErrStatusConflict
	}
	return models.Payment{}, storage.ErrNotFound
}

// ListByOwner returns the user's payments, newest first.
func (s *Store) ListByOwner(ctx context.Context, userID int64) ([]models.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC, id DESC;`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (models.Payment, error) {
	var p models.Payment
	var status string
	if err := row.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Currency, &status, &p.UserID, &p.Description, &p.PaymentRef, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Payment{}, storage.ErrNotFound
		}
		return models.Payment{}, err
	}
	p.Status = models.PaymentStatus(status)
	return p, nil
}
