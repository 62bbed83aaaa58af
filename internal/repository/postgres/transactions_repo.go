package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zilix-space/adapix-backend/internal/models"
	repo "github.com/zilix-space/adapix-backend/internal/repository"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txColumns = `id, user_id, type, status,
  from_amount, from_currency, to_amount, to_currency,
  exchange_id, exchange_address, payment_id, payment_address,
  address_to_receive, created_at, updated_at, completed_at, expires_at`

func scanTx(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Status,
		&tx.FromAmount, &tx.FromCurrency, &tx.ToAmount, &tx.ToCurrency,
		&tx.ExchangeID, &tx.ExchangeAddress, &tx.PaymentID, &tx.PaymentAddress,
		&tx.AddressToReceive, &tx.CreatedAt, &tx.UpdatedAt, &tx.CompletedAt, &tx.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return tx, repo.ErrNotFound
	}
	return tx, err
}

func (r *transactionsRepo) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	const q = `
INSERT INTO transactions (
  id, user_id, type, status,
  from_amount, from_currency, to_amount, to_currency,
  exchange_id, exchange_address, payment_id, payment_address,
  address_to_receive, expires_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING ` + txColumns
	return scanTx(r.pool.QueryRow(ctx, q,
		tx.ID, tx.UserID, tx.Type, tx.Status,
		tx.FromAmount, tx.FromCurrency, tx.ToAmount, tx.ToCurrency,
		tx.ExchangeID, tx.ExchangeAddress, tx.PaymentID, tx.PaymentAddress,
		tx.AddressToReceive, tx.ExpiresAt,
	))
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return scanTx(r.pool.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id=$1`, id))
}

// Update applies a partial update; nil fields keep the stored value.
func (r *transactionsRepo) Update(ctx context.Context, id string, upd models.TransactionUpdate) (models.Transaction, error) {
	const q = `
UPDATE transactions SET
  status       = COALESCE($2, status),
  to_amount    = COALESCE($3, to_amount),
  completed_at = COALESCE($4, completed_at),
  updated_at   = now()
WHERE id=$1
RETURNING ` + txColumns
	return scanTx(r.pool.QueryRow(ctx, q, id, upd.Status, upd.ToAmount, upd.CompletedAt))
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+`
		   FROM transactions
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *transactionsRepo) ListPending(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txColumns+`
		   FROM transactions
		  WHERE status NOT IN ('completed','expired')
		  ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
