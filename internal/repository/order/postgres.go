package order

import (
	"context"
	"errors"
	"io"
	"log"

	"dlvrit-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id::text, email, COALESCE(project, ''), quantity, amount_minor, currency,
COALESCE(promo_id, ''), COALESCE(payment_ref, ''), COALESCE(session_id, ''), COALESCE(upload_url, ''),
status, created_at, provisioned_at, charged_at, notified_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (id, email, project, quantity, amount_minor, currency, promo_id, status)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8)
RETURNING created_at
`
	res := o
	err := r.pool.QueryRow(ctx, q, o.ID, o.Email, o.Project, o.Quantity, o.AmountMinor, o.Currency, o.PromoID, o.Status).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Printf("order repo: create id=%s error=%v", o.ID, err)
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s amount=%d %s", res.ID, res.AmountMinor, res.Currency)
	return &res, nil
}

func (r *postgresRepo) MarkProvisioned(ctx context.Context, id, uploadURL string) error {
	const q = `
UPDATE orders SET upload_url = $2, provisioned_at = now(), status = $3
WHERE id = $1
`
	return r.exec(ctx, "mark provisioned", q, id, uploadURL, domain.OrderStatusProvisioned)
}

func (r *postgresRepo) MarkCharged(ctx context.Context, id, paymentRef string) error {
	const q = `
UPDATE orders SET payment_ref = $2, charged_at = now(), status = $3
WHERE id = $1
`
	return r.exec(ctx, "mark charged", q, id, paymentRef, domain.OrderStatusCharged)
}

func (r *postgresRepo) MarkNotified(ctx context.Context, id string) error {
	const q = `
UPDATE orders SET notified_at = now(), status = $2
WHERE id = $1
`
	return r.exec(ctx, "mark notified", q, id, domain.OrderStatusCompleted)
}

func (r *postgresRepo) SetSessionID(ctx context.Context, id, sessionID string) error {
	const q = `
UPDATE orders SET session_id = $2
WHERE id = $1
`
	return r.exec(ctx, "set session id", q, id, sessionID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.get(ctx, q, id)
}

func (r *postgresRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1`
	return r.get(ctx, q, sessionID)
}

func (r *postgresRepo) get(ctx context.Context, q string, arg any) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&o.ID, &o.Email, &o.Project, &o.Quantity, &o.AmountMinor, &o.Currency,
		&o.PromoID, &o.PaymentRef, &o.SessionID, &o.UploadURL,
		&o.Status, &o.CreatedAt, &o.ProvisionedAt, &o.ChargedAt, &o.NotifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get error=%v", err)
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) exec(ctx context.Context, op, q string, args ...any) error {
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: %s error=%v", op, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
