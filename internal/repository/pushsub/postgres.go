package pushsub

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitrine/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Upsert(ctx context.Context, sub domain.PushSubscription) (domain.PushSubscription, error) {
	const q = `
INSERT INTO push_subscriptions (store_id, user_id, endpoint, p256dh, auth)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (endpoint) DO UPDATE
SET store_id = EXCLUDED.store_id,
    user_id = EXCLUDED.user_id,
    p256dh = EXCLUDED.p256dh,
    auth = EXCLUDED.auth,
    last_failure_at = NULL
RETURNING id::text, store_id, user_id, endpoint, p256dh, auth, created_at
`
	var out domain.PushSubscription
	err := r.pool.QueryRow(ctx, q, sub.StoreID, sub.UserID, sub.Endpoint, sub.P256DH, sub.Auth).Scan(
		&out.ID,
		&out.StoreID,
		&out.UserID,
		&out.Endpoint,
		&out.P256DH,
		&out.Auth,
		&out.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.PushSubscription{}, domain.ErrAlreadyExists
		}
		return domain.PushSubscription{}, err
	}
	return out, nil
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]domain.PushSubscription, error) {
	const q = `
SELECT id::text, store_id, user_id, endpoint, p256dh, auth, created_at
FROM push_subscriptions
WHERE store_id = $1
ORDER BY created_at
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PushSubscription
	for rows.Next() {
		var s domain.PushSubscription
		if err := rows.Scan(&s.ID, &s.StoreID, &s.UserID, &s.Endpoint, &s.P256DH, &s.Auth, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) DeleteByEndpoint(ctx context.Context, storeID, endpoint string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE store_id = $1 AND endpoint = $2`, storeID, endpoint)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) MarkFailed(ctx context.Context, endpoint string, at time.Time) error {
	var id string
	err := r.pool.QueryRow(ctx,
		`UPDATE push_subscriptions SET last_failure_at = $2 WHERE endpoint = $1 RETURNING id::text`,
		endpoint, at,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
