package bid

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainbid "github.com/omarsel/bidworks/internal/domain/bid"
	domaintask "github.com/omarsel/bidworks/internal/domain/task"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert relies on the (task_id, provider_id) unique index to close the
// duplicate-check race: a concurrent second submission turns into a
// store-level rejection mapped to bid.ErrDuplicate.
func (r *Repository) Insert(ctx context.Context, b domainbid.Bid) (domainbid.Bid, error) {
	query := `
		INSERT INTO bids (id, task_id, provider_id, amount, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, task_id, provider_id, amount, created_at`

	var created domainbid.Bid
	err := r.pool.QueryRow(ctx, query,
		b.ID, b.TaskID, b.ProviderID, b.Amount, b.CreatedAt,
	).Scan(&created.ID, &created.TaskID, &created.ProviderID, &created.Amount, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgUniqueViolation:
				return domainbid.Bid{}, domainbid.ErrDuplicate
			case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == "bids_task_id_fkey":
				return domainbid.Bid{}, domaintask.ErrNotFound
			}
		}
		return domainbid.Bid{}, fmt.Errorf("inserting bid: %w", err)
	}
	return created, nil
}

func (r *Repository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domainbid.Bid, error) {
	query := `
		SELECT id, task_id, provider_id, amount, created_at
		FROM bids WHERE task_id = $1
		ORDER BY amount, created_at`

	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing bids: %w", err)
	}
	defer rows.Close()

	var bids []domainbid.Bid
	for rows.Next() {
		var b domainbid.Bid
		if err := rows.Scan(&b.ID, &b.TaskID, &b.ProviderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bid row: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bid rows: %w", err)
	}
	return bids, nil
}

func (r *Repository) Winning(ctx context.Context, taskID uuid.UUID) (domainbid.Bid, error) {
	query := `
		SELECT id, task_id, provider_id, amount, created_at
		FROM bids WHERE task_id = $1
		ORDER BY amount, created_at
		LIMIT 1`

	var b domainbid.Bid
	err := r.pool.QueryRow(ctx, query, taskID).Scan(
		&b.ID, &b.TaskID, &b.ProviderID, &b.Amount, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainbid.Bid{}, domainbid.ErrNoBids
		}
		return domainbid.Bid{}, fmt.Errorf("querying winning bid: %w", err)
	}
	return b, nil
}
