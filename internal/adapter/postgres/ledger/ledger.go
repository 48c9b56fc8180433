package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portledger "github.com/omarsel/bidworks/internal/port/ledger"
)

var _ portledger.Ledger = (*Ledger)(nil)

// Ledger stores bid-coin balances on the providers table. All mutations are
// single conditional statements — there is no read-then-write pair to race.
type Ledger struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Debit(ctx context.Context, providerID uuid.UUID) error {
	query := `
		UPDATE providers SET bid_coins = bid_coins - 1, updated_at = NOW()
		WHERE id = $1 AND bid_coins >= 1`

	tag, err := l.pool.Exec(ctx, query, providerID)
	if err != nil {
		return fmt.Errorf("debiting bid coin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means either no such provider or an empty balance.
		if _, err := l.Balance(ctx, providerID); err != nil {
			return err
		}
		return portledger.ErrInsufficientBalance
	}
	return nil
}

func (l *Ledger) Credit(ctx context.Context, providerID uuid.UUID, amount int64) error {
	query := `
		UPDATE providers SET bid_coins = bid_coins + $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := l.pool.Exec(ctx, query, providerID, amount)
	if err != nil {
		return fmt.Errorf("crediting bid coins: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return portledger.ErrProviderNotFound
	}
	return nil
}

func (l *Ledger) Balance(ctx context.Context, providerID uuid.UUID) (int64, error) {
	var balance int64
	err := l.pool.QueryRow(ctx, `SELECT bid_coins FROM providers WHERE id = $1`, providerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, portledger.ErrProviderNotFound
		}
		return 0, fmt.Errorf("querying balance: %w", err)
	}
	return balance, nil
}
