package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInsufficientBalance = errors.New("not enough bid coins")
	ErrProviderNotFound    = errors.New("provider not found")
)

// Ledger tracks each provider's spendable bid credits.
type Ledger interface {
	// Debit spends one bid coin. The decrement is a single conditional
	// store operation — the balance never goes negative and concurrent
	// debits by the same provider never lose updates. Returns
	// ErrInsufficientBalance when the balance is below one.
	Debit(ctx context.Context, providerID uuid.UUID) error

	// Credit adds coins back. Used as the compensating action when a bid
	// fails to persist after the debit, and by the purchase flow.
	Credit(ctx context.Context, providerID uuid.UUID, amount int64) error

	Balance(ctx context.Context, providerID uuid.UUID) (int64, error)
}
