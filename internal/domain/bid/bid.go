package bid

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicate means the provider already holds a bid on the task.
	// A bid is permanent — there is no edit or cancel path.
	ErrDuplicate     = errors.New("provider already bid on this task")
	ErrInvalidAmount = errors.New("bid amount must be positive")
	ErrNoBids        = errors.New("no bids for task")
)

type Bid struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

func New(taskID, providerID uuid.UUID, amount int64) Bid {
	return Bid{
		ID:         uuid.New(),
		TaskID:     taskID,
		ProviderID: providerID,
		Amount:     amount,
		CreatedAt:  time.Now().UTC(),
	}
}
