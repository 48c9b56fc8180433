package bid

import (
	"context"

	"github.com/google/uuid"

	domainbid "github.com/omarsel/bidworks/internal/domain/bid"
)

type Repository interface {
	// Insert persists a bid. A unique-index violation on (task_id,
	// provider_id) surfaces as bid.ErrDuplicate; an unknown task surfaces
	// as task.ErrNotFound.
	Insert(ctx context.Context, b domainbid.Bid) (domainbid.Bid, error)

	// ListByTask returns all bids for a task ordered by amount ascending,
	// ties by earliest created_at.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]domainbid.Bid, error)

	// Winning returns the lowest bid for a task, ties broken by earliest
	// created_at. Returns bid.ErrNoBids when the task has no bids.
	Winning(ctx context.Context, taskID uuid.UUID) (domainbid.Bid, error)
}
