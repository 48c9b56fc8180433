package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	domaintask "github.com/omarsel/bidworks/internal/domain/task"
)

type Repository interface {
	Create(ctx context.Context, t domaintask.Task) (domaintask.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (domaintask.Task, error)

	// List returns tasks ordered by deadline ascending; assigned tasks carry
	// the winning bid amount.
	List(ctx context.Context, filters domaintask.ListFilters) ([]domaintask.WithWinningBid, error)

	// Update writes the owner-editable fields (description, status).
	// Deadline and assignment fields are never touched.
	Update(ctx context.Context, t domaintask.Task) error

	// AssignIfOpen performs an atomic conditional update: the task moves
	// open→assigned with the given provider only if it is still open.
	// Returns false with no error when a concurrent caller won the race.
	AssignIfOpen(ctx context.Context, taskID, providerID uuid.UUID) (bool, error)

	// ListOverdueOpen returns open tasks whose deadline is at or before now.
	ListOverdueOpen(ctx context.Context, now time.Time) ([]domaintask.Task, error)

	// ListOpenAfter returns open tasks with a deadline after now. Used at
	// startup to reschedule one-shot deadline timers lost to a restart.
	ListOpenAfter(ctx context.Context, now time.Time) ([]domaintask.Task, error)
}
