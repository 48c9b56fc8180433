package assignment

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainbid "github.com/omarsel/bidworks/internal/domain/bid"
	"github.com/omarsel/bidworks/internal/domain/event"
	domaintask "github.com/omarsel/bidworks/internal/domain/task"
	portbid "github.com/omarsel/bidworks/internal/port/bid"
	portcache "github.com/omarsel/bidworks/internal/port/cache"
	portbus "github.com/omarsel/bidworks/internal/port/eventbus"
	portlocker "github.com/omarsel/bidworks/internal/port/locker"
	porttask "github.com/omarsel/bidworks/internal/port/task"
)

// Service decides the winner of a task's bidding round and performs the
// open→assigned transition exactly once. Three call sites converge here: the
// one-shot deadline timer, the periodic sweep, and the manual endpoint.
type Service struct {
	tasks  porttask.Repository
	bids   portbid.Repository
	bus    portbus.EventBus
	locker portlocker.AdvisoryLocker
	cache  portcache.Cache
}

func NewService(
	tasks porttask.Repository,
	bids portbid.Repository,
	bus portbus.EventBus,
	locker portlocker.AdvisoryLocker,
	cache portcache.Cache,
) *Service {
	return &Service{
		tasks:  tasks,
		bids:   bids,
		bus:    bus,
		locker: locker,
		cache:  cache,
	}
}

// Outcome classifies how AttemptAssign resolved a trigger.
type Outcome int

const (
	// OutcomeNotEligible: the task is not open, not yet due, or a concurrent
	// trigger decided the round first.
	OutcomeNotEligible Outcome = iota
	// OutcomeNoBids: the task is due and open but nobody bid. It stays open
	// and remains visible to future sweeps.
	OutcomeNoBids
	// OutcomeAssigned: this call performed the open→assigned transition.
	OutcomeAssigned
)

// AttemptAssign is idempotent: repeated or concurrent calls for the same task
// perform at most one assignment. Only one call ever observes
// OutcomeAssigned. A task that is not eligible or has no bids is returned
// unchanged.
func (s *Service) AttemptAssign(ctx context.Context, taskID uuid.UUID) (domaintask.Task, Outcome, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return domaintask.Task{}, OutcomeNotEligible, fmt.Errorf("load task: %w", err)
	}
	if t.Status != domaintask.StatusOpen {
		return t, OutcomeNotEligible, nil
	}
	// The timer and sweep paths only call after the deadline, but the manual
	// endpoint may fire at any time — guard for all three.
	if time.Now().UTC().Before(t.Deadline) {
		return t, OutcomeNotEligible, nil
	}

	winning, err := s.bids.Winning(ctx, taskID)
	if err != nil {
		if errors.Is(err, domainbid.ErrNoBids) {
			return t, OutcomeNoBids, nil
		}
		return domaintask.Task{}, OutcomeNotEligible, fmt.Errorf("load winning bid: %w", err)
	}

	won, err := s.tasks.AssignIfOpen(ctx, taskID, winning.ProviderID)
	if err != nil {
		return domaintask.Task{}, OutcomeNotEligible, fmt.Errorf("assign task: %w", err)
	}

	updated, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return domaintask.Task{}, OutcomeNotEligible, fmt.Errorf("reload task after assign: %w", err)
	}
	if !won {
		// A concurrent trigger performed the assignment first.
		return updated, OutcomeNotEligible, nil
	}

	s.cache.Invalidate(ctx, portcache.TaskKey(taskID)) //nolint:errcheck
	s.bus.Publish(ctx, event.New(event.TypeTaskAssigned, taskID)) //nolint:errcheck
	slog.InfoContext(ctx, "task assigned to lowest bidder",
		"task_id", taskID, "provider_id", winning.ProviderID, "amount", winning.Amount)

	return updated, OutcomeAssigned, nil
}

// SweepOverdue assigns every open task whose deadline has passed. A Postgres
// advisory lock serialises overlapping sweeps across processes. One task's
// failure never blocks the rest of the batch.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	var assigned int
	err := s.locker.WithLock(ctx, sweepLockKey(), func(ctx context.Context) error {
		due, err := s.tasks.ListOverdueOpen(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("list overdue tasks: %w", err)
		}
		for _, t := range due {
			_, out, err := s.AttemptAssign(ctx, t.ID)
			if err != nil {
				slog.ErrorContext(ctx, "sweep: assignment failed", "task_id", t.ID, "error", err)
				continue
			}
			if out == OutcomeAssigned {
				assigned++
			}
		}
		return nil
	})
	return assigned, err
}

// sweepLockKey hashes a fixed label to a stable int64 for pg_advisory_lock.
func sweepLockKey() int64 {
	h := fnv.New64a()
	h.Write([]byte("bidworks.assignment.sweep"))
	return int64(h.Sum64())
}
