package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/omarsel/bidworks/internal/domain/event"
	domaintask "github.com/omarsel/bidworks/internal/domain/task"
	portcache "github.com/omarsel/bidworks/internal/port/cache"
	portbus "github.com/omarsel/bidworks/internal/port/eventbus"
	porttask "github.com/omarsel/bidworks/internal/port/task"
)

const cacheTTL = 30 * time.Second

// Service manages the customer-facing task lifecycle: creation, listings and
// owner edits. The open→assigned transition belongs to the assignment engine,
// never to this service.
type Service struct {
	repo  porttask.Repository
	bus   portbus.EventBus
	cache portcache.Cache
}

func NewService(repo porttask.Repository, bus portbus.EventBus, cache portcache.Cache) *Service {
	return &Service{
		repo:  repo,
		bus:   bus,
		cache: cache,
	}
}

// Create persists a new open task and announces it on the bus; the sweeper
// subscribes to schedule the one-shot deadline trigger. A deadline already in
// the past is accepted — the next sweep picks the task up.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, title, description, address, category string, deadline time.Time) (domaintask.Task, error) {
	t := domaintask.New(ownerID, title, description, address, category, deadline)

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("create task: %w", err)
	}

	if err := s.bus.Publish(ctx, event.New(event.TypeTaskCreated, created.ID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish TaskCreated event", "task_id", created.ID, "error", err)
	}

	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domaintask.Task, error) {
	key := portcache.TaskKey(id)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var t domaintask.Task
		if err := json.Unmarshal(data, &t); err == nil {
			return t, nil
		}
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("get task: %w", err)
	}

	if data, err := json.Marshal(t); err == nil {
		s.cache.Set(ctx, key, data, cacheTTL) //nolint:errcheck
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filters domaintask.ListFilters) ([]domaintask.WithWinningBid, error) {
	tasks, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateByOwner applies status and description edits on behalf of the owning
// customer. Status changes must follow the task state machine, so the only
// reachable owner transition is assigned→completed; assignment fields and the
// deadline are untouchable through this path.
func (s *Service) UpdateByOwner(ctx context.Context, id, ownerID uuid.UUID, description *string, status *domaintask.Status) (domaintask.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("get task: %w", err)
	}
	if t.OwnerID != ownerID {
		return domaintask.Task{}, domaintask.ErrNotOwner
	}

	if description != nil {
		t.Description = *description
	}
	completed := false
	if status != nil && *status != t.Status {
		if !t.Status.CanTransitionTo(*status) {
			return domaintask.Task{}, fmt.Errorf("%w: %s to %s", domaintask.ErrInvalidTransition, t.Status, *status)
		}
		t.Status = *status
		completed = *status == domaintask.StatusCompleted
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return domaintask.Task{}, fmt.Errorf("update task: %w", err)
	}

	s.cache.Invalidate(ctx, portcache.TaskKey(id)) //nolint:errcheck
	if completed {
		s.bus.Publish(ctx, event.New(event.TypeTaskCompleted, id)) //nolint:errcheck
	} else {
		s.bus.Publish(ctx, event.New(event.TypeTaskUpdated, id)) //nolint:errcheck
	}

	return t, nil
}
