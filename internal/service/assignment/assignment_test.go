package assignment_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainbid "github.com/omarsel/bidworks/internal/domain/bid"
	"github.com/omarsel/bidworks/internal/domain/event"
	domaintask "github.com/omarsel/bidworks/internal/domain/task"
	"github.com/omarsel/bidworks/internal/mocks"
	"github.com/omarsel/bidworks/internal/port/cache"
	"github.com/omarsel/bidworks/internal/service/assignment"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type svcDeps struct {
	taskRepo *mocks.MockTaskRepository
	bidRepo  *mocks.MockBidRepository
	bus      *mocks.MockEventBus
	locker   *mocks.MockAdvisoryLocker
	cache    *mocks.MockCache
}

func newAssignSvc(t *testing.T) (*assignment.Service, svcDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := svcDeps{
		taskRepo: mocks.NewMockTaskRepository(ctrl),
		bidRepo:  mocks.NewMockBidRepository(ctrl),
		bus:      mocks.NewMockEventBus(ctrl),
		locker:   mocks.NewMockAdvisoryLocker(ctrl),
		cache:    mocks.NewMockCache(ctrl),
	}
	svc := assignment.NewService(d.taskRepo, d.bidRepo, d.bus, d.locker, d.cache)
	return svc, d
}

// syncLocker makes locker.WithLock execute the callback inline.
func syncLocker(d svcDeps) {
	d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, key int64, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
}

func overdueTask(status domaintask.Status) domaintask.Task {
	return domaintask.Task{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		Status:   status,
		Deadline: time.Now().UTC().Add(-time.Hour),
	}
}

func matchEventType(et event.Type) gomock.Matcher {
	return eventTypeMatcher{et}
}

type eventTypeMatcher struct{ want event.Type }

func (m eventTypeMatcher) Matches(x interface{}) bool {
	e, ok := x.(event.Event)
	return ok && e.Type == m.want
}
func (m eventTypeMatcher) String() string { return "event.Type=" + string(m.want) }

// ── AttemptAssign ─────────────────────────────────────────────────────────────

func TestAttemptAssign(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(d svcDeps, taskID uuid.UUID)
		wantOut assignment.Outcome
		wantErr bool
		wantMsg string
	}{
		{
			name: "task not found",
			setup: func(d svcDeps, taskID uuid.UUID) {
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).
					Return(domaintask.Task{}, domaintask.ErrNotFound)
			},
			wantErr: true,
			wantMsg: "load task",
		},
		{
			name: "already assigned is a no-op",
			setup: func(d svcDeps, taskID uuid.UUID) {
				tk := overdueTask(domaintask.StatusAssigned)
				tk.ID = taskID
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
			},
		},
		{
			name: "completed is a no-op",
			setup: func(d svcDeps, taskID uuid.UUID) {
				tk := overdueTask(domaintask.StatusCompleted)
				tk.ID = taskID
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
			},
		},
		{
			name: "deadline not reached is a no-op",
			setup: func(d svcDeps, taskID uuid.UUID) {
				tk := overdueTask(domaintask.StatusOpen)
				tk.ID = taskID
				tk.Deadline = time.Now().UTC().Add(time.Hour)
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
			},
		},
		{
			name: "no bids leaves the task open",
			setup: func(d svcDeps, taskID uuid.UUID) {
				tk := overdueTask(domaintask.StatusOpen)
				tk.ID = taskID
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), taskID).
					Return(domainbid.Bid{}, domainbid.ErrNoBids)
			},
			wantOut: assignment.OutcomeNoBids,
		},
		{
			name: "winning bid lookup error",
			setup: func(d svcDeps, taskID uuid.UUID) {
				tk := overdueTask(domaintask.StatusOpen)
				tk.ID = taskID
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), taskID).
					Return(domainbid.Bid{}, errors.New("db error"))
			},
			wantErr: true,
			wantMsg: "load winning bid",
		},
		{
			name: "winner assigned, cache invalidated, event published",
			setup: func(d svcDeps, taskID uuid.UUID) {
				providerID := uuid.New()
				tk := overdueTask(domaintask.StatusOpen)
				tk.ID = taskID
				assigned := tk
				assigned.Status = domaintask.StatusAssigned
				assigned.AssignedProviderID = &providerID
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), taskID).
					Return(domainbid.Bid{ID: uuid.New(), TaskID: taskID, ProviderID: providerID, Amount: 300}, nil)
				d.taskRepo.EXPECT().AssignIfOpen(gomock.Any(), taskID, providerID).Return(true, nil)
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(assigned, nil)
				d.cache.EXPECT().Invalidate(gomock.Any(), cache.TaskKey(taskID)).Return(nil)
				d.bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypeTaskAssigned)).Return(nil)
			},
			wantOut: assignment.OutcomeAssigned,
		},
		{
			name: "concurrent trigger won the race",
			setup: func(d svcDeps, taskID uuid.UUID) {
				providerID := uuid.New()
				tk := overdueTask(domaintask.StatusOpen)
				tk.ID = taskID
				assigned := tk
				assigned.Status = domaintask.StatusAssigned
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), taskID).
					Return(domainbid.Bid{TaskID: taskID, ProviderID: providerID, Amount: 300}, nil)
				d.taskRepo.EXPECT().AssignIfOpen(gomock.Any(), taskID, providerID).Return(false, nil)
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(assigned, nil)
			},
		},
		{
			name: "conditional update error",
			setup: func(d svcDeps, taskID uuid.UUID) {
				providerID := uuid.New()
				tk := overdueTask(domaintask.StatusOpen)
				tk.ID = taskID
				d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).Return(tk, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), taskID).
					Return(domainbid.Bid{TaskID: taskID, ProviderID: providerID, Amount: 300}, nil)
				d.taskRepo.EXPECT().AssignIfOpen(gomock.Any(), taskID, providerID).
					Return(false, errors.New("db error"))
			},
			wantErr: true,
			wantMsg: "assign task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newAssignSvc(t)
			taskID := uuid.New()
			tt.setup(d, taskID)

			_, out, err := svc.AttemptAssign(context.Background(), taskID)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantMsg != "" {
					assert.Contains(t, err.Error(), tt.wantMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

// Many goroutines race AttemptAssign for one task; the conditional update
// lets exactly one through.
func TestAttemptAssignConcurrent(t *testing.T) {
	svc, d := newAssignSvc(t)
	taskID := uuid.New()
	providerID := uuid.New()
	tk := overdueTask(domaintask.StatusOpen)
	tk.ID = taskID
	assigned := tk
	assigned.Status = domaintask.StatusAssigned
	assigned.AssignedProviderID = &providerID

	var taken atomic.Bool
	d.taskRepo.EXPECT().GetByID(gomock.Any(), taskID).
		DoAndReturn(func(context.Context, uuid.UUID) (domaintask.Task, error) {
			if taken.Load() {
				return assigned, nil
			}
			return tk, nil
		}).AnyTimes()
	d.bidRepo.EXPECT().Winning(gomock.Any(), taskID).
		Return(domainbid.Bid{TaskID: taskID, ProviderID: providerID, Amount: 250}, nil).AnyTimes()
	d.taskRepo.EXPECT().AssignIfOpen(gomock.Any(), taskID, providerID).
		DoAndReturn(func(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
			return taken.CompareAndSwap(false, true), nil
		}).AnyTimes()
	d.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil)
	d.bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypeTaskAssigned)).Return(nil)

	const callers = 16
	var wins atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, out, err := svc.AttemptAssign(context.Background(), taskID)
			assert.NoError(t, err)
			if out == assignment.OutcomeAssigned {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
}

// ── SweepOverdue ──────────────────────────────────────────────────────────────

func TestSweepOverdue(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(d svcDeps)
		wantAssigned int
		wantErr      bool
	}{
		{
			name: "nothing due",
			setup: func(d svcDeps) {
				syncLocker(d)
				d.taskRepo.EXPECT().ListOverdueOpen(gomock.Any(), gomock.Any()).
					Return([]domaintask.Task{}, nil)
			},
		},
		{
			name: "two due tasks, one with bids",
			setup: func(d svcDeps) {
				syncLocker(d)
				withBids := overdueTask(domaintask.StatusOpen)
				noBids := overdueTask(domaintask.StatusOpen)
				providerID := uuid.New()
				assigned := withBids
				assigned.Status = domaintask.StatusAssigned

				d.taskRepo.EXPECT().ListOverdueOpen(gomock.Any(), gomock.Any()).
					Return([]domaintask.Task{withBids, noBids}, nil)

				d.taskRepo.EXPECT().GetByID(gomock.Any(), withBids.ID).Return(withBids, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), withBids.ID).
					Return(domainbid.Bid{TaskID: withBids.ID, ProviderID: providerID, Amount: 120}, nil)
				d.taskRepo.EXPECT().AssignIfOpen(gomock.Any(), withBids.ID, providerID).Return(true, nil)
				d.taskRepo.EXPECT().GetByID(gomock.Any(), withBids.ID).Return(assigned, nil)
				d.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil)
				d.bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypeTaskAssigned)).Return(nil)

				d.taskRepo.EXPECT().GetByID(gomock.Any(), noBids.ID).Return(noBids, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), noBids.ID).
					Return(domainbid.Bid{}, domainbid.ErrNoBids)
			},
			wantAssigned: 1,
		},
		{
			name: "one task failing does not block the rest",
			setup: func(d svcDeps) {
				syncLocker(d)
				broken := overdueTask(domaintask.StatusOpen)
				healthy := overdueTask(domaintask.StatusOpen)
				providerID := uuid.New()
				assigned := healthy
				assigned.Status = domaintask.StatusAssigned

				d.taskRepo.EXPECT().ListOverdueOpen(gomock.Any(), gomock.Any()).
					Return([]domaintask.Task{broken, healthy}, nil)

				d.taskRepo.EXPECT().GetByID(gomock.Any(), broken.ID).
					Return(domaintask.Task{}, errors.New("db error"))

				d.taskRepo.EXPECT().GetByID(gomock.Any(), healthy.ID).Return(healthy, nil)
				d.bidRepo.EXPECT().Winning(gomock.Any(), healthy.ID).
					Return(domainbid.Bid{TaskID: healthy.ID, ProviderID: providerID, Amount: 90}, nil)
				d.taskRepo.EXPECT().AssignIfOpen(gomock.Any(), healthy.ID, providerID).Return(true, nil)
				d.taskRepo.EXPECT().GetByID(gomock.Any(), healthy.ID).Return(assigned, nil)
				d.cache.EXPECT().Invalidate(gomock.Any(), gomock.Any()).Return(nil)
				d.bus.EXPECT().Publish(gomock.Any(), matchEventType(event.TypeTaskAssigned)).Return(nil)
			},
			wantAssigned: 1,
		},
		{
			name: "list error surfaces",
			setup: func(d svcDeps) {
				syncLocker(d)
				d.taskRepo.EXPECT().ListOverdueOpen(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name: "locker error surfaces",
			setup: func(d svcDeps) {
				d.locker.EXPECT().WithLock(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("lock error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newAssignSvc(t)
			tt.setup(d)

			assigned, err := svc.SweepOverdue(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAssigned, assigned)
		})
	}
}
