package wire

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omarsel/bidworks/internal/domain/event"
	domaintask "github.com/omarsel/bidworks/internal/domain/task"
	porteventbus "github.com/omarsel/bidworks/internal/port/eventbus"
	porttask "github.com/omarsel/bidworks/internal/port/task"
)

// startSweeper owns the two background assignment triggers.
//
// One-shot deadline timers fire AttemptAssign the moment a task becomes due:
// scheduled from TaskCreated events and cancelled when the task is assigned
// or completed. Timers are process-local and lost on restart, so a startup
// scan reschedules them for every open task with a future deadline.
//
// The recurring sweep is the authoritative liveness mechanism: it catches
// tasks whose timer was lost, failed, or never scheduled (past-deadline
// creation). It runs immediately at startup and then on a fixed interval.
func startSweeper(ctx context.Context, app *App, tasks porttask.Repository, bus porteventbus.EventBus) {
	interval := envDuration("SWEEP_INTERVAL_SECONDS", 60*time.Second)

	var (
		mu     sync.Mutex
		timers = make(map[uuid.UUID]*time.Timer)
	)

	cancelTimer := func(taskID uuid.UUID) {
		mu.Lock()
		if t, ok := timers[taskID]; ok {
			t.Stop()
			delete(timers, taskID)
		}
		mu.Unlock()
	}

	scheduleDeadline := func(t domaintask.Task) {
		wait := time.Until(t.Deadline)
		if wait <= 0 {
			// Already due — the catch-up sweep handles it.
			return
		}
		taskID := t.ID
		timer := time.AfterFunc(wait, func() {
			mu.Lock()
			delete(timers, taskID)
			mu.Unlock()

			if _, _, err := app.AssignSvc.AttemptAssign(context.Background(), taskID); err != nil {
				slog.Error("deadline trigger: assignment failed", "task_id", taskID, "error", err)
			}
		})
		mu.Lock()
		timers[taskID] = timer
		mu.Unlock()
	}

	// Schedule on creation, cancel once the bidding round is decided.
	if _, err := bus.Subscribe(ctx, event.ChannelTask, func(ctx context.Context, e event.Event) {
		switch e.Type {
		case event.TypeTaskCreated:
			t, err := tasks.GetByID(ctx, e.EntityID)
			if err != nil {
				slog.Error("sweeper: load created task failed", "task_id", e.EntityID, "error", err)
				return
			}
			scheduleDeadline(t)
		case event.TypeTaskAssigned, event.TypeTaskCompleted:
			cancelTimer(e.EntityID)
		}
	}); err != nil {
		slog.Error("sweeper: failed to subscribe to task channel", "error", err)
	}

	// Startup scan: timers for open future-deadline tasks were lost with the
	// previous process.
	open, err := tasks.ListOpenAfter(ctx, time.Now().UTC())
	if err != nil {
		slog.Error("sweeper: startup scan failed", "error", err)
	}
	for _, t := range open {
		scheduleDeadline(t)
	}
	if len(open) > 0 {
		slog.Info("sweeper: rescheduled deadline timers", "count", len(open))
	}

	go func() {
		sweep := func() {
			assigned, err := app.AssignSvc.SweepOverdue(ctx)
			if err != nil {
				slog.Error("sweep failed", "error", err)
				return
			}
			if assigned > 0 {
				slog.Info("sweep assigned overdue tasks", "count", assigned)
			}
		}

		sweep() // catch up on anything missed while the process was down

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()
}

// envDuration reads an integer-seconds env var and returns a Duration.
// Falls back to defaultVal if the var is unset or invalid.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
