package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaintask "github.com/omarsel/bidworks/internal/domain/task"
)

const taskColumns = `id, title, description, address, category, owner_id,
		deadline, status, assigned_provider_id, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, t domaintask.Task) (domaintask.Task, error) {
	query := `
		INSERT INTO tasks (id, title, description, address, category, owner_id,
			deadline, status, assigned_provider_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING ` + taskColumns

	var created domaintask.Task
	err := r.pool.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Address, t.Category, t.OwnerID,
		t.Deadline, t.Status, t.AssignedProviderID, t.CreatedAt, t.UpdatedAt,
	).Scan(
		&created.ID, &created.Title, &created.Description, &created.Address,
		&created.Category, &created.OwnerID, &created.Deadline, &created.Status,
		&created.AssignedProviderID, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("inserting task: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domaintask.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t domaintask.Task
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Address, &t.Category, &t.OwnerID,
		&t.Deadline, &t.Status, &t.AssignedProviderID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domaintask.Task{}, domaintask.ErrNotFound
		}
		return domaintask.Task{}, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// List joins each assigned task with its winning bid amount (lowest amount,
// ties by earliest created_at). Open tasks carry a NULL amount.
func (r *Repository) List(ctx context.Context, filters domaintask.ListFilters) ([]domaintask.WithWinningBid, error) {
	query := `
		SELECT t.id, t.title, t.description, t.address, t.category, t.owner_id,
			t.deadline, t.status, t.assigned_provider_id, t.created_at, t.updated_at,
			wb.amount
		FROM tasks t
		LEFT JOIN LATERAL (
			SELECT b.amount FROM bids b
			WHERE b.task_id = t.id AND b.provider_id = t.assigned_provider_id
			ORDER BY b.amount, b.created_at
			LIMIT 1
		) wb ON true
		WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filters.Category != nil {
		query += fmt.Sprintf(" AND t.category = $%d", argIdx)
		args = append(args, *filters.Category)
		argIdx++
	}
	if filters.Address != nil {
		query += fmt.Sprintf(" AND t.address = $%d", argIdx)
		args = append(args, *filters.Address)
		argIdx++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argIdx)
		args = append(args, string(*filters.Status))
		argIdx++
	}
	if filters.OwnerID != nil {
		query += fmt.Sprintf(" AND t.owner_id = $%d", argIdx)
		args = append(args, *filters.OwnerID)
		argIdx++
	}
	if filters.AssignedProviderID != nil {
		query += fmt.Sprintf(" AND t.assigned_provider_id = $%d", argIdx)
		args = append(args, *filters.AssignedProviderID)
		argIdx++
	}

	query += " ORDER BY t.deadline"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domaintask.WithWinningBid
	for rows.Next() {
		var t domaintask.WithWinningBid
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Address, &t.Category, &t.OwnerID,
			&t.Deadline, &t.Status, &t.AssignedProviderID, &t.CreatedAt, &t.UpdatedAt,
			&t.WinningBidAmount,
		); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return tasks, nil
}

// Update writes the owner-editable fields only. Deadline and assignment
// fields are immutable through this path.
func (r *Repository) Update(ctx context.Context, t domaintask.Task) error {
	query := `UPDATE tasks SET description = $2, status = $3, updated_at = $4 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, t.ID, t.Description, t.Status, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domaintask.ErrNotFound
	}
	return nil
}

// AssignIfOpen is the CAS at the heart of assignment: the status guard in the
// WHERE clause makes exactly one concurrent caller win; losers affect zero
// rows and report false.
func (r *Repository) AssignIfOpen(ctx context.Context, taskID, providerID uuid.UUID) (bool, error) {
	query := `
		UPDATE tasks SET status = 'assigned', assigned_provider_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'open'`

	tag, err := r.pool.Exec(ctx, query, taskID, providerID)
	if err != nil {
		return false, fmt.Errorf("assigning task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) ListOverdueOpen(ctx context.Context, now time.Time) ([]domaintask.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = 'open' AND deadline <= $1
		ORDER BY deadline`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("listing overdue tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *Repository) ListOpenAfter(ctx context.Context, now time.Time) ([]domaintask.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = 'open' AND deadline > $1
		ORDER BY deadline`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("listing open tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]domaintask.Task, error) {
	var tasks []domaintask.Task
	for rows.Next() {
		var t domaintask.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Address, &t.Category, &t.OwnerID,
			&t.Deadline, &t.Status, &t.AssignedProviderID, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return tasks, nil
}
