package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coalmart/coalmart/internal/models"
	"github.com/coalmart/coalmart/internal/repository/postgres"
)

const (
	insertTaskQuery = `
						INSERT INTO warehouse_tasks (order_id, status)
						VALUES ($1, $2)
						RETURNING id, created_at, updated_at
`
	selectTaskByIDQuery = `
						SELECT id, order_id, status, assigned_to, notes, created_at, updated_at
						FROM warehouse_tasks
						WHERE id = $1
`
	selectTasksByOrderQuery = `
						SELECT id, order_id, status, assigned_to, notes, created_at, updated_at
						FROM warehouse_tasks
						WHERE order_id = $1
						ORDER BY id
`
	selectTasksByStatusQuery = `
						SELECT id, order_id, status, assigned_to, notes, created_at, updated_at
						FROM warehouse_tasks
						WHERE status = $1
						ORDER BY created_at
`
	updateTaskStatusQuery = `
						UPDATE warehouse_tasks
						SET status = $1, updated_at = now()
						WHERE id = $2 AND status = $3
`
	assignTaskQuery = `
						UPDATE warehouse_tasks
						SET assigned_to = $1, updated_at = now()
						WHERE id = $2
`
)

// WarehouseRepository provides access to warehouse task rows
type WarehouseRepository struct {
	db *postgres.DB
}

// NewWarehouseRepository creates new WarehouseRepository instance
func NewWarehouseRepository(db *postgres.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// CreateTask inserts new warehouse task to database
func (wr *WarehouseRepository) CreateTask(ctx context.Context, task *models.WarehouseTask) (*models.WarehouseTask, error) {
	err := wr.db.QueryRow(ctx, insertTaskQuery, task.OrderID, task.Status).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return task, nil
}

// GetTaskByID returns warehouse task by id
func (wr *WarehouseRepository) GetTaskByID(ctx context.Context, taskID uint64) (*models.WarehouseTask, error) {
	task := models.WarehouseTask{}
	err := wr.db.QueryRow(ctx, selectTaskByIDQuery, taskID).Scan(
		&task.ID, &task.OrderID, &task.Status, &task.AssignedTo, &task.Notes,
		&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &task, nil
}

// GetTasksByOrderID returns warehouse tasks of order
func (wr *WarehouseRepository) GetTasksByOrderID(ctx context.Context, orderID uint64) ([]models.WarehouseTask, error) {
	return wr.scanMany(ctx, selectTasksByOrderQuery, orderID)
}

// GetTasksByStatus returns warehouse tasks in given status
func (wr *WarehouseRepository) GetTasksByStatus(ctx context.Context, status string) ([]models.WarehouseTask, error) {
	return wr.scanMany(ctx, selectTasksByStatusQuery, status)
}

func (wr *WarehouseRepository) scanMany(ctx context.Context, query string, args ...any) ([]models.WarehouseTask, error) {
	rows, err := wr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.WarehouseTask{}

	for rows.Next() {
		task := models.WarehouseTask{}
		err = rows.Scan(&task.ID, &task.OrderID, &task.Status, &task.AssignedTo, &task.Notes,
			&task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			continue
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// UpdateTaskStatus moves the task from one status to another. Guarded
// the same way as order transitions.
func (wr *WarehouseRepository) UpdateTaskStatus(ctx context.Context, taskID uint64, from, to string) error {
	if !models.CanTransitTask(from, to) {
		return models.ErrInvalidTransition
	}

	cmd, err := wr.db.Exec(ctx, updateTaskStatusQuery, to, taskID, from)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// AssignTask sets the staff user responsible for the task
func (wr *WarehouseRepository) AssignTask(ctx context.Context, taskID, userID uint64) error {
	cmd, err := wr.db.Exec(ctx, assignTaskQuery, userID, taskID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
