package service

import (
	"context"

	"github.com/coalmart/coalmart/internal/models"
)

// WarehouseRepository is interface for interacting with warehouse tasks
type WarehouseRepository interface {
	// GetTaskByID returns warehouse task by id
	GetTaskByID(ctx context.Context, taskID uint64) (*models.WarehouseTask, error)
	// GetTasksByStatus returns tasks in given status
	GetTasksByStatus(ctx context.Context, status string) ([]models.WarehouseTask, error)
	// UpdateTaskStatus moves the task between statuses
	UpdateTaskStatus(ctx context.Context, taskID uint64, from, to string) error
	// AssignTask sets the responsible staff user
	AssignTask(ctx context.Context, taskID, userID uint64) error
}

// WarehouseService implements staff actions on pick/pack tasks.
type WarehouseService struct {
	repo WarehouseRepository
}

// NewWarehouseService creates new WarehouseService instance
func NewWarehouseService(repo WarehouseRepository) *WarehouseService {
	return &WarehouseService{repo: repo}
}

// AdvanceTask moves a task to the next status. Illegal jumps are
// rejected with ErrInvalidTransition.
func (ws *WarehouseService) AdvanceTask(ctx context.Context, taskID uint64, to string) error {
	task, err := ws.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}

	return ws.repo.UpdateTaskStatus(ctx, taskID, task.Status, to)
}

// AssignTask sets the staff user responsible for a task
func (ws *WarehouseService) AssignTask(ctx context.Context, taskID, userID uint64) error {
	return ws.repo.AssignTask(ctx, taskID, userID)
}

// ListPendingTasks returns tasks awaiting assembly
func (ws *WarehouseService) ListPendingTasks(ctx context.Context) ([]models.WarehouseTask, error) {
	return ws.repo.GetTasksByStatus(ctx, models.TaskStatusPending)
}
