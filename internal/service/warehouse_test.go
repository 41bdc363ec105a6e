package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coalmart/coalmart/internal/models"
)

type fakeWarehouseStore struct {
	tasks map[uint64]*models.WarehouseTask
}

func newFakeWarehouseStore(tasks ...*models.WarehouseTask) *fakeWarehouseStore {
	store := &fakeWarehouseStore{tasks: make(map[uint64]*models.WarehouseTask)}
	for _, task := range tasks {
		store.tasks[task.ID] = task
	}
	return store
}

func (f *fakeWarehouseStore) GetTaskByID(_ context.Context, taskID uint64) (*models.WarehouseTask, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return task, nil
}

func (f *fakeWarehouseStore) GetTasksByStatus(_ context.Context, status string) ([]models.WarehouseTask, error) {
	var out []models.WarehouseTask
	for _, task := range f.tasks {
		if task.Status == status {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeWarehouseStore) UpdateTaskStatus(_ context.Context, taskID uint64, from, to string) error {
	if !models.CanTransitTask(from, to) {
		return models.ErrInvalidTransition
	}
	task, ok := f.tasks[taskID]
	if !ok || task.Status != from {
		return models.ErrDataNotFound
	}
	task.Status = to
	return nil
}

func (f *fakeWarehouseStore) AssignTask(_ context.Context, taskID, userID uint64) error {
	task, ok := f.tasks[taskID]
	if !ok {
		return models.ErrDataNotFound
	}
	task.AssignedTo = &userID
	return nil
}

func TestAdvanceTask(t *testing.T) {
	store := newFakeWarehouseStore(&models.WarehouseTask{ID: 1, OrderID: 42, Status: models.TaskStatusPending})
	svc := NewWarehouseService(store)

	require.NoError(t, svc.AdvanceTask(context.Background(), 1, models.TaskStatusAssembling))
	assert.Equal(t, models.TaskStatusAssembling, store.tasks[1].Status)

	require.NoError(t, svc.AdvanceTask(context.Background(), 1, models.TaskStatusPacking))
	require.NoError(t, svc.AdvanceTask(context.Background(), 1, models.TaskStatusShipped))
	assert.Equal(t, models.TaskStatusShipped, store.tasks[1].Status)
}

func TestAdvanceTaskRejectsJump(t *testing.T) {
	store := newFakeWarehouseStore(&models.WarehouseTask{ID: 1, Status: models.TaskStatusPending})
	svc := NewWarehouseService(store)

	err := svc.AdvanceTask(context.Background(), 1, models.TaskStatusShipped)

	require.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Equal(t, models.TaskStatusPending, store.tasks[1].Status)
}

func TestAdvanceTaskMissing(t *testing.T) {
	svc := NewWarehouseService(newFakeWarehouseStore())

	err := svc.AdvanceTask(context.Background(), 404, models.TaskStatusAssembling)

	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestAssignTask(t *testing.T) {
	store := newFakeWarehouseStore(&models.WarehouseTask{ID: 1, Status: models.TaskStatusPending})
	svc := NewWarehouseService(store)

	require.NoError(t, svc.AssignTask(context.Background(), 1, 9))

	require.NotNil(t, store.tasks[1].AssignedTo)
	assert.Equal(t, uint64(9), *store.tasks[1].AssignedTo)
}

func TestListPendingTasks(t *testing.T) {
	store := newFakeWarehouseStore(
		&models.WarehouseTask{ID: 1, Status: models.TaskStatusPending},
		&models.WarehouseTask{ID: 2, Status: models.TaskStatusShipped},
	)
	svc := NewWarehouseService(store)

	tasks, err := svc.ListPendingTasks(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, uint64(1), tasks[0].ID)
}
