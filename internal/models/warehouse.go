package models

import "time"

// warehouse task status
const (
	TaskStatusPending    = "pending"
	TaskStatusAssembling = "assembling"
	TaskStatusPacking    = "packing"
	TaskStatusShipped    = "shipped"
	TaskStatusCancelled  = "cancelled"
)

// WarehouseTask is a pick/pack/ship work item derived from a paid order.
type WarehouseTask struct {
	ID         uint64
	OrderID    uint64
	Status     string
	AssignedTo *uint64
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var taskTransitions = map[string][]string{
	TaskStatusPending:    {TaskStatusAssembling, TaskStatusCancelled},
	TaskStatusAssembling: {TaskStatusPacking, TaskStatusCancelled},
	TaskStatusPacking:    {TaskStatusShipped, TaskStatusCancelled},
}

// CanTransitTask reports whether a warehouse task may advance from one
// status to the next.
func CanTransitTask(from, to string) bool {
	for _, s := range taskTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
