package domain

import (
	"errors"
	"time"
)

// PickTaskStatus represents the lifecycle state of a single pick task.
type PickTaskStatus string

const (
	PickTaskStatusPending    PickTaskStatus = "pending"
	PickTaskStatusInProgress PickTaskStatus = "in_progress"
	PickTaskStatusCompleted  PickTaskStatus = "completed"
	PickTaskStatusError      PickTaskStatus = "error"
)

var pickTaskTransitions = map[PickTaskStatus][]PickTaskStatus{
	PickTaskStatusPending:    {PickTaskStatusInProgress, PickTaskStatusError},
	PickTaskStatusInProgress: {PickTaskStatusCompleted, PickTaskStatusError},
	PickTaskStatusCompleted:  {},
	PickTaskStatusError:      {},
}

// CanTransitionTo reports whether a transition to the target status is legal.
func (s PickTaskStatus) CanTransitionTo(target PickTaskStatus) bool {
	for _, allowed := range pickTaskTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s PickTaskStatus) IsTerminal() bool {
	return len(pickTaskTransitions[s]) == 0
}

// IsValid reports whether the status is a known pick task status.
func (s PickTaskStatus) IsValid() bool {
	_, ok := pickTaskTransitions[s]
	return ok
}

var (
	ErrPickTaskNotFound   = errors.New("pick task not found")
	ErrOverpick           = errors.New("picked quantity exceeds requested quantity")
	ErrShortPickNoReason  = errors.New("short pick requires a failure reason")
	ErrInvalidTaskStatus  = errors.New("invalid pick task status")
	ErrTaskNotInWave      = errors.New("pick task does not belong to wave")
)

// PickTask is one unit of picking work inside a wave: a quantity of one SKU
// to retrieve from one location. Merging strategies may serve several orders
// from a single task, so it carries the full list of order IDs it fulfils.
type PickTask struct {
	TaskID         string         `json:"taskId" bson:"taskId"`
	WaveID         string         `json:"waveId" bson:"waveId"`
	TenantID       string         `json:"tenantId" bson:"tenantId"`
	OrderIDs       []string       `json:"orderIds" bson:"orderIds"`
	SKU            string         `json:"sku" bson:"sku"`
	Quantity       int            `json:"quantity" bson:"quantity"`
	QuantityPicked int            `json:"quantityPicked" bson:"quantityPicked"`
	LocationID     string         `json:"locationId" bson:"locationId"`
	Zone           string         `json:"zone" bson:"zone"`
	Sequence       int            `json:"sequence" bson:"sequence"`
	Status         PickTaskStatus `json:"status" bson:"status"`
	AssignedTo     string         `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	FailureReason  string         `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	StartedAt      *time.Time     `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// Start moves a pending task into progress, recording the picker.
func (t *PickTask) Start(pickerID string) error {
	if !t.Status.CanTransitionTo(PickTaskStatusInProgress) {
		return &TaskTransitionError{TaskID: t.TaskID, From: t.Status, To: PickTaskStatusInProgress}
	}
	now := time.Now().UTC()
	t.Status = PickTaskStatusInProgress
	t.AssignedTo = pickerID
	t.StartedAt = &now
	return nil
}

// Complete finishes an in-progress task with the actually picked quantity.
// Picking more than requested is rejected; picking less demands a reason and
// still completes the task so the wave can drain.
func (t *PickTask) Complete(quantityPicked int, reason string) error {
	if !t.Status.CanTransitionTo(PickTaskStatusCompleted) {
		return &TaskTransitionError{TaskID: t.TaskID, From: t.Status, To: PickTaskStatusCompleted}
	}
	if quantityPicked > t.Quantity {
		return ErrOverpick
	}
	if quantityPicked < t.Quantity && reason == "" {
		return ErrShortPickNoReason
	}
	now := time.Now().UTC()
	t.Status = PickTaskStatusCompleted
	t.QuantityPicked = quantityPicked
	t.FailureReason = reason
	t.CompletedAt = &now
	return nil
}

// Fail marks the task as errored with a reason, from any non-terminal state.
func (t *PickTask) Fail(reason string) error {
	if !t.Status.CanTransitionTo(PickTaskStatusError) {
		return &TaskTransitionError{TaskID: t.TaskID, From: t.Status, To: PickTaskStatusError}
	}
	now := time.Now().UTC()
	t.Status = PickTaskStatusError
	t.FailureReason = reason
	t.CompletedAt = &now
	return nil
}

// IsOpen reports whether the task still requires work.
func (t *PickTask) IsOpen() bool {
	return !t.Status.IsTerminal()
}

// TaskTransitionError describes a rejected pick task status transition.
type TaskTransitionError struct {
	TaskID string
	From   PickTaskStatus
	To     PickTaskStatus
}

func (e *TaskTransitionError) Error() string {
	return "illegal pick task transition from " + string(e.From) + " to " + string(e.To)
}
