package domain

import "time"

// Event is implemented by every domain event this service emits.
type Event interface {
	EventType() string
	Subject() string
	OccurredAt() time.Time
}

// WavePlannedEvent is emitted after a wave and its pick tasks are persisted.
type WavePlannedEvent struct {
	WaveID     string          `json:"waveId"`
	WaveNumber string          `json:"waveNumber"`
	TenantID   string          `json:"tenantId"`
	Strategy   PickingStrategy `json:"strategy"`
	OrderIDs   []string        `json:"orderIds"`
	PickCount  int             `json:"pickCount"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (e WavePlannedEvent) EventType() string     { return "wave.planned" }
func (e WavePlannedEvent) Subject() string       { return e.WaveID }
func (e WavePlannedEvent) OccurredAt() time.Time { return e.Timestamp }

// WaveStartedEvent is emitted when a wave is released to the floor.
type WaveStartedEvent struct {
	WaveID     string    `json:"waveId"`
	TenantID   string    `json:"tenantId"`
	OperatorID string    `json:"operatorId"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e WaveStartedEvent) EventType() string     { return "wave.started" }
func (e WaveStartedEvent) Subject() string       { return e.WaveID }
func (e WaveStartedEvent) OccurredAt() time.Time { return e.Timestamp }

// WaveCompletedEvent is emitted when a wave is closed out. OpenTasks is
// non-zero when the wave was force-completed with unfinished work.
type WaveCompletedEvent struct {
	WaveID    string    `json:"waveId"`
	TenantID  string    `json:"tenantId"`
	OpenTasks int       `json:"openTasks"`
	Timestamp time.Time `json:"timestamp"`
}

func (e WaveCompletedEvent) EventType() string     { return "wave.completed" }
func (e WaveCompletedEvent) Subject() string       { return e.WaveID }
func (e WaveCompletedEvent) OccurredAt() time.Time { return e.Timestamp }

// WaveCancelledEvent is emitted when a wave is aborted. The released orders
// are immediately eligible for re-waving.
type WaveCancelledEvent struct {
	WaveID           string    `json:"waveId"`
	TenantID         string    `json:"tenantId"`
	Reason           string    `json:"reason"`
	ReleasedOrderIDs []string  `json:"releasedOrderIds"`
	Timestamp        time.Time `json:"timestamp"`
}

func (e WaveCancelledEvent) EventType() string     { return "wave.cancelled" }
func (e WaveCancelledEvent) Subject() string       { return e.WaveID }
func (e WaveCancelledEvent) OccurredAt() time.Time { return e.Timestamp }

// PickTaskUpdatedEvent is emitted when a pick task changes status.
type PickTaskUpdatedEvent struct {
	TaskID         string         `json:"taskId"`
	WaveID         string         `json:"waveId"`
	TenantID       string         `json:"tenantId"`
	Status         PickTaskStatus `json:"status"`
	QuantityPicked int            `json:"quantityPicked"`
	AssignedTo     string         `json:"assignedTo,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

func (e PickTaskUpdatedEvent) EventType() string     { return "pick_task.updated" }
func (e PickTaskUpdatedEvent) Subject() string       { return e.WaveID }
func (e PickTaskUpdatedEvent) OccurredAt() time.Time { return e.Timestamp }
