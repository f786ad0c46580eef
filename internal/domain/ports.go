package domain

import "context"

// WaveRepository persists waves, their order links and pick tasks.
// Find methods return (nil, nil) when the entity does not exist.
type WaveRepository interface {
	// CreateWave atomically persists the wave, its order links and its pick
	// tasks. It returns ErrOrderAlreadyWaved when any order is already linked
	// to another active wave.
	CreateWave(ctx context.Context, wave *Wave, links []WaveOrderLink, tasks []PickTask) error

	FindByID(ctx context.Context, waveID string) (*Wave, error)
	FindActive(ctx context.Context, tenantID string) ([]*Wave, error)
	FindByStatus(ctx context.Context, tenantID string, status WaveStatus) ([]*Wave, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*Wave, error)

	FindTasks(ctx context.Context, waveID string) ([]PickTask, error)
	FindTask(ctx context.Context, waveID, taskID string) (*PickTask, error)
	CountOpenTasks(ctx context.Context, waveID string) (int64, error)

	// UpdateWaveStatus persists a lifecycle transition. The write only applies
	// when the stored status still equals from; a concurrent transition in
	// between yields ErrStaleWaveStatus and leaves the stored wave untouched.
	// When releaseOrders is set the wave's order links are deactivated in the
	// same transaction.
	UpdateWaveStatus(ctx context.Context, wave *Wave, from WaveStatus, releaseOrders bool) error
	UpdateTask(ctx context.Context, task *PickTask) error

	// ActiveOrderIDs returns which of the given orders are currently claimed
	// by an active wave.
	ActiveOrderIDs(ctx context.Context, orderIDs []string) (map[string]bool, error)

	// Delete removes a planned wave together with its links and tasks.
	Delete(ctx context.Context, waveID string) error
}

// OrderGateway reads outbound orders from the order subsystem.
type OrderGateway interface {
	FindEligibleOutboundOrders(ctx context.Context, filter EligibilityFilter) ([]OutboundOrder, error)
	FindOrdersByIDs(ctx context.Context, tenantID string, orderIDs []string) ([]OutboundOrder, error)
}

// InventoryGateway reads pickable stock from the inventory subsystem.
type InventoryGateway interface {
	FindAvailableStock(ctx context.Context, tenantID, sku string) ([]LocationStock, error)
}

// EventPublisher emits domain events to downstream consumers. Publishing
// happens after commit and is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// EstimatePolicy predicts picking effort for a planned wave.
type EstimatePolicy interface {
	// Estimate returns predicted duration in minutes and walk distance in
	// meters for the given strategy and workload.
	Estimate(strategy PickingStrategy, orderCount, taskCount, totalUnits int) (minutes, distance float64)
}
