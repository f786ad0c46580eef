package domain

import (
	"errors"
	"fmt"
	"time"
)

// PickingStrategy selects the algorithm used to turn a set of orders into
// sequenced pick tasks.
type PickingStrategy string

const (
	StrategyBatchPicking    PickingStrategy = "batch_picking"
	StrategyZonePicking     PickingStrategy = "zone_picking"
	StrategyDiscretePicking PickingStrategy = "discrete_picking"
	StrategyWavePicking     PickingStrategy = "wave_picking"
)

// ParsePickingStrategy validates a raw strategy string.
func ParsePickingStrategy(raw string) (PickingStrategy, error) {
	switch s := PickingStrategy(raw); s {
	case StrategyBatchPicking, StrategyZonePicking, StrategyDiscretePicking, StrategyWavePicking:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
	}
}

// WaveStatus represents the lifecycle state of a wave.
type WaveStatus string

const (
	WaveStatusPlanned    WaveStatus = "planned"
	WaveStatusInProgress WaveStatus = "in_progress"
	WaveStatusCompleted  WaveStatus = "completed"
	WaveStatusCancelled  WaveStatus = "cancelled"
)

var waveTransitions = map[WaveStatus][]WaveStatus{
	WaveStatusPlanned:    {WaveStatusInProgress, WaveStatusCancelled},
	WaveStatusInProgress: {WaveStatusCompleted, WaveStatusCancelled},
	WaveStatusCompleted:  {},
	WaveStatusCancelled:  {},
}

// CanTransitionTo reports whether a transition to the target status is legal.
// Terminal states admit nothing, including a repeat of themselves.
func (s WaveStatus) CanTransitionTo(target WaveStatus) bool {
	for _, allowed := range waveTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the wave status admits no further transitions.
func (s WaveStatus) IsTerminal() bool {
	return len(waveTransitions[s]) == 0
}

// IsValid reports whether the status is a known wave status.
func (s WaveStatus) IsValid() bool {
	_, ok := waveTransitions[s]
	return ok
}

var (
	ErrWaveNotFound      = errors.New("wave not found")
	ErrUnknownStrategy   = errors.New("unknown picking strategy")
	ErrOperatorRequired  = errors.New("operator id is required")
	ErrEmptySelection    = errors.New("no eligible orders matched the selection")
	ErrOrderAlreadyWaved = errors.New("order is already claimed by an active wave")
	ErrStockExhausted    = errors.New("insufficient pickable stock")
	ErrWaveNotDeletable  = errors.New("only planned waves can be deleted")
	ErrStaleWaveStatus   = errors.New("wave status changed concurrently")
)

// StockExhaustedError reports a SKU whose pickable stock cannot cover the
// demand planned against it.
type StockExhaustedError struct {
	SKU   string
	Short int
}

func (e *StockExhaustedError) Error() string {
	return fmt.Sprintf("%v: sku %s short by %d units", ErrStockExhausted, e.SKU, e.Short)
}

func (e *StockExhaustedError) Unwrap() error {
	return ErrStockExhausted
}

// Wave is the aggregate root: a planned batch of outbound orders with their
// generated pick tasks and effort estimates.
type Wave struct {
	WaveID            string          `json:"waveId" bson:"waveId"`
	WaveNumber        string          `json:"waveNumber" bson:"waveNumber"`
	TenantID          string          `json:"tenantId" bson:"tenantId"`
	Strategy          PickingStrategy `json:"strategy" bson:"strategy"`
	Status            WaveStatus      `json:"status" bson:"status"`
	OperatorID        string          `json:"operatorId" bson:"operatorId"`
	OrderIDs          []string        `json:"orderIds" bson:"orderIds"`
	OrderCount        int             `json:"orderCount" bson:"orderCount"`
	PickCount         int             `json:"pickCount" bson:"pickCount"`
	EstimatedMinutes  float64         `json:"estimatedMinutes" bson:"estimatedMinutes"`
	EstimatedDistance float64         `json:"estimatedDistance" bson:"estimatedDistance"`
	CancelReason      string          `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt" bson:"updatedAt"`
	StartedAt         *time.Time      `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// NewWave constructs a planned wave over the given orders.
func NewWave(waveID, waveNumber, tenantID, operatorID string, strategy PickingStrategy, orderIDs []string) (*Wave, error) {
	if _, err := ParsePickingStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if operatorID == "" {
		return nil, ErrOperatorRequired
	}
	if len(orderIDs) == 0 {
		return nil, ErrEmptySelection
	}

	now := time.Now().UTC()
	return &Wave{
		WaveID:     waveID,
		WaveNumber: waveNumber,
		TenantID:   tenantID,
		Strategy:   strategy,
		Status:     WaveStatusPlanned,
		OperatorID: operatorID,
		OrderIDs:   orderIDs,
		OrderCount: len(orderIDs),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// TransitionTo applies a lifecycle transition, rejecting illegal ones.
func (w *Wave) TransitionTo(target WaveStatus) error {
	if !w.Status.CanTransitionTo(target) {
		return &TransitionError{WaveID: w.WaveID, From: w.Status, To: target}
	}

	now := time.Now().UTC()
	w.Status = target
	w.UpdatedAt = now

	switch target {
	case WaveStatusInProgress:
		w.StartedAt = &now
	case WaveStatusCompleted, WaveStatusCancelled:
		w.CompletedAt = &now
	}
	return nil
}

// Start releases the wave to the floor.
func (w *Wave) Start() error {
	return w.TransitionTo(WaveStatusInProgress)
}

// Complete closes out the wave.
func (w *Wave) Complete() error {
	return w.TransitionTo(WaveStatusCompleted)
}

// Cancel aborts the wave with a reason, releasing its orders for re-waving.
func (w *Wave) Cancel(reason string) error {
	if err := w.TransitionTo(WaveStatusCancelled); err != nil {
		return err
	}
	w.CancelReason = reason
	return nil
}

// IsActive reports whether the wave still holds exclusive claims on its
// orders.
func (w *Wave) IsActive() bool {
	return !w.Status.IsTerminal()
}

// TransitionError describes a rejected wave status transition.
type TransitionError struct {
	WaveID string
	From   WaveStatus
	To     WaveStatus
}

func (e *TransitionError) Error() string {
	return "illegal wave transition from " + string(e.From) + " to " + string(e.To)
}

// WaveOrderLink records one order's membership in a wave. Links of active
// waves are unique per order at the storage level, which is what prevents an
// order from being planned into two waves at once.
type WaveOrderLink struct {
	WaveID   string    `json:"waveId" bson:"waveId"`
	OrderID  string    `json:"orderId" bson:"orderId"`
	TenantID string    `json:"tenantId" bson:"tenantId"`
	Active   bool      `json:"active" bson:"active"`
	LinkedAt time.Time `json:"linkedAt" bson:"linkedAt"`
}

// NewWaveOrderLinks builds active links for every order in the wave.
func NewWaveOrderLinks(wave *Wave) []WaveOrderLink {
	links := make([]WaveOrderLink, 0, len(wave.OrderIDs))
	for _, orderID := range wave.OrderIDs {
		links = append(links, WaveOrderLink{
			WaveID:   wave.WaveID,
			OrderID:  orderID,
			TenantID: wave.TenantID,
			Active:   true,
			LinkedAt: wave.CreatedAt,
		})
	}
	return links
}
