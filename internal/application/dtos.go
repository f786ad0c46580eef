package application

import "time"

// WaveDTO is the API representation of a wave.
type WaveDTO struct {
	WaveID            string     `json:"waveId"`
	WaveNumber        string     `json:"waveNumber"`
	TenantID          string     `json:"tenantId"`
	Strategy          string     `json:"strategy"`
	Status            string     `json:"status"`
	OperatorID        string     `json:"operatorId"`
	OrderIDs          []string   `json:"orderIds"`
	OrderCount        int        `json:"orderCount"`
	PickCount         int        `json:"pickCount"`
	EstimatedMinutes  float64    `json:"estimatedMinutes"`
	EstimatedDistance float64    `json:"estimatedDistance"`
	CancelReason      string     `json:"cancelReason,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// PickTaskDTO is the API representation of a pick task.
type PickTaskDTO struct {
	TaskID         string     `json:"taskId"`
	WaveID         string     `json:"waveId"`
	OrderIDs       []string   `json:"orderIds"`
	SKU            string     `json:"sku"`
	Quantity       int        `json:"quantity"`
	QuantityPicked int        `json:"quantityPicked"`
	LocationID     string     `json:"locationId"`
	Zone           string     `json:"zone"`
	Sequence       int        `json:"sequence"`
	Status         string     `json:"status"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	FailureReason  string     `json:"failureReason,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// WaveCreationResultDTO summarizes the outcome of planning a wave.
type WaveCreationResultDTO struct {
	Wave            WaveDTO `json:"wave"`
	OrdersRequested int     `json:"ordersRequested"`
	OrdersIncluded  int     `json:"ordersIncluded"`
	PickCount       int     `json:"pickCount"`
}

// WaveStatusUpdateResultDTO reports the outcome of a lifecycle transition.
// Warning is set when a wave was completed with open tasks remaining.
type WaveStatusUpdateResultDTO struct {
	Wave      WaveDTO `json:"wave"`
	OpenTasks int     `json:"openTasks"`
	Warning   string  `json:"warning,omitempty"`
}

// EligibilityPreviewDTO is the dry-run result of order selection.
type EligibilityPreviewDTO struct {
	TenantID   string              `json:"tenantId"`
	Eligible   []EligibleOrderDTO  `json:"eligible"`
	Excluded   []ExcludedOrderDTO  `json:"excluded"`
	TotalUnits int                 `json:"totalUnits"`
}

// EligibleOrderDTO is one order that would make it into a wave.
type EligibleOrderDTO struct {
	OrderID     string    `json:"orderId"`
	Priority    int       `json:"priority"`
	PromiseDate time.Time `json:"promiseDate"`
	Lines       int       `json:"lines"`
	Units       int       `json:"units"`
}

// ExcludedOrderDTO is one explicitly requested order that was dropped, with
// the reason.
type ExcludedOrderDTO struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}
