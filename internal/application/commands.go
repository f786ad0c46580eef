package application

import (
	"time"

	"github.com/wms-platform/wave-planning-service/internal/domain"
)

// CreateWaveCommand requests planning of a new wave.
type CreateWaveCommand struct {
	TenantID   string                 `json:"tenantId" binding:"required"`
	OperatorID string                 `json:"operatorId" binding:"required"`
	Strategy   string                 `json:"strategy" binding:"required"`
	Selection  OrderSelectionCriteria `json:"selection"`
}

// OrderSelectionCriteria is the request shape of an eligibility filter.
type OrderSelectionCriteria struct {
	OrderIDs      []string  `json:"orderIds,omitempty"`
	MinPriority   int       `json:"minPriority,omitempty"`
	Statuses      []string  `json:"statuses,omitempty"`
	PromiseAfter  time.Time `json:"promiseAfter,omitempty"`
	PromiseBefore time.Time `json:"promiseBefore,omitempty"`
	MaxOrders     int       `json:"maxOrders,omitempty"`
}

// ToFilter converts request criteria into a domain eligibility filter.
func (c OrderSelectionCriteria) ToFilter(tenantID string) domain.EligibilityFilter {
	statuses := make([]domain.OrderStatus, 0, len(c.Statuses))
	for _, s := range c.Statuses {
		statuses = append(statuses, domain.OrderStatus(s))
	}
	return domain.EligibilityFilter{
		TenantID:      tenantID,
		MinPriority:   c.MinPriority,
		Statuses:      statuses,
		PromiseAfter:  c.PromiseAfter,
		PromiseBefore: c.PromiseBefore,
		OrderIDs:      c.OrderIDs,
		MaxOrders:     c.MaxOrders,
	}
}

// UpdateWaveStatusCommand requests a wave lifecycle transition.
type UpdateWaveStatusCommand struct {
	WaveID string `json:"-"`
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// UpdatePickTaskCommand requests a pick task status change.
type UpdatePickTaskCommand struct {
	WaveID         string `json:"-"`
	TaskID         string `json:"-"`
	Status         string `json:"status" binding:"required"`
	PickerID       string `json:"pickerId,omitempty"`
	QuantityPicked *int   `json:"quantityPicked,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// PreviewEligibilityCommand requests a dry-run of order selection.
type PreviewEligibilityCommand struct {
	TenantID  string                 `json:"tenantId" binding:"required"`
	Selection OrderSelectionCriteria `json:"selection"`
}
