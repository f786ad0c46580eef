package domain

import "time"

// OrderStatus represents the status of an outbound order as reported by the
// order subsystem.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPicking   OrderStatus = "picking"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderType distinguishes outbound from inbound orders. Only outbound orders
// are ever waved.
type OrderType string

const (
	OrderTypeOutbound OrderType = "outbound"
	OrderTypeInbound  OrderType = "inbound"
)

// OrderLine is one requested SKU/quantity row of an outbound order.
type OrderLine struct {
	SKU      string `json:"sku" bson:"sku"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

// OutboundOrder is the read model of an order eligible for wave inclusion.
// Owned by the order subsystem; this service never mutates it beyond its
// wave linkage.
type OutboundOrder struct {
	OrderID     string      `json:"orderId" bson:"orderId"`
	TenantID    string      `json:"tenantId" bson:"tenantId"`
	CustomerID  string      `json:"customerId" bson:"customerId"`
	Type        OrderType   `json:"type" bson:"type"`
	Status      OrderStatus `json:"status" bson:"status"`
	Priority    int         `json:"priority" bson:"priority"` // higher = more urgent
	PromiseDate time.Time   `json:"promiseDate" bson:"promiseDate"`
	Lines       []OrderLine `json:"lines" bson:"lines"`
}

// TotalQuantity returns the total requested units across all lines.
func (o OutboundOrder) TotalQuantity() int {
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

// EligibilityFilter narrows the candidate set of orders for a new wave.
// A non-empty OrderIDs list switches selection to manual mode: exactly those
// orders are considered and anything that fails the gates is silently dropped.
type EligibilityFilter struct {
	TenantID      string        `json:"tenantId,omitempty"`
	MinPriority   int           `json:"minPriority,omitempty"`
	Statuses      []OrderStatus `json:"statuses,omitempty"`
	PromiseAfter  time.Time     `json:"promiseAfter,omitempty"`
	PromiseBefore time.Time     `json:"promiseBefore,omitempty"`
	OrderIDs      []string      `json:"orderIds,omitempty"`
	MaxOrders     int           `json:"maxOrders,omitempty"`
}

// DefaultEligibleStatuses is the status whitelist applied when a filter does
// not name one.
var DefaultEligibleStatuses = []OrderStatus{OrderStatusNew, OrderStatusConfirmed}

// StatusWhitelist returns the filter's status whitelist, falling back to the
// default set.
func (f EligibilityFilter) StatusWhitelist() []OrderStatus {
	if len(f.Statuses) > 0 {
		return f.Statuses
	}
	return DefaultEligibleStatuses
}

// AllowsStatus reports whether the whitelist admits the given status.
func (f EligibilityFilter) AllowsStatus(status OrderStatus) bool {
	for _, s := range f.StatusWhitelist() {
		if s == status {
			return true
		}
	}
	return false
}
