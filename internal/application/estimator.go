package application

import "github.com/wms-platform/wave-planning-service/internal/domain"

// strategyCoefficients are the per-strategy linear model weights. Minutes
// grow with orders, tasks and units; distance grows with tasks. Tuned from
// historical floor data.
type strategyCoefficients struct {
	baseMinutes    float64
	perOrderMin    float64
	perTaskMin     float64
	perUnitMin     float64
	perTaskMeters  float64
	baseMeters     float64
}

var defaultCoefficients = map[domain.PickingStrategy]strategyCoefficients{
	domain.StrategyBatchPicking: {
		baseMinutes: 5.0, perOrderMin: 0.5, perTaskMin: 1.2, perUnitMin: 0.10,
		baseMeters: 50, perTaskMeters: 12,
	},
	domain.StrategyZonePicking: {
		baseMinutes: 4.0, perOrderMin: 0.6, perTaskMin: 1.0, perUnitMin: 0.10,
		baseMeters: 30, perTaskMeters: 8,
	},
	domain.StrategyDiscretePicking: {
		baseMinutes: 2.0, perOrderMin: 1.5, perTaskMin: 1.5, perUnitMin: 0.12,
		baseMeters: 20, perTaskMeters: 18,
	},
	domain.StrategyWavePicking: {
		baseMinutes: 6.0, perOrderMin: 0.4, perTaskMin: 1.1, perUnitMin: 0.08,
		baseMeters: 60, perTaskMeters: 10,
	},
}

// LinearEstimatePolicy predicts wave effort with a per-strategy linear model.
// Estimates are monotonic in every workload dimension.
type LinearEstimatePolicy struct {
	coefficients map[domain.PickingStrategy]strategyCoefficients
}

// NewLinearEstimatePolicy creates the default estimate policy.
func NewLinearEstimatePolicy() *LinearEstimatePolicy {
	return &LinearEstimatePolicy{coefficients: defaultCoefficients}
}

// Estimate implements domain.EstimatePolicy.
func (p *LinearEstimatePolicy) Estimate(strategy domain.PickingStrategy, orderCount, taskCount, totalUnits int) (float64, float64) {
	c, ok := p.coefficients[strategy]
	if !ok {
		c = defaultCoefficients[domain.StrategyDiscretePicking]
	}

	minutes := c.baseMinutes +
		c.perOrderMin*float64(orderCount) +
		c.perTaskMin*float64(taskCount) +
		c.perUnitMin*float64(totalUnits)
	distance := c.baseMeters + c.perTaskMeters*float64(taskCount)

	return minutes, distance
}
