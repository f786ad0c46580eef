package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wms-platform/wave-planning-service/internal/domain"
)

func TestLinearEstimatePolicy(t *testing.T) {
	policy := NewLinearEstimatePolicy()

	strategies := []domain.PickingStrategy{
		domain.StrategyBatchPicking,
		domain.StrategyZonePicking,
		domain.StrategyDiscretePicking,
		domain.StrategyWavePicking,
	}

	t.Run("positive estimates for any workload", func(t *testing.T) {
		for _, strategy := range strategies {
			minutes, distance := policy.Estimate(strategy, 1, 1, 1)
			assert.Greater(t, minutes, 0.0, string(strategy))
			assert.Greater(t, distance, 0.0, string(strategy))
		}
	})

	t.Run("monotonic in every dimension", func(t *testing.T) {
		for _, strategy := range strategies {
			baseMin, baseDist := policy.Estimate(strategy, 10, 20, 50)

			moreOrders, _ := policy.Estimate(strategy, 11, 20, 50)
			assert.Greater(t, moreOrders, baseMin, string(strategy))

			moreTasks, moreTaskDist := policy.Estimate(strategy, 10, 25, 50)
			assert.Greater(t, moreTasks, baseMin, string(strategy))
			assert.Greater(t, moreTaskDist, baseDist, string(strategy))

			moreUnits, _ := policy.Estimate(strategy, 10, 20, 60)
			assert.Greater(t, moreUnits, baseMin, string(strategy))
		}
	})

	t.Run("unknown strategy falls back to discrete coefficients", func(t *testing.T) {
		fallbackMin, fallbackDist := policy.Estimate(domain.PickingStrategy("unknown"), 5, 10, 20)
		discreteMin, discreteDist := policy.Estimate(domain.StrategyDiscretePicking, 5, 10, 20)
		assert.Equal(t, discreteMin, fallbackMin)
		assert.Equal(t, discreteDist, fallbackDist)
	})
}
