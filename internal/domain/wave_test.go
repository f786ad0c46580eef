package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWave(t *testing.T) {
	tests := []struct {
		name       string
		operatorID string
		strategy   PickingStrategy
		orderIDs   []string
		wantErr    error
	}{
		{
			name:       "valid wave",
			operatorID: "op-1",
			strategy:   StrategyBatchPicking,
			orderIDs:   []string{"ord-1", "ord-2"},
		},
		{
			name:       "unknown strategy",
			operatorID: "op-1",
			strategy:   PickingStrategy("cluster_picking"),
			orderIDs:   []string{"ord-1"},
			wantErr:    ErrUnknownStrategy,
		},
		{
			name:     "missing operator",
			strategy: StrategyZonePicking,
			orderIDs: []string{"ord-1"},
			wantErr:  ErrOperatorRequired,
		},
		{
			name:       "no orders",
			operatorID: "op-1",
			strategy:   StrategyDiscretePicking,
			orderIDs:   nil,
			wantErr:    ErrEmptySelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wave, err := NewWave("wave-1", "W-20260831-ABC123", "tenant-1", tt.operatorID, tt.strategy, tt.orderIDs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, wave)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, WaveStatusPlanned, wave.Status)
			assert.Equal(t, len(tt.orderIDs), wave.OrderCount)
			assert.False(t, wave.CreatedAt.IsZero())
		})
	}
}

func TestWaveStatusTransitions(t *testing.T) {
	tests := []struct {
		from    WaveStatus
		to      WaveStatus
		allowed bool
	}{
		{WaveStatusPlanned, WaveStatusInProgress, true},
		{WaveStatusPlanned, WaveStatusCancelled, true},
		{WaveStatusPlanned, WaveStatusCompleted, false},
		{WaveStatusInProgress, WaveStatusCompleted, true},
		{WaveStatusInProgress, WaveStatusCancelled, true},
		{WaveStatusInProgress, WaveStatusPlanned, false},
		{WaveStatusCompleted, WaveStatusCancelled, false},
		{WaveStatusCompleted, WaveStatusCompleted, false},
		{WaveStatusCancelled, WaveStatusInProgress, false},
		{WaveStatusCancelled, WaveStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestWaveLifecycle(t *testing.T) {
	newTestWave := func(t *testing.T) *Wave {
		wave, err := NewWave("wave-1", "W-20260831-ABC123", "tenant-1", "op-1", StrategyWavePicking, []string{"ord-1"})
		require.NoError(t, err)
		return wave
	}

	t.Run("start stamps started at", func(t *testing.T) {
		wave := newTestWave(t)
		require.NoError(t, wave.Start())
		assert.Equal(t, WaveStatusInProgress, wave.Status)
		require.NotNil(t, wave.StartedAt)
	})

	t.Run("complete requires in progress", func(t *testing.T) {
		wave := newTestWave(t)
		err := wave.Complete()
		var transErr *TransitionError
		require.ErrorAs(t, err, &transErr)
		assert.Equal(t, WaveStatusPlanned, transErr.From)
		assert.Equal(t, WaveStatusCompleted, transErr.To)
	})

	t.Run("cancel records reason and stamps completed at", func(t *testing.T) {
		wave := newTestWave(t)
		require.NoError(t, wave.Start())
		require.NoError(t, wave.Cancel("carrier cutoff missed"))
		assert.Equal(t, WaveStatusCancelled, wave.Status)
		assert.Equal(t, "carrier cutoff missed", wave.CancelReason)
		require.NotNil(t, wave.CompletedAt)
		assert.False(t, wave.IsActive())
	})

	t.Run("repeated terminal transition is rejected", func(t *testing.T) {
		wave := newTestWave(t)
		require.NoError(t, wave.Start())
		require.NoError(t, wave.Complete())
		err := wave.Complete()
		var transErr *TransitionError
		assert.ErrorAs(t, err, &transErr)
	})
}

func TestNewWaveOrderLinks(t *testing.T) {
	wave, err := NewWave("wave-9", "W-20260831-DEF456", "tenant-1", "op-1", StrategyBatchPicking, []string{"ord-1", "ord-2", "ord-3"})
	require.NoError(t, err)

	links := NewWaveOrderLinks(wave)
	require.Len(t, links, 3)
	for i, link := range links {
		assert.Equal(t, wave.WaveID, link.WaveID)
		assert.Equal(t, wave.OrderIDs[i], link.OrderID)
		assert.Equal(t, wave.TenantID, link.TenantID)
		assert.True(t, link.Active)
	}
}

func TestParsePickingStrategy(t *testing.T) {
	for _, valid := range []string{"batch_picking", "zone_picking", "discrete_picking", "wave_picking"} {
		strategy, err := ParsePickingStrategy(valid)
		assert.NoError(t, err)
		assert.Equal(t, PickingStrategy(valid), strategy)
	}

	_, err := ParsePickingStrategy("pallet_picking")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
