package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_FiltersByTypeAndTime(t *testing.T) {
	r := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	now := base
	r.Now = func() time.Time { return now }

	require.NoError(t, r.RecordEvent(EventBattleStarted, EventMetadata{"tier": "NORMAL"}))
	now = base.Add(time.Hour)
	require.NoError(t, r.RecordEvent(EventSweepCompleted, EventMetadata{"tier": "HARD"}))
	require.NoError(t, r.RecordEvent(EventBattleStarted, EventMetadata{"tier": "HARD"}))

	all, err := r.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})

	late, err := r.GetEvents(base.Add(time.Minute), []EventType{EventBattleStarted})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.JSONEq(t, `{"tier":"HARD"}`, late[0].Metadata)

	require.NoError(t, r.Clear())
	all, err = r.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCalculateStats(t *testing.T) {
	r := NewMemoryRepository()
	record := func(et EventType, md EventMetadata) {
		require.NoError(t, r.RecordEvent(et, md))
	}
	record(EventBattleStarted, EventMetadata{"tier": "NORMAL"})
	record(EventBattleFinished, EventMetadata{"tier": "NORMAL", "status": "VICTORY", "final_score": 120000000})
	record(EventRecordSet, EventMetadata{"tier": "NORMAL"})
	record(EventTierUnlocked, EventMetadata{"tier": "HARD"})
	record(EventBattleStarted, EventMetadata{"tier": "HARD"})
	record(EventBattleFinished, EventMetadata{"tier": "HARD", "status": "TIMEOUT", "final_score": 8000})
	record(EventBattleStarted, EventMetadata{"tier": "HARD"})
	record(EventBattleForfeited, EventMetadata{"tier": "HARD"})
	record(EventSweepCompleted, EventMetadata{"tier": "NORMAL"})

	events, err := r.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	stats, err := CalculateStats(events, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01", stats.Period)
	assert.Equal(t, 3, stats.BattlesStarted)
	assert.Equal(t, 2, stats.BattlesFinished)
	assert.Equal(t, 1, stats.Victories)
	assert.Equal(t, 1, stats.Timeouts)
	assert.Equal(t, 1, stats.Forfeits)
	assert.Equal(t, 0.5, stats.VictoryRate)
	assert.Equal(t, 1, stats.RecordsSet)
	assert.Equal(t, 1, stats.Sweeps)
	assert.Equal(t, map[string]int{"NORMAL": 1, "HARD": 2}, stats.BattlesByTier)
	assert.Equal(t, int64(120000000), stats.BestScoreByTier["NORMAL"])
	assert.Equal(t, []string{"HARD"}, stats.Unlocks)
	assert.Equal(t, 3, stats.EventCounts[EventBattleStarted])
}
