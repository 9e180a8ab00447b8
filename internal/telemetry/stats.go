package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period          string            `json:"period"`
	EventCounts     map[EventType]int `json:"event_counts"`
	BattlesStarted  int               `json:"battles_started"`
	BattlesFinished int               `json:"battles_finished"`
	Forfeits        int               `json:"forfeits"`
	Victories       int               `json:"victories"`
	Timeouts        int               `json:"timeouts"`
	VictoryRate     float64           `json:"victory_rate"`
	RecordsSet      int               `json:"records_set"`
	Sweeps          int               `json:"sweeps"`
	RewardsClaimed  int               `json:"rewards_claimed"`
	BattlesByTier   map[string]int    `json:"battles_by_tier"`
	BestScoreByTier map[string]int64  `json:"best_score_by_tier"`
	Unlocks         []string          `json:"unlocks"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:          since.Format("2006-01-02"),
		EventCounts:     make(map[EventType]int),
		BattlesByTier:   make(map[string]int),
		BestScoreByTier: make(map[string]int64),
		Unlocks:         make([]string, 0),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}
		tier, _ := metadata["tier"].(string)

		switch event.Type {
		case EventBattleStarted:
			stats.BattlesStarted++
			stats.BattlesByTier[tier]++
		case EventBattleFinished:
			stats.BattlesFinished++
			switch metadata["status"] {
			case "VICTORY":
				stats.Victories++
			case "TIMEOUT":
				stats.Timeouts++
			}
			// JSON numbers decode as float64
			if s, ok := metadata["final_score"].(float64); ok && int64(s) > stats.BestScoreByTier[tier] {
				stats.BestScoreByTier[tier] = int64(s)
			}
		case EventBattleForfeited:
			stats.Forfeits++
		case EventRecordSet:
			stats.RecordsSet++
		case EventTierUnlocked:
			stats.Unlocks = append(stats.Unlocks, tier)
		case EventSweepCompleted:
			stats.Sweeps++
		case EventRewardClaimed:
			stats.RewardsClaimed++
		}
	}

	if stats.BattlesFinished > 0 {
		stats.VictoryRate = float64(stats.Victories) / float64(stats.BattlesFinished)
	}

	return stats, nil
}
