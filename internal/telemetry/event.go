package telemetry

import "time"

type EventType string

const (
	EventTierSelected    EventType = "tier_selected"
	EventBattleStarted   EventType = "battle_started"
	EventBattleFinished  EventType = "battle_finished"
	EventBattleForfeited EventType = "battle_forfeited"
	EventRecordSet       EventType = "record_set"
	EventTierUnlocked    EventType = "tier_unlocked"
	EventSweepCompleted  EventType = "sweep_completed"
	EventRewardClaimed   EventType = "reward_claimed"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
