package game

import (
	"time"

	"raidboss/internal/battle"
	"raidboss/internal/difficulty"
	"raidboss/internal/progression"

	"github.com/google/uuid"
)

// Snapshot is everything the lobby and battle screens render.
type Snapshot struct {
	SelectedTier      difficulty.ID             `json:"selected_tier"`
	TicketsRemaining  int                       `json:"tickets_remaining"`
	MaxTickets        int                       `json:"max_tickets"`
	PerTierBest       map[difficulty.ID]int64   `json:"per_tier_best"`
	PerTierUnlocked   map[difficulty.ID]bool    `json:"per_tier_unlocked"`
	PersonalBestTotal int64                     `json:"personal_best_total"`
	Session           *battle.View              `json:"session,omitempty"`
	LastSettlement    *Settlement               `json:"last_settlement,omitempty"`
	LastSweep         *progression.SweepReceipt `json:"last_sweep,omitempty"`
	EventEnded        bool                      `json:"event_ended"`
}

// Settlement is the result screen of the last finished battle.
type Settlement struct {
	SessionID              uuid.UUID     `json:"session_id"`
	Tier                   difficulty.ID `json:"tier"`
	Status                 battle.Status `json:"status"`
	IsNewRecord            bool          `json:"is_new_record"`
	FinalScore             int64         `json:"final_score"`
	DamagePercent          float64       `json:"damage_percent"`
	UnlockedTier           difficulty.ID `json:"unlocked_tier,omitempty"`
	PersonalBestTotalAfter int64         `json:"personal_best_total_after"`
	FinishedAt             time.Time     `json:"finished_at"`
}

func settlementOf(res battle.FinalResult, at time.Time) Settlement {
	return Settlement{
		SessionID:              res.SessionID,
		Tier:                   res.Tier,
		Status:                 res.Status,
		IsNewRecord:            res.Outcome.IsNewRecord,
		FinalScore:             res.FinalScore,
		DamagePercent:          res.DamagePercent,
		UnlockedTier:           res.Outcome.UnlockedTier,
		PersonalBestTotalAfter: res.Outcome.PersonalBestTotalAfter,
		FinishedAt:             at,
	}
}

// HistoryRepository keeps settled runs, newest last.
type HistoryRepository interface {
	Add(s Settlement) error
	List(limit int) ([]Settlement, error)
}
