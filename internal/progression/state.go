package progression

import "raidboss/internal/difficulty"

// Seed is the initial progression handed to New.
type Seed struct {
	Tickets           int                     `json:"tickets" yaml:"tickets"`
	MaxTickets        int                     `json:"max_tickets" yaml:"max_tickets"`
	Selected          difficulty.ID           `json:"selected" yaml:"selected"`
	BestScores        map[difficulty.ID]int64 `json:"best_scores" yaml:"best_scores"`
	Unlocked          map[difficulty.ID]bool  `json:"unlocked" yaml:"unlocked"`
	PersonalBestTotal int64                   `json:"personal_best_total" yaml:"personal_best_total"`
}

// DemoSeed is the event's demo account: two cleared tiers, a full ticket pouch.
func DemoSeed() Seed {
	return Seed{
		Tickets:    3,
		MaxTickets: 3,
		Selected:   difficulty.Normal,
		BestScores: map[difficulty.ID]int64{
			difficulty.Normal: 1_234_567,
			difficulty.Hard:   2_500_000,
		},
		Unlocked: map[difficulty.ID]bool{
			difficulty.Normal: true,
			difficulty.Hard:   true,
		},
		PersonalBestTotal: 12_450_999,
	}
}

// FreshSeed is a brand-new player: only NORMAL open, nothing cleared.
func FreshSeed(tickets int) Seed {
	return Seed{
		Tickets:    tickets,
		MaxTickets: tickets,
		Selected:   difficulty.Normal,
	}
}

// State is a point-in-time copy of the store for presentation.
type State struct {
	Tickets           int                     `json:"tickets"`
	MaxTickets        int                     `json:"max_tickets"`
	Selected          difficulty.ID           `json:"selected"`
	BestScores        map[difficulty.ID]int64 `json:"best_scores"`
	Unlocked          map[difficulty.ID]bool  `json:"unlocked"`
	PersonalBestTotal int64                   `json:"personal_best_total"`
}

// Selection is what the carousel shows for the selected tier.
type Selection struct {
	Tier      difficulty.Tier `json:"tier"`
	Unlocked  bool            `json:"unlocked"`
	BestScore int64           `json:"best_score"`
	Cleared   bool            `json:"cleared"`
}

// Outcome is the result of a settlement.
type Outcome struct {
	Tier                   difficulty.ID `json:"tier"`
	FinalScore             int64         `json:"final_score"`
	IsNewRecord            bool          `json:"is_new_record"`
	PreviousBest           int64         `json:"previous_best"`
	BestScoreAfter         int64         `json:"best_score_after"`
	UnlockedTier           difficulty.ID `json:"unlocked_tier,omitempty"`
	PersonalBestTotalAfter int64         `json:"personal_best_total_after"`
}

// SweepReceipt re-grants an existing record without touching it.
type SweepReceipt struct {
	Tier             difficulty.ID `json:"tier"`
	Awarded          int64         `json:"awarded"`
	TicketsRemaining int           `json:"tickets_remaining"`
}
