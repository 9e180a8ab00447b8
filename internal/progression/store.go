// Package progression owns the player's ticket balance, per-tier records, unlock
// flags and the cumulative personal-best total. Every mutation goes through
// ConsumeTicket, Settle or Sweep so the invariants live in one place:
//
//   - tickets stay in [0, max] and only ConsumeTicket lowers them
//   - a tier never relocks
//   - a best score only moves to a strictly larger value
//   - the personal-best total only grows, by the score of each record run
//
// A Store is not safe for concurrent use; callers serialise access.
package progression

import (
	"fmt"
	"strconv"

	"raidboss/internal/apperr"
	"raidboss/internal/difficulty"
)

var (
	ErrInsufficientTickets = apperr.New(apperr.CodeInsufficientTickets, "insufficient tickets")
	ErrNoClearRecord       = apperr.New(apperr.CodeNoClearRecord, "no clear record for this tier")
)

type Store struct {
	catalog *difficulty.Catalog

	tickets    int
	maxTickets int
	selected   difficulty.ID
	best       map[difficulty.ID]int64
	unlocked   map[difficulty.ID]bool
	pbTotal    int64
}

// New validates the seed against the catalog and returns an owned store.
func New(catalog *difficulty.Catalog, seed Seed) (*Store, error) {
	if catalog == nil {
		return nil, apperr.New(apperr.CodeInvalidConfig, "catalog is required")
	}
	if seed.MaxTickets <= 0 {
		return nil, apperr.New(apperr.CodeInvalidConfig, "max tickets must be positive")
	}
	if seed.Tickets < 0 || seed.Tickets > seed.MaxTickets {
		return nil, apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("tickets %d outside [0, %d]", seed.Tickets, seed.MaxTickets))
	}
	if seed.PersonalBestTotal < 0 {
		return nil, apperr.New(apperr.CodeInvalidConfig, "personal best total must not be negative")
	}

	s := &Store{
		catalog:    catalog,
		tickets:    seed.Tickets,
		maxTickets: seed.MaxTickets,
		selected:   difficulty.Normal,
		best:       make(map[difficulty.ID]int64),
		unlocked:   make(map[difficulty.ID]bool),
		pbTotal:    seed.PersonalBestTotal,
	}
	for _, id := range catalog.All() {
		s.best[id] = 0
		s.unlocked[id] = false
	}
	s.unlocked[difficulty.Normal] = true

	for id, score := range seed.BestScores {
		if !catalog.Has(id) {
			return nil, unknownTier(id)
		}
		if score < 0 {
			return nil, apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("best score for %s must not be negative", id))
		}
		s.best[id] = score
	}
	for id, open := range seed.Unlocked {
		if !catalog.Has(id) {
			return nil, unknownTier(id)
		}
		if open {
			s.unlocked[id] = true
		}
	}
	if seed.Selected != difficulty.None {
		if !catalog.Has(seed.Selected) {
			return nil, unknownTier(seed.Selected)
		}
		s.selected = seed.Selected
	}
	return s, nil
}

func unknownTier(id difficulty.ID) error {
	return apperr.WithMetadata(apperr.CodeUnknownTier, fmt.Sprintf("unknown tier %q", id), map[string]string{"tier": string(id)})
}

func (s *Store) Catalog() *difficulty.Catalog { return s.catalog }

func (s *Store) Tickets() int { return s.tickets }

func (s *Store) Selected() difficulty.ID { return s.selected }

func (s *Store) BestScore(id difficulty.ID) int64 { return s.best[id] }

func (s *Store) PersonalBestTotal() int64 { return s.pbTotal }

// SelectTier always succeeds for a catalog tier, locked or not, so locked
// content can be previewed.
func (s *Store) SelectTier(id difficulty.ID) (Selection, error) {
	tier, err := s.catalog.Get(id)
	if err != nil {
		return Selection{}, err
	}
	s.selected = id
	return Selection{
		Tier:      tier,
		Unlocked:  s.unlocked[id],
		BestScore: s.best[id],
		Cleared:   s.best[id] > 0,
	}, nil
}

// CanEnter reports whether id is unlocked.
func (s *Store) CanEnter(id difficulty.ID) bool {
	return s.unlocked[id]
}

// ConsumeTicket spends one ticket and returns the new balance.
func (s *Store) ConsumeTicket() (int, error) {
	if s.tickets <= 0 {
		return 0, ErrInsufficientTickets
	}
	s.tickets--
	return s.tickets, nil
}

// Settle reconciles a finished run against the tier's record. A score equal to
// the record is not a record.
func (s *Store) Settle(id difficulty.ID, finalScore int64) (Outcome, error) {
	if !s.catalog.Has(id) {
		return Outcome{}, unknownTier(id)
	}
	if finalScore < 0 {
		return Outcome{}, apperr.WithMetadata(apperr.CodeInvalidTierTransition, "final score must not be negative",
			map[string]string{"tier": string(id), "score": strconv.FormatInt(finalScore, 10)})
	}

	prev := s.best[id]
	out := Outcome{
		Tier:         id,
		FinalScore:   finalScore,
		PreviousBest: prev,
	}

	if finalScore > prev {
		out.IsNewRecord = true
		s.best[id] = finalScore
		if next, ok := s.catalog.Successor(id); ok && !s.unlocked[next] {
			s.unlocked[next] = true
			out.UnlockedTier = next
		}
		s.pbTotal += finalScore
	}

	out.BestScoreAfter = s.best[id]
	out.PersonalBestTotalAfter = s.pbTotal
	return out, nil
}

// Sweep spends a ticket to re-claim the tier's record as-is.
func (s *Store) Sweep(id difficulty.ID) (SweepReceipt, error) {
	if !s.catalog.Has(id) {
		return SweepReceipt{}, unknownTier(id)
	}
	if s.best[id] == 0 {
		return SweepReceipt{}, ErrNoClearRecord
	}
	left, err := s.ConsumeTicket()
	if err != nil {
		return SweepReceipt{}, err
	}
	return SweepReceipt{
		Tier:             id,
		Awarded:          s.best[id],
		TicketsRemaining: left,
	}, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	best := make(map[difficulty.ID]int64, len(s.best))
	for k, v := range s.best {
		best[k] = v
	}
	unlocked := make(map[difficulty.ID]bool, len(s.unlocked))
	for k, v := range s.unlocked {
		unlocked[k] = v
	}
	return State{
		Tickets:           s.tickets,
		MaxTickets:        s.maxTickets,
		Selected:          s.selected,
		BestScores:        best,
		Unlocked:          unlocked,
		PersonalBestTotal: s.pbTotal,
	}
}
