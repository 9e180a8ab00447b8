package progression

import (
	"math/rand"
	"testing"

	"raidboss/internal/apperr"
	"raidboss/internal/difficulty"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemoStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(difficulty.Default(), DemoSeed())
	require.NoError(t, err)
	return s
}

func TestNew_ValidatesSeed(t *testing.T) {
	cat := difficulty.Default()

	cases := map[string]Seed{
		"no max":           {Tickets: 0, MaxTickets: 0},
		"over max":         {Tickets: 4, MaxTickets: 3},
		"negative tickets": {Tickets: -1, MaxTickets: 3},
		"negative score":   {Tickets: 1, MaxTickets: 3, BestScores: map[difficulty.ID]int64{difficulty.Hard: -5}},
		"unknown unlock":   {Tickets: 1, MaxTickets: 3, Unlocked: map[difficulty.ID]bool{"EASY": true}},
		"unknown selected": {Tickets: 1, MaxTickets: 3, Selected: "EASY"},
	}
	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(cat, seed)
			assert.Error(t, err)
		})
	}

	_, err := New(nil, FreshSeed(3))
	assert.Equal(t, apperr.CodeInvalidConfig, apperr.CodeOf(err))
}

func TestNew_NormalAlwaysUnlocked(t *testing.T) {
	s, err := New(difficulty.Default(), Seed{
		Tickets:    1,
		MaxTickets: 1,
		Unlocked:   map[difficulty.ID]bool{difficulty.Normal: false},
	})
	require.NoError(t, err)
	assert.True(t, s.CanEnter(difficulty.Normal))
	assert.False(t, s.CanEnter(difficulty.Hard))
	assert.Equal(t, difficulty.Normal, s.Selected())
}

func TestSelectTier_AllowsLockedPreview(t *testing.T) {
	s := newDemoStore(t)

	sel, err := s.SelectTier(difficulty.Extreme)
	require.NoError(t, err)
	assert.Equal(t, difficulty.Extreme, s.Selected())
	assert.False(t, sel.Unlocked)
	assert.False(t, sel.Cleared)
	assert.Equal(t, 4.0, sel.Tier.ScoreMultiplier)
	assert.False(t, s.CanEnter(difficulty.Extreme))

	sel, err = s.SelectTier(difficulty.Hard)
	require.NoError(t, err)
	assert.True(t, sel.Unlocked)
	assert.Equal(t, int64(2_500_000), sel.BestScore)

	_, err = s.SelectTier("EASY")
	assert.Equal(t, apperr.CodeUnknownTier, apperr.CodeOf(err))
	assert.Equal(t, difficulty.Hard, s.Selected())
}

func TestConsumeTicket_NeverNegative(t *testing.T) {
	s := newDemoStore(t)

	for want := 2; want >= 0; want-- {
		left, err := s.ConsumeTicket()
		require.NoError(t, err)
		assert.Equal(t, want, left)
	}
	for i := 0; i < 3; i++ {
		_, err := s.ConsumeTicket()
		assert.ErrorIs(t, err, ErrInsufficientTickets)
		assert.Equal(t, 0, s.Tickets())
	}
}

func TestSettle_NewRecordUnlocksSuccessorOnce(t *testing.T) {
	s, err := New(difficulty.Default(), FreshSeed(3))
	require.NoError(t, err)

	out, err := s.Settle(difficulty.Normal, 5000)
	require.NoError(t, err)
	assert.True(t, out.IsNewRecord)
	assert.Equal(t, int64(0), out.PreviousBest)
	assert.Equal(t, int64(5000), out.BestScoreAfter)
	assert.Equal(t, difficulty.Hard, out.UnlockedTier)
	assert.Equal(t, int64(5000), out.PersonalBestTotalAfter)
	assert.True(t, s.CanEnter(difficulty.Hard))
	assert.False(t, s.CanEnter(difficulty.Insane))

	out, err = s.Settle(difficulty.Normal, 7000)
	require.NoError(t, err)
	assert.True(t, out.IsNewRecord)
	assert.Equal(t, difficulty.None, out.UnlockedTier)
	assert.Equal(t, int64(12000), out.PersonalBestTotalAfter)
}

func TestSettle_EqualScoreIsNotARecord(t *testing.T) {
	s := newDemoStore(t)

	out, err := s.Settle(difficulty.Hard, 2_500_000)
	require.NoError(t, err)
	assert.False(t, out.IsNewRecord)
	assert.Equal(t, difficulty.None, out.UnlockedTier)
	assert.False(t, s.CanEnter(difficulty.Insane))
	assert.Equal(t, int64(12_450_999), out.PersonalBestTotalAfter)
}

func TestSettle_TerminalTierUnlocksNothing(t *testing.T) {
	s := newDemoStore(t)

	out, err := s.Settle(difficulty.Extreme, 10)
	require.NoError(t, err)
	assert.True(t, out.IsNewRecord)
	assert.Equal(t, difficulty.None, out.UnlockedTier)
}

func TestSettle_RejectsBadInput(t *testing.T) {
	s := newDemoStore(t)
	before := s.Snapshot()

	_, err := s.Settle("EASY", 10)
	assert.Equal(t, apperr.CodeUnknownTier, apperr.CodeOf(err))

	_, err = s.Settle(difficulty.Normal, -1)
	assert.Equal(t, apperr.CodeInvalidTierTransition, apperr.CodeOf(err))

	assert.Equal(t, before, s.Snapshot())
}

func TestSweep_GrantsRecordWithoutSettling(t *testing.T) {
	s, err := New(difficulty.Default(), Seed{
		Tickets:    1,
		MaxTickets: 3,
		BestScores: map[difficulty.ID]int64{difficulty.Hard: 2_500_000},
		Unlocked:   map[difficulty.ID]bool{difficulty.Hard: true},
	})
	require.NoError(t, err)

	r, err := s.Sweep(difficulty.Hard)
	require.NoError(t, err)
	assert.Equal(t, int64(2_500_000), r.Awarded)
	assert.Equal(t, 0, r.TicketsRemaining)
	assert.Equal(t, 0, s.Tickets())
	assert.Equal(t, int64(2_500_000), s.BestScore(difficulty.Hard))
	assert.False(t, s.CanEnter(difficulty.Insane))

	_, err = s.Sweep(difficulty.Hard)
	assert.ErrorIs(t, err, ErrInsufficientTickets)
}

func TestSweep_TwiceIsIdempotentOnRecords(t *testing.T) {
	s := newDemoStore(t)
	before := s.Snapshot()

	first, err := s.Sweep(difficulty.Normal)
	require.NoError(t, err)
	second, err := s.Sweep(difficulty.Normal)
	require.NoError(t, err)

	assert.Equal(t, first.Awarded, second.Awarded)
	after := s.Snapshot()
	assert.Equal(t, before.BestScores, after.BestScores)
	assert.Equal(t, before.Unlocked, after.Unlocked)
	assert.Equal(t, before.PersonalBestTotal, after.PersonalBestTotal)
	assert.Equal(t, before.Tickets-2, after.Tickets)
}

func TestSweep_NoClearRecordCheckedFirst(t *testing.T) {
	s, err := New(difficulty.Default(), Seed{Tickets: 0, MaxTickets: 3})
	require.NoError(t, err)

	_, err = s.Sweep(difficulty.Insane)
	assert.ErrorIs(t, err, ErrNoClearRecord)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newDemoStore(t)
	snap := s.Snapshot()
	snap.BestScores[difficulty.Normal] = 1
	snap.Unlocked[difficulty.Extreme] = true

	assert.Equal(t, int64(1_234_567), s.BestScore(difficulty.Normal))
	assert.False(t, s.CanEnter(difficulty.Extreme))
}

// Random operation sequences must keep every monotonic invariant.
func TestInvariants_RandomSequences(t *testing.T) {
	ids := difficulty.Order

	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s, err := New(difficulty.Default(), Seed{Tickets: 20, MaxTickets: 20})
		require.NoError(t, err)

		var recordSum int64
		prev := s.Snapshot()

		for step := 0; step < 200; step++ {
			id := ids[rng.Intn(len(ids))]
			switch rng.Intn(4) {
			case 0:
				_, _ = s.SelectTier(id)
			case 1:
				_, _ = s.ConsumeTicket()
			case 2:
				score := rng.Int63n(10_000)
				before := s.BestScore(id)
				out, err := s.Settle(id, score)
				require.NoError(t, err)
				assert.Equal(t, score > before, out.IsNewRecord)
				if out.IsNewRecord {
					recordSum += score
				}
			case 3:
				_, _ = s.Sweep(id)
			}

			cur := s.Snapshot()
			assert.GreaterOrEqual(t, cur.Tickets, 0)
			assert.LessOrEqual(t, cur.Tickets, prev.Tickets)
			assert.GreaterOrEqual(t, cur.PersonalBestTotal, prev.PersonalBestTotal)
			for _, tid := range ids {
				assert.GreaterOrEqual(t, cur.BestScores[tid], prev.BestScores[tid])
				if prev.Unlocked[tid] {
					assert.True(t, cur.Unlocked[tid])
				}
			}
			prev = cur
		}
		assert.Equal(t, recordSum, s.PersonalBestTotal())
	}
}
