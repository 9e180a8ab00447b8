// Package leaderboard serves the event ranking: a fixed top list plus the
// player's own row, which moves as the personal-best total grows.
package leaderboard

import (
	"sort"
	"sync"
)

type Entry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	Score int64  `json:"score"`
	Team  []int  `json:"team"`
	IsMe  bool   `json:"is_me,omitempty"`
}

// Board is safe for concurrent use.
type Board struct {
	mu       sync.RWMutex
	top      []Entry
	me       Entry
	baseRank int
}

// New sorts top by score. me.Rank is the rank the player holds while outside
// the top list.
func New(top []Entry, me Entry) *Board {
	entries := make([]Entry, len(top))
	copy(entries, top)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	me.IsMe = true
	b := &Board{top: entries, me: me, baseRank: me.Rank}
	b.place()
	return b
}

func (b *Board) place() {
	ahead := 0
	for _, e := range b.top {
		if e.Score >= b.me.Score {
			ahead++
		}
	}
	if ahead < len(b.top) {
		b.me.Rank = ahead + 1
		return
	}
	b.me.Rank = b.baseRank
}

// SetScore moves the player's row to total and returns the new row.
func (b *Board) SetScore(total int64) Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.me.Score = total
	b.place()
	return b.me
}

func (b *Board) Me() Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.me
}

// Top returns up to n rows of the ranking with the player spliced in when
// they rank inside it. n <= 0 returns everything.
func (b *Board) Top(n int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, 0, len(b.top)+1)
	inserted := b.me.Rank > len(b.top)
	for _, e := range b.top {
		if !inserted && e.Rank >= b.me.Rank {
			out = append(out, b.me)
			inserted = true
		}
		if inserted && b.me.Rank <= len(b.top) {
			e.Rank++
		}
		out = append(out, e)
	}
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

var names = []string{
	"ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE", "TEN",
	"ELEVEN", "TWELVE", "THIRTEEN", "FOURTEEN", "FIFTEEN", "SIXTEEN", "SEVENTEEN", "EIGHTEEN", "NINETEEN", "TWENTY",
}

// Demo is the event's seeded top twenty.
func Demo() []Entry {
	scores := []int64{
		99_999_999, 88_500_000, 75_200_000, 65_000_000, 58_000_000,
		50_000_000, 45_000_000, 40_000_000, 35_000_000, 30_000_000,
		28_000_000, 26_000_000, 24_000_000, 22_000_000, 20_000_000,
		18_000_000, 16_000_000, 15_000_000, 14_000_000, 13_000_000,
	}
	levels := []int{85, 82, 79, 80, 78, 76, 75, 77, 74, 73, 72, 71, 70, 69, 68, 67, 66, 65, 64, 63}
	teams := [][]int{
		{1, 1, 1, 1}, {2, 2, 1, 1}, {3, 2, 2, 1}, {1, 2, 3, 1}, {2, 1, 1, 3},
		{3, 3, 2, 2}, {1, 1, 2, 2}, {2, 2, 3, 3}, {3, 1, 1, 1}, {1, 2, 2, 1},
		{2, 3, 1, 2}, {3, 1, 3, 3}, {1, 2, 1, 1}, {2, 3, 2, 2}, {3, 1, 3, 1},
		{1, 2, 1, 2}, {2, 3, 2, 3}, {3, 1, 3, 2}, {1, 2, 1, 3}, {2, 3, 2, 1},
	}
	out := make([]Entry, len(scores))
	for i := range scores {
		out[i] = Entry{
			Rank:  i + 1,
			Name:  "player_" + names[i],
			Level: levels[i],
			Score: scores[i],
			Team:  teams[i],
		}
	}
	return out
}

// DemoMe is the demo account's row.
func DemoMe(name string, rank int, total int64) Entry {
	return Entry{Rank: rank, Name: name, Level: 85, Score: total, Team: []int{1, 1, 1, 1}, IsMe: true}
}
