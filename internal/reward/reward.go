// Package reward holds the event's rank payouts and the personal-best score
// milestones a player claims once each.
package reward

import (
	"fmt"
	"sort"
	"strconv"

	"raidboss/internal/apperr"
)

var ErrUnavailable = apperr.New(apperr.CodeRewardUnavailable, "reward unavailable")

// RankBracket pays Items to every final rank in [MinRank, MaxRank]. MaxRank 0
// means open-ended.
type RankBracket struct {
	MinRank int      `json:"min_rank" yaml:"min_rank"`
	MaxRank int      `json:"max_rank,omitempty" yaml:"max_rank"`
	Items   []string `json:"items" yaml:"items"`
}

func (b RankBracket) Contains(rank int) bool {
	return rank >= b.MinRank && (b.MaxRank == 0 || rank <= b.MaxRank)
}

// Label renders the bracket the way the lobby lists it: "1", "2-3", "101+".
func (b RankBracket) Label() string {
	switch {
	case b.MaxRank == 0:
		return strconv.Itoa(b.MinRank) + "+"
	case b.MaxRank == b.MinRank:
		return strconv.Itoa(b.MinRank)
	default:
		return fmt.Sprintf("%d-%d", b.MinRank, b.MaxRank)
	}
}

func DefaultRankBrackets() []RankBracket {
	return []RankBracket{
		{MinRank: 1, MaxRank: 1, Items: []string{"Diamond x5000", "Legendary gear box x1", "Exclusive title"}},
		{MinRank: 2, MaxRank: 3, Items: []string{"Diamond x3000", "Epic gear box x1"}},
		{MinRank: 4, MaxRank: 10, Items: []string{"Diamond x1500", "Rare gear box x1"}},
		{MinRank: 11, MaxRank: 50, Items: []string{"Diamond x800", "Gold x100,000"}},
		{MinRank: 51, MaxRank: 100, Items: []string{"Diamond x500", "Gold x50,000"}},
		{MinRank: 101, Items: []string{"Gold x20,000"}},
	}
}

// ForRank returns the bracket paying rank, if any.
func ForRank(brackets []RankBracket, rank int) (RankBracket, bool) {
	if rank <= 0 {
		return RankBracket{}, false
	}
	for _, b := range brackets {
		if b.Contains(rank) {
			return b, true
		}
	}
	return RankBracket{}, false
}

// Milestone is a one-time payout for reaching Score in personal-best total.
type Milestone struct {
	Score   int64  `json:"score" yaml:"score"`
	Reward  string `json:"reward" yaml:"reward"`
	Claimed bool   `json:"claimed" yaml:"claimed"`
}

func DefaultMilestones() []Milestone {
	return []Milestone{
		{Score: 100_000, Reward: "Gold x10,000", Claimed: true},
		{Score: 500_000, Reward: "Diamond x100", Claimed: true},
		{Score: 1_000_000, Reward: "Premium summon ticket x1", Claimed: true},
		{Score: 5_000_000, Reward: "Epic enhance stone x5"},
		{Score: 10_000_000, Reward: "Legendary gear shard x10"},
		{Score: 50_000_000, Reward: "Exclusive avatar frame"},
	}
}

// MilestoneStatus is a milestone as seen against a personal-best total.
type MilestoneStatus struct {
	Milestone
	Reached   bool `json:"reached"`
	Claimable bool `json:"claimable"`
}

// Track is the claim ledger for a milestone table. Not safe for concurrent use.
type Track struct {
	milestones []Milestone
}

// NewTrack copies ms sorted by score; duplicate scores are rejected.
func NewTrack(ms []Milestone) (*Track, error) {
	out := make([]Milestone, len(ms))
	copy(out, ms)
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	for i := range out {
		if out[i].Score <= 0 {
			return nil, apperr.New(apperr.CodeInvalidConfig, "milestone score must be positive")
		}
		if i > 0 && out[i].Score == out[i-1].Score {
			return nil, apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("duplicate milestone %d", out[i].Score))
		}
	}
	return &Track{milestones: out}, nil
}

// Status lists every milestone against total.
func (t *Track) Status(total int64) []MilestoneStatus {
	out := make([]MilestoneStatus, 0, len(t.milestones))
	for _, m := range t.milestones {
		reached := total >= m.Score
		out = append(out, MilestoneStatus{
			Milestone: m,
			Reached:   reached,
			Claimable: reached && !m.Claimed,
		})
	}
	return out
}

// Claimable counts what ClaimAll would pay right now.
func (t *Track) Claimable(total int64) int {
	n := 0
	for _, m := range t.milestones {
		if !m.Claimed && total >= m.Score {
			n++
		}
	}
	return n
}

// Claim pays the milestone at score.
func (t *Track) Claim(score, total int64) (Milestone, error) {
	for i := range t.milestones {
		m := &t.milestones[i]
		if m.Score != score {
			continue
		}
		if m.Claimed || total < m.Score {
			return Milestone{}, apperr.WithMetadata(apperr.CodeRewardUnavailable, "milestone not claimable",
				map[string]string{"score": strconv.FormatInt(score, 10)})
		}
		m.Claimed = true
		return *m, nil
	}
	return Milestone{}, apperr.WithMetadata(apperr.CodeRewardUnavailable, "no such milestone",
		map[string]string{"score": strconv.FormatInt(score, 10)})
}

// ClaimAll pays every reached, unclaimed milestone and returns them in score
// order. Nothing to claim is ErrUnavailable.
func (t *Track) ClaimAll(total int64) ([]Milestone, error) {
	var paid []Milestone
	for i := range t.milestones {
		m := &t.milestones[i]
		if m.Claimed || total < m.Score {
			continue
		}
		m.Claimed = true
		paid = append(paid, *m)
	}
	if len(paid) == 0 {
		return nil, ErrUnavailable
	}
	return paid, nil
}
