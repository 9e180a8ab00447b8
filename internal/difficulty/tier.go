package difficulty

import "strings"

// ID names one difficulty tier.
type ID string

const (
	Normal  ID = "NORMAL"
	Hard    ID = "HARD"
	Insane  ID = "INSANE"
	Extreme ID = "EXTREME"
)

// None marks the absence of a tier (e.g. no successor).
const None ID = ""

// Order is the fixed carousel and progression order.
var Order = []ID{Normal, Hard, Insane, Extreme}

// Parse accepts any casing of a known tier id.
func Parse(s string) (ID, bool) {
	id := ID(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Order {
		if id == known {
			return id, true
		}
	}
	return None, false
}

func (id ID) String() string { return string(id) }

// Skill is descriptive boss-detail data.
type Skill struct {
	Name        string `json:"name" yaml:"name"`
	Level       string `json:"level" yaml:"level"`
	Kind        string `json:"kind" yaml:"kind"`
	Cooldown    string `json:"cooldown" yaml:"cooldown"`
	Range       string `json:"range" yaml:"range"`
	Description string `json:"description" yaml:"description"`
}

// Tier is the immutable catalog entry for one difficulty.
type Tier struct {
	ID                  ID       `json:"id"`
	ScoreMultiplier     float64  `json:"score_multiplier"`
	BossMaxHealth       int64    `json:"boss_max_health"`
	RecommendedPower    int      `json:"recommended_power"`
	Traits              []string `json:"traits,omitempty"`
	RewardHints         []string `json:"reward_hints,omitempty"`
	Skills              []Skill  `json:"skills,omitempty"`
	RevivesOnZeroHealth bool     `json:"revives_on_zero_health"`
	Next                ID       `json:"next,omitempty"`
}

func (t Tier) clone() Tier {
	out := t
	out.Traits = append([]string(nil), t.Traits...)
	out.RewardHints = append([]string(nil), t.RewardHints...)
	out.Skills = append([]Skill(nil), t.Skills...)
	return out
}

// DefaultTiers returns the shipped tier table.
func DefaultTiers() []Tier {
	return []Tier{
		{
			ID:               Normal,
			ScoreMultiplier:  1.0,
			BossMaxHealth:    100_000_000,
			RecommendedPower: 10_000,
			Traits:           []string{"No special attributes", "Standard defense"},
			RewardHints:      []string{"Gold x500", "EXP x200"},
			Skills: []Skill{
				{Name: "Heavy Strike", Level: "1", Kind: "active", Cooldown: "5s", Range: "3m", Description: "Deals 150% physical damage to a single target in front."},
				{Name: "War Cry", Level: "1", Kind: "passive", Cooldown: "-", Range: "-", Description: "Raises own attack by 10% when the battle starts."},
			},
			Next: Hard,
		},
		{
			ID:               Hard,
			ScoreMultiplier:  1.5,
			BossMaxHealth:    150_000_000,
			RecommendedPower: 35_000,
			Traits:           []string{"Attack up", "Defense up"},
			RewardHints:      []string{"Gold x1,500", "EXP x600"},
			Skills: []Skill{
				{Name: "Heavy Strike II", Level: "3", Kind: "active", Cooldown: "5s", Range: "3m", Description: "Deals 200% physical damage to a single target and stuns for 1 second."},
				{Name: "Quake Wave", Level: "2", Kind: "active", Cooldown: "12s", Range: "8m", Description: "Deals 120% area damage around itself and lowers target defense."},
				{Name: "War Cry II", Level: "3", Kind: "passive", Cooldown: "-", Range: "-", Description: "Raises own attack by 20% when the battle starts."},
			},
			Next: Insane,
		},
		{
			ID:                  Insane,
			ScoreMultiplier:     2.5,
			BossMaxHealth:       250_000_000,
			RecommendedPower:    80_000,
			Traits:              []string{"Revives (score race)", "Physical resistance up"},
			RewardHints:         []string{"Gold x5,000", "EXP x2,000"},
			RevivesOnZeroHealth: true,
			Skills: []Skill{
				{Name: "Annihilating Blow", Level: "5", Kind: "ultimate", Cooldown: "20s", Range: "Global", Description: "Deals 300% true damage to all enemies and executes targets under 30% health."},
				{Name: "Undying", Level: "5", Kind: "passive", Cooldown: "60s", Range: "-", Description: "Survives lethal damage and restores 50% health once per battle."},
				{Name: "Aura of Dread", Level: "4", Kind: "passive", Cooldown: "-", Range: "10m", Description: "Nearby enemies attack 30% slower."},
				{Name: "Flurry", Level: "4", Kind: "active", Cooldown: "8s", Range: "3m", Description: "Attacks three times in quick succession for 80% damage each."},
			},
			Next: Extreme,
		},
		{
			ID:               Extreme,
			ScoreMultiplier:  4.0,
			BossMaxHealth:    400_000_000,
			RecommendedPower: 150_000,
			Traits:           []string{"Instant-kill attacks", "Magic immunity"},
			RewardHints:      []string{"Gold x15,000", "EXP x10,000"},
			Skills: []Skill{
				{Name: "Void Devour", Level: "MAX", Kind: "ultimate", Cooldown: "30s", Range: "Global", Description: "Devours every summon on the field, healing 10% and gaining 5% stats per summon."},
				{Name: "Dimensional Collapse", Level: "MAX", Kind: "active", Cooldown: "15s", Range: "15m", Description: "Opens a black hole that pulls enemies in for 100% magic damage per second."},
				{Name: "Divine Shield", Level: "MAX", Kind: "passive", Cooldown: "20s", Range: "-", Description: "Every 20 seconds gains a shield absorbing 500% attack; immune to control while shielded."},
				{Name: "Final Hour", Level: "MAX", Kind: "passive", Cooldown: "-", Range: "-", Description: "After 180 seconds deals 10% max-health true damage to all enemies every second."},
			},
			Next: None,
		},
	}
}
