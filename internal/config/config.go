package config

import (
	"fmt"
	"os"

	"raidboss/internal/apperr"
	"raidboss/internal/battle"
	"raidboss/internal/difficulty"
	"raidboss/internal/progression"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version  string       `yaml:"version" json:"version"`
	Seed     int64        `yaml:"seed" json:"seed"`
	Balance  Balance      `yaml:"balance" json:"balance"`
	Player   Player       `yaml:"player" json:"player"`
	Progress Progress     `yaml:"progress" json:"progress"`
	Tiers    []TierConfig `yaml:"tiers" json:"tiers,omitempty"`
}

type Player struct {
	Name string `yaml:"name" json:"name"`
	Rank int    `yaml:"rank" json:"rank"`
}

// Progress is the starting record book. Keys are tier ids.
type Progress struct {
	Selected          string           `yaml:"selected" json:"selected"`
	BestScores        map[string]int64 `yaml:"best_scores" json:"best_scores"`
	Unlocked          map[string]bool  `yaml:"unlocked" json:"unlocked"`
	PersonalBestTotal int64            `yaml:"personal_best_total" json:"personal_best_total"`
}

type TierConfig struct {
	ID                  string             `yaml:"id" json:"id"`
	ScoreMultiplier     float64            `yaml:"score_multiplier" json:"score_multiplier"`
	BossMaxHealth       int64              `yaml:"boss_max_health" json:"boss_max_health"`
	RecommendedPower    int                `yaml:"recommended_power" json:"recommended_power"`
	Traits              []string           `yaml:"traits" json:"traits"`
	RewardHints         []string           `yaml:"reward_hints" json:"reward_hints"`
	Skills              []difficulty.Skill `yaml:"skills" json:"skills"`
	RevivesOnZeroHealth bool               `yaml:"revives_on_zero_health" json:"revives_on_zero_health"`
	Next                string             `yaml:"next" json:"next"`
}

// Demo is the built-in configuration: default balance, default tiers and the
// event's demo record book.
func Demo() *Config {
	seed := progression.DemoSeed()
	c := &Config{
		Version: "1",
		Balance: Default(),
		Player:  Player{Name: "Daniel", Rank: 42},
		Progress: Progress{
			Selected:          string(seed.Selected),
			BestScores:        map[string]int64{},
			Unlocked:          map[string]bool{},
			PersonalBestTotal: seed.PersonalBestTotal,
		},
	}
	for id, v := range seed.BestScores {
		c.Progress.BestScores[string(id)] = v
	}
	for id, v := range seed.Unlocked {
		c.Progress.Unlocked[string(id)] = v
	}
	return c
}

func (c *Config) ApplyDefaults() {
	c.Balance.ApplyDefaults()
	if c.Player.Name == "" {
		c.Player.Name = "Player"
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidConfig, "decode "+path, err)
	}
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate builds every derived value once so bad files fail at load time.
func (c *Config) Validate() error {
	if err := c.Rules().Validate(); err != nil {
		return err
	}
	cat, err := c.Catalog()
	if err != nil {
		return err
	}
	seed, err := c.parseProgress()
	if err != nil {
		return err
	}
	_, err = progression.New(cat, seed)
	return err
}

// Catalog builds the tier catalog, falling back to the shipped tiers.
func (c *Config) Catalog() (*difficulty.Catalog, error) {
	if len(c.Tiers) == 0 {
		return difficulty.New(difficulty.DefaultTiers())
	}
	tiers := make([]difficulty.Tier, 0, len(c.Tiers))
	for _, tc := range c.Tiers {
		id, ok := difficulty.Parse(tc.ID)
		if !ok {
			return nil, apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("unknown tier id %q", tc.ID))
		}
		next := difficulty.None
		if tc.Next != "" {
			if next, ok = difficulty.Parse(tc.Next); !ok {
				return nil, apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("tier %s: unknown successor %q", id, tc.Next))
			}
		}
		tiers = append(tiers, difficulty.Tier{
			ID:                  id,
			ScoreMultiplier:     tc.ScoreMultiplier,
			BossMaxHealth:       tc.BossMaxHealth,
			RecommendedPower:    tc.RecommendedPower,
			Traits:              tc.Traits,
			RewardHints:         tc.RewardHints,
			Skills:              tc.Skills,
			RevivesOnZeroHealth: tc.RevivesOnZeroHealth,
			Next:                next,
		})
	}
	return difficulty.New(tiers)
}

func (c *Config) Rules() battle.Rules { return c.Balance.Rules() }

// ProgressionSeed converts the record book; unknown tier keys are dropped here
// and reported by Validate.
func (c *Config) ProgressionSeed() progression.Seed {
	seed, _ := c.parseProgress()
	return seed
}

func (c *Config) parseProgress() (progression.Seed, error) {
	seed := progression.Seed{
		Tickets:           c.Balance.StartTickets,
		MaxTickets:        c.Balance.MaxTickets,
		BestScores:        map[difficulty.ID]int64{},
		Unlocked:          map[difficulty.ID]bool{},
		PersonalBestTotal: c.Progress.PersonalBestTotal,
	}
	var firstErr error
	bad := func(key string) {
		if firstErr == nil {
			firstErr = apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("progress: unknown tier %q", key))
		}
	}
	if c.Progress.Selected != "" {
		if id, ok := difficulty.Parse(c.Progress.Selected); ok {
			seed.Selected = id
		} else {
			bad(c.Progress.Selected)
		}
	}
	for k, v := range c.Progress.BestScores {
		if id, ok := difficulty.Parse(k); ok {
			seed.BestScores[id] = v
		} else {
			bad(k)
		}
	}
	for k, v := range c.Progress.Unlocked {
		if id, ok := difficulty.Parse(k); ok {
			seed.Unlocked[id] = v
		} else {
			bad(k)
		}
	}
	return seed, firstErr
}
