package config

import (
	"strings"
	"time"

	"raidboss/internal/battle"
)

// Balance holds the ticket economy and battle clock tuning
type Balance struct {
	// Ticket economy
	StartTickets int `yaml:"start_tickets" json:"start_tickets" env:"START_TICKETS"`
	MaxTickets   int `yaml:"max_tickets" json:"max_tickets" env:"MAX_TICKETS"`

	// Battle clock
	Step  time.Duration `yaml:"step" json:"step" env:"TICK_STEP"`
	Limit time.Duration `yaml:"limit" json:"limit" env:"BATTLE_LIMIT"`

	// Damage band, per second
	DPSMin float64 `yaml:"dps_min" json:"dps_min" env:"DPS_MIN"`
	DPSMax float64 `yaml:"dps_max" json:"dps_max" env:"DPS_MAX"`
}

// Default returns the default balance configuration
func Default() Balance {
	r := battle.DefaultRules()
	return Balance{
		StartTickets: 3,
		MaxTickets:   3,
		Step:         r.Step,
		Limit:        r.Limit,
		DPSMin:       r.DPSMin,
		DPSMax:       r.DPSMax,
	}
}

// Casual gives more tickets and a longer clock
func Casual() Balance {
	cfg := Default()
	cfg.StartTickets = 5
	cfg.MaxTickets = 5
	cfg.Limit = 30 * time.Second
	return cfg
}

// Hard returns a tighter balance for experienced players
func Hard() Balance {
	cfg := Default()
	cfg.StartTickets = 2
	cfg.MaxTickets = 2
	cfg.Limit = 12 * time.Second
	cfg.DPSMin = 12_000_000
	cfg.DPSMax = 90_000_000
	return cfg
}

// Preset looks up a named balance preset.
func Preset(name string) (Balance, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default", "normal":
		return Default(), true
	case "casual":
		return Casual(), true
	case "hard":
		return Hard(), true
	default:
		return Balance{}, false
	}
}

// Rules converts the clock and damage tuning for the battle package.
func (b Balance) Rules() battle.Rules {
	return battle.Rules{
		Step:   b.Step,
		Limit:  b.Limit,
		DPSMin: b.DPSMin,
		DPSMax: b.DPSMax,
	}
}

func (b *Balance) ApplyDefaults() {
	d := Default()
	if b.MaxTickets == 0 {
		b.MaxTickets = d.MaxTickets
	}
	if b.StartTickets == 0 {
		b.StartTickets = b.MaxTickets
	}
	if b.Step == 0 {
		b.Step = d.Step
	}
	if b.Limit == 0 {
		b.Limit = d.Limit
	}
	if b.DPSMin == 0 && b.DPSMax == 0 {
		b.DPSMin = d.DPSMin
		b.DPSMax = d.DPSMax
	}
}
