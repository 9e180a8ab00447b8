// Package battle simulates one timed encounter against a boss.
//
// A Session is created by Start, advanced by Tick from an external scheduler and
// closed by exactly one of Settle (after VICTORY or TIMEOUT) or Forfeit (while
// RUNNING). Any other call on a closed or still-running session fails with
// ErrInvalidTransition. Sessions carry their own tier and clock, so several can
// coexist; none of this is safe for concurrent use.
package battle

import (
	"fmt"
	"math"
	"time"

	"raidboss/internal/apperr"
	"raidboss/internal/difficulty"
	"raidboss/internal/progression"

	"github.com/google/uuid"
)

var ErrInvalidTransition = apperr.New(apperr.CodeInvalidTierTransition, "invalid session transition")

type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusVictory Status = "VICTORY"
	StatusTimeout Status = "TIMEOUT"
)

func (s Status) Terminal() bool {
	return s == StatusVictory || s == StatusTimeout
}

const fullHealth = 100.0

// Rand is the damage source; *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Ledger is the progression side a session pays into and settles against.
type Ledger interface {
	ConsumeTicket() (int, error)
	Settle(id difficulty.ID, finalScore int64) (progression.Outcome, error)
}

type Session struct {
	id    uuid.UUID
	tier  difficulty.Tier
	rules Rules

	remaining time.Duration
	damage    float64
	health    float64
	status    Status
	ticks     int
	revives   int

	settled   bool
	forfeited bool
}

// TickOutcome is the state after one step.
type TickOutcome struct {
	Tick              int           `json:"tick"`
	Damage            float64       `json:"damage"`
	Health            float64       `json:"health"`
	AccumulatedDamage float64       `json:"accumulated_damage"`
	RemainingTime     time.Duration `json:"remaining_time"`
	LiveScore         int64         `json:"live_score"`
	Status            Status        `json:"status"`
	Revived           bool          `json:"revived"`
}

// View is a read-only projection of a session.
type View struct {
	ID                uuid.UUID     `json:"id"`
	Tier              difficulty.ID `json:"tier"`
	Health            float64       `json:"health"`
	RemainingTime     time.Duration `json:"remaining_time"`
	AccumulatedDamage float64       `json:"accumulated_damage"`
	LiveScore         int64         `json:"live_score"`
	Status            Status        `json:"status"`
	Ticks             int           `json:"ticks"`
	Revives           int           `json:"revives"`
}

// FinalResult joins the session's terminal facts with the settlement outcome.
type FinalResult struct {
	SessionID         uuid.UUID           `json:"session_id"`
	Tier              difficulty.ID       `json:"tier"`
	Status            Status              `json:"status"`
	AccumulatedDamage float64             `json:"accumulated_damage"`
	DamagePercent     float64             `json:"damage_percent"`
	FinalScore        int64               `json:"final_score"`
	Ticks             int                 `json:"ticks"`
	Revives           int                 `json:"revives"`
	Outcome           progression.Outcome `json:"outcome"`
}

// BossDefeated reports a VICTORY finish.
func (r FinalResult) BossDefeated() bool { return r.Status == StatusVictory }

// Start spends one ticket from the ledger and opens a session on tier.
func Start(tier difficulty.Tier, ledger Ledger, rules Rules) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if tier.BossMaxHealth <= 0 || tier.ScoreMultiplier <= 0 {
		return nil, apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("tier %s is not playable", tier.ID))
	}
	if _, err := ledger.ConsumeTicket(); err != nil {
		return nil, err
	}
	return &Session{
		id:        uuid.New(),
		tier:      tier,
		rules:     rules,
		remaining: rules.Limit,
		health:    fullHealth,
		status:    StatusRunning,
	}, nil
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Tier() difficulty.Tier { return s.tier }

func (s *Session) Status() Status { return s.status }

// Closed reports whether the session was settled or forfeited.
func (s *Session) Closed() bool { return s.settled || s.forfeited }

func (s *Session) liveScore() int64 {
	return score(s.damage, s.tier.ScoreMultiplier)
}

func score(damage, multiplier float64) int64 {
	return int64(math.Floor(damage * multiplier))
}

// Tick advances the encounter by one step.
func (s *Session) Tick(rng Rand) (TickOutcome, error) {
	if s.Closed() || s.status != StatusRunning {
		return TickOutcome{}, s.transitionErr("tick")
	}

	dps := s.rules.DPSMin + rng.Float64()*(s.rules.DPSMax-s.rules.DPSMin)
	dmg := dps * s.rules.Step.Seconds()

	s.ticks++
	s.damage += dmg
	s.health -= dmg * 100 / float64(s.tier.BossMaxHealth)

	revived := false
	if s.health <= 0 {
		if s.tier.RevivesOnZeroHealth {
			s.health = fullHealth
			s.revives++
			revived = true
		} else {
			s.health = 0
			s.status = StatusVictory
		}
	}

	s.remaining -= s.rules.Step
	if s.remaining <= 0 {
		s.remaining = 0
		if s.status == StatusRunning {
			s.status = StatusTimeout
		}
	}

	return TickOutcome{
		Tick:              s.ticks,
		Damage:            dmg,
		Health:            s.health,
		AccumulatedDamage: s.damage,
		RemainingTime:     s.remaining,
		LiveScore:         s.liveScore(),
		Status:            s.status,
		Revived:           revived,
	}, nil
}

// Settle scores a finished session and records it in the ledger. It succeeds at
// most once.
func (s *Session) Settle(ledger Ledger) (FinalResult, error) {
	if s.Closed() || !s.status.Terminal() {
		return FinalResult{}, s.transitionErr("settle")
	}

	final := s.liveScore()
	out, err := ledger.Settle(s.tier.ID, final)
	if err != nil {
		return FinalResult{}, fmt.Errorf("settle session %s: %w", s.id, err)
	}
	s.settled = true

	return FinalResult{
		SessionID:         s.id,
		Tier:              s.tier.ID,
		Status:            s.status,
		AccumulatedDamage: s.damage,
		DamagePercent:     s.damage / float64(s.tier.BossMaxHealth) * 100,
		FinalScore:        final,
		Ticks:             s.ticks,
		Revives:           s.revives,
		Outcome:           out,
	}, nil
}

// Forfeit abandons a running session. Nothing is settled and the spent ticket is
// not returned.
func (s *Session) Forfeit() error {
	if s.Closed() || s.status != StatusRunning {
		return s.transitionErr("forfeit")
	}
	s.forfeited = true
	return nil
}

// View projects the current state.
func (s *Session) View() View {
	return View{
		ID:                s.id,
		Tier:              s.tier.ID,
		Health:            s.health,
		RemainingTime:     s.remaining,
		AccumulatedDamage: s.damage,
		LiveScore:         s.liveScore(),
		Status:            s.status,
		Ticks:             s.ticks,
		Revives:           s.revives,
	}
}

func (s *Session) transitionErr(op string) error {
	state := string(s.status)
	switch {
	case s.settled:
		state = "SETTLED"
	case s.forfeited:
		state = "FORFEITED"
	}
	return apperr.WithMetadata(apperr.CodeInvalidTierTransition,
		fmt.Sprintf("cannot %s session in state %s", op, state),
		map[string]string{"session": s.id.String(), "op": op, "state": state})
}
