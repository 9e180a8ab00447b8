// Package game is the presentation-facing facade over the raid core. An Engine
// owns one progression store and at most one live battle session, and records
// telemetry and run history as battles settle. It is not safe for concurrent
// use; hosts serialise calls.
package game

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"raidboss/internal/apperr"
	"raidboss/internal/battle"
	"raidboss/internal/config"
	"raidboss/internal/difficulty"
	"raidboss/internal/jsonlog"
	"raidboss/internal/leaderboard"
	"raidboss/internal/progression"
	"raidboss/internal/reward"
	"raidboss/internal/telemetry"
)

var ErrTierLocked = apperr.New(apperr.CodeTierLocked, "tier is locked")

type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

type Options struct {
	Catalog    *difficulty.Catalog
	Seed       progression.Seed
	Rules      battle.Rules
	Rand       battle.Rand
	Clock      Clock
	Events     telemetry.Repository
	History    HistoryRepository
	Board      *leaderboard.Board
	Milestones []reward.Milestone
	Brackets   []reward.RankBracket
	Logger     *log.Logger
}

type Engine struct {
	catalog    *difficulty.Catalog
	store      *progression.Store
	rules      battle.Rules
	rng        battle.Rand
	clock      Clock
	events     telemetry.Repository
	history    HistoryRepository
	board      *leaderboard.Board
	milestones *reward.Track
	brackets   []reward.RankBracket
	logger     *log.Logger

	session        *battle.Session
	lastSettlement *Settlement
	lastSweep      *progression.SweepReceipt
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		opts.Catalog = difficulty.Default()
	}
	if opts.Rules == (battle.Rules{}) {
		opts.Rules = battle.DefaultRules()
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Rand == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		opts.Rand = rand.New(rand.NewSource(seed))
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Events == nil {
		events := telemetry.NewMemoryRepository()
		events.Now = opts.Clock.Now
		opts.Events = events
	}
	if opts.History == nil {
		opts.History = NewMemoryHistoryRepo(100)
	}
	if opts.Milestones == nil {
		opts.Milestones = reward.DefaultMilestones()
	}
	if opts.Brackets == nil {
		opts.Brackets = reward.DefaultRankBrackets()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	store, err := progression.New(opts.Catalog, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("progression: %w", err)
	}
	track, err := reward.NewTrack(opts.Milestones)
	if err != nil {
		return nil, fmt.Errorf("milestones: %w", err)
	}
	if opts.Board == nil {
		opts.Board = leaderboard.New(nil, leaderboard.Entry{Name: "Player", Score: store.PersonalBestTotal()})
	}

	return &Engine{
		catalog:    opts.Catalog,
		store:      store,
		rules:      opts.Rules,
		rng:        opts.Rand,
		clock:      opts.Clock,
		events:     opts.Events,
		history:    opts.History,
		board:      opts.Board,
		milestones: track,
		brackets:   opts.Brackets,
		logger:     opts.Logger,
	}, nil
}

// FromConfig wires an engine from a loaded configuration. A zero cfg.Seed
// draws a fresh damage seed.
func FromConfig(cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		return nil, apperr.New(apperr.CodeInvalidConfig, "config is required")
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	seed := cfg.ProgressionSeed()

	opts.Catalog = cat
	opts.Seed = seed
	opts.Rules = cfg.Rules()
	if opts.Rand == nil && cfg.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(cfg.Seed))
	}
	if opts.Board == nil {
		opts.Board = leaderboard.New(leaderboard.Demo(),
			leaderboard.DemoMe(cfg.Player.Name, cfg.Player.Rank, seed.PersonalBestTotal))
	}
	return NewEngine(opts)
}

func (e *Engine) Catalog() *difficulty.Catalog { return e.catalog }

func (e *Engine) Rules() battle.Rules { return e.rules }

// Running reports whether a battle session is live.
func (e *Engine) Running() bool { return e.session != nil }

func (e *Engine) SelectTier(id difficulty.ID) (progression.Selection, error) {
	sel, err := e.store.SelectTier(id)
	if err != nil {
		return progression.Selection{}, err
	}
	e.record(telemetry.EventTierSelected, telemetry.EventMetadata{"tier": string(id), "unlocked": sel.Unlocked})
	return sel, nil
}

// Navigate moves the carousel one tier, wrapping at both ends.
func (e *Engine) Navigate(d Direction) (progression.Selection, error) {
	cur := e.store.Selected()
	var (
		id  difficulty.ID
		err error
	)
	switch d {
	case Prev:
		id, err = e.catalog.Prev(cur)
	case Next:
		id, err = e.catalog.Next(cur)
	default:
		return progression.Selection{}, apperr.WithMetadata(apperr.CodeBadRequest,
			fmt.Sprintf("unknown direction %q", d), map[string]string{"direction": string(d)})
	}
	if err != nil {
		return progression.Selection{}, err
	}
	return e.SelectTier(id)
}

// EnterBattle spends a ticket and opens a session on the selected tier.
func (e *Engine) EnterBattle() (battle.View, error) {
	if e.session != nil {
		err := apperr.WithMetadata(apperr.CodeInvalidTierTransition, "a battle is already running",
			map[string]string{"session_id": e.session.ID().String()})
		e.logDefect("enter_battle", err)
		return battle.View{}, err
	}
	id := e.store.Selected()
	if !e.store.CanEnter(id) {
		return battle.View{}, apperr.WithMetadata(apperr.CodeTierLocked, ErrTierLocked.Message,
			map[string]string{"tier": string(id)})
	}
	tier, err := e.catalog.Get(id)
	if err != nil {
		return battle.View{}, err
	}

	s, err := battle.Start(tier, e.store, e.rules)
	if err != nil {
		return battle.View{}, err
	}
	e.session = s
	e.lastSettlement = nil
	e.lastSweep = nil

	e.record(telemetry.EventBattleStarted, telemetry.EventMetadata{
		"tier":       string(id),
		"session_id": s.ID().String(),
		"tickets":    e.store.Tickets(),
	})
	jsonlog.Info(e.logger, "battle_started", map[string]any{
		"tier":       id,
		"session_id": s.ID().String(),
		"tickets":    e.store.Tickets(),
	})
	return s.View(), nil
}

// TickResult carries the step outcome and, on the step that ended the battle,
// its settlement.
type TickResult struct {
	Outcome    battle.TickOutcome `json:"outcome"`
	Settlement *Settlement        `json:"settlement,omitempty"`
}

// Tick advances the live session one step and settles it when it ends.
func (e *Engine) Tick() (TickResult, error) {
	if e.session == nil {
		err := apperr.Wrap(apperr.CodeInvalidTierTransition, "no battle is running", battle.ErrInvalidTransition)
		return TickResult{}, err
	}
	out, err := e.session.Tick(e.rng)
	if err != nil {
		e.logDefect("tick", err)
		return TickResult{}, err
	}
	if !out.Status.Terminal() {
		return TickResult{Outcome: out}, nil
	}

	st, err := e.settle()
	if err != nil {
		return TickResult{}, err
	}
	return TickResult{Outcome: out, Settlement: st}, nil
}

func (e *Engine) settle() (*Settlement, error) {
	s := e.session
	res, err := s.Settle(e.store)
	if err != nil {
		e.logDefect("settle", err)
		return nil, err
	}
	e.session = nil

	st := settlementOf(res, e.clock.Now())
	e.lastSettlement = &st
	if err := e.history.Add(st); err != nil {
		jsonlog.Error(e.logger, "history_add_failed", map[string]any{"error": err.Error()})
	}
	me := e.board.SetScore(res.Outcome.PersonalBestTotalAfter)

	tier := string(res.Tier)
	e.record(telemetry.EventBattleFinished, telemetry.EventMetadata{
		"tier":        tier,
		"session_id":  res.SessionID.String(),
		"status":      string(res.Status),
		"final_score": res.FinalScore,
		"ticks":       res.Ticks,
		"revives":     res.Revives,
	})
	if res.Outcome.IsNewRecord {
		e.record(telemetry.EventRecordSet, telemetry.EventMetadata{
			"tier":          tier,
			"score":         res.FinalScore,
			"previous_best": res.Outcome.PreviousBest,
		})
	}
	if res.Outcome.UnlockedTier != difficulty.None {
		e.record(telemetry.EventTierUnlocked, telemetry.EventMetadata{
			"tier": string(res.Outcome.UnlockedTier),
			"from": tier,
		})
	}

	jsonlog.Info(e.logger, "battle_settled", map[string]any{
		"tier":                tier,
		"session_id":          res.SessionID.String(),
		"status":              res.Status,
		"final_score":         res.FinalScore,
		"new_record":          res.Outcome.IsNewRecord,
		"unlocked":            res.Outcome.UnlockedTier,
		"personal_best_total": res.Outcome.PersonalBestTotalAfter,
		"rank":                me.Rank,
	})
	return &st, nil
}

// Forfeit abandons the live session. The ticket stays spent.
func (e *Engine) Forfeit() error {
	if e.session == nil {
		return apperr.Wrap(apperr.CodeInvalidTierTransition, "no battle is running", battle.ErrInvalidTransition)
	}
	s := e.session
	if err := s.Forfeit(); err != nil {
		e.logDefect("forfeit", err)
		return err
	}
	e.session = nil
	e.record(telemetry.EventBattleForfeited, telemetry.EventMetadata{
		"tier":       string(s.Tier().ID),
		"session_id": s.ID().String(),
	})
	jsonlog.Info(e.logger, "battle_forfeited", map[string]any{
		"tier":       s.Tier().ID,
		"session_id": s.ID().String(),
	})
	return nil
}

// Sweep re-claims the selected tier's record for one ticket. Not available
// while a battle is running.
func (e *Engine) Sweep() (progression.SweepReceipt, error) {
	if e.session != nil {
		err := apperr.New(apperr.CodeInvalidTierTransition, "cannot sweep during a battle")
		e.logDefect("sweep", err)
		return progression.SweepReceipt{}, err
	}
	receipt, err := e.store.Sweep(e.store.Selected())
	if err != nil {
		return progression.SweepReceipt{}, err
	}
	e.lastSweep = &receipt
	e.record(telemetry.EventSweepCompleted, telemetry.EventMetadata{
		"tier":    string(receipt.Tier),
		"awarded": receipt.Awarded,
		"tickets": receipt.TicketsRemaining,
	})
	jsonlog.Info(e.logger, "sweep_completed", map[string]any{
		"tier":    receipt.Tier,
		"awarded": receipt.Awarded,
		"tickets": receipt.TicketsRemaining,
	})
	return receipt, nil
}

func (e *Engine) Snapshot() Snapshot {
	st := e.store.Snapshot()
	snap := Snapshot{
		SelectedTier:      st.Selected,
		TicketsRemaining:  st.Tickets,
		MaxTickets:        st.MaxTickets,
		PerTierBest:       st.BestScores,
		PerTierUnlocked:   st.Unlocked,
		PersonalBestTotal: st.PersonalBestTotal,
		EventEnded:        st.Tickets == 0 && e.session == nil,
	}
	if e.session != nil {
		v := e.session.View()
		snap.Session = &v
	}
	if e.lastSettlement != nil {
		cp := *e.lastSettlement
		snap.LastSettlement = &cp
	}
	if e.lastSweep != nil {
		cp := *e.lastSweep
		snap.LastSweep = &cp
	}
	return snap
}

// Leaderboard returns the top n rows with the player spliced in, and the
// player's own row.
func (e *Engine) Leaderboard(n int) ([]leaderboard.Entry, leaderboard.Entry) {
	return e.board.Top(n), e.board.Me()
}

// Rewards is the rewards tab: the rank payout bracket and the milestone track.
type Rewards struct {
	Rank              int                      `json:"rank"`
	Bracket           *reward.RankBracket      `json:"bracket,omitempty"`
	Brackets          []reward.RankBracket     `json:"brackets"`
	PersonalBestTotal int64                    `json:"personal_best_total"`
	Milestones        []reward.MilestoneStatus `json:"milestones"`
	Claimable         int                      `json:"claimable"`
}

func (e *Engine) Rewards() Rewards {
	total := e.store.PersonalBestTotal()
	rank := e.board.Me().Rank
	r := Rewards{
		Rank:              rank,
		Brackets:          e.brackets,
		PersonalBestTotal: total,
		Milestones:        e.milestones.Status(total),
		Claimable:         e.milestones.Claimable(total),
	}
	if b, ok := reward.ForRank(e.brackets, rank); ok {
		r.Bracket = &b
	}
	return r
}

// ClaimRewards pays every reached milestone that has not been claimed yet.
func (e *Engine) ClaimRewards() ([]reward.Milestone, error) {
	paid, err := e.milestones.ClaimAll(e.store.PersonalBestTotal())
	if err != nil {
		return nil, err
	}
	for _, m := range paid {
		e.record(telemetry.EventRewardClaimed, telemetry.EventMetadata{"score": m.Score, "reward": m.Reward})
	}
	return paid, nil
}

func (e *Engine) History(limit int) ([]Settlement, error) {
	return e.history.List(limit)
}

// Stats aggregates telemetry recorded at or after since.
func (e *Engine) Stats(since time.Time) (telemetry.Stats, error) {
	events, err := e.events.GetEvents(since, nil)
	if err != nil {
		return telemetry.Stats{}, err
	}
	return telemetry.CalculateStats(events, since)
}

func (e *Engine) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if err := e.events.RecordEvent(t, md); err != nil {
		jsonlog.Error(e.logger, "telemetry_record_failed", map[string]any{
			"event": t,
			"error": err.Error(),
		})
	}
}

func (e *Engine) logDefect(op string, err error) {
	jsonlog.Error(e.logger, "invalid_transition", map[string]any{
		"op":    op,
		"code":  apperr.CodeOf(err),
		"error": err.Error(),
	})
}
