package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"raidboss/internal/battle"
	"raidboss/internal/config"
	"raidboss/internal/difficulty"
	"raidboss/internal/game"
	"raidboss/internal/progression"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "raidboss-ops:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "simulate":
		return cmdSimulate(args[1:], out)
	case "balance":
		return cmdBalance(args[1:], out)
	case "check-config":
		return cmdCheckConfig(args[1:], out)
	default:
		return errUsage
	}
}

type commonFlags struct {
	config *string
	preset *string
	seed   *int64
}

func addCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fs.String("config", "", "config file (default: built-in demo config)"),
		preset: fs.String("preset", "", "balance preset: default, casual, hard"),
		seed:   fs.Int64("seed", 0, "damage seed (0 draws a random one)"),
	}
}

func (c commonFlags) load() (*config.Config, int64, error) {
	cfg := config.Demo()
	if *c.config != "" {
		loaded, err := config.Load(*c.config)
		if err != nil {
			return nil, 0, err
		}
		cfg = loaded
	}
	if *c.preset != "" {
		b, ok := config.Preset(*c.preset)
		if !ok {
			return nil, 0, fmt.Errorf("unknown preset %q", *c.preset)
		}
		cfg.Balance = b
	}
	seed := *c.seed
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		s, err := game.NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = s
	}
	return cfg, seed, nil
}

func tiersFromFlag(cat *difficulty.Catalog, raw string) ([]difficulty.ID, error) {
	if raw == "" || raw == "all" {
		return cat.All(), nil
	}
	id, ok := difficulty.Parse(raw)
	if !ok {
		return nil, fmt.Errorf("unknown tier %q", raw)
	}
	return []difficulty.ID{id}, nil
}

// cmdSimulate plays one full battle per tier and prints the result sheet.
func cmdSimulate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(out)
	common := addCommon(fs)
	tierFlag := fs.String("tier", "all", "tier to simulate, or all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, seed, err := common.load()
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}
	ids, err := tiersFromFlag(cat, *tierFlag)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	rng := rand.New(rand.NewSource(seed))
	p.Fprintf(out, "seed: %d\n", seed)
	for _, id := range ids {
		tier, err := cat.Get(id)
		if err != nil {
			return err
		}
		store, err := progression.New(cat, progression.FreshSeed(1))
		if err != nil {
			return err
		}
		res, err := battle.Simulate(tier, store, cfg.Rules(), rng)
		if err != nil {
			return err
		}
		defeated := "NO"
		if res.BossDefeated() {
			defeated = "YES"
		}
		p.Fprintf(out, "=== Simulating difficulty: %s ===\n", id)
		p.Fprintf(out, "Damage: %d\n", int64(res.AccumulatedDamage))
		p.Fprintf(out, "Damage %%: %.2f%%\n", res.DamagePercent)
		p.Fprintf(out, "Multiplier: %.1f\n", tier.ScoreMultiplier)
		p.Fprintf(out, "Final Score: %d\n", res.FinalScore)
		p.Fprintf(out, "Boss Defeated: %s\n", defeated)
		if res.Revives > 0 {
			p.Fprintf(out, "Revives: %d\n", res.Revives)
		}
		p.Fprintf(out, "Next unlock: %s\n", unlockLabel(res.Outcome.UnlockedTier))
		fmt.Fprintln(out, "---")
	}
	return nil
}

func unlockLabel(id difficulty.ID) string {
	if id == difficulty.None {
		return "-"
	}
	return string(id)
}

type tierSummary struct {
	Tier      difficulty.ID
	Runs      int
	Victories int
	Revives   int
	MinScore  int64
	MaxScore  int64
	SumScore  int64
}

func (s tierSummary) mean() int64 {
	if s.Runs == 0 {
		return 0
	}
	return s.SumScore / int64(s.Runs)
}

// cmdBalance runs many battles per tier in parallel and prints aggregates, for
// tuning the damage band against boss health.
func cmdBalance(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	fs.SetOutput(out)
	common := addCommon(fs)
	runs := fs.Int("runs", 200, "battles per tier")
	tierFlag := fs.String("tier", "all", "tier to run, or all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runs <= 0 {
		return fmt.Errorf("runs must be positive")
	}

	cfg, seed, err := common.load()
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}
	ids, err := tiersFromFlag(cat, *tierFlag)
	if err != nil {
		return err
	}

	summaries, err := balance(cat, cfg.Rules(), ids, *runs, seed)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "seed: %d, runs per tier: %d\n", seed, *runs)
	p.Fprintf(out, "%-8s %8s %14s %14s %14s %8s\n", "TIER", "WIN%", "MIN", "MEAN", "MAX", "REVIVES")
	for _, s := range summaries {
		p.Fprintf(out, "%-8s %7.1f%% %14d %14d %14d %8d\n",
			s.Tier, 100*float64(s.Victories)/float64(s.Runs), s.MinScore, s.mean(), s.MaxScore, s.Revives)
	}
	return nil
}

// balance gives every tier its own rand stream derived from seed, so results do
// not depend on goroutine scheduling.
func balance(cat *difficulty.Catalog, rules battle.Rules, ids []difficulty.ID, runs int, seed int64) ([]tierSummary, error) {
	out := make([]tierSummary, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			tier, err := cat.Get(id)
			if err != nil {
				return err
			}
			store, err := progression.New(cat, progression.FreshSeed(runs))
			if err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed + int64(i)))
			s := tierSummary{Tier: id}
			for n := 0; n < runs; n++ {
				res, err := battle.Simulate(tier, store, rules, rng)
				if err != nil {
					return fmt.Errorf("%s run %d: %w", id, n, err)
				}
				s.Runs++
				if res.BossDefeated() {
					s.Victories++
				}
				s.Revives += res.Revives
				s.SumScore += res.FinalScore
				if n == 0 || res.FinalScore < s.MinScore {
					s.MinScore = res.FinalScore
				}
				if res.FinalScore > s.MaxScore {
					s.MaxScore = res.FinalScore
				}
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// cmdCheckConfig validates a config file and prints its digest.
func cmdCheckConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check-config", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("config", "raidboss_config.yml", "config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(*path)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)

	seed := cfg.ProgressionSeed()
	p := message.NewPrinter(language.English)
	p.Fprintf(out, "config: %s\n", *path)
	p.Fprintf(out, "digest: %s\n", hex.EncodeToString(sum[:]))
	p.Fprintf(out, "tickets: %d/%d\n", seed.Tickets, seed.MaxTickets)
	p.Fprintf(out, "battle: %s in steps of %s\n", cfg.Balance.Limit, cfg.Balance.Step)
	p.Fprintf(out, "personal best: %d\n", seed.PersonalBestTotal)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  raidboss-ops simulate     [--tier all|NORMAL|...] [--seed N] [--preset hard] [--config file]")
	fmt.Fprintln(w, "  raidboss-ops balance      [--runs 200] [--tier all] [--seed N] [--preset hard] [--config file]")
	fmt.Fprintln(w, "  raidboss-ops check-config [--config raidboss_config.yml]")
}
