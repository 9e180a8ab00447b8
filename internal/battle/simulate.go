package battle

import "raidboss/internal/difficulty"

// RunToEnd ticks s until it reaches a terminal status and returns the last
// outcome. It is the synchronous scheduler used by tools and tests.
func RunToEnd(s *Session, rng Rand) (TickOutcome, error) {
	for {
		out, err := s.Tick(rng)
		if err != nil {
			return TickOutcome{}, err
		}
		if out.Status.Terminal() {
			return out, nil
		}
	}
}

// Simulate starts, runs and settles one full session on tier.
func Simulate(tier difficulty.Tier, ledger Ledger, rules Rules, rng Rand) (FinalResult, error) {
	s, err := Start(tier, ledger, rules)
	if err != nil {
		return FinalResult{}, err
	}
	if _, err := RunToEnd(s, rng); err != nil {
		return FinalResult{}, err
	}
	return s.Settle(ledger)
}
