package battle

import (
	"fmt"
	"time"

	"raidboss/internal/apperr"
)

// Rules fixes the clock and the damage distribution of an encounter.
type Rules struct {
	// Step is the simulated time advanced by one Tick.
	Step time.Duration `json:"step"`
	// Limit is the wall-clock budget of the encounter.
	Limit time.Duration `json:"limit"`
	// Damage per second is drawn uniformly from [DPSMin, DPSMax).
	DPSMin float64 `json:"dps_min"`
	DPSMax float64 `json:"dps_max"`
}

// DefaultRules runs 180 ticks of 100ms. The damage band averages roughly six
// percent of a NORMAL boss per tick.
func DefaultRules() Rules {
	return Rules{
		Step:   100 * time.Millisecond,
		Limit:  18 * time.Second,
		DPSMin: 18_000_000,
		DPSMax: 108_000_000,
	}
}

func (r Rules) Validate() error {
	switch {
	case r.Step <= 0:
		return apperr.New(apperr.CodeInvalidConfig, "battle step must be positive")
	case r.Limit < r.Step:
		return apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("battle limit %s shorter than one step %s", r.Limit, r.Step))
	case r.DPSMin < 0:
		return apperr.New(apperr.CodeInvalidConfig, "dps min must not be negative")
	case r.DPSMax < r.DPSMin:
		return apperr.New(apperr.CodeInvalidConfig, "dps max below dps min")
	}
	return nil
}

// Ticks is the number of steps a session lasts if the boss never falls.
func (r Rules) Ticks() int {
	n := int(r.Limit / r.Step)
	if r.Limit%r.Step != 0 {
		n++
	}
	return n
}
