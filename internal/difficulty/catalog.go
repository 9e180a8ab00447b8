// Package difficulty holds the read-only tier catalog: score multipliers, boss
// health, the unlock chain and the carousel order.
package difficulty

import (
	"fmt"

	"raidboss/internal/apperr"
)

var ErrUnknownTier = apperr.New(apperr.CodeUnknownTier, "unknown tier")

// Catalog is an immutable lookup table. The zero value is not usable; build one
// with New or Default.
type Catalog struct {
	tiers map[ID]Tier
	order []ID
}

// New validates tiers and builds a catalog. Every id in Order must appear once and
// the Next links must walk Order front to back, ending at exactly one terminal tier.
func New(tiers []Tier) (*Catalog, error) {
	byID := make(map[ID]Tier, len(tiers))
	for _, t := range tiers {
		if _, ok := Parse(string(t.ID)); !ok {
			return nil, invalid("tier %q is not a known difficulty", t.ID)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, invalid("tier %s listed twice", t.ID)
		}
		if t.ScoreMultiplier <= 0 {
			return nil, invalid("tier %s: score multiplier must be positive", t.ID)
		}
		if t.BossMaxHealth <= 0 {
			return nil, invalid("tier %s: boss max health must be positive", t.ID)
		}
		byID[t.ID] = t.clone()
	}
	if len(byID) != len(Order) {
		return nil, invalid("catalog needs %d tiers, got %d", len(Order), len(byID))
	}

	for i, id := range Order {
		want := None
		if i+1 < len(Order) {
			want = Order[i+1]
		}
		if got := byID[id].Next; got != want {
			return nil, invalid("tier %s: successor must be %q, got %q", id, want, got)
		}
	}

	return &Catalog{
		tiers: byID,
		order: append([]ID(nil), Order...),
	}, nil
}

// Default returns the catalog built from DefaultTiers.
func Default() *Catalog {
	c, err := New(DefaultTiers())
	if err != nil {
		panic(err)
	}
	return c
}

func invalid(format string, args ...any) error {
	return apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf(format, args...))
}

// Get returns a copy of the tier.
func (c *Catalog) Get(id ID) (Tier, error) {
	t, ok := c.tiers[id]
	if !ok {
		return Tier{}, apperr.WithMetadata(apperr.CodeUnknownTier, fmt.Sprintf("unknown tier %q", id), map[string]string{"tier": string(id)})
	}
	return t.clone(), nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id ID) bool {
	_, ok := c.tiers[id]
	return ok
}

// Successor returns the tier unlocked by a record on id.
func (c *Catalog) Successor(id ID) (ID, bool) {
	t, ok := c.tiers[id]
	if !ok || t.Next == None {
		return None, false
	}
	return t.Next, true
}

// All returns the ids in carousel order.
func (c *Catalog) All() []ID {
	return append([]ID(nil), c.order...)
}

// Tiers returns every tier in carousel order.
func (c *Catalog) Tiers() []Tier {
	out := make([]Tier, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tiers[id].clone())
	}
	return out
}

func (c *Catalog) index(id ID) int {
	for i, o := range c.order {
		if o == id {
			return i
		}
	}
	return -1
}

// Prev wraps from the first tier to the last.
func (c *Catalog) Prev(id ID) (ID, error) {
	i := c.index(id)
	if i < 0 {
		return None, ErrUnknownTier
	}
	n := len(c.order)
	return c.order[(i-1+n)%n], nil
}

// Next wraps from the last tier to the first.
func (c *Catalog) Next(id ID) (ID, error) {
	i := c.index(id)
	if i < 0 {
		return None, ErrUnknownTier
	}
	return c.order[(i+1)%len(c.order)], nil
}
