package game

import (
	"errors"
	"sync"
)

type MemoryHistoryRepo struct {
	mu   sync.RWMutex
	runs []Settlement
	max  int
}

// NewMemoryHistoryRepo keeps at most max runs; max <= 0 keeps everything.
func NewMemoryHistoryRepo(max int) *MemoryHistoryRepo {
	return &MemoryHistoryRepo{max: max}
}

func (r *MemoryHistoryRepo) Add(s Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Tier == "" {
		return errors.New("settlement has no tier")
	}
	r.runs = append(r.runs, s)
	if r.max > 0 && len(r.runs) > r.max {
		r.runs = append([]Settlement(nil), r.runs[len(r.runs)-r.max:]...)
	}
	return nil
}

// List returns up to limit of the most recent runs, newest last.
func (r *MemoryHistoryRepo) List(limit int) ([]Settlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && len(r.runs) > limit {
		start = len(r.runs) - limit
	}
	out := make([]Settlement, len(r.runs)-start)
	copy(out, r.runs[start:])
	return out, nil
}
