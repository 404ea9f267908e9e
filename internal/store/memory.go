package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

// MemoryStore keeps history in process. Used when no database is configured
// and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  []*Run
	usage []UsageRecord
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) RecordRun(ctx context.Context, run *Run, usage []UsageRecord) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	stored := cloneRun(run)
	stored.Persisted = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, stored)
	for _, u := range usage {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = run.CreatedAt
		}
		s.usage = append(s.usage, u)
	}
	return run.ID, nil
}

func (s *MemoryStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.runs {
		if r.ID == id {
			return cloneRun(r), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := s.runs
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}
	out := make([]*Run, len(runs))
	for i, r := range runs {
		out[i] = cloneRun(r)
	}
	return out, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = nil
	return nil
}

func (s *MemoryStore) UsageCounts(ctx context.Context) ([]MaterialUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	counts := map[string]int{}
	for _, u := range s.usage {
		counts[u.Material]++
	}
	s.mu.RUnlock()

	out := make([]MaterialUsage, 0, len(counts))
	for m, c := range counts {
		out = append(out, MaterialUsage{Material: m, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Material < out[j].Material
	})
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneRun(r *Run) *Run {
	c := *r
	c.Items = append([]scoring.RankedItem{}, r.Items...)
	c.AppliedRules = append([]string(nil), r.AppliedRules...)
	c.RelaxedRules = append([]string(nil), r.RelaxedRules...)
	c.Frontier = append([]string(nil), r.Frontier...)
	return &c
}
