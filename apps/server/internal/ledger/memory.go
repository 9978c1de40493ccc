package ledger

import (
	"context"
	"sync"
)

// MemoryService keeps the most recent runs of each account in process.
type MemoryService struct {
	mu          sync.Mutex
	recentLimit int
	runs        map[uint64][]RunRecord // newest first
	crises      map[string][]CrisisRecord
}

func NewMemoryService(recentLimit int) *MemoryService {
	return &MemoryService{
		recentLimit: recentLimit,
		runs:        make(map[uint64][]RunRecord),
		crises:      make(map[string][]CrisisRecord),
	}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) RecordCrisis(rec CrisisRecord) {
	if rec.RunID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crises[rec.RunID] = append(s.crises[rec.RunID], rec)
}

func (s *MemoryService) RecordRun(rec RunRecord) {
	if rec.RunID == "" || rec.AccountID == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := append([]RunRecord{rec}, s.runs[rec.AccountID]...)
	if s.recentLimit > 0 && len(runs) > s.recentLimit {
		for _, old := range runs[s.recentLimit:] {
			delete(s.crises, old.RunID)
		}
		runs = runs[:s.recentLimit]
	}
	s.runs[rec.AccountID] = runs
}

func (s *MemoryService) ListRecent(_ context.Context, accountID uint64, limit int) ([]RunRecord, error) {
	limit = clampLimit(limit)
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := s.runs[accountID]
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return append([]RunRecord{}, runs...), nil
}

func (s *MemoryService) GetRun(_ context.Context, accountID uint64, runID string) (*RunDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.runs[accountID] {
		if r.RunID == runID {
			return &RunDetail{Run: r, Crises: append([]CrisisRecord{}, s.crises[runID]...)}, nil
		}
	}
	return nil, ErrNotFound
}
