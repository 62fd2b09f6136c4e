// Package memory implements the ledger in process memory, for tests and
// throwaway runs.
package memory

import (
	"context"
	"sync"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	records []core.ExpenseRecord
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Append(ctx context.Context, p ledger.AppendParams) (core.ExpenseRecord, error) {
	record, err := ledger.Normalize(p, s.now())
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return core.ExpenseRecord{}, err
	}
	s.records = append(s.records, record)
	return record, nil
}

func (s *Store) AllRecords(ctx context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]core.ExpenseRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store) RecordsInPeriod(ctx context.Context, start, end time.Time) ([]core.ExpenseRecord, error) {
	records, err := s.AllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.FilterPeriod(records, start, end), nil
}

func (s *Store) RecordsByCategory(ctx context.Context, category string) ([]core.ExpenseRecord, error) {
	records, err := s.AllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.FilterCategory(records, category), nil
}
