package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/ledger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "gastos.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want, err := s.Append(ctx, ledger.AppendParams{
		Value:       core.Money{Cents: 5000},
		Category:    "alimentação",
		Description: "almoço",
		Date:        time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := s.AllRecords(ctx)
	if err != nil {
		t.Fatalf("AllRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Value != want.Value || got.Category != want.Category || !got.Date.Equal(want.Date) {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, want)
	}
	if got.MonthPeriod != "2026-03" {
		t.Errorf("month period = %q", got.MonthPeriod)
	}
}

func TestFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []struct {
		day      int
		category string
	}{
		{1, "lazer"},
		{15, "Lazer"},
		{28, "saúde"},
	}
	for _, sd := range seed {
		_, err := s.Append(ctx, ledger.AppendParams{
			Value:    core.Money{Cents: 100},
			Category: sd.category,
			Date:     time.Date(2026, time.March, sd.day, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	period, err := s.RecordsInPeriod(ctx,
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RecordsInPeriod failed: %v", err)
	}
	if len(period) != 2 {
		t.Fatalf("expected 2 records in period, got %d", len(period))
	}

	// Categories are lowercased on append, so both lazer rows match.
	lazer, err := s.RecordsByCategory(ctx, "LAZER")
	if err != nil {
		t.Fatalf("RecordsByCategory failed: %v", err)
	}
	if len(lazer) != 2 {
		t.Fatalf("expected 2 lazer records, got %d", len(lazer))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.db")
	ctx := context.Background()

	s1, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s1.Append(ctx, ledger.AppendParams{Value: core.Money{Cents: 100}, Category: "outros"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	records, err := s2.AllRecords(ctx)
	if err != nil {
		t.Fatalf("AllRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("reopen lost data: got %d records", len(records))
	}
}
