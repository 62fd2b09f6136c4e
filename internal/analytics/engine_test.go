package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/goals"
	"gastobot/internal/ledger"
	"gastobot/internal/ledger/memory"
)

var asOf = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

type stubGoals struct {
	settings goals.Settings
	err      error
}

func (s stubGoals) Load() (goals.Settings, error) {
	return s.settings, s.err
}

func goalSettings(total string, byCategory map[string]string) goals.Settings {
	byCat := make(map[string]json.Number, len(byCategory))
	for k, v := range byCategory {
		byCat[k] = json.Number(v)
	}
	return goals.Settings{
		Profile:    "teste",
		Categories: []goals.CategoryGroup{{Name: "alimentação", Keywords: []string{"almoço"}}},
		Goals: goals.GoalAmounts{
			TotalMonthly: json.Number(total),
			ByCategory:   byCat,
		},
	}
}

func seed(t *testing.T, store ledger.Ledger, day int, cents int64, category, description string) {
	t.Helper()
	_, err := store.Append(context.Background(), ledger.AppendParams{
		Value:       core.Money{Cents: cents},
		Category:    category,
		Description: description,
		Date:        time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed append failed: %v", err)
	}
}

func TestSnapshotEmptyMonth(t *testing.T) {
	engine := NewEngine(memory.New(), stubGoals{settings: goalSettings("1000", nil)})

	snapshot, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snapshot.Message != "Nenhum gasto registrado este mês." {
		t.Errorf("message = %q", snapshot.Message)
	}
	if len(snapshot.Insights) != 0 || len(snapshot.CategoryChart) != 0 || len(snapshot.Recent) != 0 {
		t.Error("empty month must produce empty series and insights")
	}
	if snapshot.Summary.DaysRemaining != 16 {
		t.Errorf("days remaining = %d, want 16", snapshot.Summary.DaysRemaining)
	}
}

func TestSnapshotStatusBoundaries(t *testing.T) {
	// Goal of R$ 1000.00 = 100000 cents so the cut points land exactly.
	cases := []struct {
		name  string
		cents int64
		want  core.Status
	}{
		{"just under 80 percent", 79999, core.StatusOK},
		{"exactly 80 percent", 80000, core.StatusWarning},
		{"just under 100 percent", 99999, core.StatusWarning},
		{"exactly 100 percent", 100000, core.StatusExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.New()
			seed(t, store, 5, tc.cents, "alimentação", "mercado")

			engine := NewEngine(store, stubGoals{
				settings: goalSettings("1000", map[string]string{"alimentação": "1000"}),
			})
			snapshot, err := engine.Snapshot(context.Background(), asOf)
			if err != nil {
				t.Fatalf("Snapshot failed: %v", err)
			}

			if snapshot.Goals == nil {
				t.Fatal("goals comparison missing")
			}
			if got := snapshot.Goals.Total.Status; got != tc.want {
				t.Errorf("total status = %q, want %q", got, tc.want)
			}
			if got := snapshot.Goals.ByCategory["alimentação"].Status; got != tc.want {
				t.Errorf("category status = %q, want %q", got, tc.want)
			}
			if snapshot.Summary.GoalsStatus != tc.want {
				t.Errorf("summary status = %q, want %q", snapshot.Summary.GoalsStatus, tc.want)
			}
		})
	}
}

func TestSnapshotInsights(t *testing.T) {
	store := memory.New()
	seed(t, store, 3, 50000, "alimentação", "almoço")
	seed(t, store, 10, 30000, "transporte", "uber")

	engine := NewEngine(store, stubGoals{
		settings: goalSettings("1000", map[string]string{"alimentação": "400"}),
	})
	snapshot, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	want := []string{
		"Total gasto no mês: R$ 800.00",
		"Maior gasto: R$ 500.00 em almoço",
		"Categoria com mais gastos: alimentação (R$ 500.00)",
		"Média diária: R$ 53.33",
		"📊 Projeção para o mês: R$ 1653.33 (acima da meta de R$ 1000.00)",
		"⚠️ 1 categoria(s) ultrapassaram o limite: alimentação",
	}
	if !reflect.DeepEqual(snapshot.Insights, want) {
		t.Fatalf("insights mismatch:\ngot  %#v\nwant %#v", snapshot.Insights, want)
	}
}

func TestSnapshotAllWithinBudget(t *testing.T) {
	store := memory.New()
	seed(t, store, 3, 10000, "alimentação", "almoço")

	engine := NewEngine(store, stubGoals{
		settings: goalSettings("10000", map[string]string{"alimentação": "1000"}),
	})
	snapshot, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	found := false
	for _, insight := range snapshot.Insights {
		if insight == "✅ Todas as categorias estão dentro do limite" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected within-budget insight, got %v", snapshot.Insights)
	}
}

func TestSnapshotGoalsUnavailable(t *testing.T) {
	store := memory.New()
	seed(t, store, 3, 50000, "alimentação", "almoço")

	engine := NewEngine(store, stubGoals{err: goals.ErrUnavailable})
	snapshot, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("goal unavailability must not fail the snapshot: %v", err)
	}

	if snapshot.Goals != nil {
		t.Error("goals comparison should be nil when settings are unavailable")
	}
	if snapshot.Summary.GoalsStatus != core.StatusNoGoal {
		t.Errorf("summary status = %q, want no-goal", snapshot.Summary.GoalsStatus)
	}
	// Only the four goal-independent insights remain.
	if len(snapshot.Insights) != 4 {
		t.Fatalf("expected 4 insights without goals, got %v", snapshot.Insights)
	}
}

func TestSnapshotIgnoresOtherMonths(t *testing.T) {
	store := memory.New()
	seed(t, store, 3, 50000, "alimentação", "almoço")
	_, err := store.Append(context.Background(), ledger.AppendParams{
		Value:    core.Money{Cents: 99999},
		Category: "lazer",
		Date:     time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed append failed: %v", err)
	}

	engine := NewEngine(store, stubGoals{err: goals.ErrUnavailable})
	snapshot, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snapshot.Summary.ExpenseCount != 1 || snapshot.Summary.TotalSpent.Cents != 50000 {
		t.Fatalf("february record leaked into march snapshot: %+v", snapshot.Summary)
	}
}

func TestSnapshotRecentOrdering(t *testing.T) {
	store := memory.New()
	// Two per day across six days; twelve records total.
	for day := 1; day <= 6; day++ {
		seed(t, store, day, int64(day*100), "outros", "primeiro")
		seed(t, store, day, int64(day*100+1), "outros", "segundo")
	}

	engine := NewEngine(store, stubGoals{err: goals.ErrUnavailable})
	snapshot, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if len(snapshot.Recent) != 10 {
		t.Fatalf("recent should cap at 10, got %d", len(snapshot.Recent))
	}
	for i := 1; i < len(snapshot.Recent); i++ {
		if snapshot.Recent[i].Date.After(snapshot.Recent[i-1].Date) {
			t.Fatal("recent must be sorted newest date first")
		}
	}
	// Same-date records keep their append order.
	if snapshot.Recent[0].Description != "primeiro" || snapshot.Recent[1].Description != "segundo" {
		t.Fatalf("ties must keep append order: %q, %q",
			snapshot.Recent[0].Description, snapshot.Recent[1].Description)
	}
}

func TestSnapshotDailyChartAscending(t *testing.T) {
	store := memory.New()
	seed(t, store, 10, 100, "outros", "b")
	seed(t, store, 2, 100, "outros", "a")
	seed(t, store, 10, 100, "outros", "c")

	engine := NewEngine(store, stubGoals{err: goals.ErrUnavailable})
	snapshot, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if len(snapshot.DailyChart) != 2 {
		t.Fatalf("expected 2 daily points, got %d", len(snapshot.DailyChart))
	}
	if !snapshot.DailyChart[0].Date.Before(snapshot.DailyChart[1].Date) {
		t.Fatal("daily chart must be sorted by date ascending")
	}
	if snapshot.DailyChart[1].Total.Cents != 200 {
		t.Fatalf("same-day totals should aggregate, got %d", snapshot.DailyChart[1].Total.Cents)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	store := memory.New()
	seed(t, store, 3, 50000, "alimentação", "almoço")
	seed(t, store, 10, 30000, "transporte", "uber")

	engine := NewEngine(store, stubGoals{
		settings: goalSettings("1000", map[string]string{"alimentação": "400"}),
	})

	first, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("first snapshot failed: %v", err)
	}
	second, err := engine.Snapshot(context.Background(), asOf)
	if err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("snapshots for the same asOf must be identical")
	}
}

type failingLedger struct{}

func (failingLedger) Append(context.Context, ledger.AppendParams) (core.ExpenseRecord, error) {
	return core.ExpenseRecord{}, ledger.ErrStorage
}
func (failingLedger) AllRecords(context.Context) ([]core.ExpenseRecord, error) {
	return nil, ledger.ErrStorage
}
func (failingLedger) RecordsInPeriod(context.Context, time.Time, time.Time) ([]core.ExpenseRecord, error) {
	return nil, ledger.ErrStorage
}
func (failingLedger) RecordsByCategory(context.Context, string) ([]core.ExpenseRecord, error) {
	return nil, ledger.ErrStorage
}

func TestSnapshotStorageFailureSurfaces(t *testing.T) {
	engine := NewEngine(failingLedger{}, stubGoals{err: goals.ErrUnavailable})
	if _, err := engine.Snapshot(context.Background(), asOf); !errors.Is(err, ledger.ErrStorage) {
		t.Fatalf("storage failures must surface, got %v", err)
	}
}
