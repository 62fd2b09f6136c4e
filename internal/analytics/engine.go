// Package analytics derives the monthly dashboard snapshot from the
// ledger and the configured goals.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/goals"
	"gastobot/internal/ledger"
)

const recentLimit = 10

const emptyMonthMessage = "Nenhum gasto registrado este mês."

// GoalLoader yields the current goal settings. Implemented by
// *goals.Store.
type GoalLoader interface {
	Load() (goals.Settings, error)
}

// Engine computes dashboard snapshots. Snapshots are pure functions of
// the ledger contents, the goal settings and the asOf instant; calling
// Snapshot never mutates anything.
type Engine struct {
	ledger ledger.Ledger
	goals  GoalLoader
}

func NewEngine(l ledger.Ledger, g GoalLoader) *Engine {
	return &Engine{ledger: l, goals: g}
}

// Snapshot builds the dashboard for the calendar month containing asOf.
// Ledger failures surface; missing or broken goal settings degrade the
// snapshot instead of failing it.
func (e *Engine) Snapshot(ctx context.Context, asOf time.Time) (core.DashboardSnapshot, error) {
	records, err := ledger.CurrentMonthRecords(ctx, e.ledger, asOf)
	if err != nil {
		return core.DashboardSnapshot{}, fmt.Errorf("read month records: %w", err)
	}

	_, lastDay := core.MonthBounds(asOf)
	daysRemaining := lastDay.Day() - asOf.Day()

	snapshot := core.DashboardSnapshot{
		GeneratedAt: asOf,
		Summary: core.Summary{
			DaysRemaining: daysRemaining,
			GoalsStatus:   core.StatusNoGoal,
		},
	}

	if len(records) == 0 {
		snapshot.Message = emptyMonthMessage
		return snapshot, nil
	}

	total := core.Money{}
	for _, rec := range records {
		total.Cents += rec.Value.Cents
	}

	categoryChart := categoryTotals(records)
	comparison := e.compareWithGoals(ctx, total, categoryChart)

	snapshot.Summary = core.Summary{
		TotalSpent:    total,
		ExpenseCount:  len(records),
		DailyAverage:  core.Money{Cents: total.Cents / int64(asOf.Day())},
		DaysRemaining: daysRemaining,
		GoalsStatus:   core.StatusNoGoal,
	}
	if comparison != nil {
		snapshot.Summary.GoalsStatus = comparison.Total.Status
	}

	snapshot.CategoryChart = categoryChart
	snapshot.DailyChart = dailyTotals(records)
	snapshot.Recent = recentExpenses(records)
	snapshot.Insights = buildInsights(records, total, categoryChart, comparison, asOf, lastDay)
	snapshot.Goals = comparison

	return snapshot, nil
}

func (e *Engine) compareWithGoals(ctx context.Context, total core.Money, chart []core.CategoryPoint) *core.GoalComparison {
	if e.goals == nil {
		return nil
	}

	settings, err := e.goals.Load()
	if errors.Is(err, goals.ErrUnavailable) {
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Goal settings unreadable, skipping goal comparison", "error", err)
		return nil
	}

	cfg, err := settings.GoalConfig()
	if err != nil {
		slog.WarnContext(ctx, "Goal settings invalid, skipping goal comparison", "error", err)
		return nil
	}

	spentByCategory := make(map[string]core.Money, len(chart))
	for _, point := range chart {
		spentByCategory[point.Name] = point.Value
	}

	comparison := &core.GoalComparison{
		Total:      core.CompareWithGoal(total, cfg.TotalMonthly),
		ByCategory: make(map[string]core.BudgetStatus, len(cfg.ByCategory)),
	}
	for category, goal := range cfg.ByCategory {
		comparison.ByCategory[category] = core.CompareWithGoal(spentByCategory[category], goal)
	}
	return comparison
}

// categoryTotals aggregates per category, keeping first-encountered
// order so repeated snapshots agree.
func categoryTotals(records []core.ExpenseRecord) []core.CategoryPoint {
	index := make(map[string]int)
	var points []core.CategoryPoint

	for _, rec := range records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(points)
			index[rec.Category] = i
			points = append(points, core.CategoryPoint{Name: rec.Category})
		}
		points[i].Value.Cents += rec.Value.Cents
		points[i].Count++
	}
	return points
}

func dailyTotals(records []core.ExpenseRecord) []core.DailyPoint {
	totals := make(map[time.Time]int64)
	for _, rec := range records {
		totals[core.DateOnly(rec.Date)] += rec.Value.Cents
	}

	points := make([]core.DailyPoint, 0, len(totals))
	for date, cents := range totals {
		points = append(points, core.DailyPoint{Date: date, Total: core.Money{Cents: cents}})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// recentExpenses returns up to ten records, newest date first; records
// on the same date keep their append order.
func recentExpenses(records []core.ExpenseRecord) []core.ExpenseRecord {
	recent := make([]core.ExpenseRecord, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return recent
}

func buildInsights(records []core.ExpenseRecord, total core.Money, chart []core.CategoryPoint, comparison *core.GoalComparison, asOf, lastDay time.Time) []string {
	insights := []string{
		fmt.Sprintf("Total gasto no mês: %s", total.BRL()),
	}

	max := records[0]
	for _, rec := range records[1:] {
		if rec.Value.Cents > max.Value.Cents {
			max = rec
		}
	}
	insights = append(insights, fmt.Sprintf("Maior gasto: %s em %s", max.Value.BRL(), max.Description))

	top := chart[0]
	for _, point := range chart[1:] {
		if point.Value.Cents > top.Value.Cents {
			top = point
		}
	}
	insights = append(insights, fmt.Sprintf("Categoria com mais gastos: %s (%s)", top.Name, top.Value.BRL()))

	dailyAverage := core.Money{Cents: total.Cents / int64(asOf.Day())}
	insights = append(insights, fmt.Sprintf("Média diária: %s", dailyAverage.BRL()))

	if comparison != nil {
		if comparison.Total.Goal.Cents > 0 {
			daysInMonth := int64(lastDay.Day())
			projected := core.Money{Cents: total.Cents * daysInMonth / int64(asOf.Day())}
			if projected.Cents > comparison.Total.Goal.Cents {
				insights = append(insights, fmt.Sprintf("📊 Projeção para o mês: %s (acima da meta de %s)",
					projected.BRL(), comparison.Total.Goal.BRL()))
			} else {
				insights = append(insights, fmt.Sprintf("📊 Projeção para o mês: %s (dentro da meta)",
					projected.BRL()))
			}
		}

		var overBudget []string
		for _, category := range sortedCategories(comparison.ByCategory) {
			if comparison.ByCategory[category].Status == core.StatusExceeded {
				overBudget = append(overBudget, category)
			}
		}
		if len(overBudget) > 0 {
			insights = append(insights, fmt.Sprintf("⚠️ %d categoria(s) ultrapassaram o limite: %s",
				len(overBudget), strings.Join(overBudget, ", ")))
		} else {
			insights = append(insights, "✅ Todas as categorias estão dentro do limite")
		}
	}

	return insights
}

// sortedCategories keeps the over-budget listing deterministic.
func sortedCategories(byCategory map[string]core.BudgetStatus) []string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
