package core

import "time"

// CategoryPoint is one slice of the categorical chart series.
type CategoryPoint struct {
	Name  string
	Value Money
	Count int
}

// DailyPoint is one point of the per-day trend series.
type DailyPoint struct {
	Date  time.Time
	Total Money
}

// Summary holds the headline numbers for a month.
type Summary struct {
	TotalSpent    Money
	ExpenseCount  int
	DailyAverage  Money
	DaysRemaining int
	GoalsStatus   Status // no-goal when goal settings are unavailable
}

// GoalComparison is the budget-status tree for one month.
type GoalComparison struct {
	Total      BudgetStatus
	ByCategory map[string]BudgetStatus
}

// DashboardSnapshot is a fully derived, point-in-time analytics result.
// It is regenerated from the ledger on every request and holds no state
// of its own. Goals is nil when the goal configuration is unavailable.
type DashboardSnapshot struct {
	GeneratedAt   time.Time
	Summary       Summary
	CategoryChart []CategoryPoint
	DailyChart    []DailyPoint
	Recent        []ExpenseRecord
	Insights      []string
	Goals         *GoalComparison
	Message       string // set only when the period has no expenses
}
