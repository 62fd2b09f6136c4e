package core

// Status is the qualitative budget bucket derived from spent vs goal.
type Status string

const (
	StatusNoGoal   Status = "no-goal"
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

// BudgetStatus compares spending against one configured goal.
// Derived on demand, never persisted.
type BudgetStatus struct {
	Goal       Money
	Spent      Money
	Remaining  Money
	Percentage float64 // spent/goal*100, 0 when no goal is set
	Status     Status
}

// StatusFor classifies spending against a goal. A zero goal means no goal
// was configured, not a zero-spending target. The cut points are exact:
// below 80% is ok, 80% up to (but excluding) 100% is a warning, 100% and
// above is exceeded.
func StatusFor(spent, goal Money) Status {
	if goal.Cents == 0 {
		return StatusNoGoal
	}
	pct := float64(spent.Cents) / float64(goal.Cents) * 100
	switch {
	case pct < 80:
		return StatusOK
	case pct < 100:
		return StatusWarning
	default:
		return StatusExceeded
	}
}

// CompareWithGoal builds the full BudgetStatus for one goal.
func CompareWithGoal(spent, goal Money) BudgetStatus {
	st := BudgetStatus{
		Goal:      goal,
		Spent:     spent,
		Remaining: Money{Cents: goal.Cents - spent.Cents},
		Status:    StatusFor(spent, goal),
	}
	if goal.Cents > 0 {
		st.Percentage = float64(spent.Cents) / float64(goal.Cents) * 100
	}
	return st
}
