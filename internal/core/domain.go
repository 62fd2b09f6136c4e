package core

import (
	"errors"
	"strings"
	"time"
)

// OtherCategory is the sentinel category for expenses that match nothing.
const OtherCategory = "outros"

const (
	DefaultPaymentMethod      = "não especificado"
	DefaultRegistrationMethod = "chat"
)

type (
	// Money is an amount in currency cents.
	Money struct {
		Cents int64
	}

	// ParsedExpense is the result of interpreting one free-text message.
	ParsedExpense struct {
		Value       Money
		Category    string
		Description string
	}

	// ExpenseRecord is a ParsedExpense as persisted by the ledger.
	// Records are created once by Append and never mutated; corrections
	// are new records.
	ExpenseRecord struct {
		Date               time.Time // calendar day, midnight UTC
		TimeOfDay          string    // HH:MM:SS
		MonthPeriod        string    // YYYY-MM, derived from Date
		Category           string
		Value              Money
		Description        string
		PaymentMethod      string
		Installment        bool
		Installments       int
		Tags               string
		Notes              string
		RegistrationMethod string
	}

	// GoalConfig holds the configured monthly spending ceilings.
	// A category absent from ByCategory has no goal set.
	GoalConfig struct {
		TotalMonthly Money
		ByCategory   map[string]Money
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrNegativeGoal  = errors.New("negative goal amount")
	ErrInvalidDate   = errors.New("invalid date")
)

func (p ParsedExpense) Validate() error {
	if err := p.Value.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (r ExpenseRecord) Validate() error {
	if err := r.Value.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (g GoalConfig) Validate() error {
	if g.TotalMonthly.Cents < 0 {
		return ErrNegativeGoal
	}
	for cat, goal := range g.ByCategory {
		if strings.TrimSpace(cat) == "" {
			return ErrEmptyCategory
		}
		if goal.Cents < 0 {
			return ErrNegativeGoal
		}
	}
	return nil
}

// Goal returns the configured goal for a category, zero when none is set.
func (g GoalConfig) Goal(category string) Money {
	return g.ByCategory[category]
}

// DateOnly truncates t to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthPeriod formats t as YYYY-MM.
func MonthPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// MonthBounds returns the first and last calendar day of t's month.
func MonthBounds(t time.Time) (first, last time.Time) {
	y, m, _ := t.Date()
	first = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}
