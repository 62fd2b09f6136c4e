// Package ledger defines the append-only expense ledger port and the
// normalization shared by its backends.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"gastobot/internal/core"
)

// ErrStorage wraps every backend read/write failure. Unlike interpreter
// misses, storage failures always surface to the caller.
var ErrStorage = errors.New("ledger storage failure")

// AppendParams carries the fields accepted by Append. Zero values are
// filled with defaults during normalization.
type AppendParams struct {
	Value              core.Money
	Category           string
	Description        string
	Date               time.Time // zero means the append day
	PaymentMethod      string
	Installment        bool
	Installments       int
	Tags               string
	Notes              string
	RegistrationMethod string
}

// Ledger is the durable, append-only store of expense records.
//
// Append must be durable before returning: a reader calling AllRecords
// immediately afterwards observes the new record, and a failed write
// leaves previously committed records untouched. Records come back in
// append order.
type Ledger interface {
	Append(ctx context.Context, p AppendParams) (core.ExpenseRecord, error)
	AllRecords(ctx context.Context) ([]core.ExpenseRecord, error)
	// RecordsInPeriod filters by record date, inclusive on both ends.
	RecordsInPeriod(ctx context.Context, start, end time.Time) ([]core.ExpenseRecord, error)
	// RecordsByCategory matches the category case-insensitively.
	RecordsByCategory(ctx context.Context, category string) ([]core.ExpenseRecord, error)
}

// CurrentMonthRecords returns the records between the first and last
// calendar day of asOf's month.
func CurrentMonthRecords(ctx context.Context, l Ledger, asOf time.Time) ([]core.ExpenseRecord, error) {
	first, last := core.MonthBounds(asOf)
	return l.RecordsInPeriod(ctx, first, last)
}

// Normalize validates params and builds the record that Append persists,
// filling defaults: date = append day, time-of-day = append time,
// month-period derived from the date, "outros" for a missing category.
func Normalize(p AppendParams, now time.Time) (core.ExpenseRecord, error) {
	if err := p.Value.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	date := p.Date
	if date.IsZero() {
		date = now
	}
	date = core.DateOnly(date)

	category := strings.ToLower(strings.TrimSpace(p.Category))
	if category == "" {
		category = core.OtherCategory
	}

	payment := strings.TrimSpace(p.PaymentMethod)
	if payment == "" {
		payment = core.DefaultPaymentMethod
	}

	method := strings.TrimSpace(p.RegistrationMethod)
	if method == "" {
		method = core.DefaultRegistrationMethod
	}

	installments := p.Installments
	if p.Installment && installments < 1 {
		installments = 1
	}

	return core.ExpenseRecord{
		Date:               date,
		TimeOfDay:          now.Format("15:04:05"),
		MonthPeriod:        core.MonthPeriod(date),
		Category:           category,
		Value:              p.Value,
		Description:        strings.TrimSpace(p.Description),
		PaymentMethod:      payment,
		Installment:        p.Installment,
		Installments:       installments,
		Tags:               strings.TrimSpace(p.Tags),
		Notes:              strings.TrimSpace(p.Notes),
		RegistrationMethod: method,
	}, nil
}

// FilterPeriod returns the subsequence of records whose date falls inside
// [start, end], preserving order.
func FilterPeriod(records []core.ExpenseRecord, start, end time.Time) []core.ExpenseRecord {
	start = core.DateOnly(start)
	end = core.DateOnly(end)
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterCategory returns the subsequence matching category, ignoring case.
func FilterCategory(records []core.ExpenseRecord, category string) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}
