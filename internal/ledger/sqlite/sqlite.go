// Package sqlite implements the ledger on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/ledger"

	_ "modernc.org/sqlite"
)

const dateFormat = "2006-01-02"

const insertExpense = `
INSERT INTO expenses (
    date, time_of_day, month_period, category, value_cents, description,
    payment_method, installment, installments, tags, notes, registration_method
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectExpenses = `
SELECT date, time_of_day, month_period, category, value_cents, description,
       payment_method, installment, installments, tags, notes, registration_method
FROM expenses`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Append(ctx context.Context, p ledger.AppendParams) (core.ExpenseRecord, error) {
	record, err := ledger.Normalize(p, s.now())
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	_, err = s.db.ExecContext(ctx, insertExpense,
		record.Date.Format(dateFormat),
		record.TimeOfDay,
		record.MonthPeriod,
		record.Category,
		record.Value.Cents,
		record.Description,
		record.PaymentMethod,
		record.Installment,
		record.Installments,
		record.Tags,
		record.Notes,
		record.RegistrationMethod,
	)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("%w: insert expense: %v", ledger.ErrStorage, err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"category", record.Category,
		"value_cents", record.Value.Cents,
		"date", record.Date.Format(dateFormat))

	return record, nil
}

func (s *Store) AllRecords(ctx context.Context) ([]core.ExpenseRecord, error) {
	return s.query(ctx, selectExpenses+" ORDER BY id")
}

func (s *Store) RecordsInPeriod(ctx context.Context, start, end time.Time) ([]core.ExpenseRecord, error) {
	return s.query(ctx, selectExpenses+" WHERE date >= ? AND date <= ? ORDER BY id",
		core.DateOnly(start).Format(dateFormat), core.DateOnly(end).Format(dateFormat))
}

func (s *Store) RecordsByCategory(ctx context.Context, category string) ([]core.ExpenseRecord, error) {
	return s.query(ctx, selectExpenses+" WHERE category = ? COLLATE NOCASE ORDER BY id", category)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]core.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query expenses: %v", ledger.ErrStorage, err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		var rec core.ExpenseRecord
		var date string
		err := rows.Scan(&date, &rec.TimeOfDay, &rec.MonthPeriod, &rec.Category,
			&rec.Value.Cents, &rec.Description, &rec.PaymentMethod,
			&rec.Installment, &rec.Installments, &rec.Tags, &rec.Notes,
			&rec.RegistrationMethod)
		if err != nil {
			return nil, fmt.Errorf("%w: scan expense: %v", ledger.ErrStorage, err)
		}
		rec.Date, err = time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("%w: parse stored date %q: %v", ledger.ErrStorage, date, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate expenses: %v", ledger.ErrStorage, err)
	}
	return records, nil
}
