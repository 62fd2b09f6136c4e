// Package file implements the ledger on a single CSV table with a
// parallel backup copy of the immediately-prior committed state.
//
// Append performs the whole backup → read → mutate → rewrite sequence
// under one mutex; a failed rewrite restores the backup so the ledger is
// never left partially written or truncated.
package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/ledger"
)

// Header is the CSV header of the expense table.
const Header = "date,time,month_period,category,value,description,payment_method,installment,installments,tags,notes,registration_method"

const (
	numFields  = 12
	dateFormat = "2006-01-02"

	colDate     = 0
	colTime     = 1
	colPeriod   = 2
	colCategory = 3
	colValue    = 4
	colDesc     = 5
	colPayment  = 6
	colInstFlag = 7
	colInstNum  = 8
	colTags     = 9
	colNotes    = 10
	colMethod   = 11
)

// Store is the file-backed ledger.
type Store struct {
	mu         sync.Mutex
	path       string
	backupPath string

	// now and flush are injectable for tests.
	now   func() time.Time
	flush func(path string, data []byte) error
}

// New opens (or bootstraps) a file ledger at path. The backup lives next
// to it with a .backup suffix. Bootstrap writes the header exactly once;
// reopening an existing store never rewrites it.
func New(path string) (*Store, error) {
	s := &Store{
		path:       path,
		backupPath: backupPathFor(path),
		now:        time.Now,
		flush: func(p string, data []byte) error {
			return os.WriteFile(p, data, 0o644)
		},
	}
	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

func backupPathFor(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + ".backup" + ext
}

func (s *Store) bootstrap() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create ledger directory: %v", ledger.ErrStorage, err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat ledger: %v", ledger.ErrStorage, err)
	}
	if err := s.flush(s.path, []byte(Header+"\n")); err != nil {
		return fmt.Errorf("%w: write ledger header: %v", ledger.ErrStorage, err)
	}
	return nil
}

// Append normalizes the params, takes a point-in-time backup, rewrites
// the whole table with the new record appended, and restores the backup
// if the rewrite fails. Concurrent appends are serialized.
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

	if err := s.backup(); err != nil {
		return core.ExpenseRecord{}, err
	}

	records, err := s.readAll()
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	records = append(records, record)

	data, err := marshalTable(records)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	if err := s.flush(s.path, data); err != nil {
		s.restore()
		return core.ExpenseRecord{}, fmt.Errorf("%w: rewrite ledger: %v", ledger.ErrStorage, err)
	}

	return record, nil
}

// AllRecords returns every record in append order.
func (s *Store) AllRecords(ctx context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.readAll()
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

func (s *Store) backup() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: read ledger for backup: %v", ledger.ErrStorage, err)
	}
	if err := os.WriteFile(s.backupPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: write backup: %v", ledger.ErrStorage, err)
	}
	return nil
}

func (s *Store) restore() {
	data, err := os.ReadFile(s.backupPath)
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o644)
}

func (s *Store) readAll() ([]core.ExpenseRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open ledger: %v", ledger.ErrStorage, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = numFields
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read ledger CSV: %v", ledger.ErrStorage, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var records []core.ExpenseRecord
	for i, row := range rows[1:] {
		rec, err := unmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ledger.ErrStorage, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func marshalTable(records []core.ExpenseRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header + "\n")
	cw := csv.NewWriter(&buf)
	for i, rec := range records {
		if err := cw.Write(marshalRecord(rec)); err != nil {
			return nil, fmt.Errorf("%w: marshal row %d: %v", ledger.ErrStorage, i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("%w: marshal table: %v", ledger.ErrStorage, err)
	}
	return buf.Bytes(), nil
}

func marshalRecord(rec core.ExpenseRecord) []string {
	row := make([]string, numFields)
	row[colDate] = rec.Date.Format(dateFormat)
	row[colTime] = rec.TimeOfDay
	row[colPeriod] = rec.MonthPeriod
	row[colCategory] = rec.Category
	row[colValue] = rec.Value.String()
	row[colDesc] = rec.Description
	row[colPayment] = rec.PaymentMethod
	row[colInstFlag] = strconv.FormatBool(rec.Installment)
	if rec.Installments > 0 {
		row[colInstNum] = strconv.Itoa(rec.Installments)
	}
	row[colTags] = rec.Tags
	row[colNotes] = rec.Notes
	row[colMethod] = rec.RegistrationMethod
	return row
}

func unmarshalRecord(row []string) (core.ExpenseRecord, error) {
	if len(row) != numFields {
		return core.ExpenseRecord{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("parsing date %q: %v", row[colDate], err)
	}

	cents, err := core.ParseDecimalToCents(row[colValue])
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("parsing value %q: %v", row[colValue], err)
	}

	installment := false
	if row[colInstFlag] != "" {
		installment, err = strconv.ParseBool(row[colInstFlag])
		if err != nil {
			return core.ExpenseRecord{}, fmt.Errorf("parsing installment flag %q: %v", row[colInstFlag], err)
		}
	}

	installments := 0
	if row[colInstNum] != "" {
		installments, err = strconv.Atoi(row[colInstNum])
		if err != nil {
			return core.ExpenseRecord{}, fmt.Errorf("parsing installments %q: %v", row[colInstNum], err)
		}
	}

	return core.ExpenseRecord{
		Date:               date,
		TimeOfDay:          row[colTime],
		MonthPeriod:        row[colPeriod],
		Category:           row[colCategory],
		Value:              core.Money{Cents: cents},
		Description:        row[colDesc],
		PaymentMethod:      row[colPayment],
		Installment:        installment,
		Installments:       installments,
		Tags:               row[colTags],
		Notes:              row[colNotes],
		RegistrationMethod: row[colMethod],
	}, nil
}
