package amqp

import (
	"encoding/json"
	"time"

	"gastobot/internal/core"
)

// ExpenseRecordedMessage notifies downstream consumers that an expense
// landed in the ledger.
type ExpenseRecordedMessage struct {
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	ValueCents  int64     `json:"value_cents"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(record core.ExpenseRecord) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		Date:        record.Date.Format("2006-01-02"),
		Category:    record.Category,
		ValueCents:  record.Value.Cents,
		Description: record.Description,
		Timestamp:   time.Now(),
	}
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessage carries a full dashboard snapshot for dashboards or
// archival consumers.
type SnapshotMessage struct {
	Snapshot  core.DashboardSnapshot `json:"snapshot"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewSnapshotMessage(snapshot core.DashboardSnapshot) *SnapshotMessage {
	return &SnapshotMessage{
		Snapshot:  snapshot,
		Timestamp: time.Now(),
	}
}

func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
