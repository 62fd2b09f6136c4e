package amqp

import (
	"context"
	"log/slog"

	"gastobot/internal/core"
	"gastobot/internal/ledger"
)

// NotifyingLedger decorates a ledger so every successful append also
// publishes an ExpenseRecordedMessage. Publish failures are logged and
// never fail the append; the ledger write is the source of truth.
type NotifyingLedger struct {
	ledger.Ledger
	client *Client
}

func NewNotifyingLedger(l ledger.Ledger, client *Client) *NotifyingLedger {
	return &NotifyingLedger{Ledger: l, client: client}
}

func (n *NotifyingLedger) Append(ctx context.Context, p ledger.AppendParams) (core.ExpenseRecord, error) {
	record, err := n.Ledger.Append(ctx, p)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	if err := n.client.PublishExpenseRecorded(ctx, record); err != nil {
		slog.WarnContext(ctx, "Failed to publish expense event, continuing", "error", err)
	}
	return record, nil
}
