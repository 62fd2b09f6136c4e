// Package interpret turns free-text expense statements into structured
// ParsedExpense values. Two interchangeable strategies satisfy the same
// contract — a model-backed interpreter and a deterministic keyword
// interpreter — composed by ordered fallback.
package interpret

import (
	"context"
	"errors"
	"log/slog"

	"gastobot/internal/core"
)

// ErrNoExpense signals a valid negative result: the message is not an
// expense statement. It is never a fatal error for callers.
var ErrNoExpense = errors.New("message is not an expense")

// Strategy is one way of interpreting a message.
type Strategy interface {
	Interpret(ctx context.Context, message string) (core.ParsedExpense, error)
}

// Chain tries each strategy in order and returns the first result.
// Any strategy failure — explicit non-match, transport error, malformed
// reply — only moves the chain to the next strategy; the chain itself
// fails with ErrNoExpense only when every strategy yields nothing.
type Chain struct {
	strategies []Strategy
}

// NewChain composes strategies with ordered fallback.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

func (c *Chain) Interpret(ctx context.Context, message string) (core.ParsedExpense, error) {
	for _, s := range c.strategies {
		parsed, err := s.Interpret(ctx, message)
		if err != nil {
			if !errors.Is(err, ErrNoExpense) {
				slog.DebugContext(ctx, "Interpreter strategy failed, trying next", "error", err)
			}
			continue
		}
		if err := parsed.Validate(); err != nil {
			// A strategy must never hand back a degenerate expense.
			slog.WarnContext(ctx, "Interpreter strategy produced invalid expense", "error", err)
			continue
		}
		return parsed, nil
	}
	return core.ParsedExpense{}, ErrNoExpense
}
