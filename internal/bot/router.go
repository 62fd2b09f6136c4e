// Package bot turns incoming chat messages into ledger appends and
// command replies. It is transport agnostic; adapters deliver messages
// and relay the reply text.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/interpret"
	"gastobot/internal/ledger"
)

const (
	registerFailedReply = "❌ Erro ao registrar gasto. Tente novamente."
	commandFailedReply  = "❌ Erro ao processar comando."
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Router routes free-text messages through the interpreter into the
// ledger and answers slash commands.
type Router struct {
	interpreter interpret.Strategy
	ledger      ledger.Ledger

	// now is injectable for tests.
	now func() time.Time
}

func NewRouter(interpreter interpret.Strategy, l ledger.Ledger) *Router {
	return &Router{
		interpreter: interpreter,
		ledger:      l,
		now:         time.Now,
	}
}

// Handle processes one incoming message and returns the reply text. An
// empty reply means stay silent: unrecognized free text is ignored so
// ordinary group conversation never triggers the bot.
func (r *Router) Handle(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "/") {
		return r.handleCommand(ctx, text)
	}
	return r.handleExpense(ctx, text)
}

func (r *Router) handleExpense(ctx context.Context, text string) string {
	parsed, err := r.interpreter.Interpret(ctx, text)
	if err != nil {
		if !errors.Is(err, interpret.ErrNoExpense) {
			slog.WarnContext(ctx, "Interpreter failed, ignoring message", "error", err)
		}
		return ""
	}

	record, err := r.ledger.Append(ctx, ledger.AppendParams{
		Value:       parsed.Value,
		Category:    parsed.Category,
		Description: parsed.Description,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to append expense", "error", err)
		return registerFailedReply
	}

	slog.InfoContext(ctx, "Expense registered",
		"value_cents", record.Value.Cents,
		"category", record.Category,
		"description", record.Description)

	return fmt.Sprintf("✅ *Gasto registrado!*\n\n💰 Valor: %s\n📁 Categoria: %s\n📝 Descrição: %s",
		record.Value.BRL(), record.Category, record.Description)
}

func (r *Router) handleCommand(ctx context.Context, command string) string {
	switch strings.ToLower(command) {
	case "/saldo":
		return r.balanceReply(ctx)
	case "/categorias":
		return r.categoriesReply(ctx)
	case "/ajuda", "/help":
		return helpReply()
	default:
		// Unknown commands stay silent, like unrecognized free text.
		return ""
	}
}

func (r *Router) balanceReply(ctx context.Context) string {
	now := r.now()
	records, err := ledger.CurrentMonthRecords(ctx, r.ledger, now)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read month records", "error", err)
		return commandFailedReply
	}

	total := core.Money{}
	for _, rec := range records {
		total.Cents += rec.Value.Cents
	}
	dailyAverage := core.Money{Cents: total.Cents / int64(now.Day())}

	return fmt.Sprintf("📊 *Saldo de %s de %d*\n\n💰 Total gasto: %s\n📝 Número de gastos: %d\n📅 Média diária: %s",
		monthNames[now.Month()-1], now.Year(), total.BRL(), len(records), dailyAverage.BRL())
}

func (r *Router) categoriesReply(ctx context.Context) string {
	records, err := ledger.CurrentMonthRecords(ctx, r.ledger, r.now())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read month records", "error", err)
		return commandFailedReply
	}

	type categoryTotal struct {
		name  string
		total core.Money
		count int
	}
	index := make(map[string]int)
	var totals []categoryTotal
	for _, rec := range records {
		i, ok := index[rec.Category]
		if !ok {
			i = len(totals)
			index[rec.Category] = i
			totals = append(totals, categoryTotal{name: rec.Category})
		}
		totals[i].total.Cents += rec.Value.Cents
		totals[i].count++
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].total.Cents > totals[j].total.Cents
	})

	var b strings.Builder
	b.WriteString("📁 *Gastos por categoria*\n\n")
	if len(totals) == 0 {
		b.WriteString("Nenhum gasto registrado este mês.")
		return b.String()
	}
	for _, ct := range totals {
		fmt.Fprintf(&b, "▪️ *%s*: %s (%d gastos)\n", ct.name, ct.total.BRL(), ct.count)
	}
	return b.String()
}

func helpReply() string {
	return "🤖 *Comandos disponíveis*\n\n" +
		"📝 Para registrar gastos, envie mensagens como:\n" +
		"▪️ \"gastei 50 no almoço\"\n" +
		"▪️ \"200 reais mercado\"\n" +
		"▪️ \"uber 25\"\n\n" +
		"💬 *Comandos especiais:*\n" +
		"▪️ /saldo - Mostra total gasto no mês\n" +
		"▪️ /categorias - Lista gastos por categoria\n" +
		"▪️ /ajuda - Mostra esta mensagem"
}
