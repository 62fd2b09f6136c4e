package interpret

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"gastobot/internal/cache"
	"gastobot/internal/core"
)

// completer is the slice of the OpenAI client the strategy needs.
// *openai.Client satisfies it.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelStrategy extracts expenses by asking an external text-understanding
// service for a strict {valor, categoria, descricao} JSON reply. Every
// failure mode — transport error, timeout, malformed reply, missing or
// non-positive value — collapses into ErrNoExpense so the caller falls
// through to the deterministic strategy.
type ModelStrategy struct {
	client     completer
	model      string
	timeout    time.Duration
	categories []string
	memo       *cache.LRU[core.ParsedExpense]
}

// NewModelStrategy builds the model-backed strategy. categories is the
// closed list offered to the model; the memo cache may be nil.
func NewModelStrategy(client completer, model string, timeout time.Duration, categories []string, memo *cache.LRU[core.ParsedExpense]) *ModelStrategy {
	return &ModelStrategy{
		client:     client,
		model:      model,
		timeout:    timeout,
		categories: categories,
		memo:       memo,
	}
}

func (s *ModelStrategy) Interpret(ctx context.Context, message string) (core.ParsedExpense, error) {
	if s.memo != nil {
		if parsed, ok := s.memo.Get(message); ok {
			return parsed, nil
		}
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0,
		MaxTokens:   1024,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: s.prompt(message)},
		},
	})
	if err != nil {
		// Transport failures are absorbed: the fallback takes over.
		slog.WarnContext(ctx, "Text-understanding service unavailable", "error", err)
		return core.ParsedExpense{}, ErrNoExpense
	}
	if len(resp.Choices) == 0 {
		return core.ParsedExpense{}, ErrNoExpense
	}

	parsed, err := parseModelReply(resp.Choices[0].Message.Content)
	if err != nil {
		return core.ParsedExpense{}, err
	}
	if s.memo != nil {
		s.memo.Set(message, parsed)
	}
	return parsed, nil
}

func (s *ModelStrategy) prompt(message string) string {
	return fmt.Sprintf(`Você é um assistente financeiro que interpreta mensagens sobre gastos em português brasileiro.

Sua tarefa é extrair as seguintes informações da mensagem do usuário:
1. **valor**: O valor em reais (apenas o número, sem R$ ou vírgulas)
2. **categoria**: Uma das categorias: %s
3. **descricao**: Uma descrição curta do gasto

Regras:
- Se a mensagem não contiver um valor numérico claro, retorne null
- Se não conseguir identificar a categoria, use "outros"
- A descrição deve ser curta e objetiva

Exemplos:
- "gastei 50 no almoço" → {"valor": 50, "categoria": "alimentação", "descricao": "almoço"}
- "200 reais mercado" → {"valor": 200, "categoria": "alimentação", "descricao": "mercado"}
- "uber 25" → {"valor": 25, "categoria": "transporte", "descricao": "uber"}

Mensagem do usuário: "%s"

Retorne APENAS um JSON válido no formato: {"valor": number, "categoria": string, "descricao": string}
Se não conseguir interpretar, retorne: null`, strings.Join(s.categories, ", "), message)
}

// parseModelReply parses the service's textual reply as a strict
// three-field structure. The "null" sentinel, any JSON error and any
// missing or non-positive valor all mean "no result".
func parseModelReply(reply string) (core.ParsedExpense, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" || strings.EqualFold(reply, "null") {
		return core.ParsedExpense{}, ErrNoExpense
	}

	var raw struct {
		Valor     json.Number `json:"valor"`
		Categoria string      `json:"categoria"`
		Descricao string      `json:"descricao"`
	}
	dec := json.NewDecoder(strings.NewReader(reply))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return core.ParsedExpense{}, fmt.Errorf("%w: unparseable reply", ErrNoExpense)
	}

	cents, err := core.ParseDecimalToCents(raw.Valor.String())
	if err != nil {
		return core.ParsedExpense{}, fmt.Errorf("%w: %v", ErrNoExpense, err)
	}

	category := strings.ToLower(strings.TrimSpace(raw.Categoria))
	if category == "" {
		category = core.OtherCategory
	}

	return core.ParsedExpense{
		Value:       core.Money{Cents: cents},
		Category:    category,
		Description: strings.TrimSpace(raw.Descricao),
	}, nil
}
