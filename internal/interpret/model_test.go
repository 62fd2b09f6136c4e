package interpret

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"gastobot/internal/cache"
	"gastobot/internal/core"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func newModel(client *fakeCompleter, memo *cache.LRU[core.ParsedExpense]) *ModelStrategy {
	return NewModelStrategy(client, "test-model", time.Second, []string{"alimentação", "outros"}, memo)
}

func TestModelInterpret(t *testing.T) {
	client := &fakeCompleter{reply: `{"valor": 50, "categoria": "alimentação", "descricao": "almoço"}`}
	parsed, err := newModel(client, nil).Interpret(context.Background(), "gastei 50 no almoço")
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	if parsed.Value.Cents != 5000 || parsed.Category != "alimentação" || parsed.Description != "almoço" {
		t.Fatalf("unexpected result: %+v", parsed)
	}
}

func TestModelNullReply(t *testing.T) {
	client := &fakeCompleter{reply: "null"}
	_, err := newModel(client, nil).Interpret(context.Background(), "oi, bom dia")
	if !errors.Is(err, ErrNoExpense) {
		t.Fatalf("expected ErrNoExpense, got %v", err)
	}
}

func TestModelTransportErrorIsNoExpense(t *testing.T) {
	client := &fakeCompleter{err: errors.New("connection refused")}
	_, err := newModel(client, nil).Interpret(context.Background(), "gastei 50 no almoço")
	if !errors.Is(err, ErrNoExpense) {
		t.Fatalf("transport errors must collapse to ErrNoExpense, got %v", err)
	}
}

func TestModelMemoizesHits(t *testing.T) {
	client := &fakeCompleter{reply: `{"valor": 25, "categoria": "transporte", "descricao": "uber"}`}
	memo := cache.NewLRU[core.ParsedExpense](8, time.Minute)
	s := newModel(client, memo)

	for i := 0; i < 3; i++ {
		if _, err := s.Interpret(context.Background(), "uber 25"); err != nil {
			t.Fatalf("Interpret failed: %v", err)
		}
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", client.calls)
	}
}

func TestModelDoesNotMemoizeMisses(t *testing.T) {
	client := &fakeCompleter{reply: "null"}
	memo := cache.NewLRU[core.ParsedExpense](8, time.Minute)
	s := newModel(client, memo)

	for i := 0; i < 2; i++ {
		if _, err := s.Interpret(context.Background(), "oi"); !errors.Is(err, ErrNoExpense) {
			t.Fatalf("expected ErrNoExpense, got %v", err)
		}
	}
	if client.calls != 2 {
		t.Fatalf("misses must not be cached, got %d upstream calls", client.calls)
	}
}

func TestParseModelReply(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		cents int64
		cat   string
		ok    bool
	}{
		{"plain object", `{"valor": 50, "categoria": "alimentação", "descricao": "almoço"}`, 5000, "alimentação", true},
		{"decimal value", `{"valor": 12.5, "categoria": "transporte", "descricao": "uber"}`, 1250, "transporte", true},
		{"uppercase category is folded", `{"valor": 10, "categoria": "Lazer", "descricao": "cinema"}`, 1000, "lazer", true},
		{"empty category becomes outros", `{"valor": 10, "categoria": "", "descricao": "x"}`, 1000, "outros", true},
		{"null sentinel", "null", 0, "", false},
		{"empty reply", "", 0, "", false},
		{"not json", "desculpe, não entendi", 0, "", false},
		{"zero value", `{"valor": 0, "categoria": "outros", "descricao": "x"}`, 0, "", false},
		{"negative value", `{"valor": -5, "categoria": "outros", "descricao": "x"}`, 0, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := parseModelReply(tc.reply)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if parsed.Value.Cents != tc.cents || parsed.Category != tc.cat {
					t.Fatalf("got %+v, want cents=%d cat=%q", parsed, tc.cents, tc.cat)
				}
			} else if !errors.Is(err, ErrNoExpense) {
				t.Fatalf("expected ErrNoExpense, got %v", err)
			}
		})
	}
}
