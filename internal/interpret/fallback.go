package interpret

import (
	"context"
	"regexp"
	"strings"

	"gastobot/internal/core"
	"gastobot/internal/taxonomy"
)

// valueRe matches the first numeric token, with an optional two-digit
// decimal part in either dot or comma form.
var valueRe = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)

// fillerWords are stripped from the front of the remaining text when
// deriving the description.
var fillerWords = map[string]struct{}{
	"gastei": {}, "paguei": {}, "comprei": {},
	"no": {}, "na": {}, "de": {}, "do": {}, "da": {}, "em": {},
	"reais": {}, "r$": {},
}

// FallbackStrategy is the deterministic keyword/pattern interpreter.
// It is pure and synchronous: the first numeric token becomes the value,
// the taxonomy guesses the category from the full message, and the
// description is what remains after stripping the token and leading
// filler words.
type FallbackStrategy struct {
	taxonomy *taxonomy.Taxonomy
}

func NewFallbackStrategy(t *taxonomy.Taxonomy) *FallbackStrategy {
	return &FallbackStrategy{taxonomy: t}
}

func (s *FallbackStrategy) Interpret(_ context.Context, message string) (core.ParsedExpense, error) {
	token := valueRe.FindString(message)
	if token == "" {
		return core.ParsedExpense{}, ErrNoExpense
	}

	cents, err := core.ParseDecimalToCents(token)
	if err != nil {
		return core.ParsedExpense{}, ErrNoExpense
	}

	category := s.taxonomy.Guess(message)

	description := strings.TrimSpace(strings.Replace(message, token, "", 1))
	description = stripLeadingFillers(description)
	if description == "" {
		description = category
	}

	return core.ParsedExpense{
		Value:       core.Money{Cents: cents},
		Category:    category,
		Description: description,
	}, nil
}

func stripLeadingFillers(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		if _, ok := fillerWords[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}
