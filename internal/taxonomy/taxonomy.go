// Package taxonomy maps free-text expense messages to spending categories
// using ordered keyword cues. The taxonomy is configuration data: new
// categories are added by extending the group list, not by changing code.
package taxonomy

import (
	"strings"

	"gastobot/internal/core"
)

// Group binds one category to the keyword cues that suggest it.
type Group struct {
	Category string
	Keywords []string
}

// Taxonomy is an ordered list of keyword groups. Order matters: the first
// group with a matching keyword wins.
type Taxonomy struct {
	groups []Group
}

// New builds a taxonomy from ordered groups. Empty categories and empty
// keywords are dropped; category names are lowercased.
func New(groups []Group) *Taxonomy {
	t := &Taxonomy{}
	for _, g := range groups {
		name := strings.ToLower(strings.TrimSpace(g.Category))
		if name == "" {
			continue
		}
		var kws []string
		for _, k := range g.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				kws = append(kws, k)
			}
		}
		t.groups = append(t.groups, Group{Category: name, Keywords: kws})
	}
	return t
}

// Default returns the built-in Brazilian Portuguese taxonomy.
func Default() *Taxonomy {
	return New([]Group{
		{Category: "alimentação", Keywords: []string{
			"almoço", "jantar", "comida", "mercado", "restaurante",
			"lanche", "café", "pizza", "hamburguer"}},
		{Category: "transporte", Keywords: []string{
			"uber", "taxi", "ônibus", "metrô", "gasolina",
			"combustível", "estacionamento"}},
		{Category: "lazer", Keywords: []string{
			"cinema", "show", "festa", "bar", "jogo", "streaming", "netflix"}},
		{Category: "saúde", Keywords: []string{
			"médico", "remédio", "farmácia", "consulta", "academia", "dentista"}},
		{Category: "moradia", Keywords: []string{
			"aluguel", "luz", "água", "internet", "condomínio", "gás"}},
		{Category: "educação", Keywords: []string{
			"curso", "livro", "escola", "faculdade", "material"}},
		{Category: "vestuário", Keywords: []string{
			"roupa", "sapato", "calça", "camisa", "vestido"}},
	})
}

// Guess returns the best-guess category for a message: the category of the
// first group with a keyword contained in the lowercased message, or the
// "outros" sentinel when nothing matches.
func (t *Taxonomy) Guess(message string) string {
	lower := strings.ToLower(message)
	for _, g := range t.groups {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				return g.Category
			}
		}
	}
	return core.OtherCategory
}

// Categories lists the category names in evaluation order, always ending
// with the "outros" sentinel.
func (t *Taxonomy) Categories() []string {
	out := make([]string, 0, len(t.groups)+1)
	for _, g := range t.groups {
		out = append(out, g.Category)
	}
	return append(out, core.OtherCategory)
}
