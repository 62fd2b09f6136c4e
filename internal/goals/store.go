// Package goals persists the user profile, category taxonomy and
// monthly spending goals as a single JSON document.
package goals

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gastobot/internal/core"
	"gastobot/internal/taxonomy"
)

var (
	// ErrUnavailable reports that no settings document exists yet.
	ErrUnavailable = errors.New("goals settings unavailable")
	// ErrInvalidConfig reports a document that fails validation.
	ErrInvalidConfig = errors.New("invalid goals settings")
)

// CategoryGroup is one named category with its matching keywords.
type CategoryGroup struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// GoalAmounts carries the monthly limits in reais, as JSON numbers.
type GoalAmounts struct {
	TotalMonthly json.Number            `json:"totalMonthly"`
	ByCategory   map[string]json.Number `json:"byCategory"`
}

// Settings is the whole persisted document.
type Settings struct {
	Profile    string          `json:"profile"`
	Categories []CategoryGroup `json:"categories"`
	Goals      GoalAmounts     `json:"goals"`
}

// Store reads and writes the settings document at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and validates the settings. A missing file returns
// ErrUnavailable so callers can degrade instead of failing.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, ErrUnavailable
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read goals settings: %w", err)
	}

	var settings Settings
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&settings); err != nil {
		return Settings{}, fmt.Errorf("%w: parse JSON: %v", ErrInvalidConfig, err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Save validates and atomically rewrites the settings. A document that
// fails validation never reaches disk.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal goals settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write goals settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace goals settings: %w", err)
	}
	return nil
}

// Validate checks the three required sections and that every goal is a
// valid non-negative amount.
func (s Settings) Validate() error {
	var problems []string

	if s.Profile == "" {
		problems = append(problems, "profile is required")
	}
	if len(s.Categories) == 0 {
		problems = append(problems, "at least one category is required")
	}
	for i, group := range s.Categories {
		if group.Name == "" {
			problems = append(problems, fmt.Sprintf("category %d has no name", i))
		}
	}

	if _, err := parseGoal(s.Goals.TotalMonthly); err != nil {
		problems = append(problems, fmt.Sprintf("totalMonthly: %v", err))
	}
	for name, amount := range s.Goals.ByCategory {
		if _, err := parseGoal(amount); err != nil {
			problems = append(problems, fmt.Sprintf("goal for %s: %v", name, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, problems)
	}
	return nil
}

// GoalConfig converts the goal amounts to cents.
func (s Settings) GoalConfig() (core.GoalConfig, error) {
	total, err := parseGoal(s.Goals.TotalMonthly)
	if err != nil {
		return core.GoalConfig{}, fmt.Errorf("%w: totalMonthly: %v", ErrInvalidConfig, err)
	}

	cfg := core.GoalConfig{
		TotalMonthly: total,
		ByCategory:   make(map[string]core.Money, len(s.Goals.ByCategory)),
	}
	for name, amount := range s.Goals.ByCategory {
		goal, err := parseGoal(amount)
		if err != nil {
			return core.GoalConfig{}, fmt.Errorf("%w: goal for %s: %v", ErrInvalidConfig, name, err)
		}
		cfg.ByCategory[name] = goal
	}
	return cfg, nil
}

// Taxonomy builds the keyword taxonomy from the configured categories.
func (s Settings) Taxonomy() *taxonomy.Taxonomy {
	groups := make([]taxonomy.Group, 0, len(s.Categories))
	for _, group := range s.Categories {
		groups = append(groups, taxonomy.Group{
			Category: group.Name,
			Keywords: group.Keywords,
		})
	}
	return taxonomy.New(groups)
}

func parseGoal(amount json.Number) (core.Money, error) {
	raw := amount.String()
	if raw == "" {
		return core.Money{}, fmt.Errorf("amount is required")
	}
	if f, err := amount.Float64(); err == nil && f == 0 {
		// Zero means "no goal configured" for this entry.
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
