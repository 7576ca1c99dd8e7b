// Package catalog holds the common phrases worth synthesizing ahead of time:
// rep counts, countdowns, milestones, completions, form cues and the lines
// of each coach personality. A Catalog is immutable once built.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/trainertoe/voice/internal/cache"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Category names used by the dispatcher
const (
	CategoryNumbers           = "numbers"
	CategoryCountdowns        = "countdowns"
	CategoryTimeAnnouncements = "time_announcements"
	CategoryMilestones        = "milestones"
	CategoryExercises         = "exercise_announcements"
	CategoryCompletions       = "completions"
	CategoryFormReminders     = "form_reminders"
)

// Personalities are the categories holding coach lines.
var Personalities = []string{"encouraging", "drill_sergeant", "motivational", "chill", "competitive"}

// Kind selects the phrase PhraseFor maps a dynamic value onto.
type Kind string

const (
	KindNumber     Kind = "number"
	KindMilestone  Kind = "milestone"
	KindCompletion Kind = "completion"
	KindForm       Kind = "form"
)

var (
	// ErrEmptyCatalog indicates a catalog without a single phrase
	ErrEmptyCatalog = errors.New("catalog has no phrases")

	// ErrDuplicateCategory indicates two categories share a name
	ErrDuplicateCategory = errors.New("duplicate catalog category")
)

// intN is replaced in tests.
var intN = rand.IntN

// Category is a named, ordered list of phrases.
type Category struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Phrases     []string `yaml:"phrases"`
}

type file struct {
	Categories []Category `yaml:"categories"`
}

// Catalog is an immutable set of phrase categories.
type Catalog struct {
	categories []Category
	byName     map[string]int
	common     map[string]struct{}
}

// Match is a fuzzy search result.
type Match struct {
	Category string
	Phrase   string
	Score    int
}

// New builds a catalog from categories, kept in the given order. Phrases
// are trimmed and blank ones dropped.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]int, len(categories)),
		common: make(map[string]struct{}),
	}

	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, errors.New("catalog category without a name")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
		}

		phrases := make([]string, 0, len(cat.Phrases))
		for _, p := range cat.Phrases {
			if p = strings.TrimSpace(p); p != "" {
				phrases = append(phrases, p)
				c.common[cache.Normalize(p)] = struct{}{}
			}
		}

		c.byName[name] = len(c.categories)
		c.categories = append(c.categories, Category{
			Name:        name,
			Description: cat.Description,
			Phrases:     phrases,
		})
	}

	if len(c.common) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Parse reads a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Categories)
}

// Load reads a catalog from a YAML file. A leading ~ is expanded.
func Load(path string) (*Catalog, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand catalog path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Categories returns a copy of all categories in order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		cat.Phrases = append([]string(nil), cat.Phrases...)
		out[i] = cat
	}
	return out
}

// Category returns the phrases of the named category.
func (c *Catalog) Category(name string) ([]string, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), c.categories[i].Phrases...), true
}

// All returns every phrase, category by category. A phrase listed twice,
// ignoring case, appears once.
func (c *Catalog) All() []string {
	seen := make(map[string]struct{}, len(c.common))
	all := make([]string, 0, len(c.common))
	for _, cat := range c.categories {
		for _, p := range cat.Phrases {
			key := cache.Normalize(p)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, p)
		}
	}
	return all
}

// Len returns the number of distinct phrases.
func (c *Catalog) Len() int {
	return len(c.common)
}

// IsCommon reports whether text is a catalog phrase, ignoring case and
// surrounding whitespace.
func (c *Catalog) IsCommon(text string) bool {
	_, ok := c.common[cache.Normalize(text)]
	return ok
}

// NumberPhrase returns the canonical phrase for rep count n. Only counts
// covered by the numbers category have one.
func (c *Catalog) NumberPhrase(n int) (string, bool) {
	i, ok := c.byName[CategoryNumbers]
	if !ok {
		return "", false
	}
	numbers := c.categories[i].Phrases
	if n < 1 || n > len(numbers) {
		return "", false
	}
	return numbers[n-1], true
}

// Random returns a uniformly chosen phrase from the named category.
func (c *Catalog) Random(category string) (string, bool) {
	i, ok := c.byName[category]
	if !ok || len(c.categories[i].Phrases) == 0 {
		return "", false
	}
	phrases := c.categories[i].Phrases
	return phrases[intN(len(phrases))], true
}

// PhraseFor maps a dynamic value onto a catalog phrase. value is only used
// by KindNumber; the other kinds pick a random phrase of their category.
func (c *Catalog) PhraseFor(kind Kind, value int) (string, bool) {
	switch kind {
	case KindNumber:
		return c.NumberPhrase(value)
	case KindMilestone:
		return c.Random(CategoryMilestones)
	case KindCompletion:
		return c.Random(CategoryCompletions)
	case KindForm:
		return c.Random(CategoryFormReminders)
	default:
		return "", false
	}
}

// Find fuzzy matches query against every phrase, best match first.
func (c *Catalog) Find(query string) []Match {
	type source struct{ category, phrase string }
	var sources []source
	var phrases []string
	for _, cat := range c.categories {
		for _, p := range cat.Phrases {
			sources = append(sources, source{cat.Name, p})
			phrases = append(phrases, p)
		}
	}

	found := fuzzy.Find(query, phrases)
	matches := make([]Match, 0, len(found))
	for _, m := range found {
		matches = append(matches, Match{
			Category: sources[m.Index].category,
			Phrase:   m.Str,
			Score:    m.Score,
		})
	}
	return matches
}
