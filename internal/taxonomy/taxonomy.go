// Package taxonomy serves the static category taxonomy: a two-level mapping
// from category name to an ordered list of subcategory names. It is loaded
// once at startup and read-only afterwards.
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

//go:embed categories.json
var embeddedCategories []byte

// fallback is served when neither the configured file nor the embedded
// definition can be parsed. Callers always get something.
const fallback = `{"categories": ["Food", "Transport", "Rent", "Utilities"]}`

// Taxonomy holds the raw JSON document plus its parsed form.
type Taxonomy struct {
	raw        []byte
	categories map[string][]string
}

// Load reads the taxonomy. When path is non-empty the file at path wins;
// a missing or unreadable file falls back to the embedded definition, and a
// broken embedded definition falls back to the minimal default list.
func Load(path string, logger *slog.Logger) *Taxonomy {
	if logger == nil {
		logger = slog.Default()
	}

	if path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			if t, err := parse(raw); err == nil {
				logger.Info("Loaded category taxonomy", "source", path, "categories", len(t.categories))
				return t
			}
			logger.Warn("Category file is not valid JSON, using embedded taxonomy", "path", path)
		} else {
			logger.Warn("Category file missing, using embedded taxonomy", "path", path, "error", err)
		}
	}

	if t, err := parse(embeddedCategories); err == nil {
		return t
	}

	logger.Warn("Embedded taxonomy unreadable, serving minimal default list")
	return &Taxonomy{raw: []byte(fallback), categories: map[string][]string{}}
}

func parse(raw []byte) (*Taxonomy, error) {
	var categories map[string][]string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	return &Taxonomy{raw: raw, categories: categories}, nil
}

// JSON returns the taxonomy document verbatim, as served to callers.
func (t *Taxonomy) JSON() string {
	return string(t.raw)
}

// Categories returns the top-level category names present in the taxonomy.
func (t *Taxonomy) Categories() []string {
	out := make([]string, 0, len(t.categories))
	for name := range t.categories {
		out = append(out, name)
	}
	return out
}

// Subcategories returns the ordered subcategory list for a category, nil
// when the category is unknown.
func (t *Taxonomy) Subcategories(category string) []string {
	return t.categories[category]
}
