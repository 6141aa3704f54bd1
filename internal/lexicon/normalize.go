package lexicon

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/food-label-mcp/internal/logger"
)

// DefaultKeywords are the terms whose presence marks text as a nutrition label.
var DefaultKeywords = []string{
	"serving size", "calories", "total fat", "cholesterol",
	"sodium", "carbohydrate", "protein", "sugar", "fiber",
}

// DefaultMinKeywords is how many keywords must appear before text is
// considered a plausible nutrition label.
const DefaultMinKeywords = 4

// Plausibility is the outcome of the keyword check.
type Plausibility struct {
	Found     []string `json:"found"`
	Count     int      `json:"count"`
	Required  int      `json:"required"`
	Plausible bool     `json:"plausible"`
}

// Options configures a Normalizer. Zero fields take the defaults.
type Options struct {
	Table       *Table
	Keywords    []string
	MinKeywords int
	Logger      *zerolog.Logger
}

// Normalizer cleans OCR text with a fixed correction table.
type Normalizer struct {
	table       Table
	keywords    []string
	minKeywords int
	log         zerolog.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts Options) *Normalizer {
	n := &Normalizer{
		table:       DefaultTable(),
		keywords:    DefaultKeywords,
		minKeywords: DefaultMinKeywords,
	}
	if opts.Table != nil {
		n.table = *opts.Table
	}
	if len(opts.Keywords) > 0 {
		n.keywords = make([]string, len(opts.Keywords))
		for i, k := range opts.Keywords {
			n.keywords[i] = strings.ToLower(k)
		}
	}
	if opts.MinKeywords > 0 {
		n.minKeywords = opts.MinKeywords
	}
	if opts.Logger != nil {
		n.log = *opts.Logger
	} else {
		n.log = logger.WithComponent("lexicon")
	}
	return n
}

// Table returns the correction table in use.
func (n *Normalizer) Table() Table {
	return n.table
}

// Normalize collapses whitespace within each line, applies the correction
// table, and runs the plausibility check. Line breaks are preserved.
//
// Normalize never fails: if anything goes wrong the input is returned as is.
func (n *Normalizer) Normalize(text string) (out string) {
	if text == "" {
		return text
	}

	defer func() {
		if r := recover(); r != nil {
			n.log.Error().
				Str("panic", fmt.Sprint(r)).
				Msg("Text normalization failed, returning input unchanged")
			out = text
		}
	}()

	cleaned := n.table.Apply(CollapseWhitespace(text))

	if p := n.Assess(cleaned); !p.Plausible {
		n.log.Warn().
			Int("keywords_found", p.Count).
			Int("keywords_required", p.Required).
			Msg("Extracted text might not be a nutrition label")
	}

	return cleaned
}

// Assess counts how many keywords occur in text, ignoring case.
func (n *Normalizer) Assess(text string) Plausibility {
	lower := strings.ToLower(text)
	found := make([]string, 0, len(n.keywords))
	for _, k := range n.keywords {
		if strings.Contains(lower, k) {
			found = append(found, k)
		}
	}
	return Plausibility{
		Found:     found,
		Count:     len(found),
		Required:  n.minKeywords,
		Plausible: len(found) >= n.minKeywords,
	}
}

// CollapseWhitespace replaces each run of whitespace inside a line with a
// single space and trims the line. The newlines themselves are kept.
func CollapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// Normalize cleans text with a Normalizer built from default options.
func Normalize(text string) string {
	return NewNormalizer(Options{}).Normalize(text)
}
