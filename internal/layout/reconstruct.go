package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Anchor selects which y-coordinate a new fragment is compared against while
// grouping rows.
type Anchor int

const (
	// AnchorLast compares against the most recently appended fragment.
	AnchorLast Anchor = iota

	// AnchorFirst compares against the first fragment of the current row.
	AnchorFirst
)

// String returns the configuration name of the anchor mode.
func (a Anchor) String() string {
	switch a {
	case AnchorFirst:
		return "first"
	default:
		return "last"
	}
}

// ParseAnchor converts a configuration value ("last" or "first") to an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return AnchorLast, nil
	case "first":
		return AnchorFirst, nil
	default:
		return AnchorLast, fmt.Errorf("unknown row anchor: %q", s)
	}
}

const (
	// DefaultMinConfidence is the confidence a fragment must exceed to be kept.
	DefaultMinConfidence = 0.5

	// DefaultRowThreshold is the vertical distance in pixels within which two
	// fragments belong to the same row.
	DefaultRowThreshold = 10.0
)

// DefaultUnitSuffixes are the value endings that turn a two-fragment row into
// a "label: value" line.
var DefaultUnitSuffixes = []string{"g", "mg", "%"}

// Options configures a Reconstructor. Zero fields take the defaults.
type Options struct {
	MinConfidence float64
	RowThreshold  float64
	UnitSuffixes  []string
	Anchor        Anchor
}

// DefaultOptions returns the options used by the package-level Reconstruct.
func DefaultOptions() Options {
	return Options{
		MinConfidence: DefaultMinConfidence,
		RowThreshold:  DefaultRowThreshold,
		UnitSuffixes:  append([]string(nil), DefaultUnitSuffixes...),
		Anchor:        AnchorLast,
	}
}

// Reconstructor converts unordered fragments into ordered text lines.
type Reconstructor struct {
	opts Options
}

// NewReconstructor creates a Reconstructor, filling zero options with defaults.
func NewReconstructor(opts Options) *Reconstructor {
	if opts.MinConfidence == 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	if opts.RowThreshold == 0 {
		opts.RowThreshold = DefaultRowThreshold
	}
	if len(opts.UnitSuffixes) == 0 {
		opts.UnitSuffixes = DefaultUnitSuffixes
	}
	suffixes := make([]string, len(opts.UnitSuffixes))
	for i, s := range opts.UnitSuffixes {
		suffixes[i] = strings.ToLower(s)
	}
	opts.UnitSuffixes = suffixes
	return &Reconstructor{opts: opts}
}

// Options returns a copy of the effective options.
func (r *Reconstructor) Options() Options {
	o := r.opts
	o.UnitSuffixes = append([]string(nil), r.opts.UnitSuffixes...)
	return o
}

// Document is the reconstructed table: one line per row, top to bottom.
type Document struct {
	Rows  []Row    `json:"rows"`
	Lines []string `json:"lines"`
}

// String joins the lines with newline separators.
func (d *Document) String() string {
	if d == nil {
		return ""
	}
	return strings.Join(d.Lines, "\n")
}

// Reconstruct groups fragments into rows and formats each row as a line.
//
// Returns nil when no fragment survives the confidence and geometry filter;
// callers treat that as "no text found". The input slice is not modified.
func (r *Reconstructor) Reconstruct(fragments []Fragment) *Document {
	kept := r.filter(fragments)
	if len(kept) == 0 {
		return nil
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].YMid() < kept[j].YMid()
	})

	rows := r.group(kept)
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = r.formatRow(row)
	}

	return &Document{Rows: rows, Lines: lines}
}

func (r *Reconstructor) filter(fragments []Fragment) []Fragment {
	kept := make([]Fragment, 0, len(fragments))
	for _, f := range fragments {
		// Written as a negated > so NaN confidences are dropped.
		if !(f.Confidence > r.opts.MinConfidence) || !f.finite() {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// group performs the single forward scan over y-sorted fragments.
func (r *Reconstructor) group(sorted []Fragment) []Row {
	var (
		rows    []Row
		current Row
		lastY   float64
		haveY   bool
	)

	closeRow := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].XStart() < current[j].XStart()
		})
		rows = append(rows, current)
	}

	for _, f := range sorted {
		y := f.YMid()
		if !haveY || math.Abs(y-lastY) <= r.opts.RowThreshold {
			current = append(current, f)
			if !haveY || r.opts.Anchor == AnchorLast {
				lastY = y
			}
			haveY = true
			continue
		}
		closeRow()
		current = Row{f}
		lastY = y
	}
	closeRow()

	return rows
}

func (r *Reconstructor) formatRow(row Row) string {
	if len(row) == 2 && r.hasUnitSuffix(row[1].Text) {
		return row[0].Text + ": " + row[1].Text
	}
	return strings.Join(row.Texts(), " ")
}

func (r *Reconstructor) hasUnitSuffix(text string) bool {
	lower := strings.ToLower(text)
	for _, unit := range r.opts.UnitSuffixes {
		if strings.HasSuffix(lower, unit) {
			return true
		}
	}
	return false
}

var defaultReconstructor = NewReconstructor(DefaultOptions())

// Reconstruct runs the default Reconstructor and returns the formatted text.
// The boolean is false when no fragment qualified.
func Reconstruct(fragments []Fragment) (string, bool) {
	doc := defaultReconstructor.Reconstruct(fragments)
	if doc == nil {
		return "", false
	}
	return doc.String(), true
}
