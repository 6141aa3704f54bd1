package lexicon

import "strings"

// Rule replaces every occurrence of From with To.
type Rule struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Table is an ordered, immutable list of correction rules.
type Table struct {
	rules []Rule
}

// NewTable copies rules into a Table. Rules with an empty From and identity
// rules are dropped since they cannot change the text.
func NewTable(rules ...Rule) Table {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.From == "" || r.From == r.To {
			continue
		}
		kept = append(kept, r)
	}
	return Table{rules: kept}
}

// DefaultTable returns the built-in corrections for English nutrition labels.
func DefaultTable() Table {
	return NewTable(
		Rule{"|", "1"},
		Rule{"O", "0"},
		Rule{"g.", "g"},
		Rule{"rng", "mg"},
		Rule{"mq", "mg"},
		Rule{"q", "g"},
		Rule{"%o", "%"},
		Rule{"qg", "g"},
		Rule{"mgl", "mg"},
		Rule{"Proteln", "Protein"},
		Rule{"Servina Size", "Serving Size"},
		Rule{"Calorles", "Calories"},
		Rule{"Sodlum", "Sodium"},
		Rule{"Carbohvdrate", "Carbohydrate"},
	)
}

// Rules returns a copy of the table's rules in application order.
func (t Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Len returns the number of rules.
func (t Table) Len() int {
	return len(t.rules)
}

// Apply runs every rule over text in order.
func (t Table) Apply(text string) string {
	for _, r := range t.rules {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}
