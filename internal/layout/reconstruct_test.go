package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frag builds a fragment whose box is 20px tall and centered on y.
func frag(text string, conf, x, y float64) Fragment {
	return Fragment{
		Text:       text,
		Confidence: conf,
		Box:        RectBox(x, y-10, x+60, y+10),
	}
}

func TestFragment_Derived(t *testing.T) {
	f := Fragment{Box: BoundingBox{{X: 12, Y: 40}, {X: 80, Y: 42}, {X: 81, Y: 60}, {X: 11, Y: 58}}}

	assert.Equal(t, 50.0, f.YMid())
	assert.Equal(t, 12.0, f.XStart())
}

func TestReconstruct_LowConfidenceOnly(t *testing.T) {
	fragments := []Fragment{
		frag("Sodium", 0.5, 10, 50),
		frag("140mg", 0.3, 80, 50),
		frag("Protein", 0.0, 10, 90),
	}

	text, ok := Reconstruct(fragments)
	assert.False(t, ok)
	assert.Empty(t, text)

	assert.Nil(t, NewReconstructor(DefaultOptions()).Reconstruct(fragments))
}

func TestReconstruct_Empty(t *testing.T) {
	assert.Nil(t, NewReconstructor(Options{}).Reconstruct(nil))

	_, ok := Reconstruct([]Fragment{})
	assert.False(t, ok)
}

func TestReconstruct_RowOrderByX(t *testing.T) {
	tests := []struct {
		name  string
		input []Fragment
	}{
		{"already ordered", []Fragment{frag("left", 0.9, 10, 50), frag("right", 0.9, 100, 50)}},
		{"reversed", []Fragment{frag("right", 0.9, 100, 50), frag("left", 0.9, 10, 50)}},
		{"reversed with jitter", []Fragment{frag("right", 0.9, 100, 48), frag("left", 0.9, 10, 53)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok := Reconstruct(tt.input)
			require.True(t, ok)
			assert.Equal(t, "left right", text)
		})
	}
}

func TestReconstruct_UnitPair(t *testing.T) {
	fragments := []Fragment{
		frag("140mg", 0.9, 80, 52),
		frag("Sodium", 0.9, 10, 50),
	}

	text, ok := Reconstruct(fragments)
	require.True(t, ok)
	assert.Equal(t, "Sodium: 140mg", text)
}

func TestReconstruct_UnitSuffixes(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"8g", "Total Fat: 8g"},
		{"8G", "Total Fat: 8G"},
		{"12%", "Total Fat: 12%"},
		{"140MG", "Total Fat: 140MG"},
		{"8", "Total Fat 8"},
		{"8 kcal", "Total Fat 8 kcal"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			text, ok := Reconstruct([]Fragment{frag("Total Fat", 0.9, 10, 50), frag(tt.value, 0.9, 200, 50)})
			require.True(t, ok)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestReconstruct_ThreeFragmentsNeverColon(t *testing.T) {
	fragments := []Fragment{
		frag("Total", 0.9, 10, 50),
		frag("Fat", 0.9, 70, 51),
		frag("8g", 0.9, 200, 49),
	}

	text, ok := Reconstruct(fragments)
	require.True(t, ok)
	assert.Equal(t, "Total Fat 8g", text)
	assert.NotContains(t, text, ":")
}

func TestReconstruct_SingleFragmentRows(t *testing.T) {
	fragments := []Fragment{
		frag("Nutrition Facts", 0.95, 10, 20),
		frag("8 servings per container", 0.9, 10, 60),
	}

	text, ok := Reconstruct(fragments)
	require.True(t, ok)
	assert.Equal(t, "Nutrition Facts\n8 servings per container", text)
}

func TestReconstruct_ThresholdBoundary(t *testing.T) {
	// Exactly 10px apart stays on one row, 10.5px opens a new one.
	text, ok := Reconstruct([]Fragment{frag("a", 0.9, 10, 50), frag("b", 0.9, 80, 60)})
	require.True(t, ok)
	assert.Equal(t, "a b", text)

	text, ok = Reconstruct([]Fragment{frag("a", 0.9, 10, 50), frag("b", 0.9, 80, 60.5)})
	require.True(t, ok)
	assert.Equal(t, "a\nb", text)
}

func TestReconstruct_AnchorDrift(t *testing.T) {
	// Each step is within the threshold of the previous fragment, but the
	// last one is 24px below the first.
	fragments := []Fragment{
		frag("a", 0.9, 10, 50),
		frag("b", 0.9, 60, 58),
		frag("c", 0.9, 110, 66),
		frag("d", 0.9, 160, 74),
	}

	last := NewReconstructor(Options{Anchor: AnchorLast}).Reconstruct(fragments)
	require.NotNil(t, last)
	assert.Equal(t, []string{"a b c d"}, last.Lines)
	assert.Len(t, last.Rows, 1)

	first := NewReconstructor(Options{Anchor: AnchorFirst}).Reconstruct(fragments)
	require.NotNil(t, first)
	assert.Equal(t, []string{"a b", "c d"}, first.Lines)
}

func TestReconstruct_StableOnTies(t *testing.T) {
	// Same y and same x: input order wins.
	fragments := []Fragment{
		frag("first", 0.9, 10, 50),
		frag("second", 0.9, 10, 50),
		frag("third", 0.9, 10, 50),
	}

	text, ok := Reconstruct(fragments)
	require.True(t, ok)
	assert.Equal(t, "first second third", text)
}

func TestReconstruct_MalformedGeometrySkipped(t *testing.T) {
	bad := frag("ghost", 0.99, 10, 50)
	bad.Box[2].Y = math.NaN()

	text, ok := Reconstruct([]Fragment{bad, frag("Sodium", 0.9, 10, 90), frag("5mg", 0.9, 90, 90)})
	require.True(t, ok)
	assert.Equal(t, "Sodium: 5mg", text)

	inf := frag("inf", 0.99, math.Inf(1), 50)
	_, ok = Reconstruct([]Fragment{inf})
	assert.False(t, ok)
}

func TestReconstruct_NaNConfidenceSkipped(t *testing.T) {
	ghost := frag("ghost", math.NaN(), 10, 50)

	_, ok := Reconstruct([]Fragment{ghost})
	assert.False(t, ok)

	text, ok := Reconstruct([]Fragment{ghost, frag("Sodium", 0.9, 10, 90), frag("5mg", 0.9, 90, 90)})
	require.True(t, ok)
	assert.Equal(t, "Sodium: 5mg", text)
}

func TestReconstruct_DoesNotMutateInput(t *testing.T) {
	fragments := []Fragment{
		frag("b", 0.9, 100, 90),
		frag("a", 0.9, 10, 20),
	}
	before := append([]Fragment(nil), fragments...)

	_, ok := Reconstruct(fragments)
	require.True(t, ok)
	assert.Equal(t, before, fragments)
}

func TestReconstruct_CustomOptions(t *testing.T) {
	r := NewReconstructor(Options{
		MinConfidence: 0.8,
		RowThreshold:  2,
		UnitSuffixes:  []string{"KCAL"},
	})

	doc := r.Reconstruct([]Fragment{
		frag("Calories", 0.9, 10, 50),
		frag("250kcal", 0.9, 100, 51),
		frag("noise", 0.7, 10, 80),
		frag("Sodium", 0.9, 10, 90),
		frag("5mg", 0.9, 100, 95),
	})
	require.NotNil(t, doc)
	assert.Equal(t, []string{"Calories: 250kcal", "Sodium", "5mg"}, doc.Lines)
	assert.Equal(t, []string{"kcal"}, r.Options().UnitSuffixes)
}

func TestParseAnchor(t *testing.T) {
	a, err := ParseAnchor("First")
	require.NoError(t, err)
	assert.Equal(t, AnchorFirst, a)

	a, err = ParseAnchor("")
	require.NoError(t, err)
	assert.Equal(t, AnchorLast, a)
	assert.Equal(t, "last", a.String())

	_, err = ParseAnchor("mean")
	assert.Error(t, err)
}

func TestDocument_StringNil(t *testing.T) {
	var d *Document
	assert.Equal(t, "", d.String())
}

func TestReconstruct_NutritionTable(t *testing.T) {
	rows := [][2]string{
		{"Serving Size", "55g"},
		{"Calories", "12%"},
		{"Total Fat", "8g"},
		{"Sodium", "140mg"},
		{"Carbohydrate", "30g"},
		{"Protein", "5g"},
	}

	// Feed rows bottom-up with values before labels to make ordering non-trivial.
	var fragments []Fragment
	for i := len(rows) - 1; i >= 0; i-- {
		y := 40 + float64(i)*30
		fragments = append(fragments, frag(rows[i][1], 0.92, 300, y+1), frag(rows[i][0], 0.95, 20, y))
	}

	text, ok := Reconstruct(fragments)
	require.True(t, ok)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, len(rows))
	for i, row := range rows {
		assert.Equal(t, row[0]+": "+row[1], lines[i])
	}
}
