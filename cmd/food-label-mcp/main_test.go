package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/food-label-mcp/internal/config"
	"github.com/ironsheep/food-label-mcp/internal/imaging"
	"github.com/ironsheep/food-label-mcp/internal/layout"
	"github.com/ironsheep/food-label-mcp/internal/ocr"
)

// run executes the root command with args and stdin, returning stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FOODLABEL_LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

const sodiumFragments = `[
	[[[80,42],[140,42],[140,62],[80,62]], ["140rng", 0.9]],
	[[[10,40],[60,40],[60,60],[10,60]], ["Sodlum", 0.9]],
	[[[10,10],[90,10],[90,30],[10,30]], ["Total Fat 8g", 0.95]]
]`

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("")
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = parseRegion(" 10, 20 ,300,400")
	require.NoError(t, err)
	assert.Equal(t, imaging.Region{X1: 10, Y1: 20, X2: 300, Y2: 400}, r)

	_, err = parseRegion("1,2,3")
	assert.Error(t, err)
	_, err = parseRegion("1,2,3,x")
	assert.Error(t, err)
}

func TestReconstructCmd(t *testing.T) {
	out, err := run(t, sodiumFragments, "reconstruct")
	require.NoError(t, err)
	assert.Equal(t, "Total Fat 8g\nSodlum: 140rng\n", out)
}

func TestReconstructCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragments.json")
	require.NoError(t, os.WriteFile(path, []byte(sodiumFragments), 0o644))

	out, err := run(t, "", "reconstruct", "--json", path)
	require.NoError(t, err)

	var doc layout.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"Total Fat 8g", "Sodlum: 140rng"}, doc.Lines)
	assert.Len(t, doc.Rows, 2)
}

func TestReconstructCmd_AnchorFirst(t *testing.T) {
	t.Setenv("FOODLABEL_LAYOUT_ANCHOR", "first")

	out, err := run(t, sodiumFragments, "reconstruct")
	require.NoError(t, err)
	assert.Equal(t, "Total Fat 8g\nSodlum: 140rng\n", out)
}

func TestReconstructCmd_NothingQualifies(t *testing.T) {
	_, err := run(t, `[[[[0,0],[1,0],[1,1],[0,1]], ["x", 0.4]]]`, "reconstruct")
	assert.ErrorIs(t, err, errNoText)
}

func TestReconstructCmd_Malformed(t *testing.T) {
	_, err := run(t, `[[[[0,0]], ["x", 0.9]]]`, "reconstruct")
	assert.ErrorIs(t, err, layout.ErrMalformedFragment)
}

func TestNormalizeCmd(t *testing.T) {
	out, err := run(t, "Sodlum:  140rng\nProteln 5g\n", "normalize")
	require.NoError(t, err)
	assert.Equal(t, "Sodium: 140mg\nProtein 5g\n", out)
}

func TestNormalizeCmd_JSON(t *testing.T) {
	out, err := run(t, "Servina Size 1 cup\nCalorles 230\nTotal Fat 8g\nSodlum 140rng", "normalize", "--json")
	require.NoError(t, err)

	var res struct {
		Text         string `json:"text"`
		Plausibility struct {
			Count     int  `json:"count"`
			Plausible bool `json:"plausible"`
		} `json:"plausibility"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Serving Size 1 cup\nCalories 230\nTotal Fat 8g\nSodium 140mg", res.Text)
	assert.Equal(t, 4, res.Plausibility.Count)
	assert.True(t, res.Plausibility.Plausible)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("FOODLABEL_OCR_ENGINE", "paddle")
	_, err := run(t, "", "normalize")
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestLayoutOptions(t *testing.T) {
	cfg := &config.Config{Layout: config.LayoutConfig{MinConfidence: 0.6, RowThreshold: 12, Anchor: "first"}}
	opts, err := layoutOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.6, opts.MinConfidence)
	assert.Equal(t, 12.0, opts.RowThreshold)
	assert.Equal(t, layout.AnchorFirst, opts.Anchor)
	assert.NotEmpty(t, opts.UnitSuffixes)

	cfg.Layout.Anchor = "middle"
	_, err = layoutOptions(cfg)
	assert.Error(t, err)
}

func TestOCRConfig(t *testing.T) {
	cfg := &config.Config{OCR: config.OCRConfig{
		Engine:        ocr.EngineVision,
		Languages:     []string{"eng"},
		Level:         "line",
		LanguageHints: []string{"en"},
	}}
	oc, err := ocrConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, ocr.LevelLine, oc.Tesseract.Level)
	assert.Equal(t, []string{"en"}, oc.Vision.LanguageHints)

	info := ocrInfo(oc)()
	assert.True(t, info.Available)
	assert.Equal(t, ocr.EngineVision, info.Engine)

	cfg.OCR.Level = "paragraph"
	_, err = ocrConfig(cfg)
	assert.Error(t, err)
}

func TestBuildAnalyzer(t *testing.T) {
	cfg := &config.Config{Analysis: config.AnalysisConfig{Enabled: false}}
	assert.Nil(t, buildAnalyzer(cfg))

	cfg.Analysis = config.AnalysisConfig{Enabled: true, Generator: config.GeneratorOpenAI, MaxAttempts: 1}
	assert.NotNil(t, buildAnalyzer(cfg))
}
