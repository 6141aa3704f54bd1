package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/food-label-mcp/internal/imaging"
	"github.com/ironsheep/food-label-mcp/internal/layout"
)

// Level is the Tesseract page iterator granularity used for fragments.
type Level string

const (
	// LevelWord emits one fragment per word.
	LevelWord Level = "word"

	// LevelLine emits one fragment per text line.
	LevelLine Level = "line"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// ParseLevel converts a configuration value to a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelWord:
		return LevelWord, nil
	case LevelLine:
		return LevelLine, nil
	default:
		return LevelWord, fmt.Errorf("unknown OCR level: %q", s)
	}
}

func (l Level) iteratorLevel() gosseract.PageIteratorLevel {
	if l == LevelLine {
		return gosseract.RIL_TEXTLINE
	}
	return gosseract.RIL_WORD
}

// TesseractOptions configures the local Tesseract engine.
type TesseractOptions struct {
	// Languages are Tesseract language codes. Defaults to DefaultLanguage.
	Languages []string

	// Level selects word or line fragments. Defaults to LevelWord.
	Level Level

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string
}

// TesseractEngine recognizes text with a local Tesseract installation via
// gosseract. A new Tesseract client is created per call, so the engine is
// safe for concurrent use.
type TesseractEngine struct {
	opts TesseractOptions
}

// NewTesseractEngine creates a Tesseract engine, filling defaults.
func NewTesseractEngine(opts TesseractOptions) *TesseractEngine {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{DefaultLanguage}
	}
	if opts.Level == "" {
		opts.Level = LevelWord
	}
	return &TesseractEngine{opts: opts}
}

// Name implements Engine.
func (e *TesseractEngine) Name() string {
	return EngineTesseract
}

// Recognize implements Engine. Tesseract reports confidence as a percentage;
// fragments carry it scaled to [0,1].
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) ([]layout.Fragment, error) {
	const op = "Tesseract.Recognize"

	if img == nil {
		return nil, WrapOCRError(op, ErrNoImage, "")
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, err, "")
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to encode image")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			return nil, WrapOCRError(op, err, "failed to set tessdata path")
		}
	}
	if err := client.SetLanguage(e.opts.Languages...); err != nil {
		return nil, WrapOCRError(op, err, "failed to set language")
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, WrapOCRError(op, err, "failed to set image")
	}

	boxes, err := client.GetBoundingBoxes(e.opts.Level.iteratorLevel())
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, err.Error())
	}

	return fragmentsFromBoxes(boxes), nil
}

// fragmentsFromBoxes converts Tesseract boxes to fragments, dropping blank
// words.
func fragmentsFromBoxes(boxes []gosseract.BoundingBox) []layout.Fragment {
	fragments := make([]layout.Fragment, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		r := box.Box
		fragments = append(fragments, layout.Fragment{
			Text:       text,
			Confidence: box.Confidence / 100.0,
			Box:        layout.RectBox(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y)),
		})
	}
	return fragments
}

// Info describes OCR availability for health reporting.
type Info struct {
	Available bool     `json:"available"`
	Engine    string   `json:"engine"`
	Version   string   `json:"version,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// TesseractInfo reports the linked Tesseract version and the configured
// languages.
func TesseractInfo(opts TesseractOptions) Info {
	e := NewTesseractEngine(opts)

	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	if version == "" {
		return Info{
			Engine: EngineTesseract,
			Error:  "tesseract version unavailable",
		}
	}

	return Info{
		Available: true,
		Engine:    EngineTesseract,
		Version:   version,
		Languages: e.opts.Languages,
	}
}
