package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/food-label-mcp/internal/layout"
)

// Engine names accepted by New.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

// Engine turns an image into text fragments with bounding boxes and
// confidences. Fragment order is unspecified; the layout package restores
// reading order.
type Engine interface {
	// Name identifies the engine in logs and health reports.
	Name() string

	// Recognize runs text recognition on img.
	Recognize(ctx context.Context, img image.Image) ([]layout.Fragment, error)
}

// Config selects and configures an Engine.
type Config struct {
	// Engine is EngineTesseract (default) or EngineVision.
	Engine string

	Tesseract TesseractOptions
	Vision    VisionOptions
}

// New builds the engine named by cfg.Engine. The Vision engine dials the
// Google Cloud API and must be closed by the caller.
func New(ctx context.Context, cfg Config) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", EngineTesseract:
		return NewTesseractEngine(cfg.Tesseract), nil
	case EngineVision:
		return NewVisionEngine(ctx, cfg.Vision)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}
