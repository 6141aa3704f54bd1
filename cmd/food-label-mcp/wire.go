package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ironsheep/food-label-mcp/internal/analysis"
	"github.com/ironsheep/food-label-mcp/internal/config"
	"github.com/ironsheep/food-label-mcp/internal/imaging"
	"github.com/ironsheep/food-label-mcp/internal/labeler"
	"github.com/ironsheep/food-label-mcp/internal/layout"
	"github.com/ironsheep/food-label-mcp/internal/lexicon"
	"github.com/ironsheep/food-label-mcp/internal/logger"
	"github.com/ironsheep/food-label-mcp/internal/ocr"
)

func layoutOptions(cfg *config.Config) (layout.Options, error) {
	anchor, err := layout.ParseAnchor(cfg.Layout.Anchor)
	if err != nil {
		return layout.Options{}, err
	}
	opts := layout.DefaultOptions()
	opts.MinConfidence = cfg.Layout.MinConfidence
	opts.RowThreshold = cfg.Layout.RowThreshold
	opts.Anchor = anchor
	return opts, nil
}

func lexiconOptions(cfg *config.Config) lexicon.Options {
	return lexicon.Options{MinKeywords: cfg.Lexicon.MinKeywords}
}

func enhanceOptions(cfg *config.Config) imaging.EnhanceOptions {
	return imaging.EnhanceOptions{
		Contrast:  cfg.Enhance.Contrast,
		Sharpness: cfg.Enhance.Sharpness,
		MinWidth:  cfg.Enhance.MinWidth,
	}
}

func ocrConfig(cfg *config.Config) (ocr.Config, error) {
	level, err := ocr.ParseLevel(cfg.OCR.Level)
	if err != nil {
		return ocr.Config{}, err
	}
	return ocr.Config{
		Engine: cfg.OCR.Engine,
		Tesseract: ocr.TesseractOptions{
			Languages:      cfg.OCR.Languages,
			Level:          level,
			TessdataPrefix: cfg.OCR.TessdataPrefix,
		},
		Vision: ocr.VisionOptions{
			LanguageHints: cfg.OCR.LanguageHints,
		},
	}, nil
}

// ocrInfo reports engine availability for the health tool.
func ocrInfo(oc ocr.Config) func() ocr.Info {
	if oc.Engine == ocr.EngineVision {
		return func() ocr.Info {
			return ocr.Info{Available: true, Engine: ocr.EngineVision, Languages: oc.Vision.LanguageHints}
		}
	}
	return func() ocr.Info {
		return ocr.TesseractInfo(oc.Tesseract)
	}
}

// buildAnalyzer returns nil when analysis is disabled.
func buildAnalyzer(cfg *config.Config) *analysis.Analyzer {
	ac := cfg.Analysis
	if !ac.Enabled {
		return nil
	}

	hf := analysis.NewHuggingFaceClient(analysis.HuggingFaceOptions{
		BaseURL:         ac.BaseURL,
		Token:           ac.Token,
		ClassifierModel: ac.ClassifierModel,
		GeneratorModel:  ac.GeneratorModel,
		Timeout:         ac.Timeout,
	})

	var gen analysis.Generator = hf
	if ac.Generator == config.GeneratorOpenAI {
		gen = analysis.NewOpenAIGenerator(analysis.OpenAIOptions{
			APIKey:  ac.OpenAIAPIKey,
			Model:   ac.OpenAIModel,
			BaseURL: ac.OpenAIBaseURL,
		})
	}

	return analysis.NewAnalyzer(hf, gen, analysis.Options{
		Retry: analysis.RetryPolicy{
			MaxAttempts:  ac.MaxAttempts,
			Delay:        ac.RetryDelay,
			LoadingDelay: ac.LoadingDelay,
		},
	})
}

// pipeline is the fully wired label service plus what the server needs to
// report health. Close releases the OCR engine.
type pipeline struct {
	svc     *labeler.Service
	ocrInfo func() ocr.Info
	closer  io.Closer
}

func (p *pipeline) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	log := logger.WithComponent("wire")

	oc, err := ocrConfig(cfg)
	if err != nil {
		return nil, err
	}
	lo, err := layoutOptions(cfg)
	if err != nil {
		return nil, err
	}

	engine, err := ocr.New(ctx, oc)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	analyzer := buildAnalyzer(cfg)

	log.Debug().
		Str("engine", engine.Name()).
		Bool("analysis", analyzer != nil).
		Str("generator", cfg.Analysis.Generator).
		Msg("Pipeline configured")

	p := &pipeline{
		svc: labeler.New(engine, analyzer, labeler.Options{
			Layout:  lo,
			Lexicon: lexiconOptions(cfg),
			Enhance: enhanceOptions(cfg),
		}),
		ocrInfo: ocrInfo(oc),
	}
	if c, ok := engine.(io.Closer); ok {
		p.closer = c
	}
	return p, nil
}
