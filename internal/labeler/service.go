package labeler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/food-label-mcp/internal/analysis"
	"github.com/ironsheep/food-label-mcp/internal/imaging"
	"github.com/ironsheep/food-label-mcp/internal/layout"
	"github.com/ironsheep/food-label-mcp/internal/lexicon"
	"github.com/ironsheep/food-label-mcp/internal/logger"
	"github.com/ironsheep/food-label-mcp/internal/ocr"
)

// UnreadableMessage is the user-facing error for labels that yield no text.
const UnreadableMessage = "Could not read the label. Please try a clearer image."

// ErrUnreadableLabel is returned when OCR produces no usable text.
var ErrUnreadableLabel = errors.New("could not read the label")

// ErrAnalysisDisabled is returned by AnalyzeText when no analyzer is
// configured.
var ErrAnalysisDisabled = errors.New("analysis is not configured")

// Options configures a Service.
type Options struct {
	Layout  layout.Options
	Lexicon lexicon.Options
	Enhance imaging.EnhanceOptions

	// Cache is shared with other components. Nil creates a private cache.
	Cache *imaging.ImageCache

	Logger *zerolog.Logger
}

// Service runs the label pipeline.
type Service struct {
	cache         *imaging.ImageCache
	engine        ocr.Engine
	reconstructor *layout.Reconstructor
	normalizer    *lexicon.Normalizer
	analyzer      *analysis.Analyzer
	enhance       imaging.EnhanceOptions
	log           zerolog.Logger
}

// New creates a Service. analyzer may be nil, in which case AnalyzeLabel
// and AnalyzeText report ErrAnalysisDisabled.
func New(engine ocr.Engine, analyzer *analysis.Analyzer, opts Options) *Service {
	log := logger.WithComponent("labeler")
	if opts.Logger != nil {
		log = *opts.Logger
	}
	cache := opts.Cache
	if cache == nil {
		cache = imaging.NewImageCache()
	}

	return &Service{
		cache:         cache,
		engine:        engine,
		reconstructor: layout.NewReconstructor(opts.Layout),
		normalizer:    lexicon.NewNormalizer(opts.Lexicon),
		analyzer:      analyzer,
		enhance:       opts.Enhance,
		log:           log,
	}
}

// Cache returns the image cache used for path lookups.
func (s *Service) Cache() *imaging.ImageCache {
	return s.cache
}

// EngineName returns the configured OCR engine name.
func (s *Service) EngineName() string {
	if s.engine == nil {
		return ""
	}
	return s.engine.Name()
}

// AnalysisEnabled reports whether an analyzer is configured.
func (s *Service) AnalysisEnabled() bool {
	return s.analyzer != nil
}

// ExtractOptions tunes a single extraction.
type ExtractOptions struct {
	// Region crops the photo before enhancement. Zero means the whole image.
	Region imaging.Region

	// SkipEnhance runs OCR on the photo as loaded.
	SkipEnhance bool
}

// Extraction is the result of reading a label photo.
type Extraction struct {
	// Text is the reconstructed and normalized label text.
	Text string `json:"text"`

	// RawText is the reconstructed text before normalization.
	RawText string `json:"raw_text"`

	// Lines are the reconstructed rows, top to bottom.
	Lines []string `json:"lines"`

	Fragments    int                  `json:"fragment_count"`
	Rows         int                  `json:"row_count"`
	Plausibility lexicon.Plausibility `json:"plausibility"`
	Engine       string               `json:"engine"`
	Enhanced     bool                 `json:"enhanced"`
	Quality      imaging.Quality      `json:"quality"`
	ElapsedMS    int64                `json:"elapsed_ms"`
}

// Preprocess loads the photo at path, crops it and enhances it. When
// enhancement fails the cropped photo is returned and enhanced is false.
func (s *Service) Preprocess(path string, opts ExtractOptions) (img image.Image, enhanced bool, err error) {
	src, err := s.cache.Load(path)
	if err != nil {
		return nil, false, err
	}
	return s.prepare(src, opts)
}

// ExtractText reads the label at path.
func (s *Service) ExtractText(ctx context.Context, path string, opts ExtractOptions) (*Extraction, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.ExtractImage(ctx, img, opts)
}

// ExtractImage reads a label from an already decoded photo. It returns an
// error wrapping ErrUnreadableLabel when OCR fails or yields no text.
func (s *Service) ExtractImage(ctx context.Context, img image.Image, opts ExtractOptions) (*Extraction, error) {
	start := time.Now()

	prepared, enhanced, err := s.prepare(img, opts)
	if err != nil {
		return nil, err
	}

	quality := imaging.MeasureQuality(prepared)
	if quality.LowContrast {
		s.log.Warn().
			Float64("lightness_stddev", quality.LightnessStdDev).
			Msg("Low contrast image, OCR may be unreliable")
	}

	fragments, err := s.engine.Recognize(ctx, prepared)
	if err != nil {
		s.log.Error().Err(err).Str("engine", s.engine.Name()).Msg("OCR error")
		return nil, fmt.Errorf("%w: %w", ErrUnreadableLabel, err)
	}

	doc := s.reconstructor.Reconstruct(fragments)
	if doc == nil {
		s.log.Warn().Int("fragments", len(fragments)).Msg("No fragment passed the confidence filter")
		return nil, ErrUnreadableLabel
	}

	raw := doc.String()
	text := s.normalizer.Normalize(raw)
	if strings.TrimSpace(text) == "" {
		return nil, ErrUnreadableLabel
	}

	ext := &Extraction{
		Text:         text,
		RawText:      raw,
		Lines:        strings.Split(text, "\n"),
		Fragments:    len(fragments),
		Rows:         len(doc.Rows),
		Plausibility: s.normalizer.Assess(text),
		Engine:       s.engine.Name(),
		Enhanced:     enhanced,
		Quality:      quality,
		ElapsedMS:    time.Since(start).Milliseconds(),
	}

	s.log.Debug().
		Str("text", text).
		Int("fragments", ext.Fragments).
		Int("rows", ext.Rows).
		Int64("elapsed_ms", ext.ElapsedMS).
		Msg("Extracted text")

	return ext, nil
}

// Recognize preprocesses the photo at path and returns the engine's raw
// fragments without reconstruction.
func (s *Service) Recognize(ctx context.Context, path string, opts ExtractOptions) ([]layout.Fragment, bool, error) {
	src, err := s.cache.Load(path)
	if err != nil {
		return nil, false, err
	}
	prepared, enhanced, err := s.prepare(src, opts)
	if err != nil {
		return nil, false, err
	}
	fragments, err := s.engine.Recognize(ctx, prepared)
	if err != nil {
		return nil, enhanced, fmt.Errorf("failed to recognize text: %w", err)
	}
	return fragments, enhanced, nil
}

// prepare crops and enhances src. Only the crop can fail; enhancement
// errors fall back to the cropped photo.
func (s *Service) prepare(src image.Image, opts ExtractOptions) (image.Image, bool, error) {
	img, err := imaging.CropRegion(src, opts.Region)
	if err != nil {
		return nil, false, fmt.Errorf("failed to crop image: %w", err)
	}
	if opts.SkipEnhance {
		return img, false, nil
	}

	enhanced, err := imaging.Enhance(img, s.enhance)
	if err != nil {
		s.log.Error().Err(err).Msg("Preprocessing error, using original image")
		return img, false, nil
	}
	return enhanced, true, nil
}

// Reconstruct orders already recognized fragments into label lines. It
// returns nil when no fragment qualifies.
func (s *Service) Reconstruct(fragments []layout.Fragment) *layout.Document {
	return s.reconstructor.Reconstruct(fragments)
}

// Normalize corrects common OCR errors in label text.
func (s *Service) Normalize(text string) string {
	return s.normalizer.Normalize(text)
}

// Assess runs the keyword plausibility check on text.
func (s *Service) Assess(text string) lexicon.Plausibility {
	return s.normalizer.Assess(text)
}

// AnalyzeText runs the analysis step on label text.
func (s *Service) AnalyzeText(ctx context.Context, text string) (*analysis.Report, error) {
	if s.analyzer == nil {
		return nil, ErrAnalysisDisabled
	}
	return s.analyzer.Analyze(ctx, text), nil
}

// LabelAnalysis is the end-to-end result for one photo.
type LabelAnalysis struct {
	Success       bool             `json:"success"`
	ExtractedText string           `json:"extracted_text,omitempty"`
	Analysis      string           `json:"analysis,omitempty"`
	Report        *analysis.Report `json:"report,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// AnalyzeLabel reads and analyzes the label at path. Failures are reported
// in the result rather than returned.
func (s *Service) AnalyzeLabel(ctx context.Context, path string, opts ExtractOptions) *LabelAnalysis {
	img, err := s.cache.Load(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Error processing image")
		return &LabelAnalysis{Error: err.Error()}
	}
	return s.AnalyzeImage(ctx, img, opts)
}

// AnalyzeImage reads and analyzes an already decoded label photo.
func (s *Service) AnalyzeImage(ctx context.Context, img image.Image, opts ExtractOptions) *LabelAnalysis {
	ext, err := s.ExtractImage(ctx, img, opts)
	if err != nil {
		if errors.Is(err, ErrUnreadableLabel) {
			return &LabelAnalysis{Error: UnreadableMessage}
		}
		s.log.Error().Err(err).Msg("Error processing image")
		return &LabelAnalysis{Error: err.Error()}
	}

	report, err := s.AnalyzeText(ctx, ext.Text)
	if err != nil {
		return &LabelAnalysis{ExtractedText: ext.Text, Error: err.Error()}
	}

	return &LabelAnalysis{
		Success:       true,
		ExtractedText: ext.Text,
		Analysis:      report.String(),
		Report:        report,
	}
}
