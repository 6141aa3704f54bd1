package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/food-label-mcp/internal/logger"
)

// Options configures an Analyzer.
type Options struct {
	Retry  RetryPolicy
	Logger *zerolog.Logger
}

// Analyzer produces a Report from label text.
type Analyzer struct {
	classifier Classifier
	generator  Generator
	retry      RetryPolicy
	log        zerolog.Logger
}

// NewAnalyzer creates an Analyzer. A zero Retry uses DefaultRetryPolicy.
func NewAnalyzer(classifier Classifier, generator Generator, opts Options) *Analyzer {
	log := logger.WithComponent("analysis")
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Analyzer{
		classifier: classifier,
		generator:  generator,
		retry:      opts.Retry,
		log:        log,
	}
}

// Analyze classifies and explains label text. It never fails: when every
// attempt errors it returns the "Analysis failed" report, or the "Unable to
// analyze" report if the last failure was a transport error.
func (a *Analyzer) Analyze(ctx context.Context, text string) *Report {
	if strings.TrimSpace(text) == "" {
		a.log.Warn().Msg("No text to analyze")
		return analysisFailedReport()
	}

	var report *Report
	err := a.retry.Do(ctx, a.log, func(ctx context.Context, attempt int) error {
		r, err := a.analyzeOnce(ctx, text)
		if err != nil {
			return err
		}
		report = r
		return nil
	})
	if err == nil {
		return report
	}

	if IsRemoteRefusal(err) {
		a.log.Error().Err(err).Msg("Analysis failed after all attempts")
		return analysisFailedReport()
	}
	a.log.Error().Err(err).Msg("Error during analysis")
	return unableToAnalyzeReport()
}

// analyzeOnce runs one pass of the sequence. Only the first classification
// and the explanation are required.
func (a *Analyzer) analyzeOnce(ctx context.Context, text string) (*Report, error) {
	a.log.Debug().Msg("Sending text for classification")

	cls, err := a.classifier.Classify(ctx, text, CandidateLabels)
	if err != nil {
		return nil, fmt.Errorf("failed to classify label: %w", err)
	}
	verdict, confidence, ok := cls.Top()
	if !ok {
		return nil, fmt.Errorf("failed to classify label: %w", ErrEmptyResponse)
	}

	generated, err := a.generator.Generate(ctx, explanationPrompt(text, verdict), ExplanationParams)
	if err != nil {
		return nil, fmt.Errorf("failed to generate explanation: %w", err)
	}
	points := parseExplanation(generated, verdict)

	report := &Report{
		Outcome:      OutcomeAnalyzed,
		Verdict:      verdict,
		Confidence:   confidence,
		Explanation:  points,
		HealthImpact: defaultHealthImpact,
		Consumption:  defaultConsumption(verdict),
	}
	a.conclude(ctx, report)

	return report, nil
}

// conclude fills the health impact and consumption lines and reclassifies
// on them. Failures keep the defaults already in r.
func (a *Analyzer) conclude(ctx context.Context, r *Report) {
	generated, err := a.generator.Generate(ctx, conclusionPrompt(bulletList(r.Explanation)), ConclusionParams)
	if err != nil {
		a.log.Error().Err(err).Msg("Error in conclusion generation")
		return
	}

	impact, consumption, ok := parseConclusion(generated)
	if !ok {
		return
	}
	r.HealthImpact = impact
	if consumption != "" {
		r.Consumption = consumption
	}

	cls, err := a.classifier.Classify(ctx, r.HealthImpact+"\n"+r.Consumption, CandidateLabels)
	if err != nil {
		a.log.Warn().Err(err).Msg("Final classification failed, keeping first verdict")
		return
	}
	if verdict, confidence, ok := cls.Top(); ok {
		r.Verdict = verdict
		r.Confidence = confidence
	}
}
