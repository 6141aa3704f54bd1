package analysis

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Outcome distinguishes a completed analysis from the two fallbacks.
type Outcome string

const (
	// OutcomeAnalyzed means the classifier and generator both answered.
	OutcomeAnalyzed Outcome = "analyzed"

	// OutcomeUnableToAnalyze means the last attempt failed in transport.
	OutcomeUnableToAnalyze Outcome = "unable_to_analyze"

	// OutcomeAnalysisFailed means every attempt was refused or answered
	// with an unusable response.
	OutcomeAnalysisFailed Outcome = "analysis_failed"
)

const unableToAnalyzeText = `Verdict: Unable to analyze
Confidence: N/A
Explanation:
• Could not process the ingredients
• Please try with a clearer image
• Ensure text is readable
Health Impact: Unable to determine
Recommended Consumption: Consult with healthcare provider`

const analysisFailedText = `Verdict: Analysis failed
Confidence: N/A
Explanation:
• Analysis unavailable
• Please try again with clearer text
• Make sure ingredients are visible
Health Impact: Unable to determine
Recommended Consumption: Consult with healthcare provider`

// Report is the result of analyzing one label.
type Report struct {
	Outcome Outcome `json:"outcome"`

	// Verdict is the winning classifier label, e.g. "healthy".
	Verdict string `json:"verdict"`

	// Confidence is the classifier score for Verdict in [0,1].
	Confidence float64 `json:"confidence"`

	Explanation  []string `json:"explanation"`
	HealthImpact string   `json:"health_impact"`
	Consumption  string   `json:"recommended_consumption"`
}

func unableToAnalyzeReport() *Report {
	return &Report{
		Outcome:      OutcomeUnableToAnalyze,
		Verdict:      "Unable to analyze",
		Explanation:  []string{"Could not process the ingredients", "Please try with a clearer image", "Ensure text is readable"},
		HealthImpact: "Unable to determine",
		Consumption:  "Consult with healthcare provider",
	}
}

func analysisFailedReport() *Report {
	return &Report{
		Outcome:      OutcomeAnalysisFailed,
		Verdict:      "Analysis failed",
		Explanation:  []string{"Analysis unavailable", "Please try again with clearer text", "Make sure ingredients are visible"},
		HealthImpact: "Unable to determine",
		Consumption:  "Consult with healthcare provider",
	}
}

// Fallback reports whether the report is one of the fixed fallbacks.
func (r *Report) Fallback() bool {
	return r.Outcome != OutcomeAnalyzed
}

// Title returns the verdict in title case, e.g. "Healthy".
func (r *Report) Title() string {
	if r.Fallback() {
		return r.Verdict
	}
	return cases.Title(language.English).String(r.Verdict)
}

// String renders the verdict block shown to users.
func (r *Report) String() string {
	switch r.Outcome {
	case OutcomeUnableToAnalyze:
		return unableToAnalyzeText
	case OutcomeAnalysisFailed:
		return analysisFailedText
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Verdict: %s\n", r.Title())
	fmt.Fprintf(&sb, "Confidence: %.0f%%\n", r.Confidence*100)
	sb.WriteString("Explanation:\n")
	sb.WriteString(bulletList(r.Explanation))
	sb.WriteString("\nHealth Impact:\n")
	sb.WriteString(r.HealthImpact)
	sb.WriteString("\nRecommended Consumption:\n")
	sb.WriteString(r.Consumption)
	return sb.String()
}
