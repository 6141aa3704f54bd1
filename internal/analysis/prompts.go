package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Candidate labels for zero-shot classification.
const (
	LabelHealthy   = "healthy"
	LabelUnhealthy = "unhealthy"
)

// CandidateLabels are the labels passed to the Classifier.
var CandidateLabels = []string{LabelHealthy, LabelUnhealthy}

// Sampling parameters for the two generation steps.
var (
	ExplanationParams = GenerationParams{MaxNewTokens: 200, Temperature: 0.3, TopP: 0.9}
	ConclusionParams  = GenerationParams{MaxNewTokens: 100, Temperature: 0.3, TopP: 0.9}
)

const (
	explanationPoints = 3

	// minPointLength is the rune count a bullet must exceed to be kept.
	minPointLength = 10

	bullet = "• "

	defaultHealthyPoint   = "Contains balanced nutritional profile with good macro distribution"
	defaultUnhealthyPoint = "Exceeds recommended values for certain nutrients"

	defaultHealthImpact         = "Impact depends on overall diet and individual nutritional needs"
	defaultUnhealthyConsumption = "Moderate consumption recommended"
	defaultHealthyConsumption   = "Can be included in regular diet"
)

func explanationPrompt(labelText, verdict string) string {
	return fmt.Sprintf(`You are a skilled nutritionist with expertise in dietary planning and nutrition science. 

Given this nutrition facts table:

%s

Provide a professional analysis in exactly 3 bullet points explaining why this food is considered %s. Focus on:
- Caloric content and serving size
- Macronutrients (fats, proteins, carbohydrates)
- Key nutrients, vitamins, and minerals
- Daily value percentages

Base your analysis on standard nutritional guidelines and recommended daily values.

Format your response as bullet points only, without any introduction or conclusion.`, labelText, verdict)
}

func conclusionPrompt(explanation string) string {
	return fmt.Sprintf(`As a nutritionist, based on this nutritional analysis:

%s

Provide two things:
1. A one-line conclusion about potential health effects based on these nutritional values
2. A specific recommendation for serving frequency (daily, weekly, monthly) considering the nutritional content

Format as two short bullet points.`, explanation)
}

// generatedLines splits model output into trimmed non-empty lines, skipping
// lines that start with '[' (echoed instruction tags).
func generatedLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(line, "[") {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines
}

// parseExplanation extracts exactly three bullet points, padding with a
// verdict-specific default when the model produced fewer usable lines.
func parseExplanation(generated, verdict string) []string {
	points := make([]string, 0, explanationPoints)
	for _, line := range generatedLines(generated) {
		point := strings.TrimSpace(strings.TrimLeft(line, "- •"))
		if utf8.RuneCountInString(point) > minPointLength {
			points = append(points, point)
		}
		if len(points) == explanationPoints {
			break
		}
	}

	pad := defaultUnhealthyPoint
	if verdict == LabelHealthy {
		pad = defaultHealthyPoint
	}
	for len(points) < explanationPoints {
		points = append(points, pad)
	}
	return points
}

// parseConclusion returns the health impact and consumption lines. ok is
// false when the model produced nothing usable.
func parseConclusion(generated string) (impact, consumption string, ok bool) {
	var points []string
	for _, line := range generatedLines(generated) {
		points = append(points, strings.TrimLeft(line, "- •"))
	}
	if len(points) == 0 {
		return "", "", false
	}
	if len(points) > 1 {
		return points[0], points[1], true
	}
	return points[0], "", true
}

func defaultConsumption(verdict string) string {
	if verdict == LabelUnhealthy {
		return defaultUnhealthyConsumption
	}
	return defaultHealthyConsumption
}

func bulletList(points []string) string {
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = bullet + p
	}
	return strings.Join(lines, "\n")
}
