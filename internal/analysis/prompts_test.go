package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExplanation(t *testing.T) {
	generated := `[INST] echoed
- High in saturated fat at 40% of daily value
• Sodium content of 900mg is excessive
  short
- Sugars account for most of the carbohydrates
- A fourth point that should be dropped`

	points := parseExplanation(generated, LabelUnhealthy)
	assert.Equal(t, []string{
		"High in saturated fat at 40% of daily value",
		"Sodium content of 900mg is excessive",
		"Sugars account for most of the carbohydrates",
	}, points)
}

func TestParseExplanation_Padding(t *testing.T) {
	assert.Equal(t, []string{
		"Good source of dietary fiber per serving",
		defaultHealthyPoint,
		defaultHealthyPoint,
	}, parseExplanation("- Good source of dietary fiber per serving\n- ok", LabelHealthy))

	assert.Equal(t, []string{
		defaultUnhealthyPoint, defaultUnhealthyPoint, defaultUnhealthyPoint,
	}, parseExplanation("", LabelUnhealthy))
}

func TestParseExplanation_LengthCountsRunes(t *testing.T) {
	// Ten runes is not enough even when the byte length is larger.
	points := parseExplanation("- éééééééééé", LabelHealthy)
	assert.Equal(t, defaultHealthyPoint, points[0])

	points = parseExplanation("- ééééééééééé", LabelHealthy)
	assert.Equal(t, "ééééééééééé", points[0])
}

func TestParseConclusion(t *testing.T) {
	impact, consumption, ok := parseConclusion("- May raise blood pressure if eaten often\n- Weekly at most\n- extra")
	assert.True(t, ok)
	assert.Equal(t, "May raise blood pressure if eaten often", impact)
	assert.Equal(t, "Weekly at most", consumption)

	impact, consumption, ok = parseConclusion("• Supports steady energy")
	assert.True(t, ok)
	assert.Equal(t, "Supports steady energy", impact)
	assert.Empty(t, consumption)

	_, _, ok = parseConclusion("\n[/INST]\n  \n")
	assert.False(t, ok)
}

func TestPrompts(t *testing.T) {
	p := explanationPrompt("Sodium: 140mg", LabelHealthy)
	assert.Contains(t, p, "Sodium: 140mg")
	assert.Contains(t, p, "explaining why this food is considered healthy")
	assert.NotContains(t, p, "[INST]")

	c := conclusionPrompt("• a\n• b\n• c")
	assert.True(t, strings.HasPrefix(c, "As a nutritionist"))
	assert.Contains(t, c, "• a\n• b\n• c")
}

func TestDefaultConsumption(t *testing.T) {
	assert.Equal(t, defaultUnhealthyConsumption, defaultConsumption(LabelUnhealthy))
	assert.Equal(t, defaultHealthyConsumption, defaultConsumption(LabelHealthy))
	assert.Equal(t, defaultHealthyConsumption, defaultConsumption("neutral"))
}
