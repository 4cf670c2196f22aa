package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummary_ValidJSON(t *testing.T) {
	summary := ParseSummary(`{"summary": "A web framework.", "cool_facts": ["fast", "tiny"]}`)

	assert.Equal(t, "A web framework.", summary.Summary)
	require.Len(t, summary.CoolFacts, 2)
	assert.Equal(t, "fast", summary.CoolFacts[0])
}

func TestParseSummary_FencedJSON(t *testing.T) {
	summary := ParseSummary("```json\n{\"summary\": \"A parser.\", \"cool_facts\": []}\n```")

	assert.Equal(t, "A parser.", summary.Summary)
	assert.Empty(t, summary.CoolFacts)
}

func TestParseSummary_NullFacts(t *testing.T) {
	summary := ParseSummary(`{"summary": "No facts here."}`)

	assert.Equal(t, "No facts here.", summary.Summary)
	assert.NotNil(t, summary.CoolFacts)
	assert.Empty(t, summary.CoolFacts)
}

func TestParseSummary_PlainTextFallback(t *testing.T) {
	summary := ParseSummary("This repository implements a small HTTP router.")

	assert.Equal(t, "This repository implements a small HTTP router.", summary.Summary)
	assert.NotNil(t, summary.CoolFacts)
	assert.Empty(t, summary.CoolFacts)
}

func TestParseSummary_EmptySummaryFallsBack(t *testing.T) {
	raw := `{"cool_facts": ["orphaned"]}`
	summary := ParseSummary(raw)

	// JSON without a summary field is treated as plain text
	assert.Equal(t, raw, summary.Summary)
}
