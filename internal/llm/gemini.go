// Package llm summarizes repository READMEs with Gemini.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Summary is the structured result of summarizing a README.
type Summary struct {
	Summary   string   `json:"summary"`
	CoolFacts []string `json:"cool_facts"`
}

// Summarizer produces a Summary from raw README text.
type Summarizer interface {
	Summarize(ctx context.Context, readme string) (*Summary, error)
}

const summarizePrompt = `Summarize the following GitHub repository README.
Respond with JSON only, matching this shape:
{"summary": "<one paragraph summary>", "cool_facts": ["<fact>", "<fact>"]}

README:
`

// readmes larger than this are truncated before prompting
const maxReadmeChars = 60000

// GeminiSummarizer calls the Gemini API through the official client.
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiSummarizer{client: client, model: model}, nil
}

func (s *GeminiSummarizer) Close() error {
	return s.client.Close()
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, readme string) (*Summary, error) {
	if len(readme) > maxReadmeChars {
		readme = readme[:maxReadmeChars]
	}

	model := s.client.GenerativeModel(s.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(summarizePrompt+readme))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	return ParseSummary(text), nil
}

// ParseSummary decodes the model's JSON output, falling back to treating the
// whole response as a plain-text summary when it is not valid JSON.
func ParseSummary(text string) *Summary {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var summary Summary
	if err := json.Unmarshal([]byte(text), &summary); err != nil || summary.Summary == "" {
		return &Summary{Summary: text, CoolFacts: []string{}}
	}
	if summary.CoolFacts == nil {
		summary.CoolFacts = []string{}
	}
	return &summary
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}
