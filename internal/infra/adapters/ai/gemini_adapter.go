package ai

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/adapter"
	"telegram-reminder-bot/internal/infra/metrics"
)

var _ adapter.InterpreterAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter implements the interpreter port on the official Gemini SDK.
// Structured output keeps the response schema-shaped, so decoding rarely
// needs the repair path.
type GeminiAdapter struct {
	client    *genai.Client
	model     string
	maxOut    int
	maxPrompt int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, maxOut, maxPromptTokens int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if maxOut <= 0 {
		maxOut = 256
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, maxOut: maxOut, maxPrompt: maxPromptTokens}, nil
}

func (g *GeminiAdapter) Provider() string  { return "gemini" }
func (g *GeminiAdapter) ModelName() string { return g.model }

// extractionSchema constrains the response to the two fields the decoder
// expects.
var extractionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"task": {
			Type:        genai.TypeString,
			Description: "Task to remind the user about; empty when the message is not a reminder.",
		},
		"time": {
			Type:        genai.TypeString,
			Description: "RFC 3339 timestamp in UTC for when the reminder should fire.",
		},
	},
	Required: []string{"task", "time"},
}

func (g *GeminiAdapter) ExtractReminder(ctx context.Context, text string, now time.Time) (*model.ParsedReminder, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: buildExtractionPrompt(text, now)}},
	}}

	if g.maxPrompt > 0 {
		// Per docs, CountTokens takes []*genai.Content.
		// https://ai.google.dev/gemini-api/docs/tokens?hl=en#go
		counted, err := g.client.Models.CountTokens(ctx, g.model, contents, nil)
		if err == nil && int(counted.TotalTokens) > g.maxPrompt {
			metrics.PrecheckBlocked("gemini", g.model)
			return nil, domain.ErrMessageTooLong
		}
		// A failed count is not worth refusing the message over.
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		contents,
		&genai.GenerateContentConfig{
			MaxOutputTokens:  int32(g.maxOut),
			ResponseMIMEType: "application/json",
			ResponseSchema:   extractionSchema,
		},
	)
	latencyMs := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveExtraction("gemini", "error", latencyMs)
		return nil, err
	}

	raw := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		raw = resp.Candidates[0].Content.Parts[0].Text
	}
	if resp != nil && resp.UsageMetadata != nil {
		metrics.AddExtractionTokens("gemini", g.model,
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount))
	}

	parsed, err := decodeExtraction(raw)
	metrics.ObserveExtraction("gemini", outcomeLabel(err), latencyMs)
	return parsed, err
}
