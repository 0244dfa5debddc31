package ai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkoukk/tiktoken-go"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/adapter"
	"telegram-reminder-bot/internal/infra/metrics"
)

var _ adapter.InterpreterAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements the interpreter port on the Chat Completions
// API. Works against api.openai.com or any compatible gateway via baseURL.
// The token budget is enforced locally with tiktoken before any request
// leaves the process.
type OpenAIAdapter struct {
	client    openai.Client
	model     string
	maxOut    int
	maxPrompt int
	enc       *tiktoken.Tiktoken
}

func NewOpenAIAdapter(apiKey, baseURL, model string, maxOut, maxPromptTokens int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxOut <= 0 {
		maxOut = 256
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Unknown model names fall back to the common encoding.
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}

	return &OpenAIAdapter{
		client:    openai.NewClient(opts...),
		model:     model,
		maxOut:    maxOut,
		maxPrompt: maxPromptTokens,
		enc:       enc,
	}, nil
}

func (o *OpenAIAdapter) Provider() string  { return "openai" }
func (o *OpenAIAdapter) ModelName() string { return o.model }

// CountPromptTokens is a local tiktoken count of the full extraction prompt.
func (o *OpenAIAdapter) CountPromptTokens(text string, now time.Time) int {
	return len(o.enc.Encode(buildExtractionPrompt(text, now), nil, nil))
}

func (o *OpenAIAdapter) ExtractReminder(ctx context.Context, text string, now time.Time) (*model.ParsedReminder, error) {
	if o.maxPrompt > 0 && o.CountPromptTokens(text, now) > o.maxPrompt {
		metrics.PrecheckBlocked("openai", o.model)
		return nil, domain.ErrMessageTooLong
	}

	start := time.Now()
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionInstructions),
			openai.UserMessage(userTurn(text, now)),
		},
		MaxTokens: openai.Int(int64(o.maxOut)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	latencyMs := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveExtraction("openai", "error", latencyMs)
		return nil, err
	}
	if len(completion.Choices) == 0 {
		metrics.ObserveExtraction("openai", "error", latencyMs)
		return nil, errors.New("openai: no choices in response")
	}
	metrics.AddExtractionTokens("openai", o.model,
		int(completion.Usage.PromptTokens),
		int(completion.Usage.CompletionTokens))

	parsed, err := decodeExtraction(completion.Choices[0].Message.Content)
	metrics.ObserveExtraction("openai", outcomeLabel(err), latencyMs)
	return parsed, err
}
