package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	openai "github.com/sashabaranov/go-openai"
)

// TextClient is the interface every gateway backend satisfies.
type TextClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*Response, error)
	Stream(ctx context.Context, systemPrompt, userPrompt string, temperature float64, fn func(chunk string) error) error
}

// Response holds the raw response content and token usage.
type Response struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Config selects and parameterizes a gateway backend.
type Config struct {
	Provider string // "anthropic", "openai", or "mock"
	Model    string
	APIKey   string
	BaseURL  string // OpenAI-compatible endpoints only
}

// NewClient builds a TextClient for the configured provider.
func NewClient(cfg Config) (TextClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.Model, cfg.APIKey), nil
	case "openai":
		return NewOpenAIClient(cfg.Model, cfg.APIKey, cfg.BaseURL), nil
	case "mock", "":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown gateway provider: %q", cfg.Provider)
	}
}

// ── AnthropicClient — Anthropic SDK (Production) ───────────

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(model, apiKey string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{client: &client, model: model}
}

func (c *AnthropicClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*Response, error) {
	params := c.buildParams(systemPrompt, userPrompt, temperature)

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &Response{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *AnthropicClient) Stream(ctx context.Context, systemPrompt, userPrompt string, temperature float64, fn func(chunk string) error) error {
	params := c.buildParams(systemPrompt, userPrompt, temperature)

	stream := c.client.Messages.NewStreaming(ctx, params)
	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if err := fn(deltaVariant.Text); err != nil {
					return err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream: %w", err)
	}
	return nil
}

func (c *AnthropicClient) buildParams(systemPrompt, userPrompt string, temperature float64) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
}

func (c *AnthropicClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── OpenAIClient — OpenAI-Compatible Endpoints ─────────────

// OpenAIClient talks to any OpenAI-compatible serving endpoint. This is
// how an open-weights model like gpt-oss-120b is typically deployed.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(model, apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in completion response")
	}

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *OpenAIClient) Stream(ctx context.Context, systemPrompt, userPrompt string, temperature float64, fn func(chunk string) error) error {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: float32(temperature),
		Stream:      true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream recv: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if err := fn(resp.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
}

// ── MockClient — Local Development ─────────────────────────

// MockClient answers from canned data so the full pipeline runs without
// an API key. It picks a response shape by sniffing the prompt.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*Response, error) {
	content := m.cannedResponse(systemPrompt, userPrompt)
	return &Response{
		Content:      content,
		PromptTokens: 800,
		OutputTokens: 600,
	}, nil
}

func (m *MockClient) Stream(ctx context.Context, systemPrompt, userPrompt string, temperature float64, fn func(chunk string) error) error {
	content := m.cannedResponse(systemPrompt, userPrompt)
	for _, word := range strings.SplitAfter(content, " ") {
		if err := fn(word); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockClient) cannedResponse(systemPrompt, userPrompt string) string {
	switch {
	case strings.Contains(userPrompt, `"mainTopic"`):
		return mockClassificationJSON
	case strings.Contains(systemPrompt, `"finalAnswer"`):
		return mockSolutionJSON
	case strings.Contains(systemPrompt, "competitive mathematics"):
		return mockHarmonyText
	default:
		return "Consider what happens when you factor the expression into two binomials whose constant terms multiply to the trailing coefficient."
	}
}

const mockClassificationJSON = `{
  "mainTopic": "algebra",
  "subtopics": ["quadratic equations", "factoring"],
  "difficultyLevel": "intermediate",
  "estimatedSolveTime": 5,
  "tags": ["quadratic", "roots", "factoring"],
  "requiresCalculator": false,
  "requiresDrawing": false,
  "problemType": "free_response",
  "keyConcepts": ["zero product property", "factoring trinomials"],
  "prerequisiteTopics": ["linear equations", "polynomial arithmetic"],
  "competitionLevel": "none"
}`

const mockSolutionJSON = `{
  "steps": [
    {"stepNumber": 1, "description": "Factor the quadratic", "explanation": "Look for two numbers that multiply to 6 and sum to -5", "equation": "x^2 - 5x + 6 = (x - 2)(x - 3)"},
    {"stepNumber": 2, "description": "Apply the zero product property", "explanation": "A product is zero only when a factor is zero", "equation": "x - 2 = 0 or x - 3 = 0"}
  ],
  "finalAnswer": "x = 2 or x = 3",
  "explanation": "Factoring converts the quadratic into a product of linear terms, each of which gives one root.",
  "alternativeMethods": [{"name": "Quadratic formula", "description": "Substitute a=1, b=-5, c=6 into the quadratic formula"}],
  "commonMistakes": ["Sign errors when factoring", "Forgetting one of the two roots"],
  "verification": {"method": "Substitute both roots into the original equation", "result": "Both yield 0"},
  "chainOfThought": [
    {"thought": "The quadratic has integer coefficients, factoring is likely intended", "action": "Search factor pairs of 6", "observation": "2 and 3 sum to 5", "confidence": 0.95}
  ]
}`

const mockHarmonyText = `Reasoning: The equation factors as (x - 2)(x - 3) = 0 because 2 and 3 multiply to 6 and sum to 5. By the zero product property each factor gives a root, and substituting both values back confirms they satisfy the original equation.
Answer: x = 2 or x = 3
Confidence: 0.95`
