package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Format is the shape of the expected response.
type Format int

const (
	// FormatText asks for plain text or markdown.
	FormatText Format = iota
	// FormatJSON asks for a JSON document; code fences are stripped.
	FormatJSON
)

// Request is one generation call.
type Request struct {
	Prompt string
	Tier   Tier
	Format Format
}

// Client generates remediation drafts.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}

// ErrBlocked is returned when the model refuses a prompt or stops for safety.
var ErrBlocked = errors.New("generation blocked")

// GeminiClient implements Client on Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a Gemini client. A nil config means DefaultConfig.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// Generate runs req and returns the response text.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	name, err := c.config.Model(req.Tier)
	if err != nil {
		return "", err
	}
	model := c.client.GenerativeModel(name)
	model.SetTemperature(c.config.Temperature)
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}
	if req.Format == FormatJSON {
		model.ResponseMIMEType = "application/json"
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}
	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	if req.Format == FormatJSON {
		return StripFences(text), nil
	}
	return text, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("empty response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: safety", ErrBlocked)
	}
	if cand.Content == nil {
		return "", errors.New("no content in response")
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text parts in response")
	}
	return b.String(), nil
}
