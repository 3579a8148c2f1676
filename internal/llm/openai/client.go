package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"career-backend/internal/llm"
)

// wrappedItemsKey holds array replies; structured output requires an object root.
const wrappedItemsKey = "items"

// Client implements llm.Client over the Chat Completions API. Setting a base
// URL points it at any compatible host (Ollama, vLLM, Azure proxies).
type Client struct {
	api   *goopenai.Client
	model string
}

// Options configures NewClient.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient constructs a new OpenAI-compatible client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		if strings.TrimSpace(opts.BaseURL) == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", llm.ErrNotConfigured)
		}
		// Local hosts ignore the key but the client insists on one.
		apiKey = "local"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		model: opts.Model,
	}, nil
}

// Generate sends one chat completion request.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if len(req.Attachments) > 0 {
		return llm.Response{}, llm.ErrAttachmentUnsupported
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := goopenai.ChatMessageRoleUser
		if m.Role == llm.RoleModel {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if !fixedTemperature(c.model) {
		chatReq.Temperature = 0.7
	}

	wrapped := false
	if req.Schema != nil {
		schema := req.Schema
		if schema.Type == llm.TypeArray {
			schema = llm.Object(llm.Prop(wrappedItemsKey, schema))
			wrapped = true
		}
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName(req.Operation),
				Schema: schema,
			},
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return llm.Response{}, fmt.Errorf("openai error: http status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return llm.Response{}, fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, fmt.Errorf("openai response missing choices: %w", llm.ErrEmptyResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return llm.Response{}, fmt.Errorf("openai response empty content: %w", llm.ErrEmptyResponse)
	}
	if wrapped {
		content, err = unwrapItems(content)
		if err != nil {
			return llm.Response{}, err
		}
	}

	return llm.Response{
		Text:  content,
		Model: resp.Model,
		Usage: &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func unwrapItems(content string) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		// Some compatible hosts ignore the schema and answer with a bare array.
		if strings.HasPrefix(strings.TrimSpace(content), "[") {
			return content, nil
		}
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	items, ok := envelope[wrappedItemsKey]
	if !ok {
		return "", fmt.Errorf("openai response missing %q", wrappedItemsKey)
	}
	return string(items), nil
}

func schemaName(operation string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, operation)
	if name == "" {
		return "response"
	}
	return name
}

// fixedTemperature reports models that reject a temperature other than the
// default: gpt-5 and the o-series reasoning models.
func fixedTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	if strings.HasPrefix(m, "gpt-5") {
		return true
	}
	return len(m) >= 2 && m[0] == 'o' && m[1] >= '1' && m[1] <= '9'
}

var _ llm.Client = (*Client)(nil)
