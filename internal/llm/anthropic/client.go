package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"career-backend/internal/llm"
)

const defaultMaxTokens = 4096

// Client implements llm.Client over the Anthropic Messages API.
type Client struct {
	api   anthropic.Client
	model string
}

// Options configures NewClient.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient constructs an Anthropic client. The SDK's own retries are
// disabled; callers decide whether to try again.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is required", llm.ErrNotConfigured)
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Anthropic")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	return &Client{api: anthropic.NewClient(reqOpts...), model: opts.Model}, nil
}

// Generate sends one Messages request. Structured replies are requested by
// describing the schema in the system prompt.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	system, err := systemPrompt(req)
	if err != nil {
		return llm.Response{}, err
	}

	messages, err := toMessages(req)
	if err != nil {
		return llm.Response{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: defaultMaxTokens,
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return llm.Response{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if req.Schema != nil {
		text = stripCodeFence(text)
	}
	if text == "" {
		return llm.Response{}, fmt.Errorf("anthropic returned no text: %w", llm.ErrEmptyResponse)
	}

	return llm.Response{
		Text:  text,
		Model: string(msg.Model),
		Usage: &llm.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// toMessages maps the chat history. Attachments ride on the last user
// message as document blocks placed ahead of its text.
func toMessages(req llm.Request) ([]anthropic.MessageParam, error) {
	last := llm.LastUserIndex(req.Messages)
	if last < 0 && len(req.Attachments) > 0 {
		return nil, fmt.Errorf("%w: attachments need a user message", llm.ErrAttachmentUnsupported)
	}
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for i, m := range req.Messages {
		role := anthropic.MessageParamRoleUser
		if m.Role == llm.RoleModel {
			role = anthropic.MessageParamRoleAssistant
		}
		blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(req.Attachments))
		if i == last {
			for _, a := range req.Attachments {
				block, err := documentBlock(a)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, block)
			}
		}
		blocks = append(blocks, anthropic.NewTextBlock(m.Text))
		messages = append(messages, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return messages, nil
}

func documentBlock(a llm.Attachment) (anthropic.ContentBlockParamUnion, error) {
	switch strings.ToLower(strings.TrimSpace(strings.Split(a.MIMEType, ";")[0])) {
	case "application/pdf":
		return anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(a.Data),
		}), nil
	case "text/plain":
		return anthropic.NewDocumentBlock(anthropic.PlainTextSourceParam{Data: string(a.Data)}), nil
	default:
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("%w: %s", llm.ErrAttachmentUnsupported, a.MIMEType)
	}
}

func systemPrompt(req llm.Request) (string, error) {
	if req.Schema == nil {
		return req.System, nil
	}
	raw, err := json.Marshal(req.Schema)
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	instruction := "Respond with valid JSON only, no prose and no code fences. The JSON must match this JSON schema:\n" + string(raw)
	if strings.TrimSpace(req.System) == "" {
		return instruction, nil
	}
	return req.System + "\n\n" + instruction, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

var _ llm.Client = (*Client)(nil)
