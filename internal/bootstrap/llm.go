package bootstrap

import (
	"context"

	"career-backend/internal/llm"
	anthropicllm "career-backend/internal/llm/anthropic"
	geminillm "career-backend/internal/llm/gemini"
	openaillm "career-backend/internal/llm/openai"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/telemetry"
)

// BuildLLM constructs the configured provider wrapped with metrics and
// logging. A provider that cannot be constructed yields llm.Unconfigured so
// the API still serves non-AI routes.
func BuildLLM(ctx context.Context, cfg config.Config) llm.Client {
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case "none":
		return llm.Unconfigured{Reason: "LLM_PROVIDER=none"}
	case "openai":
		client, err = openaillm.NewClient(openaillm.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
		})
	case "anthropic":
		client, err = anthropicllm.NewClient(anthropicllm.Options{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
		})
	default:
		client, err = geminillm.NewClient(ctx, geminillm.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Timeout: cfg.LLMTimeout,
		})
	}
	if err != nil {
		telemetry.Warn("bootstrap.llm_unavailable", map[string]any{
			"provider": cfg.LLMProvider,
			"error":    err,
		})
		return llm.Unconfigured{Reason: err.Error()}
	}
	return llm.Instrument(client, cfg.LLMProvider, cfg.LLMModel)
}
