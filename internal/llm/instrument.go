package llm

import (
	"context"
	"time"

	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/telemetry"
)

type instrumented struct {
	base     Client
	provider string
	model    string
}

// Instrument wraps a client with llm.call logging and AI metrics.
func Instrument(base Client, provider, model string) Client {
	if base == nil {
		return nil
	}
	return instrumented{base: base, provider: provider, model: model}
}

func (c instrumented) Generate(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := c.base.Generate(ctx, req)
	elapsed := metrics.SinceMillis(start)

	metrics.IncAICall()
	metrics.ObserveAICallDurationMs(elapsed)

	fields := map[string]any{
		"provider":    c.provider,
		"model":       c.model,
		"operation":   req.Operation,
		"structured":  req.Schema != nil,
		"turns":       len(req.Messages),
		"attachments": len(req.Attachments),
		"duration_ms": elapsed,
	}
	if err != nil {
		metrics.IncAIFailure()
		fields["error_code"] = Classify(err)
		fields["error"] = err.Error()
		telemetry.Error("llm.call", fields)
		return Response{}, err
	}
	if resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Info("llm.call", fields)
	return resp, nil
}
