package openai

import "testing"

func TestFixedTemperature(t *testing.T) {
	tests := map[string]bool{
		"gpt-5":       true,
		"gpt-5-mini":  true,
		" GPT-5o ":    true,
		"o3-mini":     true,
		"o1":          true,
		"gpt-4o":      false,
		"ollama/qwen": false,
		"":            false,
	}
	for model, want := range tests {
		if got := fixedTemperature(model); got != want {
			t.Fatalf("fixedTemperature(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestSchemaName(t *testing.T) {
	if got := schemaName("interview_questions"); got != "interview_questions" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := schemaName("improve fix.grammar"); got != "improve_fix_grammar" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := schemaName(""); got != "response" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestUnwrapItems(t *testing.T) {
	got, err := unwrapItems(`{"items":[{"question":"q"}]}`)
	if err != nil || got != `[{"question":"q"}]` {
		t.Fatalf("unwrapItems = %q, %v", got, err)
	}
	got, err = unwrapItems(`[{"question":"q"}]`)
	if err != nil || got != `[{"question":"q"}]` {
		t.Fatalf("bare array: %q, %v", got, err)
	}
	if _, err := unwrapItems(`{"other":[]}`); err == nil {
		t.Fatalf("expected error for missing items")
	}
}
