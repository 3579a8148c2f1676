package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"career-backend/internal/shared/telemetry"
)

func TestSchemaMarshalJSON(t *testing.T) {
	schema := ArrayOf(Object(
		Prop("question", Prim(TypeString, "The interview question.")),
		Prop("answer", Prim(TypeString, "")),
	))

	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["type"] != "array" {
		t.Fatalf("expected array root, got %v", decoded["type"])
	}
	items := decoded["items"].(map[string]any)
	if items["additionalProperties"] != false {
		t.Fatalf("expected closed object, got %v", items["additionalProperties"])
	}
	required := items["required"].([]any)
	if len(required) != 2 || required[0] != "question" || required[1] != "answer" {
		t.Fatalf("unexpected required list: %v", required)
	}
	props := items["properties"].(map[string]any)
	if _, ok := props["answer"].(map[string]any)["description"]; ok {
		t.Fatalf("empty description should be omitted")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not configured", err: fmt.Errorf("wrap: %w", ErrNotConfigured), want: CodeNotConfigured},
		{name: "empty", err: ErrEmptyResponse, want: CodeEmpty},
		{name: "deadline", err: context.DeadlineExceeded, want: CodeTimeout},
		{name: "canceled", err: context.Canceled, want: CodeCanceled},
		{name: "net timeout", err: timeoutErr{}, want: CodeTimeout},
		{name: "5xx", err: errors.New("gemini: http status 503"), want: CodeTransient},
		{name: "reset", err: errors.New("read: connection reset by peer"), want: CodeTransient},
		{name: "other", err: errors.New("invalid api key"), want: CodeProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

type stubClient struct {
	resp Response
	err  error
}

func (s stubClient) Generate(ctx context.Context, req Request) (Response, error) {
	return s.resp, s.err
}

func TestInstrumentLogsUsageAndErrors(t *testing.T) {
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	ok := Instrument(stubClient{resp: Response{Text: "hi", Usage: &Usage{TotalTokens: 7}}}, "gemini", "gemini-2.5-flash")
	if _, err := ok.Generate(context.Background(), Prompt("suggest_title", "x")); err != nil {
		t.Fatalf("generate: %v", err)
	}
	failing := Instrument(stubClient{err: ErrNotConfigured}, "none", "")
	if _, err := failing.Generate(context.Background(), Prompt("tailor", "x")); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var first, second map[string]any
	_ = json.Unmarshal([]byte(lines[0]), &first)
	_ = json.Unmarshal([]byte(lines[1]), &second)
	if first["operation"] != "suggest_title" || first["total_tokens"] != float64(7) {
		t.Fatalf("unexpected success log: %v", first)
	}
	if second["error_code"] != CodeNotConfigured || second["level"] != "error" {
		t.Fatalf("unexpected failure log: %v", second)
	}
}

func TestUnconfiguredAlwaysFails(t *testing.T) {
	if _, err := (Unconfigured{}).Generate(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLastUserIndex(t *testing.T) {
	msgs := []Message{{Role: RoleUser}, {Role: RoleModel}, {Role: RoleUser}, {Role: RoleModel}}
	if got := LastUserIndex(msgs); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := LastUserIndex(nil); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}
