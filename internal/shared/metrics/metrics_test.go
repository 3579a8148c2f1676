package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram("x", "help", []float64{10, 100})
	for _, v := range []float64{5, 50, 500} {
		h.observe(v)
	}

	var sb strings.Builder
	h.writeTo(&sb)
	out := sb.String()
	for _, want := range []string{
		"# TYPE x histogram",
		`x_bucket{le="10"} 1`,
		`x_bucket{le="100"} 2`,
		`x_bucket{le="+Inf"} 3`,
		`x_sum 555`,
		`x_count 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderIncludesCounters(t *testing.T) {
	before := interviewStarted.v.Load()
	IncAICall()
	IncInterviewStarted()
	ObserveAICallDurationMs(-3)

	if got := interviewStarted.v.Load(); got != before+1 {
		t.Fatalf("interview_started = %d, want %d", got, before+1)
	}
	out := Render()
	for _, name := range []string{"# TYPE ai_calls_total counter", "interview_started_total", "ai_call_duration_ms_count"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}
