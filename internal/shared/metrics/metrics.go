// Package metrics keeps process-local counters and one latency histogram and
// renders them in the Prometheus text exposition format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name string
	help string
	v    atomic.Uint64
}

func (c *counter) inc() { c.v.Add(1) }

var (
	aiCalls          = &counter{name: "ai_calls_total", help: "Total AI provider calls"}
	aiFailures       = &counter{name: "ai_failures_total", help: "Total AI provider calls that failed"}
	interviewStarted = &counter{name: "interview_started_total", help: "Total mock interviews started"}
	interviewEnded   = &counter{name: "interview_ended_total", help: "Total mock interviews ended"}
	feedbackFailed   = &counter{name: "interview_feedback_failed_total", help: "Total interview scoring requests that failed"}
	recordMutations  = &counter{name: "record_mutations_total", help: "Total resume and job description mutations"}
	imports          = &counter{name: "imports_total", help: "Total imported files"}

	// exposition order
	counters = []*counter{aiCalls, aiFailures, interviewStarted, interviewEnded, feedbackFailed, recordMutations, imports}

	aiLatency = newHistogram("ai_call_duration_ms", "AI provider call duration in milliseconds",
		[]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

func IncAICall()           { aiCalls.inc() }
func IncAIFailure()        { aiFailures.inc() }
func IncInterviewStarted() { interviewStarted.inc() }
func IncInterviewEnded()   { interviewEnded.inc() }
func IncFeedbackFailed()   { feedbackFailed.inc() }
func IncRecordMutation()   { recordMutations.inc() }
func IncImport()           { imports.inc() }

// ObserveAICallDurationMs records one provider call; negative values clamp to zero.
func ObserveAICallDurationMs(ms float64) {
	aiLatency.observe(max(ms, 0))
}

// SinceMillis is the fractional milliseconds elapsed since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// Handler serves Render at a scrape endpoint.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4", []byte(Render()))
	}
}

func Render() string {
	var sb strings.Builder
	for _, c := range counters {
		header(&sb, c.name, c.help, "counter")
		fmt.Fprintf(&sb, "%s %d\n", c.name, c.v.Load())
	}
	aiLatency.writeTo(&sb)
	return sb.String()
}

type histogram struct {
	name, help string
	bounds     []float64

	mu     sync.Mutex
	counts []uint64 // per bucket, not cumulative
	sum    float64
	total  uint64
}

func newHistogram(name, help string, bounds []float64) *histogram {
	return &histogram{name: name, help: help, bounds: bounds, counts: make([]uint64, len(bounds))}
}

func (h *histogram) observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total++
	h.sum += v
	for i, b := range h.bounds {
		if v <= b {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) writeTo(w io.Writer) {
	h.mu.Lock()
	counts := append([]uint64(nil), h.counts...)
	sum, total := h.sum, h.total
	h.mu.Unlock()

	header(w, h.name, h.help, "histogram")
	var running uint64
	for i, b := range h.bounds {
		running += counts[i]
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, num(b), running)
	}
	fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", h.name, total)
	fmt.Fprintf(w, "%s_sum %s\n%s_count %d\n", h.name, num(sum), h.name, total)
}

func header(w io.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
