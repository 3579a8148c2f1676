package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-backend/internal/llm"
	"career-backend/internal/shared/config"
)

type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]string
	ops     []string
}

func (s *scriptedLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, req.Operation)
	return llm.Response{Text: s.replies[req.Operation]}, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:             "dev",
		KVBackend:       "memory",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     "none",
		CORSAllowOrigin: []string{"http://localhost:5173"},
	}
}

func call(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out), resp.Body.String())
	return out
}

func TestWorkspaceFlow(t *testing.T) {
	ai := &scriptedLLM{replies: map[string]string{
		"tailor_bullets":      `{"originalBullets":["Built APIs"],"tailoredBullets":["Built Go APIs for payments"]}`,
		"interview_questions": `[{"question":"Why Go?","answer":"Simplicity."}]`,
		"interview_turn":      "Hello, tell me about yourself.",
	}}
	app, err := BuildWith(context.Background(), testConfig(t), Overrides{LLM: ai})
	require.NoError(t, err)
	defer app.Close()
	r := app.Router

	resp := call(t, r, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	health := decode[map[string]any](t, resp)
	assert.Equal(t, true, health["ok"])
	assert.Equal(t, "memory", health["storage"])
	assert.Equal(t, true, health["ai"])

	resp = call(t, r, http.MethodPost, "/api/v1/tailor", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = call(t, r, http.MethodPost, "/api/v1/resumes", map[string]string{"title": "Backend", "content": "Built APIs"})
	require.Equal(t, http.StatusCreated, resp.Code)
	resume := decode[map[string]any](t, resp)
	resp = call(t, r, http.MethodPut, "/api/v1/resumes/active", map[string]any{"id": resume["id"]})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = call(t, r, http.MethodPost, "/api/v1/job-descriptions", map[string]string{"title": "Go Engineer", "content": "Payments team"})
	require.Equal(t, http.StatusCreated, resp.Code)
	jd := decode[map[string]any](t, resp)
	resp = call(t, r, http.MethodPost, "/api/v1/job-descriptions/"+jd["id"].(string)+"/toggle-active", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = call(t, r, http.MethodPost, "/api/v1/tailor", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	tailored := decode[map[string]any](t, resp)
	assert.Equal(t, []any{"Built Go APIs for payments"}, tailored["tailoredBullets"])

	resp = call(t, r, http.MethodPost, "/api/v1/interview-prep/questions", map[string]string{"type": "Technical"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Why Go?")

	resp = call(t, r, http.MethodPost, "/api/v1/interviews", nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	session := decode[map[string]any](t, resp)
	assert.Equal(t, "active", session["state"])

	resp = call(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), "interview_started_total"), resp.Body.String())
}

func TestUnconfiguredAIReturns503(t *testing.T) {
	app, err := Build(testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	resp := call(t, app.Router, http.MethodPost, "/api/v1/resumes/suggest-title", map[string]string{"content": "Built APIs in Go"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code, resp.Body.String())

	resp = call(t, app.Router, http.MethodGet, "/api/v1/health", nil)
	health := decode[map[string]any](t, resp)
	assert.Equal(t, false, health["ai"])
}

func TestFileBackedWorkspaceSurvivesRebuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.KVBackend = "file"

	app, err := Build(cfg)
	require.NoError(t, err)
	resp := call(t, app.Router, http.MethodPost, "/api/v1/resumes", map[string]string{"title": "Kept", "content": "x"})
	require.Equal(t, http.StatusCreated, resp.Code)

	again, err := Build(cfg)
	require.NoError(t, err)
	resp = call(t, again.Router, http.MethodGet, "/api/v1/resumes", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"title":"Kept"`)
}
