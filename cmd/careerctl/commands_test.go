package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-backend/internal/llm"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/telemetry"
)

type cannedLLM struct {
	reply string
	got   []llm.Request
}

func (c *cannedLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	c.got = append(c.got, req)
	return llm.Response{Text: c.reply}, nil
}

func run(t *testing.T, ai llm.Client, args ...string) (string, error) {
	t.Helper()
	out, _, err := runSplit(t, ai, args...)
	return out, err
}

// runSplit keeps command output and log lines in separate buffers.
func runSplit(t *testing.T, ai llm.Client, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))
	var out, logs bytes.Buffer
	cmd := newRootCmd(env{
		out:       &out,
		logs:      &logs,
		loadCfg:   func() config.Config { return config.Config{LLMProvider: "none"} },
		newClient: func(ctx context.Context, cfg config.Config) llm.Client { return ai },
	})
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "resume.txt", "Jane Doe\nGo developer\n")

	out, err := run(t, llm.Unconfigured{}, "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Go developer")
}

func TestExtractKeepsLogsOffStdout(t *testing.T) {
	path := writeFile(t, "resume.txt", "Jane Doe\nGo engineer")

	out, logs, err := runSplit(t, llm.Unconfigured{}, "extract", path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo engineer\n", out)
	assert.Contains(t, logs, "import.completed")
}

func TestTailorPrintsJSON(t *testing.T) {
	resume := writeFile(t, "resume.txt", "Built APIs")
	jd := writeFile(t, "jd.txt", "Payments team")
	ai := &cannedLLM{reply: `{"originalBullets":["Built APIs"],"tailoredBullets":["Built payment APIs"]}`}

	out, err := run(t, ai, "tailor", resume, jd)
	require.NoError(t, err)
	var decoded map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded), "stdout must be pure JSON")
	assert.Contains(t, out, `"tailoredBullets": [`)
	assert.Contains(t, out, "Built payment APIs")
	require.Len(t, ai.got, 1)
	assert.Equal(t, "tailor_bullets", ai.got[0].Operation)
}

func TestQuestionsExport(t *testing.T) {
	jd := writeFile(t, "jd.txt", "Payments team")
	exportPath := filepath.Join(t.TempDir(), "out.txt")
	ai := &cannedLLM{reply: `[{"question":"Why Go?","answer":"Simplicity."}]`}

	_, err := run(t, ai, "questions", "--type", "Behavioral", "--export", exportPath, jd)
	require.NoError(t, err)

	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Q: Why Go?"), string(raw))
}

func TestRejectsUnknownKind(t *testing.T) {
	path := writeFile(t, "resume.txt", "text")
	_, err := run(t, llm.Unconfigured{}, "suggest-title", "--kind", "cover-letter", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--kind")
}

func TestSuggestTitleUnconfigured(t *testing.T) {
	path := writeFile(t, "resume.txt", "text")
	_, err := run(t, llm.Unconfigured{}, "suggest-title", path)
	require.ErrorIs(t, err, llm.ErrNotConfigured)
}
