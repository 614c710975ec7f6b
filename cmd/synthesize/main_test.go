package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personas/pkg/synth"
)

func setEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("PERSONA_PROVIDER", "")
	t.Setenv("SYNTH_PROVIDER", "ollama")
	t.Setenv("SYNTH_BASE_URL", baseURL)
	t.Setenv("SYNTH_MODEL", "test-model")
	t.Setenv("SYNTH_CORPUS", filepath.Join(t.TempDir(), "unused.jsonl"))
	t.Setenv("LOG_LEVEL", "error")
}

func writeCorpus(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "persona.jsonl")
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l + "\n")
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// errorOutput requires stdout to be exactly one JSON object and returns its error field.
func errorOutput(t *testing.T, stdout *bytes.Buffer) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &body), stdout.String())
	require.Len(t, body, 1)
	return body["error"]
}

func TestExecuteErrors(t *testing.T) {
	setEnv(t, "http://127.0.0.1:1/v1")

	t.Run("unknown template", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.jsonl")
		var stdout bytes.Buffer

		code := execute(context.Background(), []string{"synthesize", "--template", "haiku", "--output_path", out}, &stdout)
		assert.Equal(t, 1, code)
		assert.Contains(t, errorOutput(t, &stdout), "invalid template")
		assert.NoFileExists(t, out)
	})

	t.Run("missing required flag", func(t *testing.T) {
		var stdout bytes.Buffer

		code := execute(context.Background(), []string{"synthesize", "--template", "math"}, &stdout)
		assert.Equal(t, 1, code)
		assert.Contains(t, errorOutput(t, &stdout), "output_path")
	})

	t.Run("unknown flag", func(t *testing.T) {
		var stdout bytes.Buffer

		code := execute(context.Background(), []string{"synthesize", "--verbose"}, &stdout)
		assert.Equal(t, 1, code)
		assert.NotEmpty(t, errorOutput(t, &stdout))
	})

	t.Run("unwritable output", func(t *testing.T) {
		corpus := writeCorpus(t, `{"persona":"a baker"}`)
		out := filepath.Join(t.TempDir(), "missing", "out.jsonl")
		var stdout bytes.Buffer

		code := execute(context.Background(), []string{"synthesize", "--template", "npc", "--corpus", corpus, "--output_path", out}, &stdout)
		assert.Equal(t, 1, code)
		assert.Contains(t, errorOutput(t, &stdout), "create output")
	})
}

func TestExecuteWritesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-test","object":"chat.completion","created":1700000000,"model":"test-model",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"A quest for flour."}}]}`))
	}))
	defer srv.Close()
	setEnv(t, srv.URL)

	corpus := writeCorpus(t, `{"persona":"a baker"}`, `{"persona":"a sailor"}`, `{"persona":"a pilot"}`)
	out := filepath.Join(t.TempDir(), "out.jsonl")
	var stdout bytes.Buffer

	code := execute(context.Background(), []string{
		"synthesize", "--sample_size", "2", "--template", "npc", "--corpus", corpus, "--output_path", out,
	}, &stdout)
	require.Equal(t, 0, code, stdout.String())
	assert.Contains(t, stdout.String(), "Outputted the results to: "+out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	var records []synth.Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec synth.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	require.Len(t, records, 2)
	assert.Equal(t, "a baker", records[0].InputPersona)
	assert.Equal(t, "a sailor", records[1].InputPersona)
	assert.Equal(t, "A quest for flour.", records[1].SynthesizedText)
}
