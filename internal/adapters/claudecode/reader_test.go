package claudecode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aispend/internal/domain"
)

func writeSessionFile(t *testing.T, root, project, name, content string) {
	t.Helper()
	dir := filepath.Join(root, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_MissingRootYieldsEmpty(t *testing.T) {
	reader := NewReaderWithDirs(filepath.Join(t.TempDir(), "does-not-exist"))

	records, meta, err := reader.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, meta)
}

func TestLoad_ParsesAssistantEntries(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "-home-dev-api", "ses-abc.jsonl", `{"type":"user","sessionId":"ses-abc","timestamp":"2026-03-01T10:00:00Z","cwd":"/home/dev/api"}
{"type":"assistant","sessionId":"ses-abc","timestamp":"2026-03-01T10:00:05Z","message":{"model":"claude-sonnet-4-20250514","usage":{"input_tokens":1000,"output_tokens":200,"cache_creation_input_tokens":50,"cache_read_input_tokens":8000}}}
{"type":"assistant","sessionId":"ses-abc","timestamp":"2026-03-01T10:01:00Z","costUSD":0.042,"message":{"model":"claude-sonnet-4-20250514","usage":{"input_tokens":500,"output_tokens":100}}}
`)

	reader := NewReaderWithDirs(root)
	records, meta, err := reader.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "ses-abc", first.SessionID)
	assert.Equal(t, domain.SourceClaude, first.Source)
	assert.Equal(t, "anthropic", first.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", first.Model)
	assert.Equal(t, int64(1000), first.Tokens.Input)
	assert.Equal(t, int64(50), first.Tokens.CacheCreation)
	assert.Equal(t, int64(8000), first.Tokens.CacheRead)
	assert.Nil(t, first.CostUSD)

	second := records[1]
	require.NotNil(t, second.CostUSD)
	assert.InDelta(t, 0.042, *second.CostUSD, 1e-9)

	require.Contains(t, meta, "ses-abc")
	assert.Equal(t, "/home/dev/api", meta["ses-abc"].Directory)
}

func TestLoad_DropsZeroUsageEntries(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "ses-zero.jsonl", `{"type":"assistant","sessionId":"ses-zero","timestamp":"2026-03-01T10:00:00Z","message":{"model":"claude-sonnet-4-20250514","usage":{"input_tokens":0,"output_tokens":0,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}
{"type":"assistant","sessionId":"ses-zero","timestamp":"2026-03-01T10:00:10Z","message":{"model":"claude-sonnet-4-20250514","usage":{"input_tokens":5,"output_tokens":1}}}
`)

	reader := NewReaderWithDirs(root)
	records, _, err := reader.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].Tokens.Input)
}

func TestLoad_SkipsNonAssistantAndMalformedLines(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "ses-mix.jsonl", `{"type":"user","sessionId":"ses-mix","timestamp":"2026-03-01T10:00:00Z"}
not json at all
{"type":"assistant","sessionId":"ses-mix","timestamp":"2026-03-01T10:00:05Z","message":{"model":"claude-opus-4","usage":{"input_tokens":10,"output_tokens":2}}}
{"type":"assistant","sessionId":"ses-mix","timestamp":"not-a-time","message":{"model":"claude-opus-4","usage":{"input_tokens":10,"output_tokens":2}}}
{"type":"assistant","sessionId":"ses-mix","timestamp":"2026-03-01T10:00:06Z","message":{"model":"","usage":{"input_tokens":10}}}
`)

	reader := NewReaderWithDirs(root)
	records, _, err := reader.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoad_SessionIDDefaultsToFileStem(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "stem-id.jsonl", `{"type":"assistant","timestamp":"2026-03-01T10:00:00Z","message":{"model":"claude-opus-4","usage":{"input_tokens":10,"output_tokens":2}}}
`)

	reader := NewReaderWithDirs(root)
	records, meta, err := reader.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "stem-id", records[0].SessionID)
	assert.Contains(t, meta, "stem-id")
}

func TestLoad_ZeroCostNotAuthoritative(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "ses-free.jsonl", `{"type":"assistant","sessionId":"ses-free","timestamp":"2026-03-01T10:00:00Z","costUSD":0,"message":{"model":"claude-opus-4","usage":{"input_tokens":10,"output_tokens":2}}}
`)

	reader := NewReaderWithDirs(root)
	records, _, err := reader.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].CostUSD)
}

func TestLoad_MultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeSessionFile(t, rootA, "proj", "ses-a.jsonl", `{"type":"assistant","sessionId":"ses-a","timestamp":"2026-03-01T10:00:00Z","message":{"model":"claude-opus-4","usage":{"input_tokens":1,"output_tokens":1}}}
`)
	writeSessionFile(t, rootB, "proj", "ses-b.jsonl", `{"type":"assistant","sessionId":"ses-b","timestamp":"2026-03-01T11:00:00Z","message":{"model":"claude-opus-4","usage":{"input_tokens":2,"output_tokens":2}}}
`)

	reader := NewReaderWithDirs(rootA, rootB)
	records, meta, err := reader.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Len(t, meta, 2)
}
