package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aispend/internal/domain"
)

func testRecords() ([]domain.UsageRecord, map[string]domain.SessionMeta) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
	}

	records := []domain.UsageRecord{
		{Timestamp: day(1), SessionID: "ses-1", Source: domain.SourceOpenCode, Provider: "anthropic", Model: "claude-sonnet-4", Tokens: domain.TokenUsage{Input: 100}},
		{Timestamp: day(2), SessionID: "ses-2", Source: domain.SourceClaude, Provider: "anthropic", Model: "claude-opus-4", Tokens: domain.TokenUsage{Input: 200}},
		{Timestamp: day(3), SessionID: "ses-3", Source: domain.SourceCodex, Provider: "openai", Model: "gpt-5", Tokens: domain.TokenUsage{Input: 300}},
	}
	meta := map[string]domain.SessionMeta{
		"ses-1": {SessionID: "ses-1", Directory: "/home/dev/api-server"},
		"ses-2": {SessionID: "ses-2", Directory: "/home/dev/web-frontend"},
		"ses-3": {SessionID: "ses-3", ProjectID: "prj_tooling"},
	}
	return records, meta
}

func TestFilters_EmptyPassesEverything(t *testing.T) {
	records, meta := testRecords()
	filtered := Filters{}.Apply(records, meta)
	assert.Len(t, filtered, 3)
}

func TestFilters_DateWindowInclusive(t *testing.T) {
	records, meta := testRecords()

	filtered := Filters{
		Since: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Until: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}.Apply(records, meta)

	require.Len(t, filtered, 2)
	assert.Equal(t, "ses-1", filtered[0].SessionID)
	assert.Equal(t, "ses-2", filtered[1].SessionID)
}

func TestFilters_SessionExactMatch(t *testing.T) {
	records, meta := testRecords()

	filtered := Filters{SessionID: "ses-2"}.Apply(records, meta)

	require.Len(t, filtered, 1)
	assert.Equal(t, "ses-2", filtered[0].SessionID)
}

func TestFilters_SessionNoPartialMatch(t *testing.T) {
	records, meta := testRecords()
	assert.Empty(t, Filters{SessionID: "ses"}.Apply(records, meta))
}

func TestFilters_ModelSubstringCaseInsensitive(t *testing.T) {
	records, meta := testRecords()

	filtered := Filters{Models: []string{"SONNET"}}.Apply(records, meta)

	require.Len(t, filtered, 1)
	assert.Equal(t, "claude-sonnet-4", filtered[0].Model)
}

func TestFilters_MultiValuedFieldIsUnion(t *testing.T) {
	records, meta := testRecords()

	filtered := Filters{Models: []string{"sonnet", "gpt"}}.Apply(records, meta)
	assert.Len(t, filtered, 2)
}

func TestFilters_FieldsAndCombined(t *testing.T) {
	records, meta := testRecords()

	// Provider matches two records, model narrows to one
	filtered := Filters{
		Providers: []string{"anthropic"},
		Models:    []string{"opus"},
	}.Apply(records, meta)

	require.Len(t, filtered, 1)
	assert.Equal(t, "claude-opus-4", filtered[0].Model)
}

func TestFilters_ProjectMatchesDirectoryAndID(t *testing.T) {
	records, meta := testRecords()

	byDir := Filters{Projects: []string{"api-server"}}.Apply(records, meta)
	require.Len(t, byDir, 1)
	assert.Equal(t, "ses-1", byDir[0].SessionID)

	byID := Filters{Projects: []string{"tooling"}}.Apply(records, meta)
	require.Len(t, byID, 1)
	assert.Equal(t, "ses-3", byID[0].SessionID)
}

func TestFilters_ComboLabel(t *testing.T) {
	records, meta := testRecords()

	filtered := Filters{Combos: []string{"codex/openai"}}.Apply(records, meta)

	require.Len(t, filtered, 1)
	assert.Equal(t, domain.SourceCodex, filtered[0].Source)
}

func TestFilters_UnknownSessionMetaStillFilters(t *testing.T) {
	records := []domain.UsageRecord{
		{Timestamp: time.Now(), SessionID: "orphan", Model: "gpt-5", Tokens: domain.TokenUsage{Input: 1}},
	}

	// No metadata for the session: project filters cannot match it
	filtered := Filters{Projects: []string{"anything"}}.Apply(records, nil)
	assert.Empty(t, filtered)
}
