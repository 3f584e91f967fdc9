// Package codex reads usage records from Codex CLI rollout files under
// ~/.codex/sessions. Rollouts report cumulative token counters per
// session, so per-event deltas are reconstructed while reading.
package codex

import (
	"bufio"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aispend/internal/adapters/claudecode"
	"aispend/internal/domain"
	"aispend/internal/logging"
	"aispend/internal/ports"
)

// fallbackModel is attributed to rollouts recorded before Codex started
// writing turn_context markers.
const fallbackModel = "gpt-4o"

// Reader implements ports.UsageSource for Codex rollout files
type Reader struct {
	sessionsDir string
}

// Verify interface compliance at compile time
var _ ports.UsageSource = (*Reader)(nil)

// NewReader creates a Reader scanning the default Codex sessions root
// ($CODEX_HOME/sessions or ~/.codex/sessions).
func NewReader() *Reader {
	root := os.Getenv("CODEX_HOME")
	if root == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			root = filepath.Join(homeDir, ".codex")
		} else {
			root = ".codex"
		}
	}
	return &Reader{sessionsDir: filepath.Join(root, "sessions")}
}

// NewReaderWithDir creates a Reader with a custom sessions root (for testing)
func NewReaderWithDir(dir string) *Reader {
	return &Reader{sessionsDir: dir}
}

// Name identifies the source in merged reports and log lines
func (r *Reader) Name() string { return string(domain.SourceCodex) }

// rolloutLine is one line of a rollout file
type rolloutLine struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type sessionMetaPayload struct {
	ID  string `json:"id"`
	CWD string `json:"cwd"`
}

type turnContextPayload struct {
	Model string `json:"model"`
}

type eventMsgPayload struct {
	Type string          `json:"type"`
	Info *tokenCountInfo `json:"info"`
}

type tokenCountInfo struct {
	TotalTokenUsage *tokenCounts `json:"total_token_usage"`
	LastTokenUsage  *tokenCounts `json:"last_token_usage"`
}

// tokenCounts mirrors Codex's token_usage object. In rollouts,
// input_tokens includes cached_input_tokens and output_tokens includes
// reasoning_output_tokens.
type tokenCounts struct {
	InputTokens           int64 `json:"input_tokens"`
	CachedInputTokens     int64 `json:"cached_input_tokens"`
	OutputTokens          int64 `json:"output_tokens"`
	ReasoningOutputTokens int64 `json:"reasoning_output_tokens"`
}

// Load walks the nested YYYY/MM/DD rollout tree. A missing root yields
// empty results; malformed lines are skipped per line.
func (r *Reader) Load(ctx context.Context) ([]domain.UsageRecord, map[string]domain.SessionMeta, error) {
	if _, err := os.Stat(r.sessionsDir); os.IsNotExist(err) {
		logging.Logger.Debug("Codex sessions directory does not exist", "path", r.sessionsDir)
		return nil, nil, nil
	}

	var records []domain.UsageRecord
	meta := make(map[string]domain.SessionMeta)

	err := filepath.WalkDir(r.sessionsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Unreadable subtree, keep walking
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".jsonl") {
			return nil
		}

		fileRecords, fileMeta, parseErr := r.parseRolloutFile(path)
		if parseErr != nil {
			logging.Logger.Warn("Failed to parse rollout file", "file", path, "error", parseErr)
			return nil
		}
		records = append(records, fileRecords...)
		if fileMeta.SessionID != "" {
			if _, exists := meta[fileMeta.SessionID]; !exists {
				meta[fileMeta.SessionID] = fileMeta
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logging.Logger.Debug("Parsed Codex usage", "records", len(records), "sessions", len(meta))
	return records, meta, nil
}

// parseRolloutFile reads one rollout, reconstructing per-event deltas
// from the cumulative counters as it goes.
func (r *Reader) parseRolloutFile(path string) ([]domain.UsageRecord, domain.SessionMeta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, domain.SessionMeta{}, err
	}
	defer file.Close()

	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	fileMeta := domain.SessionMeta{SessionID: sessionID}

	var records []domain.UsageRecord
	var previous tokenCounts // running cumulative baseline for this file
	currentModel := ""

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry rolloutLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		switch entry.Type {
		case "session_meta":
			var p sessionMetaPayload
			if err := json.Unmarshal(entry.Payload, &p); err != nil {
				continue
			}
			if p.ID != "" {
				sessionID = p.ID
				fileMeta.SessionID = p.ID
			}
			if p.CWD != "" {
				fileMeta.Directory = p.CWD
			}

		case "turn_context":
			var p turnContextPayload
			if err := json.Unmarshal(entry.Payload, &p); err != nil {
				continue
			}
			if p.Model != "" {
				currentModel = p.Model
			}

		case "event_msg":
			var p eventMsgPayload
			if err := json.Unmarshal(entry.Payload, &p); err != nil {
				continue
			}
			if p.Type != "token_count" || p.Info == nil {
				continue
			}

			var delta tokenCounts
			switch {
			case p.Info.TotalTokenUsage != nil:
				delta = diffCounts(*p.Info.TotalTokenUsage, previous)
				previous = *p.Info.TotalTokenUsage
			case p.Info.LastTokenUsage != nil:
				// A bare last-delta is used as-is and must not move the
				// cumulative baseline.
				delta = *p.Info.LastTokenUsage
			default:
				continue
			}

			tokens := deltaToUsage(delta)
			if tokens.IsZero() {
				continue
			}

			timestamp, err := time.Parse(time.RFC3339, entry.Timestamp)
			if err != nil {
				continue
			}

			model := currentModel
			if model == "" {
				model = fallbackModel
			}

			records = append(records, domain.UsageRecord{
				Timestamp: timestamp,
				SessionID: sessionID,
				Source:    domain.SourceCodex,
				Provider:  claudecode.InferProvider(model),
				Model:     model,
				Tokens:    tokens,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		logging.Logger.Warn("Rollout file ended mid-line", "file", path, "error", err)
	}

	return records, fileMeta, nil
}

// diffCounts returns current-previous per field, clamped at zero.
// A counter that decreased means the session's counters were reset;
// clamping avoids emitting negative usage for that event.
func diffCounts(current, previous tokenCounts) tokenCounts {
	return tokenCounts{
		InputTokens:           clampDelta(current.InputTokens, previous.InputTokens),
		CachedInputTokens:     clampDelta(current.CachedInputTokens, previous.CachedInputTokens),
		OutputTokens:          clampDelta(current.OutputTokens, previous.OutputTokens),
		ReasoningOutputTokens: clampDelta(current.ReasoningOutputTokens, previous.ReasoningOutputTokens),
	}
}

func clampDelta(current, previous int64) int64 {
	if current < previous {
		return 0
	}
	return current - previous
}

// deltaToUsage maps Codex counters onto the normalized token fields.
// Cached input counts as cache reads and is carved out of the input
// total; reasoning is likewise carved out of output.
func deltaToUsage(d tokenCounts) domain.TokenUsage {
	input := d.InputTokens - d.CachedInputTokens
	if input < 0 {
		input = 0
	}
	output := d.OutputTokens - d.ReasoningOutputTokens
	if output < 0 {
		output = 0
	}
	return domain.TokenUsage{
		Input:     input,
		Output:    output,
		Reasoning: d.ReasoningOutputTokens,
		CacheRead: d.CachedInputTokens,
	}
}
