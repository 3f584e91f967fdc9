// Package claudecode reads usage records from Claude Code's per-session
// JSONL transcripts under ~/.claude/projects.
package claudecode

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aispend/internal/domain"
	"aispend/internal/logging"
	"aispend/internal/ports"
)

// Reader implements ports.UsageSource for Claude Code transcripts
type Reader struct {
	projectsDirs []string
}

// Verify interface compliance at compile time
var _ ports.UsageSource = (*Reader)(nil)

// NewReader creates a Reader scanning the default Claude project roots
// (~/.claude/projects and $CLAUDE_CONFIG_DIR/projects when set).
func NewReader() *Reader {
	var dirs []string
	if envDir := os.Getenv("CLAUDE_CONFIG_DIR"); envDir != "" {
		dirs = append(dirs, filepath.Join(envDir, "projects"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".claude", "projects"))
		dirs = append(dirs, filepath.Join(homeDir, ".config", "claude", "projects"))
	}
	return &Reader{projectsDirs: dirs}
}

// NewReaderWithDirs creates a Reader with custom roots (for testing)
func NewReaderWithDirs(dirs ...string) *Reader {
	return &Reader{projectsDirs: dirs}
}

// Name identifies the source in merged reports and log lines
func (r *Reader) Name() string { return string(domain.SourceClaude) }

// jsonlEntry represents a single line in a session transcript
type jsonlEntry struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId"`
	Timestamp string        `json:"timestamp"`
	CWD       string        `json:"cwd"`
	CostUSD   *float64      `json:"costUSD"`
	Message   *jsonlMessage `json:"message"`
}

type jsonlMessage struct {
	Model string      `json:"model"`
	Usage *jsonlUsage `json:"usage"`
}

type jsonlUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// Load scans every project directory for session transcripts. Missing
// roots and malformed lines yield no error; each session file is parsed
// independently.
func (r *Reader) Load(ctx context.Context) ([]domain.UsageRecord, map[string]domain.SessionMeta, error) {
	var records []domain.UsageRecord
	meta := make(map[string]domain.SessionMeta)

	for _, root := range r.projectsDirs {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			logging.Logger.Debug("Claude projects directory does not exist", "path", root)
			continue
		}

		projectDirs, err := filepath.Glob(filepath.Join(root, "*"))
		if err != nil {
			logging.Logger.Warn("Failed to glob project directories", "error", err)
			continue
		}

		for _, projectDir := range projectDirs {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			info, err := os.Stat(projectDir)
			if err != nil || !info.IsDir() {
				continue
			}

			jsonlFiles, err := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
			if err != nil {
				continue
			}

			for _, jsonlFile := range jsonlFiles {
				fileRecords, fileMeta, err := r.parseSessionFile(jsonlFile)
				if err != nil {
					logging.Logger.Warn("Failed to parse session file", "file", jsonlFile, "error", err)
					continue
				}
				records = append(records, fileRecords...)
				if fileMeta.SessionID != "" {
					if _, exists := meta[fileMeta.SessionID]; !exists {
						meta[fileMeta.SessionID] = fileMeta
					}
				}
			}
		}
	}

	logging.Logger.Debug("Parsed Claude usage", "records", len(records), "sessions", len(meta))
	return records, meta, nil
}

// parseSessionFile parses one session transcript. The session id defaults
// to the file stem; the working directory comes from the first entry that
// carries one.
func (r *Reader) parseSessionFile(path string) ([]domain.UsageRecord, domain.SessionMeta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, domain.SessionMeta{}, err
	}
	defer file.Close()

	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	fileMeta := domain.SessionMeta{SessionID: sessionID}

	var records []domain.UsageRecord

	scanner := bufio.NewScanner(file)
	// Large tool results can produce multi-megabyte lines
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry jsonlEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			// Skip malformed lines, including truncated trailing writes
			continue
		}

		if entry.CWD != "" && fileMeta.Directory == "" {
			fileMeta.Directory = entry.CWD
		}
		if entry.SessionID != "" {
			sessionID = entry.SessionID
			fileMeta.SessionID = entry.SessionID
		}

		if entry.Type != "assistant" || entry.Message == nil || entry.Message.Model == "" {
			continue
		}
		if entry.Message.Usage == nil {
			continue
		}

		usage := entry.Message.Usage
		tokens := domain.TokenUsage{
			Input:         usage.InputTokens,
			Output:        usage.OutputTokens,
			CacheCreation: usage.CacheCreationInputTokens,
			CacheRead:     usage.CacheReadInputTokens,
		}
		if tokens.IsZero() {
			continue
		}

		timestamp, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			continue
		}

		rec := domain.UsageRecord{
			Timestamp: timestamp,
			SessionID: sessionID,
			Source:    domain.SourceClaude,
			Provider:  InferProvider(entry.Message.Model),
			Model:     entry.Message.Model,
			Tokens:    tokens,
		}
		if entry.CostUSD != nil && *entry.CostUSD > 0 {
			cost := *entry.CostUSD
			rec.CostUSD = &cost
		}
		records = append(records, rec)
	}

	// scanner.Err is deliberately not fatal: a truncated trailing line
	// must not discard the records already read.
	if err := scanner.Err(); err != nil {
		logging.Logger.Warn("Session file ended mid-line", "file", path, "error", err)
	}

	return records, fileMeta, nil
}
