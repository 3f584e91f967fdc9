// Package opencode reads usage records from OpenCode's embedded SQLite
// store. The database is opened read-only; its absence is not an error.
package opencode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aispend/internal/domain"
	"aispend/internal/logging"
	"aispend/internal/ports"
)

// Reader implements ports.UsageSource for the OpenCode store
type Reader struct {
	dbPath string
}

// Verify interface compliance at compile time
var _ ports.UsageSource = (*Reader)(nil)

// NewReader creates a Reader for the default OpenCode database
// ($XDG_DATA_HOME/opencode/opencode.db or ~/.local/share/opencode/opencode.db).
func NewReader() *Reader {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(homeDir, ".local", "share")
		}
	}
	return &Reader{dbPath: filepath.Join(dataHome, "opencode", "opencode.db")}
}

// NewReaderWithPath creates a Reader for a custom database path (for testing)
func NewReaderWithPath(dbPath string) *Reader {
	return &Reader{dbPath: dbPath}
}

// Name identifies the source in merged reports and log lines
func (r *Reader) Name() string { return string(domain.SourceOpenCode) }

// sessionRow is the GORM model for OpenCode's session table
type sessionRow struct {
	ID        string  `gorm:"column:id;primaryKey"`
	ParentID  *string `gorm:"column:parent_id"`
	Title     string  `gorm:"column:title"`
	ProjectID string  `gorm:"column:project_id"`
	Directory string  `gorm:"column:directory"`
}

// TableName specifies the table name for GORM
func (sessionRow) TableName() string { return "session" }

// messageRow is the GORM model for OpenCode's message table. The payload
// column holds the per-message JSON document.
type messageRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	SessionID string `gorm:"column:session_id"`
	Data      string `gorm:"column:data"`
}

// TableName specifies the table name for GORM
func (messageRow) TableName() string { return "message" }

// messageData is the subset of the message payload we normalize from
type messageData struct {
	Role       string  `json:"role"`
	ProviderID string  `json:"providerID"`
	ModelID    string  `json:"modelID"`
	Cost       float64 `json:"cost"`
	Tokens     struct {
		Input     int64 `json:"input"`
		Output    int64 `json:"output"`
		Reasoning int64 `json:"reasoning"`
		Cache     struct {
			Read  int64 `json:"read"`
			Write int64 `json:"write"`
		} `json:"cache"`
	} `json:"tokens"`
	Time struct {
		Created int64 `json:"created"` // epoch millis
	} `json:"time"`
}

// Load reads all assistant messages and session metadata from the store.
// A missing database yields empty results; any other failure is returned
// for the composite reader to downgrade to a warning.
func (r *Reader) Load(ctx context.Context) ([]domain.UsageRecord, map[string]domain.SessionMeta, error) {
	if _, err := os.Stat(r.dbPath); os.IsNotExist(err) {
		logging.Logger.Debug("OpenCode database does not exist", "path", r.dbPath)
		return nil, nil, nil
	}

	db, err := r.open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open opencode database: %w", err)
	}
	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
	}()

	meta, err := r.loadSessions(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	records, err := r.loadMessages(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	logging.Logger.Debug("Parsed OpenCode usage", "records", len(records), "sessions", len(meta))
	return records, meta, nil
}

func (r *Reader) open() (*gorm.DB, error) {
	// mode=ro keeps a concurrently running OpenCode instance safe from us
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", r.dbPath)
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
}

// withRetry retries reads on SQLITE_BUSY with backoff. A running
// OpenCode instance holds write locks in short bursts.
func withRetry(fn func() error, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("database busy after %d retries", maxRetries)
}

func (r *Reader) loadSessions(ctx context.Context, db *gorm.DB) (map[string]domain.SessionMeta, error) {
	var rows []sessionRow
	err := withRetry(func() error {
		return db.WithContext(ctx).Find(&rows).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to read session table: %w", err)
	}

	meta := make(map[string]domain.SessionMeta, len(rows))
	for _, row := range rows {
		m := domain.SessionMeta{
			SessionID: row.ID,
			Title:     row.Title,
			ProjectID: row.ProjectID,
			Directory: row.Directory,
		}
		if row.ParentID != nil {
			m.ParentID = *row.ParentID
		}
		meta[row.ID] = m
	}
	return meta, nil
}

func (r *Reader) loadMessages(ctx context.Context, db *gorm.DB) ([]domain.UsageRecord, error) {
	var rows []messageRow
	err := withRetry(func() error {
		return db.WithContext(ctx).Find(&rows).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to read message table: %w", err)
	}

	var records []domain.UsageRecord
	for _, row := range rows {
		var data messageData
		if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
			logging.Logger.Debug("Skipping malformed message payload", "message", row.ID, "error", err)
			continue
		}

		// Only assistant turns with a resolved provider and model carry
		// usage worth attributing.
		if data.Role != "assistant" || data.ProviderID == "" || data.ModelID == "" {
			continue
		}

		tokens := domain.TokenUsage{
			Input:         data.Tokens.Input,
			Output:        data.Tokens.Output,
			Reasoning:     data.Tokens.Reasoning,
			CacheCreation: data.Tokens.Cache.Write,
			CacheRead:     data.Tokens.Cache.Read,
		}
		if tokens.IsZero() {
			continue
		}

		rec := domain.UsageRecord{
			Timestamp: time.UnixMilli(data.Time.Created).UTC(),
			SessionID: row.SessionID,
			Source:    domain.SourceOpenCode,
			Provider:  data.ProviderID,
			Model:     data.ModelID,
			Tokens:    tokens,
		}
		if data.Cost > 0 {
			cost := data.Cost
			rec.CostUSD = &cost
		}
		records = append(records, rec)
	}
	return records, nil
}

// gormLogger adapts the aispend logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else {
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("AISPEND_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}
