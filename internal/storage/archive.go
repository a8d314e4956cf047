// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides a local archive of completed chat exchanges.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrExchangeNotFound is returned when an archived exchange doesn't exist.
var ErrExchangeNotFound = errors.New("exchange not found")

// =============================================================================
// ARCHIVED EXCHANGE TYPE
// =============================================================================

// ArchivedExchange is one completed question/answer pair as stored in
// the local archive.
type ArchivedExchange struct {
	ID          int64
	SessionID   string
	SessionName string
	Question    string
	Answer      string
	Reasoning   string
	Citations   []model.Reference
	CreatedAt   time.Time
}

// Preview returns a truncated single-line preview of the question.
func (e ArchivedExchange) Preview(maxLen int) string {
	line := util.FirstLine(e.Question)
	return util.TruncateRunes(line, maxLen)
}

// =============================================================================
// ARCHIVE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT NOT NULL,
	session_name TEXT NOT NULL DEFAULT '',
	question     TEXT NOT NULL,
	answer       TEXT NOT NULL,
	reasoning    TEXT NOT NULL DEFAULT '',
	citations    TEXT NOT NULL DEFAULT '[]',
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);
CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
`

// Archive is the SQLite-backed exchange archive. Safe for concurrent
// use; writes are serialized by the single-connection pool.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the archive database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// RECORD
// =============================================================================

// Record stores one completed exchange and returns its archive id.
func (a *Archive) Record(ex ArchivedExchange) (int64, error) {
	citations, err := json.Marshal(ex.Citations)
	if err != nil {
		return 0, fmt.Errorf("failed to encode citations: %w", err)
	}

	createdAt := ex.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := a.db.Exec(`
		INSERT INTO exchanges (session_id, session_name, question, answer, reasoning, citations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ex.SessionID, ex.SessionName, ex.Question, ex.Answer, ex.Reasoning, string(citations), createdAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to record exchange: %w", err)
	}

	return res.LastInsertId()
}

// RecordTurns stores the trailing user/assistant pair of a transcript,
// skipping failed or empty assistant turns. Convenience over Record for
// the engine's completion hook.
func (a *Archive) RecordTurns(sessionID, sessionName string, user, assistant *model.ChatTurn) (int64, error) {
	if user == nil || assistant == nil {
		return 0, errors.New("both turns are required")
	}
	if assistant.HasError() || assistant.IsEmpty() {
		return 0, errors.New("nothing to archive")
	}

	return a.Record(ArchivedExchange{
		SessionID:   sessionID,
		SessionName: sessionName,
		Question:    user.Content,
		Answer:      assistant.Content,
		Reasoning:   assistant.Reasoning,
		Citations:   assistant.Citations,
		CreatedAt:   assistant.CreatedAt,
	})
}

// =============================================================================
// QUERY
// =============================================================================

// Get retrieves one archived exchange by id.
func (a *Archive) Get(id int64) (*ArchivedExchange, error) {
	row := a.db.QueryRow(`
		SELECT id, session_id, session_name, question, answer, reasoning, citations, created_at
		FROM exchanges WHERE id = ?
	`, id)

	ex, err := scanExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExchangeNotFound
	}
	return ex, err
}

// Recent returns the newest exchanges, most recent first.
func (a *Archive) Recent(limit int) ([]ArchivedExchange, error) {
	rows, err := a.db.Query(`
		SELECT id, session_id, session_name, question, answer, reasoning, citations, created_at
		FROM exchanges ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExchanges(rows)
}

// BySession returns a session's exchanges in chronological order.
func (a *Archive) BySession(sessionID string) ([]ArchivedExchange, error) {
	rows, err := a.db.Query(`
		SELECT id, session_id, session_name, question, answer, reasoning, citations, created_at
		FROM exchanges WHERE session_id = ? ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExchanges(rows)
}

// Search finds exchanges whose question or answer contains the query,
// case-insensitive, most recent first.
func (a *Archive) Search(query string, limit int) ([]ArchivedExchange, error) {
	if strings.TrimSpace(query) == "" {
		return a.Recent(limit)
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := a.db.Query(`
		SELECT id, session_id, session_name, question, answer, reasoning, citations, created_at
		FROM exchanges
		WHERE question LIKE ? ESCAPE '\' OR answer LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExchanges(rows)
}

// Count returns the number of archived exchanges.
func (a *Archive) Count() (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM exchanges`).Scan(&n)
	return n, err
}

// PruneOlderThan deletes exchanges created before the cutoff and
// returns how many were removed.
func (a *Archive) PruneOlderThan(cutoff time.Time) (int64, error) {
	res, err := a.db.Exec(`DELETE FROM exchanges WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders a session's archived exchanges as Markdown.
func (a *Archive) ExportMarkdown(sessionID string) (string, error) {
	exchanges, err := a.BySession(sessionID)
	if err != nil {
		return "", err
	}
	if len(exchanges) == 0 {
		return "", ErrExchangeNotFound
	}

	var sb strings.Builder
	title := exchanges[0].SessionName
	if title == "" {
		title = sessionID
	}
	sb.WriteString("# " + title + "\n\n")

	for _, ex := range exchanges {
		sb.WriteString("**You** (" + ex.CreatedAt.Format("2006-01-02 15:04") + "):\n\n")
		sb.WriteString(ex.Question)
		sb.WriteString("\n\n**Assistant**:\n\n")
		sb.WriteString(ex.Answer)
		if len(ex.Citations) > 0 {
			sb.WriteString("\n\nSources:\n")
			for _, doc := range model.DedupDocuments(ex.Citations) {
				sb.WriteString("- " + doc.DocumentName + "\n")
			}
		}
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String(), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExchange(row rowScanner) (*ArchivedExchange, error) {
	var ex ArchivedExchange
	var citations string
	var createdAt int64

	err := row.Scan(&ex.ID, &ex.SessionID, &ex.SessionName, &ex.Question,
		&ex.Answer, &ex.Reasoning, &citations, &createdAt)
	if err != nil {
		return nil, err
	}

	ex.CreatedAt = time.Unix(createdAt, 0)
	if err := json.Unmarshal([]byte(citations), &ex.Citations); err != nil {
		// A corrupt citations blob loses the citations, not the exchange.
		util.Debugf("archive: bad citations for exchange %d: %v", ex.ID, err)
		ex.Citations = nil
	}

	return &ex, nil
}

func collectExchanges(rows *sql.Rows) ([]ArchivedExchange, error) {
	var exchanges []ArchivedExchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, *ex)
	}
	return exchanges, rows.Err()
}

// escapeLike escapes LIKE wildcards in user queries.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
