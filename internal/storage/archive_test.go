// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	arch, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { arch.Close() })
	return arch
}

func TestArchiveRecordAndGet(t *testing.T) {
	arch := newTestArchive(t)

	id, err := arch.Record(ArchivedExchange{
		SessionID:   "s1",
		SessionName: "policies",
		Question:    "what is the refund window?",
		Answer:      "30 days.",
		Reasoning:   "found it in section 4",
		Citations: []model.Reference{
			{ID: "c1", DocumentID: "d1", DocumentName: "policy.pdf", ContentWithWeight: "..."},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	ex, err := arch.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "what is the refund window?", ex.Question)
	assert.Equal(t, "30 days.", ex.Answer)
	assert.Equal(t, "found it in section 4", ex.Reasoning)
	require.Len(t, ex.Citations, 1)
	assert.Equal(t, "policy.pdf", ex.Citations[0].DocumentName)
	assert.False(t, ex.CreatedAt.IsZero())
}

func TestArchiveGetMissing(t *testing.T) {
	arch := newTestArchive(t)

	_, err := arch.Get(999)
	assert.True(t, errors.Is(err, ErrExchangeNotFound), "err = %v", err)
}

func TestArchiveBySessionOrder(t *testing.T) {
	arch := newTestArchive(t)

	base := time.Now().Add(-time.Hour)
	for i, q := range []string{"first", "second", "third"} {
		_, err := arch.Record(ArchivedExchange{
			SessionID: "s1",
			Question:  q,
			Answer:    "a",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := arch.Record(ArchivedExchange{SessionID: "s2", Question: "other", Answer: "a"})
	require.NoError(t, err)

	exchanges, err := arch.BySession("s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 3)
	assert.Equal(t, "first", exchanges[0].Question)
	assert.Equal(t, "third", exchanges[2].Question)
}

func TestArchiveSearch(t *testing.T) {
	arch := newTestArchive(t)

	_, err := arch.Record(ArchivedExchange{SessionID: "s1", Question: "refund policy?", Answer: "30 days"})
	require.NoError(t, err)
	_, err = arch.Record(ArchivedExchange{SessionID: "s1", Question: "shipping time?", Answer: "one week, refunds excluded"})
	require.NoError(t, err)
	_, err = arch.Record(ArchivedExchange{SessionID: "s1", Question: "colors?", Answer: "red and blue"})
	require.NoError(t, err)

	// Matches question or answer, case-insensitive.
	hits, err := arch.Search("REFUND", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// LIKE wildcards in the query are literal.
	hits, err = arch.Search("100%", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Blank query falls back to recent.
	hits, err = arch.Search("   ", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestArchiveRecordTurns(t *testing.T) {
	arch := newTestArchive(t)

	user := model.NewUserTurn("q")
	assistant := model.NewAssistantTurn()
	assistant.AppendContent("answer")
	assistant.FinishStream()

	id, err := arch.RecordTurns("s1", "docs", user, assistant)
	require.NoError(t, err)

	ex, err := arch.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "q", ex.Question)
	assert.Equal(t, "answer", ex.Answer)
	assert.Equal(t, "docs", ex.SessionName)
}

func TestArchiveRecordTurnsRejectsFailedTurn(t *testing.T) {
	arch := newTestArchive(t)

	user := model.NewUserTurn("q")
	failed := model.NewAssistantTurn()
	failed.Fail("connection lost")

	_, err := arch.RecordTurns("s1", "", user, failed)
	assert.Error(t, err)

	count, err := arch.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestArchivePruneOlderThan(t *testing.T) {
	arch := newTestArchive(t)

	old := time.Now().Add(-48 * time.Hour)
	_, err := arch.Record(ArchivedExchange{SessionID: "s1", Question: "old", Answer: "a", CreatedAt: old})
	require.NoError(t, err)
	_, err = arch.Record(ArchivedExchange{SessionID: "s1", Question: "new", Answer: "a"})
	require.NoError(t, err)

	removed, err := arch.PruneOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	count, err := arch.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestArchiveExportMarkdown(t *testing.T) {
	arch := newTestArchive(t)

	_, err := arch.Record(ArchivedExchange{
		SessionID:   "s1",
		SessionName: "policies",
		Question:    "refund window?",
		Answer:      "30 days.",
		Citations: []model.Reference{
			{ID: "c1", DocumentID: "d1", DocumentName: "policy.pdf"},
			{ID: "c2", DocumentID: "d1", DocumentName: "policy.pdf"},
		},
	})
	require.NoError(t, err)

	md, err := arch.ExportMarkdown("s1")
	require.NoError(t, err)
	assert.Contains(t, md, "# policies")
	assert.Contains(t, md, "refund window?")
	assert.Contains(t, md, "30 days.")
	// Citations dedup to one source line.
	assert.Equal(t, 1, strings.Count(md, "- policy.pdf"))

	_, err = arch.ExportMarkdown("missing")
	assert.True(t, errors.Is(err, ErrExchangeNotFound))
}
