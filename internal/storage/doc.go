// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides a local archive of completed chat exchanges.
//
// The archive is an SQLite database, independent of the server's own
// session history: it survives server-side deletions and supports full
// text search across past answers from the history command.
//
// # Key Types
//
//   - Archive: the SQLite-backed exchange archive
//   - ArchivedExchange: one stored question/answer pair
//
// # Usage
//
//	arch, err := storage.Open(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arch.Close()
//
//	arch.Record(exchange)
//	hits, _ := arch.Search("refund policy", 20)
package storage
