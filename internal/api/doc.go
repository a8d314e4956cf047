// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the docchat backend.
//
// It covers the four endpoints the client consumes: the streaming
// send-turn endpoint, session listing, session detail (history), and
// the file quick-parse upload. The streaming path is split into a
// framer (stream.go), which turns the response body into newline-
// delimited candidate frames, and a merger (delta.go), which decodes
// each frame and applies it to the in-flight ChatTurn.
//
// Error handling follows a strict taxonomy: transport errors are
// returned to the caller as *ClientError; malformed frames are logged
// and dropped without aborting the stream.
package api
