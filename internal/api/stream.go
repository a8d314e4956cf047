// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the docchat backend.
package api

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader splits a streaming response body into candidate frames.
//
// A frame boundary is a newline. Partial fragments are buffered across
// reads and re-joined before splitting, so the caller sees the same
// frames regardless of how the transport chunks the bytes. Only lines
// carrying the "data: " prefix are forwarded; everything else
// (keep-alives, comments, blank lines) is dropped by policy. Bytes left
// unterminated when the stream closes are discarded, not flushed as a
// final partial frame.
type StreamReader struct {
	reader     *bufio.Reader
	frameCount int
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Next returns the next candidate frame, with its line terminator
// removed but the "data: " prefix intact. It returns io.EOF when the
// stream completes and passes through any transport error.
func (s *StreamReader) Next() (string, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			// An unterminated trailing fragment is discarded: framing
			// requires at least one newline.
			return "", err
		}

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		s.frameCount++
		return line, nil
	}
}

// Process reads the stream to completion, calling the callback for each
// candidate frame in arrival order. It returns nil when the stream ends
// normally, ctx.Err() on cancellation, and the transport error otherwise.
func (s *StreamReader) Process(ctx context.Context, callback FrameCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := s.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
		}

		callback(frame)
	}
}

// FrameCount returns the number of candidate frames seen so far.
func (s *StreamReader) FrameCount() int {
	return s.frameCount
}
