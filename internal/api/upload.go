// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the docchat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// UPLOAD POLICY
// =============================================================================

// ValidationError is a pre-network rejection of an upload. It is meant
// for direct display to the user and never reaches the wire.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError checks if an error is a client-side upload rejection.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// UploadPolicy is the client-side acceptance policy for quick-parse
// uploads, checked before any network call.
type UploadPolicy struct {
	// AllowedExtensions lists acceptable file extensions, lowercase,
	// with leading dot.
	AllowedExtensions []string

	// MaxSizeBytes is the maximum file size (0 = unlimited).
	MaxSizeBytes int64
}

// DefaultUploadPolicy returns the standard document policy.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".md"},
		MaxSizeBytes:      50 * 1024 * 1024,
	}
}

// Validate checks a candidate file against the policy.
func (p UploadPolicy) Validate(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if len(p.AllowedExtensions) > 0 {
		allowed := false
		for _, a := range p.AllowedExtensions {
			if ext == a {
				allowed = true
				break
			}
		}
		if !allowed {
			return &ValidationError{Message: "unsupported file type " + ext + " (allowed: " + strings.Join(p.AllowedExtensions, ", ") + ")"}
		}
	}

	if p.MaxSizeBytes > 0 && size > p.MaxSizeBytes {
		return &ValidationError{Message: "file exceeds the upload size limit"}
	}

	return nil
}

// =============================================================================
// QUICK PARSE UPLOAD
// =============================================================================

// QuickParse uploads one document for immediate parsing and attachment
// to a session. Validation happens in the callers; this method only
// speaks the wire protocol.
func (c *Client) QuickParse(ctx context.Context, sessionID, filename string, r io.Reader) (*QuickParseResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("session_id", sessionID); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build upload form", Cause: err}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build upload form", Cause: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to read upload data", Cause: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to finish upload form", Cause: err}
	}

	// Uploads get their own client with a generous timeout; parsing a
	// large PDF server-side is slow.
	uploadClient := &http.Client{Timeout: c.config.UploadTimeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/document/quick_parse", &buf)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := uploadClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("upload failed", resp)
	}

	var result QuickParseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode upload response", Cause: err}
	}
	if result.DocumentName == "" {
		result.DocumentName = filepath.Base(filename)
	}

	return &result, nil
}

// QuickParseFile validates a file on disk against the policy and
// uploads it. Policy rejections come back as *ValidationError before
// any network traffic.
func (c *Client) QuickParseFile(ctx context.Context, sessionID, path string, policy UploadPolicy) (*QuickParseResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Message: "cannot read file: " + err.Error()}
	}
	if info.IsDir() {
		return nil, &ValidationError{Message: "directories cannot be uploaded"}
	}
	if err := policy.Validate(info.Name(), info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Message: "cannot open file: " + err.Error()}
	}
	defer f.Close()

	return c.QuickParse(ctx, sessionID, info.Name(), f)
}
