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
	"net/http"
	"net/url"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the docchat backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeSessionNotFound
	ErrTypeInvalidResponse
	ErrTypeConnection
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable     = &ClientError{Type: ErrTypeUnreachable, Message: "docchat server is unreachable"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrSessionNotFound = &ClientError{Type: ErrTypeSessionNotFound, Message: "session not found"}
)

// IsSessionNotFound checks if an error is a session not found error.
func IsSessionNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeSessionNotFound
	}
	return errors.Is(err, ErrSessionNotFound)
}

// IsUnreachable checks if an error indicates the server is unreachable.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// UploadTimeout for quick-parse uploads, which can be slow for large
	// documents (default: 2m)
	UploadTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:8000",
		Timeout:       30 * time.Second,
		UploadTimeout: 2 * time.Minute,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the docchat backend.
//
// The Client is safe for concurrent use.
//
// Example:
//
//	client := api.NewClient()
//	sessions, err := client.ListSessions(ctx)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = 2 * time.Minute
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckReachable verifies that the backend answers at all.
func (c *Client) CheckReachable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from server: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// ListSessions retrieves session metadata in the order the server
// returns it. The result replaces any previously known list; the client
// never merges.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/session/list", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("failed to list sessions", resp)
	}

	var result sessionListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode session list", Cause: err}
	}

	return result.Sessions, nil
}

// SessionDetail retrieves the flat message history of one session, in
// exchange order. See model.BootstrapTurns for turning records into a
// transcript.
func (c *Client) SessionDetail(ctx context.Context, sessionID string) ([]model.HistoryRecord, error) {
	detailURL := c.config.BaseURL + "/session/detail?session_id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
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
		return nil, c.statusError("failed to load session history", resp)
	}

	var result sessionDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode session history", Cause: err}
	}

	return result.Messages, nil
}

// =============================================================================
// STREAMING SEND-TURN
// =============================================================================

// FrameCallback is called for each candidate frame in arrival order.
type FrameCallback func(frame string)

// OpenTurnStream sends one chat turn and returns the raw response body
// as an open stream. The caller owns the body and must close it.
func (c *Client) OpenTurnStream(ctx context.Context, sessionID, message string) (io.ReadCloser, error) {
	body, err := json.Marshal(sendTurnRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// Use a client without timeout for streaming; lifetime is governed
	// by the request context instead.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/session/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}

	if resp.StatusCode == http.StatusNotFound {
		drainAndClose(resp.Body)
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		err := c.statusError("send turn failed", resp)
		drainAndClose(resp.Body)
		return nil, err
	}

	return resp.Body, nil
}

// StreamTurn sends one chat turn and calls the callback for each
// candidate frame, synchronously and in arrival order. It returns when
// the stream completes or the transport fails.
func (c *Client) StreamTurn(ctx context.Context, sessionID, message string, callback FrameCallback) error {
	body, err := c.OpenTurnStream(ctx, sessionID, message)
	if err != nil {
		return err
	}
	defer body.Close()

	reader := NewStreamReader(body)
	err = reader.Process(ctx, callback)
	util.Debugf("stream: session=%s frames=%d err=%v", sessionID, reader.FrameCount(), err)
	return err
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// statusError builds a ClientError from a non-2xx response, preferring
// the backend's own error message when the body carries one.
func (c *Client) statusError(prefix string, resp *http.Response) *ClientError {
	var srvErr serverError
	if err := json.NewDecoder(resp.Body).Decode(&srvErr); err == nil && srvErr.message() != "" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: srvErr.message()}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: prefix + ": " + resp.Status}
}

// drainAndClose drains a response body so the connection can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
