// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client-side mutable state: the transcript of
// the active conversation and the known session list. Both stores are
// observable; UI layers subscribe and re-render on change instead of
// polling.
package store
