// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the docchat client:
// atomic file writes, rune-safe string handling, input normalization,
// and the debug log sink.
package util
