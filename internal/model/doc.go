// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and turns.
//
// The central type is ChatTurn, one exchange unit in a transcript. A user
// turn is immutable after creation; an assistant turn is mutated in place
// while its response streams in, then frozen. Derived state (the deduped
// document list) is always recomputed from the citations, never patched.
package model
