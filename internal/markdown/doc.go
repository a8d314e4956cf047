// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders assistant answers for terminal display.
//
// Answers arrive as Markdown with inline citation markers of the form
// ##N$$, where N indexes the turn's citation list. Rendering goes
// through glamour; the markers are turned into styled [N] badges after
// the Markdown pass so glamour never sees them as heading syntax.
package markdown
