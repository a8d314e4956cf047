// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the docchat TUI.

Components are plain structs with Update/View methods following Bubble Tea
conventions. The main pieces:

  - TranscriptViewport - scrollable transcript with bottom-pinning
  - Sidebar - source panel for the anchored answer's citations
  - Spinner - waiting indicator between submit and first token
  - ToastManager - non-blocking corner notifications
  - StatusBar - session, backend, and shortcut display
  - InputArea - single-line question input

All components take a *styles.Theme so light and dark variants render
consistently.
*/
package components
