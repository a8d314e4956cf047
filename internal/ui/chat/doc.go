// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main Bubble Tea model for the docchat TUI.

The model composes the transcript viewport, source sidebar, question
input, spinner, toast stack, and status bar, and drives the answer
engine from key presses.

The engine runs its streaming work on its own goroutines; main bridges
its callbacks into this model with program.Send, so everything here
executes on the Bubble Tea update loop and needs no locking.

Message flow for one question:

	SubmitInput -> engine.Send -> LoadingMsg{On:true}
	first token -> StreamAcceptedMsg -> spinner stops
	each delta  -> TranscriptChangedMsg -> viewport refresh + re-anchor
	final       -> StreamDoneMsg -> status bar clears
*/
package chat
