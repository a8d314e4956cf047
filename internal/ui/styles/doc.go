// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the docchat TUI.

This package defines the color palette and theme used throughout the
application. All colors use Lip Gloss AdaptiveColor so they read well on
both light and dark terminals; the configured theme can force either
variant.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for assistant answers and selections
  - Cyan - Brand color for info, commands, and user highlights
  - Emerald - Success states, grounded-answer indicator
  - Amber - Warnings and upload progress
  - Rose - Errors and unreachable-backend states

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text
	TextInverse   - Text on colored backgrounds

# Theme System (theme.go)

The Theme struct bundles every style the TUI renders with:

	theme := styles.NewTheme("dark")
	title := theme.HeaderTitle.Render("docchat")

Passing "light" or "dark" pins the palette to that variant; anything
else falls back to terminal background detection.
*/
package styles
