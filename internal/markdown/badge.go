// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders assistant answers for terminal display.
package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// CITATION BADGES
// =============================================================================

// PERFORMANCE: Pre-compiled regex (compiled once at startup)
var (
	// badgeRegex matches inline citation markers: ##N$$ where N indexes
	// the turn's citation list.
	badgeRegex = regexp.MustCompile(`##(\d+)\$\$`)

	// placeholderRegex matches the intermediate tokens badges are
	// parked in while glamour runs.
	placeholderRegex = regexp.MustCompile(`\x{27e6}(\d+)\x{27e7}`)
)

// StripBadges removes all citation markers from the content.
func StripBadges(content string) string {
	return badgeRegex.ReplaceAllString(content, "")
}

// ReplaceBadges substitutes each marker with the callback's output.
func ReplaceBadges(content string, replace func(index int) string) string {
	return badgeRegex.ReplaceAllStringFunc(content, func(marker string) string {
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(marker, "##"), "$$"))
		if err != nil {
			return marker
		}
		return replace(n)
	})
}

// parkBadges swaps markers for neutral placeholder tokens so the
// Markdown renderer can neither mangle them nor mistake a line-leading
// "##" for a heading.
func parkBadges(content string) string {
	return ReplaceBadges(content, func(index int) string {
		return "⟦" + strconv.Itoa(index) + "⟧"
	})
}

// restoreBadges turns placeholder tokens into their final form.
func restoreBadges(content string, replace func(index int) string) string {
	return placeholderRegex.ReplaceAllStringFunc(content, func(token string) string {
		digits := strings.TrimSuffix(strings.TrimPrefix(token, "⟦"), "⟧")
		n, err := strconv.Atoi(digits)
		if err != nil {
			return token
		}
		return replace(n)
	})
}
