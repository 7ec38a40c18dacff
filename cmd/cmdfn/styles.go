// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette for terminal output. Tuned for dark backgrounds.
const (
	// ColorPrimary is the violet used for titles and headers.
	ColorPrimary = lipgloss.Color("#8B5CF6")

	// ColorMuted is the gray used for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#71717A")

	// ColorSuccess marks successful resolutions and zero exits.
	ColorSuccess = lipgloss.Color("#22C55E")

	// ColorError marks failures and nonzero exits.
	ColorError = lipgloss.Color("#DC2626")

	// ColorWarning marks recoverable problems, like a config that failed to load.
	ColorWarning = lipgloss.Color("#EAB308")

	// ColorHighlight is the cyan used for command names and resolved paths.
	ColorHighlight = lipgloss.Color("#0EA5E9")
)

var (
	// TitleStyle renders primary headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle renders secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle renders positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle renders failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle renders caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle renders command names and executable paths.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
