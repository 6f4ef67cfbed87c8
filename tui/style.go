package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusLow = lipgloss.NewStyle().
			Background(lipgloss.Color("52")).
			Foreground(lipgloss.Color("231")).
			Bold(true)

	styleRoomFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("37")).
			Padding(0, 1)

	styleRoomTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeader = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true)

	styleListItem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	styleMenu = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleCombat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindHeader
	kindListItem
	kindMenu
	kindCombat
	kindSystem
	kindError
)

// errorPrefixes open refusal narration.
var errorPrefixes = []string{
	"You can't",
	"You don't",
	"You have nothing",
	"There is nothing",
	"There are no",
	"The path to",
	"Invalid selection",
	"Unknown command",
	"Nothing to repeat",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "[1]"), strings.HasPrefix(trimmed, "[ESC]"), strings.HasPrefix(trimmed, "[R]"):
		return kindMenu
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		return kindHeader
	case strings.HasPrefix(trimmed, "- "):
		return kindListItem
	case strings.HasPrefix(trimmed, "!!"),
		strings.Contains(trimmed, "hits you for"),
		strings.HasPrefix(trimmed, "You strike"),
		strings.HasSuffix(trimmed, "has fallen."):
		return kindCombat
	case strings.HasPrefix(trimmed, ">"), strings.HasPrefix(trimmed, "==="):
		return kindSystem
	}
	for _, p := range errorPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return kindError
		}
	}
	return kindNarration
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHeader:
		return styleHeader.Render(line)
	case kindListItem:
		return styleListItem.Render(line)
	case kindMenu:
		return styleMenu.Render(line)
	case kindCombat:
		return styleCombat.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledPlayerInput renders an echoed command line in green with "> " prefix.
func styledPlayerInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}
