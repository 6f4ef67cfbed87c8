package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/kernelcrawl/types"
)

// Driver is the terminal the session talks to. Implementations must be
// usable from the session goroutine; ReadKey and ReadLine block until the
// player acts or input ends.
type Driver interface {
	// Display appends text to the log.
	Display(text string)
	// DisplayTyped appends text with a typewriter effect. When skippable
	// is true a keypress reveals the rest at once.
	DisplayTyped(text string, skippable bool)
	// DrawHUD replaces the status bar.
	DrawHUD(hud types.HUD)
	// DrawRoom replaces the room view.
	DrawRoom(desc string)
	// ClearLog empties the log.
	ClearLog()
	// ReadKey returns the next input event. Once input has ended it
	// returns types.KeyClosed forever.
	ReadKey() types.KeyEvent
	// ReadLine prompts for a line of text. It returns "" when input ends.
	ReadLine(prompt string) string
	// RedrawAll repaints the room view and the status bar together.
	RedrawAll(desc string, hud types.HUD)
}

// selection normalises an input event for menus: the named key, or the
// trimmed, lowercased line.
func selection(ev types.KeyEvent) string {
	if t := strings.TrimSpace(ev.Text); t != "" {
		return strings.ToLower(t)
	}
	return strings.ToLower(ev.Key)
}

// Choose shows a numbered menu and blocks until the player picks an option.
// It returns the zero-based index, or false when the player backs out with
// escape or input ends. Invalid selections re-prompt.
func Choose(io Driver, title string, options []string) (int, bool) {
	if len(options) == 0 {
		return 0, false
	}
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	for i, opt := range options {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, opt)
	}
	b.WriteString("[ESC] Back")
	io.Display(b.String())

	for {
		ev := io.ReadKey()
		if ev.Key == types.KeyClosed {
			return 0, false
		}
		sel := selection(ev)
		if sel == types.KeyEscape || sel == "back" {
			return 0, false
		}
		n, err := strconv.Atoi(sel)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, true
		}
		if sel != "" {
			io.Display("Invalid selection.")
		}
	}
}

// Confirm asks a yes/no question. Escape and closed input count as no.
func Confirm(io Driver, prompt string) bool {
	io.Display(prompt + "\n[1] Yes [2] No")
	for {
		ev := io.ReadKey()
		if ev.Key == types.KeyClosed {
			return false
		}
		switch selection(ev) {
		case "1", "y", "yes":
			return true
		case "2", "n", "no", types.KeyEscape:
			return false
		case "":
		default:
			io.Display("Invalid selection.")
		}
	}
}
