// Package cli is the plain line-oriented terminal driver. It is used when
// stdout is not a terminal, with --plain, and for script playback.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nathoo/kernelcrawl/types"
)

// CLI reads one command per line and prints narration as plain text.
// Every line is delivered to the session as a typed line, so menus are
// answered by typing the option number.
type CLI struct {
	In          io.Reader
	Out         io.Writer
	EchoInput   bool          // echo each input line after the prompt (for script playback)
	TypingDelay time.Duration // per-character delay for typed text; 0 prints at once

	scanner  *bufio.Scanner
	closed   bool
	lastHUD  types.HUD
	hudShown bool
	lastRoom string
}

// New creates a CLI on stdin and stdout.
func New() *CLI {
	return &CLI{
		In:  os.Stdin,
		Out: os.Stdout,
	}
}

// Display prints text.
func (c *CLI) Display(text string) {
	c.printLine(text)
}

// DisplayTyped prints text one character at a time. There is no key to
// skip with on a line terminal, so skippable is ignored.
func (c *CLI) DisplayTyped(text string, skippable bool) {
	if c.TypingDelay <= 0 {
		c.printLine(text)
		return
	}
	for _, r := range text {
		fmt.Fprint(c.Out, string(r))
		time.Sleep(c.TypingDelay)
	}
	fmt.Fprintln(c.Out)
}

// DrawHUD prints the status line when it changed since the last one.
func (c *CLI) DrawHUD(hud types.HUD) {
	if c.hudShown && hud == c.lastHUD {
		return
	}
	c.lastHUD, c.hudShown = hud, true
	c.printLine(FormatHUD(hud))
}

// DrawRoom prints the room view when it changed since the last one.
func (c *CLI) DrawRoom(desc string) {
	if desc == c.lastRoom {
		return
	}
	c.lastRoom = desc
	c.printRoom(desc)
}

// RedrawAll prints the room view and the status line unconditionally.
func (c *CLI) RedrawAll(desc string, hud types.HUD) {
	c.lastRoom = desc
	c.lastHUD, c.hudShown = hud, true
	c.printRoom(desc)
	c.printLine(FormatHUD(hud))
}

// ClearLog forgets what was drawn so the next frame is printed in full.
func (c *CLI) ClearLog() {
	c.lastRoom = ""
	c.hudShown = false
}

// ReadKey prompts for a line and returns it as a typed line. Blank lines
// and lines starting with '#' are skipped.
func (c *CLI) ReadKey() types.KeyEvent {
	if c.closed {
		return types.KeyEvent{Key: types.KeyClosed}
	}
	for {
		c.print("> ")
		line, ok := c.next()
		if !ok {
			c.printLine("")
			return types.KeyEvent{Key: types.KeyClosed}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return types.KeyEvent{Text: line}
	}
}

// ReadLine prompts for free text. Comment lines are skipped; a blank line
// is returned as "".
func (c *CLI) ReadLine(prompt string) string {
	if c.closed {
		return ""
	}
	for {
		c.print(prompt + " ")
		line, ok := c.next()
		if !ok {
			c.printLine("")
			return ""
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
}

// next reads one trimmed line, echoing it in script mode.
func (c *CLI) next() (string, bool) {
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}
	if !c.scanner.Scan() {
		c.closed = true
		return "", false
	}
	line := strings.TrimSpace(c.scanner.Text())
	if c.EchoInput {
		c.printLine(line)
	}
	return line, true
}

// FormatHUD renders the status bar as a single line.
func FormatHUD(h types.HUD) string {
	weapon := h.Weapon
	if weapon == "" {
		weapon = "fists"
	}
	med := "none"
	if h.Med != "" {
		med = fmt.Sprintf("%s %d/%d", h.Med, h.MedUses, h.MedMaxUses)
	}
	scan := "off"
	if h.Scannable {
		scan = "on"
	}
	return fmt.Sprintf("[%s] HP %d/%d | ATK %d (%s) | MED %s | STORAGE %d/%d | SCAN %s | TURN %d",
		h.Room, h.HP, h.MaxHP, h.Attack, weapon, med, h.Weight, h.MaxWeight, scan, h.Turn)
}

func (c *CLI) printRoom(desc string) {
	rule := strings.Repeat("-", 40)
	c.printLine(rule)
	c.printLine(desc)
	c.printLine(rule)
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}
