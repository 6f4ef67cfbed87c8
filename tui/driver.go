package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nathoo/kernelcrawl/engine"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// Messages sent from the session goroutine to the UI.
type logMsg struct{ text string }

type typedMsg struct {
	text      string
	skippable bool
	done      chan struct{}
}

type hudMsg struct{ hud types.HUD }

type roomMsg struct{ desc string }

type redrawMsg struct {
	desc string
	hud  types.HUD
}

type clearMsg struct{}

type promptMsg struct{ prompt string }

type sessionDone struct{}

// sender is the part of *tea.Program the driver needs.
type sender interface {
	Send(msg tea.Msg)
}

// Driver bridges the blocking engine.Driver calls made on the session
// goroutine to the Bubble Tea program running on its own goroutine. The
// session never touches the model; the model never touches the world.
type Driver struct {
	program sender

	keys   chan types.KeyEvent
	lines  chan string
	closed chan struct{}
	once   sync.Once
}

// NewDriver creates an unattached driver.
func NewDriver() *Driver {
	return &Driver{
		keys:   make(chan types.KeyEvent, 64),
		lines:  make(chan string, 1),
		closed: make(chan struct{}),
	}
}

// Attach connects the driver to the program that renders it.
func (d *Driver) Attach(p sender) { d.program = p }

// Close ends input: blocked and future reads return at once.
func (d *Driver) Close() {
	d.once.Do(func() { close(d.closed) })
}

func (d *Driver) send(msg tea.Msg) {
	if d.program != nil {
		d.program.Send(msg)
	}
}

// pushKey queues a keypress for the session. Keys are dropped when the
// session is far behind.
func (d *Driver) pushKey(ev types.KeyEvent) {
	select {
	case d.keys <- ev:
	default:
	}
}

// pushLine answers a pending ReadLine.
func (d *Driver) pushLine(line string) {
	select {
	case d.lines <- line:
	default:
	}
}

func (d *Driver) Display(text string) { d.send(logMsg{text: text}) }

// DisplayTyped blocks until the typewriter finishes or is skipped.
func (d *Driver) DisplayTyped(text string, skippable bool) {
	done := make(chan struct{})
	d.send(typedMsg{text: text, skippable: skippable, done: done})
	select {
	case <-done:
	case <-d.closed:
	}
}

func (d *Driver) DrawHUD(hud types.HUD) { d.send(hudMsg{hud: hud}) }

func (d *Driver) DrawRoom(desc string) { d.send(roomMsg{desc: desc}) }

func (d *Driver) ClearLog() { d.send(clearMsg{}) }

func (d *Driver) RedrawAll(desc string, hud types.HUD) {
	d.send(redrawMsg{desc: desc, hud: hud})
}

func (d *Driver) ReadKey() types.KeyEvent {
	select {
	case ev := <-d.keys:
		return ev
	case <-d.closed:
		return types.KeyEvent{Key: types.KeyClosed}
	}
}

func (d *Driver) ReadLine(prompt string) string {
	d.send(promptMsg{prompt: prompt})
	select {
	case line := <-d.lines:
		return line
	case <-d.closed:
		return ""
	}
}

// Run plays a session in the full-screen UI and returns when the player
// quits or the terminal closes.
func Run(defs *state.Defs, rng *engine.RNG, logger logrus.FieldLogger, typingDelay time.Duration) error {
	d := NewDriver()
	m := New(d, defs.Game.Title, typingDelay)
	p := tea.NewProgram(m, tea.WithAltScreen())
	d.Attach(p)

	s := engine.New(defs, d, rng, logger)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		s.Run()
		p.Send(sessionDone{})
	}()

	_, err := p.Run()
	d.Close()
	<-finished
	return err
}
