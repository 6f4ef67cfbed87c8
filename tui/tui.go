package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/kernelcrawl/types"
)

// maxLogLines bounds the scrollback.
const maxLogLines = 1000

// rawLine stores an unstyled log line with its classification, so it can
// be re-wrapped and re-styled when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // echoed command line
}

// typewriter reveals text one rune per tick.
type typewriter struct {
	runes     []rune
	shown     int
	skippable bool
	done      chan struct{}
}

type tickMsg struct{}

// keyMap holds the bindings the model handles itself. Everything else in
// key mode goes to the session.
type keyMap struct {
	Quit    key.Binding
	Command key.Binding
	Scroll  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "type a command")),
	Scroll:  key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
}

// Model is the Bubble Tea model. It only renders what the session sends
// and forwards input back through the driver.
type Model struct {
	driver *Driver
	title  string
	delay  time.Duration

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine
	room     string
	hud      types.HUD
	hasHUD   bool
	typing   *typewriter

	lineMode  bool // the command line is open
	prompting bool // the command line answers a ReadLine

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a model bound to d. typingDelay is the per-rune typewriter
// delay; zero shows typed text at once.
func New(d *Driver, title string, typingDelay time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		driver:  d,
		title:   title,
		delay:   typingDelay,
		input:   ti,
		history: NewHistory(100),
	}
}

// Init sets the window title.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle(m.title)
}

// Update handles terminal events and session messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		}
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case logMsg:
		m = m.appendText(msg.text)
		return m, nil

	case typedMsg:
		if m.delay <= 0 || msg.text == "" {
			m = m.appendText(msg.text)
			close(msg.done)
			return m, nil
		}
		m.typing = &typewriter{runes: []rune(msg.text), skippable: msg.skippable, done: msg.done}
		m.refreshViewport()
		return m, m.tick()

	case tickMsg:
		if m.typing == nil {
			return m, nil
		}
		m.typing.shown++
		if m.typing.shown >= len(m.typing.runes) {
			m = m.finishTyping()
			return m, nil
		}
		m.refreshViewport()
		return m, m.tick()

	case hudMsg:
		m.hud, m.hasHUD = msg.hud, true
		return m, nil

	case roomMsg:
		m.room = msg.desc
		m.layout()
		return m, nil

	case redrawMsg:
		m.room = msg.desc
		m.hud, m.hasHUD = msg.hud, true
		m.layout()
		return m, nil

	case clearMsg:
		m.rawLines = nil
		m.refreshViewport()
		return m, nil

	case promptMsg:
		m = m.appendText(msg.prompt)
		m.lineMode, m.prompting = true, true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd

	case sessionDone:
		m.quitting = true
		return m, tea.Quit
	}

	if m.lineMode {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return tickMsg{} })
}

// finishTyping moves the typewriter text into the log and releases the
// session.
func (m Model) finishTyping() Model {
	tw := m.typing
	m.typing = nil
	m = m.appendText(string(tw.runes))
	close(tw.done)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if key.Matches(msg, keys.Scroll) {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// A keypress skips a skippable typewriter and is consumed by it.
	if m.typing != nil {
		if m.typing.skippable {
			m = m.finishTyping()
		}
		return m, nil
	}

	if m.lineMode {
		return m.handleLineKey(msg)
	}

	if key.Matches(msg, keys.Command) {
		m.lineMode = true
		m.input.SetValue("")
		m.layout()
		cmd := m.input.Focus()
		return m, cmd
	}
	if ev, ok := keyEvent(msg); ok {
		m.driver.pushKey(ev)
	}
	return m, nil
}

// handleLineKey edits the command line.
func (m Model) handleLineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		m.closeLine()
		m.history.Push(line)
		if m.prompting {
			m.prompting = false
			m.rawLines = append(m.rawLines, rawLine{text: line, isInput: true})
			m.refreshViewport()
			m.driver.pushLine(line)
			return m, nil
		}
		if line != "" {
			m.rawLines = append(m.rawLines, rawLine{text: line, isInput: true})
			m.refreshViewport()
			m.driver.pushKey(types.KeyEvent{Text: line})
		}
		return m, nil

	case tea.KeyEsc:
		m.closeLine()
		if m.prompting {
			m.prompting = false
			m.driver.pushLine("")
		}
		return m, nil

	case tea.KeyUp:
		if prev, ok := m.history.Prev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if next, ok := m.history.Next(); ok {
			m.input.SetValue(next)
			m.input.CursorEnd()
		} else {
			m.input.SetValue("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeLine() {
	m.lineMode = false
	m.history.ResetCursor()
	m.input.SetValue("")
	m.input.Blur()
	m.layout()
}

// keyEvent maps a terminal keypress to the session's key vocabulary.
func keyEvent(msg tea.KeyMsg) (types.KeyEvent, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return types.KeyEvent{Key: types.KeyUp}, true
	case tea.KeyDown:
		return types.KeyEvent{Key: types.KeyDown}, true
	case tea.KeyLeft:
		return types.KeyEvent{Key: types.KeyLeft}, true
	case tea.KeyRight:
		return types.KeyEvent{Key: types.KeyRight}, true
	case tea.KeyEsc:
		return types.KeyEvent{Key: types.KeyEscape}, true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return types.KeyEvent{Key: string(msg.Runes[0])}, true
		}
	case tea.KeySpace:
		return types.KeyEvent{Key: " "}, true
	}
	return types.KeyEvent{}, false
}

// appendText adds narration to the log, one raw line per text line.
func (m Model) appendText(text string) Model {
	for _, line := range strings.Split(text, "\n") {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}
	m.rawLines = append(m.rawLines, rawLine{})
	if over := len(m.rawLines) - maxLogLines; over > 0 {
		m.rawLines = m.rawLines[over:]
	}
	m.refreshViewport()
	return m
}

// layout sizes the log between the room frame and the two bottom lines.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	vpHeight := m.height - lipgloss.Height(renderRoom(m.room, m.width)) - 2 // status bar + input line
	if m.room == "" {
		vpHeight = m.height - 2
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.refreshViewport()
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" && !rl.isInput {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, styledPlayerInput(wrapped))
		} else {
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}
	if tw := m.typing; tw != nil {
		styled = append(styled, styleNarration.Render(wordWrap(string(tw.runes[:tw.shown]), width)))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps each line of text to width, breaking at word boundaries
// and keeping leading indentation.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	if len(line) <= width {
		return line
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]

	var result strings.Builder
	result.WriteString(indent)
	lineLen := len(indent)

	for i, word := range strings.Fields(line) {
		wLen := len(word)
		if i == 0 {
			result.WriteString(word)
			lineLen += wLen
			continue
		}
		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(indent)
			result.WriteString(word)
			lineLen = len(indent) + wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}
	return result.String()
}

// View renders the layout: room frame, log, status bar, input or hint line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	if m.room != "" {
		b.WriteString(renderRoom(m.room, m.width))
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.hasHUD {
		b.WriteString(renderStatusBar(m.hud, m.width))
	}
	b.WriteString("\n")
	if m.lineMode {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(styleHint.Render(hintLine()))
	}
	return b.String()
}

func hintLine() string {
	parts := []string{"/ help"}
	for _, k := range []key.Binding{keys.Command, keys.Scroll, keys.Quit} {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled; the
// arrows move the player.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
