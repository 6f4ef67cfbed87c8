// Package engine runs an interactive session: it reads input from a Driver,
// dispatches commands to movement, inventory, puzzles and combat, and owns
// the pause, restart and game-over transitions.
package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nathoo/kernelcrawl/engine/effects"
	"github.com/nathoo/kernelcrawl/engine/events"
	"github.com/nathoo/kernelcrawl/engine/inventory"
	"github.com/nathoo/kernelcrawl/engine/parser"
	"github.com/nathoo/kernelcrawl/engine/resolve"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/logging"
	"github.com/nathoo/kernelcrawl/types"
)

// Mode is the session meta-state.
type Mode int

const (
	ModePlaying Mode = iota
	ModePaused
	ModeGameOver
	ModeWon
	ModeQuit
)

func (m Mode) String() string {
	switch m {
	case ModePlaying:
		return "playing"
	case ModePaused:
		return "paused"
	case ModeGameOver:
		return "game_over"
	case ModeWon:
		return "won"
	case ModeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Screen texts.
const (
	pauseMenu    = "=== SYSTEM PAUSED ===\n[ESC] Resume [R] Restart [Q] Quit"
	gameOverText = "=== SYSTEM FAILURE ===\nYou have been terminated."
	endMenu      = "[R] Restart [Q] Quit"
)

// Session holds the game definitions, the live world and the collaborators
// a run needs. The world is lent to subsystem functions one call at a time.
type Session struct {
	Defs  *state.Defs
	World *state.World
	IO    Driver
	RNG   *RNG
	ID    uuid.UUID

	logger  logrus.FieldLogger
	log     *logrus.Entry
	mode    Mode
	last    types.Command
	keyMode bool // the last command came from a keypress, not a typed line
}

// freeVerbs never advance the turn counter.
var freeVerbs = map[string]bool{
	"help":  true,
	"pause": true,
	"quit":  true,
}

// New creates a session over a fresh world. A nil logger discards logs.
func New(defs *state.Defs, d Driver, rng *RNG, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Session{
		Defs:   defs,
		IO:     d,
		RNG:    rng,
		logger: logger,
	}
	s.reset()
	return s
}

// reset builds a new world and session ID.
func (s *Session) reset() {
	s.World = state.NewWorld(s.Defs)
	s.ID = uuid.New()
	s.log = s.logger.WithField("session", s.ID.String())
	s.mode = ModePlaying
	s.last = types.Command{}
}

// Mode returns the current meta-state.
func (s *Session) Mode() Mode { return s.mode }

// Run plays until the player quits or input ends.
func (s *Session) Run() {
	s.log.WithFields(logrus.Fields{
		"game": s.Defs.Game.Title,
		"seed": s.RNG.Seed(),
	}).Info("session started")
	s.start()

	for s.mode != ModeQuit {
		switch s.mode {
		case ModePlaying:
			ev := s.IO.ReadKey()
			if ev.Key == types.KeyClosed {
				s.mode = ModeQuit
				break
			}
			cmd, ok := parser.FromKey(ev)
			if !ok {
				continue
			}
			s.keyMode = strings.TrimSpace(ev.Text) == ""
			s.Dispatch(cmd)
		case ModePaused:
			s.paused()
		case ModeGameOver:
			s.IO.DisplayTyped(gameOverText, true)
			s.ended()
		case ModeWon:
			if s.Defs.Game.Outro != "" {
				s.IO.DisplayTyped(s.Defs.Game.Outro, true)
			}
			s.ended()
		}
	}

	s.log.WithField("turns", s.World.TurnCount).Info("session ended")
}

// start shows the intro and paints the first room.
func (s *Session) start() {
	s.IO.ClearLog()
	s.IO.RedrawAll(s.roomView(), state.Snapshot(s.World))
	if s.Defs.Game.Intro != "" {
		s.IO.DisplayTyped(s.Defs.Game.Intro, true)
	}
	s.IO.Display("Press / for help.")
	s.fire([]types.Event{{Type: "room_entered", Subject: s.World.Player.Location}})
}

// Restart discards the world and rebuilds it from the definitions.
func (s *Session) Restart() {
	old := s.ID
	s.reset()
	s.log.WithField("previous", old.String()).Info("session restarted")
	s.start()
}

// paused runs the pause menu once.
func (s *Session) paused() {
	s.IO.Display(pauseMenu)
	for {
		ev := s.IO.ReadKey()
		if ev.Key == types.KeyClosed {
			s.mode = ModeQuit
			return
		}
		switch selection(ev) {
		case types.KeyEscape, "resume":
			s.mode = ModePlaying
			s.IO.RedrawAll(s.roomView(), state.Snapshot(s.World))
			s.IO.Display("Resumed.")
			return
		case "r", "restart":
			s.Restart()
			return
		case "q", "quit":
			s.mode = ModeQuit
			return
		}
	}
}

// ended runs the restart-or-quit menu shown after death or victory.
func (s *Session) ended() {
	s.log.WithFields(logrus.Fields{
		"mode":  s.mode.String(),
		"turns": s.World.TurnCount,
	}).Info("run over")
	s.IO.Display(endMenu)
	for {
		ev := s.IO.ReadKey()
		if ev.Key == types.KeyClosed {
			s.mode = ModeQuit
			return
		}
		switch selection(ev) {
		case "r", "restart":
			s.Restart()
			return
		case "q", "quit":
			s.mode = ModeQuit
			return
		}
	}
}

// Dispatch runs one command. A command that completes advances the turn
// counter; a refused one only prints its narration.
func (s *Session) Dispatch(cmd types.Command) {
	if cmd.Verb == "" {
		return
	}
	if cmd.Verb == "again" {
		if s.last.Verb == "" {
			s.IO.Display("Nothing to repeat.")
			return
		}
		cmd = s.last
	} else {
		s.last = cmd
	}

	s.log.WithFields(logrus.Fields{
		"turn":   s.World.TurnCount,
		"verb":   cmd.Verb,
		"object": cmd.Object,
	}).Debug("command")

	err := s.run(cmd)
	if err != nil {
		s.IO.Display(err.Error())
	} else if !freeVerbs[cmd.Verb] {
		s.World.TurnCount++
	}
	s.IO.DrawHUD(state.Snapshot(s.World))
}

func (s *Session) run(cmd types.Command) error {
	switch cmd.Verb {
	case "go":
		return s.doGo(cmd.Object)
	case "scan":
		s.IO.Display(Scan(s.World))
		return nil
	case "look":
		return s.doLook(cmd.Object)
	case "take":
		return s.doTake(cmd.Object)
	case "use":
		return s.doUse(cmd.Object)
	case "equip":
		return s.withStored(cmd.Object, "Equip which item?", equippable, func(name string) (string, error) {
			return inventory.Equip(s.World, name)
		}, "equip")
	case "unequip":
		return s.withStored(cmd.Object, "Unequip which item?", s.equipped, func(name string) (string, error) {
			return inventory.Unequip(s.World, name)
		}, "unequip")
	case "drop":
		return s.withStored(cmd.Object, "Drop which item?", anyItem, func(name string) (string, error) {
			return inventory.RemoveAndDrop(s.World, name)
		}, "drop")
	case "discard":
		return s.withStored(cmd.Object, "Discard which item?", anyItem, func(name string) (string, error) {
			return inventory.RemoveAndDiscard(s.World, name)
		}, "discard")
	case "heal":
		out, err := inventory.Heal(s.World)
		if err != nil {
			return err
		}
		s.log.WithField("hp", s.World.Player.HP()).Info("healed")
		s.IO.Display(out)
		return nil
	case "inventory":
		return s.doStorage(cmd.Object)
	case "stats":
		s.IO.Display(inventory.Stats(s.World))
		return nil
	case "fight":
		return s.doFight(cmd.Object)
	case "solve":
		if cmd.Object != "" && s.World.CurrentRoom().Puzzle != nil {
			s.answer(cmd.Object)
			return nil
		}
		return s.SolvePuzzle()
	case "retreat":
		return state.Errorf(state.ErrInvalidAction, "There is nothing to run from.")
	case "help":
		s.IO.Display(helpText())
		return nil
	case "pause":
		s.mode = ModePaused
		return nil
	case "quit":
		s.mode = ModeQuit
		return nil
	default:
		return state.Errorf(state.ErrInvalidAction, "Unknown command %q. Press / for help.", cmd.Verb)
	}
}

func (s *Session) doGo(object string) error {
	if object == "" {
		room := s.World.CurrentRoom()
		dirs := room.Directions()
		if len(dirs) == 0 {
			return state.Errorf(state.ErrNotFound, "There are no exits.")
		}
		opts := make([]string, len(dirs))
		for i, d := range dirs {
			opts[i] = fmt.Sprintf("%s: %s", d, s.roomName(room.Exits[d]))
		}
		i, ok := Choose(s.IO, "Go where?", opts)
		if !ok {
			return state.Errorf(state.ErrInvalidAction, "You stay where you are.")
		}
		object = string(dirs[i])
	}
	_, err := s.Move(types.Direction(strings.ToLower(object)))
	return err
}

func (s *Session) doLook(object string) error {
	if object == "" {
		s.IO.DrawRoom(s.roomView())
		s.IO.Display(s.roomView())
		return nil
	}
	if it, err := resolve.StoredItem(s.World, object); err == nil {
		s.IO.Display(inventory.DescribeItem(it))
		return nil
	}
	if m, err := resolve.Monster(s.World, object); err == nil {
		desc := m.Description
		if desc == "" {
			desc = "A hostile process."
		}
		s.IO.Display(fmt.Sprintf("%s (HP %d/%d, attack %d)\n%s", m.Name, m.HP(), m.MaxHP(), m.Attack, desc))
		return nil
	}
	it, err := resolve.RoomItem(s.World, object)
	if err != nil {
		return err
	}
	s.IO.Display(inventory.DescribeItem(it))
	return nil
}

func (s *Session) doTake(object string) error {
	room := s.World.CurrentRoom()
	var it state.Item
	if object == "" {
		items := room.Items()
		if len(items) == 0 {
			return state.Errorf(state.ErrNotFound, "There is nothing here to take.")
		}
		i, ok := Choose(s.IO, "Take which item?", itemLabels(items))
		if !ok {
			return state.Errorf(state.ErrInvalidAction, "You take nothing.")
		}
		it = items[i]
	} else {
		var err error
		if it, err = resolve.RoomItem(s.World, object); err != nil {
			return err
		}
	}

	res, err := inventory.PickUp(s.World, it)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"item": it.ID(), "weight": s.World.Player.Weight()}).Info("picked up")
	s.IO.Display(res.Output)
	return nil
}

func (s *Session) doUse(object string) error {
	name, err := s.pickStored(object, "Use which item?", usable)
	if err != nil {
		return err
	}
	out, evs, err := inventory.Use(s.World, name)
	if err != nil {
		return err
	}
	s.log.WithField("item", name).Info("used")
	if usedLore(evs, s.World) {
		s.IO.DisplayTyped(out, true)
	} else {
		s.IO.Display(out)
	}
	s.fire(evs)
	s.IO.DrawRoom(s.roomView())
	return nil
}

// usedLore reports whether the used item was a lore log, which is shown
// with the typewriter effect.
func usedLore(evs []types.Event, w *state.World) bool {
	for _, ev := range evs {
		if ev.Type != "item_used" {
			continue
		}
		if d, ok := w.Defs.Items[ev.Subject]; ok {
			return d.Kind == types.KindLore
		}
	}
	return false
}

// doStorage lists storage. Opened from a key it also lets the player act
// on one item.
func (s *Session) doStorage(object string) error {
	s.IO.Display(inventory.Describe(s.World))
	if object != "" || !s.keyMode {
		return nil
	}
	items := s.World.Player.Items()
	if len(items) == 0 {
		return nil
	}
	i, ok := Choose(s.IO, "Select an item:", itemLabels(items))
	if !ok {
		return nil
	}
	name := items[i].Name()
	actions := []string{"Use", "Equip", "Unequip", "Drop", "Discard", "Inspect"}
	a, ok := Choose(s.IO, name, actions)
	if !ok {
		return nil
	}
	switch a {
	case 0:
		return s.doUse(name)
	case 1:
		return s.run(types.Command{Verb: "equip", Object: name})
	case 2:
		return s.run(types.Command{Verb: "unequip", Object: name})
	case 3:
		return s.run(types.Command{Verb: "drop", Object: name})
	case 4:
		return s.run(types.Command{Verb: "discard", Object: name})
	default:
		s.IO.Display(inventory.DescribeItem(items[i]))
		return nil
	}
}

func (s *Session) doFight(object string) error {
	var m *state.Monster
	if object != "" {
		var err error
		if m, err = resolve.Monster(s.World, object); err != nil {
			return err
		}
	} else {
		var alive []*state.Monster
		for _, x := range s.World.CurrentRoom().Monsters() {
			if x.IsAlive() {
				alive = append(alive, x)
			}
		}
		switch len(alive) {
		case 0:
			return state.Errorf(state.ErrNotFound, "There is nothing to fight here.")
		case 1:
			m = alive[0]
		default:
			labels := make([]string, len(alive))
			for i, x := range alive {
				labels[i] = fmt.Sprintf("%s (HP %d/%d)", x.Name, x.HP(), x.MaxHP())
			}
			i, ok := Choose(s.IO, "Fight which?", labels)
			if !ok {
				return state.Errorf(state.ErrInvalidAction, "You hold back.")
			}
			m = alive[i]
		}
	}
	s.Fight(m)
	return nil
}

// withStored resolves a stored item (by name or menu) and applies op to it.
func (s *Session) withStored(object, title string, filter func(state.Item) bool, op func(string) (string, error), what string) error {
	name, err := s.pickStored(object, title, filter)
	if err != nil {
		return err
	}
	out, err := op(name)
	if err != nil {
		return err
	}
	p := s.World.Player
	s.log.WithFields(logrus.Fields{
		"item":   name,
		"attack": p.Attack,
		"weight": p.Weight(),
	}).Info(what)
	s.IO.Display(out)
	return nil
}

// pickStored returns the name of a stored item: resolved from object when
// given, otherwise chosen from a menu of items passing filter.
func (s *Session) pickStored(object, title string, filter func(state.Item) bool) (string, error) {
	if object != "" {
		it, err := resolve.StoredItem(s.World, object)
		if err != nil {
			return "", err
		}
		return it.Name(), nil
	}
	var items []state.Item
	for _, it := range s.World.Player.Items() {
		if filter(it) {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return "", state.Errorf(state.ErrNotFound, "You have nothing suitable in storage.")
	}
	i, ok := Choose(s.IO, title, itemLabels(items))
	if !ok {
		return "", state.Errorf(state.ErrInvalidAction, "Never mind.")
	}
	return items[i].Name(), nil
}

func (s *Session) equipped(it state.Item) bool {
	return s.World.Player.IsEquipped(it.Name())
}

func equippable(it state.Item) bool {
	switch it.(type) {
	case *state.Weapon, *state.Consumable:
		return true
	}
	return false
}

func usable(it state.Item) bool {
	_, weapon := it.(*state.Weapon)
	return !weapon
}

func anyItem(state.Item) bool { return true }

func itemLabels(items []state.Item) []string {
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = fmt.Sprintf("%s (%d bytes)", it.Name(), it.Weight())
	}
	return labels
}

// fire dispatches events to world handlers and applies their effects.
// Events raised by those effects are not dispatched again.
func (s *Session) fire(evs []types.Event) {
	if len(evs) == 0 {
		return
	}
	effs := events.Dispatch(evs, s.World)
	if len(effs) == 0 {
		return
	}
	_, output := effects.Apply(s.World, effs, effects.Context{})
	for _, line := range output {
		s.IO.Display(line)
	}
	s.IO.DrawRoom(s.roomView())
}

// roomView renders the current room for the room pane.
func (s *Session) roomView() string {
	r := s.World.CurrentRoom()
	if r == nil {
		return "You are somewhere unknown."
	}
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteString("\n")
	b.WriteString(r.Description)
	dirs := r.Directions()
	if len(dirs) > 0 {
		locked := r.LockedExits()
		parts := make([]string, len(dirs))
		for i, d := range dirs {
			parts[i] = string(d)
			if _, ok := locked[d]; ok {
				parts[i] += " (locked)"
			}
		}
		b.WriteString("\nExits: ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

// Scan reports what the current room hides: items, living monsters and
// an unsolved puzzle.
func Scan(w *state.World) string {
	r := w.CurrentRoom()
	var sections []string

	if items := r.Items(); len(items) > 0 {
		lines := []string{"[ Items Detected ]"}
		for _, it := range items {
			lines = append(lines, fmt.Sprintf("  - %s (%d bytes)", it.Name(), it.Weight()))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	var hostiles []string
	for _, m := range r.Monsters() {
		if !m.IsAlive() {
			continue
		}
		line := fmt.Sprintf("  - %s (HP %d/%d)", m.Name, m.HP(), m.MaxHP())
		if m.Blocks != "" {
			line += fmt.Sprintf(", guarding %s", m.Blocks)
		}
		hostiles = append(hostiles, line)
	}
	if len(hostiles) > 0 {
		sections = append(sections, "[ Hostile Entities ]\n"+strings.Join(hostiles, "\n"))
	}

	if pz := r.Puzzle; pz != nil && !pz.Solved() {
		sections = append(sections, fmt.Sprintf("[ Corrupted Engram Detected ]\n  - %s", pz.Name))
	}

	if len(sections) == 0 {
		return "The room reveals nothing unusual."
	}
	return strings.Join(sections, "\n")
}

func helpText() string {
	var b strings.Builder
	b.WriteString("[ Keys ]\n")
	for _, kv := range parser.KeyHelp() {
		fmt.Fprintf(&b, "  %-7s %s\n", kv[0], kv[1])
	}
	b.WriteString("[ Commands ]\n")
	b.WriteString("  go <dir>, n/s/e/w, scan, look [thing], take [item], use [item],\n")
	b.WriteString("  equip [item], unequip [item], drop [item], discard [item], heal,\n")
	b.WriteString("  storage, stats, fight [monster], solve [answer], again, pause, quit")
	return b.String()
}
