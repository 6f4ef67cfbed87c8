package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/kernelcrawl/engine/parser"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

func dispatch(s *Session, line string) {
	s.Dispatch(parser.Parse(line))
}

func TestDispatch_TurnCounting(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		turns int
	}{
		{"move", []string{"go east"}, 1},
		{"refused move", []string{"go north"}, 0},
		{"free verbs", []string{"help", "pause"}, 0},
		{"unknown verb", []string{"dance"}, 0},
		{"scan and look", []string{"scan", "look"}, 2},
		{"take missing", []string{"take lantern"}, 0},
		{"take then drop", []string{"take blade", "drop blade"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			for _, l := range tt.lines {
				dispatch(s, l)
			}
			if s.World.TurnCount != tt.turns {
				t.Errorf("turns = %d, want %d", s.World.TurnCount, tt.turns)
			}
		})
	}
}

func TestDispatch_RefusedUseIsFree(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
		turns int
	}{
		{"unreadable log", []string{"go east", "take old log", "use old log"}, state.ScanRequired, 2},
		{"key with nothing to open", []string{"take archive shard", "use archive shard"}, "nothing happens here", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := testDefs()
			defs.Handlers = append(defs.Handlers, types.EventHandler{
				EventType: "item_used",
				Effects:   []types.Effect{{Type: "say", Params: map[string]any{"text": "Something stirs."}}},
			})
			d := &fakeDriver{}
			s := New(defs, d, NewRNG(1), nil)
			for _, l := range tt.lines {
				dispatch(s, l)
			}
			if !d.saw(tt.want) {
				t.Errorf("missing %q in %v", tt.want, d.out)
			}
			if d.saw("Something stirs.") {
				t.Error("a refused use must not fire item_used handlers")
			}
			if s.World.TurnCount != tt.turns {
				t.Errorf("turns = %d, want %d", s.World.TurnCount, tt.turns)
			}
		})
	}
}

func TestDispatch_ErrorsAreNarrated(t *testing.T) {
	s, d := newTestSession(t)

	dispatch(s, "dance")
	dispatch(s, "go north")
	dispatch(s, "take lantern")

	for _, want := range []string{
		`Unknown command "dance". Press / for help.`,
		"You can't go north from here.",
		`You don't see "lantern"`,
	} {
		if !d.saw(want) {
			t.Errorf("missing %q in %v", want, d.out)
		}
	}
	if len(d.huds) != 3 {
		t.Errorf("HUD should be redrawn after every command, got %d", len(d.huds))
	}
}

func TestDispatch_Again(t *testing.T) {
	s, d := newTestSession(t)

	dispatch(s, "again")
	if !d.saw("Nothing to repeat.") {
		t.Error("again with no history should say so")
	}

	dispatch(s, "e")
	dispatch(s, "w")
	dispatch(s, "again")
	if s.World.Player.Location != "boot" {
		t.Fatalf("location = %s", s.World.Player.Location)
	}
	if s.World.TurnCount != 2 {
		t.Errorf("again after a refused move should not count, turns = %d", s.World.TurnCount)
	}

	dispatch(s, "scan")
	dispatch(s, "again")
	if s.World.TurnCount != 4 {
		t.Errorf("repeated scan should count, turns = %d", s.World.TurnCount)
	}
}

func TestDispatch_TakeEquipHeal(t *testing.T) {
	s, d := newTestSession(t)

	dispatch(s, "take blade")
	dispatch(s, "equip blade")
	if s.World.Player.Attack != 120 {
		t.Errorf("attack = %d", s.World.Player.Attack)
	}
	dispatch(s, "heal")
	if !d.saw("You don't have any meds equipped!") {
		t.Error("heal without med should be refused")
	}
	dispatch(s, "unequip blade")
	if s.World.Player.Attack != state.BaseAttack {
		t.Errorf("attack = %d", s.World.Player.Attack)
	}
}

func TestDispatch_ScanAndLook(t *testing.T) {
	s, d := newTestSession(t)

	dispatch(s, "scan")
	if !d.saw("[ Items Detected ]") || !d.saw("Archive Shard (1 bytes)") {
		t.Errorf("scan output: %v", d.out)
	}

	d.reset()
	dispatch(s, "look")
	if !d.saw("Exits: east, south") {
		t.Errorf("look output: %v", d.out)
	}

	d.reset()
	dispatch(s, "look at blade")
	if len(d.out) == 0 || !strings.Contains(d.out[0], "Blade") {
		t.Errorf("look at item: %v", d.out)
	}
}

func TestRoomView_MarksLockedExits(t *testing.T) {
	s, _ := newTestSession(t)
	s.World.MoveTo("pit")

	view := s.roomView()
	if !strings.Contains(view, "east (locked)") {
		t.Errorf("expected locked east exit in %q", view)
	}
	if strings.Contains(view, "north (locked)") {
		t.Errorf("north is open: %q", view)
	}
}

func TestScan(t *testing.T) {
	s, _ := newTestSession(t)

	s.World.MoveTo("pit")
	if got := Scan(s.World); !strings.Contains(got, "Sentinel (HP 100/100), guarding west") {
		t.Errorf("pit scan: %q", got)
	}
	s.World.MoveTo("cache")
	if got := Scan(s.World); !strings.Contains(got, "[ Corrupted Engram Detected ]\n  - Echo Engram") {
		t.Errorf("cache scan: %q", got)
	}
	s.World.MoveTo("pixels")
	if got := Scan(s.World); got != "The room reveals nothing unusual." {
		t.Errorf("empty scan: %q", got)
	}
}

func TestDispatch_SolveInline(t *testing.T) {
	s, d := newTestSession(t)
	dispatch(s, "e")

	dispatch(s, "solve wrong")
	if !d.saw("Incorrect. Try again.") {
		t.Error("wrong inline answer")
	}
	dispatch(s, "solve echo")
	if !s.World.Player.Has("Scan Lens") {
		t.Error("inline answer should solve")
	}
	dispatch(s, "solve echo")
	if !d.saw("There is no puzzle here.") {
		t.Error("solved puzzle should be gone")
	}
}

func TestDispatch_TakeMenu(t *testing.T) {
	s, d := newTestSession(t)
	d.press("9", "2")

	dispatch(s, "take")

	if !d.saw("Invalid selection.") {
		t.Error("out of range pick should re-prompt")
	}
	if !s.World.Player.Has("Archive Shard") {
		t.Errorf("second menu item should be taken, storage = %v", s.World.Player.Items())
	}
}

func TestDispatch_MenuBackOut(t *testing.T) {
	s, d := newTestSession(t)
	d.press("esc")

	dispatch(s, "take")

	if !d.saw("You take nothing.") {
		t.Error("escape should back out")
	}
	if s.World.TurnCount != 0 {
		t.Error("backing out is not a turn")
	}
}

func TestRun_QuitKey(t *testing.T) {
	s, d := newTestSession(t)
	d.press("q")

	s.Run()

	if s.Mode() != ModeQuit {
		t.Errorf("mode = %s", s.Mode())
	}
	if !d.saw("> INITIALISING SESSION...") {
		t.Error("intro should be shown")
	}
	if d.clears != 1 {
		t.Errorf("log cleared %d times", d.clears)
	}
}

func TestRun_InputEndsQuits(t *testing.T) {
	s, _ := newTestSession(t)
	s.Run()
	if s.Mode() != ModeQuit {
		t.Errorf("mode = %s", s.Mode())
	}
}

// Keys and typed lines drive the same commands.
func TestRun_KeyLineParity(t *testing.T) {
	byKey, dk := newTestSession(t)
	dk.press(types.KeyRight, types.KeyLeft, types.KeyDown)
	byKey.Run()

	byLine, dl := newTestSession(t)
	dl.typeLine("go east").typeLine("w").typeLine("south")
	byLine.Run()

	if byKey.World.Player.Location != "pit" || byLine.World.Player.Location != "pit" {
		t.Fatalf("locations: key=%s line=%s", byKey.World.Player.Location, byLine.World.Player.Location)
	}
	if byKey.World.TurnCount != byLine.World.TurnCount {
		t.Errorf("turns: key=%d line=%d", byKey.World.TurnCount, byLine.World.TurnCount)
	}
}

func TestRun_PauseResume(t *testing.T) {
	s, d := newTestSession(t)
	d.press(types.KeyRight, types.KeyEscape, "x", types.KeyEscape, "q")

	s.Run()

	if !d.saw("=== SYSTEM PAUSED ===") {
		t.Error("pause menu not shown")
	}
	if !d.saw("Resumed.") {
		t.Error("escape should resume")
	}
	if s.World.Player.Location != "cache" {
		t.Errorf("resume keeps the world, location = %s", s.World.Player.Location)
	}
}

func TestRun_PauseRestart(t *testing.T) {
	s, d := newTestSession(t)
	first := s.ID
	d.press(types.KeyRight, "t", "2", types.KeyEscape, "r")

	s.Run()

	if s.ID == first {
		t.Error("restart should start a new session ID")
	}
	w := s.World
	if w.Player.Location != "boot" || w.TurnCount != 0 || len(w.Player.Items()) != 0 {
		t.Errorf("restart should rebuild the world: loc=%s turns=%d items=%d",
			w.Player.Location, w.TurnCount, len(w.Player.Items()))
	}
	if _, ok := w.Room("cache"); !ok {
		t.Fatal("cache missing")
	}
	cache, _ := w.Room("cache")
	if _, ok := cache.Item("Old Log"); !ok {
		t.Error("taken items should be back in place")
	}
	if d.clears != 2 {
		t.Errorf("log should be cleared on start and restart, got %d", d.clears)
	}
}

func TestRun_GameOverRestart(t *testing.T) {
	s, d := newTestSession(t)
	s.World.Player.SetHP(40)
	d.typeLine("s").typeLine("w").press("1", "r", "q")

	s.Run()

	if !d.saw("=== SYSTEM FAILURE ===") {
		t.Error("game over screen not shown")
	}
	if !d.saw("[R] Restart [Q] Quit") {
		t.Error("end menu not shown")
	}
	if s.World.Player.HP() != 500 {
		t.Errorf("restart restores hp, got %d", s.World.Player.HP())
	}
	if s.Mode() != ModeQuit {
		t.Errorf("mode = %s", s.Mode())
	}
}

func TestRun_Win(t *testing.T) {
	s, d := newTestSession(t)
	d.typeLine("take archive shard").typeLine("s").typeLine("e").typeLine("1").press("q")

	s.Run()

	if !d.saw("You escaped the kernel.") {
		t.Errorf("outro not shown: %v", d.out)
	}
	if s.World.Player.Location != "well" {
		t.Errorf("location = %s", s.World.Player.Location)
	}
	if s.World.TurnCount != 3 {
		t.Errorf("turns = %d", s.World.TurnCount)
	}
}

func TestRun_StorageMenuFromKey(t *testing.T) {
	s, d := newTestSession(t)
	d.typeLine("take blade").press("s", "1", "2", "q")

	s.Run()

	if s.World.Player.Weapon() == nil || s.World.Player.Weapon().Name() != "Blade" {
		t.Error("storage menu should equip the blade")
	}
}

func TestRun_StorageLineListsOnly(t *testing.T) {
	s, d := newTestSession(t)
	d.typeLine("take blade").typeLine("storage").press("q")

	s.Run()

	if !d.saw("[ Storage ]") {
		t.Error("storage listing not shown")
	}
	if s.World.Player.Weapon() != nil {
		t.Error("typed storage command should not open the action menu")
	}
}

func TestMode_String(t *testing.T) {
	tests := map[Mode]string{
		ModePlaying:  "playing",
		ModePaused:   "paused",
		ModeGameOver: "game_over",
		ModeWon:      "won",
		ModeQuit:     "quit",
		Mode(42):     "unknown",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("%d: got %q, want %q", m, got, want)
		}
	}
}

func TestHelpTextListsKeys(t *testing.T) {
	h := helpText()
	for _, kv := range parser.KeyHelp() {
		if !strings.Contains(h, kv[0]) {
			t.Errorf("help missing key %q", kv[0])
		}
	}
}
