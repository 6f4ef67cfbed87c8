package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// fakeDriver replays scripted input and records everything shown.
type fakeDriver struct {
	keys   []types.KeyEvent
	lines  []string
	out    []string
	rooms  []string
	huds   []types.HUD
	clears int
}

func (f *fakeDriver) Display(text string) { f.out = append(f.out, text) }
func (f *fakeDriver) DisplayTyped(text string, _ bool) { f.out = append(f.out, text) }
func (f *fakeDriver) DrawHUD(hud types.HUD) { f.huds = append(f.huds, hud) }
func (f *fakeDriver) DrawRoom(desc string) { f.rooms = append(f.rooms, desc) }
func (f *fakeDriver) ClearLog() { f.clears++ }
func (f *fakeDriver) RedrawAll(desc string, hud types.HUD) {
	f.DrawRoom(desc)
	f.DrawHUD(hud)
}

func (f *fakeDriver) ReadKey() types.KeyEvent {
	if len(f.keys) == 0 {
		return types.KeyEvent{Key: types.KeyClosed}
	}
	ev := f.keys[0]
	f.keys = f.keys[1:]
	return ev
}

func (f *fakeDriver) ReadLine(string) string {
	if len(f.lines) == 0 {
		return ""
	}
	l := f.lines[0]
	f.lines = f.lines[1:]
	return l
}

// press queues keypresses.
func (f *fakeDriver) press(keys ...string) *fakeDriver {
	for _, k := range keys {
		f.keys = append(f.keys, types.KeyEvent{Key: k})
	}
	return f
}

// typeLine queues a submitted line.
func (f *fakeDriver) typeLine(text string) *fakeDriver {
	f.keys = append(f.keys, types.KeyEvent{Text: text})
	return f
}

func (f *fakeDriver) saw(substr string) bool {
	for _, line := range f.out {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func (f *fakeDriver) reset() { f.out = nil }

// testDefs builds a small world:
//
//	cache <-east- boot -south-> pit -east(locked 4rch1ve)-> well (exit)
//	                             |
//	                           west (guarded by sentinel) -> pixels
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:  "Test Kernel",
			Start:  "boot",
			Exit:   "well",
			Intro:  "> INITIALISING SESSION...",
			Outro:  "You escaped the kernel.",
			Player: types.PlayerDef{Name: "Lapel", HP: 500, MaxHP: 500, MaxWeight: 64},
		},
		Rooms: map[string]types.RoomDef{
			"boot": {
				ID:          "boot",
				Name:        "Boot Sector",
				Description: "A cold start.",
				Exits:       map[types.Direction]string{types.East: "cache", types.South: "pit"},
			},
			"cache": {
				ID:          "cache",
				Name:        "Lost Cache",
				Description: "Forgotten bytes.",
				Exits:       map[types.Direction]string{types.West: "boot"},
			},
			"pit": {
				ID:          "pit",
				Name:        "Glitch Pit",
				Description: "Static crackles.",
				Exits: map[types.Direction]string{
					types.North: "boot", types.East: "well", types.West: "pixels",
				},
				Locked: map[types.Direction]string{types.East: "4rch1ve"},
			},
			"pixels": {
				ID:    "pixels",
				Name:  "Dead Pixels",
				Exits: map[types.Direction]string{types.East: "pit"},
			},
			"well": {
				ID:    "well",
				Name:  "Data Well",
				Exits: map[types.Direction]string{types.West: "pit"},
			},
		},
		Items: map[string]types.ItemDef{
			"blade": {ID: "blade", Kind: types.KindWeapon, Name: "Blade", Weight: 8, Damage: 120, Location: "boot"},
			"shard": {
				ID: "shard", Kind: types.KindKey, Name: "Archive Shard", Weight: 1, KeyID: "4rch1ve", Location: "boot",
				Unlocks: []types.KeyUse{{
					Conditions: []types.Condition{{Type: "in_room", Params: map[string]any{"room": "pit"}}},
					Effects:    []types.Effect{{Type: "unlock_exit", Params: map[string]any{"direction": "east"}}},
					Text:       "The shard dissolves into the air. The Data Well gateway unlocks.",
				}},
			},
			"anvil": {ID: "anvil", Kind: types.KindMisc, Name: "Anvil", Weight: 100, Location: "cache"},
			"patch": {ID: "patch", Kind: types.KindConsumable, Name: "Patch", Weight: 2, Heal: 100, Uses: 2},
			"lens":  {ID: "lens", Kind: types.KindUpgrade, Name: "Scan Lens", Weight: 1, Upgrade: types.UpgradeScan},
			"log":   {ID: "log", Kind: types.KindLore, Name: "Old Log", Weight: 1, Content: "The system fell.", Location: "cache"},
		},
		Monsters: map[string]types.MonsterDef{
			"sentinel": {
				ID: "sentinel", Name: "Sentinel", Location: "pit",
				HP: 100, Attack: 40, Reward: "patch", Blocks: types.West,
			},
		},
		Puzzles: map[string]types.PuzzleDef{
			"echo": {ID: "echo", Name: "Echo Engram", Location: "cache", Prompt: "Say it back.", Solution: "echo", Reward: "lens"},
		},
		Handlers: []types.EventHandler{
			{
				EventType: "room_entered",
				Subject:   "well",
				Effects:   []types.Effect{{Type: "say", Params: map[string]any{"text": "The well hums."}}},
			},
			{
				EventType: "monster_defeated",
				Subject:   "sentinel",
				Effects:   []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": "sentinel_down", "value": true}}},
			},
		},
	}
}

func newTestSession(t *testing.T) (*Session, *fakeDriver) {
	t.Helper()
	d := &fakeDriver{}
	return New(testDefs(), d, NewRNG(1), nil), d
}

// give moves a floor item of the current room into storage.
func give(t *testing.T, s *Session, name string) state.Item {
	t.Helper()
	it, ok := s.World.CurrentRoom().RemoveItem(name)
	if !ok {
		t.Fatalf("no %s in %s", name, s.World.Player.Location)
	}
	if !s.World.Player.Store(it) {
		t.Fatalf("could not store %s", name)
	}
	return it
}
