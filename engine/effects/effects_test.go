package effects

import (
	"testing"

	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

func testSetup() *state.World {
	defs := &state.Defs{
		Game: types.GameDef{Start: "boot"},
		Rooms: map[string]types.RoomDef{
			"boot": {
				ID:          "boot",
				Name:        "Boot Sector",
				Description: "A cold start.",
				Exits:       map[types.Direction]string{types.South: "pit"},
			},
			"pit": {
				ID:     "pit",
				Name:   "Glitch Pit",
				Exits:  map[types.Direction]string{types.North: "boot", types.East: "well"},
				Locked: map[types.Direction]string{types.East: "4rch1ve"},
			},
			"well":    {ID: "well", Exits: map[types.Direction]string{types.West: "pit"}},
			"phantom": {ID: "phantom"},
		},
		Items: map[string]types.ItemDef{
			"shard": {ID: "shard", Kind: types.KindMisc, Name: "Shard", Weight: 1},
		},
	}
	return state.NewWorld(defs)
}

func TestApply_Say(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "say", Params: map[string]any{"text": "Hello, world!"}},
	}

	_, output := Apply(w, effects, Context{})
	if len(output) != 1 || output[0] != "Hello, world!" {
		t.Errorf("expected [Hello, world!], got %v", output)
	}
}

func TestApply_Say_TemplateInterpolation(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "say", Params: map[string]any{"text": "{player.name} raises the {item} in {room.name}."}},
	}

	_, output := Apply(w, effects, Context{Item: "Shard"})
	expected := "Lapel raises the Shard in Boot Sector."
	if len(output) != 1 || output[0] != expected {
		t.Errorf("expected %q, got %v", expected, output)
	}
}

func TestApply_UnlockExit(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "unlock_exit", Params: map[string]any{"room": "pit", "direction": "east"}},
	}

	events, _ := Apply(w, effects, Context{})

	pit, _ := w.Room("pit")
	if _, locked := pit.LockID(types.East); locked {
		t.Error("expected east exit unlocked")
	}
	if len(events) != 1 || events[0].Type != "exit_unlocked" || events[0].Subject != "pit" {
		t.Errorf("expected exit_unlocked event for pit, got %v", events)
	}
}

func TestApply_UnlockExit_DefaultsToCurrentRoom(t *testing.T) {
	w := testSetup()
	w.MoveTo("pit")
	effects := []types.Effect{
		{Type: "unlock_exit", Params: map[string]any{"direction": "east"}},
	}

	Apply(w, effects, Context{})

	if _, locked := w.CurrentRoom().LockID(types.East); locked {
		t.Error("expected current room east exit unlocked")
	}
}

func TestApply_UnlockExit_NotLockedEmitsNothing(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "unlock_exit", Params: map[string]any{"room": "boot", "direction": "south"}},
	}

	events, _ := Apply(w, effects, Context{})
	if len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
}

func TestApply_LockExit(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "lock_exit", Params: map[string]any{"room": "boot", "direction": "south", "lock": "gate"}},
		{Type: "lock_exit", Params: map[string]any{"room": "boot", "direction": "west", "lock": "gate"}},
	}

	Apply(w, effects, Context{})

	boot, _ := w.Room("boot")
	if id, ok := boot.LockID(types.South); !ok || id != "gate" {
		t.Errorf("expected south locked by gate, got %q", id)
	}
	if _, ok := boot.LockID(types.West); ok {
		t.Error("lock on a missing exit must be ignored")
	}
}

func TestApply_OpenExit(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "open_exit", Params: map[string]any{"room": "boot", "direction": "east", "target": "phantom"}},
		{Type: "open_exit", Params: map[string]any{"room": "boot", "direction": "west", "target": "nowhere"}},
	}

	Apply(w, effects, Context{})

	boot, _ := w.Room("boot")
	if target, ok := boot.Exit(types.East); !ok || target != "phantom" {
		t.Errorf("expected east exit to phantom, got %q", target)
	}
	if _, ok := boot.Exit(types.West); ok {
		t.Error("exit to unknown room must be ignored")
	}
}

func TestApply_CloseExit(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "close_exit", Params: map[string]any{"room": "pit", "direction": "east"}},
	}

	Apply(w, effects, Context{})

	pit, _ := w.Room("pit")
	if _, ok := pit.Exit(types.East); ok {
		t.Error("expected east exit removed")
	}
	if len(pit.LockedExits()) != 0 {
		t.Error("expected lock removed with its exit")
	}
}

func TestApply_SetKernelUnlock(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "set_kernel_unlock", Params: map[string]any{}},
	}

	Apply(w, effects, Context{})

	if !w.CurrentRoom().KernelUnlock {
		t.Error("expected kernel unlock set on current room")
	}
}

func TestApply_SetDescription(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "set_description", Params: map[string]any{"text": "A doorway flickers to the east."}},
	}

	Apply(w, effects, Context{})

	if got := w.CurrentRoom().Description; got != "A doorway flickers to the east." {
		t.Errorf("unexpected description %q", got)
	}
}

func TestApply_SetFlag(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "set_flag", Params: map[string]any{"flag": "door_open", "value": true}},
		{Type: "set_flag", Params: map[string]any{"flag": "alarm"}},
	}

	events, _ := Apply(w, effects, Context{})

	if !w.GetFlag("door_open") || !w.GetFlag("alarm") {
		t.Errorf("expected both flags set, got %v", w.Flags)
	}
	if len(events) != 2 || events[0].Type != "flag_changed" {
		t.Errorf("expected 2 flag_changed events, got %v", events)
	}
}

func TestApply_SpawnItem(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "spawn_item", Params: map[string]any{"item": "shard", "room": "well"}},
		{Type: "spawn_item", Params: map[string]any{"item": "ghost"}},
	}

	Apply(w, effects, Context{})

	well, _ := w.Room("well")
	if _, ok := well.Item("Shard"); !ok {
		t.Error("expected Shard spawned in well")
	}
	if len(w.CurrentRoom().Items()) != 0 {
		t.Error("unknown item must not spawn")
	}
}

func TestApply_Stop(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "say", Params: map[string]any{"text": "before"}},
		{Type: "stop"},
		{Type: "say", Params: map[string]any{"text": "after"}},
	}

	_, output := Apply(w, effects, Context{})
	if len(output) != 1 || output[0] != "before" {
		t.Errorf("expected only [before], got %v", output)
	}
}

func TestApply_UnknownEffectIgnored(t *testing.T) {
	w := testSetup()
	effects := []types.Effect{
		{Type: "teleport", Params: map[string]any{"room": "well"}},
	}

	events, output := Apply(w, effects, Context{})
	if len(events) != 0 || len(output) != 0 || w.Player.Location != "boot" {
		t.Error("unknown effect must be a no-op")
	}
}
