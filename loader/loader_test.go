package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

func TestLoad_MinimalWorld(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal World" {
		t.Errorf("Title = %q, want %q", defs.Game.Title, "Minimal World")
	}
	if defs.Game.Start != "hall" {
		t.Errorf("Start = %q, want %q", defs.Game.Start, "hall")
	}
	if defs.Rooms["hall"].Description != "A bare hall." {
		t.Errorf("hall description = %q", defs.Rooms["hall"].Description)
	}
	if len(defs.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", defs.Warnings)
	}
}

func TestLoad_FullWorld(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	g := defs.Game
	if g.Author != "Tester" || g.Version != "0.1" || g.Exit != "vault" {
		t.Errorf("game metadata = %+v", g)
	}
	if g.Intro != "Welcome, {player.name}." {
		t.Errorf("intro should be trimmed, got %q", g.Intro)
	}
	if g.Player.Name != "Tess" || g.Player.HP != 200 || g.Player.MaxWeight != 40 {
		t.Errorf("player = %+v", g.Player)
	}

	if len(defs.Rooms) != 4 {
		t.Errorf("expected 4 rooms, got %d", len(defs.Rooms))
	}
	gallery := defs.Rooms["gallery"]
	if gallery.Exits[types.North] != "vault" {
		t.Errorf("gallery north = %q", gallery.Exits[types.North])
	}
	if gallery.Locked[types.North] != "v4ult" {
		t.Errorf("gallery lock = %q", gallery.Locked[types.North])
	}

	if len(defs.Items) != 7 {
		t.Errorf("expected 7 items, got %d", len(defs.Items))
	}
	if defs.Items["elixir"].Heal != state.FullHeal {
		t.Errorf("elixir heal = %d, want full", defs.Items["elixir"].Heal)
	}
	if defs.Items["elixir"].MaxUses != 1 {
		t.Errorf("max_uses should default to uses, got %d", defs.Items["elixir"].MaxUses)
	}
	if defs.Items["satchel"].Upgrade != types.UpgradeStorage {
		t.Errorf("satchel upgrade = %q", defs.Items["satchel"].Upgrade)
	}
	if defs.Items["diary"].Content != "Day one. The vault sealed itself." {
		t.Errorf("diary content = %q", defs.Items["diary"].Content)
	}

	ghoul := defs.Monsters["ghoul"]
	if ghoul.HP != 80 || ghoul.Attack != 15 || ghoul.Reward != "vault_key" {
		t.Errorf("ghoul = %+v", ghoul)
	}
	riddle := defs.Puzzles["riddle"]
	if riddle.Solution != "piano" || riddle.Reward != "satchel" {
		t.Errorf("riddle = %+v", riddle)
	}

	if len(defs.Handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(defs.Handlers))
	}
	h := defs.Handlers[0]
	if h.EventType != "monster_defeated" || h.Subject != "ghoul" || !h.Once {
		t.Errorf("handler = %+v", h)
	}
	if len(h.Effects) != 2 || h.Effects[1].Type != "spawn_item" {
		t.Errorf("handler effects = %+v", h.Effects)
	}
	if len(defs.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", defs.Warnings)
	}
}

func TestLoad_FullWorldBuilds(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	w := state.NewWorld(defs)

	if w.Player.Name != "Tess" || w.Player.MaxHP() != 200 || w.Player.MaxWeight != 40 {
		t.Errorf("player = %s %d/%d", w.Player.Name, w.Player.HP(), w.Player.MaxWeight)
	}
	entrance := w.CurrentRoom()
	if entrance.ID != "entrance" {
		t.Fatalf("start room = %s", entrance.ID)
	}
	if _, ok := entrance.Item("Short Sword"); !ok {
		t.Error("sword should lie in the entrance")
	}
	crypt, _ := w.Room("crypt")
	ghoul, ok := crypt.Monster("ghoul")
	if !ok {
		t.Fatal("ghoul missing")
	}
	if ghoul.Reward == nil || ghoul.Reward.Name() != "Vault Key" {
		t.Errorf("ghoul reward = %v", ghoul.Reward)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs")
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	assertContains(t, ve.Errors, "undefined room")
	assertContains(t, ve.Errors, "reward \"cheese\"")
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua")
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
	if !strings.Contains(err.Error(), "executing game.lua") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_NoGameDef_Fails(t *testing.T) {
	_, err := Load("testdata/no_game")
	if err == nil {
		t.Fatal("expected error for missing Game{} definition")
	}
	if !strings.Contains(err.Error(), "no Game{} definition") {
		t.Errorf("error = %q, expected 'no Game{} definition'", err.Error())
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	if _, err := Load("testdata/sandbox"); err == nil {
		t.Fatal("expected sandbox to block os.execute")
	}

	L, _ := newTestVM()
	defer L.Close()
	for _, src := range []string{
		`io.open("/etc/passwd")`,
		`dofile("x.lua")`,
		`math.randomseed(1)`,
		`require("os")`,
	} {
		if err := L.DoString(src); err == nil {
			t.Errorf("expected %q to fail in the sandbox", src)
		}
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load("testdata/does_not_exist"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Fatalf("expected no .lua files error, got %v", err)
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"rooms.lua", "items.lua", "game.lua", "creatures.lua"})
	want := []string{"game.lua", "creatures.lua", "items.lua", "rooms.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("no message contains %q in %v", substr, msgs)
}

func TestLoad_BundledWorld(t *testing.T) {
	defs, err := Load("../games/kernel")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", defs.Warnings)
	}
	if len(defs.Rooms) != 11 {
		t.Errorf("expected 11 rooms, got %d", len(defs.Rooms))
	}
	if defs.Game.Start != "boot_sector" || defs.Game.Exit != "system_kernel" {
		t.Errorf("start/exit = %q/%q", defs.Game.Start, defs.Game.Exit)
	}
	if defs.Monsters["gatekeeper"].Reward != "kernel_key" {
		t.Errorf("gatekeeper reward = %q", defs.Monsters["gatekeeper"].Reward)
	}

	w := state.NewWorld(defs)
	if w.Player.Name != "Lapel" || w.Player.MaxHP() != 500 {
		t.Errorf("player = %s %d", w.Player.Name, w.Player.MaxHP())
	}
}
