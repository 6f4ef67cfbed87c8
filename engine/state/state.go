// Package state holds the entity model and the world arena built from
// immutable definitions. Definitions never change after load; a World is
// the mutable runtime copy and is rebuilt from scratch on restart.
package state

import (
	"sort"

	"github.com/nathoo/kernelcrawl/types"
)

// Player defaults used when the world does not define a player template.
const (
	DefaultPlayerName = "Lapel"
	DefaultPlayerHP   = 500
	DefaultMaxWeight  = 64
)

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game     types.GameDef
	Rooms    map[string]types.RoomDef
	Items    map[string]types.ItemDef
	Monsters map[string]types.MonsterDef
	Puzzles  map[string]types.PuzzleDef
	Handlers []types.EventHandler

	// Warnings are non-fatal problems found while loading.
	Warnings []string
}

// World is the room arena plus the player and narrative flags.
type World struct {
	Defs      *Defs
	Rooms     map[string]*Room
	Player    *Player
	Flags     map[string]bool
	TurnCount int
	Fired     map[int]bool // indexes of once-only handlers already run
}

// NewWorld builds a fresh arena from defs. Items, monsters and puzzles are
// placed in sorted ID order so the same defs always produce the same world.
func NewWorld(defs *Defs) *World {
	w := &World{
		Defs:  defs,
		Rooms: make(map[string]*Room, len(defs.Rooms)),
		Flags: map[string]bool{},
		Fired: map[int]bool{},
	}

	for _, id := range sortedKeys(defs.Rooms) {
		rd := defs.Rooms[id]
		r := NewRoom(rd.ID, rd.Name, rd.Description)
		for dir, target := range rd.Exits {
			r.SetExit(dir, target)
		}
		for dir, lockID := range rd.Locked {
			// Loader validation guarantees the exit exists.
			_ = r.Lock(dir, lockID)
		}
		w.Rooms[id] = r
	}

	for _, id := range sortedKeys(defs.Items) {
		d := defs.Items[id]
		if r, ok := w.Rooms[d.Location]; ok {
			r.AddItem(NewItem(d))
		}
	}

	for _, id := range sortedKeys(defs.Monsters) {
		d := defs.Monsters[id]
		r, ok := w.Rooms[d.Location]
		if !ok {
			continue
		}
		maxHP := d.MaxHP
		if maxHP == 0 {
			maxHP = d.HP
		}
		m := NewMonster(d.ID, d.Name, d.HP, maxHP, d.Attack)
		m.Description = d.Description
		m.Blocks = d.Blocks
		m.Reward = w.reward(d.Reward)
		r.AddMonster(m)
	}

	for _, id := range sortedKeys(defs.Puzzles) {
		d := defs.Puzzles[id]
		r, ok := w.Rooms[d.Location]
		if !ok {
			continue
		}
		p := NewPuzzle(d.ID, d.Name, d.Prompt, d.Solution)
		p.Reward = w.reward(d.Reward)
		r.Puzzle = p
	}

	pd := defs.Game.Player
	name := pd.Name
	if name == "" {
		name = DefaultPlayerName
	}
	maxHP := pd.MaxHP
	if maxHP == 0 {
		maxHP = pd.HP
	}
	if maxHP == 0 {
		maxHP = DefaultPlayerHP
	}
	hp := pd.HP
	if hp == 0 {
		hp = maxHP
	}
	maxWeight := pd.MaxWeight
	if maxWeight == 0 {
		maxWeight = DefaultMaxWeight
	}
	w.Player = NewPlayer(name, hp, maxHP, maxWeight)
	w.Player.Location = defs.Game.Start
	return w
}

func (w *World) reward(itemID string) Item {
	if itemID == "" {
		return nil
	}
	d, ok := w.Defs.Items[itemID]
	if !ok {
		return nil
	}
	return NewItem(d)
}

// Room returns the room with the given ID.
func (w *World) Room(id string) (*Room, bool) {
	r, ok := w.Rooms[id]
	return r, ok
}

// CurrentRoom returns the player's room. It is nil only if the arena is
// inconsistent, which loader validation rules out.
func (w *World) CurrentRoom() *Room {
	return w.Rooms[w.Player.Location]
}

// MoveTo sets the player's location. It reports false for unknown rooms.
func (w *World) MoveTo(id string) bool {
	if _, ok := w.Rooms[id]; !ok {
		return false
	}
	w.Player.Location = id
	return true
}

// GetFlag returns the value of a flag. Unset flags return false.
func (w *World) GetFlag(name string) bool {
	return w.Flags[name]
}

// SetFlag sets a narrative flag.
func (w *World) SetFlag(name string, v bool) {
	w.Flags[name] = v
}

// Snapshot captures the HUD view of the player.
func Snapshot(w *World) types.HUD {
	p := w.Player
	hud := types.HUD{
		HP:        p.HP(),
		MaxHP:     p.MaxHP(),
		Attack:    p.Attack,
		Weight:    p.Weight(),
		MaxWeight: p.MaxWeight,
		Scannable: p.Scannable,
		Turn:      w.TurnCount,
	}
	if r := w.CurrentRoom(); r != nil {
		hud.Room = r.Name
	}
	if wp := p.Weapon(); wp != nil {
		hud.Weapon = wp.Name()
	}
	if m := p.Med(); m != nil {
		hud.Med = m.Name()
		hud.MedUses = m.Uses
		hud.MedMaxUses = m.MaxUses
	}
	return hud
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
