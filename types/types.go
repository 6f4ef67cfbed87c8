// Package types defines the shared data structures for the kernelcrawl engine.
// This package contains only type definitions; behavior lives in engine.
package types

// Direction is a compass direction naming a room exit.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Disposition is the Keep/Remove outcome of using an item.
type Disposition int

const (
	Keep Disposition = iota
	Remove
)

// UpgradeType selects which player capability an Upgrade item improves.
type UpgradeType string

const (
	UpgradeStorage UpgradeType = "storage"
	UpgradeHealth  UpgradeType = "health"
	UpgradeScan    UpgradeType = "scan"
)

// ItemKind names an item variant in world definitions.
type ItemKind string

const (
	KindWeapon     ItemKind = "weapon"
	KindConsumable ItemKind = "consumable"
	KindKey        ItemKind = "key"
	KindLore       ItemKind = "lore"
	KindUpgrade    ItemKind = "upgrade"
	KindMisc       ItemKind = "misc"
)

// Command is the parsed, modality-independent representation of player input.
type Command struct {
	Verb   string
	Object string // optional: item, monster or direction
}

// Named keys delivered by drivers in KeyEvent.Key.
const (
	KeyNone   = ""
	KeyEscape = "esc"
	KeyUp     = "up"
	KeyDown   = "down"
	KeyLeft   = "left"
	KeyRight  = "right"
	KeyClosed = "closed" // input stream ended; no further events will arrive
)

// KeyEvent is one unit of player input. Key holds a single keypress or named
// key; Text holds the full submitted line for line-oriented drivers.
type KeyEvent struct {
	Key  string
	Text string
}

// HUD is a snapshot of the player's status for the heads-up display.
type HUD struct {
	Room       string
	HP         int
	MaxHP      int
	Attack     int
	Weapon     string // empty when fighting bare-handed
	Med        string // empty when no med is equipped
	MedUses    int
	MedMaxUses int
	Weight     int
	MaxWeight  int
	Scannable  bool
	Turn       int
}

// Condition is a predicate over the world that gates key unlocks and
// event handlers.
type Condition struct {
	Type   string         // "in_room", "kernel_unlocked", "flag_set", "has_item", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// Effect is a single atomic world mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after a state transition completes.
type Event struct {
	Type    string
	Subject string // ID of the room, monster, puzzle or item involved
}

// EventHandler is world-authored behavior triggered by an event.
type EventHandler struct {
	EventType  string
	Subject    string // empty matches any subject
	Conditions []Condition
	Effects    []Effect
	Once       bool
}

// KeyUse is one entry of a key's unlock table. The first entry whose
// conditions hold fires when the key is used.
type KeyUse struct {
	Conditions []Condition
	Effects    []Effect
	Text       string
}

// PlayerDef is the starting template for the player.
type PlayerDef struct {
	Name      string
	HP        int
	MaxHP     int
	MaxWeight int
}

// GameDef holds world metadata.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Start   string // starting room ID
	Exit    string // reaching this room wins the run; empty for none
	Intro   string
	Outro   string
	Player  PlayerDef
}

// RoomDef is the base definition of a room.
type RoomDef struct {
	ID          string
	Name        string
	Description string
	Exits       map[Direction]string // direction → room ID
	Locked      map[Direction]string // direction → lock ID
}

// ItemDef is the base definition of an item of any variant.
type ItemDef struct {
	ID          string
	Kind        ItemKind
	Name        string
	Description string
	Weight      int
	Location    string // room ID; empty for reward-only items

	Damage   int         // weapon
	Heal     int         // consumable; -1 heals fully
	Uses     int         // consumable
	MaxUses  int         // consumable
	KeyID    string      // key
	Unlocks  []KeyUse    // key
	Fallback string      // key: narration when no unlock entry fires
	Content  string      // lore
	Upgrade  UpgradeType // upgrade
}

// MonsterDef is the base definition of a monster.
type MonsterDef struct {
	ID          string
	Name        string
	Description string
	Location    string
	HP          int
	MaxHP       int
	Attack      int
	Reward      string    // item ID, optional
	Blocks      Direction // exit this monster guards, optional
}

// PuzzleDef is the base definition of a puzzle.
type PuzzleDef struct {
	ID       string
	Name     string
	Location string
	Prompt   string
	Solution string
	Reward   string // item ID, optional
}
