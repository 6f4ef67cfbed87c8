package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/kernelcrawl/types"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

// curried returns a Lua function for the `Name "id" { ... }` form:
// Name("id") returns a function that takes the body table.
func curried(L *lua.LState, collect func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			collect(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Room "id" { name = "...", exits = {...}, locked = {...} }
	L.SetGlobal("Room", curried(L, func(id string, tbl *lua.LTable) {
		coll.rooms = append(coll.rooms, rawDef{id: id, table: tbl})
	}))

	// One constructor per item variant.
	itemKinds := map[string]types.ItemKind{
		"Weapon":  types.KindWeapon,
		"Med":     types.KindConsumable,
		"Key":     types.KindKey,
		"Lore":    types.KindLore,
		"Upgrade": types.KindUpgrade,
		"Misc":    types.KindMisc,
	}
	for global, kind := range itemKinds {
		L.SetGlobal(global, curried(L, func(id string, tbl *lua.LTable) {
			coll.items = append(coll.items, rawItem{rawDef: rawDef{id: id, table: tbl}, kind: kind})
		}))
	}

	// Monster "id" { hp = 100, attack = 20, reward = "item", blocks = "south" }
	L.SetGlobal("Monster", curried(L, func(id string, tbl *lua.LTable) {
		coll.monsters = append(coll.monsters, rawDef{id: id, table: tbl})
	}))

	// Puzzle "id" { prompt = "...", solution = "...", reward = "item" }
	L.SetGlobal("Puzzle", curried(L, func(id string, tbl *lua.LTable) {
		coll.puzzles = append(coll.puzzles, rawDef{id: id, table: tbl})
	}))

	// On("event_type", { subject = "...", once = true, conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))
}

// node builds a {type = typ, ...} table from alternating key/value pairs.
func node(L *lua.LState, typ string, kv ...any) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			tbl.RawSetString(key, lua.LString(v))
		case lua.LValue:
			if v != lua.LNil {
				tbl.RawSetString(key, v)
			}
		}
	}
	return tbl
}

// optString returns argument n as a string, or LNil when absent.
func optString(L *lua.LState, n int) lua.LValue {
	if L.GetTop() < n || L.Get(n) == lua.LNil {
		return lua.LNil
	}
	return lua.LString(L.CheckString(n))
}

// optBool returns argument n as a bool, or LNil when absent.
func optBool(L *lua.LState, n int) lua.LValue {
	if L.GetTop() < n || L.Get(n) == lua.LNil {
		return lua.LNil
	}
	return lua.LBool(L.CheckBool(n))
}

func registerConditionHelpers(L *lua.LState) {
	// InRoom("room_id")
	L.SetGlobal("InRoom", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "in_room", "room", L.CheckString(1)))
		return 1
	}))

	// KernelUnlocked(["room_id"])
	L.SetGlobal("KernelUnlocked", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "kernel_unlocked", "room", optString(L, 1)))
		return 1
	}))

	// FlagSet("flag")
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "flag_set", "flag", L.CheckString(1)))
		return 1
	}))

	// FlagNot("flag")
	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "flag_not", "flag", L.CheckString(1)))
		return 1
	}))

	// HasItem("item_id")
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "has_item", "item", L.CheckString(1)))
		return 1
	}))

	// Scannable()
	L.SetGlobal("Scannable", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "scannable"))
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "not", "inner", L.CheckTable(1)))
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "say", "text", L.CheckString(1)))
		return 1
	}))

	// UnlockExit("direction", ["room"])
	L.SetGlobal("UnlockExit", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "unlock_exit", "direction", L.CheckString(1), "room", optString(L, 2)))
		return 1
	}))

	// LockExit("direction", "lock_id", ["room"])
	L.SetGlobal("LockExit", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "lock_exit",
			"direction", L.CheckString(1), "lock", L.CheckString(2), "room", optString(L, 3)))
		return 1
	}))

	// OpenExit("direction", "target", ["room"])
	L.SetGlobal("OpenExit", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "open_exit",
			"direction", L.CheckString(1), "target", L.CheckString(2), "room", optString(L, 3)))
		return 1
	}))

	// CloseExit("direction", ["room"])
	L.SetGlobal("CloseExit", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "close_exit", "direction", L.CheckString(1), "room", optString(L, 2)))
		return 1
	}))

	// SetKernelUnlock([value], ["room"])
	L.SetGlobal("SetKernelUnlock", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "set_kernel_unlock", "value", optBool(L, 1), "room", optString(L, 2)))
		return 1
	}))

	// SetDescription("text", ["room"])
	L.SetGlobal("SetDescription", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "set_description", "text", L.CheckString(1), "room", optString(L, 2)))
		return 1
	}))

	// SetFlag("flag", [value])
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "set_flag", "flag", L.CheckString(1), "value", optBool(L, 2)))
		return 1
	}))

	// SpawnItem("item_id", ["room"])
	L.SetGlobal("SpawnItem", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "spawn_item", "item", L.CheckString(1), "room", optString(L, 2)))
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		L.Push(node(L, "stop"))
		return 1
	}))
}
