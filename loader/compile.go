// Package loader loads Lua world content into Go structs at startup.
// The Lua VM is discarded after loading; nothing runs Lua during play.
package loader

import (
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// rawDef holds a room, monster or puzzle table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// rawItem holds an item table and the constructor it came from.
type rawItem struct {
	rawDef
	kind types.ItemKind
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// directionMap converts a {north = "x", ...} table keyed by direction.
func directionMap(tbl *lua.LTable) map[types.Direction]string {
	if tbl == nil {
		return nil
	}
	m := map[types.Direction]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		if vs, ok := v.(lua.LString); ok {
			m[types.Direction(strings.ToLower(string(ks)))] = string(vs)
		}
	})
	return m
}

// elements returns the array part of tbl in order.
func elements(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Rooms:    map[string]types.RoomDef{},
		Items:    map[string]types.ItemDef{},
		Monsters: map[string]types.MonsterDef{},
		Puzzles:  map[string]types.PuzzleDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	for _, raw := range coll.rooms {
		if _, dup := defs.Rooms[raw.id]; dup {
			return nil, fmt.Errorf("room %q defined twice", raw.id)
		}
		defs.Rooms[raw.id] = compileRoom(raw)
	}

	for _, raw := range coll.items {
		if _, dup := defs.Items[raw.id]; dup {
			return nil, fmt.Errorf("item %q defined twice", raw.id)
		}
		item, err := compileItem(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.id, err)
		}
		defs.Items[raw.id] = item
	}

	for _, raw := range coll.monsters {
		if _, dup := defs.Monsters[raw.id]; dup {
			return nil, fmt.Errorf("monster %q defined twice", raw.id)
		}
		defs.Monsters[raw.id] = compileMonster(raw)
	}

	for _, raw := range coll.puzzles {
		if _, dup := defs.Puzzles[raw.id]; dup {
			return nil, fmt.Errorf("puzzle %q defined twice", raw.id)
		}
		defs.Puzzles[raw.id] = compilePuzzle(raw)
	}

	for _, raw := range coll.handlers {
		defs.Handlers = append(defs.Handlers, compileHandler(raw))
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	g := types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Exit:    getString(tbl, "exit"),
		Intro:   strings.TrimSpace(getString(tbl, "intro")),
		Outro:   strings.TrimSpace(getString(tbl, "outro")),
	}
	if p := getTable(tbl, "player"); p != nil {
		g.Player = types.PlayerDef{
			Name:      getString(p, "name"),
			HP:        getInt(p, "hp"),
			MaxHP:     getInt(p, "max_hp"),
			MaxWeight: getInt(p, "max_weight"),
		}
	}
	return g
}

func compileRoom(raw rawDef) types.RoomDef {
	tbl := raw.table
	name := getString(tbl, "name")
	if name == "" {
		name = raw.id
	}
	return types.RoomDef{
		ID:          raw.id,
		Name:        name,
		Description: strings.TrimSpace(getString(tbl, "description")),
		Exits:       directionMap(getTable(tbl, "exits")),
		Locked:      directionMap(getTable(tbl, "locked")),
	}
}

func compileItem(raw rawItem) (types.ItemDef, error) {
	tbl := raw.table
	item := types.ItemDef{
		ID:          raw.id,
		Kind:        raw.kind,
		Name:        getString(tbl, "name"),
		Description: strings.TrimSpace(getString(tbl, "description")),
		Weight:      getInt(tbl, "weight"),
		Location:    getString(tbl, "location"),
	}
	if item.Name == "" {
		item.Name = raw.id
	}

	switch raw.kind {
	case types.KindWeapon:
		item.Damage = getInt(tbl, "damage")
	case types.KindConsumable:
		switch v := tbl.RawGetString("heal").(type) {
		case lua.LNumber:
			item.Heal = int(v)
		case lua.LString:
			if string(v) != "full" {
				return item, fmt.Errorf("heal must be a number or \"full\", got %q", string(v))
			}
			item.Heal = state.FullHeal
		}
		item.Uses = getInt(tbl, "uses")
		item.MaxUses = getInt(tbl, "max_uses")
		if item.MaxUses == 0 {
			item.MaxUses = item.Uses
		}
	case types.KindKey:
		item.KeyID = getString(tbl, "key_id")
		item.Fallback = getString(tbl, "fallback")
		for _, u := range elements(getTable(tbl, "unlocks")) {
			use := types.KeyUse{Text: strings.TrimSpace(getString(u, "text"))}
			if c := getTable(u, "when"); c != nil {
				use.Conditions = compileConditions(c)
			}
			if e := getTable(u, "effects"); e != nil {
				use.Effects = compileEffects(e)
			}
			item.Unlocks = append(item.Unlocks, use)
		}
	case types.KindLore:
		item.Content = strings.TrimSpace(getString(tbl, "content"))
	case types.KindUpgrade:
		item.Upgrade = types.UpgradeType(getString(tbl, "upgrade"))
	}
	return item, nil
}

func compileMonster(raw rawDef) types.MonsterDef {
	tbl := raw.table
	m := types.MonsterDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: strings.TrimSpace(getString(tbl, "description")),
		Location:    getString(tbl, "location"),
		HP:          getInt(tbl, "hp"),
		MaxHP:       getInt(tbl, "max_hp"),
		Attack:      getInt(tbl, "attack"),
		Reward:      getString(tbl, "reward"),
		Blocks:      types.Direction(strings.ToLower(getString(tbl, "blocks"))),
	}
	if m.Name == "" {
		m.Name = raw.id
	}
	return m
}

func compilePuzzle(raw rawDef) types.PuzzleDef {
	tbl := raw.table
	p := types.PuzzleDef{
		ID:       raw.id,
		Name:     getString(tbl, "name"),
		Location: getString(tbl, "location"),
		Prompt:   strings.TrimSpace(getString(tbl, "prompt")),
		Solution: getString(tbl, "solution"),
		Reward:   getString(tbl, "reward"),
	}
	if p.Name == "" {
		p.Name = raw.id
	}
	return p
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for _, c := range elements(tbl) {
		conditions = append(conditions, compileCondition(c))
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{
				Type:   "not",
				Negate: true,
				Inner:  &inner,
			}
		}
	}

	return types.Condition{
		Type:   condType,
		Params: params(tbl),
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	for _, e := range elements(tbl) {
		effects = append(effects, types.Effect{
			Type:   getString(e, "type"),
			Params: params(e),
		})
	}
	return effects
}

// params collects every field except "type".
func params(tbl *lua.LTable) map[string]any {
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

func compileHandler(raw rawHandler) types.EventHandler {
	h := types.EventHandler{
		EventType: raw.eventType,
		Subject:   getString(raw.table, "subject"),
		Once:      getBool(raw.table, "once", false),
	}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		h.Conditions = compileConditions(condTbl)
	}
	if effTbl := getTable(raw.table, "effects"); effTbl != nil {
		h.Effects = compileEffects(effTbl)
	}
	return h
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
