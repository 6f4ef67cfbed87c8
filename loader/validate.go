package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Known effect types.
var validEffectTypes = map[string]bool{
	"say":               true,
	"unlock_exit":       true,
	"lock_exit":         true,
	"open_exit":         true,
	"close_exit":        true,
	"set_kernel_unlock": true,
	"set_description":   true,
	"set_flag":          true,
	"spawn_item":        true,
	"stop":              true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"in_room":         true,
	"kernel_unlocked": true,
	"flag_set":        true,
	"flag_not":        true,
	"has_item":        true,
	"scannable":       true,
	"not":             true,
}

// Event types the engine emits.
var validEventTypes = map[string]bool{
	"room_entered":     true,
	"monster_defeated": true,
	"puzzle_solved":    true,
	"item_used":        true,
	"exit_unlocked":    true,
	"flag_changed":     true,
}

var validDirections = map[types.Direction]bool{
	types.North: true,
	types.South: true,
	types.East:  true,
	types.West:  true,
}

var validUpgrades = map[types.UpgradeType]bool{
	types.UpgradeStorage: true,
	types.UpgradeHealth:  true,
	types.UpgradeScan:    true,
}

// validate checks the compiled defs for referential integrity and
// consistency. Map iteration is sorted so messages come out in a stable
// order.
func validate(defs *state.Defs) *ValidationError {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.errorf("Game.title is required")
	}
	if defs.Game.Start == "" {
		ve.errorf("Game.start is required")
	} else if _, ok := defs.Rooms[defs.Game.Start]; !ok {
		ve.errorf("start room %q not found in defined rooms", defs.Game.Start)
	}
	if exit := defs.Game.Exit; exit != "" {
		if _, ok := defs.Rooms[exit]; !ok {
			ve.errorf("exit room %q not found in defined rooms", exit)
		}
	}

	validateRooms(defs, ve)
	validateItems(defs, ve)
	validateMonsters(defs, ve)
	validatePuzzles(defs, ve)
	validatePlacement(defs, ve)

	for _, h := range defs.Handlers {
		if !validEventTypes[h.EventType] {
			ve.errorf("handler for unknown event type %q", h.EventType)
		}
		validateConditions(h.Conditions, defs, ve)
		validateEffects(h.Effects, defs, ve)
	}

	validateReachability(defs, ve)
	return ve
}

func validateRooms(defs *state.Defs, ve *ValidationError) {
	keyIDs := mapset.New[string]()
	for _, it := range defs.Items {
		if it.Kind == types.KindKey && it.KeyID != "" {
			keyIDs.Put(it.KeyID)
		}
	}

	for _, id := range sortedIDs(defs.Rooms) {
		room := defs.Rooms[id]
		for _, dir := range sortedDirs(room.Exits) {
			if !validDirections[dir] {
				ve.errorf("room %q has unknown exit direction %q", id, dir)
			}
			if target := room.Exits[dir]; defs.Rooms[target].ID == "" {
				ve.errorf("room %q exit %s points to undefined room %q", id, dir, target)
			}
		}
		for _, dir := range sortedDirs(room.Locked) {
			if _, ok := room.Exits[dir]; !ok {
				ve.errorf("room %q locks %s but has no exit there", id, dir)
			}
			if lock := room.Locked[dir]; !keyIDs.Has(lock) {
				ve.warnf("room %q lock %q has no matching key", id, lock)
			}
		}
	}
}

func validateItems(defs *state.Defs, ve *ValidationError) {
	names := map[string]string{}
	for _, id := range sortedIDs(defs.Items) {
		it := defs.Items[id]
		lower := strings.ToLower(it.Name)
		if other, dup := names[lower]; dup {
			ve.errorf("items %q and %q share the name %q", other, id, it.Name)
		} else {
			names[lower] = id
		}

		if it.Weight < 0 {
			ve.errorf("item %q has negative weight", id)
		}
		if it.Location != "" {
			if _, ok := defs.Rooms[it.Location]; !ok {
				ve.errorf("item %q location %q does not match any defined room", id, it.Location)
			}
		}

		switch it.Kind {
		case types.KindWeapon:
			if it.Damage <= 0 {
				ve.errorf("weapon %q needs positive damage", id)
			}
		case types.KindConsumable:
			if it.Heal == 0 || it.Heal < state.FullHeal {
				ve.errorf("med %q needs a positive heal or \"full\"", id)
			}
			if it.Uses <= 0 {
				ve.errorf("med %q needs at least one use", id)
			}
			if it.Uses > it.MaxUses {
				ve.errorf("med %q has more uses than max_uses", id)
			}
		case types.KindKey:
			if it.KeyID == "" {
				ve.errorf("key %q needs a key_id", id)
			}
			for _, u := range it.Unlocks {
				validateConditions(u.Conditions, defs, ve)
				validateEffects(u.Effects, defs, ve)
			}
		case types.KindUpgrade:
			if !validUpgrades[it.Upgrade] {
				ve.errorf("upgrade %q has unknown type %q", id, it.Upgrade)
			}
		}
	}
}

func validateMonsters(defs *state.Defs, ve *ValidationError) {
	for _, id := range sortedIDs(defs.Monsters) {
		m := defs.Monsters[id]
		room, ok := defs.Rooms[m.Location]
		if !ok {
			ve.errorf("monster %q location %q does not match any defined room", id, m.Location)
		}
		if m.HP <= 0 {
			ve.errorf("monster %q needs positive hp", id)
		}
		if m.MaxHP != 0 && m.MaxHP < m.HP {
			ve.errorf("monster %q has hp above max_hp", id)
		}
		if m.Attack < 0 {
			ve.errorf("monster %q has negative attack", id)
		}
		if m.Reward != "" {
			if _, ok := defs.Items[m.Reward]; !ok {
				ve.errorf("monster %q reward %q is not a defined item", id, m.Reward)
			}
		}
		if m.Blocks != "" && ok {
			if _, exit := room.Exits[m.Blocks]; !exit {
				ve.errorf("monster %q blocks %s but room %q has no exit there", id, m.Blocks, m.Location)
			}
		}
	}
}

func validatePuzzles(defs *state.Defs, ve *ValidationError) {
	rooms := map[string]string{}
	for _, id := range sortedIDs(defs.Puzzles) {
		p := defs.Puzzles[id]
		if _, ok := defs.Rooms[p.Location]; !ok {
			ve.errorf("puzzle %q location %q does not match any defined room", id, p.Location)
		}
		if other, dup := rooms[p.Location]; dup {
			ve.errorf("puzzles %q and %q share room %q", other, id, p.Location)
		} else {
			rooms[p.Location] = id
		}
		if strings.TrimSpace(p.Solution) == "" {
			ve.errorf("puzzle %q needs a solution", id)
		}
		if p.Reward != "" {
			if _, ok := defs.Items[p.Reward]; !ok {
				ve.errorf("puzzle %q reward %q is not a defined item", id, p.Reward)
			}
		}
	}
}

// validatePlacement checks that every item has exactly one origin: a room,
// a monster reward, a puzzle reward or a spawn_item effect.
func validatePlacement(defs *state.Defs, ve *ValidationError) {
	origins := map[string][]string{}
	for _, id := range sortedIDs(defs.Items) {
		if loc := defs.Items[id].Location; loc != "" {
			origins[id] = append(origins[id], "room "+loc)
		}
	}
	for _, id := range sortedIDs(defs.Monsters) {
		if r := defs.Monsters[id].Reward; r != "" {
			origins[r] = append(origins[r], "monster "+id)
		}
	}
	for _, id := range sortedIDs(defs.Puzzles) {
		if r := defs.Puzzles[id].Reward; r != "" {
			origins[r] = append(origins[r], "puzzle "+id)
		}
	}

	spawned := mapset.New[string]()
	eachEffect(defs, func(eff types.Effect) {
		if eff.Type == "spawn_item" {
			if id, _ := eff.Params["item"].(string); id != "" {
				spawned.Put(id)
			}
		}
	})

	for _, id := range sortedIDs(defs.Items) {
		switch n := len(origins[id]); {
		case n > 1:
			ve.errorf("item %q is placed more than once (%s)", id, strings.Join(origins[id], ", "))
		case n == 0 && !spawned.Has(id):
			ve.warnf("item %q is never placed", id)
		}
	}
}

// validateReachability warns about rooms that cannot be reached from the
// start. Locked exits count as passable, and so do exits opened by effects.
func validateReachability(defs *state.Defs, ve *ValidationError) {
	if _, ok := defs.Rooms[defs.Game.Start]; !ok {
		return
	}

	edges := map[string][]string{}
	for id, room := range defs.Rooms {
		for _, target := range room.Exits {
			edges[id] = append(edges[id], target)
		}
	}
	eachEffect(defs, func(eff types.Effect) {
		if eff.Type != "open_exit" {
			return
		}
		from, _ := eff.Params["room"].(string)
		target, _ := eff.Params["target"].(string)
		if from != "" && target != "" {
			edges[from] = append(edges[from], target)
		}
	})

	visited := mapset.New[string]()
	queue := []string{defs.Game.Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited.Has(current) {
			continue
		}
		visited.Put(current)
		for _, n := range edges[current] {
			if !visited.Has(n) {
				queue = append(queue, n)
			}
		}
	}

	for _, id := range sortedIDs(defs.Rooms) {
		if !visited.Has(id) {
			ve.warnf("room %q is unreachable from %q", id, defs.Game.Start)
		}
	}
}

// eachEffect calls fn for every effect in key unlock tables and handlers.
func eachEffect(defs *state.Defs, fn func(types.Effect)) {
	for _, id := range sortedIDs(defs.Items) {
		for _, u := range defs.Items[id].Unlocks {
			for _, eff := range u.Effects {
				fn(eff)
			}
		}
	}
	for _, h := range defs.Handlers {
		for _, eff := range h.Effects {
			fn(eff)
		}
	}
}

func validateConditions(conditions []types.Condition, defs *state.Defs, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.errorf("unknown condition type %q", cond.Type)
			continue
		}

		switch cond.Type {
		case "has_item":
			if item, _ := cond.Params["item"].(string); defs.Items[item].ID == "" {
				ve.errorf("condition has_item references undefined item %q", item)
			}
		case "in_room", "kernel_unlocked":
			room, _ := cond.Params["room"].(string)
			if room == "" && cond.Type == "kernel_unlocked" {
				continue
			}
			if _, ok := defs.Rooms[room]; !ok {
				ve.errorf("condition %s references undefined room %q", cond.Type, room)
			}
		case "not":
			if cond.Inner != nil {
				validateConditions([]types.Condition{*cond.Inner}, defs, ve)
			}
		}
	}
}

func validateEffects(effects []types.Effect, defs *state.Defs, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			ve.errorf("unknown effect type %q", eff.Type)
			continue
		}

		if room, _ := eff.Params["room"].(string); room != "" {
			if _, ok := defs.Rooms[room]; !ok {
				ve.errorf("effect %s references undefined room %q", eff.Type, room)
			}
		}

		switch eff.Type {
		case "unlock_exit", "lock_exit", "open_exit", "close_exit":
			dir, _ := eff.Params["direction"].(string)
			if !validDirections[types.Direction(dir)] {
				ve.errorf("effect %s has unknown direction %q", eff.Type, dir)
			}
		}

		switch eff.Type {
		case "open_exit":
			target, _ := eff.Params["target"].(string)
			if _, ok := defs.Rooms[target]; !ok {
				ve.errorf("effect open_exit target references undefined room %q", target)
			}
		case "spawn_item":
			if item, _ := eff.Params["item"].(string); defs.Items[item].ID == "" {
				ve.errorf("effect spawn_item references undefined item %q", item)
			}
		case "set_flag":
			if flag, _ := eff.Params["flag"].(string); flag == "" {
				ve.errorf("effect set_flag needs a flag name")
			}
		}
	}
}

func sortedIDs[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDirs(m map[types.Direction]string) []types.Direction {
	dirs := make([]types.Direction, 0, len(m))
	for d := range m {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}
