// Package rules evaluates world-authored conditions against the world.
package rules

import (
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// EvalCondition evaluates a single condition against the current world.
func EvalCondition(c types.Condition, w *state.World) bool {
	switch c.Type {
	case "in_room":
		room, _ := c.Params["room"].(string)
		return w.Player.Location == room

	case "kernel_unlocked":
		r := w.CurrentRoom()
		if id, _ := c.Params["room"].(string); id != "" {
			r, _ = w.Room(id)
		}
		return r != nil && r.KernelUnlock

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return w.GetFlag(flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !w.GetFlag(flag)

	case "has_item":
		item, _ := c.Params["item"].(string)
		return w.Player.Has(itemName(w, item))

	case "scannable":
		return w.Player.Scannable

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, w)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, w *state.World) bool {
	for _, c := range conditions {
		if !EvalCondition(c, w) {
			return false
		}
	}
	return true
}

// itemName maps an item ID to its display name, which is how storage is
// keyed. Unknown IDs are assumed to already be names.
func itemName(w *state.World, id string) string {
	if w.Defs != nil {
		if d, ok := w.Defs.Items[id]; ok && d.Name != "" {
			return d.Name
		}
	}
	return id
}
