// Package effects implements centralized world mutation via the Apply function.
// Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"strings"

	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// Context carries what template interpolation needs to know about the action
// that triggered the effects.
type Context struct {
	Item string // display name of the item being used, if any
}

// Apply applies a list of effects to the world, mutating it.
// Returns events emitted and output text collected.
func Apply(w *state.World, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, w, ctx))

		case "unlock_exit":
			r := targetRoom(w, eff)
			dir := direction(eff)
			if r != nil && r.Unlock(dir) {
				events = append(events, types.Event{Type: "exit_unlocked", Subject: r.ID})
			}

		case "lock_exit":
			r := targetRoom(w, eff)
			lock, _ := eff.Params["lock"].(string)
			if r != nil {
				_ = r.Lock(direction(eff), lock)
			}

		case "open_exit":
			r := targetRoom(w, eff)
			target, _ := eff.Params["target"].(string)
			if r != nil && target != "" {
				if _, ok := w.Room(target); ok {
					r.SetExit(direction(eff), target)
				}
			}

		case "close_exit":
			r := targetRoom(w, eff)
			if r != nil {
				dir := direction(eff)
				r.Unlock(dir)
				delete(r.Exits, dir)
			}

		case "set_kernel_unlock":
			r := targetRoom(w, eff)
			value := true
			if v, ok := eff.Params["value"].(bool); ok {
				value = v
			}
			if r != nil {
				r.KernelUnlock = value
			}

		case "set_description":
			r := targetRoom(w, eff)
			text, _ := eff.Params["text"].(string)
			if r != nil {
				r.Description = text
			}

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value := true
			if v, ok := eff.Params["value"].(bool); ok {
				value = v
			}
			w.SetFlag(flag, value)
			events = append(events, types.Event{Type: "flag_changed", Subject: flag})

		case "spawn_item":
			id, _ := eff.Params["item"].(string)
			r := targetRoom(w, eff)
			def, ok := w.Defs.Items[id]
			if r != nil && ok {
				r.AddItem(state.NewItem(def))
			}

		case "stop":
			return events, output

		default:
			// Unknown effect types are ignored; the loader rejects them.
		}
	}

	return events, output
}

// targetRoom returns the room named by the "room" param, defaulting to the
// player's current room.
func targetRoom(w *state.World, eff types.Effect) *state.Room {
	if id, _ := eff.Params["room"].(string); id != "" {
		r, _ := w.Room(id)
		return r
	}
	return w.CurrentRoom()
}

func direction(eff types.Effect) types.Direction {
	d, _ := eff.Params["direction"].(string)
	return types.Direction(d)
}

// interpolate replaces template variables in text.
func interpolate(text string, w *state.World, ctx Context) string {
	if !strings.Contains(text, "{") {
		return text
	}
	room := ""
	if r := w.CurrentRoom(); r != nil {
		room = r.Name
	}
	r := strings.NewReplacer(
		"{item}", ctx.Item,
		"{player.name}", w.Player.Name,
		"{room.name}", room,
	)
	return r.Replace(text)
}
