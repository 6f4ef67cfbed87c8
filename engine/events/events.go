// Package events implements single-pass event handler dispatch.
// Event handlers produce additional effects but do not recurse.
package events

import (
	"github.com/nathoo/kernelcrawl/engine/rules"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// Dispatch runs event handlers against the emitted events in a single
// pass and returns the effects of the handlers that matched.
// A handler with an empty Subject matches every subject. Once-only handlers
// are recorded in w.Fired and never match again in this world.
func Dispatch(events []types.Event, w *state.World) []types.Effect {
	var result []types.Effect

	for _, event := range events {
		for i, handler := range w.Defs.Handlers {
			if handler.EventType != event.Type {
				continue
			}
			if handler.Subject != "" && handler.Subject != event.Subject {
				continue
			}
			if handler.Once && w.Fired[i] {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, w) {
				continue
			}
			if handler.Once {
				w.Fired[i] = true
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}
