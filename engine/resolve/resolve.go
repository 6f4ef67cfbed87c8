// Package resolve maps free-text names from line commands to items and
// monsters in the world.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/kernelcrawl/engine/state"
)

// AmbiguityError indicates multiple things matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("Which %s? (%s)", e.Name, names)
}

// Unwrap lets callers treat ambiguity as an invalid action.
func (e *AmbiguityError) Unwrap() error { return state.ErrInvalidAction }

// NotFoundError indicates nothing matched a name.
type NotFoundError struct {
	Name  string
	Where string // "here" or "in storage"
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("You don't see %q %s.", e.Name, e.Where)
}

// Unwrap lets callers branch with errors.Is(err, state.ErrNotFound).
func (e *NotFoundError) Unwrap() error { return state.ErrNotFound }

// RoomItem resolves name against the items on the current room's floor.
func RoomItem(w *state.World, name string) (state.Item, error) {
	items := w.CurrentRoom().Items()
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name()
	}
	i, err := pick(names, name, "here")
	if err != nil {
		return nil, err
	}
	return items[i], nil
}

// StoredItem resolves name against the player's storage.
func StoredItem(w *state.World, name string) (state.Item, error) {
	items := w.Player.Items()
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name()
	}
	i, err := pick(names, name, "in storage")
	if err != nil {
		return nil, err
	}
	return items[i], nil
}

// Monster resolves name against the living monsters in the current room.
// Monster IDs are accepted as well as display names.
func Monster(w *state.World, name string) (*state.Monster, error) {
	var alive []*state.Monster
	for _, m := range w.CurrentRoom().Monsters() {
		if m.IsAlive() {
			alive = append(alive, m)
		}
	}
	names := make([]string, len(alive))
	for i, m := range alive {
		if strings.EqualFold(m.ID, strings.TrimSpace(name)) {
			return m, nil
		}
		names[i] = m.Name
	}
	i, err := pick(names, name, "here")
	if err != nil {
		return nil, err
	}
	return alive[i], nil
}

// pick returns the index of the candidate matching query. An exact match
// wins outright; otherwise a query matching one word of exactly one
// candidate is accepted.
func pick(candidates []string, query, where string) (int, error) {
	q := normalize(query)
	if q == "" {
		return -1, &NotFoundError{Name: query, Where: where}
	}

	for i, c := range candidates {
		if normalize(c) == q {
			return i, nil
		}
	}

	var matches []int
	for i, c := range candidates {
		if matchesWord(normalize(c), q) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return -1, &NotFoundError{Name: query, Where: where}
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = candidates[m]
		}
		return -1, &AmbiguityError{Name: query, Candidates: names}
	}
}

// matchesWord reports whether query equals any word of name, or a run of
// consecutive words ("data shard" matches "old data shard").
func matchesWord(name, query string) bool {
	words := strings.Fields(name)
	qwords := strings.Fields(query)
	for i := 0; i+len(qwords) <= len(words); i++ {
		if strings.Join(words[i:i+len(qwords)], " ") == query {
			return true
		}
	}
	return false
}

// normalize lowercases and treats underscores and dashes as spaces, so
// "quantum_blade" matches "Quantum Blade".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
