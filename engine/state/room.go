package state

import (
	"sort"
	"strings"

	"github.com/nathoo/kernelcrawl/types"
)

// Room is a node of the world graph. Exits hold target room IDs, never
// pointers; the World arena resolves them.
type Room struct {
	ID           string
	Name         string
	Description  string
	Exits        map[types.Direction]string
	KernelUnlock bool
	Puzzle       *Puzzle

	locked   map[types.Direction]string
	items    []Item
	monsters []*Monster
}

// NewRoom creates an empty room.
func NewRoom(id, name, description string) *Room {
	if name == "" {
		name = id
	}
	return &Room{
		ID:          id,
		Name:        name,
		Description: description,
		Exits:       map[types.Direction]string{},
		locked:      map[types.Direction]string{},
	}
}

// SetExit adds or replaces the exit in dir.
func (r *Room) SetExit(dir types.Direction, target string) {
	r.Exits[dir] = target
}

// Exit returns the target room ID in dir.
func (r *Room) Exit(dir types.Direction) (string, bool) {
	t, ok := r.Exits[dir]
	return t, ok
}

// Directions returns exit directions in sorted order.
func (r *Room) Directions() []types.Direction {
	dirs := make([]types.Direction, 0, len(r.Exits))
	for d := range r.Exits {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}

// Lock marks the exit in dir as locked by lockID. The exit must exist.
func (r *Room) Lock(dir types.Direction, lockID string) error {
	if _, ok := r.Exits[dir]; !ok {
		return Errorf(ErrInvalidAction, "There is no exit %s to lock.", dir)
	}
	r.locked[dir] = lockID
	return nil
}

// Unlock clears the lock on dir. It reports whether a lock was removed.
func (r *Room) Unlock(dir types.Direction) bool {
	if _, ok := r.locked[dir]; !ok {
		return false
	}
	delete(r.locked, dir)
	return true
}

// LockID returns the lock on dir, if any.
func (r *Room) LockID(dir types.Direction) (string, bool) {
	id, ok := r.locked[dir]
	return id, ok
}

// LockedExits returns a copy of the locked exit table.
func (r *Room) LockedExits() map[types.Direction]string {
	out := make(map[types.Direction]string, len(r.locked))
	for d, id := range r.locked {
		out[d] = id
	}
	return out
}

// AddItem places it on the floor.
func (r *Room) AddItem(it Item) {
	r.items = append(r.items, it)
}

// RemoveItem takes the named item off the floor.
func (r *Room) RemoveItem(name string) (Item, bool) {
	for i, it := range r.items {
		if it.Name() == name {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return it, true
		}
	}
	return nil, false
}

// Item returns the named floor item.
func (r *Room) Item(name string) (Item, bool) {
	for _, it := range r.items {
		if it.Name() == name {
			return it, true
		}
	}
	return nil, false
}

// Items returns the floor items in placement order.
func (r *Room) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// AddMonster places m in the room.
func (r *Room) AddMonster(m *Monster) {
	r.monsters = append(r.monsters, m)
}

// RemoveMonster removes m from the room.
func (r *Room) RemoveMonster(m *Monster) bool {
	for i, x := range r.monsters {
		if x == m {
			r.monsters = append(r.monsters[:i], r.monsters[i+1:]...)
			return true
		}
	}
	return false
}

// Monster returns the monster with the given ID or display name.
func (r *Room) Monster(name string) (*Monster, bool) {
	for _, m := range r.monsters {
		if m.ID == name || m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Monsters returns monsters in placement order.
func (r *Room) Monsters() []*Monster {
	out := make([]*Monster, len(r.monsters))
	copy(out, r.monsters)
	return out
}

// Blocker returns the living monster guarding dir, or nil.
func (r *Room) Blocker(dir types.Direction) *Monster {
	for _, m := range r.monsters {
		if m.Blocks == dir && m.IsAlive() {
			return m
		}
	}
	return nil
}

// DetachPuzzle removes and returns the room's puzzle.
func (r *Room) DetachPuzzle() *Puzzle {
	p := r.Puzzle
	r.Puzzle = nil
	return p
}

// Puzzle is a riddle with a single accepted answer.
type Puzzle struct {
	ID       string
	Name     string
	Prompt   string
	Solution string
	Reward   Item

	solved bool
}

// NewPuzzle creates an unsolved puzzle.
func NewPuzzle(id, name, prompt, solution string) *Puzzle {
	if name == "" {
		name = id
	}
	return &Puzzle{ID: id, Name: name, Prompt: prompt, Solution: solution}
}

// Solved reports whether the puzzle has been solved. Once true it stays true.
func (p *Puzzle) Solved() bool { return p.solved }

// Solve marks the puzzle solved.
func (p *Puzzle) Solve() { p.solved = true }

// Check compares answer with the solution, ignoring surrounding whitespace.
func (p *Puzzle) Check(answer string) bool {
	return strings.TrimSpace(answer) == strings.TrimSpace(p.Solution)
}
