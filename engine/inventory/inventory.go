// Package inventory implements the capacity-checked storage and equipment
// transitions of the player. Every operation either completes fully or
// leaves the world untouched and returns a narrated error.
package inventory

import (
	"fmt"
	"strings"

	"github.com/nathoo/kernelcrawl/engine/effects"
	"github.com/nathoo/kernelcrawl/engine/rules"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// Result is the outcome of a pickup.
type Result struct {
	Added  bool
	Output string
}

// PickUp moves it into storage if it fits. When it lies on the current
// room's floor it is removed from there in the same step.
func PickUp(w *state.World, it state.Item) (Result, error) {
	p := w.Player
	if !p.Fits(it) {
		return Result{}, state.Errorf(state.ErrCapacity,
			"%s is too heavy to carry.\nStorage: %d + %d > %d bytes",
			it.Name(), p.Weight(), it.Weight(), p.MaxWeight)
	}

	prev := p.Weight()
	p.Store(it)
	if r := w.CurrentRoom(); r != nil {
		if floor, ok := r.Item(it.Name()); ok && floor == it {
			r.RemoveItem(it.Name())
		}
	}
	return Result{
		Added: true,
		Output: fmt.Sprintf("%s added to storage.\nStorage: %d + %d --> %d/%d bytes",
			it.Name(), prev, it.Weight(), p.Weight(), p.MaxWeight),
	}, nil
}

// PickUpOrDrop offers it to PickUp and leaves it on the current room's
// floor when it does not fit. Used for monster and puzzle rewards.
func PickUpOrDrop(w *state.World, it state.Item) string {
	res, err := PickUp(w, it)
	if err == nil {
		return res.Output
	}
	if r := w.CurrentRoom(); r != nil {
		r.AddItem(it)
	}
	return fmt.Sprintf("%s\n%s falls to the floor.", err.Error(), it.Name())
}

// Equip puts the named stored item into its slot. Weapons also set attack
// power; consumables become the med used by Heal.
func Equip(w *state.World, name string) (string, error) {
	p := w.Player
	it, ok := p.Item(name)
	if !ok {
		return "", notStored(name)
	}
	switch v := it.(type) {
	case *state.Weapon:
		p.EquipWeapon(v)
		return fmt.Sprintf("You equip %s. Attack updated to %d.", v.Name(), p.Attack), nil
	case *state.Consumable:
		p.EquipMed(v)
		return fmt.Sprintf("You equip %s. Uses updated to %d.", v.Name(), v.Uses), nil
	default:
		return "", state.Errorf(state.ErrInvalidType, "You can't equip %s.", it.Name())
	}
}

// Unequip empties the slot holding the named item. The item stays stored.
func Unequip(w *state.World, name string) (string, error) {
	p := w.Player
	it, ok := p.Item(name)
	if !ok {
		return "", notStored(name)
	}
	if !p.IsEquipped(name) {
		return "", state.Errorf(state.ErrInvalidAction, "%s is not equipped.", it.Name())
	}
	return unequip(p, it), nil
}

func unequip(p *state.Player, it state.Item) string {
	switch it.(type) {
	case *state.Weapon:
		p.ClearWeapon()
		return fmt.Sprintf("You unequip %s. Attack reset to %d.", it.Name(), p.Attack)
	default:
		p.ClearMed()
		return fmt.Sprintf("You unequip %s.", it.Name())
	}
}

// RemoveAndDrop takes the named item out of storage and leaves it on the
// current room's floor.
func RemoveAndDrop(w *state.World, name string) (string, error) {
	it, out, err := remove(w.Player, name)
	if err != nil {
		return "", err
	}
	r := w.CurrentRoom()
	r.AddItem(it)
	return out + fmt.Sprintf("\n%s dropped in %s.", it.Name(), r.Name), nil
}

// RemoveAndDiscard takes the named item out of storage and destroys it.
func RemoveAndDiscard(w *state.World, name string) (string, error) {
	_, out, err := remove(w.Player, name)
	return out, err
}

func remove(p *state.Player, name string) (state.Item, string, error) {
	it, ok := p.Item(name)
	if !ok {
		return nil, "", notStored(name)
	}
	var lines []string
	if p.IsEquipped(name) {
		lines = append(lines, unequip(p, it))
	}
	prev := p.Weight()
	p.Take(name)
	lines = append(lines, fmt.Sprintf("%s removed. Capacity updated: %d - %d --> %d/%d bytes.",
		it.Name(), prev, it.Weight(), p.Weight(), p.MaxWeight))
	return it, strings.Join(lines, "\n"), nil
}

// Use applies the named stored item and honours its disposition. It
// returns the narration and the events the use produced. A refused use
// (unreadable log, key with no matching unlock) changes nothing and raises
// no events.
func Use(w *state.World, name string) (string, []types.Event, error) {
	p := w.Player
	it, ok := p.Item(name)
	if !ok {
		return "", nil, notStored(name)
	}

	var (
		out  string
		disp types.Disposition
		evs  []types.Event
	)
	switch v := it.(type) {
	case *state.Weapon:
		return "", nil, state.Errorf(state.ErrInvalidType, "%s is a weapon. Equip it instead.", v.Name())
	case *state.Consumable:
		if p.HP() >= p.MaxHP() {
			return "", nil, state.Errorf(state.ErrInvalidAction, "You are at max hp!")
		}
		out, disp = v.Use(p)
	case *state.Key:
		var err error
		out, disp, evs, err = useKey(w, v)
		if err != nil {
			return "", nil, err
		}
	case *state.Lore:
		if !p.Scannable {
			return "", nil, state.Errorf(state.ErrPermission, "%s", state.ScanRequired)
		}
		out, disp = v.Use(p)
	case *state.Upgrade:
		out, disp = v.Use(p)
	case *state.Misc:
		out, disp = "Nothing happens.", types.Keep
	}

	if disp == types.Remove {
		p.Take(it.Name())
	}
	evs = append(evs, types.Event{Type: "item_used", Subject: it.ID()})
	return out, evs, nil
}

// useKey fires the first unlock entry whose conditions hold. Keys are
// spent when an entry fires; otherwise the fallback is returned as an error
// and the key is kept.
func useKey(w *state.World, k *state.Key) (string, types.Disposition, []types.Event, error) {
	for _, u := range k.Unlocks {
		if !rules.EvalAllConditions(u.Conditions, w) {
			continue
		}
		evs, output := effects.Apply(w, u.Effects, effects.Context{Item: k.Name()})
		lines := make([]string, 0, len(output)+1)
		if u.Text != "" {
			lines = append(lines, u.Text)
		}
		lines = append(lines, output...)
		return strings.Join(lines, "\n"), types.Remove, evs, nil
	}
	if k.Fallback != "" {
		return "", types.Keep, nil, state.Errorf(state.ErrInvalidAction, "%s", k.Fallback)
	}
	return "", types.Keep, nil, state.Errorf(state.ErrInvalidAction, "%s hums faintly, but nothing happens here.", k.Name())
}

// Heal uses the equipped med. A med spent to zero is unequipped and
// discarded.
func Heal(w *state.World) (string, error) {
	p := w.Player
	med := p.Med()
	if med == nil {
		return "", state.Errorf(state.ErrInvalidAction, "You don't have any meds equipped!")
	}
	if p.HP() >= p.MaxHP() {
		return "", state.Errorf(state.ErrInvalidAction, "You are at max hp!")
	}
	if med.Uses <= 0 {
		return "", state.Errorf(state.ErrInvalidAction, "Med charges depleted!")
	}

	out, disp := med.Use(p)
	if disp == types.Remove {
		p.Take(med.Name())
		out += fmt.Sprintf("\n%s is depleted and removed from storage.", med.Name())
	}
	return out, nil
}

// Describe lists storage contents with weights and capacity.
func Describe(w *state.World) string {
	p := w.Player
	var b strings.Builder
	b.WriteString("[ Storage ]\n")
	items := p.Items()
	if len(items) == 0 {
		b.WriteString("  (empty)\n")
	}
	for _, it := range items {
		fmt.Fprintf(&b, "  %s (%s, %d bytes)", it.Name(), state.KindOf(it), it.Weight())
		if p.IsEquipped(it.Name()) {
			b.WriteString(" [equipped]")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Capacity: %d/%d bytes", p.Weight(), p.MaxWeight)
	return b.String()
}

// Stats renders the player status sheet.
func Stats(w *state.World) string {
	p := w.Player
	weapon := "fists"
	if wp := p.Weapon(); wp != nil {
		weapon = wp.Name()
	}
	med := "none"
	if m := p.Med(); m != nil {
		med = fmt.Sprintf("%s (%d/%d)", m.Name(), m.Uses, m.MaxUses)
	}
	scan := "offline"
	if p.Scannable {
		scan = "online"
	}
	return strings.Join([]string{
		fmt.Sprintf("[ %s ]", p.Name),
		fmt.Sprintf("  HP:       %d/%d", p.HP(), p.MaxHP()),
		fmt.Sprintf("  Attack:   %d (%s)", p.Attack, weapon),
		fmt.Sprintf("  Med:      %s", med),
		fmt.Sprintf("  Storage:  %d/%d bytes", p.Weight(), p.MaxWeight),
		fmt.Sprintf("  Scan:     %s", scan),
	}, "\n")
}

// DescribeItem renders one item's details.
func DescribeItem(it state.Item) string {
	lines := []string{fmt.Sprintf("%s (%s, %d bytes)", it.Name(), state.KindOf(it), it.Weight())}
	if it.Description() != "" {
		lines = append(lines, it.Description())
	}
	switch v := it.(type) {
	case *state.Weapon:
		lines = append(lines, fmt.Sprintf("Damage: %d", v.Damage))
	case *state.Consumable:
		if v.Heal == state.FullHeal {
			lines = append(lines, fmt.Sprintf("Heal: full, uses %d/%d", v.Uses, v.MaxUses))
		} else {
			lines = append(lines, fmt.Sprintf("Heal: %d, uses %d/%d", v.Heal, v.Uses, v.MaxUses))
		}
	case *state.Upgrade:
		lines = append(lines, fmt.Sprintf("Upgrade: %s", v.Type))
	}
	return strings.Join(lines, "\n")
}

func notStored(name string) error {
	return state.Errorf(state.ErrNotFound, "You don't have %s in storage.", name)
}
