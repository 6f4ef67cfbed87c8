package state

import "github.com/nathoo/kernelcrawl/types"

// BaseAttack is the player's attack power with no weapon equipped.
const BaseAttack = 50

// Character holds the combat stats shared by the player and monsters.
// hp is kept within [0, maxHP] by every mutator.
type Character struct {
	Name        string
	Description string
	Attack      int

	hp    int
	maxHP int
}

// NewCharacter creates a character. maxHP is raised to at least 1 and hp is
// clamped into range.
func NewCharacter(name, description string, hp, maxHP, attack int) Character {
	if maxHP < 1 {
		maxHP = 1
	}
	if attack < 0 {
		attack = 0
	}
	c := Character{Name: name, Description: description, Attack: attack, maxHP: maxHP}
	c.SetHP(hp)
	return c
}

// HP returns current hit points.
func (c *Character) HP() int { return c.hp }

// MaxHP returns maximum hit points.
func (c *Character) MaxHP() int { return c.maxHP }

// SetHP sets hit points, clamped to [0, MaxHP].
func (c *Character) SetHP(hp int) {
	switch {
	case hp < 0:
		hp = 0
	case hp > c.maxHP:
		hp = c.maxHP
	}
	c.hp = hp
}

// SetMaxHP changes the ceiling and re-clamps hp.
func (c *Character) SetMaxHP(maxHP int) {
	if maxHP < 1 {
		maxHP = 1
	}
	c.maxHP = maxHP
	c.SetHP(c.hp)
}

// IsAlive reports whether hp is above zero.
func (c *Character) IsAlive() bool {
	return c.hp > 0
}

// Strike deals this character's attack power to target and returns the
// damage actually absorbed: a blow larger than the target's remaining hp
// reports only what was left.
func (c *Character) Strike(target *Character) int {
	before := target.hp
	target.SetHP(before - c.Attack)
	return before - target.hp
}

// Monster is a hostile character. It may guard one exit of its room and
// may carry a reward released on death.
type Monster struct {
	Character
	ID     string
	Reward Item
	Blocks types.Direction
}

// NewMonster creates a monster.
func NewMonster(id, name string, hp, maxHP, attack int) *Monster {
	if name == "" {
		name = id
	}
	return &Monster{ID: id, Character: NewCharacter(name, "", hp, maxHP, attack)}
}

// Player is the user-controlled character. Storage, weight and equipment
// slots are unexported: they change only through the methods below, each
// of which keeps weight equal to the stored total and keeps equipped slots
// pointing at stored items.
type Player struct {
	Character
	Location  string // room ID in the world arena
	MaxWeight int
	Scannable bool

	storage []Item
	weight  int
	weapon  string
	med     string
}

// NewPlayer creates a player with empty storage and base attack.
func NewPlayer(name string, hp, maxHP, maxWeight int) *Player {
	return &Player{
		Character: NewCharacter(name, "", hp, maxHP, BaseAttack),
		MaxWeight: maxWeight,
	}
}

// Weight returns the total weight carried.
func (p *Player) Weight() int { return p.weight }

// Items returns stored items in pickup order.
func (p *Player) Items() []Item {
	out := make([]Item, len(p.storage))
	copy(out, p.storage)
	return out
}

// Item returns the stored item with the given name.
func (p *Player) Item(name string) (Item, bool) {
	if i := p.index(name); i >= 0 {
		return p.storage[i], true
	}
	return nil, false
}

// Has reports whether an item with the given name is stored.
func (p *Player) Has(name string) bool {
	return p.index(name) >= 0
}

// Fits reports whether it can be added without exceeding MaxWeight.
func (p *Player) Fits(it Item) bool {
	return p.weight+it.Weight() <= p.MaxWeight
}

// Store adds it to storage if it fits. An item with the same name is
// replaced in place; the fit check still counts the replaced item's weight.
func (p *Player) Store(it Item) bool {
	if !p.Fits(it) {
		return false
	}
	if i := p.index(it.Name()); i >= 0 {
		p.release(it.Name())
		p.weight -= p.storage[i].Weight()
		p.storage[i] = it
	} else {
		p.storage = append(p.storage, it)
	}
	p.weight += it.Weight()
	return true
}

// Take removes the named item from storage, emptying any slot it occupied.
func (p *Player) Take(name string) (Item, bool) {
	i := p.index(name)
	if i < 0 {
		return nil, false
	}
	it := p.storage[i]
	p.release(name)
	p.storage = append(p.storage[:i], p.storage[i+1:]...)
	p.weight -= it.Weight()
	return it, true
}

// Weapon returns the equipped weapon, or nil.
func (p *Player) Weapon() *Weapon {
	if p.weapon == "" {
		return nil
	}
	it, _ := p.Item(p.weapon)
	w, _ := it.(*Weapon)
	return w
}

// Med returns the equipped consumable, or nil.
func (p *Player) Med() *Consumable {
	if p.med == "" {
		return nil
	}
	it, _ := p.Item(p.med)
	c, _ := it.(*Consumable)
	return c
}

// EquipWeapon sets the weapon slot and attack power together.
// It reports false when w is not the stored item of that name.
func (p *Player) EquipWeapon(w *Weapon) bool {
	if it, ok := p.Item(w.Name()); !ok || it != Item(w) {
		return false
	}
	p.weapon = w.Name()
	p.Attack = w.Damage
	return true
}

// ClearWeapon empties the weapon slot and restores base attack.
func (p *Player) ClearWeapon() {
	p.weapon = ""
	p.Attack = BaseAttack
}

// EquipMed sets the med slot. It reports false when c is not stored.
func (p *Player) EquipMed(c *Consumable) bool {
	if it, ok := p.Item(c.Name()); !ok || it != Item(c) {
		return false
	}
	p.med = c.Name()
	return true
}

// ClearMed empties the med slot.
func (p *Player) ClearMed() {
	p.med = ""
}

// IsEquipped reports whether the named item occupies a slot.
func (p *Player) IsEquipped(name string) bool {
	return name != "" && (p.weapon == name || p.med == name)
}

func (p *Player) release(name string) {
	if p.weapon == name {
		p.ClearWeapon()
	}
	if p.med == name {
		p.ClearMed()
	}
}

func (p *Player) index(name string) int {
	for i, it := range p.storage {
		if it.Name() == name {
			return i
		}
	}
	return -1
}
