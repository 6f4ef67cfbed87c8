package state

import (
	"fmt"

	"github.com/nathoo/kernelcrawl/types"
)

// Upgrade amounts.
const (
	StorageUpgradeAmount = 32
	HealthUpgradeAmount  = 300
)

// FullHeal is the Consumable.Heal sentinel that restores hp to max.
const FullHeal = -1

// Item is the closed set of item variants: *Weapon, *Consumable, *Key,
// *Lore, *Upgrade and *Misc. The unexported marker keeps the set sealed so
// type switches over it can be exhaustive.
type Item interface {
	ID() string
	Name() string
	Description() string
	Weight() int
	item()
}

type base struct {
	id          string
	name        string
	description string
	weight      int
}

// ID returns the definition ID, or the name for items built in code.
func (b *base) ID() string {
	if b.id == "" {
		return b.name
	}
	return b.id
}

func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }
func (b *base) Weight() int         { return b.weight }
func (*base) item()                 {}

func newBase(name, description string, weight int) base {
	if weight < 0 {
		weight = 0
	}
	return base{name: name, description: description, weight: weight}
}

// Weapon sets the player's attack power while equipped.
type Weapon struct {
	base
	Damage int
}

// NewWeapon creates a weapon.
func NewWeapon(name, description string, weight, damage int) *Weapon {
	return &Weapon{base: newBase(name, description, weight), Damage: damage}
}

// Consumable is a healing item with limited uses.
type Consumable struct {
	base
	Heal    int // FullHeal restores to max
	Uses    int
	MaxUses int
}

// NewConsumable creates a consumable.
func NewConsumable(name, description string, weight, heal, uses, maxUses int) *Consumable {
	return &Consumable{base: newBase(name, description, weight), Heal: heal, Uses: uses, MaxUses: maxUses}
}

// Use heals the player and spends one charge. The item should be removed
// once its charges reach zero.
func (c *Consumable) Use(p *Player) (string, types.Disposition) {
	prev := p.HP()
	if c.Heal == FullHeal {
		p.SetHP(p.MaxHP())
	} else {
		p.SetHP(p.HP() + c.Heal)
	}
	if c.Uses > 0 {
		c.Uses--
	}
	msg := fmt.Sprintf("HP recovered: %d+%d --> %d/%d", prev, p.HP()-prev, p.HP(), p.MaxHP())
	if c.Uses == 0 {
		return msg, types.Remove
	}
	return msg, types.Keep
}

// Key opens locks whose ID matches KeyID. What a key does when used is
// world-authored in Unlocks.
type Key struct {
	base
	KeyID    string
	Unlocks  []types.KeyUse
	Fallback string
}

// NewKey creates a key with an empty unlock table.
func NewKey(name, description string, weight int, keyID string) *Key {
	return &Key{base: newBase(name, description, weight), KeyID: keyID}
}

// Lore is a readable log; reading requires the scan module.
type Lore struct {
	base
	Content string
}

// NewLore creates a lore item.
func NewLore(name, description string, weight int, content string) *Lore {
	return &Lore{base: newBase(name, description, weight), Content: content}
}

// ScanRequired is shown when a log is read before the scan module is active.
const ScanRequired = "You need to activate the scan module to decrypt the logs."

// Use returns the log content. Lore is never consumed.
func (l *Lore) Use(p *Player) (string, types.Disposition) {
	if !p.Scannable {
		return ScanRequired, types.Keep
	}
	return l.Content, types.Keep
}

// Upgrade permanently improves the player. Single use.
type Upgrade struct {
	base
	Type types.UpgradeType
}

// NewUpgrade creates an upgrade.
func NewUpgrade(name, description string, weight int, t types.UpgradeType) *Upgrade {
	return &Upgrade{base: newBase(name, description, weight), Type: t}
}

// Use applies the upgrade.
func (u *Upgrade) Use(p *Player) (string, types.Disposition) {
	switch u.Type {
	case types.UpgradeStorage:
		prev := p.MaxWeight
		p.MaxWeight += StorageUpgradeAmount
		return fmt.Sprintf("System Upgraded: STORAGE\n%d+%d --> %d", prev, StorageUpgradeAmount, p.MaxWeight), types.Remove
	case types.UpgradeHealth:
		prev := p.MaxHP()
		p.SetMaxHP(prev + HealthUpgradeAmount)
		p.SetHP(p.MaxHP())
		return fmt.Sprintf("System Upgraded: MAX HP\n%d+%d --> %d", prev, HealthUpgradeAmount, p.MaxHP()), types.Remove
	case types.UpgradeScan:
		p.Scannable = true
		return "Scan module activated. You are now able to read logs.", types.Remove
	default:
		return "The module sputters. Nothing happens.", types.Remove
	}
}

// Misc is an inert item.
type Misc struct {
	base
}

// NewMisc creates an inert item.
func NewMisc(name, description string, weight int) *Misc {
	return &Misc{base: newBase(name, description, weight)}
}

// NewItem builds a runtime item from its definition.
func NewItem(def types.ItemDef) Item {
	it := newItem(def)
	it.setID(def.ID)
	return it
}

func (b *base) setID(id string) { b.id = id }

type identified interface {
	Item
	setID(string)
}

func newItem(def types.ItemDef) identified {
	name := def.Name
	if name == "" {
		name = def.ID
	}
	switch def.Kind {
	case types.KindWeapon:
		return NewWeapon(name, def.Description, def.Weight, def.Damage)
	case types.KindConsumable:
		maxUses := def.MaxUses
		if maxUses == 0 {
			maxUses = def.Uses
		}
		return NewConsumable(name, def.Description, def.Weight, def.Heal, def.Uses, maxUses)
	case types.KindKey:
		k := NewKey(name, def.Description, def.Weight, def.KeyID)
		k.Unlocks = def.Unlocks
		k.Fallback = def.Fallback
		return k
	case types.KindLore:
		return NewLore(name, def.Description, def.Weight, def.Content)
	case types.KindUpgrade:
		return NewUpgrade(name, def.Description, def.Weight, def.Upgrade)
	default:
		return NewMisc(name, def.Description, def.Weight)
	}
}

// KindOf returns the variant name of an item.
func KindOf(it Item) types.ItemKind {
	switch it.(type) {
	case *Weapon:
		return types.KindWeapon
	case *Consumable:
		return types.KindConsumable
	case *Key:
		return types.KindKey
	case *Lore:
		return types.KindLore
	case *Upgrade:
		return types.KindUpgrade
	default:
		return types.KindMisc
	}
}
