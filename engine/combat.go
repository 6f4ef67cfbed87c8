package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/kernelcrawl/engine/inventory"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// EscapeChance is the probability that a retreat succeeds.
const EscapeChance = 0.6

// Action is the player's choice for one combat round.
type Action int

const (
	ActionAttack Action = iota + 1
	ActionHeal
	ActionRetreat
)

// Outcome is the state of a fight after a round.
type Outcome int

const (
	Ongoing Outcome = iota
	Victory
	Defeat
	Retreated
	Aborted // input ended mid-fight
)

func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Retreated:
		return "retreated"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Round is the result of one combat round.
type Round struct {
	Output  []string
	Events  []types.Event
	Outcome Outcome
	// Rejected is true when the action was refused (a heal with no med or
	// at full hp). The monster does not act and the round does not count.
	Rejected bool
}

// CombatRound resolves one round between the player and m. It touches only
// the world and the RNG; the interactive loop lives in Session.Fight.
func CombatRound(w *state.World, m *state.Monster, a Action, rng *RNG) Round {
	p := w.Player
	var r Round

	switch a {
	case ActionAttack:
		dmg := p.Strike(&m.Character)
		weapon := "fists"
		if wp := p.Weapon(); wp != nil {
			weapon = wp.Name()
		}
		r.Output = append(r.Output, fmt.Sprintf("You strike with %s for %d", weapon, dmg))
		if !m.IsAlive() {
			defeatMonster(w, m, &r)
			return r
		}

	case ActionHeal:
		out, err := inventory.Heal(w)
		if err != nil {
			r.Output = append(r.Output, err.Error())
			r.Rejected = true
			return r
		}
		r.Output = append(r.Output, out)

	case ActionRetreat:
		if rng.Chance(EscapeChance) {
			r.Output = append(r.Output, fmt.Sprintf("You escaped! %s growls in frustration.", m.Name))
			r.Outcome = Retreated
			return r
		}
		r.Output = append(r.Output, "Escape failed!")

	default:
		r.Output = append(r.Output, "Invalid selection.")
		r.Rejected = true
		return r
	}

	monsterTurn(w, m, &r)
	return r
}

func monsterTurn(w *state.World, m *state.Monster, r *Round) {
	p := w.Player
	dmg := m.Strike(&p.Character)
	r.Output = append(r.Output, fmt.Sprintf("%s hits you for %d!", m.Name, dmg))
	if !p.IsAlive() {
		r.Output = append(r.Output, "The pixels fade to black...")
		r.Outcome = Defeat
	}
}

func defeatMonster(w *state.World, m *state.Monster, r *Round) {
	r.Output = append(r.Output, fmt.Sprintf("%s has fallen.", m.Name))
	if room := w.CurrentRoom(); room != nil {
		room.RemoveMonster(m)
	}
	if m.Reward != nil {
		reward := m.Reward
		m.Reward = nil
		r.Output = append(r.Output, fmt.Sprintf("%s dropped %s.", m.Name, reward.Name()))
		r.Output = append(r.Output, inventory.PickUpOrDrop(w, reward))
	}
	r.Events = append(r.Events, types.Event{Type: "monster_defeated", Subject: m.ID})
	r.Outcome = Victory
}

// Fight runs the interactive combat loop against m until one side falls,
// the player escapes, or input ends.
func (s *Session) Fight(m *state.Monster) Outcome {
	log := s.log.WithField("monster", m.ID)
	log.Info("fight started")
	s.IO.Display(fmt.Sprintf("!! %s engages you !!", m.Name))

	for {
		s.IO.DrawHUD(state.Snapshot(s.World))
		action, ok := s.chooseAction(m)
		if !ok {
			log.Info("fight aborted")
			s.mode = ModeQuit
			return Aborted
		}

		round := CombatRound(s.World, m, action, s.RNG)
		for _, line := range round.Output {
			s.IO.Display(line)
		}
		if round.Rejected {
			continue
		}
		s.fire(round.Events)

		if round.Outcome != Ongoing {
			s.IO.DrawHUD(state.Snapshot(s.World))
			log.WithFields(logrus.Fields{
				"outcome": round.Outcome.String(),
				"hp":      s.World.Player.HP(),
				"rng_pos": s.RNG.Position(),
			}).Info("fight ended")
			if round.Outcome == Defeat {
				s.mode = ModeGameOver
			}
			return round.Outcome
		}
	}
}

// chooseAction shows the combat menu and reads a selection. It reports
// false only when input has ended; escape is not a way out of a fight.
func (s *Session) chooseAction(m *state.Monster) (Action, bool) {
	p := s.World.Player
	s.IO.Display(fmt.Sprintf("%s  HP %d/%d   |   You  HP %d/%d\n[1] Attack [2] Heal [3] Retreat",
		m.Name, m.HP(), m.MaxHP(), p.HP(), p.MaxHP()))
	for {
		ev := s.IO.ReadKey()
		if ev.Key == types.KeyClosed {
			return 0, false
		}
		switch selection(ev) {
		case "1", "a", "attack":
			return ActionAttack, true
		case "2", "h", "heal":
			return ActionHeal, true
		case "3", "r", "retreat", "run":
			return ActionRetreat, true
		case "":
		default:
			s.IO.Display("Invalid selection. [1] Attack [2] Heal [3] Retreat")
		}
	}
}
