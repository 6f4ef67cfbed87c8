package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/kernelcrawl/engine/inventory"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// MoveOutcome is the terminal result of a move attempt.
type MoveOutcome int

const (
	Moved MoveOutcome = iota
	BlockedNoExit
	BlockedMonster
	BlockedLocked
	BlockedDeclined
)

func (o MoveOutcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case BlockedNoExit:
		return "no_exit"
	case BlockedMonster:
		return "monster"
	case BlockedLocked:
		return "locked"
	case BlockedDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// Obstruction describes what stands between the player and an exit.
type Obstruction struct {
	Outcome MoveOutcome // Moved when the way is clear
	Target  string      // destination room ID
	Monster *state.Monster
	LockID  string
	Key     *state.Key // stored key matching LockID, if any
}

// CheckExit inspects the exit in dir without changing anything. Checks run
// in order: missing exit, blocking monster, lock.
func CheckExit(w *state.World, dir types.Direction) Obstruction {
	room := w.CurrentRoom()
	target, ok := room.Exit(dir)
	if !ok {
		return Obstruction{Outcome: BlockedNoExit}
	}
	ob := Obstruction{Target: target}
	if m := room.Blocker(dir); m != nil {
		ob.Outcome = BlockedMonster
		ob.Monster = m
		return ob
	}
	if lockID, locked := room.LockID(dir); locked {
		ob.Outcome = BlockedLocked
		ob.LockID = lockID
		ob.Key = findKey(w.Player, lockID)
		return ob
	}
	ob.Outcome = Moved
	return ob
}

func findKey(p *state.Player, lockID string) *state.Key {
	for _, it := range p.Items() {
		if k, ok := it.(*state.Key); ok && k.KeyID == lockID {
			return k
		}
	}
	return nil
}

// Move tries to take the exit in dir. A blocking monster starts a fight
// that must be won before the move can be tried again; a locked exit
// offers a matching key. The error is non-nil when the attempt was refused
// outright (no exit, no key, unlock declined) and carries the narration.
func (s *Session) Move(dir types.Direction) (MoveOutcome, error) {
	w := s.World
	ob := CheckExit(w, dir)
	log := s.log.WithFields(logrus.Fields{"from": w.Player.Location, "direction": string(dir)})

	switch ob.Outcome {
	case BlockedNoExit:
		return ob.Outcome, state.Errorf(state.ErrInvalidAction, "You can't go %s from here.", dir)

	case BlockedMonster:
		s.IO.Display(fmt.Sprintf("%s has blocked you!", ob.Monster.Name))
		log.WithField("monster", ob.Monster.ID).Info("move blocked")
		s.Fight(ob.Monster)
		return ob.Outcome, nil

	case BlockedLocked:
		msg := fmt.Sprintf("The path to %s is locked (%s)", s.roomName(ob.Target), ob.LockID)
		if ob.Key == nil {
			return ob.Outcome, state.Errorf(state.ErrPermission, "%s", msg)
		}
		if !Confirm(s.IO, fmt.Sprintf("%s\nUse %s to unlock?", msg, ob.Key.Name())) {
			log.Info("unlock declined")
			return BlockedDeclined, state.Errorf(state.ErrPermission, "You leave the lock untouched.")
		}
		out, evs, err := inventory.Use(w, ob.Key.Name())
		if err != nil {
			log.WithField("lock", ob.LockID).Info("unlock failed")
			return ob.Outcome, err
		}
		s.IO.Display(out)
		s.fire(evs)
		if _, still := w.CurrentRoom().LockID(dir); still {
			log.WithField("lock", ob.LockID).Info("unlock failed")
			return ob.Outcome, nil
		}
		log.WithField("lock", ob.LockID).Info("exit unlocked")
	}

	s.enter(ob.Target)
	return Moved, nil
}

// enter commits a move to target and runs its arrival events.
func (s *Session) enter(target string) {
	w := s.World
	from := w.Player.Location
	w.MoveTo(target)
	s.log.WithFields(logrus.Fields{"from": from, "to": target}).Info("moved")

	s.IO.DrawRoom(s.roomView())
	s.IO.Display(fmt.Sprintf("You enter %s.", s.roomName(target)))
	s.fire([]types.Event{{Type: "room_entered", Subject: target}})

	if exit := s.Defs.Game.Exit; exit != "" && target == exit {
		s.mode = ModeWon
	}
}

func (s *Session) roomName(id string) string {
	if r, ok := s.World.Room(id); ok {
		return r.Name
	}
	return id
}
