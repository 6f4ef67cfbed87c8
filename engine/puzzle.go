package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/kernelcrawl/engine/inventory"
	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

// PuzzleResult is the outcome of one answer.
type PuzzleResult struct {
	Solved bool
	Output string
	Events []types.Event
}

// AttemptPuzzle checks answer against the current room's puzzle. A wrong
// answer changes nothing. A right answer solves the puzzle, detaches it
// from the room and hands out its reward.
func AttemptPuzzle(w *state.World, answer string) (PuzzleResult, error) {
	room := w.CurrentRoom()
	pz := room.Puzzle
	if pz == nil || pz.Solved() {
		return PuzzleResult{}, state.Errorf(state.ErrNotFound, "There is no puzzle here.")
	}
	if !pz.Check(answer) {
		return PuzzleResult{Output: "Incorrect. Try again."}, nil
	}

	pz.Solve()
	room.DetachPuzzle()
	lines := []string{"Engram has broken, it fizzles into air."}
	if pz.Reward != nil {
		reward := pz.Reward
		pz.Reward = nil
		lines = append(lines, fmt.Sprintf("The engram leaves behind %s.", reward.Name()))
		lines = append(lines, inventory.PickUpOrDrop(w, reward))
	}
	return PuzzleResult{
		Solved: true,
		Output: strings.Join(lines, "\n"),
		Events: []types.Event{{Type: "puzzle_solved", Subject: pz.ID}},
	}, nil
}

// SolvePuzzle shows the room's puzzle and reads answers until it is solved
// or the player submits an empty answer.
func (s *Session) SolvePuzzle() error {
	pz := s.World.CurrentRoom().Puzzle
	if pz == nil {
		return state.Errorf(state.ErrNotFound, "There is no puzzle here.")
	}
	s.IO.Display(fmt.Sprintf("[ %s ]\n%s", pz.Name, pz.Prompt))

	for {
		answer := strings.TrimSpace(s.IO.ReadLine("Answer (empty to leave): "))
		if answer == "" {
			s.IO.Display("You step away from the engram.")
			return nil
		}
		if s.answer(answer) {
			return nil
		}
	}
}

// answer submits one answer and reports whether the puzzle was solved.
func (s *Session) answer(answer string) bool {
	res, err := AttemptPuzzle(s.World, answer)
	if err != nil {
		s.IO.Display(err.Error())
		return true
	}
	s.log.WithField("solved", res.Solved).Info("puzzle attempt")
	s.IO.Display(res.Output)
	s.fire(res.Events)
	return res.Solved
}
