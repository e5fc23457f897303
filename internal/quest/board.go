package quest

import (
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/rng"
)

// generateByType dispatches to the instance or non-instance generator for
// the given board quest type.
func (g *Generator) generateByType(questType string, playerLevel int, givers []Giver) *Instance {
	if questType == "instance" {
		return g.GenerateInstanceQuest(playerLevel)
	}
	return g.GenerateNonInstanceQuest(givers, playerLevel, questType)
}

// EnsureInitialQuests fills the board up to config.MaxQuestsOnBoard (spec
// §4.10): quest types missing from the board are generated first to
// restore variety, then any remaining slots are filled with random types.
// A generation attempt that fails (no eligible giver/target) is skipped
// rather than retried forever, bounding the fill pass.
func (g *Generator) EnsureInitialQuests(board []*Instance, playerLevel int, givers []Giver) []*Instance {
	slotsToFill := config.MaxQuestsOnBoard - len(board)
	if slotsToFill <= 0 {
		return board
	}

	present := make(map[string]bool, len(board))
	for _, q := range board {
		present[q.Type] = true
	}

	var missingTypes []string
	for _, t := range AllTypes {
		if !present[t] {
			missingTypes = append(missingTypes, t)
		}
	}

	for _, t := range missingTypes {
		if slotsToFill <= 0 {
			break
		}
		if q := g.generateByType(t, playerLevel, givers); q != nil {
			board = append(board, q)
			slotsToFill--
		}
	}

	maxAttempts := slotsToFill*4 + len(AllTypes)
	for slotsToFill > 0 && maxAttempts > 0 {
		maxAttempts--
		t, ok := rng.Pick(g.RNG, AllTypes)
		if !ok {
			break
		}
		if q := g.generateByType(t, playerLevel, givers); q != nil {
			board = append(board, q)
			slotsToFill--
		}
	}
	return board
}

// ReplenishBoard removes completedInstanceID from the board (if present)
// and refills it via EnsureInitialQuests (spec §4.10).
func (g *Generator) ReplenishBoard(board []*Instance, completedInstanceID string, playerLevel int, givers []Giver) []*Instance {
	if completedInstanceID != "" {
		filtered := board[:0]
		for _, q := range board {
			if q.InstanceID != completedInstanceID {
				filtered = append(filtered, q)
			}
		}
		board = filtered
	}
	return g.EnsureInitialQuests(board, playerLevel, givers)
}
