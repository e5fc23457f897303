// Package skill implements the non-combat skill system (spec §4.11): a
// meet-or-beat check adding a d100 roll, skill level, and a stat-derived
// bonus against a difficulty, and XP accumulation with an escalating per-level
// requirement. Grounded on the teacher's pkg/cooldown/cooldown.go for the
// shape of a small, focused per-player system manager, generalized from
// ability cooldowns to skill progression.
package skill

import (
	"fmt"
	"math"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
)

const baseXPToLevel = 100
const xpMultiplier = 1.5

// statBonus maps a skill name to the stat that scores a bonus of
// (stat-10)*2, mirroring the distilled design's lockpicking/dexterity
// example generalized across the other skills with an obvious stat fit.
var statBonus = map[string]func(entity.Stats) int{
	"lockpicking": func(s entity.Stats) int { return (s.Agility - 10) * 2 },
	"crafting":    func(s entity.Stats) int { return (s.Intelligence - 10) * 2 },
	"mercantile":  func(s entity.Stats) int { return (s.Intelligence - 10) * 2 },
	"diplomacy":   func(s entity.Stats) int { return (s.Intelligence - 10) * 2 },
}

// XPForNextLevel returns the XP required to advance from level to level+1.
func XPForNextLevel(level int) int {
	return int(baseXPToLevel * math.Pow(xpMultiplier, float64(level-1)))
}

// AttemptCheck rolls Uniform[1,100], adds the player's skill level and a
// stat-derived bonus, and compares the total against difficulty.
func AttemptCheck(player *entity.Player, src *rng.Source, skillName string, difficulty int) (bool, string) {
	level := player.Skills[skillName].Level

	bonus := 0
	if f, ok := statBonus[skillName]; ok {
		bonus = f(player.Stats)
	}

	roll := src.IntRange(1, 100)
	total := roll + level + bonus
	success := total >= difficulty

	return success, fmt.Sprintf("(rolled %d vs DC %d)", total, difficulty)
}

// GrantXP adds amount XP to skillName, leveling up while XP exceeds the
// per-level requirement, and returns a message per level gained (empty if
// none, or if the skill is already at the level cap).
func GrantXP(player *entity.Player, skillName string, amount int) []string {
	state := player.Skills[skillName]
	if state.Level == 0 {
		state.Level = 1
	}
	if state.Level >= config.MaxSkillLevel {
		player.Skills[skillName] = state
		return nil
	}

	state.XP += amount

	var messages []string
	required := XPForNextLevel(state.Level)
	for state.XP >= required && state.Level < config.MaxSkillLevel {
		state.XP -= required
		state.Level++
		messages = append(messages, fmt.Sprintf("Your %s skill has increased to %d!", skillName, state.Level))
		required = XPForNextLevel(state.Level)
	}

	player.Skills[skillName] = state
	return messages
}
