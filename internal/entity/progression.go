package entity

import (
	"fmt"
	"math"

	"github.com/voidengine/simcore/internal/config"
)

// XPForNextLevel returns the XP required to advance from level to level+1
// (spec §4.5's level-up path), mirroring the skill system's escalating
// per-level requirement but with the player's own base/multiplier.
func XPForNextLevel(level int) int {
	return int(float64(config.BaseXPToLevel) * math.Pow(config.XPToLevelMultiplier, float64(level-1)))
}

// GrantXP adds amount XP to the player, leveling up (possibly more than
// once) while XP still meets the next level's requirement. Each level-up
// bumps every stat by a fixed increase, grows max health, and heals a
// fraction of the health gained. Returns a message per level gained.
func GrantXP(p *Player, amount int) []string {
	if amount <= 0 || !p.IsAlive {
		return nil
	}
	p.XP += amount

	var messages []string
	required := XPForNextLevel(p.Level)
	for p.XP >= required {
		p.XP -= required
		p.Level++

		p.Stats.Strength += config.LevelUpStatIncrease
		p.Stats.Agility += config.LevelUpStatIncrease
		p.Stats.Intelligence += config.LevelUpStatIncrease
		p.Stats.SpellPower += config.LevelUpStatIncrease
		p.Stats.Defense += config.LevelUpStatIncrease

		oldMaxHealth := p.MaxHealth
		p.MaxHealth += config.LevelHealthBaseIncrease + int(float64(p.Stats.Defense)*config.LevelConHealthMultiplier)
		healthGained := p.MaxHealth - oldMaxHealth
		p.Health += int(float64(healthGained) * config.LevelUpHealthHealPercent)
		p.ClampHealth()

		messages = append(messages, fmt.Sprintf("%s is now level %d!", p.Name, p.Level))
		required = XPForNextLevel(p.Level)
	}
	return messages
}
