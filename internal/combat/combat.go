package combat

import (
	"fmt"
	"time"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
)

// HitChance computes the probability (0.0-1.0) that a physical attack from
// attacker lands on defender (spec §4.5). Blind hard-caps the result at
// 0.20 regardless of every other term.
func HitChance(attacker, defender *entity.Combatant, tuning map[string]config.LevelDiffBucket) float64 {
	if attacker.Effects.Has("Blind") {
		return 0.20
	}

	base := config.NPCBaseHitChance
	if attacker.Faction == "player" {
		base = config.PlayerBaseHitChance
	}

	attackerAgi := attacker.Effects.EffectiveStat(attacker.Stats.Agility, "agility")
	defenderAgi := defender.Effects.EffectiveStat(defender.Stats.Agility, "agility")
	agiMod := float64(attackerAgi-defenderAgi) * config.HitChanceAgilityFactor

	category := LevelDiffCategory(attacker.Level, defender.Level)
	bucket := LookupBucket(tuning, category)

	chance := (base + agiMod) * bucket.HitMul
	if chance < config.MinHitChance {
		chance = config.MinHitChance
	}
	if chance > config.MaxHitChance {
		chance = config.MaxHitChance
	}
	return chance
}

// PhysicalDamage computes raw physical damage before the defender's own
// take-damage reduction (spec §4.5).
func PhysicalDamage(attacker *entity.Combatant, attackPower int, tuning map[string]config.LevelDiffBucket, defenderLevel int, src *rng.Source) int {
	variationRange := config.NPCAttackVariationRange
	if attacker.Faction == "player" {
		variationRange = config.PlayerAttackVariationRange
	}
	variance := src.IntRange(variationRange[0], variationRange[1])

	base := attackPower + variance
	if base < 1 {
		base = 1
	}

	category := LevelDiffCategory(attacker.Level, defenderLevel)
	bucket := LookupBucket(tuning, category)

	damage := int(float64(base) * bucket.DamageMul)
	if damage < config.MinimumDamageTaken {
		damage = config.MinimumDamageTaken
	}
	return damage
}

// TakeDamage applies raw damage to a combatant after subtracting defense
// and the relevant resistance percentage (invariant §3.8): 100% resistance
// yields zero damage, and the minimum-damage floor does not apply in that
// case.
func TakeDamage(defender *entity.Combatant, rawDamage int, damageType string) int {
	resistance := defender.Resistances[damageType]
	if resistance >= 100 {
		return 0
	}

	afterDefense := rawDamage
	if damageType == "physical" {
		afterDefense -= defender.Effects.EffectiveStat(defender.Stats.Defense, "defense")
	}
	if afterDefense < 0 {
		afterDefense = 0
	}

	reduced := afterDefense
	if resistance > 0 {
		reduced = afterDefense * (100 - resistance) / 100
	} else if resistance < 0 {
		// Negative resistance is a weakness: amplifies damage.
		reduced = afterDefense * (100 - resistance) / 100
	}

	if reduced < config.MinimumDamageTaken && rawDamage > 0 {
		reduced = config.MinimumDamageTaken
	}

	defender.Health -= reduced
	defender.ClampHealth()
	if defender.Health <= 0 {
		defender.IsAlive = false
	}
	return reduced
}

// AttackResult is the record produced by an attack execution (spec §4.5).
type AttackResult struct {
	IsHit          bool
	Damage         int
	TargetDefeated bool
	Message        string
	VampiricHeal   int
}

// ExecuteAttack performs a full physical attack: hit check, damage
// calculation, application, vampirism, and defeat detection.
func ExecuteAttack(attacker, defender *entity.Combatant, attackPower int, weaponName string, tuning map[string]config.LevelDiffBucket, src *rng.Source) AttackResult {
	result := AttackResult{}

	chance := HitChance(attacker, defender, tuning)
	result.IsHit = src.Chance(chance)

	if !result.IsHit {
		result.Message = fmt.Sprintf("%s attacks %s, but misses!", attacker.Name, defender.Name)
		return result
	}

	raw := PhysicalDamage(attacker, attackPower, tuning, defender.Level, src)
	actual := TakeDamage(defender, raw, "physical")
	result.Damage = actual

	if attacker.Effects.Has("Vampirism") && actual > 0 {
		result.VampiricHeal = actual / 2
		attacker.Health += result.VampiricHeal
		attacker.ClampHealth()
	}

	result.Message = fmt.Sprintf("%s attacks %s with %s and deals %d damage.", attacker.Name, defender.Name, weaponName, actual)

	if !defender.IsAlive {
		result.TargetDefeated = true
		result.Message += fmt.Sprintf(" %s is defeated!", defender.Name)
	}

	return result
}

// CalculateXPGain computes XP awarded for defeating a target, scaled by the
// level-difference XP multiplier (spec §4.5).
func CalculateXPGain(playerLevel, targetLevel, targetMaxHealth int, tuning map[string]config.LevelDiffBucket) int {
	category := LevelDiffCategory(playerLevel, targetLevel)
	bucket := LookupBucket(tuning, category)

	base := (targetMaxHealth / 5) + (targetLevel * 5)
	xp := int(float64(base) * bucket.XPMul)
	if xp < 1 {
		xp = 1
	}
	return xp
}

// TryFireSpecialAbility rolls the fixed per-tick chance (spec §4.5, design
// default 0.2) and, on success, picks a random declared ability.
func TryFireSpecialAbility(abilities []entity.SpecialAbility, src *rng.Source) (entity.SpecialAbility, bool) {
	if len(abilities) == 0 {
		return entity.SpecialAbility{}, false
	}
	if !src.Chance(config.SpecialAbilityChance) {
		return entity.SpecialAbility{}, false
	}
	picked, ok := rng.Pick(src, abilities)
	return picked, ok
}

// ExecuteSpecialAttack runs the same attack resolution as ExecuteAttack but
// scales attackPower by a special ability's multiplier (fixed or
// script-computed, spec §4.5) and appends the ability's flavor text to a
// successful hit.
func ExecuteSpecialAttack(attacker, defender *entity.Combatant, attackPower int, weaponName string, tuning map[string]config.LevelDiffBucket, src *rng.Source, multiplier float64, flavor string) AttackResult {
	result := ExecuteAttack(attacker, defender, int(float64(attackPower)*multiplier), weaponName, tuning, src)
	if result.IsHit && flavor != "" {
		result.Message += " " + flavor
	}
	return result
}

// NPCCombatCooldownElapsed reports whether enough time has passed since the
// NPC's last combat action for it to act again (spec §4.5's attack loop).
func NPCCombatCooldownElapsed(lastAction time.Time, cooldown time.Duration, now time.Time) bool {
	return now.Sub(lastAction) >= cooldown
}

// RollLoot rolls a dead NPC's loot table (spec §4.5's die() drop step): for
// each entry, a chance roll gates whether it drops at all, and a successful
// drop rolls a quantity in [MinQuantity, MaxQuantity]. Returns the dropped
// quantity per item template, omitting entries that rolled zero.
func RollLoot(table []entity.LootEntry, src *rng.Source) map[string]int {
	drops := make(map[string]int)
	for _, entry := range table {
		if !src.Chance(entry.Chance) {
			continue
		}
		qty := entry.MinQuantity
		if entry.MaxQuantity > entry.MinQuantity {
			qty = src.IntRange(entry.MinQuantity, entry.MaxQuantity)
		}
		if qty > 0 {
			drops[entry.ItemTemplateID] += qty
		}
	}
	return drops
}
