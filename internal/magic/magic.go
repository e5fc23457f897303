package magic

import (
	"fmt"
	"time"

	"github.com/voidengine/simcore/internal/combat"
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/effect"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
)

// DamageTypeFlavorText maps a damage type to weakness/resistance flavor
// templates (spec §4.6.1's weakness/resistance flavor table). "default" is
// used for damage types with no specific entry.
var DamageTypeFlavorText = map[string]map[string]string{
	"default": {
		"weakness":          "%s recoils, vulnerable to the attack!",
		"resistance":        "%s shrugs off some of the force.",
		"strong_resistance": "%s barely notices the attack.",
	},
	"fire": {
		"weakness":          "%s's flesh sizzles, weak to flame!",
		"resistance":        "%s's hide resists the flames.",
		"strong_resistance": "%s is nearly immune to fire.",
	},
	"frost": {
		"weakness":          "%s shivers uncontrollably, weak to cold!",
		"resistance":        "%s's thick hide resists the chill.",
		"strong_resistance": "%s shrugs off the cold entirely.",
	},
}

// CanCast reports whether caster may cast spell right now (spec §4.6 step
// 1): alive, not stunned, not silenced, known, level sufficient, mana
// sufficient, not on cooldown.
func CanCast(caster *entity.Combatant, spell *Spell, now time.Time) (bool, string) {
	if !caster.IsAlive {
		return false, fmt.Sprintf("%s cannot cast while dead.", caster.Name)
	}
	if caster.Effects.IsStunned() {
		return false, fmt.Sprintf("%s is stunned and cannot act.", caster.Name)
	}
	if caster.Effects.IsSilenced() {
		return false, fmt.Sprintf("%s is silenced and cannot cast spells.", caster.Name)
	}
	if !knowsSpell(caster, spell.ID) {
		return false, fmt.Sprintf("%s does not know %s.", caster.Name, spell.Name)
	}
	if caster.Level < spell.LevelRequired {
		return false, fmt.Sprintf("%s requires level %d.", spell.Name, spell.LevelRequired)
	}
	if caster.Mana < spell.ManaCost {
		return false, fmt.Sprintf("%s lacks the mana to cast %s.", caster.Name, spell.Name)
	}
	if deadline, onCooldown := caster.SpellCooldowns[spell.ID]; onCooldown && now.Before(deadline) {
		return false, fmt.Sprintf("%s is not ready yet.", spell.Name)
	}
	return true, ""
}

func knowsSpell(caster *entity.Combatant, spellID string) bool {
	for _, id := range caster.UsableSpells {
		if id == spellID {
			return true
		}
	}
	return false
}

// IsHostilePair reports whether a and b are mutually hostile. Callers pass
// their own faction-relation predicate, so magic does not import
// internal/faction.
type IsHostilePair func(a, b *entity.Combatant) bool

// ResolveTargets expands spell.TargetType against the caster and the set
// of combatants present in the caster's room (spec §4.6 step 2). Offensive
// spells reject a friendly or self target.
func ResolveTargets(spell *Spell, caster *entity.Combatant, roomOccupants []*entity.Combatant, hostile IsHostilePair) ([]*entity.Combatant, error) {
	switch spell.TargetType {
	case TargetSelf:
		return []*entity.Combatant{caster}, nil

	case TargetAllEnemies:
		var targets []*entity.Combatant
		for _, c := range roomOccupants {
			if c.InstanceID != caster.InstanceID && hostile(caster, c) {
				targets = append(targets, c)
			}
		}
		return targets, nil

	case TargetEnemy:
		return nil, fmt.Errorf("enemy-targeted spells require an explicit target")

	case TargetFriendly:
		return nil, fmt.Errorf("friendly-targeted spells require an explicit target")

	case TargetItem:
		return nil, fmt.Errorf("item-targeted spells require an explicit item target")
	}
	return nil, fmt.Errorf("unknown target type %q", spell.TargetType)
}

// ValidateExplicitTarget enforces spec §4.6 step 2's rejection rule for an
// explicitly named target: offensive spells reject a friendly/self target,
// and friendly spells reject a hostile target.
func ValidateExplicitTarget(spell *Spell, caster, target *entity.Combatant, hostile IsHostilePair) error {
	isOffensive := spell.HasEffectType(EffectDamage) || spell.HasEffectType(EffectLifeTap)
	if isOffensive {
		if target.InstanceID == caster.InstanceID || !hostile(caster, target) {
			return fmt.Errorf("%s is not a valid target for %s", target.Name, spell.Name)
		}
	}
	if spell.TargetType == TargetFriendly && hostile(caster, target) {
		return fmt.Errorf("%s is hostile and cannot be targeted by %s", target.Name, spell.Name)
	}
	return nil
}

// Cast deducts mana and sets the cooldown for caster (spec §4.6 step 3);
// callers invoke this once per cast regardless of target count.
func Cast(caster *entity.Combatant, spell *Spell, now time.Time) {
	caster.Mana -= spell.ManaCost
	caster.ClampMana()
	if caster.SpellCooldowns == nil {
		caster.SpellCooldowns = make(map[string]time.Time)
	}
	caster.SpellCooldowns[spell.ID] = now.Add(spell.Cooldown)
}

// EffectResult is the outcome of dispatching a single EffectDesc against a
// single target (spec §4.6.1).
type EffectResult struct {
	Value          int
	Message        string
	TargetDefeated bool
}

// ApplyEffect dispatches a single effect descriptor against an entity
// target, following the original engine's apply_spell_effect ordering:
// stat scaling, random variance, level-difference scaling, then the
// per-type application (spec §4.6.1).
func ApplyEffect(caster, target *entity.Combatant, desc EffectDesc, spell *Spell, tuning map[string]config.LevelDiffBucket, src *rng.Source) EffectResult {
	switch desc.Type {
	case EffectDamage:
		return applyDamage(caster, target, desc, tuning, src, false)
	case EffectLifeTap:
		return applyDamage(caster, target, desc, tuning, src, true)
	case EffectHeal:
		return applyHeal(caster, target, desc, tuning, src)
	case EffectCleanse:
		return applyCleanse(target, desc)
	case EffectApplyDOT:
		return applyDOT(caster, target, desc)
	case EffectApplyEffect:
		return applyGenericEffect(caster, target, desc)
	default:
		return EffectResult{Message: fmt.Sprintf("%s has no effect on %s.", spell.Name, target.Name)}
	}
}

// scaledValue implements spec §4.6.1's common value pipeline: base +
// int-scaling + spell power, randomized by SPELL_DAMAGE_VARIATION_FACTOR,
// floored at MinimumSpellEffectValue, then multiplied by the
// level-difference damage/heal modifier.
func scaledValue(caster, target *entity.Combatant, base int, src *rng.Source, tuning map[string]config.LevelDiffBucket) int {
	intel := caster.Effects.EffectiveStat(caster.Stats.Intelligence, "intelligence")
	spellPower := caster.Effects.EffectiveStat(caster.Stats.SpellPower, "spell_power")
	statBonus := max(0, (intel-10)/5) + spellPower
	modified := base + statBonus

	variance := src.UniformVariance(config.SpellDamageVariationFactor)
	statBased := int(float64(modified) * (1 + variance))
	if statBased < config.MinimumSpellEffectValue {
		statBased = config.MinimumSpellEffectValue
	}

	category := combat.LevelDiffCategory(caster.Level, target.Level)
	bucket := combat.LookupBucket(tuning, category)
	final := int(float64(statBased) * bucket.DamageMul)
	if final < config.MinimumSpellEffectValue {
		final = config.MinimumSpellEffectValue
	}
	return final
}

func applyDamage(caster, target *entity.Combatant, desc EffectDesc, tuning map[string]config.LevelDiffBucket, src *rng.Source, isLifeTap bool) EffectResult {
	finalValue := scaledValue(caster, target, desc.Value, src, tuning)

	dealt := combat.TakeDamage(target, finalValue, desc.DamageType)

	result := EffectResult{Value: dealt}
	if dealt == 0 && finalValue > 0 {
		result.Message = fmt.Sprintf("The spell seems to have no effect on %s.", target.Name)
		return result
	}

	if flavor := resistanceFlavor(target, desc.DamageType); flavor != "" {
		result.Message = fmt.Sprintf(flavor, target.Name) + "\n"
	}

	if isLifeTap && dealt > 0 {
		heal := dealt / 2
		caster.Health += heal
		caster.ClampHealth()
		result.Message += fmt.Sprintf("The spell drains %d life from %s and heals %s for %d!", dealt, target.Name, caster.Name, heal)
	} else {
		result.Message += fmt.Sprintf("%s is struck for %d %s damage.", target.Name, dealt, desc.DamageType)
	}

	if !target.IsAlive {
		result.TargetDefeated = true
		result.Message += fmt.Sprintf(" %s is defeated!", target.Name)
	}
	return result
}

func resistanceFlavor(target *entity.Combatant, damageType string) string {
	if damageType == "physical" {
		return ""
	}
	resistance, ok := target.Resistances[damageType]
	if !ok {
		return ""
	}
	var key string
	switch {
	case resistance < 0:
		key = "weakness"
	case resistance >= 50:
		key = "strong_resistance"
	case resistance > 0:
		key = "resistance"
	default:
		return ""
	}
	table, ok := DamageTypeFlavorText[damageType]
	if !ok {
		table = DamageTypeFlavorText["default"]
	}
	return table[key]
}

func applyHeal(caster, target *entity.Combatant, desc EffectDesc, tuning map[string]config.LevelDiffBucket, src *rng.Source) EffectResult {
	finalValue := scaledValue(caster, target, desc.Value, src, tuning)

	before := target.Health
	target.Health += finalValue
	target.ClampHealth()
	actual := target.Health - before

	msg := fmt.Sprintf("%s is healed for %d.", target.Name, actual)
	if caster.InstanceID == target.InstanceID {
		msg = fmt.Sprintf("%s heals themself for %d health!", caster.Name, actual)
	}
	return EffectResult{Value: actual, Message: msg}
}

func applyCleanse(target *entity.Combatant, desc EffectDesc) EffectResult {
	removed := target.Effects.Cleanse(desc.Tags)
	if len(removed) == 0 {
		return EffectResult{Message: fmt.Sprintf("The spell washes over %s, but finds nothing to cleanse.", target.Name)}
	}
	return EffectResult{Value: 1, Message: fmt.Sprintf("%s is cleansed of %d afflictions.", target.Name, len(removed))}
}

func applyDOT(caster, target *entity.Combatant, desc EffectDesc) EffectResult {
	tags := make(map[string]struct{}, len(desc.Tags))
	for _, t := range desc.Tags {
		tags[t] = struct{}{}
	}
	target.Effects.Apply(&effect.Effect{
		Name:          desc.EffectName,
		Kind:          effect.KindDOT,
		BaseDuration:  desc.BaseDuration,
		TickInterval:  desc.TickInterval,
		DamagePerTick: desc.Value,
		DamageType:    desc.DamageType,
		SourceID:      caster.InstanceID,
		Tags:          tags,
	})
	return EffectResult{Value: 1, Message: fmt.Sprintf("%s is afflicted by %s.", target.Name, desc.EffectName)}
}

func applyGenericEffect(caster, target *entity.Combatant, desc EffectDesc) EffectResult {
	e := &effect.Effect{
		BaseDuration: desc.BaseDuration,
		SourceID:     caster.InstanceID,
	}
	switch {
	case desc.StatName != "":
		e.Name = "stat_mod:" + desc.StatName
		e.Kind = effect.KindStatMod
		e.StatModifiers = map[string]int{desc.StatName: desc.StatDelta}
	case desc.TickInterval > 0:
		e.Name = desc.EffectName
		e.Kind = effect.KindHOT
		e.TickInterval = desc.TickInterval
		e.HealPerTick = desc.Value
	default:
		e.Name = desc.EffectName
		e.Kind = effect.KindControl
	}
	target.Effects.Apply(e)
	return EffectResult{Value: 1, Message: fmt.Sprintf("%s is affected by %s.", target.Name, e.Name)}
}

// ApplyItemEffect dispatches the item/container-targeted effect types
// (spec §4.6.1): lock, unlock and remove_curse on a standalone item.
func ApplyItemEffect(item *entity.Item, desc EffectDesc) (int, string) {
	switch desc.Type {
	case EffectUnlock:
		if item.Subtype != entity.SubtypeContainer {
			return 0, fmt.Sprintf("The spell has no effect on %s.", item.Name)
		}
		item.Properties["locked"] = false
		return 1, fmt.Sprintf("The %s unlocks with a click.", item.Name)

	case EffectLock:
		if item.Subtype != entity.SubtypeContainer {
			return 0, fmt.Sprintf("The spell has no effect on %s.", item.Name)
		}
		item.Properties["locked"] = true
		item.Properties["is_open"] = false
		return 1, fmt.Sprintf("The %s locks shut.", item.Name)

	case EffectRemoveCurse:
		if !item.Cursed() {
			return 0, fmt.Sprintf("The %s is not cursed.", item.Name)
		}
		item.Properties["cursed"] = false
		return 1, fmt.Sprintf("The dark aura surrounding the %s dissipates.", item.Name)
	}
	return 0, fmt.Sprintf("The spell has no effect on %s.", item.Name)
}

// RemoveCurseFromEquipment sweeps every equipped item of target, clearing
// cursed flags (spec §4.6.1's entity-targeted remove_curse).
func RemoveCurseFromEquipment(equipment map[string]*entity.Item) (int, string) {
	cleansed := 0
	for _, item := range equipment {
		if item != nil && item.Cursed() {
			item.Properties["cursed"] = false
			cleansed++
		}
	}
	if cleansed == 0 {
		return 0, "No cursed items were found."
	}
	return cleansed, fmt.Sprintf("A holy light washes over the target, cleansing %d cursed items.", cleansed)
}

// NPCShouldRerouteToAttack implements spec §4.6's NPC casting-pipeline
// rule: an NPC's offensive cast re-routes to a physical attack when the
// nominal target validity is inverted (e.g. a "friendly" spell aimed at an
// actively hostile target).
func NPCShouldRerouteToAttack(spell *Spell, casterHostileToTarget bool) bool {
	isOffensive := spell.HasEffectType(EffectDamage) || spell.HasEffectType(EffectLifeTap)
	if spell.TargetType == TargetFriendly && casterHostileToTarget {
		return true
	}
	if isOffensive && !casterHostileToTarget {
		return true
	}
	return false
}
