package magic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/effect"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/magic"
	"github.com/voidengine/simcore/internal/rng"
)

func newCaster(name string) *entity.Combatant {
	npc := entity.NewNPC("tmpl-"+name, name)
	npc.Level = 10
	npc.Mana, npc.MaxMana = 50, 50
	npc.Health, npc.MaxHealth = 100, 100
	npc.UsableSpells = []string{"firebolt"}
	return &npc.Combatant
}

func newTarget(name string) *entity.Combatant {
	npc := entity.NewNPC("tmpl-"+name, name)
	npc.Level = 10
	npc.Health, npc.MaxHealth = 100, 100
	return &npc.Combatant
}

func firebolt() *magic.Spell {
	s := magic.NewSpell("firebolt", "Firebolt", 10, 2*time.Second, magic.TargetEnemy, 1,
		magic.EffectDesc{Type: magic.EffectDamage, Value: 10, DamageType: "fire"})
	return s
}

func TestCanCast_RejectsWhenSilenced(t *testing.T) {
	caster := newCaster("mage")
	caster.Effects.Apply(&effect.Effect{Name: "Silenced", Kind: effect.KindControl, BaseDuration: time.Second})

	ok, msg := magic.CanCast(caster, firebolt(), time.Now())
	require.False(t, ok)
	require.Contains(t, msg, "silenced")
}

func TestCanCast_RejectsUnknownSpell(t *testing.T) {
	caster := newCaster("mage")
	caster.UsableSpells = nil
	ok, _ := magic.CanCast(caster, firebolt(), time.Now())
	require.False(t, ok)
}

func TestCast_DeductsManaAndSetsCooldown(t *testing.T) {
	caster := newCaster("mage")
	now := time.Now()
	spell := firebolt()
	magic.Cast(caster, spell, now)

	require.Equal(t, 40, caster.Mana)
	ok, _ := magic.CanCast(caster, spell, now)
	require.False(t, ok, "should be on cooldown immediately after casting")
}

func TestApplyEffect_DamageScalesAndAppliesResistance(t *testing.T) {
	caster := newCaster("mage")
	target := newTarget("golem")
	target.Resistances["fire"] = 50

	src := rng.New(42)
	tuning := config.DefaultTuning().LevelDiff
	result := magic.ApplyEffect(caster, target, magic.EffectDesc{Type: magic.EffectDamage, Value: 20, DamageType: "fire"}, firebolt(), tuning, src)

	require.Greater(t, result.Value, 0)
	require.Less(t, target.Health, target.MaxHealth)
}

func TestApplyEffect_LifeTapHealsCaster(t *testing.T) {
	caster := newCaster("warlock")
	caster.Health = 50
	target := newTarget("victim")

	src := rng.New(7)
	tuning := config.DefaultTuning().LevelDiff
	result := magic.ApplyEffect(caster, target, magic.EffectDesc{Type: magic.EffectLifeTap, Value: 20, DamageType: "shadow"}, firebolt(), tuning, src)

	require.Greater(t, result.Value, 0)
	require.Greater(t, caster.Health, 50)
}

func TestApplyEffect_HealNeverOverheals(t *testing.T) {
	caster := newCaster("priest")
	target := newTarget("ally")
	target.Health = 95

	src := rng.New(3)
	tuning := config.DefaultTuning().LevelDiff
	magic.ApplyEffect(caster, target, magic.EffectDesc{Type: magic.EffectHeal, Value: 50}, firebolt(), tuning, src)

	require.LessOrEqual(t, target.Health, target.MaxHealth)
}

func TestApplyEffect_CleanseRemovesTaggedEffects(t *testing.T) {
	caster := newCaster("priest")
	target := newTarget("ally")
	target.Effects.Apply(&effect.Effect{Name: "Poison", Kind: effect.KindDOT, BaseDuration: time.Second, Tags: map[string]struct{}{"poison": {}}})

	result := magic.ApplyEffect(caster, target, magic.EffectDesc{Type: magic.EffectCleanse}, firebolt(), nil, nil)
	require.Equal(t, 1, result.Value)
	require.False(t, target.Effects.Has("Poison"))
}

func TestApplyEffect_ApplyDOTRefreshesOnRecast(t *testing.T) {
	caster := newCaster("mage")
	target := newTarget("victim")
	desc := magic.EffectDesc{Type: magic.EffectApplyDOT, EffectName: "Burn", Value: 5, TickInterval: time.Second, BaseDuration: 10 * time.Second, DamageType: "fire"}

	magic.ApplyEffect(caster, target, desc, firebolt(), nil, nil)
	require.True(t, target.Effects.Has("Burn"))
}

func TestApplyItemEffect_UnlockAndLock(t *testing.T) {
	item := entity.NewItem("chest-1", "Old Chest", entity.SubtypeContainer)
	item.Properties["locked"] = true

	value, _ := magic.ApplyItemEffect(item, magic.EffectDesc{Type: magic.EffectUnlock})
	require.Equal(t, 1, value)
	require.False(t, item.Locked())

	magic.ApplyItemEffect(item, magic.EffectDesc{Type: magic.EffectLock})
	require.True(t, item.Locked())
	require.False(t, item.IsOpen())
}

func TestApplyItemEffect_RemoveCurse(t *testing.T) {
	item := entity.NewItem("ring-1", "Ring of Woe", entity.SubtypeGeneric)
	item.Properties["cursed"] = true

	value, _ := magic.ApplyItemEffect(item, magic.EffectDesc{Type: magic.EffectRemoveCurse})
	require.Equal(t, 1, value)
	require.False(t, item.Cursed())
}

func TestParseEffectDescriptor_DOT(t *testing.T) {
	desc, err := magic.ParseEffectDescriptor("dot poison 5/3s for 12s")
	require.NoError(t, err)
	require.Equal(t, magic.EffectApplyDOT, desc.Type)
	require.Equal(t, "poison", desc.EffectName)
	require.Equal(t, 5, desc.Value)
	require.Equal(t, 3*time.Second, desc.TickInterval)
	require.Equal(t, 12*time.Second, desc.BaseDuration)
}

func TestParseEffectDescriptor_StatMod(t *testing.T) {
	desc, err := magic.ParseEffectDescriptor("stat_mod strength -5 for 8s")
	require.NoError(t, err)
	require.Equal(t, "strength", desc.StatName)
	require.Equal(t, -5, desc.StatDelta)
	require.Equal(t, 8*time.Second, desc.BaseDuration)
}

func TestParseEffectDescriptor_Damage(t *testing.T) {
	desc, err := magic.ParseEffectDescriptor("damage 12 fire")
	require.NoError(t, err)
	require.Equal(t, magic.EffectDamage, desc.Type)
	require.Equal(t, 12, desc.Value)
	require.Equal(t, "fire", desc.DamageType)
}

func TestNPCShouldRerouteToAttack(t *testing.T) {
	offensive := firebolt()
	require.False(t, magic.NPCShouldRerouteToAttack(offensive, true))
	require.True(t, magic.NPCShouldRerouteToAttack(offensive, false))
}
