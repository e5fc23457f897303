package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/combat"
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/effect"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
)

func newCombatant(name, faction string, level, agility, defense int) *entity.Combatant {
	npc := entity.NewNPC("tmpl-"+name, name)
	npc.Faction = faction
	npc.Level = level
	npc.Stats.Agility = agility
	npc.Stats.Defense = defense
	npc.Health, npc.MaxHealth = 100, 100
	return &npc.Combatant
}

func TestLevelDiffCategory_LowLevelTable(t *testing.T) {
	require.Equal(t, combat.BucketYellow, combat.LevelDiffCategory(3, 3))
	require.Equal(t, combat.BucketOrange, combat.LevelDiffCategory(3, 4))
	require.Equal(t, combat.BucketPurple, combat.LevelDiffCategory(3, 6))
	require.Equal(t, combat.BucketGreen, combat.LevelDiffCategory(3, 1))
}

func TestHitChance_BlindHardCaps(t *testing.T) {
	attacker := newCombatant("attacker", "player", 10, 10, 0)
	defender := newCombatant("defender", "", 10, 10, 0)
	attacker.Effects.Apply(&effect.Effect{Name: "Blind", Kind: effect.KindControl, BaseDuration: time.Second})

	chance := combat.HitChance(attacker, defender, config.DefaultTuning().LevelDiff)
	require.Equal(t, 0.20, chance)
}

func TestHitChance_ClampedToBounds(t *testing.T) {
	attacker := newCombatant("attacker", "player", 50, 1000, 0)
	defender := newCombatant("defender", "", 1, 0, 0)
	chance := combat.HitChance(attacker, defender, config.DefaultTuning().LevelDiff)
	require.LessOrEqual(t, chance, config.MaxHitChance)
	require.GreaterOrEqual(t, chance, config.MinHitChance)
}

func TestTakeDamage_FullResistanceZeroesDamage(t *testing.T) {
	defender := newCombatant("defender", "", 5, 5, 0)
	defender.Resistances["physical"] = 100
	dealt := combat.TakeDamage(defender, 50, "physical")
	require.Equal(t, 0, dealt)
	require.Equal(t, 100, defender.Health)
}

func TestTakeDamage_FloorsAtMinimumUnlessFullyResisted(t *testing.T) {
	defender := newCombatant("defender", "", 5, 5, 100)
	dealt := combat.TakeDamage(defender, 5, "physical")
	require.Equal(t, config.MinimumDamageTaken, dealt)
}

func TestTakeDamage_DefeatSetsNotAlive(t *testing.T) {
	defender := newCombatant("defender", "", 5, 5, 0)
	defender.Health, defender.MaxHealth = 5, 5
	combat.TakeDamage(defender, 50, "physical")
	require.False(t, defender.IsAlive)
	require.Equal(t, 0, defender.Health)
}

func TestExecuteAttack_VampirismHealsAttacker(t *testing.T) {
	attacker := newCombatant("attacker", "player", 10, 10, 0)
	attacker.Health, attacker.MaxHealth = 50, 100
	attacker.Effects.Apply(&effect.Effect{Name: "Vampirism", Kind: effect.KindStatMod, BaseDuration: time.Minute})
	defender := newCombatant("defender", "", 10, 0, 0)

	src := rng.New(1)
	tuning := config.DefaultTuning().LevelDiff
	var result combat.AttackResult
	for i := 0; i < 50; i++ {
		result = combat.ExecuteAttack(attacker, defender, 20, "fists", tuning, src)
		if result.IsHit {
			break
		}
	}
	require.True(t, result.IsHit)
	require.Greater(t, result.Damage, 0)
	require.Equal(t, result.Damage/2, result.VampiricHeal)
	require.Greater(t, attacker.Health, 50)
}

func TestCalculateXPGain_ScalesWithBucket(t *testing.T) {
	tuning := config.DefaultTuning().LevelDiff
	low := combat.CalculateXPGain(20, 5, 100, tuning)
	even := combat.CalculateXPGain(5, 5, 100, tuning)
	require.Less(t, low, even, "killing a much lower level target grants less xp")
}

func TestTryFireSpecialAbility_EmptyNeverFires(t *testing.T) {
	src := rng.New(2)
	_, ok := combat.TryFireSpecialAbility(nil, src)
	require.False(t, ok)
}

func TestExecuteSpecialAttack_ScalesDamageAndAppendsFlavor(t *testing.T) {
	tuning := config.DefaultTuning().LevelDiff
	attacker := newCombatant("Ogre", "hostile", 5, 10, 0)
	attacker.Stats.Strength = 20
	defenderBaseline := newCombatant("Hero", "player", 5, 10, 0)
	defenderBaseline.Health, defenderBaseline.MaxHealth = 1000, 1000
	defenderSpecial := newCombatant("Hero", "player", 5, 10, 0)
	defenderSpecial.Health, defenderSpecial.MaxHealth = 1000, 1000

	baseline := combat.ExecuteAttack(attacker, defenderBaseline, attacker.Stats.Strength, "fists", tuning, rng.New(9))
	require.True(t, baseline.IsHit)

	result := combat.ExecuteSpecialAttack(attacker, defenderSpecial, attacker.Stats.Strength, "Smash", tuning, rng.New(9), 3.0, "the ground shatters!")
	require.True(t, result.IsHit)
	require.Greater(t, result.Damage, baseline.Damage)
	require.Contains(t, result.Message, "the ground shatters!")
}

func TestRollLoot_GuaranteedEntryDropsWithinRange(t *testing.T) {
	table := []entity.LootEntry{
		{ItemTemplateID: "gold_coin", Chance: 1.0, MinQuantity: 2, MaxQuantity: 5},
		{ItemTemplateID: "rare_gem", Chance: 0.0, MinQuantity: 1, MaxQuantity: 1},
	}

	drops := combat.RollLoot(table, rng.New(42))

	qty, ok := drops["gold_coin"]
	require.True(t, ok)
	require.GreaterOrEqual(t, qty, 2)
	require.LessOrEqual(t, qty, 5)
	require.NotContains(t, drops, "rare_gem")
}

func TestRollLoot_EmptyTableDropsNothing(t *testing.T) {
	drops := combat.RollLoot(nil, rng.New(1))
	require.Empty(t, drops)
}
