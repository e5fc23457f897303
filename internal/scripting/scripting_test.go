package scripting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/scripting"
)

func TestResolveAbility_NoScriptUsesFixedMultiplier(t *testing.T) {
	e := scripting.NewEngine()
	ability := entity.SpecialAbility{Name: "Power Strike", DamageMultiplier: 2.0, FlavorMessage: "smashes"}

	result := e.ResolveAbility(ability, scripting.CombatantSnapshot{}, scripting.CombatantSnapshot{})
	require.Equal(t, 2.0, result.Multiplier)
	require.Equal(t, "smashes", result.Flavor)
}

func TestEvaluateAbility_ScriptComputesMultiplierFromStats(t *testing.T) {
	e := scripting.NewEngine()
	script := `return {multiplier = attacker.strength / target.defense, flavor = "crushes"}`
	attacker := scripting.CombatantSnapshot{Strength: 20}
	target := scripting.CombatantSnapshot{Defense: 10}
	fallback := scripting.AbilityResult{Multiplier: 1.0, Flavor: "hits"}

	result := e.EvaluateAbility(context.Background(), script, attacker, target, fallback)
	require.Equal(t, 2.0, result.Multiplier)
	require.Equal(t, "crushes", result.Flavor)
}

func TestEvaluateAbility_SyntaxErrorFallsBack(t *testing.T) {
	e := scripting.NewEngine()
	fallback := scripting.AbilityResult{Multiplier: 1.5, Flavor: "hits"}

	result := e.EvaluateAbility(context.Background(), "this is not lua {{{", scripting.CombatantSnapshot{}, scripting.CombatantSnapshot{}, fallback)
	require.Equal(t, fallback, result)
}

func TestEvaluateAbility_NonTableResultFallsBack(t *testing.T) {
	e := scripting.NewEngine()
	fallback := scripting.AbilityResult{Multiplier: 1.5, Flavor: "hits"}

	result := e.EvaluateAbility(context.Background(), `return 42`, scripting.CombatantSnapshot{}, scripting.CombatantSnapshot{}, fallback)
	require.Equal(t, fallback, result)
}

func TestEvaluateAbility_NonPositiveMultiplierFallsBack(t *testing.T) {
	e := scripting.NewEngine()
	fallback := scripting.AbilityResult{Multiplier: 1.5, Flavor: "hits"}

	result := e.EvaluateAbility(context.Background(), `return {multiplier = 0, flavor = "whiff"}`, scripting.CombatantSnapshot{}, scripting.CombatantSnapshot{}, fallback)
	require.Equal(t, fallback, result)
}

func TestEvaluateAbility_InfiniteLoopTimesOut(t *testing.T) {
	e := scripting.NewEngine()
	fallback := scripting.AbilityResult{Multiplier: 1.5, Flavor: "hits"}

	result := e.EvaluateAbility(context.Background(), `while true do end`, scripting.CombatantSnapshot{}, scripting.CombatantSnapshot{}, fallback)
	require.Equal(t, fallback, result)
}

func TestSnapshotOf_CopiesCombatantStats(t *testing.T) {
	player := entity.NewPlayer("Adept")
	player.Stats = entity.Stats{Strength: 12, Agility: 8, Intelligence: 15, SpellPower: 20, Defense: 5}
	player.Health, player.MaxHealth = 40, 60

	snap := scripting.SnapshotOf(&player.Combatant)
	require.Equal(t, 12, snap.Strength)
	require.Equal(t, 20, snap.SpellPower)
	require.Equal(t, 40, snap.Health)
	require.Equal(t, 60, snap.MaxHealth)
}
