// Package scripting evaluates the small Lua snippets content authors may
// attach to a special ability instead of a fixed damage multiplier (spec
// §4.5, SPEC_FULL's "Ability scripting hook"). Grounded on the teacher
// pack's `rdtc8822-debug-L1JGO-Whale` `internal/scripting/engine.go`,
// which wraps gopher-lua the same way: pack Go data into Lua tables, call
// into the script, read a result table back, and degrade to a safe
// default on any error.
package scripting

import (
	"context"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/logging"
)

// ScriptTimeout bounds how long a single ability script may run before it
// is aborted and the fixed-constant fallback is used (spec §7's
// degrade-gracefully rule).
const ScriptTimeout = 50 * time.Millisecond

// CombatantSnapshot is the read-only stat view passed into a script; it
// never exposes live entity pointers so a script cannot mutate world
// state, only compute a result.
type CombatantSnapshot struct {
	Level        int
	Strength     int
	Agility      int
	Intelligence int
	SpellPower   int
	Defense      int
	Health       int
	MaxHealth    int
}

// AbilityResult is what a script (or the fixed-constant fallback) yields.
type AbilityResult struct {
	Multiplier float64
	Flavor     string
}

// Engine evaluates ability scripts. Unlike the teacher's single
// long-lived VM loading script files once at startup, content here
// supplies one inline snippet per ability, so Engine compiles and runs a
// fresh, disposable *lua.LState per call — simpler to sandbox correctly
// than sharing global state across unrelated abilities.
type Engine struct{}

// NewEngine returns a ready-to-use Engine. It holds no state; it exists
// as a receiver so future caching (e.g. of compiled chunks) has a home.
func NewEngine() *Engine {
	return &Engine{}
}

func snapshotTable(vm *lua.LState, s CombatantSnapshot) *lua.LTable {
	t := vm.NewTable()
	t.RawSetString("level", lua.LNumber(s.Level))
	t.RawSetString("strength", lua.LNumber(s.Strength))
	t.RawSetString("agility", lua.LNumber(s.Agility))
	t.RawSetString("intelligence", lua.LNumber(s.Intelligence))
	t.RawSetString("spell_power", lua.LNumber(s.SpellPower))
	t.RawSetString("defense", lua.LNumber(s.Defense))
	t.RawSetString("health", lua.LNumber(s.Health))
	t.RawSetString("max_health", lua.LNumber(s.MaxHealth))
	return t
}

// EvaluateAbility runs script with `attacker` and `target` Lua globals set
// from the given snapshots. The script's last statement must be `return
// {multiplier = <number>, flavor = "<string>"}`. Any compile error, runtime
// error, timeout, or malformed/non-positive result falls back to fallback.
func (e *Engine) EvaluateAbility(ctx context.Context, script string, attacker, target CombatantSnapshot, fallback AbilityResult) AbilityResult {
	ctx, cancel := context.WithTimeout(ctx, ScriptTimeout)
	defer cancel()

	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer vm.Close()
	lua.OpenBase(vm)
	lua.OpenMath(vm)
	vm.SetContext(ctx)

	vm.SetGlobal("attacker", snapshotTable(vm, attacker))
	vm.SetGlobal("target", snapshotTable(vm, target))

	if err := vm.DoString(script); err != nil {
		logging.Warn().Err(err).Msg("ability script failed, using fixed multiplier")
		return fallback
	}

	ret := vm.Get(-1)
	vm.Pop(1)

	result, ok := ret.(*lua.LTable)
	if !ok {
		logging.Warn().Msg("ability script returned no table, using fixed multiplier")
		return fallback
	}

	multiplier := float64(lua.LVAsNumber(result.RawGetString("multiplier")))
	if multiplier <= 0 {
		return fallback
	}

	flavor := lua.LVAsString(result.RawGetString("flavor"))
	if flavor == "" {
		flavor = fallback.Flavor
	}
	return AbilityResult{Multiplier: multiplier, Flavor: flavor}
}

// ResolveAbility picks the script path when ability declares one,
// otherwise returns its fixed DamageMultiplier/FlavorMessage directly.
func (e *Engine) ResolveAbility(ability entity.SpecialAbility, attacker, target CombatantSnapshot) AbilityResult {
	fallback := AbilityResult{Multiplier: ability.DamageMultiplier, Flavor: ability.FlavorMessage}
	if ability.LuaScript == "" {
		return fallback
	}
	return e.EvaluateAbility(context.Background(), ability.LuaScript, attacker, target, fallback)
}

// SnapshotOf builds a CombatantSnapshot from a live combatant.
func SnapshotOf(c *entity.Combatant) CombatantSnapshot {
	return CombatantSnapshot{
		Level:        c.Level,
		Strength:     c.Stats.Strength,
		Agility:      c.Stats.Agility,
		Intelligence: c.Stats.Intelligence,
		SpellPower:   c.Stats.SpellPower,
		Defense:      c.Stats.Defense,
		Health:       c.Health,
		MaxHealth:    c.MaxHealth,
	}
}
