// Package effect implements the status-effect lifecycle (apply/tick/expire)
// described in spec §4.4: damage-over-time, heal-over-time, stat modifiers
// and control effects (Stun, Silence), refreshed-not-stacked by name.
package effect

import (
	"encoding/json"
	"time"
)

// Kind enumerates the effect categories from spec §4.4.
type Kind string

const (
	KindDOT     Kind = "dot"
	KindHOT     Kind = "hot"
	KindStatMod Kind = "stat_mod"
	KindControl Kind = "control"
)

// Effect is a single timed modifier or damage/heal-over-time record
// attached to an entity.
type Effect struct {
	Name     string
	Kind     Kind
	Tags     map[string]struct{}

	BaseDuration      time.Duration
	DurationRemaining time.Duration
	TickInterval      time.Duration
	lastTick          time.Duration // elapsed sim-time at last tick, relative to apply

	DamagePerTick int
	HealPerTick   int
	DamageType    string

	StatModifiers map[string]int // stat name -> delta, for KindStatMod

	SourceID string // for death-attribution on DOT kills
}

// HasTag reports whether the effect carries the given tag.
func (e *Effect) HasTag(tag string) bool {
	_, ok := e.Tags[tag]
	return ok
}

// Bearer holds the set of active effects attached to one entity, keyed by
// name for the non-stacking-by-name rule (spec §4.4 step 1).
type Bearer struct {
	active map[string]*Effect
	elapsed time.Duration // total sim-time elapsed since this bearer started accumulating ticks
}

// NewBearer creates an empty effect set.
func NewBearer() *Bearer {
	return &Bearer{active: make(map[string]*Effect)}
}

// Apply adds a new effect, or refreshes an existing effect of the same
// name (reset DurationRemaining to BaseDuration, keep the prior SourceID
// if the new one is unset) per spec §4.4 step 1.
func (b *Bearer) Apply(e *Effect) {
	if e.Tags == nil {
		e.Tags = make(map[string]struct{})
	}
	if existing, ok := b.active[e.Name]; ok {
		existing.DurationRemaining = existing.BaseDuration
		existing.lastTick = b.elapsed
		if e.SourceID != "" {
			existing.SourceID = e.SourceID
		}
		existing.DamagePerTick = e.DamagePerTick
		existing.HealPerTick = e.HealPerTick
		existing.StatModifiers = e.StatModifiers
		return
	}
	e.DurationRemaining = e.BaseDuration
	e.lastTick = b.elapsed
	b.active[e.Name] = e
}

// Get returns the active effect with the given name, if any.
func (b *Bearer) Get(name string) (*Effect, bool) {
	e, ok := b.active[name]
	return e, ok
}

// Has reports whether an effect with the given name is active.
func (b *Bearer) Has(name string) bool {
	_, ok := b.active[name]
	return ok
}

// HasTag reports whether any active effect carries the given tag.
func (b *Bearer) HasTag(tag string) bool {
	for _, e := range b.active {
		if e.HasTag(tag) {
			return true
		}
	}
	return false
}

// IsStunned reports whether the bearer carries a Stun control effect
// (forbids both attack and cast, spec §4.4 step 2 / §8 boundary behavior).
func (b *Bearer) IsStunned() bool {
	return b.Has("Stun")
}

// IsSilenced reports whether the bearer cannot cast (Silenced name or
// "silence" tag forbids casting but permits attacking).
func (b *Bearer) IsSilenced() bool {
	return b.Has("Silenced") || b.HasTag("silence")
}

// TickResult is emitted per DOT/HOT application during Tick.
type TickResult struct {
	EffectName string
	Damage     int
	Heal       int
	DamageType string
	SourceID   string
}

// Tick advances every active effect by dt, applying DOT/HOT ticks whose
// interval has elapsed, and removing expired effects (spec §4.4 steps 2-3).
func (b *Bearer) Tick(dt time.Duration) []TickResult {
	b.elapsed += dt
	var results []TickResult

	for name, e := range b.active {
		e.DurationRemaining -= dt

		switch e.Kind {
		case KindDOT:
			if b.elapsed-e.lastTick >= e.TickInterval {
				e.lastTick = b.elapsed
				results = append(results, TickResult{
					EffectName: name, Damage: e.DamagePerTick, DamageType: e.DamageType, SourceID: e.SourceID,
				})
			}
		case KindHOT:
			if b.elapsed-e.lastTick >= e.TickInterval {
				e.lastTick = b.elapsed
				results = append(results, TickResult{EffectName: name, Heal: e.HealPerTick})
			}
		case KindStatMod, KindControl:
			// No tick action; consulted via EffectiveStat/control checks.
		}

		if e.DurationRemaining <= 0 {
			delete(b.active, name)
		}
	}

	return results
}

// Clear removes all active effects, called on entity death (invariant §3.5,
// §8's testable property that active_effects is empty after die()).
func (b *Bearer) Clear() {
	b.active = make(map[string]*Effect)
}

// EffectiveStat returns base plus the sum of all active stat_mod modifiers
// for the named stat (spec §4.4 step 2).
func (b *Bearer) EffectiveStat(base int, statName string) int {
	total := base
	for _, e := range b.active {
		if e.Kind == KindStatMod {
			total += e.StatModifiers[statName]
		}
	}
	return total
}

// EffectiveAttackCooldown derives an attack cooldown from effective agility:
// higher agility shortens the cooldown, floored at 500ms.
func (b *Bearer) EffectiveAttackCooldown(baseCooldown time.Duration, baseAgility int) time.Duration {
	agility := b.EffectiveStat(baseAgility, "agility")
	factor := 1.0 - (float64(agility-baseAgility) * 0.01)
	if factor < 0.5 {
		factor = 0.5
	}
	adjusted := time.Duration(float64(baseCooldown) * factor)
	if adjusted < 500*time.Millisecond {
		adjusted = 500 * time.Millisecond
	}
	return adjusted
}

// RemoveByTag removes every active effect carrying the given tag and
// returns the removed set (spec §4.4's remove_effects_by_tag).
func (b *Bearer) RemoveByTag(tag string) []*Effect {
	var removed []*Effect
	for name, e := range b.active {
		if e.HasTag(tag) {
			removed = append(removed, e)
			delete(b.active, name)
		}
	}
	return removed
}

// DefaultCleanseTags is the default tag set removed by cleanse (spec §4.4).
var DefaultCleanseTags = []string{"poison", "disease", "curse"}

// Cleanse removes effects whose tags intersect the given tag set, defaulting
// to DefaultCleanseTags when tags is empty.
func (b *Bearer) Cleanse(tags []string) []*Effect {
	if len(tags) == 0 {
		tags = DefaultCleanseTags
	}
	var removed []*Effect
	for name, e := range b.active {
		for _, t := range tags {
			if e.HasTag(t) {
				removed = append(removed, e)
				delete(b.active, name)
				break
			}
		}
	}
	return removed
}

// All returns every active effect, for serialization.
func (b *Bearer) All() []*Effect {
	out := make([]*Effect, 0, len(b.active))
	for _, e := range b.active {
		out = append(out, e)
	}
	return out
}

// RestoreAll replaces the bearer's active effect set verbatim, used when
// rehydrating a snapshot. lastTick resets to zero since it is relative
// elapsed time, not an absolute deadline (spec §8's round-trip clause
// excludes this kind of transient bookkeeping).
func (b *Bearer) RestoreAll(effects []*Effect) {
	b.active = make(map[string]*Effect, len(effects))
	for _, e := range effects {
		if e.Tags == nil {
			e.Tags = make(map[string]struct{})
		}
		b.active[e.Name] = e
	}
}

type bearerJSON struct {
	Active []*Effect `json:"active"`
}

// MarshalJSON exposes the bearer's active effects despite its unexported
// storage, so an entity carrying one round-trips through plain
// encoding/json without a parallel snapshot-only mirror type.
func (b *Bearer) MarshalJSON() ([]byte, error) {
	return json.Marshal(bearerJSON{Active: b.All()})
}

// UnmarshalJSON is MarshalJSON's inverse.
func (b *Bearer) UnmarshalJSON(data []byte) error {
	var aux bearerJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.RestoreAll(aux.Active)
	return nil
}
