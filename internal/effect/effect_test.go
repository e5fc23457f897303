package effect_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/effect"
)

func TestApply_RefreshesNonStacking(t *testing.T) {
	b := effect.NewBearer()
	b.Apply(&effect.Effect{Name: "Poison", Kind: effect.KindDOT, BaseDuration: 10 * time.Second, TickInterval: time.Second, DamagePerTick: 5, SourceID: "goblin"})
	b.Tick(4 * time.Second)

	e, ok := b.Get("Poison")
	require.True(t, ok)
	require.Equal(t, 6*time.Second, e.DurationRemaining)

	b.Apply(&effect.Effect{Name: "Poison", Kind: effect.KindDOT, BaseDuration: 10 * time.Second, TickInterval: time.Second, DamagePerTick: 7})
	e, _ = b.Get("Poison")
	require.Equal(t, 10*time.Second, e.DurationRemaining)
	require.Equal(t, "goblin", e.SourceID, "refresh keeps prior source credit when new apply has none")
}

func TestTick_ExpiresAndClearsStatMod(t *testing.T) {
	b := effect.NewBearer()
	b.Apply(&effect.Effect{Name: "Weaken", Kind: effect.KindStatMod, BaseDuration: time.Second, StatModifiers: map[string]int{"strength": -5}})

	require.Equal(t, 5, b.EffectiveStat(10, "strength"))

	b.Tick(2 * time.Second)
	require.False(t, b.Has("Weaken"))
	require.Equal(t, 10, b.EffectiveStat(10, "strength"))
}

func TestTick_DOTFiresOnInterval(t *testing.T) {
	b := effect.NewBearer()
	b.Apply(&effect.Effect{Name: "Burn", Kind: effect.KindDOT, BaseDuration: 10 * time.Second, TickInterval: 3 * time.Second, DamagePerTick: 4, DamageType: "fire", SourceID: "mage"})

	results := b.Tick(2 * time.Second)
	require.Empty(t, results)

	results = b.Tick(2 * time.Second)
	require.Len(t, results, 1)
	require.Equal(t, 4, results[0].Damage)
	require.Equal(t, "fire", results[0].DamageType)
	require.Equal(t, "mage", results[0].SourceID)
}

func TestStunAndSilenceAreOrthogonal(t *testing.T) {
	b := effect.NewBearer()
	b.Apply(&effect.Effect{Name: "Silenced", Kind: effect.KindControl, BaseDuration: time.Second})
	require.True(t, b.IsSilenced())
	require.False(t, b.IsStunned())
}

func TestCleanseDefaultTags(t *testing.T) {
	b := effect.NewBearer()
	poison := &effect.Effect{Name: "Poison", Kind: effect.KindDOT, BaseDuration: time.Second, Tags: map[string]struct{}{"poison": {}}}
	b.Apply(poison)
	removed := b.Cleanse(nil)
	require.Len(t, removed, 1)
	require.False(t, b.Has("Poison"))
}

func TestDieClearsAllEffects(t *testing.T) {
	b := effect.NewBearer()
	b.Apply(&effect.Effect{Name: "Haste", Kind: effect.KindStatMod, BaseDuration: time.Minute, StatModifiers: map[string]int{"agility": 3}})
	b.Clear()
	require.Empty(t, b.All())
}

func TestBearer_JSONRoundTrip(t *testing.T) {
	b := effect.NewBearer()
	b.Apply(&effect.Effect{
		Name: "Poison", Kind: effect.KindDOT, BaseDuration: 10 * time.Second,
		TickInterval: time.Second, DamagePerTick: 5,
		Tags: map[string]struct{}{"poison": {}}, SourceID: "goblin",
	})
	b.Tick(4 * time.Second)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	restored := effect.NewBearer()
	require.NoError(t, json.Unmarshal(data, restored))

	e, ok := restored.Get("Poison")
	require.True(t, ok)
	require.Equal(t, 6*time.Second, e.DurationRemaining)
	require.True(t, e.HasTag("poison"))
	require.Equal(t, "goblin", e.SourceID)
}
