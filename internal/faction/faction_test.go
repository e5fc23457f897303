package faction_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/faction"
)

func TestBaseRelation_KnownPairs(t *testing.T) {
	require.Negative(t, faction.BaseRelation(faction.Hostile, faction.Player))
	require.Positive(t, faction.BaseRelation(faction.Hostile, faction.Hostile))
	require.Positive(t, faction.BaseRelation(faction.Player, faction.Minion))
}

func TestBaseRelation_UnknownFactionDefaultsNeutral(t *testing.T) {
	require.Zero(t, faction.BaseRelation("wandering_villager", faction.Player))
	require.Zero(t, faction.BaseRelation(faction.Hostile, "wandering_villager"))
}

func TestRelationToPlayer_AddsReputation(t *testing.T) {
	rep := map[string]int{faction.Hostile: 150}
	require.False(t, faction.IsHostileToPlayer(faction.Hostile, rep))

	rep = map[string]int{faction.Hostile: -5}
	require.True(t, faction.IsHostileToPlayer(faction.Hostile, rep))
}

func TestRelationToPlayer_NilReputationUsesBaseOnly(t *testing.T) {
	require.True(t, faction.IsHostileToPlayer(faction.Hostile, nil))
}

func TestIsHostileTo_ResolvesPlayerReputationThroughLookup(t *testing.T) {
	wolf := &entity.Combatant{InstanceID: "wolf-1", Faction: faction.Hostile}
	hero := &entity.Combatant{InstanceID: "hero-1", Faction: faction.Player}

	lookup := func(instanceID string) (map[string]int, bool) {
		if instanceID == "hero-1" {
			return map[string]int{faction.Hostile: 200}, true
		}
		return nil, false
	}

	require.False(t, faction.IsHostileTo(wolf, hero, lookup))
}

func TestIsHostileTo_NilLookupUsesBaseMatrixOnly(t *testing.T) {
	wolf := &entity.Combatant{InstanceID: "wolf-1", Faction: faction.Hostile}
	hero := &entity.Combatant{InstanceID: "hero-1", Faction: faction.Player}

	require.True(t, faction.IsHostileTo(wolf, hero, nil))
}

func TestStoreReputationLookup_ResolvesLivePlayerOnly(t *testing.T) {
	store := entity.NewStore()
	hero := entity.NewPlayer("Hero")
	hero.Reputation[faction.Hostile] = -50
	store.AddPlayer(hero)

	lookup := faction.StoreReputationLookup(store)

	rep, ok := lookup(hero.InstanceID)
	require.True(t, ok)
	require.Equal(t, -50, rep[faction.Hostile])

	_, ok = lookup("no-such-id")
	require.False(t, ok)
}
