// Package faction computes pairwise faction relations and the resulting
// hostility rule (spec §4.13). It is deliberately small and stateless:
// the matrix is a fixed constant and per-player standing lives on
// entity.Player.Reputation, so this package never needs its own store.
package faction

import "github.com/voidengine/simcore/internal/entity"

const (
	Hostile  = "hostile"
	Player   = "player"
	Neutral  = "neutral"
	Vendor   = "vendor"
	Minion   = "player_minion"
)

// Matrix holds the default relation of a viewer faction toward every
// faction it has an opinion about. Any pair absent from the matrix (and
// any faction absent entirely) defaults to 0, the neutral/"not hostile"
// baseline, mirroring the original's FACTION_RELATIONSHIP_MATRIX.get()
// fallback chain.
var Matrix = map[string]map[string]int{
	Hostile: {
		Hostile: 100,
		Player:  -100,
		Minion:  -100,
		Neutral: -20,
		Vendor:  0,
	},
	Player: {
		Hostile: -100,
		Minion:  100,
	},
	Minion: {
		Hostile: -100,
		Player:  100,
		Minion:  100,
	},
	Neutral: {
		Hostile: -10,
	},
	Vendor: {
		Hostile: -10,
	},
}

// BaseRelation returns the matrix's default standing of viewerFaction
// toward targetFaction, 0 when either side is unrecognized.
func BaseRelation(viewerFaction, targetFaction string) int {
	row, ok := Matrix[viewerFaction]
	if !ok {
		return 0
	}
	return row[targetFaction]
}

// RelationToPlayer is BaseRelation plus the player's own standing with
// the viewer's faction (spec §4.13: "add player.reputation[npc.faction]
// to the base value").
func RelationToPlayer(viewerFaction string, playerReputation map[string]int) int {
	return BaseRelation(viewerFaction, Player) + playerReputation[viewerFaction]
}

// IsHostile reports whether factionA is hostile toward factionB under
// the base matrix alone, with no player reputation modifier.
func IsHostile(factionA, factionB string) bool {
	return BaseRelation(factionA, factionB) < 0
}

// IsHostileToPlayer reports whether a viewer of viewerFaction is hostile
// toward a player with the given reputation standings.
func IsHostileToPlayer(viewerFaction string, playerReputation map[string]int) bool {
	return RelationToPlayer(viewerFaction, playerReputation) < 0
}

// PlayerReputationLookup resolves a combatant instance id to its
// player's reputation map, or ok=false when the instance isn't a
// live player. Kept as an injected function rather than an
// *entity.Store field so this package stays usable without a store
// (e.g. from the quest generator's giver NPCs, which have no player
// to resolve against).
type PlayerReputationLookup func(instanceID string) (reputation map[string]int, ok bool)

// IsHostileTo implements the spec's is_hostile_to(npc, other): the base
// matrix relation, plus the target's reputation with the viewer's
// faction when the target resolves to a live player.
func IsHostileTo(viewer, target *entity.Combatant, reputationOf PlayerReputationLookup) bool {
	base := BaseRelation(viewer.Faction, target.Faction)
	if reputationOf != nil {
		if rep, ok := reputationOf(target.InstanceID); ok {
			base += rep[viewer.Faction]
		}
	}
	return base < 0
}

// StoreReputationLookup adapts an *entity.Store into a
// PlayerReputationLookup for wiring IsHostileTo into the simulation's
// NPC dispatcher.
func StoreReputationLookup(store *entity.Store) PlayerReputationLookup {
	return func(instanceID string) (map[string]int, bool) {
		player, ok := store.GetPlayer(instanceID)
		if !ok {
			return nil, false
		}
		return player.Reputation, true
	}
}
