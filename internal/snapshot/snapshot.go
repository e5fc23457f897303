// Package snapshot implements the single-document save/load format (spec
// §6 and §8's round-trip requirement): a versioned JSON blob capturing the
// player, live NPCs, item instances, dynamic regions, the quest board,
// clock/weather state and the respawn queue, persisted through a SQLite
// repository with a blake2b integrity checksum.
package snapshot

import (
	"time"

	"github.com/voidengine/simcore/internal/clock"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/quest"
	"github.com/voidengine/simcore/internal/spawner"
	"github.com/voidengine/simcore/internal/worldgraph"
)

// CurrentFormatVersion is the save_format_version spec §6 describes.
const CurrentFormatVersion = 3

// Document is the complete save/load payload (spec §6's format table).
type Document struct {
	SaveFormatVersion int       `json:"save_format_version"`
	SaveName          string    `json:"save_name"`
	Timestamp         time.Time `json:"timestamp"`

	Player         *entity.Player           `json:"player"`
	NPCStates      map[string]*entity.NPC   `json:"npc_states"`
	Items          []*entity.Item           `json:"items"`
	RoomItemsState map[string][]worldgraph.Item `json:"room_items_state"`
	DynamicRegions []*worldgraph.Region     `json:"dynamic_regions"`
	QuestBoard     []quest.Instance         `json:"quest_board"`
	TimeState      *clock.Clock             `json:"time_state"`
	WeatherState   *clock.Weather           `json:"weather_state"`
	RespawnQueue   []spawner.RespawnRecord  `json:"respawn_queue"`
}

// Build assembles a Document from live world state. NPCs whose OwnerID is
// set are summoned minions (invariant §3.4) and are excluded, matching
// the save format's "npc_states... excluding summoned minions" note.
// Apply does not recreate them; the saved Player.ActiveSummons still
// lists their instance ids.
func Build(saveName string, now time.Time, player *entity.Player, store *entity.Store, items *entity.ItemStore, graph *worldgraph.Graph, questBoard []quest.Instance, clk *clock.Clock, weather *clock.Weather, respawnQueue []spawner.RespawnRecord) *Document {
	npcStates := make(map[string]*entity.NPC)
	for _, npc := range store.LiveNPCsInOrder() {
		if npc.OwnerID != "" {
			continue
		}
		npcStates[npc.InstanceID] = npc
	}

	roomItems := make(map[string][]worldgraph.Item)
	var dynamicRegions []*worldgraph.Region
	for _, region := range graph.Regions {
		if region.IsInstance {
			dynamicRegions = append(dynamicRegions, region)
		}
		for _, room := range region.Rooms {
			if len(room.Items) > 0 {
				roomItems[region.ID+":"+room.ID] = room.Items
			}
		}
	}

	return &Document{
		SaveFormatVersion: CurrentFormatVersion,
		SaveName:          saveName,
		Timestamp:         now,
		Player:            player,
		NPCStates:         npcStates,
		Items:             items.All(),
		RoomItemsState:    roomItems,
		DynamicRegions:    dynamicRegions,
		QuestBoard:        questBoard,
		TimeState:         clk,
		WeatherState:      weather,
		RespawnQueue:      respawnQueue,
	}
}

// Apply rehydrates live world state from the document. It follows the
// original implementation's restore order (dynamic regions before
// anything that might reference them, player before NPCs, room items
// last) so every cross-reference resolves on the first pass.
func (d *Document) Apply(store *entity.Store, items *entity.ItemStore, graph *worldgraph.Graph) {
	items.RestoreAll(d.Items)

	for _, region := range d.DynamicRegions {
		graph.AddRegion(region)
	}

	if d.Player != nil {
		store.AddPlayer(d.Player)
	}

	for _, npc := range d.NPCStates {
		store.AddNPC(npc)
	}

	for key, itemList := range d.RoomItemsState {
		regionID, roomID := worldgraph.SplitExitDest("", key)
		room, ok := graph.GetRoom(regionID, roomID)
		if !ok {
			continue
		}
		room.Items = itemList
	}
}
