package snapshot_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/clock"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/quest"
	"github.com/voidengine/simcore/internal/simerr"
	"github.com/voidengine/simcore/internal/snapshot"
	"github.com/voidengine/simcore/internal/spawner"
	"github.com/voidengine/simcore/internal/worldgraph"
)

func buildWorld() (*entity.Player, *entity.Store, *entity.ItemStore, *worldgraph.Graph) {
	store := entity.NewStore()
	items := entity.NewItemStore()
	graph := worldgraph.NewGraph()

	region := worldgraph.NewRegion("town", "Town")
	room := worldgraph.NewRoom("square", "Square", "A quiet square.")
	sword := entity.NewItem("iron_sword", "Iron Sword", entity.SubtypeWeapon)
	sword.Value = 50
	room.AddItem(worldgraph.Item{InstanceID: sword.InstanceID, TemplateID: sword.TemplateID, Name: sword.Name})
	items.Add(sword)
	region.AddRoom(room)
	graph.AddRegion(region)

	player := entity.NewPlayer("hero")
	player.Location = entity.Location{RegionID: "town", RoomID: "square"}
	player.Gold = 40
	store.AddPlayer(player)

	npc := entity.NewNPC("bandit_tmpl", "Bandit")
	npc.Location = player.Location
	store.AddNPC(npc)

	minion := entity.NewNPC("wolf_tmpl", "Summoned Wolf")
	minion.OwnerID = player.InstanceID
	store.AddNPC(minion)

	return player, store, items, graph
}

func TestBuildAndApply_RoundTripsLiveWorld(t *testing.T) {
	player, store, items, graph := buildWorld()
	clk := clock.New(60)
	weather := clock.NewWeather()
	quests := []quest.Instance{{InstanceID: "q1", Title: "Clear the Road", State: quest.StateActive}}
	respawns := []spawner.RespawnRecord{{TemplateID: "bandit_tmpl", InstanceID: "dead-1", HomeRegionID: "town", HomeRoomID: "square", RespawnTime: time.Now()}}

	doc := snapshot.Build("slot1", time.Now(), player, store, items, graph, quests, clk, weather, respawns)

	require.Equal(t, snapshot.CurrentFormatVersion, doc.SaveFormatVersion)
	require.Len(t, doc.NPCStates, 1, "summoned minion must be excluded")
	require.Len(t, doc.Items, 1)
	require.Contains(t, doc.RoomItemsState, "town:square")
	require.Len(t, doc.QuestBoard, 1)
	require.Len(t, doc.RespawnQueue, 1)

	freshStore := entity.NewStore()
	freshItems := entity.NewItemStore()
	freshGraph := worldgraph.NewGraph()
	freshRegion := worldgraph.NewRegion("town", "Town")
	freshRegion.AddRoom(worldgraph.NewRoom("square", "Square", "A quiet square."))
	freshGraph.AddRegion(freshRegion)

	doc.Apply(freshStore, freshItems, freshGraph)

	restoredPlayer, ok := freshStore.GetPlayer(player.InstanceID)
	require.True(t, ok)
	require.Equal(t, 40, restoredPlayer.Gold)

	room, ok := freshGraph.GetRoom("town", "square")
	require.True(t, ok)
	require.Len(t, room.Items, 1)

	_, ok = freshItems.Get(room.Items[0].InstanceID)
	require.True(t, ok)

	npcs := freshStore.LiveNPCsInOrder()
	require.Len(t, npcs, 1)
}

func TestRepository_SaveAndLoadRoundTrips(t *testing.T) {
	repo, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	player, store, items, graph := buildWorld()
	doc := snapshot.Build("slot1", time.Now(), player, store, items, graph, nil, clock.New(60), clock.NewWeather(), nil)

	require.NoError(t, repo.Save(doc))

	loaded, err := repo.Load("slot1")
	require.NoError(t, err)
	require.Equal(t, doc.SaveName, loaded.SaveName)
	require.Equal(t, player.InstanceID, loaded.Player.InstanceID)
	require.Len(t, loaded.NPCStates, 1)
}

func TestRepository_LoadMissingReturnsNotFound(t *testing.T) {
	repo, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Load("nonexistent")
	require.ErrorIs(t, err, simerr.ErrNotFound)
}

func TestRepository_LoadCorruptPayloadReturnsSaveCorrupt(t *testing.T) {
	path := t.TempDir() + "/save.db"
	repo, err := snapshot.Open(path)
	require.NoError(t, err)

	player, store, items, graph := buildWorld()
	doc := snapshot.Build("slot1", time.Now(), player, store, items, graph, nil, clock.New(60), clock.NewWeather(), nil)
	require.NoError(t, repo.Save(doc))
	require.NoError(t, repo.Close())

	tamper, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = tamper.Exec("UPDATE saves SET payload = ? WHERE name = ?", []byte("not the original payload"), "slot1")
	require.NoError(t, err)
	require.NoError(t, tamper.Close())

	repo2, err := snapshot.Open(path)
	require.NoError(t, err)
	defer repo2.Close()

	_, err = repo2.Load("slot1")
	require.ErrorIs(t, err, simerr.ErrSaveCorrupt)
}
