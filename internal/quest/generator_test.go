package quest_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/instance"
	"github.com/voidengine/simcore/internal/quest"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/spawner"
	"github.com/voidengine/simcore/internal/worldgraph"
)

func testGraph() *worldgraph.Graph {
	g := worldgraph.NewGraph()

	town := worldgraph.NewRegion("town", "Town")
	square := worldgraph.NewRoom("square", "Town Square", "")
	square.Outdoors = true
	town.AddRoom(square)
	g.AddRegion(town)

	wilds := worldgraph.NewRegion("wilds", "The Wilds")
	wilds.Spawner = &worldgraph.SpawnerConfig{MonsterTemplateIDs: []string{"wolf"}, Cap: 5}
	clearing := worldgraph.NewRoom("clearing", "Clearing", "")
	wilds.AddRoom(clearing)
	g.AddRegion(wilds)

	return g
}

func baseGenerator() (*quest.Generator, *entity.Store) {
	g := testGraph()
	store := entity.NewStore()

	npcs := spawner.Registry{
		"wolf": {TemplateID: "wolf", Name: "Wolf", Faction: "hostile", Level: 3,
			LootTable: []entity.LootEntry{{ItemTemplateID: "wolf_pelt"}}},
	}
	items := map[string]quest.ItemTemplate{
		"wolf_pelt": {TemplateID: "wolf_pelt", Name: "Wolf Pelt", Value: 4},
	}

	gen := &quest.Generator{
		Graph:  g,
		Store:  store,
		NPCs:   npcs,
		Items:  items,
		RNG:    rng.New(1),
		Tuning: config.DefaultTuning().Quest,
	}
	return gen, store
}

func blacksmithGiver() quest.Giver {
	return quest.Giver{
		InstanceID: "giver-1", TemplateID: "blacksmith", Name: "Toren",
		Location:  entity.Location{RegionID: "town", RoomID: "square"},
		Interests: []string{"kill", "fetch", "deliver"},
	}
}

func TestGenerateNonInstanceQuest_Kill(t *testing.T) {
	gen, _ := baseGenerator()
	q := gen.GenerateNonInstanceQuest([]quest.Giver{blacksmithGiver()}, 3, "kill")

	require.NotNil(t, q)
	require.Equal(t, "kill", q.Type)
	require.Equal(t, "giver-1", q.GiverInstanceID)
	obj := q.ActiveObjective()
	require.Equal(t, "wolf", obj.TargetTemplateID)
	require.Positive(t, obj.RequiredQuantity)
	require.Positive(t, q.Rewards.XP)
}

func TestGenerateNonInstanceQuest_Fetch(t *testing.T) {
	gen, _ := baseGenerator()
	q := gen.GenerateNonInstanceQuest([]quest.Giver{blacksmithGiver()}, 3, "fetch")

	require.NotNil(t, q)
	obj := q.ActiveObjective()
	require.Equal(t, "wolf_pelt", obj.ItemTemplateID)
}

func TestGenerateNonInstanceQuest_NoGiverReturnsNil(t *testing.T) {
	gen, _ := baseGenerator()
	q := gen.GenerateNonInstanceQuest(nil, 3, "kill")
	require.Nil(t, q)
}

func TestGenerateInstanceQuest_SplicesRegionAndPicksOutdoorEntry(t *testing.T) {
	gen, _ := baseGenerator()
	gen.InstanceMgr = instance.NewManager(gen.Graph)
	gen.Instances = map[string]quest.InstanceQuestTemplate{
		"rat_infestation": {
			TemplateID:               "rat_infestation",
			Level:                    1,
			PossibleTargetTemplates:  []string{"wolf"},
			Layout:                   instance.LayoutConfig{MinRooms: 3, MaxRooms: 4},
			PossibleEntryRegions:     []string{"town"},
			ExitCommand:              "house",
			CompletionNPCTemplateID:  "homeowner",
		},
	}

	q := gen.GenerateInstanceQuest(1)
	require.NotNil(t, q)
	require.Equal(t, "quest_board", q.GiverInstanceID)
	require.NotEmpty(t, q.InstanceRegionID)
	require.NotNil(t, q.EntryPoint)
	require.Equal(t, "town", q.EntryPoint.RegionID)

	_, exists := gen.Graph.GetRegion(q.InstanceRegionID)
	require.True(t, exists)

	square, _ := gen.Graph.GetRoom("town", "square")
	require.Equal(t, q.InstanceRegionID+":room_0", square.Exits["house"])
}

func TestEnsureInitialQuests_FillsBoardAndPrioritizesMissingTypes(t *testing.T) {
	gen, _ := baseGenerator()
	gen.InstanceMgr = instance.NewManager(gen.Graph)
	gen.Instances = map[string]quest.InstanceQuestTemplate{
		"rat_infestation": {
			TemplateID: "rat_infestation", Level: 1,
			PossibleTargetTemplates: []string{"wolf"},
			Layout:                  instance.LayoutConfig{MinRooms: 3, MaxRooms: 3},
			PossibleEntryRegions:    []string{"town"},
			ExitCommand:             "house",
		},
	}

	board := gen.EnsureInitialQuests(nil, 3, []quest.Giver{blacksmithGiver()})
	require.LessOrEqual(t, len(board), config.MaxQuestsOnBoard)
	require.NotEmpty(t, board)

	types := map[string]bool{}
	for _, q := range board {
		types[q.Type] = true
	}
	require.True(t, types["kill"] || types["fetch"] || types["deliver"] || types["instance"])
}

func TestReplenishBoard_RemovesCompletedAndRefills(t *testing.T) {
	gen, _ := baseGenerator()
	completed := &quest.Instance{InstanceID: "old-1", Type: "kill"}
	board := []*quest.Instance{completed}

	board = gen.ReplenishBoard(board, "old-1", 3, []quest.Giver{blacksmithGiver()})
	for _, q := range board {
		require.NotEqual(t, "old-1", q.InstanceID)
	}
}
