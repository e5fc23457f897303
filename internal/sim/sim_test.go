package sim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/effect"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/faction"
	"github.com/voidengine/simcore/internal/sim"
	"github.com/voidengine/simcore/internal/spawner"
	"github.com/voidengine/simcore/internal/worldgraph"
)

func newTestGraph() *worldgraph.Graph {
	graph := worldgraph.NewGraph()
	region := worldgraph.NewRegion("forest", "Forest")
	clearing := worldgraph.NewRoom("clearing", "Clearing", "A sunlit clearing.")
	clearing.Outdoors = true
	region.AddRoom(clearing)
	graph.AddRegion(region)
	return graph
}

func newTestWorld(t *testing.T) *sim.World {
	t.Helper()
	graph := newTestGraph()
	templates := spawner.Registry{
		"rat": &spawner.NPCTemplate{
			TemplateID:  "rat",
			Name:        "Giant Rat",
			Faction:     "hostile",
			Level:       2,
			MaxHealth:   20,
			Respawnable: true,
			LootTable: []entity.LootEntry{
				{ItemTemplateID: "rat_tail", Chance: 1.0, MinQuantity: 1, MaxQuantity: 1},
			},
		},
	}

	world := sim.New(sim.Config{
		Seed:  7,
		Graph: graph,
		NPCTemplates: templates,
		ItemTemplates: map[string]sim.ItemTemplate{
			"rat_tail": {Name: "Rat Tail", Subtype: entity.SubtypeGeneric, Value: 2},
		},
		Tuning:     config.DefaultTuning(),
		ClockRatio: 60,
	})
	return world
}

func spawnRat(world *sim.World) *entity.NPC {
	rat := (&spawner.NPCTemplate{
		TemplateID:  "rat",
		Name:        "Giant Rat",
		Faction:     "hostile",
		Level:       2,
		MaxHealth:   20,
		Respawnable: true,
		LootTable: []entity.LootEntry{
			{ItemTemplateID: "rat_tail", Chance: 1.0, MinQuantity: 1, MaxQuantity: 1},
		},
	}).Instantiate(entity.Location{RegionID: "forest", RoomID: "clearing"})
	world.Store.AddNPC(rat)
	return rat
}

func TestNew_WiresCoreSubsystems(t *testing.T) {
	world := newTestWorld(t)
	require.NotNil(t, world.Store)
	require.NotNil(t, world.Spawner)
	require.NotNil(t, world.Clock)
}

func TestTick_DOTDeathCreditsSourcePlayerWithXPAndLoot(t *testing.T) {
	world := newTestWorld(t)
	player := entity.NewPlayer("hero")
	player.Location = entity.Location{RegionID: "forest", RoomID: "clearing"}
	player.Level = 1
	world.Store.AddPlayer(player)

	rat := spawnRat(world)
	rat.Health, rat.MaxHealth = 5, 5
	rat.Effects.Apply(&effect.Effect{
		Name:          "Poison",
		Kind:          effect.KindDOT,
		BaseDuration:  time.Minute,
		TickInterval:  time.Second,
		DamagePerTick: 50,
		DamageType:    "poison",
		SourceID:      player.InstanceID,
	})

	now := time.Now()
	world.Tick(now, 1.0)

	_, stillAlive := world.Store.GetNPC(rat.InstanceID)
	require.False(t, stillAlive)
	require.True(t, player.XP > 0 || player.Level > 1, "source player should be credited for the DOT kill")
	require.Equal(t, 1, world.Spawner.QueuedCount())

	room, ok := world.Graph.GetRoom("forest", "clearing")
	require.True(t, ok)
	require.Len(t, room.Items, 1)
	require.Equal(t, "rat_tail", room.Items[0].TemplateID)
}

func TestTick_MinionKillCreditsOwningPlayer(t *testing.T) {
	world := newTestWorld(t)
	player := entity.NewPlayer("summoner")
	player.Location = entity.Location{RegionID: "forest", RoomID: "clearing"}
	player.Level = 1
	world.Store.AddPlayer(player)

	minion := entity.NewNPC("wolf_spirit", "Spirit Wolf")
	minion.Faction = faction.Minion
	minion.OwnerID = player.InstanceID
	minion.Level = 5
	minion.Health, minion.MaxHealth = 50, 50
	minion.Stats.Strength = 100
	minion.Location = player.Location
	minion.BehaviorType = entity.BehaviorMinion
	minion.InCombat = true
	minion.AttackCooldown = 0
	world.Store.AddNPC(minion)

	rat := spawnRat(world)
	rat.Health, rat.MaxHealth = 1, 1
	minion.CombatTargets[rat.InstanceID] = struct{}{}
	rat.CombatTargets[minion.InstanceID] = struct{}{}
	rat.InCombat = true

	startXP := player.XP
	now := time.Now()
	for i := 0; i < 10; i++ {
		world.Tick(now.Add(time.Duration(i)*time.Second), 1.0)
		if _, alive := world.Store.GetNPC(rat.InstanceID); !alive {
			break
		}
	}

	_, stillAlive := world.Store.GetNPC(rat.InstanceID)
	require.False(t, stillAlive)
	require.True(t, player.XP != startXP || player.Level > 1, "owning player should be credited for the minion's kill")
}

func TestRefreshQuestBoard_PostsUpToMax(t *testing.T) {
	world := newTestWorld(t)
	world.RefreshQuestBoard(1)
	require.LessOrEqual(t, len(world.QuestBoard), config.MaxQuestsOnBoard)
}
