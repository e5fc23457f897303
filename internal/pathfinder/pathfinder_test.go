package pathfinder_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/pathfinder"
	"github.com/voidengine/simcore/internal/worldgraph"
)

func buildGraph() *worldgraph.Graph {
	g := worldgraph.NewGraph()

	townSquare := worldgraph.NewRoom("town_square", "Town Square", "")
	townSquare.Exits["north"] = "market"
	market := worldgraph.NewRoom("market", "Market", "")
	market.Exits["south"] = "town_square"
	market.Exits["east"] = "forest:entrance"

	town := worldgraph.NewRegion("town", "Town")
	town.AddRoom(townSquare)
	town.AddRoom(market)
	g.AddRegion(town)

	entrance := worldgraph.NewRoom("entrance", "Forest Entrance", "")
	entrance.Exits["west"] = "town:market"
	deep := worldgraph.NewRoom("deep", "Deep Forest", "")
	entrance.Exits["north"] = "deep"

	forest := worldgraph.NewRegion("forest", "Forest")
	forest.AddRoom(entrance)
	forest.AddRoom(deep)
	g.AddRegion(forest)

	return g
}

func TestFindPath_SameNode(t *testing.T) {
	g := buildGraph()
	path, ok := pathfinder.FindPath(g, "town", "town_square", "town", "town_square")
	require.True(t, ok)
	require.Empty(t, path)
}

func TestFindPath_CrossRegion(t *testing.T) {
	g := buildGraph()
	path, ok := pathfinder.FindPath(g, "town", "town_square", "forest", "deep")
	require.True(t, ok)
	require.Equal(t, []string{"north", "east", "north"}, path)
}

func TestFindPath_Unreachable(t *testing.T) {
	g := buildGraph()
	isolated := worldgraph.NewRegion("isolated", "Isolated")
	isolated.AddRoom(worldgraph.NewRoom("void", "Void", ""))
	g.AddRegion(isolated)

	_, ok := pathfinder.FindPath(g, "town", "town_square", "isolated", "void")
	require.False(t, ok)
}
