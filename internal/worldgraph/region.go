package worldgraph

// SpawnerConfig holds region-scoped monster spawning parameters consumed by
// internal/spawner (spec §4.9).
type SpawnerConfig struct {
	MonsterTemplateIDs []string
	Cap                int
	IntervalSeconds    int
}

// Region owns its rooms exclusively (invariant: a region exclusively owns
// its rooms; a room exclusively owns its item list).
type Region struct {
	ID    string
	Name  string
	Rooms map[string]*Room

	Outdoors      bool
	SafeZone      bool
	Spawner       *SpawnerConfig
	IsInstance    bool // true for instance_* / dynamic_* regions
}

// NewRegion creates an empty region.
func NewRegion(id, name string) *Region {
	return &Region{ID: id, Name: name, Rooms: make(map[string]*Room)}
}

// AddRoom inserts a room into the region, taking ownership of it.
func (r *Region) AddRoom(room *Room) {
	r.Rooms[room.ID] = room
}

// GetRoom looks up a room by id.
func (r *Region) GetRoom(id string) (*Room, bool) {
	room, ok := r.Rooms[id]
	return room, ok
}

// RemoveRoom deletes a room from the region.
func (r *Region) RemoveRoom(id string) {
	delete(r.Rooms, id)
}

// Graph owns all regions in the world.
type Graph struct {
	Regions map[string]*Region
}

// NewGraph creates an empty world graph.
func NewGraph() *Graph {
	return &Graph{Regions: make(map[string]*Region)}
}

// AddRegion inserts a region into the graph.
func (g *Graph) AddRegion(region *Region) {
	g.Regions[region.ID] = region
}

// RemoveRegion deletes a region and all its rooms (used by instance cleanup).
func (g *Graph) RemoveRegion(id string) {
	delete(g.Regions, id)
}

// GetRegion looks up a region by id.
func (g *Graph) GetRegion(id string) (*Region, bool) {
	region, ok := g.Regions[id]
	return region, ok
}

// GetRoom resolves a (region, room) pair, following cross-region exits if
// roomID encodes one ("region:room" handled by the caller beforehand).
func (g *Graph) GetRoom(regionID, roomID string) (*Room, bool) {
	region, ok := g.Regions[regionID]
	if !ok {
		return nil, false
	}
	return region.GetRoom(roomID)
}

// Resolve follows an exit string from a source region, returning the
// destination region and room ids. Handles both intra-region ("room") and
// cross-region ("region:room") forms (spec §4.2).
func (g *Graph) Resolve(sourceRegionID, destID string) (regionID, roomID string, ok bool) {
	regionID, roomID = SplitExitDest(sourceRegionID, destID)
	_, exists := g.GetRoom(regionID, roomID)
	return regionID, roomID, exists
}
