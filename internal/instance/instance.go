// Package instance implements the procedural grid-walk layout generator and
// the instance-region lifecycle (spec §4.12): generate a temporary
// "instance_*" region, splice it into the world graph at an entry point,
// and tear it back out on completion or abandonment. Grounded on the
// teacher's pkg/instance/instance.go (Manager-owns-active-instances shape),
// generalized from its fixed JSON dungeon templates to the spec's
// random-walk generator.
package instance

import (
	"fmt"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/worldgraph"
)

// RoomThemes is the flavor-word pool rooms draw from via simplex noise, so
// that generated layouts read as varied rather than procedurally identical.
var RoomThemes = []string{"mossy stone", "cracked tile", "rotting wood", "rusted iron", "pale marble", "scorched brick"}

// LayoutConfig bounds the procedural grid walk (spec §4.12 step 1).
type LayoutConfig struct {
	MinRooms int
	MaxRooms int
}

type gridPos struct{ x, y int }

var directionDeltas = map[string]gridPos{
	"north": {0, 1}, "south": {0, -1}, "east": {1, 0}, "west": {-1, 0},
}

func opposite(direction string) string {
	switch direction {
	case "north":
		return "south"
	case "south":
		return "north"
	case "east":
		return "west"
	case "west":
		return "east"
	}
	return ""
}

func shuffledDirections(src *rng.Source) []string {
	names := []string{"north", "south", "east", "west"}
	for i := len(names) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// GenerateLayout implements spec §4.12's non-linear grid random walk: place
// room 0 at the origin, grow a frontier into empty adjacent cells until the
// target room count is reached or the frontier can no longer extend, then
// add extra edges for loops.
func GenerateLayout(cfg LayoutConfig, src *rng.Source, noiseSeed int64) map[string]*worldgraph.Room {
	target := src.IntRange(cfg.MinRooms, cfg.MaxRooms)
	if target < 1 {
		target = 1
	}

	noise := opensimplex.NewNormalized(noiseSeed)
	rooms := make(map[string]*worldgraph.Room)
	positions := make(map[string]gridPos)
	occupied := make(map[gridPos]string)

	makeRoom := func(id string, pos gridPos) *worldgraph.Room {
		themeIdx := int(noise.Eval2(float64(pos.x), float64(pos.y)) * float64(len(RoomThemes)))
		if themeIdx < 0 {
			themeIdx = 0
		}
		theme := RoomThemes[themeIdx%len(RoomThemes)]
		room := worldgraph.NewRoom(id, fmt.Sprintf("Chamber %s", id), fmt.Sprintf("A chamber of %s.", theme))
		rooms[id] = room
		positions[id] = pos
		occupied[pos] = id
		return room
	}

	makeRoom("room_0", gridPos{0, 0})

	frontier := []string{"room_0"}
	count := 1
	for count < target && len(frontier) > 0 {
		idx := src.Intn(len(frontier))
		fromID := frontier[idx]
		fromPos := positions[fromID]

		placed := false
		for _, direction := range shuffledDirections(src) {
			delta := directionDeltas[direction]
			next := gridPos{fromPos.x + delta.x, fromPos.y + delta.y}
			if _, taken := occupied[next]; taken {
				continue
			}
			newID := fmt.Sprintf("room_%d", count)
			newRoom := makeRoom(newID, next)
			rooms[fromID].Exits[direction] = newID
			newRoom.Exits[opposite(direction)] = fromID
			frontier = append(frontier, newID)
			count++
			placed = true
			break
		}
		if !placed {
			frontier = append(frontier[:idx], frontier[idx+1:]...)
		}
	}

	extraAttempts := src.IntRange(count/3, count-1)
	ids := make([]string, 0, count)
	for id := range rooms {
		ids = append(ids, id)
	}
	for i := 0; i < extraAttempts; i++ {
		id, ok := rng.Pick(src, ids)
		if !ok {
			break
		}
		pos := positions[id]
		for _, direction := range shuffledDirections(src) {
			if _, already := rooms[id].Exits[direction]; already {
				continue
			}
			delta := directionDeltas[direction]
			neighborPos := gridPos{pos.x + delta.x, pos.y + delta.y}
			neighborID, ok := occupied[neighborPos]
			if !ok {
				continue
			}
			rooms[id].Exits[direction] = neighborID
			rooms[neighborID].Exits[opposite(direction)] = id
			break
		}
	}

	return rooms
}

// Linkage records the patched exits so cleanup can undo both sides (spec
// §4.12's instantiation/cleanup contract).
type Linkage struct {
	InstanceRegionID string
	ExternalRegionID string
	ExternalRoomID   string
	ExitCommand      string
}

// Manager owns every active instance region spliced into the world graph.
type Manager struct {
	Graph  *worldgraph.Graph
	active map[string]*Linkage
}

// NewManager creates an instance Manager.
func NewManager(g *worldgraph.Graph) *Manager {
	return &Manager{Graph: g, active: make(map[string]*Linkage)}
}

// InstantiateQuestRegion generates a fresh region, inserts it into the
// world, patches the entry room's exit to reach it and the instance's first
// room's "out" exit to return (spec §4.12's instantiate_quest_region).
func (m *Manager) InstantiateQuestRegion(questInstanceID string, cfg LayoutConfig, src *rng.Source, noiseSeed int64, externalRegionID, externalRoomID, exitCommand string) (string, error) {
	externalRegion, ok := m.Graph.GetRegion(externalRegionID)
	if !ok {
		return "", fmt.Errorf("external region %q not found", externalRegionID)
	}
	externalRoom, ok := externalRegion.GetRoom(externalRoomID)
	if !ok {
		return "", fmt.Errorf("external room %q not found in region %q", externalRoomID, externalRegionID)
	}

	rooms := GenerateLayout(cfg, src, noiseSeed)
	regionID := "instance_" + uuid.NewString()

	region := worldgraph.NewRegion(regionID, "Generated Instance")
	region.IsInstance = true
	region.Outdoors = false
	for _, room := range rooms {
		region.AddRoom(room)
	}
	m.Graph.AddRegion(region)

	entryRoom, ok := region.GetRoom("room_0")
	if !ok {
		m.Graph.RemoveRegion(regionID)
		return "", fmt.Errorf("generated layout missing room_0")
	}

	externalRoom.Exits[exitCommand] = regionID + ":room_0"
	entryRoom.Exits["out"] = externalRegionID + ":" + externalRoomID

	m.active[questInstanceID] = &Linkage{
		InstanceRegionID: regionID,
		ExternalRegionID: externalRegionID,
		ExternalRoomID:   externalRoomID,
		ExitCommand:      exitCommand,
	}
	return regionID, nil
}

// CleanupQuestRegion removes the instance region and restores the external
// room's patched exit (spec §4.12's cleanup_quest_region). Returns false if
// no linkage is tracked for questInstanceID.
func (m *Manager) CleanupQuestRegion(questInstanceID string) bool {
	linkage, ok := m.active[questInstanceID]
	if !ok {
		return false
	}

	m.Graph.RemoveRegion(linkage.InstanceRegionID)
	if externalRegion, ok := m.Graph.GetRegion(linkage.ExternalRegionID); ok {
		if externalRoom, ok := externalRegion.GetRoom(linkage.ExternalRoomID); ok {
			delete(externalRoom.Exits, linkage.ExitCommand)
		}
	}
	delete(m.active, questInstanceID)
	return true
}

// SweepExpired runs periodic cleanup (spec §4.12: "Cleanup also runs
// periodically to reap completed instances"), invoking isDone for every
// tracked linkage and tearing down those it reports true for.
func (m *Manager) SweepExpired(isDone func(questInstanceID string) bool) []string {
	var cleaned []string
	for id := range m.active {
		if isDone(id) {
			m.CleanupQuestRegion(id)
			cleaned = append(cleaned, id)
		}
	}
	return cleaned
}

// ActiveRegionID returns the instance region id linked to a quest instance.
func (m *Manager) ActiveRegionID(questInstanceID string) (string, bool) {
	linkage, ok := m.active[questInstanceID]
	if !ok {
		return "", false
	}
	return linkage.InstanceRegionID, true
}

// ActiveCount reports how many instance regions are currently live.
func (m *Manager) ActiveCount() int { return len(m.active) }
