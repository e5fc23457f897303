// Package worldgraph implements the spatial world model: regions containing
// rooms connected by directed exits (spec §4.2). Cross-region exits encode
// the destination region in the id as "region:room".
package worldgraph

import "strings"

// ExitRequirement gates traversal of an exit (spec §4.2).
type ExitRequirement struct {
	Type   string // e.g. "key", "skill_check"
	KeyID  string
	Skill  string
	Diff   int
}

// EnvInteraction describes how a room reacts to a spell of a given damage
// type landing in it (spec §4.2): a reaction that temporarily clears an
// exit requirement and restores it after Duration game-seconds.
type EnvInteraction struct {
	Type      string // e.g. "clear_exit_req"
	Direction string
	Duration  float64
	Message   string
}

// Item is a minimal item reference carried by a room's item list. The full
// item record lives in the entity store; worldgraph only needs enough to
// render/list room contents and hand off ownership transfers.
type Item struct {
	InstanceID string
	TemplateID string
	Name       string
}

// Room is a single location within a region.
type Room struct {
	ID          string
	Name        string
	Description string
	Exits       map[string]string // direction -> dest id ("room" or "region:room")
	Items       []Item
	Visited     bool

	// Properties
	Outdoors         bool
	SafeZone         bool
	NoMonsterSpawn   bool
	LockedBy         map[string]string // direction -> key template id
	ExitRequirements map[string]ExitRequirement
	EnvInteractions  map[string]EnvInteraction // damage type -> reaction
}

// NewRoom creates an empty room with initialized maps.
func NewRoom(id, name, description string) *Room {
	return &Room{
		ID:               id,
		Name:             name,
		Description:      description,
		Exits:            make(map[string]string),
		LockedBy:         make(map[string]string),
		ExitRequirements: make(map[string]ExitRequirement),
		EnvInteractions:  make(map[string]EnvInteraction),
	}
}

// GetExit resolves a direction to a destination id, if any.
func (r *Room) GetExit(direction string) (string, bool) {
	dest, ok := r.Exits[direction]
	return dest, ok
}

// AddItem appends an item to the room's item list.
func (r *Room) AddItem(item Item) {
	r.Items = append(r.Items, item)
}

// RemoveItem removes and returns the item with the given instance id.
func (r *Room) RemoveItem(instanceID string) (Item, bool) {
	for i, it := range r.Items {
		if it.InstanceID == instanceID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return it, true
		}
	}
	return Item{}, false
}

// SplitExitDest splits a destination id into (regionID, roomID). When destID
// has no "region:room" form, sameRegion is returned as the region.
func SplitExitDest(sameRegion, destID string) (regionID, roomID string) {
	if idx := strings.IndexByte(destID, ':'); idx >= 0 {
		return destID[:idx], destID[idx+1:]
	}
	return sameRegion, destID
}
