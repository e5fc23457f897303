// Package spawner implements region-scoped monster population and the
// queued respawn of died NPCs (spec §4.9), ported from the two-phase
// delete/respawn timer flow of the teacher's NpcRespawnSystem, adapted from
// tick counters to wall-clock deadlines since this simulation keys its
// schedule off sim time rather than per-tick decrements.
package spawner

import (
	"fmt"
	"time"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/worldgraph"
)

// NPCTemplate is the static content record a spawn or respawn instantiates
// from. The simulation core takes no position on how templates are loaded
// (JSON, TOML, embedded) — callers populate a Registry however their
// content pipeline produces one.
type NPCTemplate struct {
	TemplateID       string
	Name             string
	Faction          string
	Level            int
	Stats            entity.Stats
	MaxHealth        int
	MaxMana          int
	Resistances      map[string]int
	BehaviorType     entity.BehaviorKind
	Aggression       float64
	FleeThreshold    float64
	WanderChance     float64
	UsableSpells     []string
	SpecialAbilities []entity.SpecialAbility
	LootTable        []entity.LootEntry
	Respawnable      bool
}

// Instantiate creates a live NPC from the template, located at home.
func (t *NPCTemplate) Instantiate(home entity.Location) *entity.NPC {
	npc := entity.NewNPC(t.TemplateID, t.Name)
	npc.Faction = t.Faction
	npc.Level = t.Level
	npc.Stats = t.Stats
	npc.MaxHealth, npc.Health = t.MaxHealth, t.MaxHealth
	npc.MaxMana, npc.Mana = t.MaxMana, t.MaxMana
	for k, v := range t.Resistances {
		npc.Resistances[k] = v
	}
	if t.BehaviorType != "" {
		npc.BehaviorType = t.BehaviorType
	}
	npc.Aggression = t.Aggression
	if t.FleeThreshold > 0 {
		npc.FleeThreshold = t.FleeThreshold
	}
	if t.WanderChance > 0 {
		npc.WanderChance = t.WanderChance
	}
	npc.UsableSpells = t.UsableSpells
	npc.SpecialAbilities = t.SpecialAbilities
	npc.LootTable = t.LootTable
	npc.Respawnable = t.Respawnable
	npc.Home = home
	npc.Location = home
	return npc
}

// Registry looks templates up by id.
type Registry map[string]*NPCTemplate

// Get resolves a template by id.
func (r Registry) Get(id string) (*NPCTemplate, bool) {
	t, ok := r[id]
	return t, ok
}

// RespawnRecord is a single queued respawn (spec §4.9).
type RespawnRecord struct {
	TemplateID   string
	InstanceID   string
	Name         string
	HomeRegionID string
	HomeRoomID   string
	RespawnTime  time.Time
}

// Manager bundles the region spawner scan and the respawn queue.
type Manager struct {
	Graph     *worldgraph.Graph
	Store     *entity.Store
	Templates Registry
	RNG       *rng.Source

	lastScan map[string]time.Time
	queue    []RespawnRecord
}

// NewManager creates a spawner/respawn Manager.
func NewManager(g *worldgraph.Graph, s *entity.Store, templates Registry, src *rng.Source) *Manager {
	return &Manager{
		Graph:     g,
		Store:     s,
		Templates: templates,
		RNG:       src,
		lastScan:  make(map[string]time.Time),
	}
}

// QueuedCount reports how many respawns are pending, for diagnostics/saves.
func (m *Manager) QueuedCount() int { return len(m.queue) }

// Queue returns the pending respawn records, for snapshot serialization.
func (m *Manager) Queue() []RespawnRecord {
	out := make([]RespawnRecord, len(m.queue))
	copy(out, m.queue)
	return out
}

// RestoreQueue replaces the pending queue, used when loading a save.
func (m *Manager) RestoreQueue(records []RespawnRecord) {
	m.queue = append([]RespawnRecord(nil), records...)
}

// QueueRespawn pushes a respawn record for npc if it is eligible: it must be
// respawnable, have a home room, and not be a wandering_villager (spec
// §4.9's explicit exclusion).
func (m *Manager) QueueRespawn(npc *entity.NPC, now time.Time) {
	if !npc.Respawnable || npc.Faction == "wandering_villager" {
		return
	}
	if npc.Home.RegionID == "" || npc.Home.RoomID == "" {
		return
	}
	m.queue = append(m.queue, RespawnRecord{
		TemplateID:   npc.TemplateID,
		InstanceID:   npc.InstanceID,
		Name:         npc.Name,
		HomeRegionID: npc.Home.RegionID,
		HomeRoomID:   npc.Home.RoomID,
		RespawnTime:  now.Add(config.DefaultNPCRespawnCooldown),
	})
}

// TickRespawns pops every entry whose respawn_time has elapsed, recreates
// the NPC at its home room and re-registers it with the store (spec §4.9).
func (m *Manager) TickRespawns(now time.Time) []string {
	var messages []string
	remaining := m.queue[:0]

	for _, rec := range m.queue {
		if rec.RespawnTime.After(now) {
			remaining = append(remaining, rec)
			continue
		}

		tmpl, ok := m.Templates.Get(rec.TemplateID)
		if !ok {
			continue
		}
		npc := tmpl.Instantiate(entity.Location{RegionID: rec.HomeRegionID, RoomID: rec.HomeRoomID})
		npc.Name = rec.Name
		m.Store.AddNPC(npc)
		messages = append(messages, fmt.Sprintf("%s has returned to %s.", npc.Name, rec.HomeRoomID))
	}

	m.queue = remaining
	return messages
}

// ScanRegions attempts one spawn per eligible region whose scan interval has
// elapsed since the last scan (spec §4.9).
func (m *Manager) ScanRegions(now time.Time, scanInterval time.Duration) []string {
	var messages []string
	for _, region := range m.Graph.Regions {
		if region.Spawner == nil {
			continue
		}
		if last, seen := m.lastScan[region.ID]; seen && now.Sub(last) < scanInterval {
			continue
		}
		m.lastScan[region.ID] = now

		if msg, ok := m.trySpawnInRegion(region); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

func (m *Manager) trySpawnInRegion(region *worldgraph.Region) (string, bool) {
	if len(region.Spawner.MonsterTemplateIDs) == 0 {
		return "", false
	}
	if m.countLiveMonstersInRegion(region.ID) >= region.Spawner.Cap {
		return "", false
	}

	var candidates []*worldgraph.Room
	for _, room := range region.Rooms {
		if room.SafeZone || room.NoMonsterSpawn {
			continue
		}
		if len(m.Store.PlayersInRoom(region.ID, room.ID)) > 0 {
			continue
		}
		candidates = append(candidates, room)
	}
	if len(candidates) == 0 {
		return "", false
	}

	room, _ := rng.Pick(m.RNG, candidates)
	templateID, _ := rng.Pick(m.RNG, region.Spawner.MonsterTemplateIDs)
	tmpl, ok := m.Templates.Get(templateID)
	if !ok {
		return "", false
	}

	npc := tmpl.Instantiate(entity.Location{RegionID: region.ID, RoomID: room.ID})
	m.Store.AddNPC(npc)
	return fmt.Sprintf("%s appears in %s.", npc.Name, room.Name), true
}

func (m *Manager) countLiveMonstersInRegion(regionID string) int {
	count := 0
	for _, npc := range m.Store.LiveNPCsInOrder() {
		if npc.IsAlive && npc.Location.RegionID == regionID && npc.Faction == "hostile" {
			count++
		}
	}
	return count
}
