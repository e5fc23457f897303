// Package sim is the top-level aggregate that wires every simulation
// subsystem together and drives the world tick (spec §5): the entity and
// item stores, the world graph, the spawner/respawn manager, the NPC
// behavior dispatcher, the clock and weather model, the quest generator and
// board, the instance manager, and the crafting/vendor routines. Grounded
// on the teacher's World struct (world.go) and its 500ms Update() goroutine
// in main.go, generalized from the teacher's fixed combat/respawn-only loop
// to spec §5's six-phase tick order.
package sim

import (
	"time"

	"github.com/voidengine/simcore/internal/behavior"
	"github.com/voidengine/simcore/internal/clock"
	"github.com/voidengine/simcore/internal/combat"
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/crafting"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/faction"
	"github.com/voidengine/simcore/internal/instance"
	"github.com/voidengine/simcore/internal/logging"
	"github.com/voidengine/simcore/internal/magic"
	"github.com/voidengine/simcore/internal/quest"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/scripting"
	"github.com/voidengine/simcore/internal/spawner"
	"github.com/voidengine/simcore/internal/worldgraph"
)

// ItemTemplate is the content catalog entry backing both quest rewards and
// crafting results: enough to instantiate a fresh entity.Item on demand.
type ItemTemplate struct {
	Name    string
	Subtype entity.ItemSubtype
	Value   int
}

// Config bundles the content (graph, templates, tuning) a World is built
// from. The simulation core takes no position on how content is loaded, so
// every field here is a plain map a caller's content pipeline populates.
type Config struct {
	Seed int64

	Graph        *worldgraph.Graph
	NPCTemplates spawner.Registry
	Spells       map[string]*magic.Spell

	ItemTemplates          map[string]ItemTemplate
	QuestItemCatalog       map[string]quest.ItemTemplate
	InstanceQuestTemplates map[string]quest.InstanceQuestTemplate
	QuestGiverInterests    map[string][]string // NPC template id -> quest types it gives

	Vendors map[string]crafting.Vendor // keyed by vendor NPC instance id
	Recipes map[string]crafting.Recipe // keyed by recipe id

	Tuning     config.Tuning
	ClockRatio float64 // game seconds per real second, clock.New's ratio
}

// World is the live, mutable simulation state plus every subsystem manager
// that advances or consults it (spec §5's single shared-state owner: no
// subsystem here locks anything itself, since the tick loop is the only
// writer and player commands are interleaved between ticks, never during).
type World struct {
	Store *entity.Store
	Items *entity.ItemStore
	Graph *worldgraph.Graph

	Spawner   *spawner.Manager
	Instances *instance.Manager
	Behavior  *behavior.Dispatcher
	Clock     *clock.Clock
	Weather   *clock.Weather
	Quests    *quest.Generator

	RNG *rng.Source

	QuestBoard []*quest.Instance

	tuning         config.Tuning
	itemTemplates  map[string]ItemTemplate
	giverInterests map[string][]string
	vendors        map[string]crafting.Vendor
	recipes        map[string]crafting.Recipe
	allQuests      map[string]*quest.Instance // every quest instance ever generated, by id
}

// New wires every subsystem from cfg, following the teacher's bootstrap
// order: content registries first, then the managers that consult them,
// then the dispatcher that ties them together via injected closures.
func New(cfg Config) *World {
	store := entity.NewStore()
	items := entity.NewItemStore()
	graph := cfg.Graph
	if graph == nil {
		graph = worldgraph.NewGraph()
	}
	src := rng.New(cfg.Seed)

	tuning := cfg.Tuning
	if tuning.Spawner.ScanInterval <= 0 {
		tuning.Spawner.ScanInterval = time.Duration(tuning.Spawner.ScanSeconds) * time.Second
	}

	hostile := func(a, b *entity.Combatant) bool {
		return faction.IsHostileTo(a, b, faction.StoreReputationLookup(store))
	}

	instanceMgr := instance.NewManager(graph)
	spawnMgr := spawner.NewManager(graph, store, cfg.NPCTemplates, src)
	dispatcher := behavior.New(graph, store, tuning.LevelDiff, cfg.Spells, src, hostile, scripting.NewEngine())

	clk := clock.New(cfg.ClockRatio)
	weather := clock.NewWeather()
	clk.OnPeriodChange(func(season int) {
		weather.OnPeriodChange(season, tuning.Weather, src)
	})

	generator := &quest.Generator{
		Graph:       graph,
		Store:       store,
		NPCs:        cfg.NPCTemplates,
		Items:       cfg.QuestItemCatalog,
		Instances:   cfg.InstanceQuestTemplates,
		InstanceMgr: instanceMgr,
		RNG:         src,
		Tuning:      tuning.Quest,
	}

	return &World{
		Store:     store,
		Items:     items,
		Graph:     graph,
		Spawner:   spawnMgr,
		Instances: instanceMgr,
		Behavior:  dispatcher,
		Clock:     clk,
		Weather:   weather,
		Quests:    generator,
		RNG:       src,

		tuning:         tuning,
		itemTemplates:  cfg.ItemTemplates,
		giverInterests: cfg.QuestGiverInterests,
		vendors:        cfg.Vendors,
		recipes:        cfg.Recipes,
		allQuests:      make(map[string]*quest.Instance),
	}
}

// grantItem instantiates a fresh item of templateID from the content
// catalog and registers it with the item store, matching the
// quest.ItemLookup / crafting.ItemGrant closure shape every subsystem that
// hands out items expects.
func (w *World) grantItem(templateID string) (string, bool) {
	tmpl, ok := w.itemTemplates[templateID]
	if !ok {
		return "", false
	}
	item := entity.NewItem(templateID, tmpl.Name, tmpl.Subtype)
	item.Value = tmpl.Value
	w.Items.Add(item)
	return item.InstanceID, true
}

func (w *World) itemValue(templateID string) int {
	if tmpl, ok := w.itemTemplates[templateID]; ok {
		return tmpl.Value
	}
	return w.Items.ValueOf(templateID)
}

// givers builds the []quest.Giver list the generator/board need from every
// live NPC whose template id carries a configured quest-interest entry.
func (w *World) givers() []quest.Giver {
	var out []quest.Giver
	for _, npc := range w.Store.LiveNPCsInOrder() {
		if !npc.IsAlive {
			continue
		}
		interests, ok := w.giverInterests[npc.TemplateID]
		if !ok {
			continue
		}
		out = append(out, quest.Giver{
			InstanceID: npc.InstanceID,
			TemplateID: npc.TemplateID,
			Name:       npc.Name,
			Location:   npc.Location,
			Interests:  interests,
		})
	}
	return out
}

// RefreshQuestBoard tops the board up to config.MaxQuestsOnBoard (spec
// §4.10), indexing every newly generated instance into allQuests so it can
// later be looked up by id from a player's quest log.
func (w *World) RefreshQuestBoard(playerLevel int) {
	w.QuestBoard = w.Quests.EnsureInitialQuests(w.QuestBoard, playerLevel, w.givers())
	for _, q := range w.QuestBoard {
		w.allQuests[q.InstanceID] = q
	}
}

// Tick advances the simulation by one step (spec §5's six-phase order):
// clock advance, respawn scan, spawner scan, per-NPC effect tick and
// behavior dispatch, quest completion scan, then instance cleanup. Player
// commands never interleave with this method (spec §5/§8: processed
// between ticks), so it never takes a lock.
func (w *World) Tick(now time.Time, realDT float64) []string {
	var messages []string

	w.Clock.Advance(realDT)
	tickDuration := time.Duration(realDT * w.Clock.RealToGameRatio * float64(time.Second))

	messages = append(messages, w.Spawner.TickRespawns(now)...)
	messages = append(messages, w.Spawner.ScanRegions(now, w.tuning.Spawner.ScanInterval)...)

	killedBy := make(map[string]string) // dead NPC instance id -> attributed killer instance id

	for _, npc := range w.Store.LiveNPCsInOrder() {
		if !npc.IsAlive {
			continue
		}

		for _, result := range npc.Effects.Tick(tickDuration) {
			if result.Damage > 0 {
				combat.TakeDamage(&npc.Combatant, result.Damage, result.DamageType)
				if !npc.IsAlive {
					killedBy[npc.InstanceID] = result.SourceID
				}
			}
			if result.Heal > 0 {
				npc.Health += result.Heal
				npc.ClampHealth()
			}
		}
		if !npc.IsAlive {
			continue
		}

		targetsBefore := make(map[string]bool, len(npc.CombatTargets))
		for id := range npc.CombatTargets {
			if c, ok := w.Store.ResolveCombatant(id); ok {
				targetsBefore[id] = c.IsAlive
			}
		}

		if msg := w.Behavior.Tick(npc, now); msg != "" {
			messages = append(messages, msg)
		}

		for id, wasAlive := range targetsBefore {
			if !wasAlive {
				continue
			}
			if c, ok := w.Store.ResolveCombatant(id); ok && !c.IsAlive {
				if dead, ok := w.Store.GetNPC(id); ok {
					killedBy[dead.InstanceID] = npc.InstanceID
				}
			}
		}
	}

	for _, player := range w.Store.Players() {
		for _, result := range player.Effects.Tick(tickDuration) {
			if result.Damage > 0 {
				combat.TakeDamage(&player.Combatant, result.Damage, result.DamageType)
			}
			if result.Heal > 0 {
				player.Health += result.Heal
				player.ClampHealth()
			}
		}
	}

	for _, npc := range w.Store.LiveNPCsInOrder() {
		if npc.IsAlive {
			continue
		}
		messages = append(messages, w.finishNPCDeath(npc, killedBy[npc.InstanceID], now)...)
	}

	for _, player := range w.Store.Players() {
		messages = append(messages, quest.CheckRegionClear(w.Store, w.allQuests, player.QuestLog)...)
	}

	removed := w.Instances.SweepExpired(func(questInstanceID string) bool {
		q, ok := w.allQuests[questInstanceID]
		return !ok || q.State == quest.StateCompleted
	})
	for _, id := range removed {
		logging.Info().Str("quest_instance_id", id).Msg("instance region swept")
	}

	return messages
}

// finishNPCDeath clears the dead NPC's effects, rolls and places its loot,
// queues it for respawn if eligible, removes it from the store, and fires
// the npc_killed quest hook and (when the death is attributed to a player
// or a player-owned minion) grants kill XP, following the original
// engine's die(world) returning dropped items while a separate caller
// credits the killer (spec §4.5, §4.9).
func (w *World) finishNPCDeath(npc *entity.NPC, killerInstanceID string, now time.Time) []string {
	var messages []string
	npc.Effects.Clear()

	if npc.OwnerID == "" {
		w.Spawner.QueueRespawn(npc, now)

		drops := combat.RollLoot(npc.LootTable, w.RNG)
		if len(drops) > 0 {
			if room, ok := w.Graph.GetRoom(npc.Location.RegionID, npc.Location.RoomID); ok {
				for templateID, qty := range drops {
					for i := 0; i < qty; i++ {
						if instanceID, ok := w.grantItem(templateID); ok {
							if item, ok := w.Items.Get(instanceID); ok {
								room.AddItem(worldgraph.Item{InstanceID: instanceID, TemplateID: templateID, Name: item.Name})
							}
						}
					}
				}
			}
		}
	}

	w.Store.RemoveNPC(npc.InstanceID)

	killer, ok := w.Store.ResolveCombatant(killerInstanceID)
	var killerPlayer *entity.Player
	if ok {
		if killer.Faction == "player" {
			killerPlayer, _ = w.Store.GetPlayer(killer.InstanceID)
		} else if minion, ok := w.Store.GetNPC(killer.InstanceID); ok && minion.OwnerID != "" {
			killerPlayer, _ = w.Store.GetPlayer(minion.OwnerID)
		}
	}
	if killerPlayer != nil {
		xp := combat.CalculateXPGain(killerPlayer.Level, npc.Level, npc.MaxHealth, w.tuning.LevelDiff)
		messages = append(messages, entity.GrantXP(killerPlayer, xp)...)
		messages = append(messages, quest.HandleNPCKilled(w.allQuests, killerPlayer.QuestLog, npc.TemplateID)...)
	}

	return messages
}
