package quest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/instance"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/spawner"
	"github.com/voidengine/simcore/internal/worldgraph"
)

// AllTypes is the quest-type rotation the board draws from (spec §4.10),
// matching the distilled design's QUEST_TYPES_ALL.
var AllTypes = []string{"kill", "fetch", "deliver", "instance"}

// nonInstanceTypes excludes "instance" for callers that want a quest
// giver NPC rather than a board posting.
var nonInstanceTypes = []string{"kill", "fetch", "deliver"}

// ItemTemplate is the minimal content record the fetch/deliver generators
// need: a name and value. Like spawner.NPCTemplate, the quest system takes
// no position on how the content catalog is loaded.
type ItemTemplate struct {
	TemplateID string
	Name       string
	Value      int
}

// InstanceQuestTemplate describes a bounty-style instance quest (spec
// §4.10's "instance" generation): a creature pool, a procedural layout
// config, and the outdoor regions it may surface in.
type InstanceQuestTemplate struct {
	TemplateID              string
	Level                   int
	PossibleTargetTemplates  []string
	Layout                  instance.LayoutConfig
	PossibleEntryRegions    []string
	ExitCommand             string
	CompletionNPCTemplateID string
}

// Giver describes an NPC eligible to hand out generic quests: its
// instance id, template id, faction, location, name, and the quest types
// it is interested in giving (spec's npc_quest_interests table).
type Giver struct {
	InstanceID string
	TemplateID string
	Name       string
	Location   entity.Location
	Interests  []string
}

func (g Giver) interestedIn(questType string) bool {
	for _, t := range g.Interests {
		if t == questType {
			return true
		}
	}
	return false
}

// Generator produces quest instances, grounded on the distilled design's
// QuestGenerator: npc_killed/kill-objective target selection scans hostile
// templates by level band, fetch cross-references loot tables against
// spawner regions, deliver picks any living friendly NPC, and instance
// quests splice a procedurally generated region via internal/instance.
type Generator struct {
	Graph      *worldgraph.Graph
	Store      *entity.Store
	NPCs       spawner.Registry
	Items      map[string]ItemTemplate
	Instances  map[string]InstanceQuestTemplate
	InstanceMgr *instance.Manager
	RNG        *rng.Source
	Tuning     config.QuestTuning
}

// GenerateNonInstanceQuest builds a kill/fetch/deliver quest from a giver
// NPC interested in questType (random among the three when questType is
// empty), or nil if no valid giver/objective combination exists.
func (g *Generator) GenerateNonInstanceQuest(givers []Giver, playerLevel int, questType string) *Instance {
	if questType == "" {
		t, ok := rng.Pick(g.RNG, nonInstanceTypes)
		if !ok {
			return nil
		}
		questType = t
	}

	giver := g.selectGiver(givers, questType)
	if giver == nil {
		return nil
	}

	var obj *Objective
	switch questType {
	case "kill":
		obj = g.generateKillObjective(playerLevel, *giver)
	case "fetch":
		obj = g.generateFetchObjective(playerLevel)
	case "deliver":
		obj = g.generateDeliverObjective(*giver)
	}
	if obj == nil {
		return nil
	}

	q := &Instance{
		InstanceID:      fmt.Sprintf("%s_%s_%s", questType, giver.TemplateID, uuid.NewString()[:6]),
		Type:            questType,
		GiverInstanceID: giver.InstanceID,
		State:           StateActive,
		Stages:          []Stage{{ID: "turn_in", Objective: *obj}},
	}
	q.Rewards = g.calculateRewards(questType, *obj)
	q.Title, q.Description = g.formatQuestText(questType, *obj, giver.Name)
	return q
}

// GenerateInstanceQuest builds a bounty-style instance quest posted to the
// board (giver_instance_id == "quest_board" per the distilled design),
// generating its dungeon layout up front.
func (g *Generator) GenerateInstanceQuest(playerLevel int) *Instance {
	var valid []InstanceQuestTemplate
	for _, t := range g.Instances {
		if t.Level <= playerLevel {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	tmpl, ok := rng.Pick(g.RNG, valid)
	if !ok || len(tmpl.PossibleTargetTemplates) == 0 {
		return nil
	}
	targetTemplateID, _ := rng.Pick(g.RNG, tmpl.PossibleTargetTemplates)

	entryPoint := g.pickOutdoorEntry(tmpl.PossibleEntryRegions)
	if entryPoint == nil {
		return nil
	}

	questInstanceID := fmt.Sprintf("%s_%s", tmpl.TemplateID, uuid.NewString()[:6])
	noiseSeed := int64(g.RNG.Intn(1 << 30))
	regionID, err := g.InstanceMgr.InstantiateQuestRegion(questInstanceID, tmpl.Layout, g.RNG, noiseSeed, entryPoint.RegionID, entryPoint.RoomID, tmpl.ExitCommand)
	if err != nil {
		return nil
	}

	targetName := targetTemplateID
	if t, ok := g.NPCs.Get(targetTemplateID); ok {
		targetName = t.Name
	}
	plural := simplePlural(targetName)

	obj := Objective{
		Type:                    ObjectiveClearRegion,
		TargetTemplateID:        targetTemplateID,
		TargetNamePlural:        plural,
		CompletionCheckEnabled:  true,
		CompletionNPCTemplateID: tmpl.CompletionNPCTemplateID,
	}

	entryPoint.ExitCommand = tmpl.ExitCommand
	entryPoint.Description = "A previously unnoticed, rundown house stands here, a hastily scrawled notice about an infestation tacked to its door."

	return &Instance{
		InstanceID:       questInstanceID,
		Type:             "instance",
		GiverInstanceID:  "quest_board",
		Title:            fmt.Sprintf("Bounty: Clear out the %s", plural),
		Description:      fmt.Sprintf("A bounty has been posted to clear out an infestation of %s from a nearby location.", plural),
		State:            StateActive,
		InstanceRegionID: regionID,
		EntryPoint:       entryPoint,
		Stages:           []Stage{{ID: "clear", Objective: obj}},
	}
}

func (g *Generator) pickOutdoorEntry(regionIDs []string) *EntryPoint {
	var candidates []EntryPoint
	for _, regionID := range regionIDs {
		region, ok := g.Graph.GetRegion(regionID)
		if !ok {
			continue
		}
		for roomID, room := range region.Rooms {
			if room.Outdoors {
				candidates = append(candidates, EntryPoint{RegionID: regionID, RoomID: roomID})
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	chosen, _ := rng.Pick(g.RNG, candidates)
	return &chosen
}

func (g *Generator) selectGiver(givers []Giver, questType string) *Giver {
	var candidates []Giver
	for _, giver := range givers {
		if giver.interestedIn(questType) {
			candidates = append(candidates, giver)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	chosen, _ := rng.Pick(g.RNG, candidates)
	return &chosen
}

func (g *Generator) generateKillObjective(playerLevel int, giver Giver) *Objective {
	levelRange := g.Tuning.LevelRangePlayer
	minLvl, maxLvl := playerLevel-levelRange, playerLevel+levelRange
	if minLvl < 1 {
		minLvl = 1
	}

	var valid []string
	for id, t := range g.NPCs {
		if t.Faction == "hostile" && t.Level >= minLvl && t.Level <= maxLvl {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	targetID, _ := rng.Pick(g.RNG, valid)
	target := g.NPCs[targetID]

	locationHint := "nearby regions"
	if region, ok := g.Graph.GetRegion(giver.Location.RegionID); ok {
		locationHint = "the area around " + region.Name
	}

	qty := int(float64(g.Tuning.KillQuantityBase) + float64(playerLevel)*g.Tuning.KillQuantityPerLevel)
	if qty < 1 {
		qty = 1
	}

	return &Objective{
		Type:             ObjectiveKill,
		TargetTemplateID: targetID,
		TargetNamePlural: simplePlural(target.Name),
		RequiredQuantity: qty,
		LocationHint:     locationHint,
		DifficultyLevel:  target.Level,
	}
}

func (g *Generator) generateFetchObjective(playerLevel int) *Objective {
	levelRange := g.Tuning.LevelRangePlayer
	minLvl, maxLvl := playerLevel-levelRange, playerLevel+levelRange
	if minLvl < 1 {
		minLvl = 1
	}

	type option struct {
		itemID, mobID, regionID string
	}
	var options []option
	for itemID := range g.Items {
		for mobID, mob := range g.NPCs {
			if mob.Faction != "hostile" || mob.Level < minLvl || mob.Level > maxLvl {
				continue
			}
			if !dropsItem(mob, itemID) {
				continue
			}
			for _, region := range g.Graph.Regions {
				if region.Spawner == nil || region.SafeZone {
					continue
				}
				if containsID(region.Spawner.MonsterTemplateIDs, mobID) {
					options = append(options, option{itemID, mobID, region.ID})
					break
				}
			}
		}
	}
	if len(options) == 0 {
		return nil
	}
	chosen, _ := rng.Pick(g.RNG, options)
	item := g.Items[chosen.itemID]
	mob := g.NPCs[chosen.mobID]
	region, _ := g.Graph.GetRegion(chosen.regionID)
	locationHint := chosen.regionID
	if region != nil {
		locationHint = region.Name
	}

	qty := int(float64(g.Tuning.FetchQuantityBase) + float64(playerLevel)*g.Tuning.FetchQuantityPerLevel)
	if qty < 1 {
		qty = 1
	}

	return &Objective{
		Type:             ObjectiveFetch,
		ItemTemplateID:   chosen.itemID,
		ItemName:         simplePlural(item.Name),
		RequiredQuantity: qty,
		LocationHint:     locationHint,
		DifficultyLevel:  item.Value * qty,
		TargetNamePlural: simplePlural(mob.Name),
	}
}

func (g *Generator) generateDeliverObjective(giver Giver) *Objective {
	var recipients []*entity.NPC
	for _, n := range g.Store.LiveNPCsInOrder() {
		if n.IsAlive && n.Faction != "hostile" && n.InstanceID != giver.InstanceID {
			recipients = append(recipients, n)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	recipient, _ := rng.Pick(g.RNG, recipients)

	region, _ := g.Graph.GetRegion(recipient.Location.RegionID)
	regionName := recipient.Location.RegionID
	if region != nil {
		regionName = region.Name
	}

	return &Objective{
		Type:                 ObjectiveDeliver,
		ItemTemplateID:       "quest_package_generic",
		ItemInstanceID:       "delivery_" + uuid.NewString()[:6],
		ItemName:             "a package",
		RecipientInstanceID:  recipient.InstanceID,
		RecipientName:        recipient.Name,
		LocationHint:         regionName,
		DifficultyLevel:      5,
	}
}

func (g *Generator) calculateRewards(questType string, obj Objective) Reward {
	difficulty := obj.DifficultyLevel
	if difficulty == 0 {
		difficulty = 1
	}
	quantity := obj.RequiredQuantity
	if quantity == 0 {
		quantity = 1
	}

	xp := g.Tuning.RewardBaseXP + difficulty*g.Tuning.RewardXPPerLevel
	gold := g.Tuning.RewardBaseGold + difficulty*g.Tuning.RewardGoldPerLevel
	if questType == "kill" || questType == "fetch" {
		xp += quantity * g.Tuning.RewardXPPerQuantity
		gold += quantity * g.Tuning.RewardGoldPerQuantity
	}
	return Reward{XP: xp, Gold: gold}
}

func (g *Generator) formatQuestText(questType string, obj Objective, giverName string) (title, description string) {
	switch questType {
	case "kill":
		return fmt.Sprintf("Bounty: %s", obj.TargetNamePlural),
			fmt.Sprintf("%s is offering a bounty for slaying %d %s sighted in %s.", giverName, obj.RequiredQuantity, obj.TargetNamePlural, obj.LocationHint)
	case "fetch":
		return fmt.Sprintf("Gather: %s", obj.ItemName),
			fmt.Sprintf("%s needs %d %s. They believe %s in %s may carry them.", giverName, obj.RequiredQuantity, obj.ItemName, obj.TargetNamePlural, obj.LocationHint)
	case "deliver":
		return fmt.Sprintf("Delivery to %s", obj.RecipientName),
			fmt.Sprintf("%s asks you to deliver a package to %s, who can be found in %s.", giverName, obj.RecipientName, obj.LocationHint)
	default:
		return "Quest", ""
	}
}

func dropsItem(t *spawner.NPCTemplate, itemID string) bool {
	for _, entry := range t.LootTable {
		if entry.ItemTemplateID == itemID {
			return true
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// simplePlural appends "s" unless the name already looks plural, a rough
// equivalent of the distilled design's simple_plural helper used purely
// for generated flavor text.
func simplePlural(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "s") {
		return name
	}
	return name + "s"
}
