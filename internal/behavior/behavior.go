// Package behavior implements the per-tick NPC dispatcher (spec §4.8):
// healer, retreat, combat, and the per-behavior idle movement, evaluated
// in a fixed precedence order where the first rule that fires wins.
// Ported from original_source/engine/npcs/ai/dispatcher.py, movement.py,
// combat_logic.py and specialized.py.
package behavior

import (
	"fmt"
	"time"

	"github.com/voidengine/simcore/internal/combat"
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/magic"
	"github.com/voidengine/simcore/internal/pathfinder"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/scripting"
	"github.com/voidengine/simcore/internal/worldgraph"
)

// IsHostile reports whether a and b are enemies of one another; supplied
// by the caller so behavior stays decoupled from internal/faction.
type IsHostile func(a, b *entity.Combatant) bool

// Dispatcher holds the shared dependencies every NPC tick consults.
type Dispatcher struct {
	Graph     *worldgraph.Graph
	Store     *entity.Store
	Tuning    map[string]config.LevelDiffBucket
	Spells    map[string]*magic.Spell
	RNG       *rng.Source
	Hostile   IsHostile
	Scripting *scripting.Engine
}

// New creates a Dispatcher. Scripting may be nil, in which case special
// abilities always resolve to their fixed DamageMultiplier/FlavorMessage.
func New(g *worldgraph.Graph, s *entity.Store, tuning map[string]config.LevelDiffBucket, spells map[string]*magic.Spell, src *rng.Source, hostile IsHostile, scriptEngine *scripting.Engine) *Dispatcher {
	return &Dispatcher{Graph: g, Store: s, Tuning: tuning, Spells: spells, RNG: src, Hostile: hostile, Scripting: scriptEngine}
}

// Tick runs the full precedence chain for one NPC and returns an optional
// message describing the action taken (spec §4.8).
func (d *Dispatcher) Tick(npc *entity.NPC, now time.Time) string {
	if !npc.IsAlive {
		return ""
	}
	if npc.Effects.IsStunned() {
		return ""
	}
	if npc.IsTrading {
		return ""
	}
	if npc.BehaviorType == entity.BehaviorMinion && npc.SummonDuration > 0 && now.After(npc.CreationTime.Add(npc.SummonDuration)) {
		d.despawnMinion(npc)
		return fmt.Sprintf("%s fades away.", npc.Name)
	}

	if npc.BehaviorType == entity.BehaviorHealer {
		if msg, acted := d.healerLogic(npc, now); acted {
			return msg
		}
	}

	if npc.BehaviorType == entity.BehaviorRetreating {
		return d.performRetreat(npc, now)
	}

	if npc.InCombat {
		return d.combatRound(npc, now)
	}

	if msg, engaged := d.scanForTargets(npc, now); engaged {
		return msg
	}

	if now.Sub(npc.LastMovedAt) < npc.MoveCooldown {
		return ""
	}

	return d.idleMovement(npc, now)
}

func (d *Dispatcher) despawnMinion(npc *entity.NPC) {
	if owner, ok := d.Store.GetPlayer(npc.OwnerID); ok {
		for spellID, ids := range owner.ActiveSummons {
			filtered := ids[:0]
			for _, id := range ids {
				if id != npc.InstanceID {
					filtered = append(filtered, id)
				}
			}
			owner.ActiveSummons[spellID] = filtered
		}
	}
	d.Store.RemoveNPC(npc.InstanceID)
}

// healerLogic implements spec §4.8 step 4.
func (d *Dispatcher) healerLogic(npc *entity.NPC, now time.Time) (string, bool) {
	healSpell := d.findCastableHealSpell(npc, now)
	if healSpell == nil {
		return "", false
	}

	var lowest *entity.Combatant
	lowestFrac := config.NPCHealerHealThreshold

	for _, other := range d.Store.NPCsInRoom(npc.Location.RegionID, npc.Location.RoomID) {
		if other.InstanceID == npc.InstanceID || !other.IsAlive {
			continue
		}
		if d.Hostile(&npc.Combatant, &other.Combatant) {
			continue
		}
		if frac := other.HealthFraction(); frac < lowestFrac {
			lowestFrac = frac
			lowest = &other.Combatant
		}
	}
	for _, p := range d.Store.PlayersInRoom(npc.Location.RegionID, npc.Location.RoomID) {
		if !p.IsAlive || d.Hostile(&npc.Combatant, &p.Combatant) {
			continue
		}
		if frac := p.HealthFraction(); frac < lowestFrac {
			lowestFrac = frac
			lowest = &p.Combatant
		}
	}

	if lowest == nil {
		return "", false
	}

	npc.LastCombatActionAt = now
	magic.Cast(&npc.Combatant, healSpell, now)
	result := magic.ApplyEffect(&npc.Combatant, lowest, healSpell.Effects[0], healSpell, d.Tuning, d.RNG)
	return result.Message, true
}

func (d *Dispatcher) findCastableHealSpell(npc *entity.NPC, now time.Time) *magic.Spell {
	for _, id := range npc.UsableSpells {
		spell, ok := d.Spells[id]
		if !ok || !spell.HasEffectType(magic.EffectHeal) {
			continue
		}
		if ok, _ := magic.CanCast(&npc.Combatant, spell, now); ok {
			return spell
		}
	}
	return nil
}

// performRetreat implements spec §4.8 step 5 and the "retreating_for_mana"
// state machine, grounded on combat_logic.py's perform_retreat.
func (d *Dispatcher) performRetreat(npc *entity.NPC, now time.Time) string {
	if npc.ManaFraction() >= 1.0 {
		npc.BehaviorType = npc.OriginalBehavior
		if npc.BehaviorType == "" {
			npc.BehaviorType = entity.BehaviorWanderer
		}
		npc.RetreatDestination = nil
		npc.CurrentPath = nil
		return fmt.Sprintf("%s looks recovered.", npc.Name)
	}

	if npc.RetreatDestination != nil && *npc.RetreatDestination == npc.Location {
		npc.CurrentPath = nil
		return ""
	}

	if len(npc.CurrentPath) > 0 {
		direction := npc.CurrentPath[0]
		npc.CurrentPath = npc.CurrentPath[1:]
		return d.executeMove(npc, direction, now)
	}

	npc.BehaviorType = npc.OriginalBehavior
	if npc.BehaviorType == "" {
		npc.BehaviorType = entity.BehaviorWanderer
	}
	npc.RetreatDestination = nil
	return fmt.Sprintf("%s seems to have lost its way and stops retreating.", npc.Name)
}

// startRetreat enters the retreating_for_mana state (spec §4.8's final
// paragraph), called from combatRound when mana dips below threshold.
func (d *Dispatcher) startRetreat(npc *entity.NPC) string {
	if npc.RetreatDestination == nil {
		region, room, found := findNearestSafeRoom(d.Graph, npc.Location.RegionID, npc.Location.RoomID)
		if !found {
			return ""
		}
		npc.RetreatDestination = &entity.Location{RegionID: region, RoomID: room}
	}

	path, ok := pathfinder.FindPath(d.Graph, npc.Location.RegionID, npc.Location.RoomID, npc.RetreatDestination.RegionID, npc.RetreatDestination.RoomID)
	if !ok || len(path) == 0 {
		npc.RetreatDestination = nil
		return ""
	}

	npc.CurrentPath = path
	npc.OriginalBehavior = npc.BehaviorType
	npc.BehaviorType = entity.BehaviorRetreating
	npc.InCombat = false
	npc.CombatTargets = make(map[string]struct{})
	return fmt.Sprintf("%s looks exhausted and retreats from battle, heading %s!", npc.Name, path[0])
}

// combatRound implements spec §4.8 step 6.
func (d *Dispatcher) combatRound(npc *entity.NPC, now time.Time) string {
	if npc.MaxMana > 0 && npc.ManaFraction() < config.NPCLowManaRetreatThreshold {
		if msg := d.startRetreat(npc); msg != "" {
			return msg
		}
	}

	if npc.HealthFraction() < npc.FleeThreshold {
		return d.tryFlee(npc, now)
	}

	d.Store.PruneCombatTargets(&npc.Combatant)
	var targetID string
	for id := range npc.CombatTargets {
		targetID = id
		break
	}
	if targetID == "" {
		npc.InCombat = false
		return ""
	}
	target, ok := d.Store.ResolveCombatant(targetID)
	if !ok {
		npc.InCombat = false
		return ""
	}

	if !now.Before(npc.LastAttackAt.Add(npc.AttackCooldown)) {
		npc.LastAttackAt = now
		result := d.resolveAttack(npc, target)
		if result.TargetDefeated {
			npc.InCombat = false
		}
		return result.Message
	}
	return ""
}

// resolveAttack rolls for a special ability (spec §4.5's fixed per-tick
// chance) before falling back to a plain attack, so an NPC's declared
// abilities actually apply their multiplier/flavor instead of sitting
// unused on the template.
func (d *Dispatcher) resolveAttack(npc *entity.NPC, target *entity.Combatant) combat.AttackResult {
	ability, fired := combat.TryFireSpecialAbility(npc.SpecialAbilities, d.RNG)
	if !fired {
		return combat.ExecuteAttack(&npc.Combatant, target, npc.Stats.Strength, "claws", d.Tuning, d.RNG)
	}

	multiplier, flavor := ability.DamageMultiplier, ability.FlavorMessage
	if d.Scripting != nil {
		resolved := d.Scripting.ResolveAbility(ability, scripting.SnapshotOf(&npc.Combatant), scripting.SnapshotOf(target))
		multiplier, flavor = resolved.Multiplier, resolved.Flavor
	}
	return combat.ExecuteSpecialAttack(&npc.Combatant, target, npc.Stats.Strength, ability.Name, d.Tuning, d.RNG, multiplier, flavor)
}

func (d *Dispatcher) tryFlee(npc *entity.NPC, now time.Time) string {
	region, ok := d.Graph.GetRegion(npc.Location.RegionID)
	if !ok {
		return ""
	}
	room, ok := region.GetRoom(npc.Location.RoomID)
	if !ok || len(room.Exits) == 0 {
		return ""
	}

	candidates := candidateExits(room, npc, d.Graph)
	if len(candidates) == 0 {
		return ""
	}
	direction, _ := rng.Pick(d.RNG, candidates)

	npc.InCombat = false
	npc.CombatTargets = make(map[string]struct{})
	msg := d.executeMove(npc, direction, now)
	if msg == "" {
		return fmt.Sprintf("%s flees to the %s!", npc.Name, direction)
	}
	return msg
}

// scanForTargets implements spec §4.8 step 7.
func (d *Dispatcher) scanForTargets(npc *entity.NPC, now time.Time) (string, bool) {
	if npc.Faction == "hostile" && npc.Aggression > 0 {
		var candidates []*entity.Combatant
		for _, p := range d.Store.PlayersInRoom(npc.Location.RegionID, npc.Location.RoomID) {
			if p.IsAlive {
				candidates = append(candidates, &p.Combatant)
			}
		}
		for _, other := range d.Store.NPCsInRoom(npc.Location.RegionID, npc.Location.RoomID) {
			if other.InstanceID != npc.InstanceID && other.IsAlive && d.Hostile(&npc.Combatant, &other.Combatant) {
				candidates = append(candidates, &other.Combatant)
			}
		}
		if len(candidates) > 0 && d.RNG.Chance(npc.Aggression) {
			target, _ := rng.Pick(d.RNG, candidates)
			d.enterCombat(npc, target)
			return d.combatRound(npc, now), true
		}
		return "", false
	}

	for _, other := range d.Store.NPCsInRoom(npc.Location.RegionID, npc.Location.RoomID) {
		if other.IsAlive && other.Faction == "hostile" {
			d.enterCombat(npc, &other.Combatant)
			return d.combatRound(npc, now), true
		}
	}
	return "", false
}

func (d *Dispatcher) enterCombat(npc *entity.NPC, target *entity.Combatant) {
	npc.InCombat = true
	if npc.CombatTargets == nil {
		npc.CombatTargets = make(map[string]struct{})
	}
	npc.CombatTargets[target.InstanceID] = struct{}{}
}

// idleMovement implements spec §4.8 step 9, dispatched by behavior_type.
func (d *Dispatcher) idleMovement(npc *entity.NPC, now time.Time) string {
	switch npc.BehaviorType {
	case entity.BehaviorWanderer, entity.BehaviorAggressive, entity.BehaviorHealer:
		return d.wander(npc, now)
	case entity.BehaviorPatrol:
		return d.patrol(npc, now)
	case entity.BehaviorFollower:
		return d.follow(npc, now)
	case entity.BehaviorScheduled:
		return d.scheduled(npc, now)
	case entity.BehaviorMinion:
		return d.minionIdle(npc, now)
	}
	return ""
}

func (d *Dispatcher) wander(npc *entity.NPC, now time.Time) string {
	if !d.RNG.Chance(npc.WanderChance) {
		return ""
	}
	region, ok := d.Graph.GetRegion(npc.Location.RegionID)
	if !ok {
		return ""
	}
	room, ok := region.GetRoom(npc.Location.RoomID)
	if !ok || len(room.Exits) == 0 {
		return ""
	}
	candidates := candidateExits(room, npc, d.Graph)
	if len(candidates) == 0 {
		return ""
	}
	direction, _ := rng.Pick(d.RNG, candidates)
	return d.executeMove(npc, direction, now)
}

// candidateExits applies spec §4.8's instance-boundary and safe-zone
// wandering rules (from movement.py's perform_wander).
func candidateExits(room *worldgraph.Room, npc *entity.NPC, g *worldgraph.Graph) []string {
	currentRegion, ok := g.GetRegion(npc.Location.RegionID)
	isInInstance := ok && currentRegion.IsInstance

	var out []string
	for direction, destID := range room.Exits {
		destRegion, destRoom := worldgraph.SplitExitDest(npc.Location.RegionID, destID)

		if isInInstance {
			if destRegion == npc.Location.RegionID {
				out = append(out, direction)
			}
			continue
		}
		if destRegionObj, ok := g.GetRegion(destRegion); ok && destRegionObj.IsInstance {
			continue
		}
		if npc.Faction == "hostile" {
			if destRoom2, ok := g.GetRoom(destRegion, destRoom); ok && destRoom2.SafeZone {
				continue
			}
		}
		out = append(out, direction)
	}
	return out
}

func (d *Dispatcher) patrol(npc *entity.NPC, now time.Time) string {
	if len(npc.PatrolPoints) == 0 {
		return ""
	}
	target := npc.PatrolPoints[npc.PatrolIndex]
	if npc.Location == target {
		npc.PatrolIndex = (npc.PatrolIndex + 1) % len(npc.PatrolPoints)
		return ""
	}
	path, ok := pathfinder.FindPath(d.Graph, npc.Location.RegionID, npc.Location.RoomID, target.RegionID, target.RoomID)
	if !ok || len(path) == 0 {
		return d.wander(npc, now)
	}
	return d.executeMove(npc, path[0], now)
}

func (d *Dispatcher) follow(npc *entity.NPC, now time.Time) string {
	if npc.FollowTarget == "" {
		return ""
	}
	target, ok := d.Store.ResolveCombatant(npc.FollowTarget)
	if !ok || !target.IsAlive {
		npc.FollowTarget = ""
		return ""
	}
	if npc.Location == target.Location {
		return ""
	}
	path, ok := pathfinder.FindPath(d.Graph, npc.Location.RegionID, npc.Location.RoomID, target.Location.RegionID, target.Location.RoomID)
	if !ok || len(path) == 0 {
		return ""
	}
	return d.executeMove(npc, path[0], now)
}

func (d *Dispatcher) scheduled(npc *entity.NPC, now time.Time) string {
	if len(npc.Schedule) == 0 {
		return ""
	}
	hour := now.Hour()
	var target *entity.ScheduleEntry
	bestDelta := -1
	for i := range npc.Schedule {
		entry := &npc.Schedule[i]
		delta := hour - entry.Hour
		if delta < 0 {
			delta += 24
		}
		if target == nil || delta < bestDelta {
			target = entry
			bestDelta = delta
		}
	}
	if target == nil {
		return ""
	}
	if target.DestRegionID == npc.Location.RegionID && target.DestRoomID == npc.Location.RoomID {
		return ""
	}
	path, ok := pathfinder.FindPath(d.Graph, npc.Location.RegionID, npc.Location.RoomID, target.DestRegionID, target.DestRoomID)
	if !ok || len(path) == 0 {
		return ""
	}
	if npc.AIState == nil {
		npc.AIState = make(map[string]any)
	}
	npc.AIState["current_activity"] = string(target.BehaviorOverride)
	return d.executeMove(npc, path[0], now)
}

func (d *Dispatcher) minionIdle(npc *entity.NPC, now time.Time) string {
	owner, ok := d.Store.GetPlayer(npc.OwnerID)
	if !ok {
		d.despawnMinion(npc)
		return fmt.Sprintf("%s fades away.", npc.Name)
	}

	if npc.Location != owner.Location {
		npc.FollowTarget = owner.InstanceID
		return d.follow(npc, now)
	}

	if owner.InCombat {
		for targetID := range owner.CombatTargets {
			if target, ok := d.Store.ResolveCombatant(targetID); ok && target.IsAlive {
				d.enterCombat(npc, target)
				return fmt.Sprintf("%s moves to assist you against %s!", npc.Name, target.Name)
			}
		}
	}

	for _, other := range d.Store.NPCsInRoom(npc.Location.RegionID, npc.Location.RoomID) {
		if !other.IsAlive {
			continue
		}
		if _, attacking := other.CombatTargets[owner.InstanceID]; attacking {
			d.enterCombat(npc, &other.Combatant)
			return fmt.Sprintf("%s intercepts %s!", npc.Name, other.Name)
		}
	}

	for _, other := range d.Store.NPCsInRoom(npc.Location.RegionID, npc.Location.RoomID) {
		if other.IsAlive && other.Faction == "hostile" {
			d.enterCombat(npc, &other.Combatant)
			return fmt.Sprintf("%s moves to attack %s!", npc.Name, other.Name)
		}
	}
	return ""
}

// executeMove transits npc one hop in direction, updating its location and
// LastMovedAt.
func (d *Dispatcher) executeMove(npc *entity.NPC, direction string, now time.Time) string {
	region, ok := d.Graph.GetRegion(npc.Location.RegionID)
	if !ok {
		return ""
	}
	room, ok := region.GetRoom(npc.Location.RoomID)
	if !ok {
		return ""
	}
	destID, ok := room.GetExit(direction)
	if !ok {
		return ""
	}
	destRegion, destRoom := worldgraph.SplitExitDest(npc.Location.RegionID, destID)
	if _, exists := d.Graph.GetRoom(destRegion, destRoom); !exists {
		return ""
	}

	npc.Location = entity.Location{RegionID: destRegion, RoomID: destRoom}
	npc.LastMovedAt = now
	return ""
}

// findNearestSafeRoom performs a breadth-first search over the graph for
// the closest safe-zone room, used by startRetreat (spec §4.8).
func findNearestSafeRoom(g *worldgraph.Graph, fromRegion, fromRoom string) (string, string, bool) {
	type node struct{ region, room string }
	start := node{fromRegion, fromRoom}
	visited := map[node]bool{start: true}
	queue := []node{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		region, ok := g.GetRegion(cur.region)
		if !ok {
			continue
		}
		room, ok := region.GetRoom(cur.room)
		if !ok {
			continue
		}
		if room.SafeZone && cur != start {
			return cur.region, cur.room, true
		}
		for _, destID := range room.Exits {
			destRegion, destRoom := worldgraph.SplitExitDest(cur.region, destID)
			next := node{destRegion, destRoom}
			if visited[next] {
				continue
			}
			if _, exists := g.GetRoom(destRegion, destRoom); !exists {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return "", "", false
}
