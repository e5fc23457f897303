package sim

import (
	"time"

	"github.com/voidengine/simcore/internal/combat"
	"github.com/voidengine/simcore/internal/crafting"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/magic"
	"github.com/voidengine/simcore/internal/quest"
	"github.com/voidengine/simcore/internal/simerr"
)

// PlayerAttack resolves a player's "attack" command against a live target
// in the player's room (spec §4.5, §6's attack command). On a defeat, the
// killer's XP, loot, and quest hooks run through the same finishNPCDeath
// path the tick loop uses for NPC-caused deaths.
func (w *World) PlayerAttack(player *entity.Player, targetInstanceID string, now time.Time) simerr.Result {
	if !player.IsAlive {
		return simerr.Fail(simerr.ErrNotAlive, "You cannot attack while dead.")
	}
	if player.Effects.IsStunned() {
		return simerr.Fail(simerr.ErrStunned, "You are stunned and cannot act.")
	}

	target, ok := w.Store.GetNPC(targetInstanceID)
	if !ok || !target.IsAlive || target.Location != player.Location {
		return simerr.Fail(simerr.ErrInvalidTarget, "That target isn't here.")
	}
	if !combat.NPCCombatCooldownElapsed(player.LastAttackAt, 1500*time.Millisecond, now) {
		return simerr.Fail(simerr.ErrOnCooldown, "You are not ready to attack again.")
	}

	player.LastAttackAt = now
	player.InCombat = true
	target.InCombat = true
	player.CombatTargets[target.InstanceID] = struct{}{}
	target.CombatTargets[player.InstanceID] = struct{}{}

	attackPower := player.Stats.Strength
	result := combat.ExecuteAttack(&player.Combatant, &target.Combatant, attackPower, "fists", w.tuning.LevelDiff, w.RNG)

	messages := []string{result.Message}
	if result.VampiricHeal > 0 {
		player.Health += result.VampiricHeal
		player.ClampHealth()
	}

	if !target.IsAlive {
		messages = append(messages, w.finishNPCDeath(target, player.InstanceID, now)...)
	}

	return simerr.OkWithData(joinLines(messages), result)
}

// CastSpell resolves a player's "cast" command (spec §4.6, §6): validates
// castability and the target, deducts mana and sets the cooldown, then
// applies every effect the spell declares.
func (w *World) CastSpell(caster *entity.Combatant, spellID string, explicitTarget *entity.Combatant, now time.Time) simerr.Result {
	spell, ok := w.spell(spellID)
	if !ok {
		return simerr.Fail(simerr.ErrSpellNotKnown, "You don't know a spell by that name.")
	}
	if ok, reason := magic.CanCast(caster, spell, now); !ok {
		return simerr.Fail(simerr.ErrOnCooldown, reason)
	}

	var targets []*entity.Combatant
	if explicitTarget != nil {
		if err := magic.ValidateExplicitTarget(spell, caster, explicitTarget, w.hostilePair()); err != nil {
			return simerr.Fail(simerr.ErrInvalidTarget, err.Error())
		}
		targets = []*entity.Combatant{explicitTarget}
	} else {
		occupants := w.combatantsInRoom(caster.Location)
		resolved, err := magic.ResolveTargets(spell, caster, occupants, w.hostilePair())
		if err != nil {
			return simerr.Fail(simerr.ErrInvalidTarget, err.Error())
		}
		targets = resolved
	}
	if len(targets) == 0 {
		return simerr.Fail(simerr.ErrInvalidTarget, "There is nothing to cast that on.")
	}

	magic.Cast(caster, spell, now)

	var messages []string
	for _, target := range targets {
		for _, desc := range spell.Effects {
			result := magic.ApplyEffect(caster, target, desc, spell, w.tuning.LevelDiff, w.RNG)
			if result.Message != "" {
				messages = append(messages, result.Message)
			}
			if !target.IsAlive {
				if npc, ok := w.Store.GetNPC(target.InstanceID); ok {
					messages = append(messages, w.finishNPCDeath(npc, caster.InstanceID, now)...)
				}
			}
		}
	}

	return simerr.OkWithData(joinLines(messages), messages)
}

func (w *World) spell(id string) (*magic.Spell, bool) {
	spell, ok := w.Behavior.Spells[id]
	return spell, ok
}

func (w *World) hostilePair() magic.IsHostilePair {
	return magic.IsHostilePair(w.Behavior.Hostile)
}

func (w *World) combatantsInRoom(loc entity.Location) []*entity.Combatant {
	var out []*entity.Combatant
	for _, npc := range w.Store.NPCsInRoom(loc.RegionID, loc.RoomID) {
		out = append(out, &npc.Combatant)
	}
	for _, p := range w.Store.PlayersInRoom(loc.RegionID, loc.RoomID) {
		out = append(out, &p.Combatant)
	}
	return out
}

// AcceptQuest moves a board-posted quest into the player's active quest
// log (spec §4.10: the player picks up a posting from the quest board).
func (w *World) AcceptQuest(player *entity.Player, questInstanceID string) simerr.Result {
	q, ok := w.allQuests[questInstanceID]
	if !ok {
		return simerr.Fail(simerr.ErrNotFound, "That quest is no longer available.")
	}
	for _, id := range player.QuestLog {
		if id == questInstanceID {
			return simerr.Fail(simerr.ErrInvalidInput, "You already have that quest.")
		}
	}
	player.QuestLog = append(player.QuestLog, questInstanceID)
	return simerr.Ok("Quest accepted: " + q.Title)
}

// TurnInQuest resolves a "talk <npc> complete" interaction (spec §4.10):
// applies the objective-specific turn-in resolution, and on a full
// completion, grants XP/gold/items and replenishes the board.
func (w *World) TurnInQuest(player *entity.Player, npcInstanceID, npcTemplateID string, now time.Time) simerr.Result {
	msg, completed := quest.TurnIn(player, w.RNG, w.Items.TemplateOf, w.allQuests, npcInstanceID, npcTemplateID)
	if !completed {
		return simerr.Ok(msg)
	}

	completedID := player.CompletedQuestLog[len(player.CompletedQuestLog)-1]
	q, ok := w.allQuests[completedID]
	if !ok {
		return simerr.Ok(msg)
	}

	rewardMsgs := quest.ApplyRewards(player, q.Rewards, w.grantItem)
	xpMsgs := entity.GrantXP(player, q.Rewards.XP)

	w.QuestBoard = w.Quests.ReplenishBoard(w.QuestBoard, completedID, player.Level, w.givers())
	for _, posted := range w.QuestBoard {
		w.allQuests[posted.InstanceID] = posted
	}

	return simerr.OkWithData(joinLines(append(append([]string{msg}, rewardMsgs...), xpMsgs...)), q)
}

// Craft resolves a player's "craft" command (spec §4.14), wrapping
// internal/crafting.Craft with the world's item store as the lookup/grant
// backing and the caster's current room as the available station.
func (w *World) Craft(player *entity.Player, recipeID, presentStation string) simerr.Result {
	recipe, ok := w.recipes[recipeID]
	if !ok {
		return simerr.Fail(simerr.ErrNotFound, "You don't know that recipe.")
	}
	msg, ok := crafting.Craft(player, w.RNG, recipe, w.Items.TemplateOf, w.grantItem, w.itemValue, presentStation)
	if !ok {
		return simerr.Fail(simerr.ErrInvalidInput, msg)
	}
	return simerr.Ok(msg)
}

// SellToVendor resolves a player's "sell" command (spec §4.14) against the
// vendor NPC at vendorInstanceID.
func (w *World) SellToVendor(player *entity.Player, vendorInstanceID, itemInstanceID string) simerr.Result {
	vendor, ok := w.vendors[vendorInstanceID]
	if !ok {
		return simerr.Fail(simerr.ErrNotFound, "There is no vendor here.")
	}
	item, ok := w.Items.Get(itemInstanceID)
	if !ok {
		return simerr.Fail(simerr.ErrNotFound, "You don't have that.")
	}
	msg, ok := crafting.SellToVendor(player, vendor, itemInstanceID, item.Subtype, item.Value, w.Items.Remove)
	if !ok {
		return simerr.Fail(simerr.ErrInvalidInput, msg)
	}
	return simerr.Ok(msg)
}

// BuyFromVendor resolves a player's "buy" command (spec §4.14) against the
// vendor NPC at vendorInstanceID.
func (w *World) BuyFromVendor(player *entity.Player, vendorInstanceID, templateID string) simerr.Result {
	vendor, ok := w.vendors[vendorInstanceID]
	if !ok {
		return simerr.Fail(simerr.ErrNotFound, "There is no vendor here.")
	}
	msg, ok := crafting.BuyFromVendor(player, vendor, templateID, w.itemValue(templateID), w.grantItem)
	if !ok {
		return simerr.Fail(simerr.ErrInsufficientFunds, msg)
	}
	return simerr.Ok(msg)
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		if l == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += l
	}
	return out
}
