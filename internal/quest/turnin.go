package quest

import (
	"fmt"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/skill"
)

// ItemLookup resolves a live item instance to its template id. The quest
// system takes no position on where item instances are stored, mirroring
// internal/spawner's content-pipeline-agnostic NPCTemplate registry.
type ItemLookup func(instanceID string) (templateID string, ok bool)

func removeFromInventory(player *entity.Player, instanceID string) bool {
	for i, id := range player.Inventory {
		if id == instanceID {
			player.Inventory = append(player.Inventory[:i], player.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

func matchingInventoryItems(player *entity.Player, items ItemLookup, templateID string) []string {
	var matches []string
	for _, id := range player.Inventory {
		if tid, ok := items(id); ok && tid == templateID {
			matches = append(matches, id)
		}
	}
	return matches
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// TurnIn resolves a "talk <giver> complete" interaction (spec §4.10):
// finds the first quest in the player's log ready for turn-in to this NPC
// and applies its objective-specific resolution. Returns the outcome
// message and whether the quest's full chain of stages completed.
func TurnIn(player *entity.Player, src *rng.Source, items ItemLookup, instances map[string]*Instance, npcInstanceID, npcTemplateID string) (string, bool) {
	var q *Instance
	for _, id := range player.QuestLog {
		if cand, ok := instances[id]; ok && IsReadyForTurnIn(cand, npcInstanceID, npcTemplateID) {
			q = cand
			break
		}
	}
	if q == nil {
		return "doesn't seem to be expecting anything from you right now.", false
	}

	obj := q.ActiveObjective()
	if obj == nil {
		return "quest data is missing its objective.", false
	}

	switch obj.Type {
	case ObjectiveNegotiate:
		return resolveNegotiate(player, src, q, obj)
	case ObjectiveDeliver:
		return resolveDeliver(player, q, obj)
	case ObjectiveFetch:
		return resolveFetch(player, q, obj, items)
	default:
		return advanceOrComplete(player, q)
	}
}

func resolveDeliver(player *entity.Player, q *Instance, obj *Objective) (string, bool) {
	found := false
	for _, id := range player.Inventory {
		if id == obj.ItemInstanceID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Sprintf("You don't have the %s.", orDefault(obj.ItemName, "package")), false
	}
	removeFromInventory(player, obj.ItemInstanceID)
	return advanceOrComplete(player, q)
}

func resolveFetch(player *entity.Player, q *Instance, obj *Objective, items ItemLookup) (string, bool) {
	matches := matchingInventoryItems(player, items, obj.ItemTemplateID)
	if len(matches) < obj.RequiredQuantity {
		remaining := obj.RequiredQuantity - len(matches)
		return fmt.Sprintf("You still need %d more %s.", remaining, orDefault(obj.ItemName, "items")), false
	}
	for i := 0; i < obj.RequiredQuantity; i++ {
		removeFromInventory(player, matches[i])
	}
	return advanceOrComplete(player, q)
}

// resolveNegotiate performs the objective's skill check (spec §4.11) and
// picks the success/fail branch. Only success advances the quest stage;
// failure reports the outcome but leaves the quest active for a retry.
func resolveNegotiate(player *entity.Player, src *rng.Source, q *Instance, obj *Objective) (string, bool) {
	success, detail := skill.AttemptCheck(player, src, obj.Skill, obj.Difficulty)
	choiceID := "fail"
	label := "FAILED"
	if success {
		choiceID = "success"
		label = "SUCCESS"
	}

	choice, ok := obj.Choices[choiceID]
	if !ok {
		return "Negotiation configuration error.", false
	}
	if !success {
		return fmt.Sprintf("[Negotiation %s] %s\n\"%s\"\n(%s)", label, detail, choice.Dialogue, choice.Description), false
	}

	msg, completed := advanceOrComplete(player, q)
	return fmt.Sprintf("[Negotiation %s] %s\n\"%s\"\n(%s)\n%s", label, detail, choice.Dialogue, choice.Description, msg), completed
}

// advanceOrComplete moves a quest to its next stage, or to Completed when
// the stage just finished was the last one, moving the instance id between
// the player's active and completed quest logs.
func advanceOrComplete(player *entity.Player, q *Instance) (string, bool) {
	var completionText string
	if q.CurrentStageIndex >= 0 && q.CurrentStageIndex < len(q.Stages) {
		completionText = q.Stages[q.CurrentStageIndex].Completion
	}

	q.CurrentStageIndex++
	if q.CurrentStageIndex >= len(q.Stages) {
		q.State = StateCompleted
		removeFromQuestLog(&player.QuestLog, q.InstanceID)
		player.CompletedQuestLog = append(player.CompletedQuestLog, q.InstanceID)

		msg := fmt.Sprintf("[Quest Complete] %s", q.Title)
		if completionText != "" {
			msg += "\n\"" + completionText + "\""
		}
		return msg, true
	}

	q.State = StateActive
	nextStage := q.Stages[q.CurrentStageIndex]
	msg := "New Objective: " + nextStage.Description
	if nextStage.Dialogue != "" {
		msg += "\n\"" + nextStage.Dialogue + "\""
	}
	return msg, false
}

func removeFromQuestLog(log *[]string, instanceID string) {
	for i, id := range *log {
		if id == instanceID {
			*log = append((*log)[:i], (*log)[i+1:]...)
			return
		}
	}
}

// ApplyRewards credits gold directly and attempts to place reward items
// into the player's inventory via grantItem, which is expected to
// instantiate a fresh item and return its instance id. An inventory-full
// player loses the item but the quest still completes (spec §4.10: "items
// attempted into inventory; inventory-full is non-fatal").
func ApplyRewards(player *entity.Player, rewards Reward, grantItem func(templateID string) (instanceID string, ok bool)) []string {
	player.Gold += rewards.Gold
	messages := []string{fmt.Sprintf("+%d XP, +%d gold", rewards.XP, rewards.Gold)}

	for _, templateID := range rewards.Items {
		if grantItem == nil {
			continue
		}
		instanceID, ok := grantItem(templateID)
		if !ok {
			continue
		}
		if len(player.Inventory) >= config.MaxInventorySize {
			messages = append(messages, fmt.Sprintf("Your inventory is full; the %s is lost.", templateID))
			continue
		}
		player.Inventory = append(player.Inventory, instanceID)
	}
	return messages
}
