// Package quest implements the multi-stage quest system (spec §4.10):
// kill/fetch/deliver/instance quest instances, the npc_killed and
// region-clear event hooks, turn-in resolution per objective type, and
// quest-board replenishment. Grounded on the teacher's pkg/quest/quest.go
// (Quest/Stage/Objective/Reward schema, Manager holding a catalog plus
// per-player progress), generalized from the teacher's fixed JSON story
// quests to procedurally generated per-instance quests.
package quest

import (
	"fmt"

	"github.com/voidengine/simcore/internal/entity"
)

// ObjectiveType enumerates the quest objective kinds (spec §4.10).
type ObjectiveType string

const (
	ObjectiveKill        ObjectiveType = "kill"
	ObjectiveFetch       ObjectiveType = "fetch"
	ObjectiveDeliver     ObjectiveType = "deliver"
	ObjectiveClearRegion ObjectiveType = "clear_region"
	ObjectiveNegotiate   ObjectiveType = "negotiate"
)

// State is a quest instance's lifecycle state.
type State string

const (
	StateActive           State = "active"
	StateReadyToComplete  State = "ready_to_complete"
	StateCompleted        State = "completed"
)

// Choice is one branch of a negotiate objective's outcome.
type Choice struct {
	Dialogue    string
	Description string
}

// Objective holds every field any objective type might populate; unused
// fields for a given Type are left zero, matching the loosely-typed
// per-kind record the distilled design keeps in a single dict.
type Objective struct {
	Type ObjectiveType

	TargetTemplateID string
	TargetNamePlural string
	RequiredQuantity int
	CurrentQuantity  int
	LocationHint     string
	DifficultyLevel  int

	ItemTemplateID string
	ItemInstanceID string
	ItemName       string

	RecipientInstanceID string
	RecipientName        string

	Skill      string
	Difficulty int
	Choices    map[string]Choice

	CompletionNPCTemplateID string
	CompletionCheckEnabled  bool
}

// Stage is one step of a multi-stage quest. TurnInID overrides
// GiverInstanceID as the turn-in target for this stage when set (spec
// §4.10's negotiate objective, which turns in to the negotiation target
// rather than the original quest giver).
type Stage struct {
	ID          string
	Description string
	Objective   Objective
	TurnInID    string
	Dialogue    string
	Completion  string
}

// Reward is a quest's completion payout.
type Reward struct {
	XP    int
	Gold  int
	Items []string
}

// EntryPoint describes how an instance quest surfaces in the world (spec
// §4.12): an existing outdoor room gains a new exit leading into the
// generated region.
type EntryPoint struct {
	RegionID    string
	RoomID      string
	ExitCommand string
	Description string
}

// Instance is a single generated quest: the spec's "quest instance holds
// stages[], current_stage_index, a top-level objective convenience
// pointer...".
type Instance struct {
	InstanceID        string
	Type              string
	Title             string
	Description       string
	GiverInstanceID   string
	Stages            []Stage
	CurrentStageIndex int
	Rewards           Reward
	State             State

	InstanceRegionID string
	EntryPoint       *EntryPoint
}

// ActiveObjective returns the objective of the current stage, or nil if
// the quest has no stages or the index has run past the end.
func (q *Instance) ActiveObjective() *Objective {
	if q.CurrentStageIndex < 0 || q.CurrentStageIndex >= len(q.Stages) {
		return nil
	}
	return &q.Stages[q.CurrentStageIndex].Objective
}

// TurnInTarget is the NPC instance id (or template id, for board-posted
// quests) this quest's active stage reports back to.
func (q *Instance) TurnInTarget() string {
	if q.CurrentStageIndex >= 0 && q.CurrentStageIndex < len(q.Stages) {
		if id := q.Stages[q.CurrentStageIndex].TurnInID; id != "" {
			return id
		}
	}
	return q.GiverInstanceID
}

// HandleNPCKilled implements the npc_killed event hook (spec §4.10): for
// each active kill quest in instances whose active objective targets
// killedTemplateID, increments current_quantity and transitions to
// ready_to_complete once required_quantity is reached.
func HandleNPCKilled(instances map[string]*Instance, activeIDs []string, killedTemplateID string) []string {
	var messages []string
	for _, id := range activeIDs {
		q, ok := instances[id]
		if !ok || q.State != StateActive {
			continue
		}
		obj := q.ActiveObjective()
		if obj == nil || obj.Type != ObjectiveKill || obj.TargetTemplateID != killedTemplateID {
			continue
		}

		obj.CurrentQuantity++
		if obj.CurrentQuantity >= obj.RequiredQuantity {
			q.State = StateReadyToComplete
			messages = append(messages, fmt.Sprintf("%s: objective complete! Report back.", q.Title))
		} else {
			messages = append(messages, fmt.Sprintf("%s: (%d/%d killed).", q.Title, obj.CurrentQuantity, obj.RequiredQuantity))
		}
	}
	return messages
}

// CheckRegionClear implements the region-clear check (spec §4.10): for
// active clear_region quests flagged completion_check_enabled, scans NPCs
// alive in the quest's instance region matching target_template_id; when
// none remain, marks the quest ready_to_complete.
func CheckRegionClear(store *entity.Store, instances map[string]*Instance, activeIDs []string) []string {
	var messages []string
	for _, id := range activeIDs {
		q, ok := instances[id]
		if !ok || q.State != StateActive {
			continue
		}
		obj := q.ActiveObjective()
		if obj == nil || obj.Type != ObjectiveClearRegion || !obj.CompletionCheckEnabled {
			continue
		}
		if q.InstanceRegionID == "" || obj.TargetTemplateID == "" {
			continue
		}

		remaining := 0
		for _, npc := range store.LiveNPCsInOrder() {
			if npc.IsAlive && npc.Location.RegionID == q.InstanceRegionID && npc.TemplateID == obj.TargetTemplateID {
				remaining++
			}
		}
		if remaining == 0 {
			q.State = StateReadyToComplete
			messages = append(messages, fmt.Sprintf("You have cleared %s! Report back.", q.Title))
		}
	}
	return messages
}

// IsReadyForTurnIn reports whether a quest can be turned in to npcID right
// now: ready_to_complete quests always qualify; active quests qualify only
// for objective types that resolve at turn-in time rather than by event
// (fetch/deliver/negotiate), matching the distilled design's talk_handler.
func IsReadyForTurnIn(q *Instance, npcInstanceID, npcTemplateID string) bool {
	target := q.TurnInTarget()
	isTarget := target == npcInstanceID || target == npcTemplateID
	if !isTarget {
		return false
	}
	if q.State == StateReadyToComplete {
		return true
	}
	if q.State != StateActive {
		return false
	}
	obj := q.ActiveObjective()
	if obj == nil {
		return false
	}
	switch obj.Type {
	case ObjectiveFetch, ObjectiveDeliver, ObjectiveNegotiate:
		return true
	default:
		return false
	}
}
