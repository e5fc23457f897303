// Package entity defines the NPC, Player and Item records and the entity
// store that exclusively owns all live NPC/player records (spec §3). All
// other components resolve references (combat_targets, follow_target,
// owner_id) as weak, id-keyed lookups through the store.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/voidengine/simcore/internal/effect"
)

// ItemSubtype enumerates the item kinds from spec §3.
type ItemSubtype string

const (
	SubtypeWeapon       ItemSubtype = "weapon"
	SubtypeArmor        ItemSubtype = "armor"
	SubtypeShield       ItemSubtype = "shield"
	SubtypeContainer    ItemSubtype = "container"
	SubtypeConsumable   ItemSubtype = "consumable"
	SubtypeKey          ItemSubtype = "key"
	SubtypeResourceNode ItemSubtype = "resource_node"
	SubtypeLockpick     ItemSubtype = "lockpick"
	SubtypeGeneric      ItemSubtype = "generic"
)

// Item is a live item instance.
type Item struct {
	InstanceID string
	TemplateID string
	Name       string
	Weight     float64
	Value      int
	Subtype    ItemSubtype

	Properties map[string]any // durability, charges, locked, is_open, quantity, spell_to_learn, cursed, key_id, ...
	Contents   []string       // instance ids of contained items, for Subtype == Container
}

// NewItem instantiates an item from a template id.
func NewItem(templateID, name string, subtype ItemSubtype) *Item {
	return &Item{
		InstanceID: uuid.NewString(),
		TemplateID: templateID,
		Name:       name,
		Subtype:    subtype,
		Properties: make(map[string]any),
	}
}

// IsStackable reports whether the item stacks with others of the same
// template id (invariant §3.7).
func (i *Item) IsStackable() bool {
	stackable, _ := i.Properties["stackable"].(bool)
	return stackable
}

// Quantity returns the stack quantity, defaulting to 1 for non-stacking
// items.
func (i *Item) Quantity() int {
	if q, ok := i.Properties["quantity"].(int); ok {
		return q
	}
	return 1
}

// Cursed reports whether the item carries a curse.
func (i *Item) Cursed() bool {
	cursed, _ := i.Properties["cursed"].(bool)
	return cursed
}

// Locked and Open report container state.
func (i *Item) Locked() bool {
	v, _ := i.Properties["locked"].(bool)
	return v
}
func (i *Item) IsOpen() bool {
	v, _ := i.Properties["is_open"].(bool)
	return v
}

// Location is a (region, room) pair.
type Location struct {
	RegionID string
	RoomID   string
}

// BehaviorKind enumerates the NPC behavior variants (spec §4.8).
type BehaviorKind string

const (
	BehaviorWanderer   BehaviorKind = "wanderer"
	BehaviorPatrol     BehaviorKind = "patrol"
	BehaviorFollower   BehaviorKind = "follower"
	BehaviorScheduled  BehaviorKind = "scheduled"
	BehaviorHealer     BehaviorKind = "healer"
	BehaviorMinion     BehaviorKind = "minion"
	BehaviorRetreating BehaviorKind = "retreating_for_mana"
	BehaviorAggressive BehaviorKind = "aggressive"
)

// ScheduleEntry binds an hour of the day to a destination room, with an
// optional override of the NPC's idle behavior for that slot (spec §4.8,
// §9 "Dynamic dispatch over behaviors").
type ScheduleEntry struct {
	Hour             int
	DestRegionID     string
	DestRoomID       string
	BehaviorOverride BehaviorKind
}

// Stats holds the base attributes a combatant's effective stats derive
// from (spec §4.4's get_effective_stat consults these plus modifiers).
type Stats struct {
	Strength    int
	Agility     int
	Intelligence int
	SpellPower  int
	Defense     int
}

// Combatant is the shared shape of NPC and Player, matching spec §3's
// table of "essential attributes" common to both.
type Combatant struct {
	InstanceID string
	TemplateID string
	Name       string
	Location   Location

	Stats  Stats
	Level  int
	Health, MaxHealth int
	Mana, MaxMana     int
	Faction           string

	IsAlive bool

	CombatTargets map[string]struct{} // weak refs, resolved by id (invariant §3.3)
	InCombat      bool
	LastCombatActionAt time.Time
	LastAttackAt       time.Time
	LastMovedAt        time.Time

	SpellCooldowns map[string]time.Time // spell id -> deadline
	UsableSpells   []string
	Effects        *effect.Bearer
	Resistances    map[string]int // damage type -> percent reduction

	Inventory []string // item instance ids
}

// NPC is a live non-player character (spec §3).
type NPC struct {
	Combatant

	BehaviorType BehaviorKind
	AIState      map[string]any

	FollowTarget  string // instance id, weak ref
	PatrolPoints  []Location
	PatrolIndex   int
	Schedule      []ScheduleEntry

	OwnerID        string // weak ref to owning player, for minions (invariant §3.4)
	CreationTime   time.Time
	SummonDuration time.Duration
	MaxSummons     int // declared but not enforced (spec §9 open question)

	IsTrading bool // true while engaged in a vendor transaction (spec §4.8 step 2)

	Home Location

	LootTable []LootEntry

	MoveCooldown   time.Duration
	CombatCooldown time.Duration
	AttackCooldown time.Duration
	FleeThreshold  float64
	Aggression     float64 // [0,1]; hostile NPCs engage with this probability
	WanderChance   float64 // [0,1]; probability of idle movement per eligible tick

	SpecialAbilities []SpecialAbility

	// Retreat state (spec §4.8's "retreating_for_mana"): populated by
	// internal/behavior when low mana triggers a retreat, consulted and
	// cleared once the NPC reaches the safe room or recovers mana.
	RetreatDestination *Location
	CurrentPath        []string
	OriginalBehavior   BehaviorKind

	Respawnable  bool
	IsRespawning bool
}

// LootEntry is a per-slot loot roll definition (spec §4.5).
type LootEntry struct {
	ItemTemplateID string
	Chance         float64 // [0,1]
	MinQuantity    int
	MaxQuantity    int
}

// SpecialAbility is a flavor-boosted attack variant an NPC may declare
// (spec §4.5); LuaScript, if set, is evaluated through internal/scripting
// instead of using the fixed DamageMultiplier.
type SpecialAbility struct {
	Name             string
	DamageMultiplier float64
	FlavorMessage    string
	LuaScript        string
}

// NewNPC creates a live NPC instance from a template id.
func NewNPC(templateID, name string) *NPC {
	return &NPC{
		Combatant: Combatant{
			InstanceID:     uuid.NewString(),
			TemplateID:     templateID,
			Name:           name,
			IsAlive:        true,
			CombatTargets:  make(map[string]struct{}),
			SpellCooldowns: make(map[string]time.Time),
			Resistances:    make(map[string]int),
			Effects:        effect.NewBearer(),
		},
		BehaviorType:   BehaviorWanderer,
		AIState:        make(map[string]any),
		FleeThreshold:  0.2,
		WanderChance:   0.3,
		MoveCooldown:   3 * time.Second,
		CombatCooldown: 1500 * time.Millisecond,
		AttackCooldown: 2 * time.Second,
	}
}

// Player is the player character (spec §3): same shape as NPC plus
// progression/economy fields.
type Player struct {
	Combatant

	KnownSpells       []string
	ActiveSummons     map[string][]string // spell id -> minion instance ids
	Reputation        map[string]int      // faction -> standing
	Equipment         map[string]string   // slot -> item instance id
	QuestLog          []string            // active quest instance ids
	CompletedQuestLog []string
	CollectionsProgress map[string]int
	Skills            map[string]SkillState
	Gold              int
	XP                int
	RespawnRegionID   string
	RespawnRoomID     string
	Class             string
}

// SkillState is a skill's level and accumulated xp (spec §4.11).
type SkillState struct {
	Level int
	XP    int
}

// NewPlayer creates a new player record.
func NewPlayer(name string) *Player {
	return &Player{
		Combatant: Combatant{
			InstanceID:     uuid.NewString(),
			Name:           name,
			Faction:        "player",
			IsAlive:        true,
			Level:          1,
			CombatTargets:  make(map[string]struct{}),
			SpellCooldowns: make(map[string]time.Time),
			Resistances:    make(map[string]int),
			Effects:        effect.NewBearer(),
		},
		ActiveSummons:       make(map[string][]string),
		Reputation:          make(map[string]int),
		Equipment:           make(map[string]string),
		CollectionsProgress: make(map[string]int),
		Skills:              make(map[string]SkillState),
	}
}

// ClampHealth enforces invariant §3.6.
func (c *Combatant) ClampHealth() {
	if c.Health < 0 {
		c.Health = 0
	}
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
}

// ClampMana enforces invariant §3.6.
func (c *Combatant) ClampMana() {
	if c.Mana < 0 {
		c.Mana = 0
	}
	if c.Mana > c.MaxMana {
		c.Mana = c.MaxMana
	}
}

// ManaFraction returns mana as a fraction of max, 1.0 when MaxMana is 0.
func (c *Combatant) ManaFraction() float64 {
	if c.MaxMana <= 0 {
		return 1.0
	}
	return float64(c.Mana) / float64(c.MaxMana)
}

// HealthFraction returns health as a fraction of max.
func (c *Combatant) HealthFraction() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	return float64(c.Health) / float64(c.MaxHealth)
}
