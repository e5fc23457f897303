// Package config provides environment-driven server configuration and a
// TOML-loaded tuning document for game-balance constants, following the
// teacher's getEnv/fallback pattern for the former and BurntSushi/toml for
// the latter so content authors can retune balance without a recompile.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Fixed game-balance constants that are not expected to vary by content pack.
const (
	// MaxInventorySize is the maximum number of items a player can carry.
	MaxInventorySize = 20

	// DefaultNPCRespawnCooldown is how long after death a respawnable NPC
	// waits before being recreated at its home room (spec §4.9).
	DefaultNPCRespawnCooldown = 5 * time.Minute

	// MaxQuestsOnBoard bounds the quest board (spec §4.10).
	MaxQuestsOnBoard = 6

	// MaxSkillLevel caps skill advancement (spec §4.11).
	MaxSkillLevel = 100

	// NPCLowManaRetreatThreshold triggers the retreat behavior (spec §4.8).
	NPCLowManaRetreatThreshold = 0.2

	// NPCHealerHealThreshold is the health fraction below which a healer
	// NPC will prioritize healing a target (spec §4.8).
	NPCHealerHealThreshold = 0.6

	// SpecialAbilityChance is the fixed per-tick probability an NPC with
	// special_abilities fires one (spec §4.5, open question resolved in
	// DESIGN.md: kept as a single constant for every ability; the scripting
	// hook changes only the fired ability's multiplier and flavor).
	SpecialAbilityChance = 0.2

	// MinHitChance and MaxHitChance clamp physical hit probability.
	MinHitChance = 0.05
	MaxHitChance = 0.95

	// HitChanceAgilityFactor scales the agility differential into hit chance.
	HitChanceAgilityFactor = 0.02

	// MinimumDamageTaken is the floor applied to physical/spell damage
	// unless the target fully resists (invariant §3.8).
	MinimumDamageTaken = 1

	// SpellDamageVariationFactor bounds the +/- random variance applied to
	// spell-effect magnitudes before the level-difference multiplier.
	SpellDamageVariationFactor = 0.1

	// MinimumSpellEffectValue floors any computed spell effect magnitude.
	MinimumSpellEffectValue = 1

	// PlayerBaseHitChance and NPCBaseHitChance are the base physical hit
	// chances before agility and level-difference modifiers.
	PlayerBaseHitChance = 0.75
	NPCBaseHitChance    = 0.65

	// BaseXPToLevel and XPToLevelMultiplier define the player leveling
	// curve (spec §4.5's calculate_xp_gain / level-up path): the XP
	// required to reach level+1 scales by XPToLevelMultiplier each level.
	BaseXPToLevel       = 100
	XPToLevelMultiplier = 1.6

	// LevelUpStatIncrease is added to every stat on level-up.
	LevelUpStatIncrease = 1

	// LevelHealthBaseIncrease and LevelConHealthMultiplier determine the
	// max-health gain on level-up; LevelUpHealthHealPercent is the
	// fraction of that gain applied as an immediate heal.
	LevelHealthBaseIncrease   = 8
	LevelConHealthMultiplier  = 1.5
	LevelUpHealthHealPercent  = 0.5
)

// PlayerAttackVariationRange and NPCAttackVariationRange are the (low, high)
// inclusive bounds added to attack power before the level-diff multiplier.
var (
	PlayerAttackVariationRange = [2]int{-2, 4}
	NPCAttackVariationRange    = [2]int{-1, 2}
)

// Server holds environment-overridable process configuration.
var Server = struct {
	LogLevel  string
	LogPretty bool
	SavePath  string
	TuningDoc string
	Seed      int64
}{
	LogLevel:  getEnv("SIMCORE_LOG_LEVEL", "info"),
	LogPretty: getEnv("SIMCORE_LOG_PRETTY", "true") == "true",
	SavePath:  getEnv("SIMCORE_SAVE_PATH", "data/world.db"),
	TuningDoc: getEnv("SIMCORE_TUNING_FILE", "data/tuning.toml"),
	Seed:      0,
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LevelDiffBucket is a row of the level-difference table (spec §6).
type LevelDiffBucket struct {
	HitMul    float64 `toml:"hit_mul"`
	DamageMul float64 `toml:"damage_mul"`
	XPMul     float64 `toml:"xp_mul"`
}

// WeatherTuning holds the two-roll weather model probabilities (spec §4.1).
type WeatherTuning struct {
	TransitionChangeChance float64 `toml:"transition_change_chance"`
	PersistenceChance      float64 `toml:"persistence_chance"`
}

// SpawnerTuning holds per-region spawn caps and intervals (spec §4.9).
type SpawnerTuning struct {
	ScanInterval time.Duration `toml:"-"`
	ScanSeconds  int           `toml:"scan_interval_seconds"`
	DefaultCap   int           `toml:"default_cap"`
}

// QuestTuning holds the quest generator's reward-scaling and objective
// quantity formulas (spec §4.10).
type QuestTuning struct {
	LevelRangePlayer int `toml:"level_range_player"`

	RewardBaseXP        int `toml:"reward_base_xp"`
	RewardXPPerLevel    int `toml:"reward_xp_per_level"`
	RewardXPPerQuantity int `toml:"reward_xp_per_quantity"`

	RewardBaseGold        int `toml:"reward_base_gold"`
	RewardGoldPerLevel    int `toml:"reward_gold_per_level"`
	RewardGoldPerQuantity int `toml:"reward_gold_per_quantity"`

	KillQuantityBase     int     `toml:"kill_quantity_base"`
	KillQuantityPerLevel float64 `toml:"kill_quantity_per_level"`

	FetchQuantityBase     int     `toml:"fetch_quantity_base"`
	FetchQuantityPerLevel float64 `toml:"fetch_quantity_per_level"`
}

// Tuning is the TOML-loaded balance document. DefaultTuning provides the
// values used when no file is present, matching the teacher's pattern of
// falling back to built-in defaults when data/*.json is missing.
type Tuning struct {
	LevelDiff map[string]LevelDiffBucket `toml:"level_diff"`
	Weather   WeatherTuning              `toml:"weather"`
	Spawner   SpawnerTuning              `toml:"spawner"`
	Quest     QuestTuning                `toml:"quest"`
}

// DefaultTuning returns the built-in balance table from spec §6.
func DefaultTuning() Tuning {
	return Tuning{
		LevelDiff: map[string]LevelDiffBucket{
			"purple": {0.70, 0.60, 2.50},
			"red":    {0.85, 0.75, 1.75},
			"orange": {0.95, 0.90, 1.25},
			"yellow": {1.00, 1.00, 1.00},
			"blue":   {1.05, 1.10, 0.80},
			"green":  {1.15, 1.25, 0.50},
			"gray":   {1.25, 1.40, 0.20},
		},
		Weather: WeatherTuning{
			TransitionChangeChance: 0.35,
			PersistenceChance:      0.5,
		},
		Spawner: SpawnerTuning{
			ScanSeconds: 30,
			DefaultCap:  8,
		},
		Quest: QuestTuning{
			LevelRangePlayer:      3,
			RewardBaseXP:          50,
			RewardXPPerLevel:      15,
			RewardXPPerQuantity:   5,
			RewardBaseGold:        10,
			RewardGoldPerLevel:    5,
			RewardGoldPerQuantity: 2,
			KillQuantityBase:      3,
			KillQuantityPerLevel:  0.5,
			FetchQuantityBase:     5,
			FetchQuantityPerLevel: 1,
		},
	}
}

// LoadTuning reads the TOML tuning document at path, falling back to
// DefaultTuning when the file is absent or malformed (spec §7: resource
// missing degrades rather than aborting startup).
func LoadTuning(path string) Tuning {
	t := DefaultTuning()
	if _, err := os.Stat(path); err != nil {
		return t
	}
	var loaded Tuning
	if _, err := toml.DecodeFile(path, &loaded); err != nil {
		return t
	}
	if len(loaded.LevelDiff) > 0 {
		t.LevelDiff = loaded.LevelDiff
	}
	if loaded.Weather.TransitionChangeChance > 0 {
		t.Weather = loaded.Weather
	}
	if loaded.Spawner.DefaultCap > 0 {
		t.Spawner = loaded.Spawner
	}
	if loaded.Quest.RewardBaseXP > 0 {
		t.Quest = loaded.Quest
	}
	t.Spawner.ScanInterval = time.Duration(t.Spawner.ScanSeconds) * time.Second
	return t
}
