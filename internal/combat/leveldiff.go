// Package combat implements hit-chance, physical damage, and attack
// execution (spec §4.5), including the level-difference bucket table that
// scales hit chance, damage and XP by relative attacker/defender level.
package combat

import "github.com/voidengine/simcore/internal/config"

// Bucket names, matching spec §6's table and the original engine's
// seven-way color categories.
const (
	BucketPurple = "purple"
	BucketRed    = "red"
	BucketOrange = "orange"
	BucketYellow = "yellow"
	BucketBlue   = "blue"
	BucketGreen  = "green"
	BucketGray   = "gray"
)

// LevelDiffCategory computes the level-difference bucket for an attacker
// facing a defender of the given levels, per spec §4.5.1. Ported verbatim
// from original_source/engine/utils/text_formatter.py's
// get_level_diff_category: for attacker level <= 5, a fixed table keyed by
// the exact level difference; for higher attacker levels, thresholds widen
// linearly with (attackerLevel-5).
func LevelDiffCategory(attackerLevel, defenderLevel int) string {
	diff := defenderLevel - attackerLevel

	if attackerLevel <= 5 {
		switch {
		case diff >= 3:
			return BucketPurple
		case diff == 2:
			return BucketRed
		case diff == 1:
			return BucketOrange
		case diff == 0:
			return BucketYellow
		case diff == -1:
			return BucketBlue
		case diff == -2:
			return BucketGreen
		default:
			return BucketGray
		}
	}

	excess := attackerLevel - 5
	purpleThreshold := 3 + excess/12
	redThreshold := 2 + excess/9
	orangeThreshold := 1
	yellowLowerBound := 0 - excess/7
	blueLowerBound := yellowLowerBound - (1 + excess/8)
	greenLowerBound := blueLowerBound - (1 + excess/9)

	switch {
	case diff >= purpleThreshold:
		return BucketPurple
	case diff >= redThreshold:
		return BucketRed
	case diff >= orangeThreshold:
		return BucketOrange
	case diff >= yellowLowerBound:
		return BucketYellow
	case diff >= blueLowerBound:
		return BucketBlue
	case diff >= greenLowerBound:
		return BucketGreen
	default:
		return BucketGray
	}
}

// LookupBucket resolves a bucket name against the tuning table, falling
// back to a neutral (1,1,1) multiplier set if the table is incomplete.
func LookupBucket(tuning map[string]config.LevelDiffBucket, category string) config.LevelDiffBucket {
	if b, ok := tuning[category]; ok {
		return b
	}
	return config.LevelDiffBucket{HitMul: 1, DamageMul: 1, XPMul: 1}
}
