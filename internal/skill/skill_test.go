package skill_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/skill"
)

func TestXPForNextLevel_GrowsByConfiguredMultiplier(t *testing.T) {
	require.Equal(t, 100, skill.XPForNextLevel(1))
	require.Equal(t, 150, skill.XPForNextLevel(2))
	require.Equal(t, 225, skill.XPForNextLevel(3))
}

func TestAttemptCheck_StatBonusAppliesForMappedSkill(t *testing.T) {
	player := entity.NewPlayer("Rogue")
	player.Stats.Agility = 20 // bonus of (20-10)*2 = +20
	player.Skills["lockpicking"] = entity.SkillState{Level: 5}

	src := rng.New(1)
	success, msg := skill.AttemptCheck(player, src, "lockpicking", 1)
	require.True(t, success, "DC 1 must always succeed with a positive bonus: %s", msg)
}

func TestAttemptCheck_UnmappedSkillGetsNoStatBonus(t *testing.T) {
	player := entity.NewPlayer("Wanderer")
	player.Stats.Agility = 50
	player.Skills["foraging"] = entity.SkillState{Level: 0}

	src := rng.New(2)
	// roll is in [1,100], level 0, no bonus: DC above 100 must always fail.
	success, _ := skill.AttemptCheck(player, src, "foraging", 101)
	require.False(t, success)
}

func TestGrantXP_LevelsUpAndReportsEachStep(t *testing.T) {
	player := entity.NewPlayer("Smith")
	player.Skills["crafting"] = entity.SkillState{Level: 1, XP: 0}

	msgs := skill.GrantXP(player, "crafting", 260)

	// level 1->2 costs 100, 2->3 costs 150: 260 XP covers both with 10 left over.
	require.Len(t, msgs, 2)
	require.Equal(t, 3, player.Skills["crafting"].Level)
	require.Equal(t, 10, player.Skills["crafting"].XP)
}

func TestGrantXP_NoOpAtMaxLevel(t *testing.T) {
	player := entity.NewPlayer("Elder")
	player.Skills["crafting"] = entity.SkillState{Level: 100, XP: 0}

	msgs := skill.GrantXP(player, "crafting", 99999)
	require.Empty(t, msgs)
	require.Equal(t, 0, player.Skills["crafting"].XP)
}
