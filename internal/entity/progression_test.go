package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/entity"
)

func TestGrantXP_LevelsUpAndBumpsStats(t *testing.T) {
	p := entity.NewPlayer("hero")
	p.Level = 1
	p.Stats.Strength = 10
	p.Health, p.MaxHealth = 50, 50

	required := entity.XPForNextLevel(1)
	msgs := entity.GrantXP(p, required)

	require.Equal(t, 2, p.Level)
	require.Equal(t, 11, p.Stats.Strength)
	require.Greater(t, p.MaxHealth, 50)
	require.Greater(t, p.Health, 50)
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], "level 2")
}

func TestGrantXP_MultipleLevelsInOneGrant(t *testing.T) {
	p := entity.NewPlayer("hero")
	p.Health, p.MaxHealth = 50, 50

	total := entity.XPForNextLevel(1) + entity.XPForNextLevel(2) + 1
	msgs := entity.GrantXP(p, total)

	require.Equal(t, 3, p.Level)
	require.Len(t, msgs, 2)
	require.Equal(t, 1, p.XP)
}

func TestGrantXP_DeadPlayerGainsNothing(t *testing.T) {
	p := entity.NewPlayer("hero")
	p.IsAlive = false

	msgs := entity.GrantXP(p, 1000)

	require.Nil(t, msgs)
	require.Equal(t, 0, p.XP)
	require.Equal(t, 1, p.Level)
}
