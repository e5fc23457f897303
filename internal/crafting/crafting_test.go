package crafting_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voidengine/simcore/internal/crafting"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
)

func testItems(player *entity.Player, mapping map[string]string) crafting.ItemLookup {
	return func(instanceID string) (string, bool) {
		tid, ok := mapping[instanceID]
		return tid, ok
	}
}

func TestCraft_RequiresStation(t *testing.T) {
	player := entity.NewPlayer("Smith")
	recipe := crafting.Recipe{Name: "Iron Sword", Station: "anvil"}

	msg, ok := crafting.Craft(player, rng.New(1), recipe, nil, nil, nil, "")
	require.False(t, ok)
	require.Contains(t, msg, "anvil")
}

func TestCraft_MissingIngredientsFails(t *testing.T) {
	player := entity.NewPlayer("Smith")
	player.Inventory = []string{"ore-1"}
	lookup := testItems(player, map[string]string{"ore-1": "iron_ore"})

	recipe := crafting.Recipe{
		Name:        "Iron Sword",
		Ingredients: []crafting.Ingredient{{ItemTemplateID: "iron_ore", Quantity: 3}},
	}

	msg, ok := crafting.Craft(player, rng.New(1), recipe, lookup, nil, nil, "")
	require.False(t, ok)
	require.Contains(t, msg, "don't have enough")
	require.Contains(t, player.Inventory, "ore-1", "failed ingredient check must not consume anything")
}

func TestCraft_SuccessConsumesIngredientsAndGrantsResult(t *testing.T) {
	player := entity.NewPlayer("Smith")
	player.Skills["crafting"] = entity.SkillState{Level: 100}
	player.Inventory = []string{"ore-1", "ore-2", "ore-3", "wood-1"}
	lookup := testItems(player, map[string]string{
		"ore-1": "iron_ore", "ore-2": "iron_ore", "ore-3": "iron_ore", "wood-1": "oak_wood",
	})
	grant := func(templateID string) (string, bool) { return "sword-new", true }
	value := func(templateID string) int { return 40 }

	recipe := crafting.Recipe{
		Name:                 "Iron Sword",
		Ingredients:          []crafting.Ingredient{{ItemTemplateID: "iron_ore", Quantity: 3}},
		ResultItemTemplateID: "iron_sword",
		ResultQuantity:       1,
	}

	msg, ok := crafting.Craft(player, rng.New(1), recipe, lookup, grant, value, "")
	require.True(t, ok, msg)
	require.NotContains(t, player.Inventory, "ore-1")
	require.NotContains(t, player.Inventory, "ore-2")
	require.NotContains(t, player.Inventory, "ore-3")
	require.Contains(t, player.Inventory, "wood-1")
	require.Contains(t, player.Inventory, "sword-new")
}

func TestCraft_FailureStillConsumesIngredientsAndGrantsMinimumXP(t *testing.T) {
	player := entity.NewPlayer("Novice")
	player.Inventory = []string{"ore-1"}
	lookup := testItems(player, map[string]string{"ore-1": "iron_ore"})

	recipe := crafting.Recipe{
		Name:                 "Masterwork Blade",
		Ingredients:          []crafting.Ingredient{{ItemTemplateID: "iron_ore", Quantity: 1}},
		ResultItemTemplateID: "masterwork_blade",
		SkillCheckDifficulty: 1000,
	}

	msg, ok := crafting.Craft(player, rng.New(1), recipe, lookup, nil, func(string) int { return 100 }, "")
	require.False(t, ok)
	require.Contains(t, msg, "fail")
	require.NotContains(t, player.Inventory, "ore-1")
	require.Equal(t, 2, player.Skills["crafting"].XP)
}
