// Package crafting implements recipe crafting and vendor buy/sell (spec
// §4.14, enumerated there as "routine" interface contracts). It follows
// internal/quest's injected-lookup shape: callers supply how to resolve,
// grant and value item instances (internal/sim backs these with
// entity.ItemStore).
package crafting

import (
	"fmt"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/rng"
	"github.com/voidengine/simcore/internal/skill"
)

// Ingredient is one entry of a Recipe's consumed materials.
type Ingredient struct {
	ItemTemplateID string
	Quantity       int
}

// Recipe describes a craftable item (spec §4.14), grounded on
// original_source/engine/crafting/recipe.py's Recipe dataclass.
// Station is "" for handcrafting, matching recipe.py's station_required.
type Recipe struct {
	RecipeID              string
	Name                  string
	Station               string
	Ingredients           []Ingredient
	ResultItemTemplateID  string
	ResultQuantity        int
	SkillCheckDifficulty  int
}

// ItemLookup resolves a live item instance to its template id.
type ItemLookup func(instanceID string) (templateID string, ok bool)

// ItemGrant instantiates a fresh item of templateID and returns its
// instance id.
type ItemGrant func(templateID string) (instanceID string, ok bool)

// ItemValue returns a template's base value, used for the crafting XP
// formula and vendor pricing.
type ItemValue func(templateID string) int

func countMatching(player *entity.Player, items ItemLookup, templateID string) []string {
	var matches []string
	for _, id := range player.Inventory {
		if tid, ok := items(id); ok && tid == templateID {
			matches = append(matches, id)
		}
	}
	return matches
}

func removeOne(player *entity.Player, instanceID string) {
	for i, id := range player.Inventory {
		if id == instanceID {
			player.Inventory = append(player.Inventory[:i], player.Inventory[i+1:]...)
			return
		}
	}
}

// HasStation reports whether presentStation satisfies a recipe's
// requirement; "" (handcrafting) is always satisfied.
func HasStation(required, present string) bool {
	return required == "" || required == present
}

// Craft consumes a recipe's ingredients and resolves a crafting skill
// check (spec §4.14): success grants the result item and
// max(10, value/2) crafting XP, failure consumes the materials anyway
// and grants 2 XP — crafting, like the rest of this codebase's skill
// checks, risks the attempt's cost on failure rather than refunding it.
func Craft(player *entity.Player, src *rng.Source, recipe Recipe, items ItemLookup, grant ItemGrant, value ItemValue, presentStation string) (string, bool) {
	if !HasStation(recipe.Station, presentStation) {
		return fmt.Sprintf("You need %s to craft %s.", stationName(recipe.Station), recipe.Name), false
	}

	consumed := make(map[string][]string, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		matches := countMatching(player, items, ing.ItemTemplateID)
		if len(matches) < ing.Quantity {
			return fmt.Sprintf("You don't have enough %s for %s.", ing.ItemTemplateID, recipe.Name), false
		}
		consumed[ing.ItemTemplateID] = matches[:ing.Quantity]
	}
	for _, ids := range consumed {
		for _, id := range ids {
			removeOne(player, id)
		}
	}

	success, detail := skill.AttemptCheck(player, src, "crafting", recipe.SkillCheckDifficulty)

	xp := 2
	if success {
		if v := value(recipe.ResultItemTemplateID) / 2; v > 10 {
			xp = v
		} else {
			xp = 10
		}
	}
	xpMsgs := skill.GrantXP(player, "crafting", xp)

	if !success {
		return joinMessages(fmt.Sprintf("You fail to craft %s. %s", recipe.Name, detail), xpMsgs), false
	}

	granted := 0
	for i := 0; i < recipe.ResultQuantity; i++ {
		if grant == nil {
			break
		}
		instanceID, ok := grant(recipe.ResultItemTemplateID)
		if !ok {
			continue
		}
		if len(player.Inventory) >= config.MaxInventorySize {
			continue
		}
		player.Inventory = append(player.Inventory, instanceID)
		granted++
	}

	return joinMessages(fmt.Sprintf("You craft %s. %s", recipe.Name, detail), xpMsgs), true
}

func stationName(station string) string {
	if station == "" {
		return "no special tools"
	}
	return "a " + station
}

func joinMessages(first string, rest []string) string {
	msg := first
	for _, m := range rest {
		msg += "\n" + m
	}
	return msg
}
