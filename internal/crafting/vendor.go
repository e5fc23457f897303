package crafting

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/entity"
)

// Vendor is an NPC's buy/sell configuration (spec §4.14: "Vendors buy/sell
// with configurable multipliers and buys_item_types filters").
type Vendor struct {
	InstanceID     string
	BuysItemTypes  []entity.ItemSubtype
	BuyMultiplier  float64 // fraction of value the vendor pays when buying from the player
	SellMultiplier float64 // multiple of value the vendor charges when selling to the player
	Stock          []string // template ids the vendor offers for sale
}

func (v Vendor) buys(subtype entity.ItemSubtype) bool {
	for _, t := range v.BuysItemTypes {
		if t == subtype {
			return true
		}
	}
	return false
}

func (v Vendor) stocks(templateID string) bool {
	for _, id := range v.Stock {
		if id == templateID {
			return true
		}
	}
	return false
}

// SellToVendor sells one item instance from the player's inventory to the
// vendor for floor(value * BuyMultiplier) gold. Rejects items outside the
// vendor's buys_item_types filter.
func SellToVendor(player *entity.Player, vendor Vendor, instanceID string, subtype entity.ItemSubtype, value int, remove func(instanceID string) bool) (string, bool) {
	if !vendor.buys(subtype) {
		return "The vendor isn't interested in that.", false
	}
	found := false
	for _, id := range player.Inventory {
		if id == instanceID {
			found = true
			break
		}
	}
	if !found {
		return "You don't have that.", false
	}

	price := int(float64(value) * vendor.BuyMultiplier)
	if remove == nil || !remove(instanceID) {
		return "The vendor can't take that right now.", false
	}
	removeOne(player, instanceID)
	player.Gold += price

	return fmt.Sprintf("Sold for %s gold.", humanize.Comma(int64(price))), true
}

// BuyFromVendor buys templateID from the vendor's stock for
// ceil(value * SellMultiplier) gold, rejecting a purchase the player can't
// afford or an item not in the vendor's stock.
func BuyFromVendor(player *entity.Player, vendor Vendor, templateID string, value int, grant ItemGrant) (string, bool) {
	if !vendor.stocks(templateID) {
		return "The vendor doesn't sell that.", false
	}
	price := int(float64(value)*vendor.SellMultiplier + 0.999)
	if player.Gold < price {
		return fmt.Sprintf("You need %s gold; you have %s.", humanize.Comma(int64(price)), humanize.Comma(int64(player.Gold))), false
	}
	if len(player.Inventory) >= config.MaxInventorySize {
		return "Your inventory is full.", false
	}
	if grant == nil {
		return "The vendor can't fetch that right now.", false
	}
	instanceID, ok := grant(templateID)
	if !ok {
		return "The vendor is out of stock.", false
	}

	player.Gold -= price
	player.Inventory = append(player.Inventory, instanceID)
	return fmt.Sprintf("Bought for %s gold.", humanize.Comma(int64(price))), true
}
