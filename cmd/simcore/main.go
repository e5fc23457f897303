// Command simcore is a sample driver: it wires a small hand-built world
// through internal/sim, runs it for a fixed number of ticks on the
// teacher's 500ms ticker cadence, and prints a colored summary of what
// happened each tick. It is a smoke-test harness, not the game's
// network-facing frontend (see SPEC_FULL.md for why the telnet/websocket
// listeners were not carried forward).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/crafting"
	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/logging"
	"github.com/voidengine/simcore/internal/magic"
	"github.com/voidengine/simcore/internal/sim"
	"github.com/voidengine/simcore/internal/simerr"
	"github.com/voidengine/simcore/internal/snapshot"
	"github.com/voidengine/simcore/internal/spawner"
	"github.com/voidengine/simcore/internal/worldgraph"
)

const tickInterval = 500 * time.Millisecond

func main() {
	logging.Init(true, "info")

	out := colorable.NewColorableStdout()
	colored := isatty.IsTerminal(os.Stdout.Fd())

	world, player := bootstrap()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	repo, err := snapshot.Open("simcore_demo.db")
	if err != nil {
		logging.Error().Err(err).Msg("failed to open save repository")
		os.Exit(1)
	}
	defer repo.Close()

	printLine(out, colored, green, "Clearing spawns a giant rat. The Hacker wakes up nearby.")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	tick := uint64(0)
	acted := false

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("shutdown signal received, saving and exiting")
			if err := world.Save(repo, "demo", player, time.Now()); err != nil {
				logging.Error().Err(err).Msg("failed to save on shutdown")
			}
			return
		case now := <-ticker.C:
			tick++
			tickLog := logging.WithTick(tick)

			if !acted {
				if npcs := world.Store.NPCsInRoom("forest", "clearing"); len(npcs) > 0 {
					result := world.PlayerAttack(player, npcs[0].InstanceID, now)
					printResult(out, colored, result)
					acted = true
				}
			}

			messages := world.Tick(now, tickInterval.Seconds())
			for _, msg := range messages {
				printLine(out, colored, yellow, msg)
			}
			tickLog.Debug().Int("messages", len(messages)).Msg("tick complete")

			if tick >= 20 {
				cancel()
			}
		}
	}
}

// bootstrap builds a tiny hand-authored world: one region with two rooms,
// a hostile rat template, a starter spell, a vendor, and a single player.
// Real content loading (spec §9's data-pack layer) is out of scope for
// this harness.
func bootstrap() (*sim.World, *entity.Player) {
	graph := worldgraph.NewGraph()
	region := worldgraph.NewRegion("forest", "Forest")

	clearing := worldgraph.NewRoom("clearing", "Clearing", "A sunlit clearing ringed by pines.")
	clearing.Outdoors = true
	clearing.Exits["north"] = "camp"
	region.AddRoom(clearing)

	camp := worldgraph.NewRoom("camp", "Hunting Camp", "A trampled camp smelling of woodsmoke.")
	camp.Outdoors = true
	camp.Exits["south"] = "clearing"
	region.AddRoom(camp)

	graph.AddRegion(region)

	ratTemplate := &spawner.NPCTemplate{
		TemplateID:  "rat",
		Name:        "Giant Rat",
		Faction:     "hostile",
		Level:       2,
		MaxHealth:   18,
		Respawnable: true,
		LootTable: []entity.LootEntry{
			{ItemTemplateID: "rat_tail", Chance: 0.8, MinQuantity: 1, MaxQuantity: 2},
		},
	}

	firebolt := magic.NewSpell("firebolt", "Firebolt", 10, 2*time.Second, magic.TargetEnemy, 1, magic.EffectDesc{
		Type:       magic.EffectDamage,
		Value:      12,
		DamageType: "fire",
	})
	firebolt.CastMessage = "You hurl a bolt of fire."
	firebolt.HitMessage = "The firebolt sears {target}."

	vendorNPC := entity.NewNPC("trader", "Wandering Trader")
	vendorNPC.Faction = "vendor"
	vendorNPC.Location = entity.Location{RegionID: "forest", RoomID: "camp"}

	tuning := config.LoadTuning("tuning.toml")

	world := sim.New(sim.Config{
		Seed:  time.Now().UnixNano(),
		Graph: graph,
		NPCTemplates: spawner.Registry{
			"rat": ratTemplate,
		},
		Spells: map[string]*magic.Spell{
			"firebolt": firebolt,
		},
		ItemTemplates: map[string]sim.ItemTemplate{
			"rat_tail": {Name: "Rat Tail", Subtype: entity.SubtypeGeneric, Value: 2},
		},
		Vendors: map[string]crafting.Vendor{
			vendorNPC.InstanceID: {
				InstanceID:     vendorNPC.InstanceID,
				BuysItemTypes:  []entity.ItemSubtype{entity.SubtypeGeneric},
				BuyMultiplier:  0.5,
				SellMultiplier: 1.5,
				Stock:          []string{"rat_tail"},
			},
		},
		Tuning:     tuning,
		ClockRatio: 60,
	})

	rat := ratTemplate.Instantiate(entity.Location{RegionID: "forest", RoomID: "clearing"})
	world.Store.AddNPC(rat)
	world.Store.AddNPC(vendorNPC)

	player := entity.NewPlayer("Hacker")
	player.Class = "Hacker"
	player.Level = 1
	player.Stats.Strength = 10
	player.Stats.Agility = 10
	player.Stats.Intelligence = 12
	player.Health, player.MaxHealth = 25, 25
	player.Mana, player.MaxMana = 20, 20
	player.Location = entity.Location{RegionID: "forest", RoomID: "clearing"}
	player.RespawnRegionID, player.RespawnRoomID = "forest", "clearing"
	player.KnownSpells = []string{"firebolt"}
	world.Store.AddPlayer(player)

	world.RefreshQuestBoard(player.Level)

	return world, player
}

const (
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	red    = "\x1b[31m"
	reset  = "\x1b[0m"
)

func printLine(out io.Writer, colored bool, color, msg string) {
	if colored {
		fmt.Fprintf(out, "%s%s%s\n", color, msg, reset)
		return
	}
	fmt.Fprintln(out, msg)
}

func printResult(out io.Writer, colored bool, result simerr.Result) {
	color := green
	if !result.Success {
		color = red
	}
	printLine(out, colored, color, result.Message)
}
