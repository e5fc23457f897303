package sim

import (
	"time"

	"github.com/voidengine/simcore/internal/entity"
	"github.com/voidengine/simcore/internal/quest"
	"github.com/voidengine/simcore/internal/simerr"
	"github.com/voidengine/simcore/internal/snapshot"
)

// Save serializes the live player and world state into repo under saveName
// (spec §6's save format). Only one player is persisted per save slot,
// matching the single-player scope the rest of this package assumes.
func (w *World) Save(repo *snapshot.Repository, saveName string, player *entity.Player, now time.Time) error {
	board := make([]quest.Instance, 0, len(w.QuestBoard))
	for _, q := range w.QuestBoard {
		board = append(board, *q)
	}

	doc := snapshot.Build(saveName, now, player, w.Store, w.Items, w.Graph, board, w.Clock, w.Weather, w.Spawner.Queue())
	return repo.Save(doc)
}

// Load restores a player and the live world state from repo's saveName slot
// (spec §7). A missing or corrupt save returns the repository's sentinel
// error unchanged, so callers can fall back to starting a fresh world
// rather than running with partial state.
func (w *World) Load(repo *snapshot.Repository, saveName string) (*entity.Player, error) {
	doc, err := repo.Load(saveName)
	if err != nil {
		return nil, err
	}

	doc.Apply(w.Store, w.Items, w.Graph)

	w.QuestBoard = w.QuestBoard[:0]
	for i := range doc.QuestBoard {
		q := doc.QuestBoard[i]
		w.QuestBoard = append(w.QuestBoard, &q)
		w.allQuests[q.InstanceID] = &q
	}

	if doc.TimeState != nil {
		w.Clock.GameSeconds = doc.TimeState.GameSeconds
		w.Clock.RealToGameRatio = doc.TimeState.RealToGameRatio
	}
	if doc.WeatherState != nil {
		w.Weather.Current = doc.WeatherState.Current
		w.Weather.Intensity = doc.WeatherState.Intensity
	}
	w.Spawner.RestoreQueue(doc.RespawnQueue)

	if doc.Player == nil {
		return nil, simerr.ErrNotFound
	}
	return doc.Player, nil
}
