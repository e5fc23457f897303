// Package pathfinder implements the A* shortest-path search over the room
// graph used by AI and navigation (spec §4.3), ported from the original
// engine's engine/utils/pathfinding.py: uniform edge cost of 1 per hop plus
// a +1 heuristic penalty when the next node's region differs from the
// target's region.
package pathfinder

import (
	"container/heap"

	"github.com/voidengine/simcore/internal/worldgraph"
)

type node struct {
	region, room string
}

type queueItem struct {
	priority int
	n        node
	index    int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index, pq[j].index = i, j }
func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// FindPath returns the ordered list of direction strings connecting the
// source (region, room) to the target (region, room), or (nil, false) when
// no path exists. An empty (non-nil) slice is returned when source equals
// target. Destinations not materialized in the graph are skipped.
func FindPath(g *worldgraph.Graph, sourceRegion, sourceRoom, targetRegion, targetRoom string) ([]string, bool) {
	start := node{sourceRegion, sourceRoom}
	goal := node{targetRegion, targetRoom}

	if start == goal {
		return []string{}, true
	}

	gScore := map[node]int{start: 0}
	pathTo := map[node][]string{start: {}}

	pq := &priorityQueue{{priority: 0, n: start}}
	heap.Init(pq)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*queueItem).n

		if current == goal {
			return pathTo[goal], true
		}

		region, ok := g.GetRegion(current.region)
		if !ok {
			continue
		}
		room, ok := region.GetRoom(current.room)
		if !ok {
			continue
		}

		for direction, destID := range room.Exits {
			nextRegion, nextRoom := worldgraph.SplitExitDest(current.region, destID)
			next := node{nextRegion, nextRoom}

			if _, exists := g.GetRoom(nextRegion, nextRoom); !exists {
				continue
			}

			newCost := gScore[current] + 1
			if existing, seen := gScore[next]; !seen || newCost < existing {
				gScore[next] = newCost
				priority := newCost
				if nextRegion != targetRegion {
					priority++
				}
				nextPath := make([]string, len(pathTo[current])+1)
				copy(nextPath, pathTo[current])
				nextPath[len(nextPath)-1] = direction
				pathTo[next] = nextPath
				heap.Push(pq, &queueItem{priority: priority, n: next})
			}
		}
	}

	return nil, false
}
