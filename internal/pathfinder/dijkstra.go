package pathfinder

import (
	"container/heap"

	"searoute/internal/port"
)

// heapItem is a single entry in the search frontier: a min-heap on
// priority (g-cost, plus heuristic when running A*), tie-broken by hop
// count then UN/LOCODE for determinism (spec §4.6).
type heapItem struct {
	code     string
	priority float64
	gCost    float64
	hops     int
	index    int
}

type itemHeap []*heapItem

func (h itemHeap) Len() int { return len(h) }
func (h itemHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	if h[i].hops != h[j].hops {
		return h[i].hops < h[j].hops
	}
	return h[i].code < h[j].code
}
func (h itemHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *itemHeap) Push(x any) {
	item := x.(*heapItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

const costEpsilon = 1e-9

// search runs a single-source shortest-path expansion from origin toward
// sc.dest (Dijkstra when sc.heuristic is nil, A* otherwise), honoring the
// vessel feasibility filter, the intermediate-node cap, and cancellation.
// Returns the reconstructed path and true, or false if destination is
// unreachable in the feasible subgraph.
func search(sc *searchContext, origin string) (Path, bool, error) {
	dist := map[string]float64{origin: 0}
	hops := map[string]int{origin: 0}
	parent := map[string]string{}

	h := make(itemHeap, 0, 64)
	heap.Init(&h)
	heap.Push(&h, &heapItem{code: origin, priority: sc.heuristicOf(origin), gCost: 0, hops: 0})

	expansions := 0
	for h.Len() > 0 {
		expansions++
		if expansions%sc.checkInterval == 0 {
			select {
			case <-sc.ctx.Done():
				return Path{}, false, ErrCanceled
			default:
			}
		}

		cur := heap.Pop(&h).(*heapItem)
		u := cur.code

		if cur.gCost > dist[u]+costEpsilon {
			continue // stale entry
		}
		if u == sc.dest {
			return reconstruct(parent, origin, sc.dest, dist[u]), true, nil
		}

		fromPort := sc.graph.Nodes[u]
		for _, e := range sc.graph.Neighbors(u) {
			v := e.To
			if sc.excl.nodes[v] && v != sc.dest {
				continue
			}
			if sc.excl.edges[[2]string{u, v}] {
				continue
			}
			if v != sc.dest && cur.hops+1 >= sc.maxHopEdges {
				continue // intermediate-node cap (spec §4.6 hop cap)
			}

			toPort := sc.graph.Nodes[v]
			if !port.Feasible(e, fromPort, toPort, sc.vessel) {
				continue
			}

			edgeCost := edgeScalarCost(sc.tables, e, sc.vessel, toPort, sc.criterion)
			newDist := dist[u] + edgeCost
			newHops := cur.hops + 1

			better := false
			if existing, ok := dist[v]; !ok || newDist < existing-costEpsilon {
				better = true
			} else if newDist < existing+costEpsilon {
				// Tie on cost: prefer fewer hops, then a lexicographically
				// smaller full path (reconstructed on demand — ties are
				// rare, so this stays off the hot path).
				if newHops < hops[v] {
					better = true
				} else if newHops == hops[v] {
					candidate := reconstructCodes(parent, origin, u)
					candidate = append(candidate, v)
					incumbent := reconstructCodes(parent, origin, v)
					if lexLess(candidate, incumbent) {
						better = true
					}
				}
			}

			if better {
				dist[v] = newDist
				hops[v] = newHops
				parent[v] = u
				heap.Push(&h, &heapItem{
					code:     v,
					priority: newDist + sc.heuristicOf(v),
					gCost:    newDist,
					hops:     newHops,
				})
			}
		}
	}

	return Path{}, false, nil
}

func (sc *searchContext) heuristicOf(code string) float64 {
	if sc.heuristic == nil {
		return 0
	}
	return sc.heuristic(code)
}

// reconstructCodes walks parent pointers from dest back to origin and
// returns the path in origin-to-dest order.
func reconstructCodes(parent map[string]string, origin, dest string) []string {
	if dest == origin {
		return []string{origin}
	}
	var rev []string
	cur := dest
	for cur != origin {
		rev = append(rev, cur)
		p, ok := parent[cur]
		if !ok {
			return nil
		}
		cur = p
	}
	rev = append(rev, origin)

	path := make([]string, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

func reconstruct(parent map[string]string, origin, dest string, cost float64) Path {
	return Path{Ports: reconstructCodes(parent, origin, dest), Cost: cost}
}

// lexLess reports whether a is lexicographically smaller than b as a
// sequence of UN/LOCODEs, comparing element-by-element.
func lexLess(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
