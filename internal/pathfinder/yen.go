package pathfinder

import (
	"sort"
	"strings"
)

// yenAlternatives computes up to k loopless, distinct alternative paths to
// the primary path using Yen's algorithm (spec §4.6), stopping early once a
// candidate's cost exceeds 1.5× the primary path's cost.
func yenAlternatives(sc *searchContext, primary Path, k int) []Path {
	if k <= 0 || len(primary.Ports) < 2 {
		return nil
	}

	accepted := []Path{primary}
	var candidates []Path
	seen := map[string]bool{pathKey(primary): true}

	for len(accepted) <= k {
		prev := accepted[len(accepted)-1]

		for i := 0; i < len(prev.Ports)-1; i++ {
			spurNode := prev.Ports[i]
			rootPath := prev.Ports[:i+1]

			excl := newExclusion()
			for _, p := range accepted {
				if len(p.Ports) > i+1 && equalPrefix(p.Ports[:i+1], rootPath) {
					excl.edges[[2]string{p.Ports[i], p.Ports[i+1]}] = true
				}
			}
			for j := 0; j < i; j++ {
				excl.nodes[rootPath[j]] = true
			}

			spurSC := *sc
			spurSC.excl = excl
			spurSC.maxHopEdges = sc.maxHopEdges - i // the root path already uses i edges
			spurPath, ok, err := search(&spurSC, spurNode)
			if err != nil || !ok {
				continue
			}

			totalPorts := make([]string, 0, len(rootPath)+len(spurPath.Ports)-1)
			totalPorts = append(totalPorts, rootPath...)
			totalPorts = append(totalPorts, spurPath.Ports[1:]...)

			candidate := Path{
				Ports: totalPorts,
				Cost:  pathCost(sc, rootPath) + spurPath.Cost,
			}
			key := pathKey(candidate)
			if !seen[key] {
				seen[key] = true
				candidates = append(candidates, candidate)
			}
		}

		if len(candidates) == 0 {
			break
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Cost != candidates[j].Cost {
				return candidates[i].Cost < candidates[j].Cost
			}
			return lexLess(candidates[i].Ports, candidates[j].Ports)
		})
		next := candidates[0]
		candidates = candidates[1:]

		if next.Cost > 1.5*primary.Cost {
			break
		}
		accepted = append(accepted, next)
	}

	return accepted[1:]
}

// pathCost sums the scalar edge cost along a sequence of ports under sc's
// criterion and vessel, used to price a Yen root-path segment.
func pathCost(sc *searchContext, portsSeq []string) float64 {
	total := 0.0
	for i := 0; i+1 < len(portsSeq); i++ {
		from, to := portsSeq[i], portsSeq[i+1]
		for _, e := range sc.graph.Neighbors(from) {
			if e.To == to {
				total += edgeScalarCost(sc.tables, e, sc.vessel, sc.graph.Nodes[to], sc.criterion)
				break
			}
		}
	}
	return total
}

func equalPrefix(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pathKey(p Path) string {
	return strings.Join(p.Ports, ">")
}
