package port

import "sort"

// Graph is the materialized port network: every active port is a node, and
// edges are the union of nearest-neighbor legs, canal edges, and hub edges
// (spec §3/§4.4). Adjacency lists are kept sorted by destination UN/LOCODE so
// that every consumer — the pathfinder above all — iterates in a
// deterministic order.
type Graph struct {
	Nodes     map[string]*Port
	adjacency map[string][]*Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[string]*Port),
		adjacency: make(map[string][]*Edge),
	}
}

// AddNode registers a port as a graph node.
func (g *Graph) AddNode(p *Port) {
	g.Nodes[p.Code] = p
	if _, ok := g.adjacency[p.Code]; !ok {
		g.adjacency[p.Code] = nil
	}
}

// AddEdge inserts e into the adjacency list of e.From, keeping the list
// sorted by destination code. Loops (From == To) are rejected silently, per
// the graph's loop-free invariant.
func (g *Graph) AddEdge(e *Edge) {
	if e.From == e.To {
		return
	}
	list := g.adjacency[e.From]
	i := sort.Search(len(list), func(i int) bool { return list[i].To >= e.To })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = e
	g.adjacency[e.From] = list
}

// Neighbors returns the outgoing edges of code in deterministic
// (destination-code) order.
func (g *Graph) Neighbors(code string) []*Edge {
	return g.adjacency[code]
}

// NodeCodes returns every node's UN/LOCODE in sorted order.
func (g *Graph) NodeCodes() []string {
	codes := make([]string, 0, len(g.Nodes))
	for c := range g.Nodes {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// EdgeCount returns the total number of directed edges in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, list := range g.adjacency {
		n += len(list)
	}
	return n
}

// Connected reports whether every node in the graph is reachable from
// start via a breadth-first traversal of outgoing edges. Used by the
// builder's post-construction connectivity check (spec §4.4 step 5).
func (g *Graph) Connected(start string) (bool, []string) {
	visited := make(map[string]bool, len(g.Nodes))
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.adjacency[cur] {
			if !visited[e.To] {
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	var unreachable []string
	for _, code := range g.NodeCodes() {
		if !visited[code] {
			unreachable = append(unreachable, code)
		}
	}
	return len(unreachable) == 0, unreachable
}
