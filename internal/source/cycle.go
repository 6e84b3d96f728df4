package source

import (
	"slices"

	"github.com/roach88/mirror/internal/decl"
)

// supertypeGraph maps a declaration name to the local declarations it
// extends, implements or mixes in.
type supertypeGraph map[string][]string

func buildSupertypeGraph(lib decl.RawLibrary) supertypeGraph {
	declared := make(map[string]bool, len(lib.Declarations))
	for _, d := range lib.Declarations {
		declared[d.Name] = true
	}

	graph := make(supertypeGraph, len(lib.Declarations))
	for _, d := range lib.Declarations {
		if graph[d.Name] == nil {
			graph[d.Name] = []string{}
		}
		var supers []decl.RawType
		if d.Superclass != nil {
			supers = append(supers, *d.Superclass)
		}
		supers = append(supers, d.Interfaces...)
		supers = append(supers, d.Mixins...)
		for _, t := range supers {
			local := t.Library == "" || t.Library == lib.URI
			if local && !t.Builtin && declared[t.Name] {
				graph[d.Name] = append(graph[d.Name], t.Name)
			}
		}
	}
	return graph
}

// SupertypeCycles returns the cycles among the local supertypes of lib.
// Each cycle starts and ends with the same name, e.g. [A B A]; a
// declaration extending itself yields [A A]. Cycles through other
// libraries are not detected here.
func SupertypeCycles(lib decl.RawLibrary) [][]string {
	graph := buildSupertypeGraph(lib)

	var cycles [][]string
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, cyclePath(scc, graph))
		}
	}
	return cycles
}

func hasSelfLoop(node string, graph supertypeGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are stable.
func tarjanSCC(graph supertypeGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclePath returns the shortest cycle through the smallest name of the
// component.
func cyclePath(scc []string, graph supertypeGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}
	start := slices.Min(scc)

	prev := make(map[string]string, len(scc))
	queue := []string{start}
	seen := map[string]bool{start: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, w := range graph[current] {
			if !members[w] {
				continue
			}
			if w == start {
				var back []string
				for n := current; n != start; n = prev[n] {
					back = append(back, n)
				}
				slices.Reverse(back)
				path := append([]string{start}, back...)
				return append(path, start)
			}
			if !seen[w] {
				seen[w] = true
				prev[w] = current
				queue = append(queue, w)
			}
		}
	}
	return []string{start}
}
