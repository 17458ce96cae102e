package depgraph

// Cycle detection over required edges only. Depth-first search with a
// global visited set, an on-stack marker, and an explicit current path;
// the recursion is unrolled onto a frame stack so pathological module
// webs cannot exhaust the goroutine stack.
//
// A chain is recorded as the sub-sequence of the current path starting at
// the revisited node, with that node appended again to close the loop:
// A -> B -> C -> A is reported as [A B C A]. Every DFS root is tried, so
// disjoint cycles across the graph are all found. O(V+E).

type dfsFrame struct {
	id   string
	next int // index of the next outgoing edge to follow
}

// detectCycles finds all circular required-dependency chains in the graph
func detectCycles(g *Graph) [][]string {
	adjacency := make(map[string][]string)
	for _, e := range g.Edges {
		if e.Kind == EdgeRequired {
			adjacency[e.SourceID] = append(adjacency[e.SourceID], e.TargetID)
		}
	}

	visited := make(map[string]bool, len(g.Nodes))
	var chains [][]string

	for _, n := range g.Nodes {
		if visited[n.ID] {
			continue
		}
		chains = append(chains, cyclesFrom(n.ID, adjacency, visited)...)
	}

	return chains
}

// cyclesFrom runs one DFS rooted at start, collecting every cycle closed
// through the current path
func cyclesFrom(start string, adjacency map[string][]string, visited map[string]bool) [][]string {
	var chains [][]string

	onStack := make(map[string]bool)
	var path []string
	stack := []dfsFrame{{id: start}}

	visited[start] = true
	onStack[start] = true
	path = append(path, start)

	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		targets := adjacency[frame.id]

		if frame.next < len(targets) {
			target := targets[frame.next]
			frame.next++

			if !visited[target] {
				visited[target] = true
				onStack[target] = true
				path = append(path, target)
				stack = append(stack, dfsFrame{id: target})
				continue
			}

			if onStack[target] {
				// Close the loop from the first occurrence of target
				idx := 0
				for i, id := range path {
					if id == target {
						idx = i
						break
					}
				}
				chain := make([]string, 0, len(path)-idx+1)
				chain = append(chain, path[idx:]...)
				chain = append(chain, target)
				chains = append(chains, chain)
			}
			continue
		}

		// All targets explored, unwind
		onStack[frame.id] = false
		path = path[:len(path)-1]
		stack = stack[:len(stack)-1]
	}

	return chains
}
