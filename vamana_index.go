package vsengine

import "math/rand"

// VamanaParams configures a Vamana graph's construction.
type VamanaParams struct {
	Alpha float32 // α ≥ 1
	R     int     // max out-degree, ≥ 1
}

// vamanaNode is an arena-indexed directed graph node.
type vamanaNode struct {
	vec      Vector
	outgoing []int32
	incoming []int32
}

// VamanaIndex is a single-layer directed proximity graph refined by
// robust pruning with parameter α.
type VamanaIndex[K comparable] struct {
	nodes     []vamanaNode
	snapshot  []Record[K]
	distance  Distance
	params    VamanaParams
	startNode int32
}

// BuildVamanaIndex runs the full build procedure: random R-regular
// wiring, medoid selection, then the refinement pass with robust
// pruning.
func BuildVamanaIndex[K comparable](snapshot []Record[K], distance Distance, params VamanaParams) (*VamanaIndex[K], error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptySnapshot
	}
	if params.R < 1 || params.Alpha < 1 {
		return nil, wrapError("BuildVamanaIndex", ErrInvalidParams)
	}

	idx := &VamanaIndex[K]{
		snapshot: snapshot,
		distance: distance,
		params:   params,
		nodes:    make([]vamanaNode, len(snapshot)),
	}
	for i, rec := range snapshot {
		idx.nodes[i].vec = rec.Vec
	}

	idx.findStartNode()
	idx.randomWiring()
	idx.refine()

	return idx, nil
}

// findStartNode locates the record closest to the arithmetic mean of
// the snapshot: the medoid.
func (idx *VamanaIndex[K]) findStartNode() {
	vectors := make([]Vector, len(idx.nodes))
	for i, n := range idx.nodes {
		vectors[i] = n.vec
	}
	mean := meanVector(vectors)

	best := int32(0)
	bestDist := idx.distance.Calculate(idx.nodes[0].vec, mean)
	for i := 1; i < len(idx.nodes); i++ {
		d := idx.distance.Calculate(idx.nodes[i].vec, mean)
		if d < bestDist {
			bestDist = d
			best = int32(i)
		}
	}
	idx.startNode = best
}

// randomWiring connects each node to R distinct random neighbors != x.
func (idx *VamanaIndex[K]) randomWiring() {
	rng := rand.New(rand.NewSource(1))
	n := len(idx.nodes)

	for x := int32(0); x < int32(n); x++ {
		order := rng.Perm(n)
		count := 0
		for _, j := range order {
			if int32(j) == x {
				continue
			}
			idx.connect(x, int32(j))
			count++
			if count == idx.params.R {
				break
			}
		}
	}
}

func (idx *VamanaIndex[K]) connect(x, n int32) {
	idx.nodes[x].outgoing = append(idx.nodes[x].outgoing, n)
	idx.nodes[n].incoming = append(idx.nodes[n].incoming, x)
}

// refine runs one pass over every node x in snapshot order:
// greedy-search toward x's own vector, robust-prune x against the
// visited set, then for each inbound neighbor y of x, either
// robust-prune y (deliberately using y's incoming adjacency as the
// candidate set, not y's outgoing adjacency — see DESIGN.md's Open
// Question 1 decision) or simply add x to y.
func (idx *VamanaIndex[K]) refine() {
	for x := int32(0); x < int32(len(idx.nodes)); x++ {
		visited := idx.greedySearchAll(idx.nodes[x].vec)
		idx.robustPrune(x, visited)

		for _, y := range idx.nodes[x].incoming {
			if len(idx.nodes[y].incoming) > idx.params.R {
				candidates := append([]int32{}, idx.nodes[y].incoming...)
				candidates = append(candidates, x)
				idx.robustPrune(y, candidates)
			} else {
				idx.nodes[y].incoming = append(idx.nodes[y].incoming, x)
			}
		}
	}
}

// greedySearchAll runs a greedy (ef=1) search from the start node
// toward target, returning every node index visited along the walk —
// the candidate pool robust pruning selects from.
func (idx *VamanaIndex[K]) greedySearchAll(target Vector) []int32 {
	return beamSearchVisited(idx.startNode, 1, idx.outgoingNeighbors, idx.distTo(target))
}

func (idx *VamanaIndex[K]) outgoingNeighbors(i int32) []int32 { return idx.nodes[i].outgoing }

func (idx *VamanaIndex[K]) distTo(q Vector) func(int32) float32 {
	return func(i int32) float32 { return idx.distance.Calculate(q, idx.nodes[i].vec) }
}

// robustPrune selects x's new outgoing neighborhood from candidates C
// and x's current outgoing set: build U = (C ∪ x.outgoing) \ {x}, then
// greedily accept the closest
// remaining candidate into x's outgoing set, discarding any candidate
// α-dominated by the one just accepted, until R edges are chosen or
// candidates are exhausted.
func (idx *VamanaIndex[K]) robustPrune(x int32, candidates []int32) {
	seen := map[int32]bool{x: true}
	var u []int32
	for _, c := range append(candidates, idx.nodes[x].outgoing...) {
		if !seen[c] {
			seen[c] = true
			u = append(u, c)
		}
	}

	idx.nodes[x].outgoing = nil

	type scored struct {
		idx  int32
		dist float32
	}
	pool := make([]scored, len(u))
	for i, c := range u {
		pool[i] = scored{idx: c, dist: idx.distance.Calculate(idx.nodes[c].vec, idx.nodes[x].vec)}
	}

	for len(pool) > 0 && len(idx.nodes[x].outgoing) < idx.params.R {
		bestI := 0
		for i := 1; i < len(pool); i++ {
			if pool[i].dist < pool[bestI].dist {
				bestI = i
			}
		}
		best := pool[bestI]
		idx.nodes[x].outgoing = append(idx.nodes[x].outgoing, best.idx)

		pool[bestI] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		kept := pool[:0]
		for _, c := range pool {
			if idx.params.Alpha*c.dist > best.dist {
				kept = append(kept, c)
			}
		}
		pool = kept
	}
}

// Query runs the same beam search as HNSW's layered search over the
// single directed graph, starting at the medoid.
func (idx *VamanaIndex[K]) Query(q Vector, ef int) []Result[K] {
	if len(idx.nodes) == 0 {
		return nil
	}

	found := beamSearch(idx.startNode, ef, idx.outgoingNeighbors, idx.distTo(q))

	results := make([]Result[K], len(found))
	for i, c := range found {
		results[i] = Result[K]{Record: idx.snapshot[c.idx], Score: c.distance}
	}
	return results
}
