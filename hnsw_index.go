package vsengine

import (
	"math"
	"math/rand"
)

// HNSWParams configures an HNSW graph's construction and default search
// behavior.
type HNSWParams struct {
	MaxLayerScale float32 // mL ∈ (0,1]
	NumLayers     int     // ≥ 1
	EFConstruct   int     // efc, construction beam width ≥ 1
}

// hnswNode is an arena-indexed graph node. Edges is allocated with one
// slot per layer for every node — including nodes whose sampled
// insertion layer l is above 0 — so that the downward-closure invariant
// holds by construction: a node "contains" every layer it has a
// (possibly empty) edge slot in. Connectivity, not mere membership, is
// what actually varies with l: layers below l hold an empty neighbor
// slice because only read-only ef=1 navigation happened there. See
// DESIGN.md's Open Question 4 decision.
type hnswNode struct {
	vec   Vector
	edges [][]int32 // edges[layer] = neighbor arena indices
}

// HNSWIndex is a layered navigable small-world proximity graph. Layer
// 0 contains every inserted point; higher layers contain progressively
// sparser samples. Edges are undirected within a layer.
type HNSWIndex[K comparable] struct {
	nodes      []hnswNode
	snapshot   []Record[K]
	distance   Distance
	params     HNSWParams
	entryPoint int32
	rng        *rand.Rand
}

// BuildHNSWIndex inserts every record of snapshot into a fresh graph,
// in snapshot order: the random insertion layer draw per node already
// gives the expected layer-sparsity property without needing to
// shuffle insertion order first.
func BuildHNSWIndex[K comparable](snapshot []Record[K], distance Distance, params HNSWParams) (*HNSWIndex[K], error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptySnapshot
	}
	if params.NumLayers < 1 {
		return nil, wrapError("BuildHNSWIndex", ErrInvalidParams)
	}

	idx := &HNSWIndex[K]{
		snapshot: snapshot,
		distance: distance,
		params:   params,
		rng:      rand.New(rand.NewSource(1)),
	}

	for _, rec := range snapshot {
		idx.insert(rec.Vec)
	}

	return idx, nil
}

// insert draws a random top insertion layer for vec, navigates greedily
// down to it, then beam-searches and links symmetrically from that
// layer up to the top.
func (idx *HNSWIndex[K]) insert(vec Vector) {
	newIdx := int32(len(idx.nodes))
	idx.nodes = append(idx.nodes, hnswNode{
		vec:   vec,
		edges: make([][]int32, idx.params.NumLayers),
	})

	if newIdx == 0 {
		idx.entryPoint = newIdx
		return
	}

	l := idx.randomLayer()
	curr := idx.entryPoint

	// ef=1 navigation on layers below l.
	for i := 0; i < l; i++ {
		curr = idx.greedyStep(i, curr, vec)
	}

	// efc beam search and symmetric linking from l upward.
	for i := l; i < idx.params.NumLayers; i++ {
		found := beamSearch(curr, idx.params.EFConstruct, idx.neighborsAt(i), idx.distTo(vec))
		for _, c := range found {
			idx.link(newIdx, c.idx, i)
		}
		if len(found) > 0 {
			curr = found[0].idx
		}
	}
}

// randomLayer draws l = min(floor(-ln(U(0,1]) * mL), numLayers-1).
func (idx *HNSWIndex[K]) randomLayer() int {
	u := idx.rng.Float64()
	if u <= 0 {
		u = 1e-12
	}
	l := int(math.Floor(-math.Log(u) * float64(idx.params.MaxLayerScale)))
	if l > idx.params.NumLayers-1 {
		l = idx.params.NumLayers - 1
	}
	if l < 0 {
		l = 0
	}
	return l
}

// greedyStep runs search_layer with ef=1 and returns its single result.
func (idx *HNSWIndex[K]) greedyStep(layer int, start int32, vec Vector) int32 {
	found := beamSearch(start, 1, idx.neighborsAt(layer), idx.distTo(vec))
	if len(found) == 0 {
		return start
	}
	return found[0].idx
}

func (idx *HNSWIndex[K]) link(a, b int32, layer int) {
	idx.nodes[a].edges[layer] = append(idx.nodes[a].edges[layer], b)
	idx.nodes[b].edges[layer] = append(idx.nodes[b].edges[layer], a)
}

func (idx *HNSWIndex[K]) neighborsAt(layer int) func(int32) []int32 {
	return func(i int32) []int32 { return idx.nodes[i].edges[layer] }
}

func (idx *HNSWIndex[K]) distTo(q Vector) func(int32) float32 {
	return func(i int32) float32 { return idx.distance.Calculate(q, idx.nodes[i].vec) }
}

// Query descends greedily (ef=1) through layers 0..numLayers-2 to find
// the best entry into the top layer, then runs
// search_layer(numLayers-1, ·, q, ef).
func (idx *HNSWIndex[K]) Query(q Vector, ef int) []Result[K] {
	if len(idx.nodes) == 0 {
		return nil
	}

	curr := idx.entryPoint
	for i := 0; i < idx.params.NumLayers-1; i++ {
		curr = idx.greedyStep(i, curr, q)
	}

	found := beamSearch(curr, ef, idx.neighborsAt(idx.params.NumLayers-1), idx.distTo(q))

	results := make([]Result[K], len(found))
	for i, c := range found {
		results[i] = Result[K]{Record: idx.snapshot[c.idx], Score: c.distance}
	}
	return results
}
