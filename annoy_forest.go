package vsengine

import (
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// AnnoyForestParams configures the forest and every tree within it.
type AnnoyForestParams struct {
	AnnoyTreeParams
	NumTrees int // n, ≥ 1
	Parallel bool
}

// AnnoyForest is n independently-seeded AnnoyTrees built over the same
// snapshot. Order among trees is irrelevant to query results.
type AnnoyForest[K comparable] struct {
	snapshot []Record[K]
	distance Distance
	trees    []*AnnoyTree[K]
}

// BuildAnnoyForest builds every tree, optionally in parallel via
// errgroup fan-out/fan-in. The forest is installed only after every
// tree has finished building — each goroutine returns its own
// *AnnoyTree into a pre-sized slot rather than appending to one shared
// slice, which would race across goroutines.
func BuildAnnoyForest[K comparable](snapshot []Record[K], distance Distance, params AnnoyForestParams) *AnnoyForest[K] {
	f := &AnnoyForest[K]{
		snapshot: snapshot,
		distance: distance,
		trees:    make([]*AnnoyTree[K], params.NumTrees),
	}

	if !params.Parallel {
		for i := 0; i < params.NumTrees; i++ {
			rng := rand.New(rand.NewSource(int64(i) + 1))
			f.trees[i] = buildAnnoyTree(snapshot, distance, params.AnnoyTreeParams, rng)
		}
		return f
	}

	var g errgroup.Group
	for i := 0; i < params.NumTrees; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(int64(i) + 1))
			f.trees[i] = buildAnnoyTree(snapshot, distance, params.AnnoyTreeParams, rng)
			return nil
		})
	}
	_ = g.Wait() // tree builds never return an error; Wait only gates completion

	return f
}

// Query unions the candidate records found by every tree, scores each
// against q, and returns the top k by ascending distance. Duplicates
// across trees are not deduplicated — see DESIGN.md's Open Question 2
// decision.
func (f *AnnoyForest[K]) Query(q Vector, k int) []Result[K] {
	var candidates []int32
	for _, t := range f.trees {
		t.query(q, &candidates)
	}

	results := make([]Result[K], len(candidates))
	for i, idx := range candidates {
		rec := f.snapshot[idx]
		results[i] = Result[K]{Record: rec, Score: f.distance.Calculate(q, rec.Vec)}
	}

	return topK(results, k)
}

// reconstructAll returns every tree's leaf-list reconstruction as a
// separate slice, one per tree, so record preservation can be checked
// tree by tree rather than over the whole forest (the forest allows
// duplicates across trees).
func (f *AnnoyForest[K]) reconstructAll() [][]int32 {
	out := make([][]int32, len(f.trees))
	for i, t := range f.trees {
		out[i] = t.reconstruct()
	}
	return out
}
