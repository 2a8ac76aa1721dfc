package vsengine

import (
	"math"
	"math/rand"
)

// IVFParams configures an inverted file index.
type IVFParams struct {
	NumCentroids     int // ≥ 1
	RetrainThreshold int // ≥ 1
}

// IVFIndex is a k-means clustering of vectors into NumCentroids cells,
// retrained after RetrainThreshold additions. Queries probe the nprobe
// nearest centroids rather than linearly scanning the whole snapshot —
// see DESIGN.md's Open Question 3 decision.
type IVFIndex[K comparable] struct {
	snapshot          []Record[K]
	distance          Distance
	params            IVFParams
	centroids         []Vector
	cells             [][]int32 // cells[c] = record indices assigned to centroid c
	addedSinceRetrain int
	rng               *rand.Rand
}

// BuildIVFIndex trains centroids over snapshot and assigns every
// record to its nearest cell.
func BuildIVFIndex[K comparable](snapshot []Record[K], distance Distance, params IVFParams) (*IVFIndex[K], error) {
	if len(snapshot) < params.NumCentroids {
		return nil, wrapError("BuildIVFIndex", ErrInvalidParams)
	}
	if params.NumCentroids < 1 || params.RetrainThreshold < 1 {
		return nil, wrapError("BuildIVFIndex", ErrInvalidParams)
	}

	idx := &IVFIndex[K]{
		snapshot: snapshot,
		distance: distance,
		params:   params,
		rng:      rand.New(rand.NewSource(1)),
	}
	idx.train()

	return idx, nil
}

func (idx *IVFIndex[K]) vectors() []Vector {
	vectors := make([]Vector, len(idx.snapshot))
	for i, r := range idx.snapshot {
		vectors[i] = r.Vec
	}
	return vectors
}

// train runs Lloyd's algorithm to convergence and rebuilds the cell
// assignment from the result.
func (idx *IVFIndex[K]) train() {
	result := kmeans(idx.vectors(), idx.params.NumCentroids, idx.rng)
	idx.centroids = result.centroids

	idx.cells = make([][]int32, idx.params.NumCentroids)
	for i, c := range result.assignment {
		idx.cells[c] = append(idx.cells[c], int32(i))
	}
}

// Add appends a record to the backing collection's snapshot copy and
// retrains once RetrainThreshold additions have accumulated.
func (idx *IVFIndex[K]) Add(rec Record[K]) {
	idx.snapshot = append(idx.snapshot, rec)
	idx.addedSinceRetrain++
	if idx.addedSinceRetrain >= idx.params.RetrainThreshold {
		idx.train()
		idx.addedSinceRetrain = 0
	}
}

// defaultNProbe returns a conservative number of cells to probe when
// the caller (the catalog's named-index query path) has no way to
// specify nprobe explicitly — the wire protocol's queryAlg command
// carries only k, not nprobe. ⌈√numCentroids⌉ is the common heuristic
// for balancing recall against the whole point of cell probing: never
// probing every cell, which would degrade to a linear scan.
func (idx *IVFIndex[K]) defaultNProbe() int {
	n := int(math.Ceil(math.Sqrt(float64(len(idx.centroids)))))
	if n < 1 {
		n = 1
	}
	return n
}

// Query probes the nprobe nearest centroids and searches only those
// cells, returning the top k results by ascending distance.
func (idx *IVFIndex[K]) Query(q Vector, k int, nprobe int) []Result[K] {
	if nprobe < 1 {
		nprobe = 1
	}
	if nprobe > len(idx.centroids) {
		nprobe = len(idx.centroids)
	}

	type centroidDist struct {
		cell int
		dist float32
	}
	ranked := make([]centroidDist, len(idx.centroids))
	for i, c := range idx.centroids {
		ranked[i] = centroidDist{cell: i, dist: idx.distance.Calculate(q, c)}
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].dist < ranked[j-1].dist; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	var results []Result[K]
	for p := 0; p < nprobe; p++ {
		for _, recIdx := range idx.cells[ranked[p].cell] {
			rec := idx.snapshot[recIdx]
			results = append(results, Result[K]{Record: rec, Score: idx.distance.Calculate(q, rec.Vec)})
		}
	}

	return topK(results, k)
}
