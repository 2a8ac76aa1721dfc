package vsengine

import (
	"container/heap"

	"github.com/RoaringBitmap/roaring"
)

// beamSearch is the shared beam-search primitive used by both HNSW's
// per-layer search and Vamana's greedy search over its single directed
// graph. neighbors(idx) must return the outgoing/undirected adjacency
// of idx in whatever graph is being searched; distTo(idx) must return
// the distance from idx's vector to the query.
//
// Returns the contents of the `nearest` beam in ascending distance
// order. The visited set is kept as a roaring.Bitmap rather than a
// plain map for compactness over the dense, small-integer arena
// indices every index uses.
func beamSearch(start int32, ef int, neighbors func(int32) []int32, distTo func(int32) float32) []candidate {
	visited := roaring.New()
	visited.Add(uint32(start))

	candidates := newMinHeap()
	nearest := newMaxHeap()
	defer putMinHeap(candidates)
	defer putMaxHeap(nearest)

	startDist := distTo(start)
	heap.Push(candidates, candidate{idx: start, distance: startDist})
	heap.Push(nearest, candidate{idx: start, distance: startDist})

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(candidate)

		if nearest.Len() >= ef && c.distance > (*nearest)[0].distance {
			break
		}

		for _, n := range neighbors(c.idx) {
			if !visited.CheckedAdd(uint32(n)) {
				continue
			}

			d := distTo(n)
			if nearest.Len() < ef || d < (*nearest)[0].distance {
				heap.Push(candidates, candidate{idx: n, distance: d})
				heap.Push(nearest, candidate{idx: n, distance: d})
				if nearest.Len() > ef {
					heap.Pop(nearest)
				}
			}
		}
	}

	return ascendingFromMaxHeap(*nearest)
}

// beamSearchVisited runs the same traversal as beamSearch but returns
// every node index touched during the walk, not just the final
// ef-nearest beam. Vamana's refinement pass needs this broader set as
// its pruning candidate pool.
func beamSearchVisited(start int32, ef int, neighbors func(int32) []int32, distTo func(int32) float32) []int32 {
	visited := roaring.New()
	visited.Add(uint32(start))
	order := []int32{start}

	candidates := newMinHeap()
	nearest := newMaxHeap()
	defer putMinHeap(candidates)
	defer putMaxHeap(nearest)

	startDist := distTo(start)
	heap.Push(candidates, candidate{idx: start, distance: startDist})
	heap.Push(nearest, candidate{idx: start, distance: startDist})

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(candidate)

		if nearest.Len() >= ef && c.distance > (*nearest)[0].distance {
			break
		}

		for _, n := range neighbors(c.idx) {
			if !visited.CheckedAdd(uint32(n)) {
				continue
			}
			order = append(order, n)

			d := distTo(n)
			if nearest.Len() < ef || d < (*nearest)[0].distance {
				heap.Push(candidates, candidate{idx: n, distance: d})
				heap.Push(nearest, candidate{idx: n, distance: d})
				if nearest.Len() > ef {
					heap.Pop(nearest)
				}
			}
		}
	}

	return order
}

// ascendingFromMaxHeap returns items sorted nearest-first. Beam widths
// are small (tens to low hundreds), so an insertion sort over a copy is
// simpler than draining through container/heap and just as fast at
// this scale.
func ascendingFromMaxHeap(items maxHeap) []candidate {
	out := append([]candidate(nil), items...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].distance < out[j-1].distance; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
