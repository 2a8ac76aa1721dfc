package vsengine

import "math/rand"

// convergenceThreshold is the minimum unsquared-Euclidean centroid
// movement that counts as "still changing".
const convergenceThreshold = 0.001

// kmeansResult holds the centroids learned and each input vector's
// final cluster assignment.
type kmeansResult struct {
	centroids  []Vector
	assignment []int
}

// kmeans clusters vectors into k centroids via Lloyd iteration, using
// random initial centroid selection and terminating once a full pass
// leaves every assignment and every centroid unchanged (within
// convergenceThreshold), rather than only checking cluster sizes.
func kmeans(vectors []Vector, k int, rng *rand.Rand) kmeansResult {
	centroids := initCentroids(vectors, k, rng)
	assignment := make([]int, len(vectors))
	for i := range assignment {
		assignment[i] = -1
	}

	for {
		newAssignment := assignVectors(vectors, centroids)
		changed := !assignmentsEqual(assignment, newAssignment)
		assignment = newAssignment

		moved := updateCentroids(vectors, centroids, assignment)

		if !changed && !moved {
			break
		}
	}

	return kmeansResult{centroids: centroids, assignment: assignment}
}

// initCentroids randomly selects k distinct vectors as starting
// centroids by shuffling the input order and taking the first k.
func initCentroids(vectors []Vector, k int, rng *rand.Rand) []Vector {
	order := rng.Perm(len(vectors))
	centroids := make([]Vector, k)
	for i := 0; i < k; i++ {
		centroids[i] = append(Vector{}, vectors[order[i]]...)
	}
	return centroids
}

func assignVectors(vectors []Vector, centroids []Vector) []int {
	assignment := make([]int, len(vectors))
	for i, v := range vectors {
		best := 0
		bestDist := euclideanUnsquared(v, centroids[0])
		for c := 1; c < len(centroids); c++ {
			d := euclideanUnsquared(v, centroids[c])
			if d < bestDist {
				bestDist = d
				best = c
			}
		}
		assignment[i] = best
	}
	return assignment
}

// updateCentroids recomputes each centroid as the mean of its assigned
// vectors and reports whether any centroid moved by >= convergenceThreshold.
func updateCentroids(vectors []Vector, centroids []Vector, assignment []int) bool {
	dim := len(centroids[0])
	sums := make([]Vector, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make(Vector, dim)
	}

	for i, v := range vectors {
		c := assignment[i]
		counts[c]++
		for j, x := range v {
			sums[c][j] += x
		}
	}

	moved := false
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		next := make(Vector, dim)
		for j := range next {
			next[j] = sums[c][j] / float32(counts[c])
		}
		if euclideanUnsquared(centroids[c], next) >= convergenceThreshold {
			moved = true
		}
		centroids[c] = next
	}
	return moved
}

func assignmentsEqual(a, b []int) bool {
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
