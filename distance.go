package vsengine

import "math"

// Distance computes a total order over closeness between vectors.
// Implementations needn't be metrics in the strict mathematical sense
// (squaredEuclidean isn't a metric: unlike its unsquared form, it
// fails the triangle inequality) — they only need to agree on
// ordering with the true distance, since every index algorithm here
// only ever compares distances, never adds them.
type Distance interface {
	// Calculate returns the distance between a and b. Both must have
	// the same dimension.
	Calculate(a, b Vector) float32

	// CalculateBatch returns the distance from target to each of queries.
	CalculateBatch(queries []Vector, target Vector) []float32

	// Preprocess returns a version of v suitable for repeated distance
	// calculations (e.g. normalized for cosine-style metrics). The
	// squared-Euclidean default returns v unchanged.
	Preprocess(v Vector) (Vector, error)
}

// NewDistance returns the engine's default distance metric: squared
// Euclidean. The hook stays pluggable per spec, but Non-goals exclude
// shipping additional metrics, so this is the only concrete
// implementation.
func NewDistance() Distance { return squaredEuclidean{} }

type squaredEuclidean struct{}

func (squaredEuclidean) Calculate(a, b Vector) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func (squaredEuclidean) CalculateBatch(queries []Vector, target Vector) []float32 {
	out := make([]float32, len(queries))
	for i, q := range queries {
		var sum float32
		for j := range q {
			d := q[j] - target[j]
			sum += d * d
		}
		out[i] = sum
	}
	return out
}

func (squaredEuclidean) Preprocess(v Vector) (Vector, error) { return v, nil }

// euclideanUnsquared is used only for IVF's convergenceThreshold
// comparison, which is defined in terms of unsquared Euclidean
// distance. It is not exposed through the Distance interface since it
// is not a pluggable metric — it is a fixed part of IVF's convergence
// test.
func euclideanUnsquared(a, b Vector) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}
