package vsengine

import (
	"math/rand"
	"testing"
	"time"
)

func TestKMeansConvergesInBoundedSteps(t *testing.T) {
	var vectors []Vector
	for i := 0; i < 30; i++ {
		vectors = append(vectors, unitVector(int64(i)+20000, 3))
	}

	done := make(chan kmeansResult, 1)
	go func() {
		done <- kmeans(vectors, 4, rand.New(rand.NewSource(42)))
	}()

	select {
	case result := <-done:
		if len(result.centroids) != 4 {
			t.Fatalf("expected 4 centroids, got %d", len(result.centroids))
		}
		if len(result.assignment) != len(vectors) {
			t.Fatalf("expected an assignment for every vector, got %d", len(result.assignment))
		}
		for _, c := range result.assignment {
			if c < 0 || c >= 4 {
				t.Errorf("assignment %d out of range [0,4)", c)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("kmeans did not converge within the test timeout")
	}
}

func TestKMeansStableOnAlreadyConvergedInput(t *testing.T) {
	vectors := []Vector{
		{0, 0}, {0, 0.01},
		{10, 10}, {10, 10.01},
	}

	result := kmeans(vectors, 2, rand.New(rand.NewSource(1)))

	if result.assignment[0] != result.assignment[1] {
		t.Errorf("expected the two near-origin points in the same cluster")
	}
	if result.assignment[2] != result.assignment[3] {
		t.Errorf("expected the two near-(10,10) points in the same cluster")
	}
	if result.assignment[0] == result.assignment[2] {
		t.Errorf("expected the two well-separated clusters to differ")
	}
}
