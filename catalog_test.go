package vsengine

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCatalogQueryCollectionReturnsNearestByScore(t *testing.T) {
	cat := NewCatalog[string](NewDistance())

	if err := cat.CreateCollection("C", 0); err != nil {
		t.Fatalf("create_collection: %v", err)
	}
	if err := cat.AddToCollection("C", "a", Vector{1, 0, 0}); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := cat.AddToCollection("C", "b", Vector{0, 1, 0}); err != nil {
		t.Fatalf("add b: %v", err)
	}

	results, err := cat.QueryCollection("C", Vector{0.9, 0.05, 0}, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 || results[0].Record.Key != "a" {
		t.Fatalf("expected top-1 'a', got %+v", results)
	}
}

func TestCatalogDuplicateKeysAllowed(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	_ = cat.CreateCollection("C", 0)
	_ = cat.AddToCollection("C", "a", Vector{1, 0})
	_ = cat.AddToCollection("C", "a", Vector{1, 0})

	results, err := cat.QueryCollection("C", Vector{1, 0}, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 || results[0].Record.Key != "a" || results[1].Record.Key != "a" {
		t.Fatalf("expected two 'a' results, got %+v", results)
	}
}

func TestCatalogIVFTooManyCentroidsErrors(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	_ = cat.CreateCollection("C", 0)
	_ = cat.AddToCollection("C", "a", Vector{1, 0})
	_ = cat.AddToCollection("C", "b", Vector{0, 1})

	_, err := cat.AddAlgorithm("ifi1", "C", IVFParams{NumCentroids: 5, RetrainThreshold: 10})
	if err == nil {
		t.Fatal("expected ERR when num_centroids exceeds collection size")
	}
}

func TestCatalogCreateCollectionAlreadyExistsIsNotFatal(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	if err := cat.CreateCollection("C", 0); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := cat.CreateCollection("C", 0)
	if !errors.Is(err, ErrCollectionExists) {
		t.Fatalf("expected ErrCollectionExists, got %v", err)
	}
	if err := cat.AddToCollection("C", "x", Vector{1}); err != nil {
		t.Fatalf("catalog should still be usable after AlreadyExists: %v", err)
	}
}

func TestCatalogAddToCollectionAutoCreates(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	if err := cat.AddToCollection("new", "k", Vector{1, 2}); err != nil {
		t.Fatalf("expected auto-create, got %v", err)
	}
	names := cat.ListCollections()
	if len(names) != 1 || names[0] != "new" {
		t.Fatalf("expected collection 'new' to exist, got %v", names)
	}
}

func TestCatalogAddToCollectionDimensionMismatch(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	_ = cat.AddToCollection("C", "a", Vector{1, 2, 3})
	err := cat.AddToCollection("C", "b", Vector{1, 2})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCatalogAlgorithmNameDisambiguation(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	_ = cat.CreateCollection("C", 0)
	for i := 0; i < 5; i++ {
		_ = cat.AddToCollection("C", fmt.Sprintf("k%d", i), Vector{float32(i), float32(-i)})
	}

	first, err := cat.AddAlgorithm("idx", "C", VamanaParams{Alpha: 1.2, R: 2})
	if err != nil {
		t.Fatalf("build 1: %v", err)
	}
	second, err := cat.AddAlgorithm("idx", "C", VamanaParams{Alpha: 1.2, R: 2})
	if err != nil {
		t.Fatalf("build 2: %v", err)
	}

	if first != "idx" {
		t.Errorf("expected first name 'idx', got %q", first)
	}
	if second != "idx_1" {
		t.Errorf("expected second name 'idx_1', got %q", second)
	}
}

func TestCatalogQueryAlgorithmNotFound(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	_, err := cat.QueryAlgorithm("missing", Vector{1, 2}, 1)
	if !errors.Is(err, ErrAlgorithmNotFound) {
		t.Fatalf("expected ErrAlgorithmNotFound, got %v", err)
	}
}

func TestCatalogSetLoggerRecordsLifecycleEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	cat := NewCatalog[string](NewDistance())
	cat.SetLogger(logger)

	if err := cat.CreateCollection("C", 0); err != nil {
		t.Fatalf("create_collection: %v", err)
	}
	_ = cat.AddToCollection("C", "a", Vector{1, 0})
	_ = cat.AddToCollection("C", "b", Vector{0, 1})

	if _, err := cat.AddAlgorithm("v1", "C", VamanaParams{Alpha: 1.2, R: 1}); err != nil {
		t.Fatalf("build: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "create_collection") {
		t.Errorf("expected create_collection to be logged, got %q", out)
	}
	if !strings.Contains(out, "build_index") {
		t.Errorf("expected build_index to be logged, got %q", out)
	}
}

func TestCatalogIndexSurvivesCollectionMutationAfterBuild(t *testing.T) {
	cat := NewCatalog[string](NewDistance())
	_ = cat.CreateCollection("C", 0)
	for i := 0; i < 10; i++ {
		_ = cat.AddToCollection("C", fmt.Sprintf("k%d", i), unitVector(int64(i)+1, 4))
	}

	name, err := cat.AddAlgorithm("a1", "C", HNSWParams{MaxLayerScale: 0.5, NumLayers: 2, EFConstruct: 4})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_ = cat.AddToCollection("C", "late", unitVector(5000, 4))

	results, err := cat.QueryAlgorithm(name, unitVector(1, 4), 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, r := range results {
		if r.Record.Key == "late" {
			t.Errorf("index snapshot should not observe post-build mutation, but found key 'late'")
		}
	}
}
