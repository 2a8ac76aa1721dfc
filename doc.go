/*
Package vsengine implements an in-memory approximate-nearest-neighbor vector
search engine.

It stores named collections of (key, vector) records and builds named
indices over snapshots of those collections on demand. Four index families
are supported, each trading off build cost, query cost, and recall
differently:

  - AnnoyForest: a forest of random-projection binary trees. Good build
    speed, approximate recall controlled by an ambiguity threshold.
  - HNSWIndex: a layered navigable small-world graph. Logarithmic search
    with high recall once built.
  - VamanaIndex: a single-layer directed proximity graph refined by
    robust pruning. Competitive recall with a flat adjacency structure.
  - IVFIndex: k-means clustering with centroid probing at query time.
    Fast approximate search over large collections.

# Quick Start

	catalog := vsengine.NewCatalog[string](vsengine.NewDistance())

	catalog.AddToCollection("docs", "a", []float32{1, 0, 0})
	catalog.AddToCollection("docs", "b", []float32{0, 1, 0})

	results, _ := catalog.QueryCollection("docs", []float32{0.9, 0.05, 0}, 1)
	// results[0].Record.Key == "a"

	name, _ := catalog.AddAlgorithm("docs_hnsw", "docs", vsengine.HNSWParams{
		MaxLayerScale: 0.5,
		NumLayers:     4,
		EFConstruct:   32,
	})
	results, _ = catalog.QueryAlgorithm(name, []float32{0.9, 0.05, 0}, 1)

Every index is built from an immutable snapshot of its source collection
taken at build time; later mutations to the collection are never observed
by an already-built index.

# Concurrency

The Catalog guards every collection and index behind a single mutex, and
each request is serviced to completion before the next begins, matching
the coarse-grained dispatch model described for the server loop. Index
build procedures themselves are compute-bound; the only concurrency
internal to an index is the optional fan-out/fan-in of an Annoy forest's
per-tree builds.

# Distance

The distance metric is pluggable via the Distance interface; the shipped
default is squared Euclidean, computed without the square root since
index algorithms only need a total order over distances.
*/
package vsengine
