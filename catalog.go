package vsengine

import (
	"fmt"
	"sync"
)

// AlgorithmKind identifies which of the four index families a named
// index instance belongs to.
type AlgorithmKind int

const (
	KindHNSW AlgorithmKind = iota
	KindVamana
	KindIVF
	KindAnnoy
)

// algorithmParams is implemented by each index family's params struct
// so AddAlgorithm can dispatch on a single argument without an
// interface{} escape hatch.
type algorithmParams interface {
	kind() AlgorithmKind
}

func (HNSWParams) kind() AlgorithmKind        { return KindHNSW }
func (VamanaParams) kind() AlgorithmKind      { return KindVamana }
func (IVFParams) kind() AlgorithmKind         { return KindIVF }
func (AnnoyForestParams) kind() AlgorithmKind { return KindAnnoy }

// namedIndex wraps exactly one built index family under a single,
// flat, process-wide name.
type namedIndex[K comparable] struct {
	kind       AlgorithmKind
	collection string
	hnsw       *HNSWIndex[K]
	vamana     *VamanaIndex[K]
	ivf        *IVFIndex[K]
	annoy      *AnnoyForest[K]
}

func (n *namedIndex[K]) query(q Vector, ef int) []Result[K] {
	switch n.kind {
	case KindHNSW:
		return n.hnsw.Query(q, ef)
	case KindVamana:
		return n.vamana.Query(q, ef)
	case KindIVF:
		return n.ivf.Query(q, ef, n.ivf.defaultNProbe())
	case KindAnnoy:
		return n.annoy.Query(q, ef)
	default:
		return nil
	}
}

// Catalog owns every collection and named index instance in the
// engine, serializing all structural mutation and queries behind a
// single coarse-grained mutex rather than locking per collection or
// per index.
type Catalog[K comparable] struct {
	mu          sync.Mutex
	distance    Distance
	log         *Logger
	collections map[string][]Record[K]
	dims        map[string]int
	indices     map[string]*namedIndex[K]
}

// NewCatalog constructs an empty catalog using distance for every
// index built through it. It logs nothing until SetLogger is called.
func NewCatalog[K comparable](distance Distance) *Catalog[K] {
	return &Catalog[K]{
		distance:    distance,
		collections: make(map[string][]Record[K]),
		dims:        make(map[string]int),
		indices:     make(map[string]*namedIndex[K]),
	}
}

// SetLogger attaches log so subsequent collection and index lifecycle
// events are recorded. A nil catalog logger is a no-op, not a panic.
func (c *Catalog[K]) SetLogger(log *Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = log
}

// CreateCollection creates an empty named collection. reserveHint is
// advisory capacity; re-creating an existing collection reports
// ErrCollectionExists but is not fatal to the caller.
func (c *Catalog[K]) CreateCollection(name string, reserveHint int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.collections[name]; ok {
		err := wrapError("CreateCollection", ErrCollectionExists)
		c.logCreateCollection(name, err)
		return err
	}
	c.collections[name] = make([]Record[K], 0, reserveHint)
	c.logCreateCollection(name, nil)
	return nil
}

func (c *Catalog[K]) logCreateCollection(name string, err error) {
	if c.log != nil {
		c.log.LogCreateCollection(name, err)
	}
}

// DeleteCollection removes a collection. Indices built from it keep
// their own snapshot and are unaffected.
func (c *Catalog[K]) DeleteCollection(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.collections[name]; !ok {
		return wrapError("DeleteCollection", ErrCollectionNotFound)
	}
	delete(c.collections, name)
	delete(c.dims, name)
	return nil
}

// AddToCollection appends a record, auto-creating the collection if
// it doesn't exist yet. Keys are not required to be unique.
func (c *Catalog[K]) AddToCollection(name string, key K, vec Vector) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dim, exists := c.dims[name]
	if !exists {
		c.dims[name] = len(vec)
	} else if dim != len(vec) {
		return wrapError("AddToCollection", ErrDimensionMismatch)
	}

	c.collections[name] = append(c.collections[name], Record[K]{Key: key, Vec: vec})
	return nil
}

// DeleteFromCollection removes the first record matching key.
func (c *Catalog[K]) DeleteFromCollection(name string, key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, ok := c.collections[name]
	if !ok {
		return wrapError("DeleteFromCollection", ErrCollectionNotFound)
	}
	for i, r := range records {
		if r.Key == key {
			c.collections[name] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}
	return wrapError("DeleteFromCollection", ErrRecordNotFound)
}

// QueryCollection brute-force scores every record currently in the
// raw collection (no index involved) and returns the top ef.
func (c *Catalog[K]) QueryCollection(name string, q Vector, ef int) ([]Result[K], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, ok := c.collections[name]
	if !ok {
		return nil, wrapError("QueryCollection", ErrCollectionNotFound)
	}

	results := make([]Result[K], len(records))
	for i, r := range records {
		results[i] = Result[K]{Record: r, Score: c.distance.Calculate(q, r.Vec)}
	}
	return topK(results, ef), nil
}

// AddAlgorithm builds a named index of the family identified by
// params' concrete type over a snapshot of collName, disambiguating
// algName with _1, _2, … suffixes if already taken.
func (c *Catalog[K]) AddAlgorithm(algName, collName string, params algorithmParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, ok := c.collections[collName]
	if !ok {
		err := wrapError("AddAlgorithm", ErrCollectionNotFound)
		if c.log != nil {
			c.log.LogBuildIndex(params.kind(), algName, collName, err)
		}
		return "", err
	}
	snapshot := append([]Record[K]{}, records...)

	entry := &namedIndex[K]{kind: params.kind(), collection: collName}
	var err error
	switch p := params.(type) {
	case HNSWParams:
		entry.hnsw, err = BuildHNSWIndex(snapshot, c.distance, p)
	case VamanaParams:
		entry.vamana, err = BuildVamanaIndex(snapshot, c.distance, p)
	case IVFParams:
		entry.ivf, err = BuildIVFIndex(snapshot, c.distance, p)
	case AnnoyForestParams:
		entry.annoy = BuildAnnoyForest(snapshot, c.distance, p)
	default:
		err = ErrInvalidParams
	}
	if err != nil {
		err = wrapError("AddAlgorithm", err)
		if c.log != nil {
			c.log.LogBuildIndex(params.kind(), algName, collName, err)
		}
		return "", err
	}

	finalName := c.disambiguate(algName)
	c.indices[finalName] = entry
	if c.log != nil {
		c.log.LogBuildIndex(params.kind(), finalName, collName, nil)
	}
	return finalName, nil
}

func (c *Catalog[K]) disambiguate(name string) string {
	if _, taken := c.indices[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, taken := c.indices[candidate]; !taken {
			return candidate
		}
	}
}

// QueryAlgorithm dispatches a top-ef query to a previously built named
// index.
func (c *Catalog[K]) QueryAlgorithm(algName string, q Vector, ef int) ([]Result[K], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.indices[algName]
	if !ok {
		return nil, wrapError("QueryAlgorithm", ErrAlgorithmNotFound)
	}
	return idx.query(q, ef), nil
}

// ListCollections returns every collection name currently known.
func (c *Catalog[K]) ListCollections() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.collections))
	for name := range c.collections {
		names = append(names, name)
	}
	return names
}

// ListAlgorithms returns every named index currently built.
func (c *Catalog[K]) ListAlgorithms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.indices))
	for name := range c.indices {
		names = append(names, name)
	}
	return names
}
