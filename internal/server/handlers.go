// Package server implements a TCP listener dispatching length-prefixed
// command frames into the catalog. Concurrency is goroutine-per-
// connection plus a single process-wide mutex rather than a
// single-threaded epoll/kqueue reactor — an idiomatic-Go substitution
// that preserves the same coarse-grained, one-mutex shared-state
// discipline a single-threaded reactor would give for free.
package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vsengine"
	"vsengine/internal/wire"
)

// dispatch runs one command's verb against the catalog and renders a
// response code and payload. The third return value is true only for
// "exit".
func (s *Server) dispatch(argv []string) (code uint32, payload []byte, exit bool) {
	if len(argv) == 0 {
		return wire.ERR, nil, false
	}

	verb := strings.ToLower(argv[0])
	args := argv[1:]

	switch verb {
	case "create_collection":
		return s.handleCreateCollection(args)
	case "add_to_collection":
		return s.handleAddToCollection(args)
	case "query":
		return s.handleQuery(args)
	case "hnsw":
		return s.handleBuildHNSW(args)
	case "vamana":
		return s.handleBuildVamana(args)
	case "ifi":
		return s.handleBuildIVF(args)
	case "annoy":
		return s.handleBuildAnnoy(args)
	case "queryalg":
		return s.handleQueryAlgorithm(args)
	case "collections":
		return wire.OK, []byte(strings.Join(s.catalog.ListCollections(), "\n")), false
	case "algorithms":
		return wire.OK, []byte(strings.Join(s.catalog.ListAlgorithms(), "\n")), false
	case "exit":
		return wire.OK, nil, true
	default:
		return wire.ERR, nil, false
	}
}

func (s *Server) handleCreateCollection(args []string) (uint32, []byte, bool) {
	if len(args) < 1 {
		return wire.ERR, nil, false
	}
	if err := s.catalog.CreateCollection(args[0], 0); err != nil && !errors.Is(err, vsengine.ErrCollectionExists) {
		return wire.ERR, nil, false
	}
	return wire.OK, nil, false
}

func (s *Server) handleAddToCollection(args []string) (uint32, []byte, bool) {
	if len(args) < 3 {
		return wire.ERR, nil, false
	}
	vec, err := parseCSVFloats(args[2])
	if err != nil {
		return wire.ERR, nil, false
	}
	if err := s.catalog.AddToCollection(args[0], args[1], vec); err != nil {
		return wire.ERR, nil, false
	}
	return wire.OK, nil, false
}

func (s *Server) handleQuery(args []string) (uint32, []byte, bool) {
	if len(args) < 3 {
		return wire.ERR, nil, false
	}
	vec, err := parseCSVFloats(args[1])
	if err != nil {
		return wire.ERR, nil, false
	}
	k, err := strconv.Atoi(args[2])
	if err != nil {
		return wire.ERR, nil, false
	}

	results, err := s.catalog.QueryCollection(args[0], vec, k)
	s.log.LogQuery(args[0], k, len(results), err)
	if err != nil {
		if errors.Is(err, vsengine.ErrCollectionNotFound) {
			return wire.NotFound, nil, false
		}
		return wire.ERR, nil, false
	}
	return wire.OK, []byte(renderKeys(results)), false
}

func (s *Server) handleQueryAlgorithm(args []string) (uint32, []byte, bool) {
	if len(args) < 3 {
		return wire.ERR, nil, false
	}
	vec, err := parseCSVFloats(args[1])
	if err != nil {
		return wire.ERR, nil, false
	}
	k, err := strconv.Atoi(args[2])
	if err != nil {
		return wire.ERR, nil, false
	}

	results, err := s.catalog.QueryAlgorithm(args[0], vec, k)
	s.log.LogQuery(args[0], k, len(results), err)
	if err != nil {
		if errors.Is(err, vsengine.ErrAlgorithmNotFound) {
			return wire.NotFound, nil, false
		}
		return wire.ERR, nil, false
	}
	return wire.OK, []byte(renderKeys(results)), false
}

func (s *Server) handleBuildHNSW(args []string) (uint32, []byte, bool) {
	if len(args) < 6 {
		return wire.ERR, nil, false
	}
	mL, err1 := strconv.ParseFloat(args[2], 32)
	_, err2 := strconv.Atoi(args[3]) // d: must parse as an integer; it is not compared with the collection's dimension
	numLayers, err3 := strconv.Atoi(args[4])
	efc, err4 := strconv.Atoi(args[5])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return wire.ERR, nil, false
	}

	name, err := s.catalog.AddAlgorithm(args[1], args[0], vsengine.HNSWParams{
		MaxLayerScale: float32(mL),
		NumLayers:     numLayers,
		EFConstruct:   efc,
	})
	return buildResult(name, err)
}

func (s *Server) handleBuildVamana(args []string) (uint32, []byte, bool) {
	if len(args) < 5 {
		return wire.ERR, nil, false
	}
	r, err1 := strconv.Atoi(args[3])
	alpha, err2 := strconv.ParseFloat(args[4], 32)
	if err1 != nil || err2 != nil {
		return wire.ERR, nil, false
	}

	name, err := s.catalog.AddAlgorithm(args[1], args[0], vsengine.VamanaParams{
		Alpha: float32(alpha),
		R:     r,
	})
	return buildResult(name, err)
}

func (s *Server) handleBuildIVF(args []string) (uint32, []byte, bool) {
	if len(args) < 5 {
		return wire.ERR, nil, false
	}
	numCentroids, err1 := strconv.Atoi(args[3])
	retrainThr, err2 := strconv.Atoi(args[4])
	if err1 != nil || err2 != nil {
		return wire.ERR, nil, false
	}

	name, err := s.catalog.AddAlgorithm(args[1], args[0], vsengine.IVFParams{
		NumCentroids:     numCentroids,
		RetrainThreshold: retrainThr,
	})
	return buildResult(name, err)
}

func (s *Server) handleBuildAnnoy(args []string) (uint32, []byte, bool) {
	if len(args) < 7 {
		return wire.ERR, nil, false
	}
	threshold, err1 := strconv.ParseFloat(args[3], 32)
	bucketThr, err2 := strconv.Atoi(args[4])
	maxDepth, err3 := strconv.Atoi(args[5])
	numTrees, err4 := strconv.Atoi(args[6])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return wire.ERR, nil, false
	}

	name, err := s.catalog.AddAlgorithm(args[1], args[0], vsengine.AnnoyForestParams{
		AnnoyTreeParams: vsengine.AnnoyTreeParams{
			Threshold:       float32(threshold),
			BucketThreshold: bucketThr,
			MaxDepth:        maxDepth,
		},
		NumTrees: numTrees,
		Parallel: numTrees > 1,
	})
	return buildResult(name, err)
}

func buildResult(name string, err error) (uint32, []byte, bool) {
	if err != nil {
		if errors.Is(err, vsengine.ErrCollectionNotFound) {
			return wire.NotFound, nil, false
		}
		return wire.ERR, nil, false
	}
	return wire.OK, []byte(name), false
}

func renderKeys[K comparable](results []vsengine.Result[K]) string {
	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = fmt.Sprintf("%v", r.Record.Key)
	}
	return strings.Join(keys, "\n")
}

func parseCSVFloats(s string) (vsengine.Vector, error) {
	if s == "" {
		return nil, fmt.Errorf("empty vector")
	}
	parts := strings.Split(s, ",")
	vec := make(vsengine.Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, err
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
