package vsengine

import (
	"container/heap"
	"sync"
)

// candidate is a beam-search entry: an arena index and its distance to
// the query being searched for. Both HNSW's search_layer and Vamana's
// greedy search share this shape and the same underlying beam-search
// primitive.
type candidate struct {
	idx      int32
	distance float32
}

// minHeap pops the closest candidate first — used for the frontier of
// unexpanded candidates during beam search.
type minHeap []candidate

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].distance < h[j].distance }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// maxHeap pops the farthest candidate first — used to hold the best ef
// candidates found so far, so the current worst can be evicted in O(log ef)
// when a closer candidate arrives.
type maxHeap []candidate

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].distance > h[j].distance }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

var minHeapPool = sync.Pool{
	New: func() interface{} {
		h := &minHeap{}
		heap.Init(h)
		return h
	},
}

var maxHeapPool = sync.Pool{
	New: func() interface{} {
		h := &maxHeap{}
		heap.Init(h)
		return h
	},
}

func newMinHeap() *minHeap { return minHeapPool.Get().(*minHeap) }

func putMinHeap(h *minHeap) {
	*h = (*h)[:0]
	minHeapPool.Put(h)
}

func newMaxHeap() *maxHeap { return maxHeapPool.Get().(*maxHeap) }

func putMaxHeap(h *maxHeap) {
	*h = (*h)[:0]
	maxHeapPool.Put(h)
}
