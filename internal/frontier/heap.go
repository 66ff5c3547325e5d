package frontier

import "container/heap"

// itemHeap is the container/heap-backed priority queue replacing the
// teacher's FIFOQueue: the teacher only needed BFS order, this spec needs
// the sort_key total order of §4.5, which a FIFO cannot express at all.
type itemHeap []*Item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	ki, kj := h[i].sortKey(), h[j].sortKey()
	if ki != kj {
		return ki < kj
	}
	if h[i].Depth != h[j].Depth {
		return h[i].Depth < h[j].Depth
	}
	return h[i].EnqueueTime.Before(h[j].EnqueueTime)
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(*Item))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*itemHeap)(nil)
