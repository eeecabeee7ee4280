// Package rheap implements the two indexed binary min-heaps the merge
// loop runs over (spec §4.D): nghbr_heap, keyed by each region's cached
// best-spatial-neighbor dissimilarity, and region_heap, keyed by its
// cached best-non-spatial dissimilarity. Both need back-index tracking
// (a region must know its own heap position so a single merge's ripple
// of key changes can be applied in O(log N) per touched region) and an
// arbitrary-position removal, neither of which container/heap exposes
// without awkward swap-to-end workarounds — hence the hand-rolled
// implementation, grounded on the same "indexed heap with back-pointers"
// shape the legacy nghbr_heap/region_heap pair uses.
package rheap

// Label is the region label type the heap orders. It mirrors
// region.RegionIdx without importing the region package, so rheap stays
// a leaf package any region-bearing structure can sit on top of.
type Label = uint32

// KeyFunc returns the current sort key (dissimilarity) for a label.
type KeyFunc func(Label) float64

// PosFunc is called whenever label's position in the heap changes (or it
// is removed, with pos == -1), so the caller can keep a back-index on
// the region itself in sync.
type PosFunc func(label Label, pos int)

// Heap is an indexed binary min-heap over region labels.
type Heap struct {
	items  []Label
	key    KeyFunc
	setPos PosFunc
}

// New creates an empty heap. key must return the current sort key for a
// label; setPos is invoked on every position change.
func New(key KeyFunc, setPos PosFunc) *Heap {
	return &Heap{key: key, setPos: setPos}
}

// Len returns the number of labels currently in the heap.
func (h *Heap) Len() int { return len(h.items) }

// Top returns the minimum-key label without removing it, and whether the
// heap is non-empty.
func (h *Heap) Top() (Label, bool) {
	if len(h.items) == 0 {
		return 0, false
	}
	return h.items[0], true
}

func (h *Heap) less(i, j int) bool {
	ki, kj := h.key(h.items[i]), h.key(h.items[j])
	if ki != kj {
		return ki < kj
	}
	return h.items[i] < h.items[j] // deterministic tie-break by label
}

func (h *Heap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.setPos(h.items[i], i)
	h.setPos(h.items[j], j)
}

// Build initializes the heap from items in O(N).
func (h *Heap) Build(items []Label) {
	h.items = append([]Label(nil), items...)
	for i, l := range h.items {
		h.setPos(l, i)
	}
	for i := len(h.items)/2 - 1; i >= 0; i-- {
		h.downHeap(i)
	}
}

// Push inserts label into the heap.
func (h *Heap) Push(label Label) {
	h.items = append(h.items, label)
	pos := len(h.items) - 1
	h.setPos(label, pos)
	h.upHeap(pos)
}

// Pop removes and returns the minimum-key label.
func (h *Heap) Pop() (Label, bool) {
	if len(h.items) == 0 {
		return 0, false
	}
	top := h.items[0]
	last := len(h.items) - 1
	h.swap(0, last)
	h.setPos(h.items[last], -1)
	h.items = h.items[:last]
	if last > 0 {
		h.downHeap(0)
	}
	return top, true
}

// RemoveAt removes the label currently at position pos (e.g. because its
// key changed and it no longer belongs in the heap, or it was merged
// away). pos must be a valid, current position (the caller gets this
// from the region's *_heap_index back-pointer).
func (h *Heap) RemoveAt(pos int) {
	last := len(h.items) - 1
	if pos < 0 || pos > last {
		return
	}
	if pos != last {
		h.swap(pos, last)
	}
	h.setPos(h.items[last], -1)
	h.items = h.items[:last]
	if pos < len(h.items) {
		h.downHeap(pos)
		h.upHeap(pos)
	}
}

// Fix restores heap order after the key of the label at pos has changed
// in place (instead of removing and re-inserting it).
func (h *Heap) Fix(pos int) {
	if pos < 0 || pos >= len(h.items) {
		return
	}
	if !h.downHeap(pos) {
		h.upHeap(pos)
	}
}

func (h *Heap) upHeap(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

// downHeap restores order below i, returning true if any swap happened.
func (h *Heap) downHeap(i int) bool {
	moved := false
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
		moved = true
	}
	return moved
}

// CheckInvariant walks the heap verifying parent-child ordering. It is a
// debug-only correctness check (spec §4.D), never called on a hot path.
func (h *Heap) CheckInvariant() bool {
	for i := range h.items {
		left, right := 2*i+1, 2*i+2
		if left < len(h.items) && h.less(left, i) {
			return false
		}
		if right < len(h.items) && h.less(right, i) {
			return false
		}
	}
	return true
}

// Items returns the heap's current backing slice. Callers must not
// mutate it; it is exposed read-only for iteration (e.g. collecting
// region_heap's membership as a best_region_init candidate set).
func (h *Heap) Items() []Label {
	return h.items
}
