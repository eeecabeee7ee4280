package rheap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScratchHeap(keys map[Label]float64, pos map[Label]int) *Heap {
	return New(
		func(l Label) float64 { return keys[l] },
		func(l Label, p int) { pos[l] = p },
	)
}

func TestBuildAndPopAscending(t *testing.T) {
	keys := map[Label]float64{1: 5, 2: 1, 3: 3, 4: 1, 5: 2}
	pos := map[Label]int{}
	h := newScratchHeap(keys, pos)
	h.Build([]Label{1, 2, 3, 4, 5})
	require.True(t, h.CheckInvariant())

	var order []Label
	for h.Len() > 0 {
		top, ok := h.Pop()
		require.True(t, ok)
		order = append(order, top)
		assert.True(t, h.CheckInvariant())
	}
	assert.Equal(t, []Label{2, 4, 5, 3, 1}, order) // ties broken by label ascending
}

func TestRemoveAtArbitraryPosition(t *testing.T) {
	keys := map[Label]float64{1: 5, 2: 1, 3: 3, 4: 4, 5: 2}
	pos := map[Label]int{}
	h := newScratchHeap(keys, pos)
	h.Build([]Label{1, 2, 3, 4, 5})

	removeLabel := Label(3)
	h.RemoveAt(pos[removeLabel])
	assert.True(t, h.CheckInvariant())
	assert.Equal(t, 4, h.Len())
	for _, l := range h.Items() {
		assert.NotEqual(t, removeLabel, l)
	}
}

func TestFixAfterKeyDecrease(t *testing.T) {
	keys := map[Label]float64{1: 5, 2: 4, 3: 3, 4: 2, 5: 1}
	pos := map[Label]int{}
	h := newScratchHeap(keys, pos)
	h.Build([]Label{1, 2, 3, 4, 5})

	keys[1] = 0 // now the minimum
	h.Fix(pos[1])
	top, ok := h.Top()
	require.True(t, ok)
	assert.Equal(t, Label(1), top)
	assert.True(t, h.CheckInvariant())
}

func TestRandomizedHeapPropertyHolds(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	keys := map[Label]float64{}
	pos := map[Label]int{}
	h := newScratchHeap(keys, pos)
	var items []Label
	for i := Label(1); i <= 200; i++ {
		keys[i] = r.Float64() * 1000
		items = append(items, i)
	}
	h.Build(items)
	assert.True(t, h.CheckInvariant())

	for i := 0; i < 50; i++ {
		l := items[r.Intn(len(items))]
		if p, ok := pos[l]; ok {
			keys[l] = r.Float64() * 1000
			h.Fix(p)
		}
		assert.True(t, h.CheckInvariant())
	}
}
