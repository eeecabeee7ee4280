// Package mempool provides sized sync.Pool buffers for the scratch
// arrays the segmentation engine allocates and discards on every hot
// path: per-pixel feature/std-dev scratch during FirstMerge and the
// merge loop, and mask buffers during connected-component labelling.
package mempool

import (
	"sync"
)

var (
	float64Pools sync.Map // key: size class (int), value: *sync.Pool
	boolPools    sync.Map // key: size class (int), value: *sync.Pool
)

// sizeClass rounds n up to the next power-of-two-ish bucket to reduce churn.
func sizeClass(n int) int {
	if n <= 1024 {
		return 1024
	}
	// round up to next multiple of 1024
	const step = 1024
	r := (n + step - 1) / step
	return r * step
}

// GetFloat64 retrieves a []float64 buffer of at least n elements from the pool.
// The returned slice has length n but may have larger capacity.
// The caller must return it via PutFloat64 when done.
func GetFloat64(n int) []float64 {
	cls := sizeClass(n)
	pAny, _ := float64Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float64, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		// Fallback
		buf := make([]float64, cls)
		return buf[:n]
	}
	bufAny := p.Get()
	buf, ok := bufAny.([]float64)
	if !ok {
		buf = make([]float64, cls)
	}
	// Ensure buffer has adequate capacity and reset length to full capacity
	if cap(buf) < cls {
		buf = make([]float64, cls)
	} else {
		buf = buf[:cap(buf)]
	}
	for i := range buf[:n] {
		buf[i] = 0
	}
	return buf[:n]
}

// PutFloat64 returns a buffer to the pool. It is safe to pass a nil slice.
func PutFloat64(buf []float64) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := float64Pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]float64, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return // skip
	}
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}

// GetBool retrieves a []bool buffer of at least n elements from the pool.
// The returned slice has length n but may have larger capacity.
// The caller must return it via PutBool when done.
func GetBool(n int) []bool {
	cls := sizeClass(n)
	pAny, _ := boolPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]bool, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		// Fallback
		buf := make([]bool, cls)
		return buf[:n]
	}
	bufAny := p.Get()
	buf, ok := bufAny.([]bool)
	if !ok {
		buf = make([]bool, cls)
	}
	// Ensure buffer has adequate capacity and reset length to full capacity
	if cap(buf) < cls {
		buf = make([]bool, cls)
	} else {
		buf = buf[:cap(buf)]
	}
	// Zero out the buffer since bool pools are reused and we need clean state
	for i := range buf[:n] {
		buf[i] = false
	}
	return buf[:n]
}

// PutBool returns a buffer to the pool. It is safe to pass a nil slice.
func PutBool(buf []bool) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := boolPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]bool, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return // skip
	}
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}

// GetFloat64Multiple retrieves multiple float64 buffers with the specified sizes.
// This is more efficient than calling GetFloat64 multiple times.
func GetFloat64Multiple(sizes []int) [][]float64 {
	if len(sizes) == 0 {
		return nil
	}
	buffers := make([][]float64, len(sizes))
	for i, size := range sizes {
		buffers[i] = GetFloat64(size)
	}
	return buffers
}

// PutFloat64Multiple returns multiple buffers to the pool.
// It is safe to pass nil slices in the array.
func PutFloat64Multiple(bufs [][]float64) {
	for _, buf := range bufs {
		PutFloat64(buf)
	}
}
