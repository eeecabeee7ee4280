package mempool

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{
			name:     "small size gets minimum",
			input:    1,
			expected: 1024,
		},
		{
			name:     "exactly 1024",
			input:    1024,
			expected: 1024,
		},
		{
			name:     "just over 1024",
			input:    1025,
			expected: 2048,
		},
		{
			name:     "exact multiple of 1024",
			input:    2048,
			expected: 2048,
		},
		{
			name:     "odd number",
			input:    1500,
			expected: 2048,
		},
		{
			name:     "large size",
			input:    10000,
			expected: 10240,
		},
		{
			name:     "zero size",
			input:    0,
			expected: 1024,
		},
		{
			name:     "negative size",
			input:    -1,
			expected: 1024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sizeClass(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetFloat64_BasicFunctionality(t *testing.T) {
	tests := []struct {
		name        string
		requestSize int
		expectedLen int
		minCap      int
	}{
		{
			name:        "small buffer",
			requestSize: 100,
			expectedLen: 100,
			minCap:      100,
		},
		{
			name:        "exactly 1024",
			requestSize: 1024,
			expectedLen: 1024,
			minCap:      1024,
		},
		{
			name:        "large buffer",
			requestSize: 5000,
			expectedLen: 5000,
			minCap:      5000,
		},
		{
			name:        "zero size",
			requestSize: 0,
			expectedLen: 0,
			minCap:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := GetFloat64(tt.requestSize)

			assert.Len(t, buf, tt.expectedLen)
			assert.GreaterOrEqual(t, cap(buf), tt.minCap)

			if len(buf) > 0 {
				buf[0] = 42.0
				assert.InDelta(t, 42.0, buf[0], 0.0001)
			}
		})
	}
}

func TestGetFloat64_ZeroesBuffer(t *testing.T) {
	size := 64
	buf := GetFloat64(size)
	for i := range buf {
		buf[i] = float64(i + 1)
	}
	PutFloat64(buf)

	// A freshly retrieved buffer of the same class must come back clean,
	// since region-statistics accumulators rely on starting from zero.
	again := GetFloat64(size)
	for i, v := range again {
		assert.Zerof(t, v, "index %d not zeroed", i)
	}
}

func TestPutFloat64_BasicFunctionality(t *testing.T) {
	t.Run("put valid buffer", func(t *testing.T) {
		buf := GetFloat64(1000)
		require.NotNil(t, buf)

		PutFloat64(buf)
	})

	t.Run("put nil buffer", func(t *testing.T) {
		PutFloat64(nil)
	})

	t.Run("put empty buffer", func(t *testing.T) {
		buf := make([]float64, 0)
		PutFloat64(buf)
	})
}

func TestMemoryPoolReuse(t *testing.T) {
	size := 2000

	buf1 := GetFloat64(size)
	require.Len(t, buf1, size)

	for i := range buf1 {
		buf1[i] = float64(i)
	}

	PutFloat64(buf1)

	buf2 := GetFloat64(size)
	require.Len(t, buf2, size)

	// The buffers might be the same (reused) or different (new allocation).
	// Both are valid behaviors for a pool.
	assert.GreaterOrEqual(t, cap(buf2), size)
}

func TestConcurrentAccess(t *testing.T) {
	const numGoroutines = 100
	const numIterations = 100
	const bufferSize = 1500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()

			for range numIterations {
				buf := GetFloat64(bufferSize)
				assert.Len(t, buf, bufferSize)
				assert.GreaterOrEqual(t, cap(buf), bufferSize)

				for k := 0; k < len(buf); k++ {
					buf[k] = float64(k)
				}

				PutFloat64(buf)
			}
		}()
	}

	wg.Wait()
}

func TestDifferentSizeClasses(t *testing.T) {
	sizes := []int{100, 1500, 3000, 10000}
	buffers := make([][]float64, len(sizes))

	for i, size := range sizes {
		buffers[i] = GetFloat64(size)
		assert.Len(t, buffers[i], size)

		for j := range buffers[i] {
			buffers[i][j] = float64(i*1000 + j)
		}
	}

	for _, buf := range buffers {
		PutFloat64(buf)
	}

	for _, size := range sizes {
		newBuf := GetFloat64(size)
		assert.Len(t, newBuf, size)
	}
}

func TestSizeClassBoundaries(t *testing.T) {
	testCases := []struct {
		size          int
		expectedClass int
	}{
		{1023, 1024},
		{1024, 1024},
		{1025, 2048},
		{2047, 2048},
		{2048, 2048},
		{2049, 3072},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("size_%d", tc.size), func(t *testing.T) {
			buf := GetFloat64(tc.size)
			assert.Len(t, buf, tc.size)
			expectedCap := sizeClass(tc.size)
			assert.GreaterOrEqual(t, cap(buf), expectedCap)
			PutFloat64(buf)
		})
	}
}

func TestPoolGrowth(t *testing.T) {
	const maxSize = 10000
	var buffers [][]float64

	for size := 1000; size <= maxSize; size += 1000 {
		buf := GetFloat64(size)
		assert.Len(t, buf, size)
		buffers = append(buffers, buf)
	}

	for _, buf := range buffers {
		PutFloat64(buf)
	}

	for size := 1000; size <= maxSize; size += 1000 {
		buf := GetFloat64(size)
		assert.Len(t, buf, size)
		PutFloat64(buf)
	}
}

func TestMemoryBehavior(t *testing.T) {
	const iterations = 1000
	const bufferSize = 5000

	runtime.GC()
	var m1 runtime.MemStats
	runtime.ReadMemStats(&m1)

	for range iterations {
		buf := GetFloat64(bufferSize)

		for j := 0; j < len(buf); j++ {
			buf[j] = float64(j)
		}

		PutFloat64(buf)
	}

	runtime.GC()
	var m2 runtime.MemStats
	runtime.ReadMemStats(&m2)

	t.Logf("Memory before: %d bytes, after: %d bytes", m1.Alloc, m2.Alloc)
}

func TestEdgeCases(t *testing.T) {
	t.Run("very large buffer", func(t *testing.T) {
		size := 1000000
		buf := GetFloat64(size)
		assert.Len(t, buf, size)
		assert.GreaterOrEqual(t, cap(buf), size)
		PutFloat64(buf)
	})

	t.Run("buffer capacity vs length", func(t *testing.T) {
		buf := GetFloat64(100)
		originalCap := cap(buf)

		if originalCap > 100 {
			extended := buf[:originalCap]
			PutFloat64(extended)
		}

		PutFloat64(buf)
	})

	t.Run("repeated get/put cycles", func(t *testing.T) {
		size := 2000
		for range 100 {
			buf := GetFloat64(size)
			assert.Len(t, buf, size)
			PutFloat64(buf)
		}
	})
}

func BenchmarkGetFloat64_Small(b *testing.B) {
	for range b.N {
		buf := GetFloat64(100)
		PutFloat64(buf)
	}
}

func BenchmarkGetFloat64_Medium(b *testing.B) {
	for range b.N {
		buf := GetFloat64(2000)
		PutFloat64(buf)
	}
}

func BenchmarkGetFloat64_Large(b *testing.B) {
	for range b.N {
		buf := GetFloat64(10000)
		PutFloat64(buf)
	}
}

func BenchmarkDirectAllocation_Medium(b *testing.B) {
	for range b.N {
		_ = make([]float64, 2000)
	}
}

func BenchmarkConcurrentAccess(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := GetFloat64(1500)
			for i := range buf {
				buf[i] = float64(i)
			}
			PutFloat64(buf)
		}
	})
}

func BenchmarkSizeClass(b *testing.B) {
	sizes := []int{100, 1024, 1500, 5000, 10000}

	for range b.N {
		for _, size := range sizes {
			_ = sizeClass(size)
		}
	}
}
