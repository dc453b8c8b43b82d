package arena

import (
	"context"
	"errors"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcquirer struct {
	mu     sync.Mutex
	limit  int64
	used   int64
	denied int
}

func (f *fakeAcquirer) AcquireMemory(_ context.Context, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limit > 0 && f.used+amount > f.limit {
		f.denied++
		return errors.New("budget exhausted")
	}
	f.used += amount
	return nil
}

func (f *fakeAcquirer) ReleaseMemory(amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.used -= amount
}

func TestArena_New(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		a := New()
		defer a.Free()

		assert.Equal(t, DefaultChunkSize, a.chunkSize)
		assert.Equal(t, DefaultMaxAllocSize, a.MaxAllocSize())
		assert.Equal(t, uint64(0), a.Stats().ActiveChunks, "chunks are acquired lazily")
	})

	t.Run("custom sizes", func(t *testing.T) {
		a := New(WithChunkSize(4096), WithMaxAllocSize(128))
		defer a.Free()

		assert.Equal(t, 4096, a.chunkSize)
		assert.Equal(t, 128, a.MaxAllocSize())
	})
}

func TestArena_Alloc(t *testing.T) {
	t.Run("basic allocation", func(t *testing.T) {
		a := New(WithChunkSize(1024))
		defer a.Free()

		b, err := a.Alloc(100)
		require.NoError(t, err)
		assert.Len(t, b, 100)
		assert.Equal(t, 100, cap(b))
		for i, v := range b {
			if v != 0 {
				t.Fatalf("byte %d not zero", i)
			}
		}
	})

	t.Run("zero size", func(t *testing.T) {
		a := New()
		defer a.Free()

		b, err := a.Alloc(0)
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("negative size", func(t *testing.T) {
		a := New()
		defer a.Free()

		b, err := a.Alloc(-1)
		assert.ErrorIs(t, err, ErrInvalidSize)
		assert.Nil(t, b)
		assert.Zero(t, a.Stats().TotalAllocs)
	})

	t.Run("alignment", func(t *testing.T) {
		a := New(WithChunkSize(1024))
		defer a.Free()

		for _, size := range []int{1, 3, 5, 7, 9, 15, 17} {
			b, err := a.Alloc(size)
			require.NoError(t, err)
			ptr := uintptr(unsafe.Pointer(&b[0]))
			assert.Zero(t, ptr%DefaultAlignment, "size=%d not aligned", size)
		}
	})

	t.Run("allocations do not overlap", func(t *testing.T) {
		a := New(WithChunkSize(64))
		defer a.Free()

		first, err := a.Alloc(8)
		require.NoError(t, err)
		second, err := a.Alloc(8)
		require.NoError(t, err)
		copy(first, "aaaaaaaa")
		copy(second, "bbbbbbbb")
		assert.Equal(t, "aaaaaaaa", string(first))
	})

	t.Run("new chunk when full", func(t *testing.T) {
		a := New(WithChunkSize(64))
		defer a.Free()

		for i := 0; i < 9; i++ {
			_, err := a.Alloc(8)
			require.NoError(t, err)
		}
		assert.Equal(t, uint64(2), a.Stats().ActiveChunks)
	})

	t.Run("oversized request gets dedicated chunk", func(t *testing.T) {
		a := New(WithChunkSize(64))
		defer a.Free()

		_, err := a.Alloc(8)
		require.NoError(t, err)
		big, err := a.Alloc(500)
		require.NoError(t, err)
		assert.Len(t, big, 500)

		stats := a.Stats()
		assert.Equal(t, uint64(2), stats.ActiveChunks)
		assert.Equal(t, uint64(64+504), stats.BytesReserved)
	})
}

func TestArena_Ceiling(t *testing.T) {
	a := New(WithMaxAllocSize(256))
	defer a.Free()

	_, err := a.Alloc(257)
	require.ErrorIs(t, err, ErrAllocTooLarge)

	b, err := a.Alloc(256)
	require.NoError(t, err)
	assert.Len(t, b, 256)
}

func TestArena_AllocString(t *testing.T) {
	a := New()
	defer a.Free()

	s, err := a.AllocString("cats")
	require.NoError(t, err)
	assert.Equal(t, "cats", s)

	empty, err := a.AllocString("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestArena_Acquirer(t *testing.T) {
	acq := &fakeAcquirer{limit: 128}
	a := New(WithChunkSize(64), WithMemoryAcquirer(acq))

	_, err := a.Alloc(64)
	require.NoError(t, err)
	_, err = a.Alloc(64)
	require.NoError(t, err)
	assert.Equal(t, int64(128), acq.used)

	_, err = a.Alloc(8)
	require.Error(t, err)
	assert.Equal(t, 1, acq.denied)

	a.Free()
	assert.Equal(t, int64(0), acq.used)
}

func TestArena_Free(t *testing.T) {
	a := New()
	_, err := a.Alloc(32)
	require.NoError(t, err)

	a.Free()
	assert.True(t, a.Closed())
	assert.Equal(t, Stats{TotalAllocs: 1}, a.Stats())

	_, err = a.Alloc(32)
	require.ErrorIs(t, err, ErrClosed)

	// second Free is a no-op
	a.Free()
}

func TestArena_Concurrent(t *testing.T) {
	a := New(WithChunkSize(256))
	defer a.Free()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b, err := a.Alloc(16)
				if err != nil {
					t.Error(err)
					return
				}
				b[0] = 1
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(800), a.Stats().TotalAllocs)
}

func TestArena_String(t *testing.T) {
	a := New()
	defer a.Free()
	assert.Contains(t, a.String(), "Arena{chunks: 0")
}
