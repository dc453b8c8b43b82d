package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrAllocTooLarge is returned when a single request exceeds the per-call ceiling.
	ErrAllocTooLarge = errors.New("arena: allocation exceeds per-call limit")
	// ErrMaxChunksExceeded is returned when the arena exceeds the maximum number of chunks.
	ErrMaxChunksExceeded = errors.New("arena: max chunks exceeded")
	// ErrClosed is returned when allocating from a freed arena.
	ErrClosed = errors.New("arena: closed")
	// ErrInvalidSize is returned for a negative allocation size.
	ErrInvalidSize = errors.New("arena: negative allocation size")
)

const (
	// DefaultChunkSize is the default size of a chunk (16 KiB).
	DefaultChunkSize = 16 * 1024
	// DefaultMaxAllocSize is the default per-call ceiling (1 MiB).
	DefaultMaxAllocSize = 1024 * 1024
	// DefaultAlignment is the default memory alignment (8 bytes).
	DefaultAlignment = 8
	// MaxChunks limits the number of chunks a single arena may hold.
	MaxChunks = 4096
)

// Stats tracks arena memory usage metrics.
//
//   - BytesReserved: memory currently held in chunks
//   - BytesUsed: bytes requested by allocations (before alignment)
//   - BytesWasted: padding added for alignment
//   - ActiveChunks: number of chunks currently held
//   - TotalAllocs: cumulative allocation count
type Stats struct {
	BytesReserved uint64
	BytesUsed     uint64
	BytesWasted   uint64
	ActiveChunks  uint64
	TotalAllocs   uint64
}

type chunk struct {
	data   []byte
	offset int
}

// Arena is a region allocator. It is safe for concurrent use.
type Arena struct {
	mu        sync.Mutex
	chunkSize int
	maxAlloc  int
	alignment int
	chunks    []*chunk
	current   *chunk
	stats     Stats
	acquirer  MemoryAcquirer
	closed    bool
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithChunkSize sets the chunk size. Values <= 0 select DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(a *Arena) {
		if size > 0 {
			a.chunkSize = size
		}
	}
}

// WithMaxAllocSize sets the per-call ceiling. Values <= 0 select DefaultMaxAllocSize.
func WithMaxAllocSize(size int) Option {
	return func(a *Arena) {
		if size > 0 {
			a.maxAlloc = size
		}
	}
}

// New creates a new Arena. No memory is reserved until the first allocation.
func New(opts ...Option) *Arena {
	a := &Arena{
		chunkSize: DefaultChunkSize,
		maxAlloc:  DefaultMaxAllocSize,
		alignment: DefaultAlignment,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxAllocSize returns the per-call ceiling.
func (a *Arena) MaxAllocSize() int {
	return a.maxAlloc
}

// Alloc allocates size zeroed bytes.
func (a *Arena) Alloc(size int) ([]byte, error) {
	return a.AllocContext(context.Background(), size)
}

// AllocContext allocates size zeroed bytes with a context passed to the acquirer.
func (a *Arena) AllocContext(ctx context.Context, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return nil, nil
	}
	if size > a.maxAlloc {
		return nil, fmt.Errorf("%w: %d > %d", ErrAllocTooLarge, size, a.maxAlloc)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	mask := a.alignment - 1
	alignedSize := (size + mask) &^ mask

	if alignedSize > a.chunkSize {
		// Oversized requests get their own chunk so the current one keeps its tail.
		c, err := a.newChunkLocked(ctx, alignedSize)
		if err != nil {
			return nil, err
		}
		return a.carveLocked(c, size, alignedSize), nil
	}

	if a.current == nil || a.current.offset+alignedSize > len(a.current.data) {
		c, err := a.newChunkLocked(ctx, a.chunkSize)
		if err != nil {
			return nil, err
		}
		a.current = c
	}
	return a.carveLocked(a.current, size, alignedSize), nil
}

func (a *Arena) newChunkLocked(ctx context.Context, size int) (*chunk, error) {
	if len(a.chunks) >= MaxChunks {
		return nil, ErrMaxChunksExceeded
	}
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(ctx, int64(size)); err != nil {
			return nil, err
		}
	}
	c := &chunk{data: make([]byte, size)}
	a.chunks = append(a.chunks, c)
	a.stats.BytesReserved += uint64(size)
	a.stats.ActiveChunks++
	return c, nil
}

func (a *Arena) carveLocked(c *chunk, size, alignedSize int) []byte {
	start := c.offset
	c.offset += alignedSize
	a.stats.BytesUsed += uint64(size)
	a.stats.BytesWasted += uint64(alignedSize - size)
	a.stats.TotalAllocs++
	return c.data[start : start+size : start+size]
}

// AllocString copies s into the arena and returns a string backed by arena memory.
func (a *Arena) AllocString(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	b, err := a.Alloc(len(s))
	if err != nil {
		return "", err
	}
	copy(b, s)
	return unsafe.String(&b[0], len(b)), nil //nolint:gosec // arena-backed string, valid until Free
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Closed reports whether Free has been called.
func (a *Arena) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Free releases all arena memory. It is safe to call more than once.
//
// After Free, every slice handed out by the arena is invalid and further
// allocations fail with ErrClosed.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true

	if a.acquirer != nil && a.stats.BytesReserved > 0 {
		a.acquirer.ReleaseMemory(int64(a.stats.BytesReserved))
	}

	for i := range a.chunks {
		a.chunks[i] = nil
	}
	a.chunks = nil
	a.current = nil

	a.stats.ActiveChunks = 0
	a.stats.BytesReserved = 0
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0
}

// Usage returns the memory usage percentage.
func (a *Arena) Usage() float64 {
	stats := a.Stats()
	if stats.BytesReserved == 0 {
		return 0
	}
	return float64(stats.BytesUsed) / float64(stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, reserved: %.2f KB, used: %.2f KB, wasted: %d B, usage: %.1f%%, allocs: %d}",
		stats.ActiveChunks,
		float64(stats.BytesReserved)/1024,
		float64(stats.BytesUsed)/1024,
		stats.BytesWasted,
		a.Usage(),
		stats.TotalAllocs,
	)
}
