package resource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	ctx := context.Background()

	require.NoError(t, c.AcquireMemory(ctx, 50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(ctx, 40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// fail-fast, no blocking
	err := c.AcquireMemory(ctx, 20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.False(t, c.TryAcquireMemory(20))

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(ctx, 20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_MemoryCanceledContext(t *testing.T) {
	c := NewController(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.AcquireMemory(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	require.NoError(t, c.AcquireMemory(context.Background(), 1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_ParseSlots(t *testing.T) {
	c := NewController(Config{MaxConcurrentParses: 2})
	assert.Equal(t, int64(2), c.Config().MaxConcurrentParses)

	require.NoError(t, c.AcquireParse(context.Background()))
	require.NoError(t, c.AcquireParse(context.Background()))
	assert.False(t, c.TryAcquireParse())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireParse(ctx), context.DeadlineExceeded)

	c.ReleaseParse()
	assert.True(t, c.TryAcquireParse())
}

func TestController_DefaultParseSlots(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, int64(1), c.Config().MaxConcurrentParses)
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(context.Background(), 10))
	assert.True(t, c.TryAcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.NoError(t, c.AcquireParse(context.Background()))
	assert.True(t, c.TryAcquireParse())
	c.ReleaseParse()
	assert.NoError(t, c.AcquireIO(context.Background(), 10))
	assert.Equal(t, Config{}, c.Config())
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	src := strings.Repeat("x", 4096)

	r := NewRateLimitedReader(context.Background(), strings.NewReader(src), c)
	var out bytes.Buffer
	n, err := io.Copy(&out, r)
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
}

func TestRateLimitedReader_Throttles(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 2000})
	assert.Equal(t, 2000, c.IOBurst())

	src := strings.Repeat("x", 4000)
	r := NewRateLimitedReader(context.Background(), strings.NewReader(src), c)

	buf := make([]byte, 4096)
	start := time.Now()
	var total int
	for {
		n, err := r.Read(buf)
		assert.LessOrEqual(t, n, 2000)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, len(src), total)
	// The first burst is free, the second waits about a second.
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
}

func TestController_IOBurstUnlimited(t *testing.T) {
	assert.Zero(t, NewController(Config{}).IOBurst())
	var c *Controller
	assert.Zero(t, c.IOBurst())
}

func TestRateLimitedReader_Canceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRateLimitedReader(ctx, strings.NewReader("payload"), c)
	_, err := r.Read(make([]byte, 4))
	assert.Error(t, err)
}
