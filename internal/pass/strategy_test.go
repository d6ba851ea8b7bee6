package pass

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSequential_OrderAndExclusivity(t *testing.T) {
	var (
		mu       sync.Mutex
		order    []string
		inFlight int32
		maxSeen  int32
	)
	Sequential{}.Run(context.Background(), []string{"A", "B", "C"}, func(_ context.Context, s string) {
		n := atomic.AddInt32(&inFlight, 1)
		if n > atomic.LoadInt32(&maxSeen) {
			atomic.StoreInt32(&maxSeen, n)
		}
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
		atomic.AddInt32(&inFlight, -1)
	})

	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Equal(t, int32(1), maxSeen)
}

func TestBounded_RespectsLimit(t *testing.T) {
	var inFlight, maxSeen, calls int32
	var mu sync.Mutex
	Bounded{Limit: 2}.Run(context.Background(), []string{"A", "B", "C", "D", "E"}, func(_ context.Context, s string) {
		n := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if n > maxSeen {
			maxSeen = n
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&calls, 1)
	})

	assert.Equal(t, int32(5), calls)
	assert.LessOrEqual(t, maxSeen, int32(2))
}

func TestNew(t *testing.T) {
	assert.Equal(t, "sequential", New("sequential", 4).Name())
	assert.Equal(t, "bounded", New("bounded", 4).Name())
	assert.Equal(t, "sequential", New("", 0).Name())
}
