package autoid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDAllocator(t *testing.T) {
	t.Parallel()

	a := NewIDAllocator(0)
	require.Equal(t, int64(1), a.AllocID())
	require.Equal(t, int64(2), a.AllocID())

	a.Observe(10)
	require.Equal(t, int64(11), a.AllocID())
	// observing a smaller id changes nothing
	a.Observe(3)
	require.Equal(t, int64(12), a.AllocID())

	scoped := NewIDAllocator(2)
	require.Equal(t, int64(2<<32+1), scoped.AllocID())
}

func TestIDAllocatorConcurrent(t *testing.T) {
	t.Parallel()

	a := NewIDAllocator(1)
	var (
		mu  sync.Mutex
		ids = make(map[int64]struct{})
		wg  sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := a.AllocID()
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, ids, 800)
}

func TestUUIDAllocator(t *testing.T) {
	t.Parallel()

	a := NewUUIDAllocator()
	require.NotEqual(t, a.AllocID(), a.AllocID())
}
