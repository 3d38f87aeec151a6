package atomicmap

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicMapBasics(t *testing.T) {
	am := NewAtomicMap[string, int]()

	_, found := am.Get("a")
	assert.False(t, found)

	am.Set("a", 1)
	v, found := am.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, v)

	assert.False(t, am.SetIfAbsent("a", 2))
	assert.True(t, am.SetIfAbsent("b", 3))
	assert.Equal(t, 2, am.Len())

	keys := am.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)

	am.Delete("a")
	assert.Equal(t, 1, am.Len())
}

func TestAtomicMapAllAllowsWrites(t *testing.T) {
	am := NewAtomicMap[int, int]()
	for i := range 5 {
		am.Set(i, i*i)
	}

	sum := 0
	for k, v := range am.All() {
		sum += v
		am.Delete(k)
	}

	assert.Equal(t, 30, sum)
	assert.Zero(t, am.Len())
}

func TestAtomicMapConcurrentSetIfAbsent(t *testing.T) {
	am := NewAtomicMap[int, struct{}]()

	var wg sync.WaitGroup
	var mu sync.Mutex
	stored := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				if am.SetIfAbsent(i, struct{}{}) {
					mu.Lock()
					stored++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, stored)
	assert.Equal(t, 100, am.Len())
}
