package atomicmap

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// AtomicMap is a map guarded by a single mutex. Handlers use it for state
// that Send callbacks or background goroutines may touch.
type AtomicMap[K comparable, T any] struct {
	internal map[K]T
	mutex    sync.RWMutex
}

func NewAtomicMap[K comparable, T any]() *AtomicMap[K, T] {
	return &AtomicMap[K, T]{
		internal: map[K]T{},
	}
}

func (am *AtomicMap[K, T]) Delete(key K) {
	defer am.mutex.Unlock()
	am.mutex.Lock()

	delete(am.internal, key)
}

func (am *AtomicMap[K, T]) Get(key K) (T, bool) {
	defer am.mutex.RUnlock()
	am.mutex.RLock()

	v, found := am.internal[key]

	return v, found
}

func (am *AtomicMap[K, T]) Set(key K, val T) {
	defer am.mutex.Unlock()
	am.mutex.Lock()

	am.internal[key] = val
}

// SetIfAbsent stores val unless key is present and reports whether it stored.
func (am *AtomicMap[K, T]) SetIfAbsent(key K, val T) bool {
	defer am.mutex.Unlock()
	am.mutex.Lock()

	if _, found := am.internal[key]; found {
		return false
	}
	am.internal[key] = val

	return true
}

func (am *AtomicMap[K, T]) Len() int {
	defer am.mutex.RUnlock()
	am.mutex.RLock()

	return len(am.internal)
}

// Keys returns a snapshot of the keys in no particular order.
func (am *AtomicMap[K, T]) Keys() []K {
	defer am.mutex.RUnlock()
	am.mutex.RLock()

	keys := make([]K, 0, len(am.internal))
	return slices.AppendSeq(keys, maps.Keys(am.internal))
}

// All iterates over a snapshot, so the callback may write to the map.
func (am *AtomicMap[K, T]) All() iter.Seq2[K, T] {
	am.mutex.RLock()
	snapshot := maps.Clone(am.internal)
	am.mutex.RUnlock()

	return maps.All(snapshot)
}
