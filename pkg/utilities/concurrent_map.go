/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package utilities

import "sync"

type ConcurrentMap[K comparable, V any] struct {
	mutex sync.Mutex

	values map[K]V
}

func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{
		values: map[K]V{},
	}
}

func (cmap *ConcurrentMap[K, V]) Get(key K) (V, bool) {
	cmap.mutex.Lock()
	defer cmap.mutex.Unlock()

	value, found := cmap.values[key]
	return value, found
}

func (cmap *ConcurrentMap[K, V]) Set(key K, value V) {
	cmap.mutex.Lock()
	defer cmap.mutex.Unlock()

	cmap.values[key] = value
}

func (cmap *ConcurrentMap[K, V]) Len() int {
	cmap.mutex.Lock()
	defer cmap.mutex.Unlock()

	return len(cmap.values)
}

// Snapshot returns a copy that is safe to read without the lock.
func (cmap *ConcurrentMap[K, V]) Snapshot() map[K]V {
	cmap.mutex.Lock()
	defer cmap.mutex.Unlock()

	snapshot := make(map[K]V, len(cmap.values))
	for key, value := range cmap.values {
		snapshot[key] = value
	}

	return snapshot
}
