package mapengine

// memo caches one derived artifact against the identity of its declared
// inputs, collapsed into a key string. The compute function runs only when
// the key differs from the cached one; unrelated state changes reuse the
// cached value.
type memo[T any] struct {
	key   string
	valid bool
	value T
}

func (m *memo[T]) get(key string, compute func() T) T {
	if m.valid && m.key == key {
		return m.value
	}
	m.value = compute()
	m.key = key
	m.valid = true
	return m.value
}

func (m *memo[T]) invalidate() { m.valid = false }
