package store

// GenericMap is the shared shape behind StringMap and IntMap: a plain
// string-keyed map to an arbitrary value type, used for ad hoc
// configuration-style key/value state that doesn't warrant its own
// domain type.
type GenericMap[V any] struct {
	m *orderedMap[string, V]
}

// NewGenericMap returns an empty generic map.
func NewGenericMap[V any]() *GenericMap[V] {
	return &GenericMap[V]{m: newOrderedMap[string, V]()}
}

// Set stores value under key.
func (g *GenericMap[V]) Set(key string, value V) {
	g.m.set(key, value)
}

// Get returns the value stored under key, if present.
func (g *GenericMap[V]) Get(key string) (V, bool) {
	return g.m.get(key)
}

// Delete removes key.
func (g *GenericMap[V]) Delete(key string) {
	g.m.delete(key)
}

// Len reports the number of keys.
func (g *GenericMap[V]) Len() int {
	return g.m.len()
}

// ForEach iterates the map in insertion order under a read lock held for
// the whole call.
func (g *GenericMap[V]) ForEach(fn func(key string, value V)) {
	g.m.forEach(fn)
}
