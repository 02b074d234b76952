package store

// EphemeralIndex maps session id to the set of absolute node paths that
// session's ephemeral nodes live at. It is the leaf-only lock in the
// store's lock hierarchy (spec.md §5): nothing else is held while this
// index is touched.
type EphemeralIndex struct {
	m *orderedMap[int64, *orderedMap[string, struct{}]]
}

// NewEphemeralIndex returns an empty ephemeral index.
func NewEphemeralIndex() *EphemeralIndex {
	return &EphemeralIndex{m: newOrderedMap[int64, *orderedMap[string, struct{}]]()}
}

// Add records that session owns an ephemeral node at path.
func (e *EphemeralIndex) Add(session int64, path string) {
	paths, ok := e.m.get(session)
	if !ok {
		paths = newOrderedMap[string, struct{}]()
		e.m.set(session, paths)
	}
	paths.set(path, struct{}{})
}

// Remove forgets that session owns an ephemeral node at path.
func (e *EphemeralIndex) Remove(session int64, path string) {
	paths, ok := e.m.get(session)
	if !ok {
		return
	}
	paths.delete(path)
}

// Paths returns the paths owned by session, in the order they were
// added.
func (e *EphemeralIndex) Paths(session int64) []string {
	paths, ok := e.m.get(session)
	if !ok {
		return nil
	}
	var out []string
	paths.forEach(func(p string, _ struct{}) {
		out = append(out, p)
	})
	return out
}

// RemoveSession drops every ephemeral node owned by session.
func (e *EphemeralIndex) RemoveSession(session int64) {
	e.m.delete(session)
}

// Len reports the number of sessions with at least one ephemeral node.
func (e *EphemeralIndex) Len() int {
	return e.m.len()
}

// ForEach iterates sessions with ephemeral nodes in insertion order,
// calling fn with each session's path list. It holds the index's lock
// for the whole call.
func (e *EphemeralIndex) ForEach(fn func(session int64, paths []string)) {
	e.m.forEach(func(session int64, paths *orderedMap[string, struct{}]) {
		var list []string
		paths.forEach(func(p string, _ struct{}) {
			list = append(list, p)
		})
		fn(session, list)
	})
}
