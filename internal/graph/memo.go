package graph

import (
	"minipack/internal/module"
)

// memo remembers which identity each canonical location was built as.
// The claim phase is single-threaded, so no locking.
type memo struct {
	byKey map[string]module.ID
}

func newMemo(capHint int) *memo {
	return &memo{byKey: make(map[string]module.ID, capHint)}
}

func (m *memo) get(key string) (module.ID, bool) {
	id, ok := m.byKey[key]
	return id, ok
}

func (m *memo) put(key string, id module.ID) {
	if _, ok := m.byKey[key]; !ok {
		m.byKey[key] = id
	}
}
