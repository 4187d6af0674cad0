package dashboard

import (
	"slices"
	"sync"
)

// SelectionModel is the ordered set of selected product ids. The first id is the active one.
type SelectionModel struct {
	mu  sync.RWMutex
	ids []int64
}

func NewSelectionModel() *SelectionModel {
	return &SelectionModel{}
}

// SetSelection replaces the selection. Order is kept and duplicates are dropped.
func (m *SelectionModel) SetSelection(ids []int64) {
	deduped := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(deduped, id) {
			deduped = append(deduped, id)
		}
	}
	m.mu.Lock()
	m.ids = deduped
	m.mu.Unlock()
}

// Toggle adds id to the end of the selection, or removes it if already selected.
func (m *SelectionModel) Toggle(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.Index(m.ids, id); i >= 0 {
		m.ids = slices.Delete(m.ids, i, i+1)
		return
	}
	m.ids = append(m.ids, id)
}

// Remove drops id from the selection if present.
func (m *SelectionModel) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.Index(m.ids, id); i >= 0 {
		m.ids = slices.Delete(m.ids, i, i+1)
	}
}

func (m *SelectionModel) Clear() {
	m.mu.Lock()
	m.ids = nil
	m.mu.Unlock()
}

// ActiveID returns the first selected id.
func (m *SelectionModel) ActiveID() (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.ids) == 0 {
		return 0, false
	}
	return m.ids[0], true
}

func (m *SelectionModel) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

func (m *SelectionModel) Contains(id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(m.ids, id)
}

// IDs returns a copy of the selection in order.
func (m *SelectionModel) IDs() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.ids)
}
