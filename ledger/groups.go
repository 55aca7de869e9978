package ledger

import "sync"

// Groups is the named order sub-collection store used by multi-leg strategies
// to track which orders belong to which logical leg. Implementations are
// injected per bot instance; there is no package-level default.
type Groups interface {
	Create(name string, o Order) error
	Get(name string) ([]Order, error)
	Clear(name string) error
	Len(name string) (int, error)
}

// MemGroups is the in-memory Groups implementation used in backtests.
type MemGroups struct {
	mu     sync.Mutex
	groups map[string][]Order
}

func NewMemGroups() *MemGroups {
	return &MemGroups{groups: make(map[string][]Order)}
}

func (m *MemGroups) Create(name string, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[name] = append(m.groups[name], o)
	return nil
}

func (m *MemGroups) Get(name string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, len(m.groups[name]))
	copy(out, m.groups[name])
	return out, nil
}

func (m *MemGroups) Clear(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[name] = nil
	return nil
}

func (m *MemGroups) Len(name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groups[name]), nil
}
