package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps templates in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]Template
	now       func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]Template),
		now:       time.Now,
	}
}

// Get returns the template stored under name.
func (m *MemoryStore) Get(ctx context.Context, name string) (Template, error) {
	if err := ValidateName(name); err != nil {
		return Template{}, err
	}
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tmpl, ok := m.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return tmpl, nil
}

// Put stores tmpl, replacing any template with the same name.
func (m *MemoryStore) Put(ctx context.Context, tmpl Template) error {
	if err := tmpl.normalize(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmpl.Builtin = false
	tmpl.UpdatedAt = m.now().UTC()

	m.mu.Lock()
	m.templates[tmpl.Name] = tmpl
	m.mu.Unlock()
	return nil
}

// Delete removes the template stored under name.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(m.templates, name)
	return nil
}

// List returns all templates sorted by name.
func (m *MemoryStore) List(ctx context.Context) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]Template, 0, len(m.templates))
	for _, tmpl := range m.templates {
		out = append(out, tmpl)
	}
	m.mu.RUnlock()

	sortByName(out)
	return out, nil
}
