// Package registry holds the persons known to the service. It owns every
// Person; banks and handlers refer to them by ID.
package registry

import (
	"sync"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
)

// People is an in-memory person directory.
type People struct {
	mu      sync.RWMutex
	persons map[string]*domain.Person
}

// NewPeople creates an empty directory.
func NewPeople() *People {
	return &People{persons: make(map[string]*domain.Person)}
}

// Add registers p. IDs are unique; adding the same ID twice fails.
func (r *People) Add(p *domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.persons[p.ID()]; exists {
		return &domain.ErrDuplicate{Key: p.ID()}
	}
	r.persons[p.ID()] = p
	return nil
}

// Get resolves a person ID.
func (r *People) Get(id string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.persons[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "person", ID: id}
	}
	return p, nil
}

// List returns every person sorted by name.
func (r *People) List() []*domain.Person {
	r.mu.RLock()
	out := make([]*domain.Person, 0, len(r.persons))
	for _, p := range r.persons {
		out = append(out, p)
	}
	r.mu.RUnlock()

	domain.SortPersons(out)
	return out
}
