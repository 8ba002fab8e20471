package service

import (
	"fmt"
	"sort"
	"sync"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/internal/errors"
)

type ComponentRegistry struct {
	mu       sync.RWMutex
	adapters map[domain.ResourceKind]ports.ResourceAdapter
	queries  map[domain.ResourceKind]ports.QueryAdapter
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		adapters: make(map[domain.ResourceKind]ports.ResourceAdapter),
		queries:  make(map[domain.ResourceKind]ports.QueryAdapter),
	}
}

func (r *ComponentRegistry) RegisterAdapter(adapter ports.ResourceAdapter) error {
	if adapter == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil resource adapter")
	}
	kind := adapter.Kind()
	if kind == "" {
		return errors.New(errors.CodeInternal, "resource adapter kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(kind) {
		return errors.New(errors.CodeInternal, fmt.Sprintf("kind '%s' already registered", kind))
	}
	r.adapters[kind] = adapter
	return nil
}

func (r *ComponentRegistry) RegisterQuery(adapter ports.QueryAdapter) error {
	if adapter == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil query adapter")
	}
	kind := adapter.Kind()
	if kind == "" {
		return errors.New(errors.CodeInternal, "query adapter kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(kind) {
		return errors.New(errors.CodeInternal, fmt.Sprintf("kind '%s' already registered", kind))
	}
	r.queries[kind] = adapter
	return nil
}

func (r *ComponentRegistry) taken(kind domain.ResourceKind) bool {
	_, a := r.adapters[kind]
	_, q := r.queries[kind]
	return a || q
}

func (r *ComponentRegistry) GetAdapter(kind domain.ResourceKind) (ports.ResourceAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[kind]
	return a, ok
}

func (r *ComponentRegistry) GetQuery(kind domain.ResourceKind) (ports.QueryAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[kind]
	return q, ok
}

// Kinds lists every registered kind in lexical order.
func (r *ComponentRegistry) Kinds() []domain.ResourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.ResourceKind, 0, len(r.adapters)+len(r.queries))
	for k := range r.adapters {
		kinds = append(kinds, k)
	}
	for k := range r.queries {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
