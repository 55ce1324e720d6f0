// Package schema provides a registry for managing entity schemas
package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages all entity schemas known to a compiler instance
type Registry struct {
	entities map[string]*EntitySchema
	mu       sync.RWMutex
}

// NewRegistry creates a new schema registry
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*EntitySchema),
	}
}

// Register registers a new entity schema
func (r *Registry) Register(entity *EntitySchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entity.Name == "" {
		return fmt.Errorf("entity schema has no name")
	}
	if _, exists := r.entities[entity.Name]; exists {
		return fmt.Errorf("entity %s is already registered", entity.Name)
	}

	// Store FIRST so structural validation can see the entity itself;
	// cross-entity edge targets are checked in ValidateAll to allow
	// forward references.
	r.entities[entity.Name] = entity

	if err := validateStructural(entity); err != nil {
		// Rollback on validation failure
		delete(r.entities, entity.Name)
		return fmt.Errorf("schema validation failed for %s: %w", entity.Name, err)
	}

	return nil
}

// MustRegister registers an entity schema and panics on failure.
// Intended for package-level schema declarations.
func (r *Registry) MustRegister(entity *EntitySchema) {
	if err := r.Register(entity); err != nil {
		panic(err)
	}
}

// Get retrieves an entity schema by name
func (r *Registry) Get(name string) (*EntitySchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, exists := r.entities[name]
	return entity, exists
}

// All returns a copy of all registered entity schemas
func (r *Registry) All() map[string]*EntitySchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*EntitySchema, len(r.entities))
	for k, v := range r.entities {
		result[k] = v
	}
	return result
}

// List returns the names of all registered entities, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateAll verifies that every edge target resolves to a registered entity
func (r *Registry) ValidateAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, entity := range r.entities {
		for _, edge := range entity.Edges {
			if _, ok := r.entities[edge.Target]; !ok {
				return fmt.Errorf("entity %s: edge %s targets unregistered entity %s",
					name, edge.Name, edge.Target)
			}
		}
	}
	return nil
}

// validateStructural checks an entity schema in isolation
func validateStructural(entity *EntitySchema) error {
	for name, edge := range entity.Edges {
		if edge.Name != name {
			return fmt.Errorf("edge registered under %s declares name %s", name, edge.Name)
		}
		if edge.Target == "" {
			return fmt.Errorf("edge %s has no target entity", name)
		}
		if _, clash := entity.Fields[name]; clash {
			return fmt.Errorf("member %s declared as both field and edge", name)
		}
	}
	for name, field := range entity.Fields {
		if field.Name != name {
			return fmt.Errorf("field registered under %s declares name %s", name, field.Name)
		}
	}
	return nil
}
