// Package schema provides type definitions and a registry for entity graphs.
// It defines the scalar fields and navigable edges that the path parser
// validates member accesses against.
package schema

// EdgeKind distinguishes single-valued from multi-valued navigations
type EdgeKind int

const (
	// EdgeReference is a single-valued navigation to one related entity
	EdgeReference EdgeKind = iota
	// EdgeCollection is a multi-valued navigation to a set of related entities
	EdgeCollection
)

// String returns the string representation of the edge kind
func (k EdgeKind) String() string {
	switch k {
	case EdgeReference:
		return "reference"
	case EdgeCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Field represents a scalar (non-navigable) attribute of an entity
type Field struct {
	Name string
	Type string
}

// Edge represents one navigable relationship on an entity
type Edge struct {
	Name     string
	Kind     EdgeKind
	Target   string // target entity name
	Nullable bool   // meaningful for references only

	// ForeignKey is the column holding the join key. Empty means engines
	// fall back to their naming convention.
	ForeignKey string
}

// EntitySchema describes one entity: its scalar fields and its edges
type EntitySchema struct {
	Name   string
	Fields map[string]*Field
	Edges  map[string]*Edge
}

// NewEntitySchema creates an empty entity schema with the given name
func NewEntitySchema(name string) *EntitySchema {
	return &EntitySchema{
		Name:   name,
		Fields: make(map[string]*Field),
		Edges:  make(map[string]*Edge),
	}
}

// AddField adds a scalar field to the entity
func (s *EntitySchema) AddField(name, typ string) *EntitySchema {
	s.Fields[name] = &Field{Name: name, Type: typ}
	return s
}

// AddReference adds a single-valued edge to the entity
func (s *EntitySchema) AddReference(name, target string, nullable bool) *EntitySchema {
	s.Edges[name] = &Edge{Name: name, Kind: EdgeReference, Target: target, Nullable: nullable}
	return s
}

// AddCollection adds a multi-valued edge to the entity
func (s *EntitySchema) AddCollection(name, target string) *EntitySchema {
	s.Edges[name] = &Edge{Name: name, Kind: EdgeCollection, Target: target}
	return s
}

// HasField returns true if the entity declares a scalar field with the given name
func (s *EntitySchema) HasField(name string) bool {
	_, ok := s.Fields[name]
	return ok
}

// HasEdge returns true if the entity declares an edge with the given name
func (s *EntitySchema) HasEdge(name string) bool {
	_, ok := s.Edges[name]
	return ok
}

// Edge returns the edge with the given name, if declared
func (s *EntitySchema) Edge(name string) (*Edge, bool) {
	e, ok := s.Edges[name]
	return e, ok
}
