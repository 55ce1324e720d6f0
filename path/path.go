// Package path builds unevaluated traversal descriptions over an entity
// graph. A description is static data: a root entity name plus an ordered
// chain of member accesses and marker operations. Nothing in a description
// ever executes; the compiler inspects its shape only.
package path

import "strings"

// Op identifies one kind of description node
type Op int

const (
	// OpMember is a plain member access
	OpMember Op = iota
	// OpNullableMember is a member access through a nullable reference.
	// It parses identically to OpMember and exists for readability.
	OpNullableMember
	// OpEach marks traversal into the elements of a collection member
	OpEach
	// OpWhere attaches a filter predicate to the pending collection
	OpWhere
	// OpOrderBy starts (or extends) the pending collection's ordering
	OpOrderBy
	// OpThenBy extends an ordering started by OpOrderBy
	OpThenBy
)

// String returns the textual-grammar spelling of the op
func (o Op) String() string {
	switch o {
	case OpMember:
		return "member"
	case OpNullableMember:
		return "member?"
	case OpEach:
		return "each"
	case OpWhere:
		return "where"
	case OpOrderBy:
		return "orderBy"
	case OpThenBy:
		return "thenBy"
	default:
		return "unknown"
	}
}

// Direction is an ordering direction for OpOrderBy/OpThenBy nodes
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the string representation of the direction
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Node is a single step of a description. Nodes are plain data; building
// a path performs no member resolution and invokes no caller logic.
type Node struct {
	Op     Op
	Member string    // OpMember/OpNullableMember only
	Pred   Predicate // OpWhere only
	Key    Key       // OpOrderBy/OpThenBy only
	Dir    Direction // OpOrderBy/OpThenBy only
}

// Path is an ordered, unevaluated traversal description rooted at an entity
type Path struct {
	root  string
	nodes []Node
}

// Root starts a description rooted at the named entity
func Root(entity string) *Path {
	return &Path{root: entity}
}

// Rel starts a rootless path fragment for use with Join
func Rel() *Path {
	return &Path{}
}

// RootEntity returns the declaring root entity name, empty for fragments
func (p *Path) RootEntity() string {
	return p.root
}

// Nodes returns a copy of the description's node sequence
func (p *Path) Nodes() []Node {
	nodes := make([]Node, len(p.nodes))
	copy(nodes, p.nodes)
	return nodes
}

// Len returns the number of nodes in the description
func (p *Path) Len() int {
	return len(p.nodes)
}

// Member appends a plain member access
func (p *Path) Member(name string) *Path {
	p.nodes = append(p.nodes, Node{Op: OpMember, Member: name})
	return p
}

// NullableMember appends a member access through a nullable reference.
// It compiles identically to Member.
func (p *Path) NullableMember(name string) *Path {
	p.nodes = append(p.nodes, Node{Op: OpNullableMember, Member: name})
	return p
}

// Each marks traversal into the elements of the pending collection member
func (p *Path) Each() *Path {
	p.nodes = append(p.nodes, Node{Op: OpEach})
	return p
}

// Where attaches a filter to the pending collection member. The predicate
// is captured by reference and never invoked by the compiler.
func (p *Path) Where(pred Predicate) *Path {
	p.nodes = append(p.nodes, Node{Op: OpWhere, Pred: pred})
	return p
}

// OrderBy appends an ascending ordering key for the pending collection
func (p *Path) OrderBy(key Key) *Path {
	p.nodes = append(p.nodes, Node{Op: OpOrderBy, Key: key, Dir: Ascending})
	return p
}

// OrderByDesc appends a descending ordering key for the pending collection
func (p *Path) OrderByDesc(key Key) *Path {
	p.nodes = append(p.nodes, Node{Op: OpOrderBy, Key: key, Dir: Descending})
	return p
}

// ThenBy appends a secondary ascending ordering key
func (p *Path) ThenBy(key Key) *Path {
	p.nodes = append(p.nodes, Node{Op: OpThenBy, Key: key, Dir: Ascending})
	return p
}

// ThenByDesc appends a secondary descending ordering key
func (p *Path) ThenByDesc(key Key) *Path {
	p.nodes = append(p.nodes, Node{Op: OpThenBy, Key: key, Dir: Descending})
	return p
}

// Clone returns an independent copy of the path
func (p *Path) Clone() *Path {
	clone := &Path{
		root:  p.root,
		nodes: make([]Node, len(p.nodes)),
	}
	copy(clone.nodes, p.nodes)
	return clone
}

// Join returns a new path that continues p with the steps of sub. The
// fragment's own root, if any, is ignored. Neither input is modified.
func (p *Path) Join(sub *Path) *Path {
	joined := p.Clone()
	joined.nodes = append(joined.nodes, sub.nodes...)
	return joined
}

// String renders the canonical textual form of the description
func (p *Path) String() string {
	var b strings.Builder
	b.WriteString(p.root)
	for _, n := range p.nodes {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		switch n.Op {
		case OpMember:
			b.WriteString(n.Member)
		case OpNullableMember:
			b.WriteString(n.Member)
			b.WriteByte('?')
		case OpEach:
			b.WriteString("each()")
		case OpWhere:
			b.WriteString("where($")
			b.WriteString(handleLabel(n.Pred.name, n.Pred.fn))
			b.WriteString(")")
		case OpOrderBy, OpThenBy:
			if n.Op == OpOrderBy {
				b.WriteString("orderBy")
			} else {
				b.WriteString("thenBy")
			}
			if n.Dir == Descending {
				b.WriteString("Desc")
			}
			b.WriteString("($")
			b.WriteString(handleLabel(n.Key.name, n.Key.fn))
			b.WriteString(")")
		}
	}
	return b.String()
}

func handleLabel(name string, fn interface{}) string {
	if name != "" {
		return name
	}
	if fn != nil {
		return "func"
	}
	return "nil"
}
