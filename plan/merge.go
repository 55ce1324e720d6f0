package plan

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/fetchplan/path"
)

// OrderKey is one resolved ordering key on a collection node
type OrderKey struct {
	Key path.Key
	Dir path.Direction
}

// Node is one node of the merged directive tree. The root is synthetic: it
// carries the root entity name and no member. At most one node exists per
// (parent, member) pair; sibling order follows first declaration.
type Node struct {
	Member string
	Kind   SegmentKind // SegmentReference or SegmentCollection
	Entity string      // target entity, empty for scalar leaves

	// Collection decoration, resolved across all merged paths
	Filter path.Predicate
	Orders []OrderKey

	children map[string]*Node
	order    []string
}

func newNode(member string, kind SegmentKind, entity string) *Node {
	return &Node{
		Member:   member,
		Kind:     kind,
		Entity:   entity,
		children: make(map[string]*Node),
	}
}

// IsRoot reports whether the node is the synthetic root
func (n *Node) IsRoot() bool {
	return n.Member == ""
}

// Child returns the child node for a member name
func (n *Node) Child(member string) (*Node, bool) {
	c, ok := n.children[member]
	return c, ok
}

// Children returns child nodes in first-declared order
func (n *Node) Children() []*Node {
	children := make([]*Node, 0, len(n.order))
	for _, member := range n.order {
		children = append(children, n.children[member])
	}
	return children
}

// Count returns the number of directive nodes in the tree, excluding the
// synthetic root
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) {
		count++
	})
	return count
}

// Walk visits every non-root node depth-first in declaration order
func (n *Node) Walk(visit func(node *Node, depth int)) {
	n.walk(visit, 0)
}

func (n *Node) walk(visit func(node *Node, depth int), depth int) {
	for _, child := range n.Children() {
		visit(child, depth)
		child.walk(visit, depth+1)
	}
}

// String renders the tree in an indented diagnostic form
func (n *Node) String() string {
	var b strings.Builder
	if n.IsRoot() {
		fmt.Fprintf(&b, "%s\n", n.Entity)
	}
	n.Walk(func(node *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth+1))
		b.WriteString(node.Member)
		b.WriteString(" (")
		b.WriteString(node.Kind.String())
		if !node.Filter.IsZero() {
			b.WriteString(", filtered")
		}
		if len(node.Orders) > 0 {
			fmt.Fprintf(&b, ", ordered by %d key(s)", len(node.Orders))
		}
		b.WriteString(")\n")
	})
	return b.String()
}

// Merge combines parsed paths into a single directive tree, deduplicating
// shared prefixes. Nil paths are skipped so conditional declarations can
// pass through unchanged. Paths must share one root entity; a shared
// collection node must be decorated consistently: the first declared
// decoration wins, later undecorated paths defer to it, and a later
// conflicting decoration fails.
func Merge(paths ...*ParsedPath) (*Node, error) {
	root := newNode("", SegmentReference, "")

	for _, pp := range paths {
		if pp == nil {
			continue
		}
		if root.Entity == "" {
			root.Entity = pp.Root()
		} else if pp.Root() != root.Entity {
			return nil, fmt.Errorf("%w: %s vs %s", ErrRootMismatch, root.Entity, pp.Root())
		}

		cur := root
		var decor []Segment
		for _, seg := range pp.segments {
			switch seg.Kind {
			case SegmentFilter, SegmentOrderKey:
				decor = append(decor, seg)

			case SegmentReference, SegmentCollection:
				if len(decor) > 0 && seg.Kind != SegmentCollection {
					return nil, fmt.Errorf("%w: before reference %s", ErrDanglingDecoration, seg.Member)
				}
				child, ok := cur.children[seg.Member]
				if !ok {
					child = newNode(seg.Member, seg.Kind, seg.Target)
					cur.children[seg.Member] = child
					cur.order = append(cur.order, seg.Member)
				} else if child.Kind != seg.Kind {
					return nil, fmt.Errorf("member %s traversed as both %s and %s",
						seg.Member, child.Kind, seg.Kind)
				}
				if seg.Kind == SegmentCollection {
					if err := child.attach(decor); err != nil {
						return nil, err
					}
					decor = nil
				}
				cur = child

			default:
				return nil, fmt.Errorf("unsupported segment kind %d", seg.Kind)
			}
		}
		if len(decor) > 0 {
			return nil, fmt.Errorf("%w: at end of path", ErrDanglingDecoration)
		}
	}

	return root, nil
}

// attach resolves one path's decoration against the node's. An undecorated
// reuse keeps whatever is already resolved; the first decoration to arrive
// sets the contract and every later decoration must match it exactly.
func (n *Node) attach(decor []Segment) error {
	var filter path.Predicate
	var orders []OrderKey
	for _, d := range decor {
		if d.Kind == SegmentFilter {
			filter = d.Pred
		} else {
			orders = append(orders, OrderKey{Key: d.Key, Dir: d.Dir})
		}
	}

	if filter.IsZero() && len(orders) == 0 {
		return nil
	}
	if n.Filter.IsZero() && len(n.Orders) == 0 {
		n.Filter = filter
		n.Orders = orders
		return nil
	}
	if !n.Filter.Equal(filter) || !sameOrders(n.Orders, orders) {
		return fmt.Errorf("%w: %s", ErrConflictingDecoration, n.Member)
	}
	return nil
}

func sameOrders(a, b []OrderKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Dir != b[i].Dir || !a[i].Key.Equal(b[i].Key) {
			return false
		}
	}
	return true
}
