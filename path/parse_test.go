package path

import (
	"strings"
	"testing"
)

func TestParseStringValid(t *testing.T) {
	tests := []struct {
		name string
		desc string
		ops  []Op
	}{
		{
			name: "single member",
			desc: "Customer",
			ops:  []Op{OpMember},
		},
		{
			name: "nullable member",
			desc: "Customer?.Address",
			ops:  []Op{OpNullableMember, OpMember},
		},
		{
			name: "collection traversal",
			desc: "Items.each().Product",
			ops:  []Op{OpMember, OpEach, OpMember},
		},
		{
			name: "decorated collection",
			desc: "Items.where($recent).orderBy($name).thenByDesc($qty).each()",
			ops:  []Op{OpMember, OpWhere, OpOrderBy, OpThenBy, OpEach},
		},
		{
			name: "descending order",
			desc: "Items.orderByDesc($qty).each()",
			ops:  []Op{OpMember, OpOrderBy, OpEach},
		},
		{
			name: "whitespace tolerated",
			desc: "Items. each() .Product",
			ops:  []Op{OpMember, OpEach, OpMember},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseString("Order", tt.desc)
			if err != nil {
				t.Fatalf("ParseString(%q) failed: %v", tt.desc, err)
			}
			nodes := p.Nodes()
			if len(nodes) != len(tt.ops) {
				t.Fatalf("expected %d nodes, got %d", len(tt.ops), len(nodes))
			}
			for i, op := range tt.ops {
				if nodes[i].Op != op {
					t.Errorf("node %d: expected %s, got %s", i, op, nodes[i].Op)
				}
			}
		})
	}
}

func TestParseStringDirections(t *testing.T) {
	p, err := ParseString("Order", "Items.orderBy($a).thenByDesc($b).each()")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	nodes := p.Nodes()
	if nodes[1].Dir != Ascending {
		t.Error("orderBy must be ascending")
	}
	if nodes[2].Dir != Descending {
		t.Error("thenByDesc must be descending")
	}
	if nodes[1].Key.Name() != "a" || nodes[2].Key.Name() != "b" {
		t.Error("placeholder names not captured on key handles")
	}
}

func TestParseStringInvalid(t *testing.T) {
	tests := []struct {
		name    string
		root    string
		desc    string
		wantErr string
	}{
		{"no root", "", "Items", "no root entity"},
		{"empty description", "Order", "  ", "empty description"},
		{"empty step", "Order", "Items..Product", "empty step"},
		{"bad member", "Order", "Ite ms", "invalid member"},
		{"unterminated marker", "Order", "Items.where($x", "unterminated marker"},
		{"each with argument", "Order", "Items.each($x)", "takes no argument"},
		{"where without placeholder", "Order", "Items.where(recent)", "needs a $name argument"},
		{"unknown marker", "Order", "Items.filter($x)", "unknown marker"},
		{"bad placeholder", "Order", "Items.where($1x)", "needs a $name argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.root, tt.desc)
			if err == nil {
				t.Fatalf("expected error for %q", tt.desc)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	const desc = "Order.Items.where($recent).orderBy($name).each().Product"
	p, err := ParseString("Order", strings.TrimPrefix(desc, "Order."))
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if got := p.String(); got != desc {
		t.Errorf("round trip mismatch: %q", got)
	}
}
