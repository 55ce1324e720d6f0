// Package plan compiles unevaluated path descriptions into merged directive
// trees: it parses descriptions into typed segment sequences, caches parses
// by structural shape, and merges many parsed paths into one deduplicated
// tree of traversal directives for a query engine.
package plan

import (
	"github.com/conduit-lang/fetchplan/path"
)

// SegmentKind identifies one kind of parsed traversal step
type SegmentKind int

const (
	// SegmentReference traverses a single-valued edge
	SegmentReference SegmentKind = iota
	// SegmentCollection traverses a multi-valued edge
	SegmentCollection
	// SegmentFilter decorates the immediately following collection segment
	SegmentFilter
	// SegmentOrderKey decorates the immediately following collection segment
	SegmentOrderKey
)

// String returns the string representation of the segment kind
func (k SegmentKind) String() string {
	switch k {
	case SegmentReference:
		return "reference"
	case SegmentCollection:
		return "collection"
	case SegmentFilter:
		return "filter"
	case SegmentOrderKey:
		return "orderKey"
	default:
		return "unknown"
	}
}

// Segment is one parsed step of a path. Filter and OrderKey segments always
// immediately precede the collection segment they decorate.
type Segment struct {
	Kind   SegmentKind
	Member string // navigated edge name, empty for Filter/OrderKey
	Target string // target entity name, empty for Filter/OrderKey and scalars

	Pred path.Predicate // Filter only, forwarded unevaluated
	Key  path.Key       // OrderKey only, forwarded unevaluated
	Dir  path.Direction // OrderKey only

	// Index is the segment's position within its owning path
	Index int
}

// structurallyEqual compares segments by shape, ignoring the identity of
// embedded predicate/key handles
func (s Segment) structurallyEqual(o Segment) bool {
	return s.Kind == o.Kind &&
		s.Member == o.Member &&
		s.Target == o.Target &&
		s.Dir == o.Dir &&
		s.Index == o.Index
}

// ParsedPath is the immutable result of parsing one description: the
// declaring root entity plus an ordered segment sequence.
type ParsedPath struct {
	root     string
	segments []Segment
}

// Root returns the declaring root entity name
func (p *ParsedPath) Root() string {
	return p.root
}

// Segments returns a copy of the parsed segment sequence
func (p *ParsedPath) Segments() []Segment {
	segs := make([]Segment, len(p.segments))
	copy(segs, p.segments)
	return segs
}

// Len returns the number of segments
func (p *ParsedPath) Len() int {
	return len(p.segments)
}

// StructurallyEqual reports whether two parsed paths have the same shape:
// equal roots and segment sequences under a comparison that ignores the
// identity of embedded predicate/key handles.
func (p *ParsedPath) StructurallyEqual(o *ParsedPath) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.root != o.root || len(p.segments) != len(o.segments) {
		return false
	}
	for i := range p.segments {
		if !p.segments[i].structurallyEqual(o.segments[i]) {
			return false
		}
	}
	return true
}
