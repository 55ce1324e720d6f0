// Package spec provides composable fetch specifications: reusable bundles
// of declared traversal paths and query-wide options. A specification can
// include other specifications; resolving flattens the whole inclusion
// graph into one ordered path list and a merged option set.
package spec

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/fetchplan/path"
	"github.com/conduit-lang/fetchplan/plan"
)

// TrackingMode controls change tracking on materialized entities
type TrackingMode int

const (
	// TrackDefault defers to the engine's default
	TrackDefault TrackingMode = iota
	// TrackChanges asks the engine to track materialized entities
	TrackChanges
	// NoTracking asks the engine for untracked, read-only results
	NoTracking
)

// String returns the string representation of the tracking mode
func (m TrackingMode) String() string {
	switch m {
	case TrackChanges:
		return "track"
	case NoTracking:
		return "no-track"
	default:
		return "default"
	}
}

// SplitMode controls whether eager loads run as one joined fetch or as one
// fetch per collection
type SplitMode int

const (
	// SplitDefault defers to the engine's default
	SplitDefault SplitMode = iota
	// SingleFetch asks for one combined fetch
	SingleFetch
	// SplitFetch asks for one fetch per collection node
	SplitFetch
)

// String returns the string representation of the split mode
func (m SplitMode) String() string {
	switch m {
	case SingleFetch:
		return "single"
	case SplitFetch:
		return "split"
	default:
		return "default"
	}
}

// Options are query-wide flags resolved alongside a specification's paths
type Options struct {
	Tracking TrackingMode
	Split    SplitMode
}

// Merge overlays next onto o: flags next sets explicitly win, unset flags
// keep o's value.
func (o Options) Merge(next Options) Options {
	if next.Tracking != TrackDefault {
		o.Tracking = next.Tracking
	}
	if next.Split != SplitDefault {
		o.Split = next.Split
	}
	return o
}

// Spec is an ordered set of declared paths plus options, composable with
// other specifications through inclusion.
type Spec struct {
	root     string
	paths    []*path.Path
	includes []*Spec
	opts     Options
	errs     []error
}

// New creates an empty specification rooted at the named entity
func New(root string) *Spec {
	return &Spec{root: root}
}

// Root returns the specification's root entity name
func (s *Spec) Root() string {
	return s.root
}

// Options returns the specification's own option flags, before resolution
func (s *Spec) Options() Options {
	return s.opts
}

// Add declares paths on the specification
func (s *Spec) Add(paths ...*path.Path) *Spec {
	s.paths = append(s.paths, paths...)
	return s
}

// AddString declares a path written in the textual grammar. Grammar errors
// are deferred and surfaced by Resolve.
func (s *Spec) AddString(desc string) *Spec {
	p, err := path.ParseString(s.root, desc)
	if err != nil {
		s.errs = append(s.errs, err)
		return s
	}
	s.paths = append(s.paths, p)
	return s
}

// Inherit includes other specifications. Their paths resolve before this
// specification's own, and their options are overridden by this
// specification's explicitly set flags.
func (s *Spec) Inherit(others ...*Spec) *Spec {
	s.includes = append(s.includes, others...)
	return s
}

// WithTracking sets the tracking flag
func (s *Spec) WithTracking(m TrackingMode) *Spec {
	s.opts.Tracking = m
	return s
}

// WithSplit sets the split-fetch flag
func (s *Spec) WithSplit(m SplitMode) *Spec {
	s.opts.Split = m
	return s
}

// Resolve flattens the specification and everything it includes, depth
// first (each included specification's own inclusions expand before its
// paths), into one ordered path list plus merged options. Later layers'
// options override earlier ones, so the including specification's flags
// win. A specification included more than once contributes once.
func (s *Spec) Resolve() ([]*path.Path, Options, error) {
	var paths []*path.Path
	var opts Options
	var errs []error
	visited := make(map[*Spec]bool)

	var walk func(cur *Spec)
	walk = func(cur *Spec) {
		if visited[cur] {
			return
		}
		visited[cur] = true

		for _, inc := range cur.includes {
			walk(inc)
		}
		if len(cur.errs) > 0 {
			errs = append(errs, cur.errs...)
		}
		if cur.root != s.root {
			errs = append(errs, fmt.Errorf("included specification roots %s, expected %s", cur.root, s.root))
		}
		paths = append(paths, cur.paths...)
		opts = opts.Merge(cur.opts)
	}
	walk(s)

	if len(errs) > 0 {
		return nil, Options{}, errors.Join(errs...)
	}
	return paths, opts, nil
}

// Compile resolves the specification and merges its paths into a directive
// tree using the given parser.
func (s *Spec) Compile(parser *plan.Parser) (*plan.Node, Options, error) {
	paths, opts, err := s.Resolve()
	if err != nil {
		return nil, Options{}, err
	}

	parsed := make([]*plan.ParsedPath, 0, len(paths))
	for _, p := range paths {
		pp, err := parser.Parse(p)
		if err != nil {
			return nil, Options{}, err
		}
		parsed = append(parsed, pp)
	}

	tree, err := plan.Merge(parsed...)
	if err != nil {
		return nil, Options{}, err
	}
	return tree, opts, nil
}
