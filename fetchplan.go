// Package fetchplan compiles declarative eager-load path descriptions into
// merged directive trees. Callers declare traversal paths over an entity
// graph with the path package's fluent builder (or textual grammar); the
// compiler parses them against a schema registry, memoizes parses by
// structural shape, merges them into one deduplicated directive tree, and
// hands the tree to a query engine together with the resolved options.
package fetchplan

import (
	"context"

	"go.uber.org/zap"

	"github.com/conduit-lang/fetchplan/path"
	"github.com/conduit-lang/fetchplan/plan"
	"github.com/conduit-lang/fetchplan/schema"
	"github.com/conduit-lang/fetchplan/spec"
)

// Engine realizes a directive tree as actual nested eager loads. The
// compiler asserts nothing about how: sqlengine provides one
// implementation over database/sql.
type Engine interface {
	ApplyDirectives(ctx context.Context, tree *plan.Node, opts spec.Options) error
}

// Compiler ties a schema registry, a parser, and its structural cache into
// the public compilation entry points. All entry points are side-effect
// free apart from cache population and are safe for concurrent use.
type Compiler struct {
	registry *schema.Registry
	parser   *plan.Parser
}

// Option configures a Compiler
type Option func(*options)

type options struct {
	logger *zap.Logger
	cache  *plan.Cache
}

// WithLogger sets a logger for compile debug traces
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSharedCache makes the compiler use an existing parse cache instead
// of a fresh one
func WithSharedCache(cache *plan.Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// New creates a compiler over the given schema registry
func New(registry *schema.Registry, opts ...Option) *Compiler {
	o := &options{
		logger: zap.NewNop(),
		cache:  plan.NewCache(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Compiler{
		registry: registry,
		parser:   plan.NewParser(registry, plan.WithLogger(o.logger), plan.WithCache(o.cache)),
	}
}

// Registry returns the compiler's schema registry
func (c *Compiler) Registry() *schema.Registry {
	return c.registry
}

// Parser returns the compiler's parser
func (c *Compiler) Parser() *plan.Parser {
	return c.parser
}

// Compile parses the given descriptions and merges them into one directive tree
func (c *Compiler) Compile(paths ...*path.Path) (*plan.Node, error) {
	parsed := make([]*plan.ParsedPath, 0, len(paths))
	for _, p := range paths {
		pp, err := c.parser.Parse(p)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, pp)
	}
	return plan.Merge(parsed...)
}

// CompileIf compiles the descriptions only when cond is true; otherwise it
// returns a nil tree without parsing anything.
func (c *Compiler) CompileIf(cond bool, paths ...*path.Path) (*plan.Node, error) {
	if !cond {
		return nil, nil
	}
	return c.Compile(paths...)
}

// CompileNested joins base with each sub-path fragment before parsing, so
// several paths under a shared prefix can be declared once. With no
// fragments it compiles base alone.
func (c *Compiler) CompileNested(base *path.Path, subs ...*path.Path) (*plan.Node, error) {
	if len(subs) == 0 {
		return c.Compile(base)
	}
	joined := make([]*path.Path, 0, len(subs))
	for _, sub := range subs {
		joined = append(joined, base.Join(sub))
	}
	return c.Compile(joined...)
}

// CompileSpecs resolves each specification in order, concatenates their
// path lists, and merges everything into one tree. Options merge
// last-writer-wins across the specifications.
func (c *Compiler) CompileSpecs(specs ...*spec.Spec) (*plan.Node, spec.Options, error) {
	var all []*path.Path
	var opts spec.Options
	for _, s := range specs {
		paths, o, err := s.Resolve()
		if err != nil {
			return nil, spec.Options{}, err
		}
		all = append(all, paths...)
		opts = opts.Merge(o)
	}

	parsed := make([]*plan.ParsedPath, 0, len(all))
	for _, p := range all {
		pp, err := c.parser.Parse(p)
		if err != nil {
			return nil, spec.Options{}, err
		}
		parsed = append(parsed, pp)
	}

	tree, err := plan.Merge(parsed...)
	if err != nil {
		return nil, spec.Options{}, err
	}
	return tree, opts, nil
}

// Apply compiles the specifications and hands the result to the engine
func (c *Compiler) Apply(ctx context.Context, engine Engine, specs ...*spec.Spec) error {
	tree, opts, err := c.CompileSpecs(specs...)
	if err != nil {
		return err
	}
	return engine.ApplyDirectives(ctx, tree, opts)
}
