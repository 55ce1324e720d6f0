package plan

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/fetchplan/path"
	"github.com/conduit-lang/fetchplan/schema"
)

// Parser converts path descriptions into parsed segment sequences,
// validating each step against the schema registry. Parses are memoized in
// a structural cache, so re-declaring the same path shape at a call site
// does not re-walk the description.
type Parser struct {
	registry *schema.Registry
	cache    *Cache
	logger   *zap.Logger
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithLogger sets a logger for parse debug traces
func WithLogger(logger *zap.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithCache sets a shared parse cache. Useful when several parsers should
// pool their memoized parses.
func WithCache(cache *Cache) ParserOption {
	return func(p *Parser) {
		p.cache = cache
	}
}

// NewParser creates a parser over the given schema registry
func NewParser(registry *schema.Registry, opts ...ParserOption) *Parser {
	p := &Parser{
		registry: registry,
		cache:    NewCache(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cache returns the parser's structural cache
func (p *Parser) Cache() *Cache {
	return p.cache
}

// Parse converts one description into a ParsedPath, serving structurally
// identical descriptions from cache.
func (p *Parser) Parse(desc *path.Path) (*ParsedPath, error) {
	key := Fingerprint(desc)
	if cached, ok := p.cache.Get(key); ok {
		p.logger.Debug("parse cache hit", zap.String("path", desc.String()))
		return cached, nil
	}

	parsed, err := p.walk(desc)
	if err != nil {
		return nil, err
	}

	p.cache.Put(key, parsed)
	p.logger.Debug("parsed path",
		zap.String("path", desc.String()),
		zap.Int("segments", parsed.Len()))
	return parsed, nil
}

// pending tracks a collection member that has been accessed but not yet
// traversed with each(). Decorations accumulate here in call order until
// the collection segment is emitted.
type pending struct {
	member    string
	elem      string // element entity name
	decor     []Segment
	hasFilter bool
	hasOrder  bool
}

// walk classifies each description node in order, enforcing the grammar:
// members resolve against the current entity, collection members must be
// closed with each() before the path continues, and filter/order markers
// are legal only between a collection member and its each().
func (p *Parser) walk(desc *path.Path) (*ParsedPath, error) {
	root := desc.RootEntity()
	if root == "" {
		return nil, fmt.Errorf("%w: description has no root entity", ErrUnknownEntity)
	}
	cur, ok := p.registry.Get(root)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, root)
	}

	var segs []Segment
	var pend *pending
	scalar := "" // name of the terminal scalar field, once reached

	emit := func(s Segment) {
		s.Index = len(segs)
		segs = append(segs, s)
	}

	for i, n := range desc.Nodes() {
		pos := i + 1

		if scalar != "" {
			return nil, fmt.Errorf("%w: %s after scalar %s at step %d",
				ErrAfterScalar, n.Op, scalar, pos)
		}

		switch n.Op {
		case path.OpMember, path.OpNullableMember:
			if pend != nil {
				return nil, fmt.Errorf("%w: %s accessed through collection %s at step %d",
					ErrUnmarkedCollection, n.Member, pend.member, pos)
			}
			if edge, ok := cur.Edge(n.Member); ok {
				if edge.Kind == schema.EdgeCollection {
					pend = &pending{member: edge.Name, elem: edge.Target}
					break
				}
				emit(Segment{Kind: SegmentReference, Member: edge.Name, Target: edge.Target})
				next, ok := p.registry.Get(edge.Target)
				if !ok {
					return nil, fmt.Errorf("%w: %s (target of %s.%s)",
						ErrUnknownEntity, edge.Target, cur.Name, edge.Name)
				}
				cur = next
				break
			}
			if cur.HasField(n.Member) {
				// A scalar may terminate a path; anything after it fails
				emit(Segment{Kind: SegmentReference, Member: n.Member})
				scalar = n.Member
				break
			}
			return nil, fmt.Errorf("%w: %s.%s at step %d", ErrUnknownMember, cur.Name, n.Member, pos)

		case path.OpEach:
			if pend == nil {
				return nil, fmt.Errorf("%w: each() on %s at step %d", ErrNotCollection, cur.Name, pos)
			}
			for _, d := range pend.decor {
				emit(d)
			}
			emit(Segment{Kind: SegmentCollection, Member: pend.member, Target: pend.elem})
			next, ok := p.registry.Get(pend.elem)
			if !ok {
				return nil, fmt.Errorf("%w: %s (element of %s)", ErrUnknownEntity, pend.elem, pend.member)
			}
			cur = next
			pend = nil

		case path.OpWhere:
			if pend == nil {
				return nil, fmt.Errorf("%w: where() on %s at step %d", ErrNotCollection, cur.Name, pos)
			}
			if pend.hasFilter {
				return nil, fmt.Errorf("%w: %s at step %d", ErrDuplicateFilter, pend.member, pos)
			}
			pend.hasFilter = true
			pend.decor = append(pend.decor, Segment{Kind: SegmentFilter, Pred: n.Pred})

		case path.OpOrderBy:
			if pend == nil {
				return nil, fmt.Errorf("%w: orderBy() on %s at step %d", ErrNotCollection, cur.Name, pos)
			}
			pend.hasOrder = true
			pend.decor = append(pend.decor, Segment{Kind: SegmentOrderKey, Key: n.Key, Dir: n.Dir})

		case path.OpThenBy:
			if pend == nil {
				return nil, fmt.Errorf("%w: thenBy() on %s at step %d", ErrNotCollection, cur.Name, pos)
			}
			if !pend.hasOrder {
				return nil, fmt.Errorf("%w: %s at step %d", ErrMisplacedThenBy, pend.member, pos)
			}
			pend.decor = append(pend.decor, Segment{Kind: SegmentOrderKey, Key: n.Key, Dir: n.Dir})

		default:
			return nil, fmt.Errorf("unsupported description op %d at step %d", n.Op, pos)
		}
	}

	if pend != nil {
		if len(pend.decor) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrDanglingDecoration, pend.member)
		}
		// A bare trailing collection member is a complete include of the
		// whole collection
		emit(Segment{Kind: SegmentCollection, Member: pend.member, Target: pend.elem})
	}

	return &ParsedPath{root: root, segments: segs}, nil
}
