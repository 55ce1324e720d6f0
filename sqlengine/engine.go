// Package sqlengine realizes directive trees as batched SQL eager loads
// over database/sql. It is one implementation of the engine boundary the
// compiler hands trees to; each Reference/Collection node becomes one
// batched IN query, so loading never degrades to one query per parent row.
package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/fetchplan/plan"
	"github.com/conduit-lang/fetchplan/schema"
	"github.com/conduit-lang/fetchplan/spec"
)

// Record is one materialized row
type Record = map[string]interface{}

// Querier is an interface for executing SQL queries, allowing for testing
// and instrumentation
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// DecorationSQL renders a collection node's filter/order decoration into
// SQL fragments. Predicate and key handles are opaque to the compiler, so
// engines supply the rendering; the default renders nothing. Placeholders
// in the where fragment start at $argOffset+1, after the batch IN list.
type DecorationSQL func(node *plan.Node, argOffset int) (where string, orderBy string, args []interface{}, err error)

// Engine loads entity graphs described by directive trees
type Engine struct {
	db       Querier
	registry *schema.Registry
	decor    DecorationSQL
	logger   *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine's logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDecorationSQL sets the renderer for filter/order decorations
func WithDecorationSQL(decor DecorationSQL) Option {
	return func(e *Engine) {
		e.decor = decor
	}
}

// New creates an engine over the given querier and schema registry
func New(db Querier, registry *schema.Registry, opts ...Option) *Engine {
	e := &Engine{
		db:       db,
		registry: registry,
		decor: func(*plan.Node, int) (string, string, []interface{}, error) {
			return "", "", nil, nil
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fetches the root records for the tree's entity and eager loads
// every directive node beneath them.
func (e *Engine) Load(ctx context.Context, tree *plan.Node, opts spec.Options) ([]Record, error) {
	if tree == nil {
		return nil, nil
	}
	if !tree.IsRoot() || tree.Entity == "" {
		return nil, fmt.Errorf("directive tree has no root entity")
	}

	loadID := uuid.NewString()
	logger := e.logger.With(zap.String("load_id", loadID), zap.String("root", tree.Entity))
	if opts.Split == spec.SingleFetch {
		logger.Debug("single-fetch requested, falling back to one query per node")
	}

	query := fmt.Sprintf("SELECT * FROM %s", toTableName(tree.Entity))
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s roots: %w", tree.Entity, err)
	}
	records, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s roots: %w", tree.Entity, err)
	}
	logger.Debug("loaded roots", zap.Int("count", len(records)))

	if err := e.eagerLoad(ctx, logger, records, tree.Entity, tree, opts); err != nil {
		return nil, err
	}
	return records, nil
}

// EagerLoad attaches the tree's directive nodes to records the caller has
// already materialized.
func (e *Engine) EagerLoad(ctx context.Context, records []Record, tree *plan.Node, opts spec.Options) error {
	if tree == nil || len(records) == 0 {
		return nil
	}
	loadID := uuid.NewString()
	logger := e.logger.With(zap.String("load_id", loadID), zap.String("root", tree.Entity))
	return e.eagerLoad(ctx, logger, records, tree.Entity, tree, opts)
}

func (e *Engine) eagerLoad(ctx context.Context, logger *zap.Logger, records []Record, entity string, node *plan.Node, opts spec.Options) error {
	if len(records) == 0 {
		return nil
	}

	for _, child := range node.Children() {
		if child.Entity == "" {
			// Scalar leaf: already present on the parent rows
			continue
		}

		parent, ok := e.registry.Get(entity)
		if !ok {
			return fmt.Errorf("unknown entity: %s", entity)
		}
		edge, ok := parent.Edge(child.Member)
		if !ok {
			return fmt.Errorf("entity %s has no edge %s", entity, child.Member)
		}

		var attached []Record
		var err error
		switch child.Kind {
		case plan.SegmentCollection:
			attached, err = e.loadCollection(ctx, records, entity, edge, child)
		default:
			attached, err = e.loadReference(ctx, records, edge, child, opts)
		}
		if err != nil {
			return fmt.Errorf("failed to load %s.%s: %w", entity, child.Member, err)
		}
		logger.Debug("loaded edge",
			zap.String("member", child.Member),
			zap.String("kind", child.Kind.String()),
			zap.Int("count", len(attached)))

		if err := e.eagerLoad(ctx, logger, attached, child.Entity, child, opts); err != nil {
			return err
		}
	}
	return nil
}

// loadCollection batches children of a multi-valued edge with one IN query
// and groups them onto their parents.
func (e *Engine) loadCollection(ctx context.Context, parents []Record, parentEntity string, edge *schema.Edge, node *plan.Node) ([]Record, error) {
	fk := edge.ForeignKey
	if fk == "" {
		fk = toSnakeCase(parentEntity) + "_id"
	}

	ids := distinctValues(parents, "id")
	if len(ids) == 0 {
		return nil, nil
	}

	where, orderBy, decorArgs, err := e.decor(node, len(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to render decoration: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s WHERE %s IN (%s)",
		toTableName(edge.Target), fk, placeholders(1, len(ids)))
	args := append([]interface{}{}, ids...)
	if where != "" {
		fmt.Fprintf(&b, " AND (%s)", where)
		args = append(args, decorArgs...)
	}
	if orderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", orderBy)
	}

	rows, err := e.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	children, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[interface{}][]Record)
	for _, child := range children {
		key := normalizeKey(child[fk])
		grouped[key] = append(grouped[key], child)
	}
	for _, parent := range parents {
		group := grouped[normalizeKey(parent["id"])]
		if group == nil {
			group = []Record{}
		}
		parent[node.Member] = group
	}
	return children, nil
}

// loadReference batches targets of a single-valued edge with one IN query
// over their primary keys. With NoTracking each parent gets its own copy
// of a shared target row; otherwise parents share one record instance.
func (e *Engine) loadReference(ctx context.Context, parents []Record, edge *schema.Edge, node *plan.Node, opts spec.Options) ([]Record, error) {
	fk := edge.ForeignKey
	if fk == "" {
		fk = toSnakeCase(edge.Name) + "_id"
	}

	ids := distinctValues(parents, fk)
	if len(ids) == 0 {
		for _, parent := range parents {
			parent[node.Member] = nil
		}
		return nil, nil
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE id IN (%s)",
		toTableName(edge.Target), placeholders(1, len(ids)))
	rows, err := e.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return nil, err
	}
	targets, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[interface{}]Record, len(targets))
	for _, target := range targets {
		byID[normalizeKey(target["id"])] = target
	}

	var attached []Record
	for _, parent := range parents {
		target, ok := byID[normalizeKey(parent[fk])]
		if !ok {
			parent[node.Member] = nil
			continue
		}
		if opts.Tracking == spec.NoTracking {
			target = copyRecord(target)
		}
		parent[node.Member] = target
		attached = append(attached, target)
	}
	return attached, nil
}

// distinctValues collects the distinct non-nil values of a column,
// preserving first-seen order
func distinctValues(records []Record, column string) []interface{} {
	seen := make(map[interface{}]bool)
	var values []interface{}
	for _, record := range records {
		v := record[column]
		if v == nil {
			continue
		}
		key := normalizeKey(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}
	return values
}

// normalizeKey folds []byte values to strings so scanned keys compare equal
func normalizeKey(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func copyRecord(record Record) Record {
	clone := make(Record, len(record))
	for k, v := range record {
		clone[k] = v
	}
	return clone
}

// placeholders renders $start..$start+n-1
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// scanRows scans SQL rows into a slice of record maps
func scanRows(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Record)
		for i, col := range columns {
			record[col] = values[i]
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// toTableName converts an entity name to a table name (snake_case plural)
func toTableName(entity string) string {
	return pluralize(toSnakeCase(entity))
}

// toSnakeCase converts a string to snake_case
func toSnakeCase(s string) string {
	var result []rune
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if prev >= 'a' && prev <= 'z' {
				result = append(result, '_')
			} else if i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' {
				result = append(result, '_')
			}
		}
		if r >= 'A' && r <= 'Z' {
			result = append(result, r+('a'-'A'))
		} else {
			result = append(result, r)
		}
	}
	return string(result)
}

// pluralize adds simple pluralization
func pluralize(s string) string {
	if strings.HasSuffix(s, "s") ||
		strings.HasSuffix(s, "x") ||
		strings.HasSuffix(s, "z") {
		return s + "es"
	}
	if strings.HasSuffix(s, "y") {
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}
