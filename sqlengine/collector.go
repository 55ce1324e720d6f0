package sqlengine

import (
	"context"

	"github.com/conduit-lang/fetchplan/plan"
	"github.com/conduit-lang/fetchplan/spec"
)

// Collector adapts an Engine to the compiler's ApplyDirectives hand-off,
// retaining the records the last application materialized. One collector
// serves one query; it is not safe for concurrent applications.
type Collector struct {
	engine  *Engine
	Records []Record
}

// NewCollector creates a collector over the engine
func (e *Engine) NewCollector() *Collector {
	return &Collector{engine: e}
}

// ApplyDirectives loads the tree and keeps the materialized root records
func (c *Collector) ApplyDirectives(ctx context.Context, tree *plan.Node, opts spec.Options) error {
	records, err := c.engine.Load(ctx, tree, opts)
	if err != nil {
		return err
	}
	c.Records = records
	return nil
}
