package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/fetchplan/path"
)

func mustParse(t *testing.T, parser *Parser, desc *path.Path) *ParsedPath {
	t.Helper()
	parsed, err := parser.Parse(desc)
	require.NoError(t, err)
	return parsed
}

func TestMergeSharedPrefix(t *testing.T) {
	parser := NewParser(testRegistry(t))

	tree, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items").Each().Member("Product")),
		mustParse(t, parser, path.Root("Order").Member("Items").Each().Member("Discounts")),
	)
	require.NoError(t, err)

	// One Items traversal feeding two children, not two Items traversals
	assert.Equal(t, 3, tree.Count(), "node count must equal distinct (parent, member) pairs")

	items, ok := tree.Child("Items")
	require.True(t, ok)
	assert.Equal(t, SegmentCollection, items.Kind)
	assert.Equal(t, "OrderItem", items.Entity)

	children := items.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "Product", children[0].Member)
	assert.Equal(t, "Discounts", children[1].Member)
}

func TestMergeSiblingOrderIsDeclarationOrder(t *testing.T) {
	parser := NewParser(testRegistry(t))

	tree, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Customer")),
		mustParse(t, parser, path.Root("Order").Member("Items")),
	)
	require.NoError(t, err)

	children := tree.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "Customer", children[0].Member)
	assert.Equal(t, "Items", children[1].Member)

	// Reversed declaration order reverses sibling order
	reversed, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items")),
		mustParse(t, parser, path.Root("Order").Member("Customer")),
	)
	require.NoError(t, err)
	assert.Equal(t, "Items", reversed.Children()[0].Member)
}

func TestMergeDecorationCarried(t *testing.T) {
	parser := NewParser(testRegistry(t))
	recent := path.Pred(func(v interface{}) bool { return true })
	byName := path.KeyOf(func(v interface{}) interface{} { return v })

	tree, err := Merge(mustParse(t, parser, path.Root("Order").
		Member("Items").Where(recent).OrderBy(byName).Each().Member("Product")))
	require.NoError(t, err)

	items, ok := tree.Child("Items")
	require.True(t, ok)
	assert.False(t, items.Filter.IsZero(), "filter decoration must attach to the collection node")
	require.Len(t, items.Orders, 1)
	assert.Equal(t, path.Ascending, items.Orders[0].Dir)
}

func TestMergeConflictingFilters(t *testing.T) {
	parser := NewParser(testRegistry(t))
	recent := path.Pred(func(v interface{}) bool { return true })
	large := path.Pred(func(v interface{}) bool { return false })

	_, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items").Where(recent).Each().Member("Product")),
		mustParse(t, parser, path.Root("Order").Member("Items").Where(large).Each().Member("Discounts")),
	)
	assert.ErrorIs(t, err, ErrConflictingDecoration)
}

func TestMergeUndecoratedDefersToDecorated(t *testing.T) {
	parser := NewParser(testRegistry(t))
	recent := path.Pred(func(v interface{}) bool { return true })

	decorated := path.Root("Order").Member("Items").Where(recent).Each().Member("Product")
	bare := path.Root("Order").Member("Items").Each().Member("Discounts")

	// Decorated first
	tree, err := Merge(mustParse(t, parser, decorated), mustParse(t, parser, bare))
	require.NoError(t, err)
	items, _ := tree.Child("Items")
	assert.False(t, items.Filter.IsZero(), "single decoration must be preserved")

	// Decorated last: the decoration still wins over the bare reuse
	tree, err = Merge(mustParse(t, parser, bare), mustParse(t, parser, decorated))
	require.NoError(t, err)
	items, _ = tree.Child("Items")
	assert.False(t, items.Filter.IsZero(), "later decoration must attach to the undecorated node")
}

func TestMergeIdenticalDecorationsAgree(t *testing.T) {
	parser := NewParser(testRegistry(t))
	recent := path.Pred(func(v interface{}) bool { return true })
	byName := path.KeyOf(func(v interface{}) interface{} { return v })

	_, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items").Where(recent).OrderBy(byName).Each().Member("Product")),
		mustParse(t, parser, path.Root("Order").Member("Items").Where(recent).OrderBy(byName).Each().Member("Discounts")),
	)
	assert.NoError(t, err, "identical decorations on a shared edge must merge")
}

func TestMergePartialDecorationConflicts(t *testing.T) {
	parser := NewParser(testRegistry(t))
	recent := path.Pred(func(v interface{}) bool { return true })
	byName := path.KeyOf(func(v interface{}) interface{} { return v })

	// Same filter but one path adds an ordering: not an exact match
	_, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items").Where(recent).Each()),
		mustParse(t, parser, path.Root("Order").Member("Items").Where(recent).OrderBy(byName).Each()),
	)
	assert.ErrorIs(t, err, ErrConflictingDecoration)
}

func TestMergeThreeWayPrecedence(t *testing.T) {
	parser := NewParser(testRegistry(t))
	recent := path.Pred(func(v interface{}) bool { return true })
	large := path.Pred(func(v interface{}) bool { return false })

	// First decoration sets the contract; the bare path defers; the third,
	// different decoration conflicts with the first.
	_, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items").Where(recent).Each().Member("Product")),
		mustParse(t, parser, path.Root("Order").Member("Items").Each()),
		mustParse(t, parser, path.Root("Order").Member("Items").Where(large).Each().Member("Discounts")),
	)
	assert.ErrorIs(t, err, ErrConflictingDecoration)
}

func TestMergeRootMismatch(t *testing.T) {
	parser := NewParser(testRegistry(t))

	_, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items")),
		mustParse(t, parser, path.Root("Product").Member("Category")),
	)
	assert.ErrorIs(t, err, ErrRootMismatch)
}

func TestMergeSkipsNilPaths(t *testing.T) {
	parser := NewParser(testRegistry(t))

	tree, err := Merge(
		nil,
		mustParse(t, parser, path.Root("Order").Member("Customer")),
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Count())
}

func TestMergeDeepNesting(t *testing.T) {
	parser := NewParser(testRegistry(t))

	tree, err := Merge(
		mustParse(t, parser, path.Root("Order").
			Member("Items").Each().
			Member("Product").
			Member("Category").
			Member("Parent")),
		mustParse(t, parser, path.Root("Order").
			Member("Items").Each().
			Member("Product").
			Member("Category")),
	)
	require.NoError(t, err)

	assert.Equal(t, 4, tree.Count())

	items, _ := tree.Child("Items")
	product, ok := items.Child("Product")
	require.True(t, ok)
	category, ok := product.Child("Category")
	require.True(t, ok)
	_, ok = category.Child("Parent")
	assert.True(t, ok)
}

func TestMergeEmpty(t *testing.T) {
	tree, err := Merge()
	require.NoError(t, err)
	assert.True(t, tree.IsRoot())
	assert.Equal(t, 0, tree.Count())
}

func TestTreeString(t *testing.T) {
	parser := NewParser(testRegistry(t))
	recent := path.Pred(func(v interface{}) bool { return true })

	tree, err := Merge(
		mustParse(t, parser, path.Root("Order").Member("Items").Where(recent).Each().Member("Product")),
	)
	require.NoError(t, err)

	rendered := tree.String()
	assert.Contains(t, rendered, "Order")
	assert.Contains(t, rendered, "Items (collection, filtered)")
	assert.Contains(t, rendered, "Product (reference)")
}
