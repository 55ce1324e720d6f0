package plan

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/fetchplan/path"
)

func TestFingerprintIgnoresHandleIdentity(t *testing.T) {
	a := path.Root("Order").
		Member("Items").
		Where(path.Pred(func(v interface{}) bool { return true })).
		Each()
	b := path.Root("Order").
		Member("Items").
		Where(path.Pred(func(v interface{}) bool { return false })).
		Each()

	assert.Equal(t, Fingerprint(a), Fingerprint(b),
		"descriptions differing only in captured predicate logic must share a fingerprint")
}

func TestFingerprintDistinguishesShape(t *testing.T) {
	base := Fingerprint(path.Root("Order").Member("Items").Each())

	assert.NotEqual(t, base, Fingerprint(path.Root("Order").Member("Customer")),
		"different members must fingerprint differently")
	assert.NotEqual(t, base, Fingerprint(path.Root("Customer").Member("Items").Each()),
		"different roots must fingerprint differently")

	asc := Fingerprint(path.Root("Order").Member("Items").OrderBy(path.NamedKey("k", nil)).Each())
	desc := Fingerprint(path.Root("Order").Member("Items").OrderByDesc(path.NamedKey("k", nil)).Each())
	assert.NotEqual(t, asc, desc, "ordering direction is part of the shape")
}

func TestParserServesStructuralTwinsFromCache(t *testing.T) {
	parser := NewParser(testRegistry(t))

	first, err := parser.Parse(path.Root("Order").
		Member("Items").
		Where(path.Pred(func(v interface{}) bool { return true })).
		Each())
	require.NoError(t, err)
	require.Equal(t, 1, parser.Cache().Size())

	// Same shape, different closure: must hit the cache, not re-walk
	second, err := parser.Parse(path.Root("Order").
		Member("Items").
		Where(path.Pred(func(v interface{}) bool { return false })).
		Each())
	require.NoError(t, err)

	assert.Equal(t, 1, parser.Cache().Size(), "second parse must not add an entry")
	assert.Same(t, first, second, "second parse must be served from cache")
	assert.True(t, first.StructurallyEqual(second))
}

func TestParserFailuresAreNotCached(t *testing.T) {
	parser := NewParser(testRegistry(t))

	_, err := parser.Parse(path.Root("Order").Member("Lines"))
	require.Error(t, err)
	assert.Equal(t, 0, parser.Cache().Size())
}

func TestSharedCacheAcrossParsers(t *testing.T) {
	cache := NewCache()
	first := NewParser(testRegistry(t), WithCache(cache))
	second := NewParser(testRegistry(t), WithCache(cache))

	_, err := first.Parse(path.Root("Order").Member("Items").Each())
	require.NoError(t, err)
	_, err = second.Parse(path.Root("Order").Member("Items").Each())
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Size())
}

func TestCacheConcurrentAccess(t *testing.T) {
	parser := NewParser(testRegistry(t))

	// Distinct shapes plus repeated shapes, parsed from many goroutines.
	// The benign duplicate compute-then-store race is acceptable; the
	// entry count must still equal the number of distinct shapes.
	descs := []*path.Path{
		path.Root("Order").Member("Items").Each().Member("Product"),
		path.Root("Order").Member("Items").Each().Member("Discounts"),
		path.Root("Order").Member("Customer"),
		path.Root("Product").Member("Category"),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 25; i++ {
		for _, d := range descs {
			wg.Add(1)
			go func(d *path.Path) {
				defer wg.Done()
				if _, err := parser.Parse(d); err != nil {
					errs <- fmt.Errorf("concurrent parse failed: %w", err)
				}
			}(d)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, len(descs), parser.Cache().Size())
}
