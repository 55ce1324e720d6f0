package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/conduit-lang/fetchplan/path"
)

// Fingerprint computes a stable structural fingerprint of a description:
// the root entity plus the ordered sequence of node ops, member names, and
// ordering directions. Predicate and key handles do not participate, so two
// descriptions differing only in their captured filter/key logic collide
// and share one cache entry.
func Fingerprint(desc *path.Path) string {
	h := sha256.New()
	io.WriteString(h, desc.RootEntity())
	for _, n := range desc.Nodes() {
		fmt.Fprintf(h, "|%d:%s:%d", n.Op, n.Member, n.Dir)
	}
	return hex.EncodeToString(h.Sum(nil))
}
