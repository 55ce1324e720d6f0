package path

import "errors"

// ErrMarkerInvoked reports a description-time marker being called at
// runtime. Markers shape path descriptions; they have no behavior.
var ErrMarkerInvoked = errors.New("path marker invoked at runtime")

// TraverseEach is the collection-traversal marker. It exists so code and
// documentation can name the operation a description's each() step stands
// for; descriptions are static data and the compiler only inspects their
// shape. Calling it always panics with ErrMarkerInvoked.
func TraverseEach[E any](col []E) E {
	panic(ErrMarkerInvoked)
}

// TraverseRef is the nullable-reference marker. Like TraverseEach it is
// description-time only and always panics with ErrMarkerInvoked if called.
func TraverseRef[E any](ref *E) E {
	panic(ErrMarkerInvoked)
}
