package plan

import "errors"

var (
	// ErrUnknownEntity is returned when a path names an unregistered entity
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownMember is returned when a path accesses a member the
	// current entity does not declare
	ErrUnknownMember = errors.New("unknown member")

	// ErrNotCollection is returned when each/where/orderBy is applied to a
	// position that is not a collection member
	ErrNotCollection = errors.New("marker requires a collection member")

	// ErrUnmarkedCollection is returned when a path continues past a
	// collection member without traversing it with each()
	ErrUnmarkedCollection = errors.New("collection member must be traversed with each() before continuing")

	// ErrDanglingDecoration is returned when a filter or ordering is
	// declared but the path ends without the collection marker it decorates
	ErrDanglingDecoration = errors.New("filter/order decoration missing its each() marker")

	// ErrAfterScalar is returned when a path continues past a scalar field
	ErrAfterScalar = errors.New("cannot continue a path past a scalar field")

	// ErrDuplicateFilter is returned when a collection member is filtered twice
	ErrDuplicateFilter = errors.New("collection member already has a filter")

	// ErrMisplacedThenBy is returned when thenBy appears without a
	// preceding orderBy on the same collection member
	ErrMisplacedThenBy = errors.New("thenBy requires a preceding orderBy")

	// ErrConflictingDecoration is returned when two merged paths disagree
	// on a shared collection member's filter or ordering
	ErrConflictingDecoration = errors.New("conflicting decorations on shared collection member")

	// ErrRootMismatch is returned when merged paths declare different root entities
	ErrRootMismatch = errors.New("paths declare different root entities")
)
