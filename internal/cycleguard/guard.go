// Package cycleguard tracks composite values currently on an encoder's
// traversal stack, detecting circular references and enforcing a
// maximum recursion depth. Identities are registered on entry and
// removed on exit, so only values live on the stack count as cycles.
package cycleguard

import (
	"errors"
	"reflect"
)

// ErrCircularReference is returned by Enter when v is already live on
// the traversal stack, i.e. v transitively contains itself.
var ErrCircularReference = errors.New("circular reference detected")

// ErrRecursionLimitExceeded is returned by Enter when entering v would
// exceed the configured recursion limit.
var ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")

// Guard tracks composite values (maps, slices, pointers) currently being
// traversed by a single encoder instance. It is not safe for concurrent
// use.
type Guard struct {
	active map[uintptr]struct{}
	depth  int
	limit  int
}

// New creates a Guard with the given recursion limit. A limit of 0
// or less disables the depth check; circular-reference detection is
// always active regardless of limit.
func New(limit int) *Guard {
	return &Guard{
		active: make(map[uintptr]struct{}),
		limit:  limit,
	}
}

// Enter registers v as live on the encode stack before the encoder
// recurses into it. The returned leave func must be called (typically
// via defer) once the traversal of v completes; it is nil when err is
// non-nil.
//
// Values without a stable runtime identity (scalars, nil) are not
// tracked for circular-reference purposes but still count against the
// depth limit.
func (g *Guard) Enter(v any) (leave func(), err error) {
	g.depth++
	if g.limit > 0 && g.depth > g.limit {
		g.depth--

		return nil, ErrRecursionLimitExceeded
	}

	id, trackable := identity(v)
	if trackable {
		if _, exists := g.active[id]; exists {
			g.depth--

			return nil, ErrCircularReference
		}

		g.active[id] = struct{}{}
	}

	return func() {
		g.depth--
		if trackable {
			delete(g.active, id)
		}
	}, nil
}

// Depth returns the current traversal depth.
func (g *Guard) Depth() int {
	return g.depth
}

// Reset clears all tracked identities and resets depth to 0, allowing
// the Guard to be reused for a new top-level encode.
func (g *Guard) Reset() {
	for k := range g.active {
		delete(g.active, k)
	}
	g.depth = 0
}

// identity returns a stable runtime pointer for composite kinds that can
// legally form a cycle (map, slice, pointer), and false for everything
// else (scalars, strings, nil composites).
func identity(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Ptr:
		if rv.IsNil() {
			return 0, false
		}

		return rv.Pointer(), true
	default:
		return 0, false
	}
}
