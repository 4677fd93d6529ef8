// Package databag resolves and writes dot-path addresses into a nested
// key-value data bag.
//
// A dot-path like "a.b.c" addresses a location in nested map[string]any
// mappings; the special path "." means the entire bag. The package is a
// pure function library: every pipeline read and write goes through
// Resolve and Write so the addressing rules are validated and testable in
// isolation.
package databag

import (
	"errors"
	"strings"
)

// WholeBag is the path addressing the entire bag. Valid for Resolve only.
const WholeBag = "."

// ErrInvalidPath is returned by Write for paths that cannot address a
// writable location ("." or empty).
var ErrInvalidPath = errors.New("invalid path")

// Bag is the nested key-value structure threaded through a pipeline run.
type Bag = map[string]any

// Resolve walks the bag along path and returns the addressed value.
// path "." returns the whole bag. A missing segment is not an error: the
// second return is false and callers decide whether that is fatal.
func Resolve(bag Bag, path string) (any, bool) {
	if path == WholeBag {
		return bag, true
	}
	if path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")
	var current any = bag
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Write sets the value at path, creating intermediate mappings for every
// segment except the last. Existing values are overwritten, never merged;
// a non-map intermediate is replaced by a fresh map. Writing to "." or an
// empty path fails with ErrInvalidPath.
func Write(bag Bag, path string, value any) error {
	if path == WholeBag || path == "" {
		return ErrInvalidPath
	}

	segments := strings.Split(path, ".")
	current := bag
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
	return nil
}
