// Package shape derives stable identifiers for sets of field names.
//
// A shape id identifies the structure of a filter or selector rather than
// the value that carries it: two filters naming the same fields share an id
// regardless of their Go type or the order the fields were listed in.
package shape

import (
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// ID identifies a set of field names.
type ID uint64

// None is the id of the empty field set. Statements that take no filter are
// stored under None.
const None ID = 0

// separator cannot appear in a Go identifier.
const separator = "\x1f"

// Of returns the id of the set of names. Duplicates and ordering are
// ignored.
func Of(names ...string) ID {
	if len(names) == 0 {
		return None
	}
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	id := ID(xxh3.HashString(strings.Join(sorted, separator)))
	if id == None {
		// Keep None reserved for the empty set.
		id = 1
	}
	return id
}
