package component

import (
	"github.com/felixgeelhaar/ananke/internal/errors"
)

// Set is an ordered collection of descriptors. Order is kept for output and
// determinism only; components are independent of each other.
type Set []Descriptor

// ParseAll parses every specifier, failing on the first malformed one. Two
// specifiers may not name the same component since they would share a
// working directory.
func ParseAll(specifiers []string) (Set, error) {
	set := make(Set, 0, len(specifiers))
	seen := make(map[string]bool, len(specifiers))
	for _, raw := range specifiers {
		d, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if seen[d.Name()] {
			return nil, errors.NewDuplicateComponentError(d.Name())
		}
		seen[d.Name()] = true
		set = append(set, d)
	}
	return set, nil
}

// Names returns the component names in order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name()
	}
	return names
}

// Without returns the descriptors whose names are not in excluded, preserving order.
func (s Set) Without(excluded map[string]bool) Set {
	if len(excluded) == 0 {
		return s
	}
	out := make(Set, 0, len(s))
	for _, d := range s {
		if !excluded[d.Name()] {
			out = append(out, d)
		}
	}
	return out
}
