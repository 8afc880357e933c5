package component

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/ananke/internal/errors"
)

// Descriptor identifies one component and the version to run. The kind is
// always derived from the version; descriptors are values and never mutated.
type Descriptor struct {
	group   string
	name    string
	version string
	kind    VersionKind
}

// New builds a descriptor, classifying version. An empty version becomes
// DefaultVersion.
func New(group, name, version string) (Descriptor, error) {
	return newDescriptor(group+"/"+name, group, name, version)
}

// newDescriptor validates the parts of a specifier; raw is quoted in errors.
func newDescriptor(raw, group, name, version string) (Descriptor, error) {
	if group == "" {
		return Descriptor{}, errors.NewSpecifierParseError(raw, "missing group")
	}
	if name == "" {
		return Descriptor{}, errors.NewSpecifierParseError(raw, "missing name")
	}
	if version == "" {
		version = DefaultVersion
	}
	return Descriptor{
		group:   group,
		name:    name,
		version: version,
		kind:    Classify(version),
	}, nil
}

// Parse reads a specifier of the form <group>/<name>[@<version>].
//
// The string is split on both '/' and '@'. The first two tokens are the group
// and name; the remaining tokens are joined back with '/' so branch names such
// as feature/foo survive.
func Parse(raw string) (Descriptor, error) {
	tokens := splitSpecifier(raw)
	if len(tokens) < 2 {
		return Descriptor{}, errors.NewSpecifierParseError(raw, "expected <group>/<name>")
	}
	return newDescriptor(raw, tokens[0], tokens[1], strings.Join(tokens[2:], "/"))
}

// splitSpecifier splits on '/' and '@', keeping empty tokens so that a
// missing group or name is reported rather than silently skipped.
func splitSpecifier(raw string) []string {
	var tokens []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '/' || raw[i] == '@' {
			tokens = append(tokens, raw[start:i])
			start = i + 1
		}
	}
	return append(tokens, raw[start:])
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(raw string) Descriptor {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// Group returns the namespace the component's repository lives in.
func (d Descriptor) Group() string { return d.group }

// Name returns the component name; it is also its working directory name.
func (d Descriptor) Name() string { return d.name }

// Version returns the version as supplied (or DefaultVersion).
func (d Descriptor) Version() string { return d.version }

// Kind returns the classified version kind.
func (d Descriptor) Kind() VersionKind { return d.kind }

// WithVersion returns a copy of d pinned to another version, reclassified.
func (d Descriptor) WithVersion(version string) Descriptor {
	if version == "" {
		version = DefaultVersion
	}
	d.version = version
	d.kind = Classify(version)
	return d
}

// ID returns "<group>/<name>".
func (d Descriptor) ID() string {
	return d.group + "/" + d.name
}

// String renders the descriptor back into specifier form.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%s@%s", d.group, d.name, d.version)
}
