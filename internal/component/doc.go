// Package component turns component specifiers such as "betbook/shell@1.4.2"
// into immutable descriptors and derives how each one is checked out.
//
// A specifier has the form <group>/<name>[@<version>]. The version may itself
// contain slashes (feature/foo). When it is omitted the version is the literal
// "current", which classifies as KindCurrent: the working copy is used as-is.
package component
