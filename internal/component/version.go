package component

import "regexp"

// VersionKind classifies a version string and drives the checkout strategy.
type VersionKind int

const (
	KindBranch VersionKind = iota
	KindLatest
	KindCommitHash
	KindTag
	KindCurrent
)

// DefaultVersion is used when a specifier carries no version.
const DefaultVersion = "current"

// String returns the string representation of the kind
func (k VersionKind) String() string {
	switch k {
	case KindLatest:
		return "latest"
	case KindCommitHash:
		return "commit"
	case KindTag:
		return "tag"
	case KindCurrent:
		return "current"
	default:
		return "branch"
	}
}

// compiled once, read-only afterwards
var (
	commitHashPattern = regexp.MustCompile(`^[0-9a-f]{5,40}$`)
	tagPattern        = regexp.MustCompile(`^[0-9.].+$`)
)

// ClassificationRule maps a predicate on a version string to a kind.
type ClassificationRule struct {
	Name  string
	Match func(version string) bool
	Kind  VersionKind
}

// ClassificationRules is evaluated top to bottom; the first matching rule wins.
// Anything that matches no rule is a branch.
var ClassificationRules = []ClassificationRule{
	{
		Name:  "latest",
		Match: func(v string) bool { return v == "latest" },
		Kind:  KindLatest,
	},
	{
		Name:  "current",
		Match: func(v string) bool { return v == "" || v == DefaultVersion },
		Kind:  KindCurrent,
	},
	{
		Name:  "commit-hash",
		Match: commitHashPattern.MatchString,
		Kind:  KindCommitHash,
	},
	{
		Name:  "tag",
		Match: tagPattern.MatchString,
		Kind:  KindTag,
	},
}

// Classify returns the kind of a version string.
func Classify(version string) VersionKind {
	for _, rule := range ClassificationRules {
		if rule.Match(version) {
			return rule.Kind
		}
	}
	return KindBranch
}
