package component

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LocalBranchPrefix prefixes branches created to land on tags and commits.
const LocalBranchPrefix = "ananke/dev/"

// TargetRef returns the ref to check out: master for latest, tag/<version>
// for tags and the version itself otherwise.
func (d Descriptor) TargetRef() string {
	switch d.kind {
	case KindLatest:
		return "master"
	case KindTag:
		return "tag/" + d.version
	default:
		return d.version
	}
}

// RequiresNewLocalBranch reports whether checking out the target needs a fresh
// local branch. Tags and commits are not branches, so landing on them does.
func (d Descriptor) RequiresNewLocalBranch() bool {
	return d.kind == KindCommitHash || d.kind == KindTag
}

// UsesWorkingCopyAsIs reports whether checkout is skipped entirely.
func (d Descriptor) UsesWorkingCopyAsIs() bool {
	return d.kind == KindCurrent
}

// RepoURL returns the SSH remote of the component on host.
func (d Descriptor) RepoURL(host string) string {
	return fmt.Sprintf("git@%s:%s/%s.git", host, d.group, d.name)
}

// NewLocalBranchName generates a unique branch name under LocalBranchPrefix.
func NewLocalBranchName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return LocalBranchPrefix + suffix[:20]
}
