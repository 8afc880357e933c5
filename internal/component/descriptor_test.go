package component

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/ananke/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		group     string
		component string
		version   string
		kind      VersionKind
		targetRef string
		newBranch bool
	}{
		{
			name:      "tag",
			raw:       "betbook/shell@1.4.2",
			group:     "betbook",
			component: "shell",
			version:   "1.4.2",
			kind:      KindTag,
			targetRef: "tag/1.4.2",
			newBranch: true,
		},
		{
			name:      "branch containing slashes",
			raw:       "betbook/shell@feature/foo",
			group:     "betbook",
			component: "shell",
			version:   "feature/foo",
			kind:      KindBranch,
			targetRef: "feature/foo",
		},
		{
			name:      "deeply nested branch",
			raw:       "betbook/shell@user/jdoe/fix/login",
			group:     "betbook",
			component: "shell",
			version:   "user/jdoe/fix/login",
			kind:      KindBranch,
			targetRef: "user/jdoe/fix/login",
		},
		{
			name:      "latest",
			raw:       "betbook/shell@latest",
			group:     "betbook",
			component: "shell",
			version:   "latest",
			kind:      KindLatest,
			targetRef: "master",
		},
		{
			name:      "short commit hash",
			raw:       "betbook/shell@a1b2c3d",
			group:     "betbook",
			component: "shell",
			version:   "a1b2c3d",
			kind:      KindCommitHash,
			targetRef: "a1b2c3d",
			newBranch: true,
		},
		{
			name:      "no version uses the working copy",
			raw:       "betbook/shell",
			group:     "betbook",
			component: "shell",
			version:   "current",
			kind:      KindCurrent,
			targetRef: "current",
		},
		{
			name:      "trailing at sign",
			raw:       "betbook/shell@",
			group:     "betbook",
			component: "shell",
			version:   "current",
			kind:      KindCurrent,
			targetRef: "current",
		},
		{
			name:      "at sign between group and name",
			raw:       "betbook@shell@develop",
			group:     "betbook",
			component: "shell",
			version:   "develop",
			kind:      KindBranch,
			targetRef: "develop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, tt.group, d.Group())
			assert.Equal(t, tt.component, d.Name())
			assert.Equal(t, tt.version, d.Version())
			assert.Equal(t, tt.kind, d.Kind())
			assert.Equal(t, tt.targetRef, d.TargetRef())
			assert.Equal(t, tt.newBranch, d.RequiresNewLocalBranch())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"group only", "betbook"},
		{"missing group", "/shell"},
		{"missing name", "betbook/"},
		{"missing name with version", "betbook/@1.0.0"},
		{"only separators", "/@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeSpecifierParse, errors.CodeOf(err))
			assert.Contains(t, err.Error(), fmt.Sprintf("invalid specifier %q", tt.raw))
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	a := MustParse("betbook/shell@feature/foo")
	b := MustParse("betbook/shell@feature/foo")
	assert.Equal(t, a, b)
	assert.Equal(t, "betbook/shell@feature/foo", a.String())
	assert.Equal(t, "betbook/shell", a.ID())
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nogroup") })
}

func TestWithVersionReclassifies(t *testing.T) {
	d := MustParse("betbook/shell@feature/foo")
	require.Equal(t, KindBranch, d.Kind())

	pinned := d.WithVersion("2.0.0")
	assert.Equal(t, KindTag, pinned.Kind())
	assert.Equal(t, "tag/2.0.0", pinned.TargetRef())

	reset := pinned.WithVersion("")
	assert.Equal(t, DefaultVersion, reset.Version())
	assert.Equal(t, KindCurrent, reset.Kind())

	// the original value is untouched
	assert.Equal(t, "feature/foo", d.Version())
	assert.Equal(t, KindBranch, d.Kind())
}

func TestNew(t *testing.T) {
	d, err := New("betbook", "casino", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, d.Version())

	_, err = New("", "casino", "1.0.0")
	assert.Error(t, err)
	_, err = New("betbook", "", "1.0.0")
	assert.Error(t, err)
}
