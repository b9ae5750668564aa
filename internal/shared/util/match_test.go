package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher(t *testing.T) {
	m, err := NewMatcher([]string{"*.xml", "extra/*.dox"}, []string{"index.xml", "private/**"})
	require.NoError(t, err)

	cases := []struct {
		path string
		want bool
	}{
		{path: "classgeo_1_1Map.xml", want: true},
		{path: "nested/dir/struct_a.xml", want: true},
		{path: "index.xml", want: false},
		{path: "nested/index.xml", want: false},
		{path: "private/secret.xml", want: false},
		{path: "extra/readme.dox", want: true},
		{path: "other/readme.dox", want: false},
		{path: "Doxyfile", want: false},
		{path: `win\style\a.xml`, want: true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, m.Match(tc.path), tc.path)
	}
}

func TestMatcher_EmptyIncludeSelectsAll(t *testing.T) {
	m, err := NewMatcher(nil, []string{"*.tmp"})
	require.NoError(t, err)
	assert.True(t, m.Match("anything.bin"))
	assert.False(t, m.Match("x.tmp"))
}

func TestNewMatcher_RejectsBadPattern(t *testing.T) {
	_, err := NewMatcher([]string{"[abc"}, nil)
	assert.Error(t, err)
}
