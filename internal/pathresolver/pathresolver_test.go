package pathresolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeRejectsControlChars(t *testing.T) {
	_, err := Canonicalize("/tmp/work\x00space")
	require.Error(t, err)
}

func TestCanonicalizeRejectsExcessiveLength(t *testing.T) {
	long := "/tmp/" + strings.Repeat("a", 300)
	_, err := Canonicalize(long)
	require.Error(t, err)
}

func TestCanonicalizeRejectsEmpty(t *testing.T) {
	_, err := Canonicalize("")
	require.Error(t, err)
}

func TestDirectoryNameIsStableAndDeterministic(t *testing.T) {
	p, err := Canonicalize("/tmp/my-workspace")
	require.NoError(t, err)

	name1 := DirectoryName(p)
	name2 := DirectoryName(p)
	assert.Equal(t, name1, name2)
	assert.Contains(t, name1, "my-workspace_")
}

func TestDirectoryNameDiffersForDifferentPaths(t *testing.T) {
	a, err := Canonicalize("/tmp/workspace-a")
	require.NoError(t, err)
	b, err := Canonicalize("/tmp/workspace-b")
	require.NoError(t, err)

	assert.NotEqual(t, DirectoryName(a), DirectoryName(b))
}

func TestResolverIndexDir(t *testing.T) {
	r := New("/base")
	dir, err := r.IndexDir("/tmp/my-workspace")
	require.NoError(t, err)
	assert.Contains(t, dir, "/base/indexes/my-workspace_")
}
