package queryplanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFileSearchUsesWildcardOnFilenameLiteral(t *testing.T) {
	plan := BuildFileSearch("handler", DefaultLimits())
	require.NotNil(t, plan.Request)
	assert.Equal(t, ModeLiteral, plan.EffectiveMode)
}

func TestBuildFileSearchFallsBackToRegexOnRelativePath(t *testing.T) {
	plan := BuildFileSearch("^internal/.*_test\\.go$", DefaultLimits())
	require.NotNil(t, plan.Request)
}

func TestBuildDirectorySearchUsesPrefixWithoutGlobChars(t *testing.T) {
	plan := BuildDirectorySearch("internal/service", DefaultLimits())
	require.NotNil(t, plan.Request)
	assert.Equal(t, ModeLiteral, plan.EffectiveMode)
}

func TestBuildDirectorySearchUsesWildcardWithGlobChars(t *testing.T) {
	plan := BuildDirectorySearch("internal/*", DefaultLimits())
	require.NotNil(t, plan.Request)
}

func TestBuildRecentFilesSortsDescendingByModifiedTicks(t *testing.T) {
	plan := BuildRecentFiles(time.Now().Add(-24*time.Hour), DefaultLimits())
	require.NotNil(t, plan.Request)
	assert.Equal(t, ModeStandard, plan.EffectiveMode)
}

func TestBuildSimilarExcludesSourceDocument(t *testing.T) {
	plan := BuildSimilar([]string{"handler", "search", "request"}, "/ws/internal/service/handler.go", DefaultLimits())
	require.NotNil(t, plan.Request)
	assert.Equal(t, ModeCode, plan.EffectiveMode)
}

func TestCapSizeFallsBackToDefaultLimitsWhenUnset(t *testing.T) {
	assert.Equal(t, DefaultLimits().TotalCap, capSize(Limits{}))
}

func TestWildcardifyLeavesExistingGlobsAlone(t *testing.T) {
	assert.Equal(t, "foo*bar", wildcardify("foo*bar"))
	assert.Equal(t, "*foo*", wildcardify("foo"))
}

func TestLooksLikeRegexDetectsMetacharacters(t *testing.T) {
	assert.True(t, looksLikeRegex("^foo.*bar$"))
	assert.False(t, looksLikeRegex("plainname"))
}
