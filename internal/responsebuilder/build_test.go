package responsebuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strings.Repeat("x", 40)
	}
	return lines
}

func TestBuildGroupsHitsByFile(t *testing.T) {
	lines := fileLines(20)
	hits := []Hit{
		{Path: "a.go", RelativePath: "a.go", Extension: ".go", Score: 2, Lines: lines,
			Matches: []MatchSpan{{Line: 5}, {Line: 6}}},
		{Path: "a.go", RelativePath: "a.go", Extension: ".go", Score: 1, Lines: lines,
			Matches: []MatchSpan{{Line: 10}}},
		{Path: "b.go", RelativePath: "b.go", Extension: ".go", Score: 3, Lines: lines,
			Matches: []MatchSpan{{Line: 1}}},
	}

	resp := Build(hits, DefaultBuildOptions())
	require.True(t, resp.Success)
	require.Len(t, resp.Data.Files, 2)
	assert.Equal(t, "b.go", resp.Data.Files[0].Path)
	assert.Equal(t, "a.go", resp.Data.Files[1].Path)
	assert.Equal(t, 3, resp.Data.Files[1].MatchCount)
}

func TestBuildProducesSnippetsWithContext(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "line"
	}
	hits := []Hit{
		{Path: "a.go", RelativePath: "a.go", Extension: ".go", Score: 1, Lines: lines,
			Matches: []MatchSpan{{Line: 5}}},
	}
	opts := DefaultBuildOptions()
	resp := Build(hits, opts)
	require.Len(t, resp.Data.Files, 1)
	require.Len(t, resp.Data.Files[0].Snippets, 1)
	snip := resp.Data.Files[0].Snippets[0]
	assert.Equal(t, 5, snip.Line)
	assert.Len(t, snip.ContextBefore, 2)
	assert.Len(t, snip.ContextAfter, 2)
}

func TestBuildHasMoreAndContinuationToken(t *testing.T) {
	key, err := NewProcessKey()
	require.NoError(t, err)

	var hits []Hit
	for i := 0; i < 5; i++ {
		hits = append(hits, Hit{Path: string(rune('a' + i)) + ".go", RelativePath: "x.go", Extension: ".go", Score: float64(i)})
	}
	opts := DefaultBuildOptions()
	opts.TotalCap = 2
	opts.QueryFingerprint = "fp123"
	opts.HMACKey = key

	resp := Build(hits, opts)
	assert.True(t, resp.Data.Summary.HasMore)
	require.NotEmpty(t, resp.Data.Summary.ContinuationToken)

	fp, offset, ok := DecodeContinuationToken(key, resp.Data.Summary.ContinuationToken)
	require.True(t, ok)
	assert.Equal(t, "fp123", fp)
	assert.Equal(t, 2, offset)
}

func TestDecodeContinuationTokenRejectsTampering(t *testing.T) {
	key, err := NewProcessKey()
	require.NoError(t, err)
	token := EncodeContinuationToken(key, "fp", 10)

	tampered := token[:len(token)-1] + "x"
	_, _, ok := DecodeContinuationToken(key, tampered)
	assert.False(t, ok)
}

func TestClampToBudgetDropsContextBeforeHits(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = strings.Repeat("y", 200)
	}
	var hits []Hit
	for i := 1; i <= 5; i++ {
		hits = append(hits, Hit{
			Path: "f.go", RelativePath: "f.go", Extension: ".go", Score: 1, Lines: lines,
			Matches: []MatchSpan{{Line: i}},
		})
	}
	opts := DefaultBuildOptions()
	opts.Display = DisplayFull
	opts.TokenBudget = 5
	resp := Build(hits, opts)
	require.NotNil(t, resp)
	// The clamp drops context lines first, then whole files, to fit the
	// budget; with a budget this tiny almost nothing survives.
	assert.LessOrEqual(t, len(resp.Data.Files), 1)
}

func TestBuildErrorEnvelope(t *testing.T) {
	resp := BuildError("Standard", "IndexLocked", "index is locked", []string{"run cleanup"}, []string{"index_workspace"})
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "IndexLocked", resp.Error.Code)
	require.NotNil(t, resp.Recovery)
	assert.Equal(t, []string{"run cleanup"}, resp.Recovery.Steps)
}

func TestAdaptiveDisplayDowngradesToSummaryOverBudget(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = strings.Repeat("z", 500)
	}
	hits := []Hit{
		{Path: "a.go", RelativePath: "a.go", Extension: ".go", Score: 1, Lines: lines,
			Matches: []MatchSpan{{Line: 1}}},
	}
	opts := DefaultBuildOptions()
	opts.TokenBudget = 100
	resp := Build(hits, opts)
	assert.Equal(t, string(DisplaySummary), resp.Display)
	assert.Empty(t, resp.Data.Files[0].Snippets)
}
