// Package queryplanner translates a user's search request into a
// concrete bleve query plus a post-search path filter, per spec §4.8.
package queryplanner

import "time"

// Mode selects how the query text is interpreted.
type Mode string

const (
	ModeAuto     Mode = "Auto"
	ModeStandard Mode = "Standard"
	ModeLiteral  Mode = "Literal"
	ModeCode     Mode = "Code"
	ModeSymbol   Mode = "Symbol"
	ModeFuzzy    Mode = "Fuzzy"
	ModeRegex    Mode = "Regex"
	ModePattern  Mode = "Pattern"
)

// Filters narrows a search beyond its text, per spec §4.8.
type Filters struct {
	Extensions     []string
	IncludeGlobs   []string
	ExcludeGlobs   []string
	SizeMin        int64
	SizeMax        int64
	ModifiedSince  time.Time
}

// Limits bounds how many hits a query can return, per spec §4.8's
// defaults (per-file cap 10, total cap 100, hard upper bound 10000).
type Limits struct {
	PerFileCap int
	TotalCap   int
	HardCap    int
}

func DefaultLimits() Limits {
	return Limits{PerFileCap: 10, TotalCap: 100, HardCap: 10000}
}
